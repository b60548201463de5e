package model

import "time"

// Inquiry is a contact request from a prospective tenant. It may be
// converted into a rental.
type Inquiry struct {
	ID         int64         `json:"id"`
	PropertyID *int64        `json:"property_id,omitempty"`
	Name       string        `json:"name"`
	Email      string        `json:"email"`
	Phone      string        `json:"phone,omitempty"`
	Message    string        `json:"message"`
	Status     InquiryStatus `json:"status"`
	RentalID   *int64        `json:"rental_id,omitempty"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`

	// Joined fields (not always populated).
	PropertyTitle string `json:"property_title,omitempty"`
}

// Review is a star rating left by a past or current renter.
type Review struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	UserID     int64     `json:"user_id"`
	Stars      int       `json:"stars"`
	Title      string    `json:"title,omitempty"`
	Body       string    `json:"body,omitempty"`
	CreatedAt  time.Time `json:"created_at"`

	// Joined fields (not always populated).
	Username string `json:"username,omitempty"`
}
