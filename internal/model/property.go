package model

import "time"

// Property is a rentable unit owned by a user.
type Property struct {
	ID               int64          `json:"id"`
	OwnerID          int64          `json:"owner_id"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	Address          string         `json:"address"`
	City             string         `json:"city"`
	Bedrooms         int            `json:"bedrooms"`
	Bathrooms        int            `json:"bathrooms"`
	AreaM2           float64        `json:"area_m2"`
	MonthlyRentCents int64          `json:"monthly_rent_cents"`
	Status           PropertyStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        *time.Time     `json:"deleted_at,omitempty"`

	// Joined fields (not always populated).
	OwnerName string    `json:"owner_name,omitempty"`
	Amenities []Amenity `json:"amenities,omitempty"`
}

// Deleted reports whether the property has been soft-deleted.
func (p *Property) Deleted() bool { return p.DeletedAt != nil }

// PropertyFilter narrows property listings. Zero fields do not filter.
type PropertyFilter struct {
	Status       PropertyStatus
	OwnerID      int64
	City         string
	MaxRentCents int64
	Limit        int
	Offset       int
}

// PropertyImage is a photo attached to a property. The bytes live in blob storage.
type PropertyImage struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	BlobKey    string    `json:"-"`
	Mime       string    `json:"mime"`
	Size       int64     `json:"size"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	CreatedAt  time.Time `json:"created_at"`
}

// Amenity is a catalogue entry such as "Parking" or "Balcony".
type Amenity struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
