package model

import "time"

// Rental is a tenancy of one property. EndDate is set exactly when the
// status is ended or terminated.
type Rental struct {
	ID                   int64        `json:"id"`
	PropertyID           int64        `json:"property_id"`
	TenantID             *int64       `json:"tenant_id,omitempty"`
	TenantName           string       `json:"tenant_name"`
	TenantEmail          string       `json:"tenant_email,omitempty"`
	TenantPhone          string       `json:"tenant_phone,omitempty"`
	StartDate            time.Time    `json:"start_date"`
	EndDate              *time.Time   `json:"end_date,omitempty"`
	MonthlyRentCents     int64        `json:"monthly_rent_cents"`
	SecurityDepositCents int64        `json:"security_deposit_cents"`
	Status               RentalStatus `json:"status"`
	Notes                string       `json:"notes,omitempty"`
	CreatedBy            int64        `json:"created_by"`
	CreatedAt            time.Time    `json:"created_at"`
	UpdatedAt            time.Time    `json:"updated_at"`

	// Joined fields (not always populated).
	PropertyTitle   string `json:"property_title,omitempty"`
	PropertyOwnerID int64  `json:"property_owner_id,omitempty"`
}

// RentalFilter narrows rental listings. Zero fields do not filter.
type RentalFilter struct {
	PropertyID int64
	Status     RentalStatus
	Limit      int
	Offset     int
}

// Payment is money received against a rental.
type Payment struct {
	ID          int64     `json:"id"`
	RentalID    int64     `json:"rental_id"`
	AmountCents int64     `json:"amount_cents"`
	PaidAt      time.Time `json:"paid_at"`
	Method      string    `json:"method"`
	Notes       string    `json:"notes,omitempty"`
	RecordedBy  *int64    `json:"recorded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Payment methods.
const (
	PaymentTransfer = "transfer"
	PaymentCash     = "cash"
	PaymentCard     = "card"
)

// ValidPaymentMethod reports whether m is a known payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentTransfer, PaymentCash, PaymentCard:
		return true
	}
	return false
}
