package model

import "time"

// OwnerStats is one owner's portfolio summary.
type OwnerStats struct {
	OwnerID            int64     `json:"owner_id"`
	OwnerName          string    `json:"owner_name"`
	PropertyCount      int       `json:"property_count"`
	AvailableCount     int       `json:"available_count"`
	RentedCount        int       `json:"rented_count"`
	ReservedCount      int       `json:"reserved_count"`
	MaintenanceCount   int       `json:"maintenance_count"`
	ActiveRentals      int       `json:"active_rentals"`
	PendingRequests    int       `json:"pending_requests"`
	MonthlyIncomeCents int64     `json:"monthly_income_cents"`
	AverageRating      float64   `json:"average_rating"`
	RefreshedAt        time.Time `json:"refreshed_at"`
}

// StatusDrift is a property whose status disagrees with its rentals.
type StatusDrift struct {
	PropertyID    int64          `json:"property_id"`
	Status        PropertyStatus `json:"status"`
	ActiveRentals int            `json:"active_rentals"`
}
