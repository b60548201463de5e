package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/erazemk/minirent/internal/model"
)

func mustUser(t *testing.T, q *sql.DB, username, role string) *model.User {
	t.Helper()
	u, err := CreateUser(context.Background(), q, username, "hash", role, "")
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustProperty(t *testing.T, q *sql.DB, ownerID int64, title, city string, rent int64) *model.Property {
	t.Helper()
	p, err := CreateProperty(context.Background(), q, &model.Property{
		OwnerID:          ownerID,
		Title:            title,
		Address:          "Main 1",
		City:             city,
		Bedrooms:         2,
		Bathrooms:        1,
		AreaM2:           54.5,
		MonthlyRentCents: rent,
	})
	if err != nil {
		t.Fatalf("CreateProperty(%s): %v", title, err)
	}
	return p
}

func mustRental(t *testing.T, q *sql.DB, propertyID, createdBy int64, status model.RentalStatus) *model.Rental {
	t.Helper()
	ctx := context.Background()
	r := &model.Rental{
		PropertyID:       propertyID,
		TenantID:         &createdBy,
		TenantName:       "Tina",
		StartDate:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRentCents: 90000,
		Status:           status,
		CreatedBy:        createdBy,
	}
	if status.Closed() {
		end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
		r.EndDate = &end
	}
	id, err := CreateRental(ctx, q, r)
	if err != nil {
		t.Fatalf("CreateRental: %v", err)
	}
	got, err := GetRental(ctx, q, id)
	if err != nil || got == nil {
		t.Fatalf("GetRental: %v", err)
	}
	return got
}
