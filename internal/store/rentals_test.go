package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

func TestCreateAndGetRental(t *testing.T) {
	database := db.NewTestDB(t)

	owner := mustUser(t, database, "olga", model.RoleOwner)
	tenant := mustUser(t, database, "tina", model.RoleTenant)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)

	r := mustRental(t, database, p.ID, tenant.ID, model.RentalPending)
	if r.Status != model.RentalPending {
		t.Errorf("expected pending, got %v", r.Status)
	}
	if r.EndDate != nil {
		t.Error("pending rental must not have an end date")
	}
	if r.PropertyOwnerID != owner.ID || r.PropertyTitle != "Loft" {
		t.Errorf("joined property fields not populated: %+v", r)
	}
	if !r.StartDate.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start date %v", r.StartDate)
	}
}

func TestSecondActiveRentalConflicts(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)
	mustRental(t, database, p.ID, owner.ID, model.RentalActive)
	pending := mustRental(t, database, p.ID, owner.ID, model.RentalPending)

	pending.Status = model.RentalActive
	err := UpdateRental(ctx, database, pending)
	if !errors.Is(err, model.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	n, _ := CountActiveRentals(ctx, database, p.ID)
	if n != 1 {
		t.Errorf("expected 1 active rental, got %d", n)
	}
}

func TestUpdateRentalEndsIt(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)
	r := mustRental(t, database, p.ID, owner.ID, model.RentalActive)

	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	r.Status = model.RentalEnded
	r.EndDate = &end
	r.Notes = "keys returned"
	if err := UpdateRental(ctx, database, r); err != nil {
		t.Fatalf("UpdateRental: %v", err)
	}

	got, _ := GetRental(ctx, database, r.ID)
	if got.Status != model.RentalEnded || got.EndDate == nil || !got.EndDate.Equal(end) {
		t.Errorf("unexpected rental after end: %+v", got)
	}
	if got.Notes != "keys returned" {
		t.Errorf("expected notes, got %q", got.Notes)
	}
}

func TestListRentalsVisibility(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	olga := mustUser(t, database, "olga", model.RoleOwner)
	oskar := mustUser(t, database, "oskar", model.RoleOwner)
	tina := mustUser(t, database, "tina", model.RoleTenant)
	loft := mustProperty(t, database, olga.ID, "Loft", "Ljubljana", 90000)
	house := mustProperty(t, database, oskar.ID, "House", "Koper", 150000)

	mustRental(t, database, loft.ID, tina.ID, model.RentalPending)
	mustRental(t, database, house.ID, oskar.ID, model.RentalActive)

	tests := []struct {
		name      string
		filter    model.RentalFilter
		visibleTo int64
		want      int
	}{
		{"admin sees all", model.RentalFilter{}, 0, 2},
		{"owner sees own property", model.RentalFilter{}, olga.ID, 1},
		{"creator sees own request", model.RentalFilter{}, tina.ID, 1},
		{"by property", model.RentalFilter{PropertyID: house.ID}, 0, 1},
		{"by status", model.RentalFilter{Status: model.RentalActive}, 0, 1},
	}
	for _, tt := range tests {
		got, err := ListRentals(ctx, database, tt.filter, tt.visibleTo)
		if err != nil {
			t.Fatalf("%s: ListRentals: %v", tt.name, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s: expected %d rentals, got %d", tt.name, tt.want, len(got))
		}
	}
}

func TestRentalsOfDeletedPropertyAreHidden(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)
	r := mustRental(t, database, p.ID, owner.ID, model.RentalEnded)
	DeleteProperty(ctx, database, p.ID)

	got, err := GetRental(ctx, database, r.ID)
	if err != nil {
		t.Fatalf("GetRental: %v", err)
	}
	if got != nil {
		t.Error("expected rental of deleted property to be hidden")
	}
}

func TestDeleteRentalCascadesPayments(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)
	r := mustRental(t, database, p.ID, owner.ID, model.RentalEnded)
	CreatePayment(ctx, database, &model.Payment{RentalID: r.ID, AmountCents: 90000, PaidAt: time.Now(), Method: model.PaymentCash})

	if err := DeleteRental(ctx, database, r.ID); err != nil {
		t.Fatalf("DeleteRental: %v", err)
	}
	payments, _ := ListPayments(ctx, database, r.ID)
	if len(payments) != 0 {
		t.Errorf("expected payments removed with rental, got %d", len(payments))
	}
}

func TestHasRented(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	tina := mustUser(t, database, "tina", model.RoleTenant)
	tom := mustUser(t, database, "tom", model.RoleTenant)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)
	mustRental(t, database, p.ID, tina.ID, model.RentalEnded)
	mustRental(t, database, p.ID, tom.ID, model.RentalRejected)

	if ok, _ := HasRented(ctx, database, tina.ID, p.ID); !ok {
		t.Error("expected tina to have rented")
	}
	if ok, _ := HasRented(ctx, database, tom.ID, p.ID); ok {
		t.Error("a rejected request is not a tenancy")
	}
}
