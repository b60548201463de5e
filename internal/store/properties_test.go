package store

import (
	"context"
	"testing"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

func TestCreateAndGetProperty(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)

	if p.Status != model.PropertyAvailable {
		t.Errorf("expected status available, got %v", p.Status)
	}
	if p.OwnerName != "olga" {
		t.Errorf("expected owner name 'olga', got %q", p.OwnerName)
	}
	if p.AreaM2 != 54.5 {
		t.Errorf("expected area 54.5, got %v", p.AreaM2)
	}

	missing, err := GetProperty(ctx, database, 9999)
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing property")
	}
}

func TestSoftDeletedPropertyIsHidden(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)

	if err := DeleteProperty(ctx, database, p.ID); err != nil {
		t.Fatalf("DeleteProperty: %v", err)
	}

	got, err := GetProperty(ctx, database, p.ID)
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if got != nil {
		t.Error("soft-deleted property must not be returned")
	}

	list, _ := ListProperties(ctx, database, model.PropertyFilter{})
	if len(list) != 0 {
		t.Errorf("expected 0 properties after soft delete, got %d", len(list))
	}

	// Status writes no longer reach it either.
	SetPropertyStatus(ctx, database, p.ID, model.PropertyMaintenance)
	var status string
	database.QueryRowContext(ctx, `SELECT status FROM properties WHERE id = ?`, p.ID).Scan(&status)
	if status != "available" {
		t.Errorf("expected untouched status, got %q", status)
	}
}

func TestListPropertiesFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	olga := mustUser(t, database, "olga", model.RoleOwner)
	oskar := mustUser(t, database, "oskar", model.RoleOwner)
	mustProperty(t, database, olga.ID, "Loft", "Ljubljana", 90000)
	cheap := mustProperty(t, database, olga.ID, "Studio", "Maribor", 45000)
	mustProperty(t, database, oskar.ID, "House", "ljubljana", 150000)
	SetPropertyStatus(ctx, database, cheap.ID, model.PropertyMaintenance)

	tests := []struct {
		name   string
		filter model.PropertyFilter
		want   int
	}{
		{"all", model.PropertyFilter{}, 3},
		{"owner", model.PropertyFilter{OwnerID: olga.ID}, 2},
		{"city ignores case", model.PropertyFilter{City: "LJUBLJANA"}, 2},
		{"max rent", model.PropertyFilter{MaxRentCents: 90000}, 2},
		{"status", model.PropertyFilter{Status: model.PropertyMaintenance}, 1},
		{"limit", model.PropertyFilter{Limit: 1}, 1},
		{"offset", model.PropertyFilter{Offset: 2}, 1},
	}

	for _, tt := range tests {
		got, err := ListProperties(ctx, database, tt.filter)
		if err != nil {
			t.Fatalf("%s: ListProperties: %v", tt.name, err)
		}
		if len(got) != tt.want {
			t.Errorf("%s: expected %d properties, got %d", tt.name, tt.want, len(got))
		}
	}
}

func TestUpdateProperty(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)

	p.Title = "Sunny Loft"
	p.MonthlyRentCents = 95000
	p.Status = model.PropertyMaintenance
	if err := UpdateProperty(ctx, database, p); err != nil {
		t.Fatalf("UpdateProperty: %v", err)
	}

	got, _ := GetProperty(ctx, database, p.ID)
	if got.Title != "Sunny Loft" || got.MonthlyRentCents != 95000 {
		t.Errorf("update not applied: %+v", got)
	}
	if got.Status != model.PropertyAvailable {
		t.Errorf("UpdateProperty must not touch status, got %v", got.Status)
	}
}

func TestPropertyAmenities(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)
	parking, _ := CreateAmenity(ctx, database, "Parking")
	balcony, _ := CreateAmenity(ctx, database, "Balcony")

	if err := SetPropertyAmenities(ctx, database, p.ID, []int64{parking.ID, balcony.ID, parking.ID}); err != nil {
		t.Fatalf("SetPropertyAmenities: %v", err)
	}
	got, _ := GetProperty(ctx, database, p.ID)
	if len(got.Amenities) != 2 || got.Amenities[0].Name != "Balcony" {
		t.Errorf("expected [Balcony Parking], got %+v", got.Amenities)
	}

	SetPropertyAmenities(ctx, database, p.ID, []int64{parking.ID})
	got, _ = GetProperty(ctx, database, p.ID)
	if len(got.Amenities) != 1 {
		t.Errorf("expected the set to be replaced, got %+v", got.Amenities)
	}

	DeleteAmenity(ctx, database, parking.ID)
	got, _ = GetProperty(ctx, database, p.ID)
	if len(got.Amenities) != 0 {
		t.Errorf("expected cascade on amenity delete, got %+v", got.Amenities)
	}
}
