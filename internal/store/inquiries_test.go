package store

import (
	"context"
	"testing"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

func TestInquiryLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	olga := mustUser(t, database, "olga", model.RoleOwner)
	oskar := mustUser(t, database, "oskar", model.RoleOwner)
	loft := mustProperty(t, database, olga.ID, "Loft", "Ljubljana", 90000)

	in, err := CreateInquiry(ctx, database, &model.Inquiry{
		PropertyID: &loft.ID,
		Name:       "Tina",
		Email:      "tina@example.com",
		Message:    "Is it still free?",
	})
	if err != nil {
		t.Fatalf("CreateInquiry: %v", err)
	}
	if in.Status != model.InquiryNew || in.PropertyTitle != "Loft" {
		t.Errorf("unexpected inquiry: %+v", in)
	}
	CreateInquiry(ctx, database, &model.Inquiry{Name: "Tom", Email: "tom@example.com", Message: "Anything in Koper?"})

	all, _ := ListInquiries(ctx, database, 0)
	if len(all) != 2 {
		t.Errorf("expected 2 inquiries, got %d", len(all))
	}
	mine, _ := ListInquiries(ctx, database, olga.ID)
	if len(mine) != 1 {
		t.Errorf("expected 1 inquiry for olga, got %d", len(mine))
	}
	theirs, _ := ListInquiries(ctx, database, oskar.ID)
	if len(theirs) != 0 {
		t.Errorf("expected 0 inquiries for oskar, got %d", len(theirs))
	}

	r := mustRental(t, database, loft.ID, olga.ID, model.RentalActive)
	ok, err := MarkInquiryConverted(ctx, database, in.ID, r.ID)
	if err != nil || !ok {
		t.Fatalf("MarkInquiryConverted: %v %v", ok, err)
	}
	ok, _ = MarkInquiryConverted(ctx, database, in.ID, r.ID)
	if ok {
		t.Error("converting twice must report false")
	}

	got, _ := GetInquiry(ctx, database, in.ID)
	if got.Status != model.InquiryConverted || got.RentalID == nil || *got.RentalID != r.ID {
		t.Errorf("unexpected inquiry after convert: %+v", got)
	}

	// Deleting the rental unlinks the inquiry.
	DeleteRental(ctx, database, r.ID)
	got, _ = GetInquiry(ctx, database, in.ID)
	if got.RentalID != nil {
		t.Errorf("expected rental link cleared, got %v", *got.RentalID)
	}
}
