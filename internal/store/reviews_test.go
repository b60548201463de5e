package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

func TestReviews(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	tina := mustUser(t, database, "tina", model.RoleTenant)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)

	rv, err := CreateReview(ctx, database, &model.Review{PropertyID: p.ID, UserID: tina.ID, Stars: 4, Title: "Nice"})
	if err != nil {
		t.Fatalf("CreateReview: %v", err)
	}
	if rv.Username != "tina" || rv.Stars != 4 {
		t.Errorf("unexpected review: %+v", rv)
	}

	_, err = CreateReview(ctx, database, &model.Review{PropertyID: p.ID, UserID: tina.ID, Stars: 5})
	if !errors.Is(err, model.ErrConflict) {
		t.Errorf("expected ErrConflict for second review, got %v", err)
	}

	list, _ := ListReviews(ctx, database, p.ID)
	if len(list) != 1 {
		t.Errorf("expected 1 review, got %d", len(list))
	}

	DeleteReview(ctx, database, rv.ID)
	if got, _ := GetReview(ctx, database, rv.ID); got != nil {
		t.Error("expected review deleted")
	}
}
