package store

import (
	"context"
	"testing"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

func TestPropertyImages(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	owner := mustUser(t, database, "olga", model.RoleOwner)
	p := mustProperty(t, database, owner.ID, "Loft", "Ljubljana", 90000)

	img, err := CreatePropertyImage(ctx, database, &model.PropertyImage{
		PropertyID: p.ID, BlobKey: "properties/1/a.jpg", Mime: "image/jpeg", Size: 1234, Width: 800, Height: 600,
	})
	if err != nil {
		t.Fatalf("CreatePropertyImage: %v", err)
	}
	CreatePropertyImage(ctx, database, &model.PropertyImage{
		PropertyID: p.ID, BlobKey: "properties/1/b.jpg", Mime: "image/jpeg", Size: 99, Width: 10, Height: 10,
	})

	list, _ := ListPropertyImages(ctx, database, p.ID)
	if len(list) != 2 || list[0].ID != img.ID {
		t.Errorf("unexpected image list: %+v", list)
	}

	DeletePropertyImage(ctx, database, img.ID)
	if got, _ := GetPropertyImage(ctx, database, img.ID); got != nil {
		t.Error("expected image metadata deleted")
	}
}
