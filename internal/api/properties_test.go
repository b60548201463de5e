package api

import (
	"net/http"
	"testing"

	"github.com/erazemk/minirent/internal/model"
)

func (e *testEnv) createProperty(token, title, city string, rent int64) model.Property {
	e.t.Helper()
	var p model.Property
	e.expect(http.StatusCreated, "POST", "/api/properties", token, map[string]any{
		"title": title, "address": "Main 1", "city": city, "monthly_rent_cents": rent, "bedrooms": 2,
	}, &p)
	return p
}

func TestPropertyCRUD(t *testing.T) {
	env := setupTestServer(t)

	p := env.createProperty(env.ownerToken, "Loft", "Ljubljana", 90000)
	if p.OwnerID != env.ownerID || p.Status != model.PropertyAvailable {
		t.Fatalf("unexpected property: %+v", p)
	}
	env.createProperty(env.ownerToken, "Cabin", "Bled", 50000)

	var list []model.Property
	env.expect(http.StatusOK, "GET", "/api/properties?city=bled", env.tenantToken, nil, &list)
	if len(list) != 1 || list[0].Title != "Cabin" {
		t.Errorf("expected only Cabin, got %+v", list)
	}
	env.expect(http.StatusOK, "GET", "/api/properties?max_rent_cents=60000", env.tenantToken, nil, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 property under the rent cap, got %d", len(list))
	}
	env.expect(http.StatusOK, "GET", "/api/properties?limit=1", env.tenantToken, nil, &list)
	if len(list) != 1 {
		t.Errorf("expected 1 property with limit, got %d", len(list))
	}
	env.expect(http.StatusBadRequest, "GET", "/api/properties?status=sold", env.tenantToken, nil, nil)

	var updated model.Property
	env.expect(http.StatusOK, "PUT", "/api/properties/"+itoa(p.ID), env.ownerToken, map[string]any{
		"title": "Big Loft", "address": "Main 1", "city": "Ljubljana", "monthly_rent_cents": 95000,
	}, &updated)
	if updated.Title != "Big Loft" || updated.MonthlyRentCents != 95000 {
		t.Errorf("update not applied: %+v", updated)
	}

	// Another owner cannot touch it; an admin can.
	_, otherToken := env.user("oscar", model.RoleOwner)
	env.expect(http.StatusForbidden, "PUT", "/api/properties/"+itoa(p.ID), otherToken, map[string]any{
		"title": "Mine now", "address": "Main 1", "city": "Ljubljana",
	}, nil)
	env.expect(http.StatusOK, "PUT", "/api/properties/"+itoa(p.ID), env.adminToken, map[string]any{
		"title": "Big Loft", "address": "Main 1", "city": "Ljubljana", "monthly_rent_cents": 95000,
	}, nil)

	env.expect(http.StatusBadRequest, "PUT", "/api/properties/"+itoa(p.ID), env.ownerToken, map[string]any{
		"title": "", "address": "Main 1", "city": "Ljubljana",
	}, nil)

	env.expect(http.StatusOK, "DELETE", "/api/properties/"+itoa(p.ID), env.ownerToken, nil, nil)
	env.expect(http.StatusNotFound, "GET", "/api/properties/"+itoa(p.ID), env.ownerToken, nil, nil)
	env.expect(http.StatusNotFound, "DELETE", "/api/properties/"+itoa(p.ID), env.ownerToken, nil, nil)
}

func TestAdminCreatesPropertyForOwner(t *testing.T) {
	env := setupTestServer(t)

	var p model.Property
	env.expect(http.StatusCreated, "POST", "/api/properties", env.adminToken, map[string]any{
		"title": "Managed", "address": "Side 2", "city": "Celje", "owner_id": env.ownerID,
	}, &p)
	if p.OwnerID != env.ownerID {
		t.Errorf("expected owner %d, got %d", env.ownerID, p.OwnerID)
	}

	env.expect(http.StatusBadRequest, "POST", "/api/properties", env.adminToken, map[string]any{
		"title": "Managed", "address": "Side 2", "city": "Celje", "owner_id": env.tenantID,
	}, nil)
	env.expect(http.StatusForbidden, "POST", "/api/properties", env.ownerToken, map[string]any{
		"title": "Sneaky", "address": "Side 2", "city": "Celje", "owner_id": env.adminID,
	}, nil)
}

func TestPropertyStatusEndpoint(t *testing.T) {
	env := setupTestServer(t)
	p := env.createProperty(env.ownerToken, "Loft", "Ljubljana", 90000)
	path := "/api/properties/" + itoa(p.ID) + "/status"

	var got model.Property
	env.expect(http.StatusOK, "PUT", path, env.ownerToken, map[string]string{"status": "Maintenance"}, &got)
	if got.Status != model.PropertyMaintenance {
		t.Errorf("expected maintenance, got %s", got.Status)
	}

	env.expect(http.StatusConflict, "PUT", path, env.ownerToken, map[string]string{"status": "rented"}, nil)
	env.expect(http.StatusBadRequest, "PUT", path, env.ownerToken, map[string]string{"status": "sold"}, nil)

	_, otherToken := env.user("oscar", model.RoleOwner)
	env.expect(http.StatusForbidden, "PUT", path, otherToken, map[string]string{"status": "available"}, nil)
}

func TestPropertyAmenities(t *testing.T) {
	env := setupTestServer(t)
	p := env.createProperty(env.ownerToken, "Loft", "Ljubljana", 90000)

	var parking, balcony model.Amenity
	env.expect(http.StatusCreated, "POST", "/api/amenities", env.adminToken, map[string]string{"name": "Parking"}, &parking)
	env.expect(http.StatusCreated, "POST", "/api/amenities", env.adminToken, map[string]string{"name": "Balcony"}, &balcony)
	env.expect(http.StatusConflict, "POST", "/api/amenities", env.adminToken, map[string]string{"name": "parking"}, nil)

	var got model.Property
	env.expect(http.StatusOK, "PUT", "/api/properties/"+itoa(p.ID)+"/amenities", env.ownerToken, map[string]any{
		"amenity_ids": []int64{parking.ID, balcony.ID},
	}, &got)
	if len(got.Amenities) != 2 {
		t.Fatalf("expected 2 amenities, got %+v", got.Amenities)
	}

	env.expect(http.StatusBadRequest, "PUT", "/api/properties/"+itoa(p.ID)+"/amenities", env.ownerToken, map[string]any{
		"amenity_ids": []int64{9999},
	}, nil)

	env.expect(http.StatusOK, "DELETE", "/api/amenities/"+itoa(parking.ID), env.adminToken, nil, nil)
	env.expect(http.StatusOK, "GET", "/api/properties/"+itoa(p.ID), env.tenantToken, nil, &got)
	if len(got.Amenities) != 1 || got.Amenities[0].Name != "Balcony" {
		t.Errorf("expected only Balcony after delete, got %+v", got.Amenities)
	}

	var all []model.Amenity
	env.expect(http.StatusOK, "GET", "/api/amenities", env.tenantToken, nil, &all)
	if len(all) != 1 {
		t.Errorf("expected 1 amenity, got %d", len(all))
	}
}
