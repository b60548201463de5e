package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

// CreateAmenity adds a catalogue entry. Names are unique ignoring case.
func CreateAmenity(ctx context.Context, q db.DBTX, name string) (*model.Amenity, error) {
	result, err := q.ExecContext(ctx, `INSERT INTO amenities (name) VALUES (?)`, name)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating amenity: %w: %q already exists", model.ErrConflict, name)
	}
	if err != nil {
		return nil, fmt.Errorf("creating amenity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting amenity id: %w", err)
	}
	return &model.Amenity{ID: id, Name: name}, nil
}

// GetAmenity returns an amenity by ID.
func GetAmenity(ctx context.Context, q db.DBTX, id int64) (*model.Amenity, error) {
	a := &model.Amenity{}
	err := q.QueryRowContext(ctx, `SELECT id, name FROM amenities WHERE id = ?`, id).Scan(&a.ID, &a.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting amenity: %w", err)
	}
	return a, nil
}

// ListAmenities returns the whole catalogue sorted by name.
func ListAmenities(ctx context.Context, q db.DBTX) ([]model.Amenity, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, name FROM amenities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing amenities: %w", err)
	}
	defer rows.Close()

	var amenities []model.Amenity
	for rows.Next() {
		var a model.Amenity
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scanning amenity: %w", err)
		}
		amenities = append(amenities, a)
	}
	return amenities, rows.Err()
}

// DeleteAmenity removes an amenity and detaches it from every property.
func DeleteAmenity(ctx context.Context, q db.DBTX, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM amenities WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting amenity: %w", err)
	}
	return nil
}
