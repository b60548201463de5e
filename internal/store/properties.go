package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

const propertyColumns = `p.id, p.owner_id, p.title, p.description, p.address, p.city,
	p.bedrooms, p.bathrooms, p.area_m2, p.monthly_rent_cents, p.status,
	p.created_at, p.updated_at, p.deleted_at, u.username`

// liveProperties is the FROM clause of every property read. Soft-deleted
// properties never leave the store.
const liveProperties = ` FROM properties p JOIN users u ON u.id = p.owner_id WHERE p.deleted_at IS NULL`

func scanProperty(s scanner) (*model.Property, error) {
	p := &model.Property{}
	var description sql.NullString
	err := s.Scan(&p.ID, &p.OwnerID, &p.Title, &description, &p.Address, &p.City,
		&p.Bedrooms, &p.Bathrooms, &p.AreaM2, &p.MonthlyRentCents, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &p.DeletedAt, &p.OwnerName)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	return p, nil
}

// CreateProperty inserts a property. Status defaults to available.
func CreateProperty(ctx context.Context, q db.DBTX, p *model.Property) (*model.Property, error) {
	status := p.Status
	if !status.Valid() {
		status = model.PropertyAvailable
	}
	result, err := q.ExecContext(ctx,
		`INSERT INTO properties (owner_id, title, description, address, city, bedrooms, bathrooms, area_m2, monthly_rent_cents, status)
		 VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?, ?, ?, ?)`,
		p.OwnerID, p.Title, p.Description, p.Address, p.City, p.Bedrooms, p.Bathrooms, p.AreaM2, p.MonthlyRentCents, status,
	)
	if err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting property id: %w", err)
	}

	return GetProperty(ctx, q, id)
}

// GetProperty returns a live property by ID, or nil if it does not exist or
// has been soft-deleted.
func GetProperty(ctx context.Context, q db.DBTX, id int64) (*model.Property, error) {
	p, err := scanProperty(q.QueryRowContext(ctx,
		`SELECT `+propertyColumns+liveProperties+` AND p.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting property: %w", err)
	}

	p.Amenities, err = ListPropertyAmenities(ctx, q, id)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProperties returns live properties matching filter, newest first.
func ListProperties(ctx context.Context, q db.DBTX, filter model.PropertyFilter) ([]model.Property, error) {
	var where []string
	var args []any
	if filter.Status.Valid() {
		where = append(where, "p.status = ?")
		args = append(args, filter.Status)
	}
	if filter.OwnerID != 0 {
		where = append(where, "p.owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if filter.City != "" {
		where = append(where, "p.city = ? COLLATE NOCASE")
		args = append(args, filter.City)
	}
	if filter.MaxRentCents > 0 {
		where = append(where, "p.monthly_rent_cents <= ?")
		args = append(args, filter.MaxRentCents)
	}

	query := `SELECT ` + propertyColumns + liveProperties
	for _, w := range where {
		query += " AND " + w
	}
	limit, offset := page(filter.Limit, filter.Offset)
	query += ` ORDER BY p.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer rows.Close()

	var properties []model.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		properties = append(properties, *p)
	}
	return properties, rows.Err()
}

// UpdateProperty writes a property's descriptive fields. Status is changed
// only through SetPropertyStatus.
func UpdateProperty(ctx context.Context, q db.DBTX, p *model.Property) error {
	_, err := q.ExecContext(ctx,
		`UPDATE properties SET title = ?, description = NULLIF(?, ''), address = ?, city = ?,
		 bedrooms = ?, bathrooms = ?, area_m2 = ?, monthly_rent_cents = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		p.Title, p.Description, p.Address, p.City, p.Bedrooms, p.Bathrooms, p.AreaM2, p.MonthlyRentCents, p.ID,
	)
	if err != nil {
		return fmt.Errorf("updating property: %w", err)
	}
	return nil
}

// SetPropertyStatus changes a live property's status.
func SetPropertyStatus(ctx context.Context, q db.DBTX, id int64, status model.PropertyStatus) error {
	_, err := q.ExecContext(ctx,
		`UPDATE properties SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting property status: %w", err)
	}
	return nil
}

// DeleteProperty soft-deletes a property.
func DeleteProperty(ctx context.Context, q db.DBTX, id int64) error {
	_, err := q.ExecContext(ctx,
		`UPDATE properties SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}
	return nil
}

// ListPropertyAmenities returns the amenities attached to a property.
func ListPropertyAmenities(ctx context.Context, q db.DBTX, propertyID int64) ([]model.Amenity, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT a.id, a.name FROM amenities a
		 JOIN property_amenities pa ON pa.amenity_id = a.id
		 WHERE pa.property_id = ? ORDER BY a.name`, propertyID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing property amenities: %w", err)
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

// SetPropertyAmenities replaces the amenity set of a property. Unknown
// amenity IDs fail with a foreign key error, so callers validate first.
func SetPropertyAmenities(ctx context.Context, q db.DBTX, propertyID int64, amenityIDs []int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM property_amenities WHERE property_id = ?`, propertyID); err != nil {
		return fmt.Errorf("clearing property amenities: %w", err)
	}
	for _, id := range amenityIDs {
		_, err := q.ExecContext(ctx,
			`INSERT OR IGNORE INTO property_amenities (property_id, amenity_id) VALUES (?, ?)`,
			propertyID, id,
		)
		if err != nil {
			return fmt.Errorf("adding property amenity: %w", err)
		}
	}
	return nil
}
