package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

const rentalColumns = `r.id, r.property_id, r.tenant_id, r.tenant_name, r.tenant_email, r.tenant_phone,
	r.start_date, r.end_date, r.monthly_rent_cents, r.security_deposit_cents, r.status, r.notes,
	r.created_by, r.created_at, r.updated_at, p.title, p.owner_id`

// Rentals are reachable only through live properties.
const liveRentals = ` FROM rentals r JOIN properties p ON p.id = r.property_id WHERE p.deleted_at IS NULL`

func scanRental(s scanner) (*model.Rental, error) {
	r := &model.Rental{}
	var email, phone, notes sql.NullString
	err := s.Scan(&r.ID, &r.PropertyID, &r.TenantID, &r.TenantName, &email, &phone,
		&r.StartDate, &r.EndDate, &r.MonthlyRentCents, &r.SecurityDepositCents, &r.Status, &notes,
		&r.CreatedBy, &r.CreatedAt, &r.UpdatedAt, &r.PropertyTitle, &r.PropertyOwnerID)
	if err != nil {
		return nil, err
	}
	r.TenantEmail = email.String
	r.TenantPhone = phone.String
	r.Notes = notes.String
	return r, nil
}

// CreateRental inserts a rental and returns its ID. A second active rental
// on the same property yields model.ErrConflict.
func CreateRental(ctx context.Context, q db.DBTX, r *model.Rental) (int64, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO rentals (property_id, tenant_id, tenant_name, tenant_email, tenant_phone,
		 start_date, end_date, monthly_rent_cents, security_deposit_cents, status, notes, created_by)
		 VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), ?, ?, ?, ?, ?, NULLIF(?, ''), ?)`,
		r.PropertyID, r.TenantID, r.TenantName, r.TenantEmail, r.TenantPhone,
		r.StartDate.UTC(), utcOrNil(r.EndDate), r.MonthlyRentCents, r.SecurityDepositCents, r.Status, r.Notes, r.CreatedBy,
	)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("creating rental: %w: property already has an active rental", model.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("creating rental: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting rental id: %w", err)
	}
	return id, nil
}

// GetRental returns a rental by ID, or nil if it does not exist or its
// property has been soft-deleted.
func GetRental(ctx context.Context, q db.DBTX, id int64) (*model.Rental, error) {
	r, err := scanRental(q.QueryRowContext(ctx,
		`SELECT `+rentalColumns+liveRentals+` AND r.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting rental: %w", err)
	}
	return r, nil
}

// ListRentals returns rentals matching filter, newest first. A non-zero
// visibleTo restricts the result to rentals that user created, is the
// tenant of, or owns the property of.
func ListRentals(ctx context.Context, q db.DBTX, filter model.RentalFilter, visibleTo int64) ([]model.Rental, error) {
	query := `SELECT ` + rentalColumns + liveRentals
	var args []any
	if filter.PropertyID != 0 {
		query += ` AND r.property_id = ?`
		args = append(args, filter.PropertyID)
	}
	if filter.Status.Valid() {
		query += ` AND r.status = ?`
		args = append(args, filter.Status)
	}
	if visibleTo != 0 {
		query += ` AND (r.created_by = ? OR r.tenant_id = ? OR p.owner_id = ?)`
		args = append(args, visibleTo, visibleTo, visibleTo)
	}
	limit, offset := page(filter.Limit, filter.Offset)
	query += ` ORDER BY r.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing rentals: %w", err)
	}
	defer rows.Close()

	var rentals []model.Rental
	for rows.Next() {
		r, err := scanRental(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning rental: %w", err)
		}
		rentals = append(rentals, *r)
	}
	return rentals, rows.Err()
}

// UpdateRental persists a rental's mutable lifecycle fields.
func UpdateRental(ctx context.Context, q db.DBTX, r *model.Rental) error {
	_, err := q.ExecContext(ctx,
		`UPDATE rentals SET status = ?, end_date = ?, notes = NULLIF(?, ''), updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		r.Status, utcOrNil(r.EndDate), r.Notes, r.ID,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("updating rental: %w: property already has an active rental", model.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("updating rental: %w", err)
	}
	return nil
}

// DeleteRental permanently removes a rental and its payments.
func DeleteRental(ctx context.Context, q db.DBTX, id int64) error {
	_, err := q.ExecContext(ctx, `DELETE FROM rentals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting rental: %w", err)
	}
	return nil
}

// CountActiveRentals returns the number of active rentals on a property.
func CountActiveRentals(ctx context.Context, q db.DBTX, propertyID int64) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rentals WHERE property_id = ? AND status = 'active'`, propertyID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting active rentals: %w", err)
	}
	return n, nil
}

// HasRented reports whether the user has an active or ended rental on the
// property, either as its creator or as its tenant.
func HasRented(ctx context.Context, q db.DBTX, userID, propertyID int64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM rentals
		 WHERE property_id = ? AND status IN ('active', 'ended') AND (created_by = ? OR tenant_id = ?)`,
		propertyID, userID, userID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking rental history: %w", err)
	}
	return n > 0, nil
}
