package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

const statsColumns = `owner_id, owner_name, property_count, available_count, rented_count, reserved_count,
	maintenance_count, active_rentals, pending_requests, monthly_income_cents, average_rating`

func scanStats(s scanner, withTime bool) (*model.OwnerStats, error) {
	st := &model.OwnerStats{}
	dest := []any{&st.OwnerID, &st.OwnerName, &st.PropertyCount, &st.AvailableCount, &st.RentedCount,
		&st.ReservedCount, &st.MaintenanceCount, &st.ActiveRentals, &st.PendingRequests,
		&st.MonthlyIncomeCents, &st.AverageRating}
	if withTime {
		dest = append(dest, &st.RefreshedAt)
	}
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	return st, nil
}

// RefreshOwnerStats replaces the owner_stats snapshot with the current
// contents of the owner_portfolio view and returns the number of owners.
// Run it inside a transaction so readers never see a half-built snapshot.
func RefreshOwnerStats(ctx context.Context, q db.DBTX, now time.Time) (int64, error) {
	if _, err := q.ExecContext(ctx, `DELETE FROM owner_stats`); err != nil {
		return 0, fmt.Errorf("clearing owner stats: %w", err)
	}
	result, err := q.ExecContext(ctx,
		`INSERT INTO owner_stats (`+statsColumns+`, refreshed_at)
		 SELECT `+statsColumns+`, ? FROM owner_portfolio`, now.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("snapshotting owner stats: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("snapshotting owner stats: %w", err)
	}
	return n, nil
}

// GetOwnerStats returns the last snapshot for an owner, or nil if none was taken.
func GetOwnerStats(ctx context.Context, q db.DBTX, ownerID int64) (*model.OwnerStats, error) {
	st, err := scanStats(q.QueryRowContext(ctx,
		`SELECT `+statsColumns+`, refreshed_at FROM owner_stats WHERE owner_id = ?`, ownerID,
	), true)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting owner stats: %w", err)
	}
	return st, nil
}

// ListOwnerStats returns the whole snapshot ordered by income.
func ListOwnerStats(ctx context.Context, q db.DBTX) ([]model.OwnerStats, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+statsColumns+`, refreshed_at FROM owner_stats ORDER BY monthly_income_cents DESC, owner_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing owner stats: %w", err)
	}
	defer rows.Close()

	var stats []model.OwnerStats
	for rows.Next() {
		st, err := scanStats(rows, true)
		if err != nil {
			return nil, fmt.Errorf("scanning owner stats: %w", err)
		}
		stats = append(stats, *st)
	}
	return stats, rows.Err()
}

// GetOwnerPortfolio computes an owner's stats live from the view.
func GetOwnerPortfolio(ctx context.Context, q db.DBTX, ownerID int64) (*model.OwnerStats, error) {
	st, err := scanStats(q.QueryRowContext(ctx,
		`SELECT `+statsColumns+` FROM owner_portfolio WHERE owner_id = ?`, ownerID,
	), false)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting owner portfolio: %w", err)
	}
	st.RefreshedAt = time.Now().UTC()
	return st, nil
}

// ListStatusDrift returns live properties whose status disagrees with their
// rentals. An empty result means every rented property has exactly the
// backing it should.
func ListStatusDrift(ctx context.Context, q db.DBTX) ([]model.StatusDrift, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT property_id, status, active_rentals FROM property_status_drift ORDER BY property_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing status drift: %w", err)
	}
	defer rows.Close()

	var drift []model.StatusDrift
	for rows.Next() {
		var d model.StatusDrift
		if err := rows.Scan(&d.PropertyID, &d.Status, &d.ActiveRentals); err != nil {
			return nil, fmt.Errorf("scanning status drift: %w", err)
		}
		drift = append(drift, d)
	}
	return drift, rows.Err()
}
