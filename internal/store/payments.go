package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

// CreatePayment records a payment against a rental.
func CreatePayment(ctx context.Context, q db.DBTX, pm *model.Payment) (*model.Payment, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO payments (rental_id, amount_cents, paid_at, method, notes, recorded_by)
		 VALUES (?, ?, ?, ?, NULLIF(?, ''), ?)`,
		pm.RentalID, pm.AmountCents, pm.PaidAt.UTC(), pm.Method, pm.Notes, pm.RecordedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting payment id: %w", err)
	}

	out := &model.Payment{}
	var notes sql.NullString
	err = q.QueryRowContext(ctx,
		`SELECT id, rental_id, amount_cents, paid_at, method, notes, recorded_by, created_at FROM payments WHERE id = ?`, id,
	).Scan(&out.ID, &out.RentalID, &out.AmountCents, &out.PaidAt, &out.Method, &notes, &out.RecordedBy, &out.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("reading payment: %w", err)
	}
	out.Notes = notes.String
	return out, nil
}

// ListPayments returns a rental's payments, most recent first.
func ListPayments(ctx context.Context, q db.DBTX, rentalID int64) ([]model.Payment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, rental_id, amount_cents, paid_at, method, notes, recorded_by, created_at
		 FROM payments WHERE rental_id = ? ORDER BY paid_at DESC, id DESC`, rentalID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer rows.Close()

	var payments []model.Payment
	for rows.Next() {
		var pm model.Payment
		var notes sql.NullString
		if err := rows.Scan(&pm.ID, &pm.RentalID, &pm.AmountCents, &pm.PaidAt, &pm.Method, &notes, &pm.RecordedBy, &pm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		pm.Notes = notes.String
		payments = append(payments, pm)
	}
	return payments, rows.Err()
}

// PaymentTotal returns the sum of a rental's payments in cents.
func PaymentTotal(ctx context.Context, q db.DBTX, rentalID int64) (int64, error) {
	var total int64
	err := q.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE rental_id = ?`, rentalID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing payments: %w", err)
	}
	return total, nil
}
