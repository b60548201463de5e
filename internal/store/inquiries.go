package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

const inquiryColumns = `i.id, i.property_id, i.name, i.email, i.phone, i.message, i.status,
	i.rental_id, i.created_at, i.updated_at, p.title`

// Inquiries about soft-deleted properties stay readable; the title is then empty.
const inquiryFrom = ` FROM inquiries i LEFT JOIN properties p ON p.id = i.property_id AND p.deleted_at IS NULL`

func scanInquiry(s scanner) (*model.Inquiry, error) {
	in := &model.Inquiry{}
	var phone, title sql.NullString
	err := s.Scan(&in.ID, &in.PropertyID, &in.Name, &in.Email, &phone, &in.Message, &in.Status,
		&in.RentalID, &in.CreatedAt, &in.UpdatedAt, &title)
	if err != nil {
		return nil, err
	}
	in.Phone = phone.String
	in.PropertyTitle = title.String
	return in, nil
}

// CreateInquiry stores a new inquiry in the new state.
func CreateInquiry(ctx context.Context, q db.DBTX, in *model.Inquiry) (*model.Inquiry, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO inquiries (property_id, name, email, phone, message, status)
		 VALUES (?, ?, ?, NULLIF(?, ''), ?, ?)`,
		in.PropertyID, in.Name, in.Email, in.Phone, in.Message, model.InquiryNew,
	)
	if err != nil {
		return nil, fmt.Errorf("creating inquiry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting inquiry id: %w", err)
	}

	return GetInquiry(ctx, q, id)
}

// GetInquiry returns an inquiry by ID.
func GetInquiry(ctx context.Context, q db.DBTX, id int64) (*model.Inquiry, error) {
	in, err := scanInquiry(q.QueryRowContext(ctx,
		`SELECT `+inquiryColumns+inquiryFrom+` WHERE i.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting inquiry: %w", err)
	}
	return in, nil
}

// ListInquiries returns inquiries newest first. A non-zero ownerID limits the
// result to inquiries about that owner's live properties.
func ListInquiries(ctx context.Context, q db.DBTX, ownerID int64) ([]model.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + inquiryFrom
	var args []any
	if ownerID != 0 {
		query += ` WHERE p.owner_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY i.id DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []model.Inquiry
	for rows.Next() {
		in, err := scanInquiry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning inquiry: %w", err)
		}
		inquiries = append(inquiries, *in)
	}
	return inquiries, rows.Err()
}

// SetInquiryStatus changes an inquiry's status.
func SetInquiryStatus(ctx context.Context, q db.DBTX, id int64, status model.InquiryStatus) error {
	_, err := q.ExecContext(ctx,
		`UPDATE inquiries SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return fmt.Errorf("setting inquiry status: %w", err)
	}
	return nil
}

// MarkInquiryConverted links an inquiry to the rental created from it. It
// reports false when the inquiry is missing or already converted.
func MarkInquiryConverted(ctx context.Context, q db.DBTX, id, rentalID int64) (bool, error) {
	result, err := q.ExecContext(ctx,
		`UPDATE inquiries SET status = 'converted', rental_id = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status != 'converted'`,
		rentalID, id,
	)
	if err != nil {
		return false, fmt.Errorf("converting inquiry: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("converting inquiry: %w", err)
	}
	return n > 0, nil
}
