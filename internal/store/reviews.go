package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

const reviewColumns = `rv.id, rv.property_id, rv.user_id, rv.stars, rv.title, rv.body, rv.created_at, u.username`

func scanReview(s scanner) (*model.Review, error) {
	rv := &model.Review{}
	var title, body sql.NullString
	if err := s.Scan(&rv.ID, &rv.PropertyID, &rv.UserID, &rv.Stars, &title, &body, &rv.CreatedAt, &rv.Username); err != nil {
		return nil, err
	}
	rv.Title = title.String
	rv.Body = body.String
	return rv, nil
}

// CreateReview stores a review. A second review by the same user on the same
// property yields model.ErrConflict.
func CreateReview(ctx context.Context, q db.DBTX, rv *model.Review) (*model.Review, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO reviews (property_id, user_id, stars, title, body) VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''))`,
		rv.PropertyID, rv.UserID, rv.Stars, rv.Title, rv.Body,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("creating review: %w: property already reviewed", model.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("creating review: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting review id: %w", err)
	}

	return GetReview(ctx, q, id)
}

// GetReview returns a review by ID.
func GetReview(ctx context.Context, q db.DBTX, id int64) (*model.Review, error) {
	rv, err := scanReview(q.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews rv JOIN users u ON u.id = rv.user_id WHERE rv.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting review: %w", err)
	}
	return rv, nil
}

// ListReviews returns a property's reviews, newest first.
func ListReviews(ctx context.Context, q db.DBTX, propertyID int64) ([]model.Review, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews rv JOIN users u ON u.id = rv.user_id
		 WHERE rv.property_id = ? ORDER BY rv.id DESC`, propertyID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning review: %w", err)
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

// DeleteReview removes a review.
func DeleteReview(ctx context.Context, q db.DBTX, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	return nil
}
