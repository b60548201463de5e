package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/minirent/internal/db"
	"github.com/erazemk/minirent/internal/model"
)

const imageColumns = `id, property_id, blob_key, mime, size, width, height, created_at`

func scanImage(s scanner) (*model.PropertyImage, error) {
	img := &model.PropertyImage{}
	if err := s.Scan(&img.ID, &img.PropertyID, &img.BlobKey, &img.Mime, &img.Size, &img.Width, &img.Height, &img.CreatedAt); err != nil {
		return nil, err
	}
	return img, nil
}

// CreatePropertyImage records a photo whose bytes were stored under BlobKey.
func CreatePropertyImage(ctx context.Context, q db.DBTX, img *model.PropertyImage) (*model.PropertyImage, error) {
	result, err := q.ExecContext(ctx,
		`INSERT INTO property_images (property_id, blob_key, mime, size, width, height) VALUES (?, ?, ?, ?, ?, ?)`,
		img.PropertyID, img.BlobKey, img.Mime, img.Size, img.Width, img.Height,
	)
	if err != nil {
		return nil, fmt.Errorf("creating property image: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting property image id: %w", err)
	}
	return GetPropertyImage(ctx, q, id)
}

// GetPropertyImage returns photo metadata by ID.
func GetPropertyImage(ctx context.Context, q db.DBTX, id int64) (*model.PropertyImage, error) {
	img, err := scanImage(q.QueryRowContext(ctx,
		`SELECT `+imageColumns+` FROM property_images WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting property image: %w", err)
	}
	return img, nil
}

// ListPropertyImages returns a property's photos in upload order.
func ListPropertyImages(ctx context.Context, q db.DBTX, propertyID int64) ([]model.PropertyImage, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+imageColumns+` FROM property_images WHERE property_id = ? ORDER BY id`, propertyID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing property images: %w", err)
	}
	defer rows.Close()

	var images []model.PropertyImage
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property image: %w", err)
		}
		images = append(images, *img)
	}
	return images, rows.Err()
}

// DeletePropertyImage removes photo metadata. The blob is removed by the caller.
func DeletePropertyImage(ctx context.Context, q db.DBTX, id int64) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM property_images WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting property image: %w", err)
	}
	return nil
}
