// Package blob stores property photo bytes outside the relational tables.
// Two drivers exist: db keeps blobs in the SQLite database and s3 keeps them
// in an S3-compatible bucket.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
)

// Driver identifies a blob backend.
type Driver string

const (
	DriverDB Driver = "db"
	DriverS3 Driver = "s3"
)

// ErrNotFound is returned by Get for unknown keys.
var ErrNotFound = errors.New("blob not found")

// Info describes a stored blob.
type Info struct {
	Key         string
	ContentType string
	Size        int64
}

// Store is a flat key/value blob store.
type Store interface {
	Driver() Driver
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// Delete removes a blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// PhotoKey returns a fresh key for a photo of the given property.
func PhotoKey(propertyID int64) string {
	return path.Join("properties", fmt.Sprint(propertyID), uuid.NewString()+".jpg")
}
