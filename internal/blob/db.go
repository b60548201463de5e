package blob

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/erazemk/minirent/internal/db"
)

// DBStore keeps blobs in the blobs table.
type DBStore struct {
	q db.DBTX
}

// NewDBStore returns a store backed by the given database handle.
func NewDBStore(q db.DBTX) *DBStore {
	return &DBStore{q: q}
}

func (s *DBStore) Driver() Driver { return DriverDB }

func (s *DBStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO blobs (key, data, content_type, size) VALUES (?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET data = excluded.data, content_type = excluded.content_type, size = excluded.size`,
		key, data, contentType, len(data),
	)
	if err != nil {
		return fmt.Errorf("storing blob %s: %w", key, err)
	}
	return nil
}

func (s *DBStore) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	var data []byte
	var contentType sql.NullString
	err := s.q.QueryRowContext(ctx,
		`SELECT data, content_type FROM blobs WHERE key = ?`, key,
	).Scan(&data, &contentType)
	if err == sql.ErrNoRows {
		return Info{}, nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return Info{}, nil, fmt.Errorf("reading blob %s: %w", key, err)
	}
	info := Info{Key: key, ContentType: contentType.String, Size: int64(len(data))}
	return info, io.NopCloser(bytes.NewReader(data)), nil
}

func (s *DBStore) Delete(ctx context.Context, key string) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, key); err != nil {
		return fmt.Errorf("deleting blob %s: %w", key, err)
	}
	return nil
}
