package blob

import (
	"context"
	"fmt"

	"github.com/erazemk/minirent/internal/db"
)

// Open selects a store by driver name. An empty driver means db.
func Open(ctx context.Context, driver string, q db.DBTX, s3cfg S3Config) (Store, error) {
	switch Driver(driver) {
	case "", DriverDB:
		return NewDBStore(q), nil
	case DriverS3:
		return NewS3Store(ctx, s3cfg)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", driver)
	}
}
