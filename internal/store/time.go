package store

import "time"

// utcOrNil normalizes optional timestamps before they are written. Stored
// times are UTC so that text comparisons in SQL order correctly.
func utcOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
