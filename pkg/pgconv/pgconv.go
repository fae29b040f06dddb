// Package pgconv converts between pgtype values and plain Go values.
package pgconv

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Text wraps s as a valid Text, or an invalid one when s is empty.
func Text(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToTimestamptz converts a *time.Time to pgtype.Timestamptz.
// Returns an invalid Timestamptz if t is nil.
func ToTimestamptz(t *time.Time) pgtype.Timestamptz {
	if t == nil {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: *t, Valid: true}
}

// FromTimestamptz converts pgtype.Timestamptz to *time.Time.
// Returns nil if the Timestamptz is not valid.
func FromTimestamptz(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}

// At is ToTimestamptz for a non-nil time.
func At(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
