// Package domain contains the year-scoped number sequences used for
// human-readable transaction numbers.
package domain

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Counter is one allocation row per prefix namespace and calendar year.
// The composite primary key is what makes concurrent allocation safe: the
// update takes the row lock, and a racing first-of-year insert trips the key.
type Counter struct {
	Prefix string `gorm:"primaryKey;size:16"`
	Year   int    `gorm:"primaryKey"`
	Value  int64  `gorm:"not null"`
}

// TableName sets the database table name.
func (Counter) TableName() string { return "sequence_counters" }

var (
	ErrInvalidPrefix = errors.New("invalid_sequence_prefix")
	ErrConflict      = errors.New("sequence_conflict")
)

// Generator allocates formatted numbers like SL-2026-00042. Next must be
// called inside the transaction that persists the numbered record so the
// counter row lock serializes allocation with the write.
type Generator interface {
	Next(ctx context.Context, db *gorm.DB, prefix string, now time.Time) (string, error)
}
