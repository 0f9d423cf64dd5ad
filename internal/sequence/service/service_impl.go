package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	seqdomain "github.com/storeops/salescore/internal/sequence/domain"
	"github.com/storeops/salescore/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxAllocateAttempts = 3

type Params struct {
	fx.In

	Log *zap.Logger
}

type Generator struct {
	log *zap.Logger
}

func New(p Params) seqdomain.Generator {
	return &Generator{
		log: p.Log.Named("sequence.generator"),
	}
}

func (g *Generator) Next(ctx context.Context, tx *gorm.DB, prefix string, now time.Time) (string, error) {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		return "", seqdomain.ErrInvalidPrefix
	}

	year := now.UTC().Year()
	value, err := g.allocate(ctx, tx, prefix, year)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%05d", prefix, year, value), nil
}

// allocate bumps the counter row for (prefix, year), inserting it on first
// use. A racing first-of-year insert hits the composite primary key; the
// loser rolls back to a savepoint and retries the update against the
// winner's row. The savepoint matters on postgres, where a statement error
// would otherwise abort the whole surrounding transaction.
func (g *Generator) allocate(ctx context.Context, tx *gorm.DB, prefix string, year int) (int64, error) {
	for attempt := 0; attempt < maxAllocateAttempts; attempt++ {
		result := tx.WithContext(ctx).
			Model(&seqdomain.Counter{}).
			Where("prefix = ? AND year = ?", prefix, year).
			Update("value", gorm.Expr("value + 1"))
		if result.Error != nil {
			return 0, result.Error
		}

		if result.RowsAffected == 0 {
			if err := tx.SavePoint("seq_alloc").Error; err != nil {
				return 0, err
			}
			err := tx.WithContext(ctx).Create(&seqdomain.Counter{
				Prefix: prefix,
				Year:   year,
				Value:  1,
			}).Error
			if err != nil {
				if db.IsDuplicateKeyErr(err) {
					if rbErr := tx.RollbackTo("seq_alloc").Error; rbErr != nil {
						return 0, fmt.Errorf("%w: rollback to savepoint: %v", seqdomain.ErrConflict, rbErr)
					}
					g.log.Debug("sequence insert race, retrying",
						zap.String("prefix", prefix),
						zap.Int("year", year),
					)
					continue
				}
				return 0, err
			}
			return 1, nil
		}

		var counter seqdomain.Counter
		err := tx.WithContext(ctx).
			First(&counter, "prefix = ? AND year = ?", prefix, year).Error
		if err != nil {
			return 0, err
		}
		return counter.Value, nil
	}

	return 0, seqdomain.ErrConflict
}
