package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	seqdomain "github.com/storeops/salescore/internal/sequence/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupGenerator(t *testing.T) (seqdomain.Generator, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&seqdomain.Counter{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return New(Params{Log: zap.NewNop()}), conn
}

// nextInTx calls Next inside a transaction, as the generator's contract
// requires (it allocates via savepoints on the caller's transaction).
func nextInTx(ctx context.Context, gen seqdomain.Generator, conn *gorm.DB, prefix string, now time.Time) (string, error) {
	var number string
	err := conn.Transaction(func(tx *gorm.DB) error {
		n, nextErr := gen.Next(ctx, tx, prefix, now)
		number = n
		return nextErr
	})
	return number, err
}

func TestNextFormatsNumber(t *testing.T) {
	gen, conn := setupGenerator(t)
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	number, err := nextInTx(context.Background(), gen, conn, "SL", now)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if number != "SL-2026-00001" {
		t.Fatalf("number = %s, want SL-2026-00001", number)
	}
}

func TestNextIncrementsStrictly(t *testing.T) {
	gen, conn := setupGenerator(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		number, err := nextInTx(ctx, gen, conn, "SL", now)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		want := fmt.Sprintf("SL-2026-%05d", i)
		if number != want {
			t.Fatalf("number = %s, want %s", number, want)
		}
	}
}

func TestNextScopesByYear(t *testing.T) {
	gen, conn := setupGenerator(t)
	ctx := context.Background()

	if _, err := nextInTx(ctx, gen, conn, "SL", time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC)); err != nil {
		t.Fatalf("next 2026: %v", err)
	}

	number, err := nextInTx(ctx, gen, conn, "SL", time.Date(2027, 1, 1, 0, 1, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next 2027: %v", err)
	}
	if number != "SL-2027-00001" {
		t.Fatalf("number = %s, want SL-2027-00001 (fresh counter per year)", number)
	}
}

func TestNextScopesByPrefix(t *testing.T) {
	gen, conn := setupGenerator(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	if _, err := nextInTx(ctx, gen, conn, "SL", now); err != nil {
		t.Fatalf("next SL: %v", err)
	}
	if _, err := nextInTx(ctx, gen, conn, "SL", now); err != nil {
		t.Fatalf("next SL: %v", err)
	}

	number, err := nextInTx(ctx, gen, conn, "INV", now)
	if err != nil {
		t.Fatalf("next INV: %v", err)
	}
	if number != "INV-2026-00001" {
		t.Fatalf("number = %s, want INV-2026-00001 (independent prefix)", number)
	}
}

func TestNextNormalizesPrefix(t *testing.T) {
	gen, conn := setupGenerator(t)

	number, err := nextInTx(context.Background(), gen, conn, "  sl ", time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if number != "SL-2026-00001" {
		t.Fatalf("number = %s, want SL-2026-00001", number)
	}
}

func TestNextRejectsEmptyPrefix(t *testing.T) {
	gen, conn := setupGenerator(t)

	_, err := gen.Next(context.Background(), conn, "   ", time.Now())
	if !errors.Is(err, seqdomain.ErrInvalidPrefix) {
		t.Fatalf("err = %v, want ErrInvalidPrefix", err)
	}
}

func TestNextInsertRaceExhaustionReturnsConflict(t *testing.T) {
	gen, conn := setupGenerator(t)

	// Make every counter insert report a duplicate key, as if another
	// transaction keeps winning the first-of-year race.
	err := conn.Callback().Create().Before("gorm:create").Register("counter_race", func(db *gorm.DB) {
		if db.Statement.Schema != nil && db.Statement.Schema.Table == "sequence_counters" {
			db.AddError(gorm.ErrDuplicatedKey)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	txErr := conn.Transaction(func(tx *gorm.DB) error {
		_, nextErr := gen.Next(context.Background(), tx, "SL", time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC))
		if !errors.Is(nextErr, seqdomain.ErrConflict) {
			t.Fatalf("err = %v, want ErrConflict", nextErr)
		}

		// The savepoint rollback must leave the surrounding transaction
		// usable so the caller can retry or roll back cleanly.
		var count int64
		return tx.Model(&seqdomain.Counter{}).Count(&count).Error
	})
	if txErr != nil {
		t.Fatalf("transaction after conflict: %v", txErr)
	}
}

func TestNextConcurrentAllocationsAreUnique(t *testing.T) {
	gen, conn := setupGenerator(t)
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	const workers = 8
	numbers := make(chan string, workers)
	fails := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for attempt := 0; attempt < 500; attempt++ {
				var number string
				err := conn.Transaction(func(tx *gorm.DB) error {
					n, nextErr := gen.Next(context.Background(), tx, "SL", now)
					number = n
					return nextErr
				})
				if err == nil {
					numbers <- number
					return
				}
				// sqlite rejects overlapping writers; back off and retry
				time.Sleep(time.Millisecond)
			}
			fails <- fmt.Errorf("allocation did not settle")
		}()
	}
	wg.Wait()
	close(numbers)
	close(fails)

	for err := range fails {
		t.Fatalf("worker: %v", err)
	}

	seen := make(map[string]bool, workers)
	for number := range numbers {
		if seen[number] {
			t.Fatalf("duplicate number %s", number)
		}
		seen[number] = true
	}
	for i := 1; i <= workers; i++ {
		want := fmt.Sprintf("SL-2026-%05d", i)
		if !seen[want] {
			t.Fatalf("missing %s", want)
		}
	}
}
