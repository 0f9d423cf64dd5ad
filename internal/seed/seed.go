// Package seed provisions the minimum directory rows a fresh install
// needs before the first sale can be recorded.
package seed

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	storedomain "github.com/storeops/salescore/internal/store/domain"
	"gorm.io/gorm"
)

const defaultStoreCode = "MAIN"

// EnsureDefaultStore creates the MAIN store when no store exists yet.
func EnsureDefaultStore(conn *gorm.DB, genID *snowflake.Node) error {
	var existing storedomain.Store
	err := conn.First(&existing, "code = ?", defaultStoreCode).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	now := time.Now().UTC()
	store := storedomain.Store{
		ID:        genID.Generate(),
		Code:      defaultStoreCode,
		Name:      "Main Store",
		CreatedAt: now,
		UpdatedAt: now,
	}
	return conn.Create(&store).Error
}
