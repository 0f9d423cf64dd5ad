package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, store *Store) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Store, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Store, error)
	List(ctx context.Context, db *gorm.DB) ([]Store, error)
}
