package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertSale(ctx context.Context, db *gorm.DB, sale *Sale) error
	InsertLines(ctx context.Context, db *gorm.DB, lines []SaleLine) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sale, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Sale, error)
	FindByNumber(ctx context.Context, db *gorm.DB, number string) (*Sale, error)
	FindLines(ctx context.Context, db *gorm.DB, saleID snowflake.ID) ([]SaleLine, error)
	List(ctx context.Context, db *gorm.DB, filter ListSaleFilter) ([]Sale, error)
	UpdateFields(ctx context.Context, db *gorm.DB, id snowflake.ID, fields map[string]any) error
}
