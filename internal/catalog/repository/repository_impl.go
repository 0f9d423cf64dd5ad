package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/storeops/salescore/internal/catalog/domain"
	"github.com/storeops/salescore/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, product *domain.Product) error {
	return conn.WithContext(ctx).Create(product).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	return r.findByID(conn.WithContext(ctx), id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	return r.findByID(db.ForUpdate(conn.WithContext(ctx)), id)
}

func (r *repo) findByID(stmt *gorm.DB, id snowflake.ID) (*domain.Product, error) {
	var product domain.Product
	err := stmt.First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, filter domain.ListProductFilter) ([]domain.Product, error) {
	var products []domain.Product
	stmt := conn.WithContext(ctx).Model(&domain.Product{})
	if filter.SKU != "" {
		stmt = stmt.Where("sku = ?", filter.SKU)
	}
	if filter.StockStatus != "" {
		stmt = stmt.Where("stock_status = ?", filter.StockStatus)
	}
	err := stmt.Order("created_at desc, id desc").Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repo) UpdateStock(ctx context.Context, conn *gorm.DB, product *domain.Product) error {
	return conn.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ?", product.ID).
		Updates(map[string]any{
			"available_quantity": product.AvailableQuantity,
			"stock_status":       product.StockStatus,
			"updated_at":         product.UpdatedAt,
		}).Error
}

func (r *repo) InsertMovement(ctx context.Context, conn *gorm.DB, movement *domain.StockMovement) error {
	return conn.WithContext(ctx).Create(movement).Error
}
