package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/storeops/salescore/internal/sale/domain"
	"github.com/storeops/salescore/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertSale(ctx context.Context, conn *gorm.DB, sale *domain.Sale) error {
	return conn.WithContext(ctx).Omit("Lines").Create(sale).Error
}

func (r *repo) InsertLines(ctx context.Context, conn *gorm.DB, lines []domain.SaleLine) error {
	if len(lines) == 0 {
		return nil
	}
	return conn.WithContext(ctx).Create(&lines).Error
}

func (r *repo) FindByID(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Sale, error) {
	return r.findOne(conn.WithContext(ctx).Preload("Lines"), "id = ?", id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, conn *gorm.DB, id snowflake.ID) (*domain.Sale, error) {
	// Locking query must not join; lines are loaded separately.
	var sale domain.Sale
	err := db.ForUpdate(conn.WithContext(ctx)).First(&sale, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

func (r *repo) FindByNumber(ctx context.Context, conn *gorm.DB, number string) (*domain.Sale, error) {
	return r.findOne(conn.WithContext(ctx).Preload("Lines"), "number = ?", number)
}

func (r *repo) findOne(stmt *gorm.DB, query string, arg any) (*domain.Sale, error) {
	var sale domain.Sale
	err := stmt.First(&sale, query, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sale, nil
}

func (r *repo) FindLines(ctx context.Context, conn *gorm.DB, saleID snowflake.ID) ([]domain.SaleLine, error) {
	var lines []domain.SaleLine
	err := conn.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("id asc").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *repo) List(ctx context.Context, conn *gorm.DB, filter domain.ListSaleFilter) ([]domain.Sale, error) {
	var sales []domain.Sale
	stmt := conn.WithContext(ctx).Model(&domain.Sale{}).Preload("Lines")
	if filter.StoreID != 0 {
		stmt = stmt.Where("store_id = ?", filter.StoreID)
	}
	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		stmt = stmt.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		stmt = stmt.Where("date <= ?", *filter.DateTo)
	}
	err := stmt.Order("date desc, id desc").Find(&sales).Error
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (r *repo) UpdateFields(ctx context.Context, conn *gorm.DB, id snowflake.ID, fields map[string]any) error {
	return conn.WithContext(ctx).
		Model(&domain.Sale{}).
		Where("id = ?", id).
		Updates(fields).Error
}
