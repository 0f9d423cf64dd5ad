package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/storeops/salescore/internal/employee/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, employee *domain.Employee) error {
	return db.WithContext(ctx).Create(employee).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Employee, error) {
	var employee domain.Employee
	err := db.WithContext(ctx).First(&employee, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &employee, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, storeID snowflake.ID) ([]domain.Employee, error) {
	var employees []domain.Employee
	stmt := db.WithContext(ctx).Model(&domain.Employee{})
	if storeID != 0 {
		stmt = stmt.Where("store_id = ?", storeID)
	}
	err := stmt.Order("name asc").Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}
