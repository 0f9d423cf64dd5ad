package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateEmployeeRequest struct {
	StoreID string
	Name    string
	Email   string
	Role    string
}

type Service interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (Employee, error)
	GetByID(ctx context.Context, id string) (Employee, error)
	Exists(ctx context.Context, id snowflake.ID) (bool, error)
	List(ctx context.Context, storeID string) ([]Employee, error)
}

var (
	ErrInvalidName    = errors.New("invalid_employee_name")
	ErrInvalidID      = errors.New("invalid_employee_id")
	ErrInvalidStoreID = errors.New("invalid_employee_store_id")
	ErrNotFound       = errors.New("employee_not_found")
)
