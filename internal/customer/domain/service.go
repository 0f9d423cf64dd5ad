package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateCustomerRequest struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (Customer, error)
	GetByID(ctx context.Context, id string) (Customer, error)
	Exists(ctx context.Context, id snowflake.ID) (bool, error)
	List(ctx context.Context) ([]Customer, error)
}

var (
	ErrInvalidName = errors.New("invalid_customer_name")
	ErrInvalidID   = errors.New("invalid_customer_id")
	ErrNotFound    = errors.New("customer_not_found")
)
