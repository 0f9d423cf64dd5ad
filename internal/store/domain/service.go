package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type CreateStoreRequest struct {
	Code    string
	Name    string
	City    string
	Address string
}

type Service interface {
	Create(ctx context.Context, req CreateStoreRequest) (Store, error)
	GetByID(ctx context.Context, id string) (Store, error)
	Exists(ctx context.Context, id snowflake.ID) (bool, error)
	List(ctx context.Context) ([]Store, error)
}

var (
	ErrInvalidCode = errors.New("invalid_store_code")
	ErrInvalidName = errors.New("invalid_store_name")
	ErrInvalidID   = errors.New("invalid_store_id")
	ErrNotFound    = errors.New("store_not_found")
)
