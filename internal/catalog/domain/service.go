package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrInvalidID       = errors.New("invalid_product_id")
	ErrInvalidSKU      = errors.New("invalid_sku")
	ErrInvalidName     = errors.New("invalid_product_name")
	ErrInvalidPrice    = errors.New("invalid_price")
	ErrInvalidQuantity = errors.New("invalid_quantity")
	ErrNotFound        = errors.New("product_not_found")
)

// InsufficientStockError reports a requested quantity exceeding the
// available quantity for a named product.
type InsufficientStockError struct {
	ProductID snowflake.ID
	Available int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s: available %d, requested %d",
		e.ProductID.String(), e.Available, e.Requested)
}

type CreateProductRequest struct {
	SKU               string
	Name              string
	Price             int64
	InitialQuantity   int64
	CriticalThreshold int64
	ExcessThreshold   int64
}

type ListProductFilter struct {
	SKU         string
	StockStatus StockStatus
}

type AdjustStockRequest struct {
	ProductID string
	Delta     int64
}

// Service is the catalog surface consumed by the boundary layer.
type Service interface {
	Ledger

	Create(ctx context.Context, req CreateProductRequest) (Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	Exists(ctx context.Context, id snowflake.ID) (bool, error)
	List(ctx context.Context, filter ListProductFilter) ([]Product, error)
	AdjustStock(ctx context.Context, req AdjustStockRequest) (Product, error)
}

// Ledger is the transactional stock surface consumed by the sale engine.
// The db handle is the caller's transaction; both operations lock the
// product row, apply the quantity change, recompute the stock status, and
// journal a movement.
type Ledger interface {
	Decrease(ctx context.Context, db *gorm.DB, productID snowflake.ID, saleID *snowflake.ID, qty int64) (*Product, error)
	Increase(ctx context.Context, db *gorm.DB, productID snowflake.ID, saleID *snowflake.ID, qty int64) (*Product, error)
}
