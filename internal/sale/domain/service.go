package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrInvalidID         = errors.New("invalid_sale_id")
	ErrInvalidCustomerID = errors.New("invalid_customer_id")
	ErrInvalidStoreID    = errors.New("invalid_store_id")
	ErrInvalidEmployeeID = errors.New("invalid_employee_id")
	ErrInvalidProductID  = errors.New("invalid_product_id")
	ErrInvalidStatus     = errors.New("invalid_sale_status")
	ErrEmptyLines        = errors.New("sale_requires_lines")
	ErrInvalidQuantity   = errors.New("invalid_line_quantity")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrCustomerNotFound  = errors.New("customer_not_found")
	ErrStoreNotFound     = errors.New("store_not_found")
	ErrEmployeeNotFound  = errors.New("employee_not_found")
	ErrNotFound          = errors.New("sale_not_found")

	// ErrConflict signals a lost race (sale number collision or a
	// concurrent stock decrement); the whole operation should be retried.
	ErrConflict = errors.New("sale_conflict")
)

// InvalidTransitionError reports a status change that violates the
// lifecycle state machine.
type InvalidTransitionError struct {
	From   SaleStatus
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s: %s", e.From, e.Reason)
}

type CreateSaleLine struct {
	ProductID string
	Quantity  int64
	UnitPrice int64
	Discount  int64
}

type CreateSaleRequest struct {
	CustomerID      string
	StoreID         string
	EmployeeID      string
	PaymentMethod   PaymentMethod
	Paid            bool
	ShippingAddress string
	ShippingCost    int64
	DiscountAmount  int64
	Notes           string
	Lines           []CreateSaleLine
}

type ListSaleRequest struct {
	StoreID    string
	CustomerID string
	Status     SaleStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

// ListSaleFilter is the parsed form of ListSaleRequest handed to the
// repository.
type ListSaleFilter struct {
	StoreID    snowflake.ID
	CustomerID snowflake.ID
	Status     SaleStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}

// UpdateSaleRequest is the narrow free-field update: only status, paid,
// payment date, and notes can change after creation, and only within the
// state machine's rules.
type UpdateSaleRequest struct {
	Status      *SaleStatus
	Paid        *bool
	PaymentDate *time.Time
	Notes       *string
}

type Service interface {
	Create(ctx context.Context, req CreateSaleRequest) (Sale, error)
	GetByID(ctx context.Context, id string) (Sale, error)
	GetByNumber(ctx context.Context, number string) (Sale, error)
	List(ctx context.Context, req ListSaleRequest) ([]Sale, error)
	MarkPaid(ctx context.Context, id string) (Sale, error)
	Complete(ctx context.Context, id string) (Sale, error)
	Cancel(ctx context.Context, id string, reason string) (Sale, error)
	Update(ctx context.Context, id string, req UpdateSaleRequest) (Sale, error)
}
