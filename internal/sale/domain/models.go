// Package domain contains persistence models for the sales transaction
// engine. Amounts are minor currency units.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SaleStatus represents sale lifecycle states. Transitions are
// Pending -> Preparing -> Completed, with Pending/Preparing cancellable.
// Completed and Cancelled are terminal.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusPreparing SaleStatus = "PREPARING"
	SaleStatusCompleted SaleStatus = "COMPLETED"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// Valid reports whether the status is one of the closed set.
func (s SaleStatus) Valid() bool {
	switch s {
	case SaleStatusPending, SaleStatusPreparing, SaleStatusCompleted, SaleStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transitions.
func (s SaleStatus) Terminal() bool {
	return s == SaleStatusCompleted || s == SaleStatusCancelled
}

// PaymentMethod identifies how a sale is paid.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// Sale is the transaction header. Lines, price snapshots, party references,
// and the computed totals are write-once at creation.
type Sale struct {
	ID              snowflake.ID      `gorm:"primaryKey" json:"id"`
	Number          string            `gorm:"not null;uniqueIndex" json:"number"`
	Date            time.Time         `gorm:"not null;index" json:"date"`
	Status          SaleStatus        `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	PaymentMethod   PaymentMethod     `gorm:"type:text;not null" json:"payment_method"`
	Paid            bool              `gorm:"not null;default:false" json:"paid"`
	PaymentDate     *time.Time        `gorm:"" json:"payment_date,omitempty"`
	ShippingAddress string            `json:"shipping_address,omitempty"`
	ShippingCost    int64             `gorm:"not null;default:0" json:"shipping_cost"`
	SubtotalAmount  int64             `gorm:"not null;default:0" json:"subtotal_amount"`
	DiscountAmount  int64             `gorm:"not null;default:0" json:"discount_amount"`
	TotalAmount     int64             `gorm:"not null;default:0" json:"total_amount"`
	Notes           string            `gorm:"type:text" json:"notes,omitempty"`
	CustomerID      snowflake.ID      `gorm:"not null;index" json:"customer_id"`
	StoreID         snowflake.ID      `gorm:"not null;index" json:"store_id"`
	EmployeeID      snowflake.ID      `gorm:"not null;index" json:"employee_id"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Lines []SaleLine `gorm:"foreignKey:SaleID" json:"lines"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }

// SaleLine is one line of a sale. UnitPrice is the snapshot captured at
// creation; it is never re-read from the product.
type SaleLine struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	SaleID      snowflake.ID `gorm:"not null;index" json:"sale_id"`
	ProductID   snowflake.ID `gorm:"not null;index" json:"product_id"`
	ProductName string       `gorm:"not null" json:"product_name"`
	UnitPrice   int64        `gorm:"not null" json:"unit_price"`
	Quantity    int64        `gorm:"not null" json:"quantity"`
	Discount    int64        `gorm:"not null;default:0" json:"discount"`
	LineTotal   int64        `gorm:"not null" json:"line_total"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (SaleLine) TableName() string { return "sale_lines" }
