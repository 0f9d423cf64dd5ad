// Package domain contains persistence models for the product catalog and
// its stock ledger.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// StockStatus classifies a product's available quantity.
type StockStatus string

const (
	StockStatusSufficient StockStatus = "SUFFICIENT"
	StockStatusLow        StockStatus = "LOW"
	StockStatusDepleted   StockStatus = "DEPLETED"
	StockStatusExcess     StockStatus = "EXCESS"
)

// StatusFor recomputes the stock status for a quantity. An excess threshold
// of zero disables the EXCESS classification.
func StatusFor(quantity, criticalThreshold, excessThreshold int64) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusDepleted
	case quantity <= criticalThreshold:
		return StockStatusLow
	case excessThreshold > 0 && quantity >= excessThreshold:
		return StockStatusExcess
	default:
		return StockStatusSufficient
	}
}

// Product represents a sellable item. Price is in minor currency units.
type Product struct {
	ID                snowflake.ID      `gorm:"primaryKey" json:"id"`
	SKU               string            `gorm:"not null;uniqueIndex" json:"sku"`
	Name              string            `gorm:"not null" json:"name"`
	Price             int64             `gorm:"not null" json:"price"`
	AvailableQuantity int64             `gorm:"not null;default:0" json:"available_quantity"`
	CriticalThreshold int64             `gorm:"not null;default:0" json:"critical_threshold"`
	ExcessThreshold   int64             `gorm:"not null;default:0" json:"excess_threshold"`
	StockStatus       StockStatus       `gorm:"type:text;not null;default:'DEPLETED'" json:"stock_status"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Product) TableName() string { return "products" }

// MovementType identifies why a stock quantity changed.
type MovementType string

const (
	MovementTypeSale        MovementType = "SALE"
	MovementTypeRestitution MovementType = "RESTITUTION"
	MovementTypeAdjustment  MovementType = "ADJUSTMENT"
)

// StockMovement is one row of the stock journal. Quantity is signed:
// negative for outbound, positive for inbound.
type StockMovement struct {
	ID                snowflake.ID  `gorm:"primaryKey" json:"id"`
	ProductID         snowflake.ID  `gorm:"not null;index" json:"product_id"`
	SaleID            *snowflake.ID `gorm:"index" json:"sale_id,omitempty"`
	MovementType      MovementType  `gorm:"type:text;not null" json:"movement_type"`
	Quantity          int64         `gorm:"not null" json:"quantity"`
	ResultingQuantity int64         `gorm:"not null" json:"resulting_quantity"`
	OccurredAt        time.Time     `gorm:"not null;index" json:"occurred_at"`
}

// TableName sets the database table name.
func (StockMovement) TableName() string { return "stock_movements" }
