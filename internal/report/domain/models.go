// Package domain defines the read models for sales reporting. All
// aggregates exclude cancelled sales.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type DailyTotal struct {
	Day       string `json:"day"`
	SaleCount int64  `json:"sale_count"`
	Total     int64  `json:"total"`
}

type MonthlyTotal struct {
	Month     string `json:"month"`
	SaleCount int64  `json:"sale_count"`
	Total     int64  `json:"total"`
}

type TopProduct struct {
	ProductID    snowflake.ID `json:"product_id"`
	ProductName  string       `json:"product_name"`
	QuantitySold int64        `json:"quantity_sold"`
	Revenue      int64        `json:"revenue"`
}

type EmployeePerformance struct {
	EmployeeID snowflake.ID `json:"employee_id"`
	Name       string       `json:"name"`
	SaleCount  int64        `json:"sale_count"`
	Total      int64        `json:"total"`
}

// Range bounds a report query. A zero StoreID means all stores; nil dates
// mean unbounded.
type Range struct {
	StoreID  snowflake.ID
	DateFrom *time.Time
	DateTo   *time.Time
}

type Service interface {
	DailyTotals(ctx context.Context, r Range) ([]DailyTotal, error)
	MonthlyTotals(ctx context.Context, r Range) ([]MonthlyTotal, error)
	TopProducts(ctx context.Context, r Range, limit int) ([]TopProduct, error)
	EmployeePerformance(ctx context.Context, r Range) ([]EmployeePerformance, error)
}
