package service

import (
	"context"
	"fmt"

	"github.com/storeops/salescore/internal/report/domain"
	saledomain "github.com/storeops/salescore/internal/sale/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultTopProductLimit = 10

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func New(p Params) domain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("report.service"),
	}
}

// dayExpr and monthExpr return the dialect's expression for truncating the
// sale date. Only the dialects the engine ships drivers for are handled.
func (s *Service) dayExpr() string {
	switch s.db.Dialector.Name() {
	case "postgres":
		return "to_char(date, 'YYYY-MM-DD')"
	case "mysql":
		return "DATE_FORMAT(date, '%Y-%m-%d')"
	default:
		return "strftime('%Y-%m-%d', date)"
	}
}

func (s *Service) monthExpr() string {
	switch s.db.Dialector.Name() {
	case "postgres":
		return "to_char(date, 'YYYY-MM')"
	case "mysql":
		return "DATE_FORMAT(date, '%Y-%m')"
	default:
		return "strftime('%Y-%m', date)"
	}
}

func (s *Service) base(ctx context.Context, r domain.Range) *gorm.DB {
	stmt := s.db.WithContext(ctx).
		Model(&saledomain.Sale{}).
		Where("status <> ?", saledomain.SaleStatusCancelled)
	if r.StoreID != 0 {
		stmt = stmt.Where("store_id = ?", r.StoreID)
	}
	if r.DateFrom != nil {
		stmt = stmt.Where("date >= ?", *r.DateFrom)
	}
	if r.DateTo != nil {
		stmt = stmt.Where("date <= ?", *r.DateTo)
	}
	return stmt
}

func (s *Service) DailyTotals(ctx context.Context, r domain.Range) ([]domain.DailyTotal, error) {
	var rows []domain.DailyTotal
	expr := s.dayExpr()
	err := s.base(ctx, r).
		Select(fmt.Sprintf("%s AS day, COUNT(*) AS sale_count, COALESCE(SUM(total_amount), 0) AS total", expr)).
		Group(expr).
		Order("day asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) MonthlyTotals(ctx context.Context, r domain.Range) ([]domain.MonthlyTotal, error) {
	var rows []domain.MonthlyTotal
	expr := s.monthExpr()
	err := s.base(ctx, r).
		Select(fmt.Sprintf("%s AS month, COUNT(*) AS sale_count, COALESCE(SUM(total_amount), 0) AS total", expr)).
		Group(expr).
		Order("month asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) TopProducts(ctx context.Context, r domain.Range, limit int) ([]domain.TopProduct, error) {
	if limit <= 0 {
		limit = defaultTopProductLimit
	}
	var rows []domain.TopProduct
	err := s.base(ctx, r).
		Select("sale_lines.product_id AS product_id, sale_lines.product_name AS product_name, "+
			"SUM(sale_lines.quantity) AS quantity_sold, COALESCE(SUM(sale_lines.line_total), 0) AS revenue").
		Joins("JOIN sale_lines ON sale_lines.sale_id = sales.id").
		Group("sale_lines.product_id, sale_lines.product_name").
		Order("quantity_sold desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Service) EmployeePerformance(ctx context.Context, r domain.Range) ([]domain.EmployeePerformance, error) {
	var rows []domain.EmployeePerformance
	err := s.base(ctx, r).
		Select("sales.employee_id AS employee_id, employees.name AS name, "+
			"COUNT(*) AS sale_count, COALESCE(SUM(sales.total_amount), 0) AS total").
		Joins("JOIN employees ON employees.id = sales.employee_id").
		Group("sales.employee_id, employees.name").
		Order("total desc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
