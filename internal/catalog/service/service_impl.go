package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/storeops/salescore/internal/catalog/domain"
	"github.com/storeops/salescore/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

// NewLedger exposes the transactional stock surface of the catalog service.
func NewLedger(svc domain.Service) domain.Ledger {
	return svc
}

func (s *Service) Create(ctx context.Context, req domain.CreateProductRequest) (domain.Product, error) {
	sku := strings.ToUpper(strings.TrimSpace(req.SKU))
	if sku == "" {
		return domain.Product{}, domain.ErrInvalidSKU
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Product{}, domain.ErrInvalidName
	}
	if req.Price < 0 {
		return domain.Product{}, domain.ErrInvalidPrice
	}
	if req.InitialQuantity < 0 || req.CriticalThreshold < 0 || req.ExcessThreshold < 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	now := s.clock.Now()
	product := domain.Product{
		ID:                s.genID.Generate(),
		SKU:               sku,
		Name:              name,
		Price:             req.Price,
		AvailableQuantity: req.InitialQuantity,
		CriticalThreshold: req.CriticalThreshold,
		ExcessThreshold:   req.ExcessThreshold,
		StockStatus:       domain.StatusFor(req.InitialQuantity, req.CriticalThreshold, req.ExcessThreshold),
		Metadata:          datatypes.JSONMap{},
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &product); err != nil {
			return err
		}
		if req.InitialQuantity > 0 {
			return s.repo.InsertMovement(ctx, tx, &domain.StockMovement{
				ID:                s.genID.Generate(),
				ProductID:         product.ID,
				MovementType:      domain.MovementTypeAdjustment,
				Quantity:          req.InitialQuantity,
				ResultingQuantity: req.InitialQuantity,
				OccurredAt:        now,
			})
		}
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	return product, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return domain.Product{}, err
	}

	item, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return domain.Product{}, err
	}
	if item == nil {
		return domain.Product{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) Exists(ctx context.Context, id snowflake.ID) (bool, error) {
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return false, err
	}
	return item != nil, nil
}

func (s *Service) List(ctx context.Context, filter domain.ListProductFilter) ([]domain.Product, error) {
	return s.repo.List(ctx, s.db, filter)
}

func (s *Service) AdjustStock(ctx context.Context, req domain.AdjustStockRequest) (domain.Product, error) {
	productID, err := parseID(req.ProductID)
	if err != nil {
		return domain.Product{}, err
	}
	if req.Delta == 0 {
		return domain.Product{}, domain.ErrInvalidQuantity
	}

	var adjusted *domain.Product
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		adjusted, err = s.apply(ctx, tx, productID, nil, req.Delta, domain.MovementTypeAdjustment)
		return err
	})
	if err != nil {
		return domain.Product{}, err
	}
	return *adjusted, nil
}

func (s *Service) Decrease(ctx context.Context, tx *gorm.DB, productID snowflake.ID, saleID *snowflake.ID, qty int64) (*domain.Product, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return s.apply(ctx, tx, productID, saleID, -qty, domain.MovementTypeSale)
}

func (s *Service) Increase(ctx context.Context, tx *gorm.DB, productID snowflake.ID, saleID *snowflake.ID, qty int64) (*domain.Product, error) {
	if qty <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	return s.apply(ctx, tx, productID, saleID, qty, domain.MovementTypeRestitution)
}

// apply locks the product row, moves its quantity by delta, recomputes the
// stock status, and journals the movement. Available quantity never goes
// negative: an outbound delta larger than the available quantity fails with
// InsufficientStockError before any write.
func (s *Service) apply(ctx context.Context, tx *gorm.DB, productID snowflake.ID, saleID *snowflake.ID, delta int64, movement domain.MovementType) (*domain.Product, error) {
	product, err := s.repo.FindByIDForUpdate(ctx, tx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	next := product.AvailableQuantity + delta
	if next < 0 {
		return nil, &domain.InsufficientStockError{
			ProductID: product.ID,
			Available: product.AvailableQuantity,
			Requested: -delta,
		}
	}

	now := s.clock.Now()
	product.AvailableQuantity = next
	product.StockStatus = domain.StatusFor(next, product.CriticalThreshold, product.ExcessThreshold)
	product.UpdatedAt = now

	if err := s.repo.UpdateStock(ctx, tx, product); err != nil {
		return nil, err
	}
	if err := s.repo.InsertMovement(ctx, tx, &domain.StockMovement{
		ID:                s.genID.Generate(),
		ProductID:         product.ID,
		SaleID:            saleID,
		MovementType:      movement,
		Quantity:          delta,
		ResultingQuantity: next,
		OccurredAt:        now,
	}); err != nil {
		return nil, err
	}

	return product, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
