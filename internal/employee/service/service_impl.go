package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/storeops/salescore/internal/employee/domain"
	storedomain "github.com/storeops/salescore/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Repo   domain.Repository
	Stores storedomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	repo   domain.Repository
	stores storedomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("employee.service"),
		genID:  p.GenID,
		repo:   p.Repo,
		stores: p.Stores,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateEmployeeRequest) (domain.Employee, error) {
	storeID, err := snowflake.ParseString(strings.TrimSpace(req.StoreID))
	if err != nil || storeID == 0 {
		return domain.Employee{}, domain.ErrInvalidStoreID
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Employee{}, domain.ErrInvalidName
	}

	ok, err := s.stores.Exists(ctx, storeID)
	if err != nil {
		return domain.Employee{}, err
	}
	if !ok {
		return domain.Employee{}, storedomain.ErrNotFound
	}

	employee := domain.Employee{
		ID:      s.genID.Generate(),
		StoreID: storeID,
		Name:    name,
		Email:   strings.TrimSpace(req.Email),
		Role:    strings.TrimSpace(req.Role),
	}

	if err := s.repo.Insert(ctx, s.db, &employee); err != nil {
		return domain.Employee{}, err
	}
	return employee, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Employee, error) {
	employeeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || employeeID == 0 {
		return domain.Employee{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, employeeID)
	if err != nil {
		return domain.Employee{}, err
	}
	if item == nil {
		return domain.Employee{}, domain.ErrNotFound
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

func (s *Service) List(ctx context.Context, storeID string) ([]domain.Employee, error) {
	var id snowflake.ID
	if trimmed := strings.TrimSpace(storeID); trimmed != "" {
		parsed, err := snowflake.ParseString(trimmed)
		if err != nil {
			return nil, domain.ErrInvalidStoreID
		}
		id = parsed
	}
	return s.repo.List(ctx, s.db, id)
}
