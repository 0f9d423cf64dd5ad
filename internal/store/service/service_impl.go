package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/storeops/salescore/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("store.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateStoreRequest) (domain.Store, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return domain.Store{}, domain.ErrInvalidCode
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Store{}, domain.ErrInvalidName
	}

	store := domain.Store{
		ID:      s.genID.Generate(),
		Code:    code,
		Name:    name,
		City:    strings.TrimSpace(req.City),
		Address: strings.TrimSpace(req.Address),
	}

	if err := s.repo.Insert(ctx, s.db, &store); err != nil {
		return domain.Store{}, err
	}
	return store, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Store, error) {
	storeID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || storeID == 0 {
		return domain.Store{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, storeID)
	if err != nil {
		return domain.Store{}, err
	}
	if item == nil {
		return domain.Store{}, domain.ErrNotFound
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

func (s *Service) List(ctx context.Context) ([]domain.Store, error) {
	return s.repo.List(ctx, s.db)
}
