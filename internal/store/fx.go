package store

import (
	"github.com/storeops/salescore/internal/store/repository"
	"github.com/storeops/salescore/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
