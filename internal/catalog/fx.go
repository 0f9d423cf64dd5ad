package catalog

import (
	"github.com/storeops/salescore/internal/catalog/repository"
	"github.com/storeops/salescore/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(service.NewLedger),
)
