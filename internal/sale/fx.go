package sale

import (
	"github.com/storeops/salescore/internal/sale/repository"
	"github.com/storeops/salescore/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
