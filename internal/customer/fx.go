package customer

import (
	"github.com/storeops/salescore/internal/customer/repository"
	"github.com/storeops/salescore/internal/customer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("customer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
