package employee

import (
	"github.com/storeops/salescore/internal/employee/repository"
	"github.com/storeops/salescore/internal/employee/service"
	"go.uber.org/fx"
)

var Module = fx.Module("employee.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
