package sequence

import (
	"github.com/storeops/salescore/internal/sequence/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sequence.generator",
	fx.Provide(service.New),
)
