package catalog

import (
	"github.com/Cachi0001/bizcore/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(service.New),
)
