package sale

import (
	"github.com/Cachi0001/bizcore/internal/sale/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sale.service",
	fx.Provide(service.New),
)
