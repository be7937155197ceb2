package ltv

import "go.uber.org/fx"

var Module = fx.Module("ltv.service",
	fx.Provide(New),
)
