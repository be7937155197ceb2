package history

import "go.uber.org/fx"

// Module wires the local last-known-snapshot store.
var Module = fx.Module("history",
	fx.Provide(New),
)
