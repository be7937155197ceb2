package gateway

import "go.uber.org/fx"

// Module wires the upstream records API client.
var Module = fx.Module("gateway",
	fx.Provide(func(c *Client) RecordsAPI { return c }),
	fx.Provide(NewClient),
)
