package directory

import (
	"github.com/Cachi0001/bizcore/internal/directory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("directory.service",
	fx.Provide(service.New),
)
