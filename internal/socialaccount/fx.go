package socialaccount

import (
	"github.com/smallbiznis/ratecard/internal/socialaccount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("socialaccount.service",
	fx.Provide(service.New),
)
