package profile

import (
	"github.com/smallbiznis/ratecard/internal/profile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("profile.service",
	fx.Provide(service.New),
)
