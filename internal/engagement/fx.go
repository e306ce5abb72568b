package engagement

import (
	"github.com/smallbiznis/ratecard/internal/engagement/service"
	"go.uber.org/fx"
)

var Module = fx.Module("engagement.service",
	fx.Provide(service.NewService),
)
