package rating

import (
	"github.com/smallbiznis/ratecard/internal/rating/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rating.engine",
	fx.Provide(service.NewEngine),
)
