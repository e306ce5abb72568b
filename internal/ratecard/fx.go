package ratecard

import (
	"github.com/smallbiznis/ratecard/internal/ratecard/repository"
	"github.com/smallbiznis/ratecard/internal/ratecard/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ratecard.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
