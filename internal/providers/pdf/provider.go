package pdf

import (
	"context"
	"io"
	"time"

	ratecarddomain "github.com/smallbiznis/ratecard/internal/ratecard/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.pdf",
	fx.Provide(New),
)

// RateCardSheet is the input for a printable rate card history.
type RateCardSheet struct {
	SubjectID   string
	DisplayName string
	Currency    string
	GeneratedAt time.Time
	Cards       []ratecarddomain.RateCard
}

type Provider interface {
	RenderRateCards(ctx context.Context, sheet RateCardSheet) (io.Reader, error)
}
