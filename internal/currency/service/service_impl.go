package service

import (
	"fmt"

	"github.com/smallbiznis/ratecard/internal/config"
	"github.com/smallbiznis/ratecard/internal/currency/domain"
)

type Service struct {
	table domain.Table
}

func NewService(cfg config.PricingConfig) domain.Service {
	return NewFromTable(domain.NewTable(cfg.BaseCurrency, cfg.Currencies))
}

func NewFromTable(table domain.Table) *Service {
	return &Service{table: table}
}

// Multiplier returns the conversion factor for code. Unknown codes fail with
// ErrUnsupportedCurrency; there is no default multiplier.
func (s *Service) Multiplier(code string) (float64, error) {
	normalized := domain.NormalizeCode(code)
	multiplier, ok := s.table.Lookup(normalized)
	if !ok {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnsupportedCurrency, normalized)
	}
	return multiplier, nil
}

func (s *Service) Convert(amount float64, code string) (float64, error) {
	multiplier, err := s.Multiplier(code)
	if err != nil {
		return 0, err
	}
	return amount * multiplier, nil
}

func (s *Service) Supported(code string) bool {
	_, ok := s.table.Lookup(code)
	return ok
}

func (s *Service) List() []domain.Currency {
	return s.table.Currencies()
}

func (s *Service) Base() string {
	return s.table.Base()
}
