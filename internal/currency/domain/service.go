package domain

import "errors"

type Service interface {
	Multiplier(code string) (float64, error)
	Convert(amount float64, code string) (float64, error)
	Supported(code string) bool
	List() []Currency
	Base() string
}

var (
	ErrUnsupportedCurrency = errors.New("unsupported_currency")
)
