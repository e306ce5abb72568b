package domain

import "errors"

type Service interface {
	Aggregate(items []ContentItem) (Summary, error)
	AverageEngagement(rates []float64) float64
}

var (
	ErrInsufficientData = errors.New("insufficient_data")
	ErrInvalidCounter   = errors.New("invalid_counter")
	ErrCounterOverflow  = errors.New("counter_overflow")
)
