package domain

import (
	"context"
	"errors"
)

type UpsertRequest struct {
	SubjectID string
	Name      string
	Country   string
	Currency  string
	Avatar    string
}

type Service interface {
	Upsert(ctx context.Context, req UpsertRequest) (Profile, error)
	// Get returns the stored profile, or an unsaved default profile priced in
	// the base currency when the subject has none.
	Get(ctx context.Context, subjectID string) (Profile, error)
}

var (
	ErrInvalidSubject = errors.New("invalid_subject")
)
