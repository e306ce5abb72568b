package domain

import (
	"context"
	"errors"

	engagementdomain "github.com/smallbiznis/ratecard/internal/engagement/domain"
)

type ConnectRequest struct {
	SubjectID string
	Platform  string
	Username  string
	Metadata  map[string]any
}

// SyncRequest carries metrics already fetched from the platform: the
// current follower count and counters of the most recent content.
type SyncRequest struct {
	SubjectID string
	Platform  string
	Followers int64
	Items     []engagementdomain.ContentItem
}

type Service interface {
	Connect(ctx context.Context, req ConnectRequest) (Account, error)
	Disconnect(ctx context.Context, subjectID, platform string) error
	List(ctx context.Context, subjectID string) ([]Account, error)
	Get(ctx context.Context, subjectID, platform string) (Account, error)
	Sync(ctx context.Context, req SyncRequest) (Account, error)
}

var (
	ErrInvalidSubject   = errors.New("invalid_subject")
	ErrInvalidPlatform  = errors.New("invalid_platform")
	ErrInvalidUsername  = errors.New("invalid_username")
	ErrInvalidFollowers = errors.New("invalid_followers")
	ErrNotFound         = errors.New("not_found")
)
