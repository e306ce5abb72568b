package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ratecard/internal/clock"
	engagementdomain "github.com/smallbiznis/ratecard/internal/engagement/domain"
	"github.com/smallbiznis/ratecard/internal/observability/metrics"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	"github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"github.com/smallbiznis/ratecard/pkg/db"
	"github.com/smallbiznis/ratecard/pkg/db/option"
	"github.com/smallbiznis/ratecard/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB            *gorm.DB
	Log           *zap.Logger
	GenID         *snowflake.Node
	Clock         clock.Clock
	Engagement    engagementdomain.Service
	Metrics       *metrics.Metrics       `optional:"true"`
	EngineMetrics *metrics.EngineMetrics `optional:"true"`
}

type Service struct {
	log           *zap.Logger
	genID         *snowflake.Node
	clock         clock.Clock
	engagement    engagementdomain.Service
	metrics       *metrics.Metrics
	engineMetrics *metrics.EngineMetrics
	repo          repository.Repository[domain.Account]
}

func New(p Params) domain.Service {
	return &Service{
		log:           p.Log.Named("socialaccount.service"),
		genID:         p.GenID,
		clock:         p.Clock,
		engagement:    p.Engagement,
		metrics:       p.Metrics,
		engineMetrics: p.EngineMetrics,
		repo:          repository.ProvideStore[domain.Account](p.DB),
	}
}

// Connect links a platform account, replacing any previous link for the
// same platform. Synced metrics of a replaced link are kept.
func (s *Service) Connect(ctx context.Context, req domain.ConnectRequest) (domain.Account, error) {
	subjectID, platform, err := parseKey(req.SubjectID, req.Platform)
	if err != nil {
		return domain.Account{}, err
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return domain.Account{}, domain.ErrInvalidUsername
	}

	metadata := datatypes.JSONMap{}
	for k, v := range req.Metadata {
		metadata[k] = v
	}

	now := s.clock.Now()
	existing, err := s.repo.FindOne(ctx, &domain.Account{SubjectID: subjectID, Platform: platform})
	if err != nil {
		return domain.Account{}, err
	}
	if existing == nil {
		account := domain.Account{
			ID:          s.genID.Generate(),
			SubjectID:   subjectID,
			Platform:    platform,
			Username:    username,
			IsConnected: true,
			Metadata:    metadata,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Create(ctx, &account); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return s.Connect(ctx, req)
			}
			return domain.Account{}, err
		}
		s.log.Info("account connected",
			zap.String("subject_id", subjectID),
			zap.String("platform", platform),
		)
		return account, nil
	}

	existing.Username = username
	existing.IsConnected = true
	existing.Metadata = metadata
	existing.UpdatedAt = now
	if err := s.repo.Save(ctx, existing); err != nil {
		return domain.Account{}, err
	}
	return *existing, nil
}

func (s *Service) Disconnect(ctx context.Context, subjectID, platform string) error {
	subjectID, normalized, err := parseKey(subjectID, platform)
	if err != nil {
		return err
	}

	deleted, err := s.repo.Delete(ctx, &domain.Account{SubjectID: subjectID, Platform: normalized})
	if err != nil {
		return err
	}
	if deleted == 0 {
		return domain.ErrNotFound
	}
	s.log.Info("account disconnected",
		zap.String("subject_id", subjectID),
		zap.String("platform", normalized),
	)
	return nil
}

// List returns the subject's accounts in platform order.
func (s *Service) List(ctx context.Context, subjectID string) ([]domain.Account, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return nil, domain.ErrInvalidSubject
	}

	items, err := s.repo.Find(ctx, &domain.Account{SubjectID: subjectID}, option.OrderBy("platform asc"))
	if err != nil {
		return nil, err
	}

	accounts := make([]domain.Account, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		accounts = append(accounts, *item)
	}
	return accounts, nil
}

func (s *Service) Get(ctx context.Context, subjectID, platform string) (domain.Account, error) {
	subjectID, normalized, err := parseKey(subjectID, platform)
	if err != nil {
		return domain.Account{}, err
	}

	item, err := s.repo.FindOne(ctx, &domain.Account{SubjectID: subjectID, Platform: normalized})
	if err != nil {
		return domain.Account{}, err
	}
	if item == nil {
		return domain.Account{}, domain.ErrNotFound
	}
	return *item, nil
}

var aggregateErrorReasons = map[error]string{
	engagementdomain.ErrInsufficientData: metrics.EngineErrorInsufficientData,
	engagementdomain.ErrInvalidCounter:   metrics.EngineErrorInvalidInput,
	engagementdomain.ErrCounterOverflow:  metrics.EngineErrorOutOfRange,
}

// Sync aggregates freshly fetched content counters and stores the result on
// the connected account. The account must already exist.
func (s *Service) Sync(ctx context.Context, req domain.SyncRequest) (domain.Account, error) {
	if req.Followers < 0 {
		return domain.Account{}, domain.ErrInvalidFollowers
	}

	account, err := s.Get(ctx, req.SubjectID, req.Platform)
	if err != nil {
		return domain.Account{}, err
	}

	summary, err := s.engagement.Aggregate(req.Items)
	if err != nil {
		s.engineMetrics.IncError(metrics.ClassifyEngineError(err, aggregateErrorReasons))
		return domain.Account{}, err
	}
	s.engineMetrics.ObserveEngagement(summary.EngagementRate)

	now := s.clock.Now()
	account.Followers = req.Followers
	account.EngagementRate = summary.EngagementRate
	account.AvgViews = summary.AvgViews
	account.LastSyncAt = &now
	account.UpdatedAt = now

	if err := s.repo.Save(ctx, &account); err != nil {
		return domain.Account{}, err
	}

	s.metrics.RecordAccountSync(ctx, account.Platform)
	s.log.Info("account synced",
		zap.String("subject_id", account.SubjectID),
		zap.String("platform", account.Platform),
		zap.Int64("followers", account.Followers),
		zap.Float64("engagement_rate", account.EngagementRate),
		zap.Int("items", summary.ItemCount),
	)
	return account, nil
}

func parseKey(subjectID, platform string) (string, string, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return "", "", domain.ErrInvalidSubject
	}
	normalized := ratingdomain.NormalizePlatform(platform)
	if !normalized.Known() {
		return "", "", domain.ErrInvalidPlatform
	}
	return subjectID, string(normalized), nil
}
