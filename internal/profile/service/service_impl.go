package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/ratecard/internal/clock"
	currencydomain "github.com/smallbiznis/ratecard/internal/currency/domain"
	"github.com/smallbiznis/ratecard/internal/profile/domain"
	"github.com/smallbiznis/ratecard/pkg/db"
	"github.com/smallbiznis/ratecard/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Currency currencydomain.Service
}

type Service struct {
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	currency currencydomain.Service
	repo     repository.Repository[domain.Profile]
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("profile.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		currency: p.Currency,
		repo:     repository.ProvideStore[domain.Profile](p.DB),
	}
}

func (s *Service) Get(ctx context.Context, subjectID string) (domain.Profile, error) {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return domain.Profile{}, domain.ErrInvalidSubject
	}

	item, err := s.repo.FindOne(ctx, &domain.Profile{SubjectID: subjectID})
	if err != nil {
		return domain.Profile{}, err
	}
	if item == nil {
		return domain.Profile{
			SubjectID: subjectID,
			Currency:  s.currency.Base(),
		}, nil
	}
	return *item, nil
}

// Upsert creates or replaces the subject's profile. An empty currency keeps
// the stored one; any other value must be in the currency table.
func (s *Service) Upsert(ctx context.Context, req domain.UpsertRequest) (domain.Profile, error) {
	subjectID := strings.TrimSpace(req.SubjectID)
	if subjectID == "" {
		return domain.Profile{}, domain.ErrInvalidSubject
	}

	currency := currencydomain.NormalizeCode(req.Currency)
	if currency != "" {
		if _, err := s.currency.Multiplier(currency); err != nil {
			return domain.Profile{}, err
		}
	}

	existing, err := s.repo.FindOne(ctx, &domain.Profile{SubjectID: subjectID})
	if err != nil {
		return domain.Profile{}, err
	}

	now := s.clock.Now()
	if existing == nil {
		if currency == "" {
			currency = s.currency.Base()
		}
		profile := domain.Profile{
			ID:        s.genID.Generate(),
			SubjectID: subjectID,
			Name:      strings.TrimSpace(req.Name),
			Country:   strings.TrimSpace(req.Country),
			Currency:  currency,
			Avatar:    strings.TrimSpace(req.Avatar),
			CreatedAt: now,
			UpdatedAt: now,
		}
		err := s.repo.Create(ctx, &profile)
		if err == nil {
			s.log.Info("profile created", zap.String("subject_id", subjectID), zap.String("currency", currency))
			return profile, nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return domain.Profile{}, err
		}
		// lost a race with a concurrent create; update the winner instead
		existing, err = s.repo.FindOne(ctx, &domain.Profile{SubjectID: subjectID})
		if err != nil {
			return domain.Profile{}, err
		}
		if existing == nil {
			return domain.Profile{}, gorm.ErrRecordNotFound
		}
	}

	existing.Name = strings.TrimSpace(req.Name)
	existing.Country = strings.TrimSpace(req.Country)
	existing.Avatar = strings.TrimSpace(req.Avatar)
	if currency != "" {
		existing.Currency = currency
	}
	existing.UpdatedAt = now

	if err := s.repo.Save(ctx, existing); err != nil {
		return domain.Profile{}, err
	}
	return *existing, nil
}
