package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/ratecard/internal/clock"
	"github.com/smallbiznis/ratecard/internal/config"
	currencydomain "github.com/smallbiznis/ratecard/internal/currency/domain"
	currencyservice "github.com/smallbiznis/ratecard/internal/currency/service"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	"github.com/smallbiznis/ratecard/internal/ratecard/domain"
	"github.com/smallbiznis/ratecard/internal/ratecard/repository"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	ratingservice "github.com/smallbiznis/ratecard/internal/rating/service"
	socialaccountdomain "github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"github.com/smallbiznis/ratecard/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type profileMock struct {
	mock.Mock
}

func (m *profileMock) Upsert(ctx context.Context, req profiledomain.UpsertRequest) (profiledomain.Profile, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(profiledomain.Profile), args.Error(1)
}

func (m *profileMock) Get(ctx context.Context, subjectID string) (profiledomain.Profile, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).(profiledomain.Profile), args.Error(1)
}

type accountsMock struct {
	mock.Mock
}

func (m *accountsMock) Connect(ctx context.Context, req socialaccountdomain.ConnectRequest) (socialaccountdomain.Account, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(socialaccountdomain.Account), args.Error(1)
}

func (m *accountsMock) Disconnect(ctx context.Context, subjectID, platform string) error {
	return m.Called(ctx, subjectID, platform).Error(0)
}

func (m *accountsMock) List(ctx context.Context, subjectID string) ([]socialaccountdomain.Account, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).([]socialaccountdomain.Account), args.Error(1)
}

func (m *accountsMock) Get(ctx context.Context, subjectID, platform string) (socialaccountdomain.Account, error) {
	args := m.Called(ctx, subjectID, platform)
	return args.Get(0).(socialaccountdomain.Account), args.Error(1)
}

func (m *accountsMock) Sync(ctx context.Context, req socialaccountdomain.SyncRequest) (socialaccountdomain.Account, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(socialaccountdomain.Account), args.Error(1)
}

type fixture struct {
	svc      domain.Service
	clock    *clock.FakeClock
	profiles *profileMock
	accounts *accountsMock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(db.SQLiteDSN(filepath.Join(t.TempDir(), "ledger.db"))), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.RateCard{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	pricing := config.DefaultPricingConfig()
	currency := currencyservice.NewService(pricing)
	fake := clock.NewFakeClock(time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC))
	profiles := &profileMock{}
	accounts := &accountsMock{}

	svc := New(Params{
		DB:       conn,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fake,
		Repo:     repository.Provide(),
		Engine:   ratingservice.New(pricing, currency, nil),
		Currency: currency,
		Profiles: profiles,
		Accounts: accounts,
	})

	return fixture{svc: svc, clock: fake, profiles: profiles, accounts: accounts}
}

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	f := newFixture(t)

	card, err := f.svc.Append(context.Background(), domain.RateCard{
		SubjectID:    "creator-1",
		Platform:     "YouTube",
		CampaignType: "Reel",
		BaseRate:     200,
		Currency:     "usd",
	})
	require.NoError(t, err)

	assert.NotZero(t, card.ID)
	assert.True(t, card.CreatedAt.Equal(f.clock.Now()))
	assert.Equal(t, "youtube", card.Platform)
	assert.Equal(t, "reel", card.CampaignType)
	assert.Equal(t, "USD", card.Currency)
	assert.True(t, card.IsActive)
}

func TestAppendKeepsCallerTimestamp(t *testing.T) {
	f := newFixture(t)
	at := time.Date(2024, 12, 24, 18, 30, 0, 0, time.UTC)

	card, err := f.svc.Append(context.Background(), domain.RateCard{
		SubjectID: "creator-1", Platform: "tiktok", CampaignType: "story", BaseRate: 1, Currency: "EUR", CreatedAt: at,
	})
	require.NoError(t, err)
	assert.True(t, card.CreatedAt.Equal(at))
}

func TestAppendValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := domain.RateCard{SubjectID: "s", Platform: "youtube", CampaignType: "post", BaseRate: 0, Currency: "USD"}

	cases := []struct {
		name   string
		mutate func(*domain.RateCard)
		want   error
	}{
		{"subject", func(c *domain.RateCard) { c.SubjectID = " " }, domain.ErrInvalidSubject},
		{"platform", func(c *domain.RateCard) { c.Platform = "" }, domain.ErrInvalidPlatform},
		{"campaign", func(c *domain.RateCard) { c.CampaignType = "" }, domain.ErrInvalidCampaignType},
		{"currency", func(c *domain.RateCard) { c.Currency = "" }, domain.ErrInvalidCurrency},
		{"unknown currency", func(c *domain.RateCard) { c.Currency = "XYZ" }, currencydomain.ErrUnsupportedCurrency},
		{"negative rate", func(c *domain.RateCard) { c.BaseRate = -0.01 }, domain.ErrInvalidBaseRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			card := valid
			tc.mutate(&card)
			_, err := f.svc.Append(ctx, card)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := f.svc.Append(ctx, valid)
	assert.NoError(t, err, "zero base rate is valid")

	history, err := f.svc.History(ctx, "s")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHistoryNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var appended []domain.RateCard
	for i := 0; i < 5; i++ {
		card, err := f.svc.Append(ctx, domain.RateCard{
			SubjectID: "creator-1", Platform: "instagram", CampaignType: "post", BaseRate: float64(i), Currency: "USD",
		})
		require.NoError(t, err)
		appended = append(appended, card)
		f.clock.Advance(time.Minute)
	}
	_, err := f.svc.Append(ctx, domain.RateCard{
		SubjectID: "creator-2", Platform: "instagram", CampaignType: "post", BaseRate: 9, Currency: "USD",
	})
	require.NoError(t, err)

	history, err := f.svc.History(ctx, "creator-1")
	require.NoError(t, err)
	require.Len(t, history, 5)
	for i := range history {
		assert.Equal(t, appended[len(appended)-1-i].ID, history[i].ID)
	}
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].CreatedAt.After(history[i-1].CreatedAt))
	}
}

func TestHistoryOrdersByTimestampNotInsertion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	late, err := f.svc.Append(ctx, domain.RateCard{SubjectID: "s", Platform: "youtube", CampaignType: "post", BaseRate: 1, Currency: "USD", CreatedAt: base.Add(2 * time.Hour)})
	require.NoError(t, err)
	early, err := f.svc.Append(ctx, domain.RateCard{SubjectID: "s", Platform: "youtube", CampaignType: "post", BaseRate: 2, Currency: "USD", CreatedAt: base})
	require.NoError(t, err)
	middle, err := f.svc.Append(ctx, domain.RateCard{SubjectID: "s", Platform: "youtube", CampaignType: "post", BaseRate: 3, Currency: "USD", CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)

	history, err := f.svc.History(ctx, "s")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, late.ID, history[0].ID)
	assert.Equal(t, middle.ID, history[1].ID)
	assert.Equal(t, early.ID, history[2].ID)
}

func TestHistoryTiesKeepInsertionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []snowflake.ID
	for i := 0; i < 4; i++ {
		card, err := f.svc.Append(ctx, domain.RateCard{
			SubjectID: "s", Platform: "twitter", CampaignType: "post", BaseRate: float64(i), Currency: "GBP",
		})
		require.NoError(t, err)
		ids = append(ids, card.ID)
	}

	history, err := f.svc.History(ctx, "s")
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i := range history {
		assert.Equal(t, ids[i], history[i].ID)
	}

	again, err := f.svc.History(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, history, again, "reads are deterministic and do not reorder storage")
}

func TestHistoryEmptySubject(t *testing.T) {
	f := newFixture(t)

	history, err := f.svc.History(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, history)

	_, err = f.svc.History(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidSubject)
}

func TestGenerateWithConnectedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.profiles.On("Get", mock.Anything, "creator-1").Return(profiledomain.Profile{SubjectID: "creator-1", Currency: "ZAR"}, nil)
	f.accounts.On("Get", mock.Anything, "creator-1", "youtube").Return(socialaccountdomain.Account{
		SubjectID: "creator-1", Platform: "youtube", Followers: 100000, EngagementRate: 4.0, IsConnected: true,
	}, nil)

	result, err := f.svc.Generate(ctx, domain.GenerateRequest{
		SubjectID:    "creator-1",
		Platform:     "youtube",
		CampaignType: "reel",
	})
	require.NoError(t, err)

	assert.Equal(t, 3700.0, result.Rate)
	assert.Equal(t, "ZAR", result.Currency)
	assert.Equal(t, ratingdomain.MetricsSourceConnected, result.MetricsSource)
	assert.Equal(t, int64(100000), result.Followers)
	// 50 * 1 * 1.5 * 18.5
	assert.Equal(t, 1387.5, result.Breakdown.BaseRate)
	assert.Equal(t, 3700.0, result.RateCard.BaseRate)

	history, err := f.svc.History(ctx, "creator-1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.RateCard.ID, history[0].ID)

	f.profiles.AssertExpectations(t)
	f.accounts.AssertExpectations(t)
}

func TestGenerateOverrideSkipsAccountLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.profiles.On("Get", mock.Anything, "creator-1").Return(profiledomain.Profile{SubjectID: "creator-1", Currency: "USD"}, nil)

	result, err := f.svc.Generate(ctx, domain.GenerateRequest{
		SubjectID:        "creator-1",
		Platform:         "unknownplatform",
		CampaignType:     "post",
		CustomFollowers:  int64Ptr(1000),
		CustomEngagement: float64Ptr(1.0),
	})
	require.NoError(t, err)

	assert.Equal(t, 0.38, result.Rate)
	assert.Equal(t, ratingdomain.MetricsSourceOverride, result.MetricsSource)
	f.accounts.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestGeneratePartialOverrideUsesConnectedAccount(t *testing.T) {
	f := newFixture(t)

	f.profiles.On("Get", mock.Anything, "creator-1").Return(profiledomain.Profile{SubjectID: "creator-1", Currency: "USD"}, nil)
	f.accounts.On("Get", mock.Anything, "creator-1", "instagram").Return(socialaccountdomain.Account{
		Platform: "instagram", Followers: 10000, EngagementRate: 1, IsConnected: true,
	}, nil)

	result, err := f.svc.Generate(context.Background(), domain.GenerateRequest{
		SubjectID:       "creator-1",
		Platform:        "instagram",
		CampaignType:    "story",
		CustomFollowers: int64Ptr(999999),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), result.Followers)
	// 10 * 0.3 * 1 * 1.2
	assert.Equal(t, 3.6, result.Rate)
}

func TestGenerateMissingMetrics(t *testing.T) {
	f := newFixture(t)

	f.profiles.On("Get", mock.Anything, "creator-1").Return(profiledomain.Profile{SubjectID: "creator-1", Currency: "USD"}, nil)
	f.accounts.On("Get", mock.Anything, "creator-1", "tiktok").Return(socialaccountdomain.Account{}, socialaccountdomain.ErrNotFound)

	_, err := f.svc.Generate(context.Background(), domain.GenerateRequest{
		SubjectID: "creator-1", Platform: "tiktok", CampaignType: "video",
	})
	assert.ErrorIs(t, err, ratingdomain.ErrMissingMetrics)

	history, err := f.svc.History(context.Background(), "creator-1")
	require.NoError(t, err)
	assert.Empty(t, history, "failed generation appends nothing")
}

func TestGenerateUnsupportedProfileCurrency(t *testing.T) {
	f := newFixture(t)

	f.profiles.On("Get", mock.Anything, "creator-1").Return(profiledomain.Profile{SubjectID: "creator-1", Currency: "XYZ"}, nil)

	_, err := f.svc.Generate(context.Background(), domain.GenerateRequest{
		SubjectID: "creator-1", Platform: "youtube", CampaignType: "reel",
		CustomFollowers: int64Ptr(100000), CustomEngagement: float64Ptr(4),
	})
	assert.ErrorIs(t, err, currencydomain.ErrUnsupportedCurrency)
}

func TestGenerateDefaultsCampaignType(t *testing.T) {
	f := newFixture(t)

	f.profiles.On("Get", mock.Anything, "creator-1").Return(profiledomain.Profile{SubjectID: "creator-1", Currency: "USD"}, nil)

	result, err := f.svc.Generate(context.Background(), domain.GenerateRequest{
		SubjectID: "creator-1", Platform: "youtube",
		CustomFollowers: int64Ptr(2000), CustomEngagement: float64Ptr(0),
	})
	require.NoError(t, err)
	assert.Equal(t, ratingdomain.CampaignDefault, result.CampaignType)
	assert.Equal(t, ratingdomain.CampaignDefault, result.RateCard.CampaignType)
	// 2 * 0.5 * 1 * 1
	assert.Equal(t, 1.0, result.Rate)
}

func TestGenerateIgnoresDisconnectedAccount(t *testing.T) {
	f := newFixture(t)

	f.profiles.On("Get", mock.Anything, "creator-1").Return(profiledomain.Profile{SubjectID: "creator-1", Currency: "USD"}, nil)
	f.accounts.On("Get", mock.Anything, "creator-1", "twitter").Return(socialaccountdomain.Account{
		Platform: "twitter", Followers: 5000, EngagementRate: 3, IsConnected: false,
	}, nil)

	_, err := f.svc.Generate(context.Background(), domain.GenerateRequest{SubjectID: "creator-1", Platform: "twitter", CampaignType: "post"})
	assert.ErrorIs(t, err, ratingdomain.ErrMissingMetrics)
}

func TestConcurrentAppendsAreAllPersisted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(i int) {
			_, err := f.svc.Append(ctx, domain.RateCard{
				SubjectID: "creator-1", Platform: "youtube", CampaignType: "post", BaseRate: float64(i), Currency: "USD",
			})
			errs <- err
		}(i)
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	history, err := f.svc.History(ctx, "creator-1")
	require.NoError(t, err)
	assert.Len(t, history, n)

	seen := map[snowflake.ID]bool{}
	for _, card := range history {
		assert.False(t, seen[card.ID], "duplicate id")
		seen[card.ID] = true
	}

	count, err := f.svc.Count(ctx, "creator-1")
	require.NoError(t, err)
	assert.Equal(t, int64(n), count)
}
