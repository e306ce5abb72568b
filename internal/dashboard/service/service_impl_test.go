package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/ratecard/internal/dashboard/domain"
	engagementservice "github.com/smallbiznis/ratecard/internal/engagement/service"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	ratecarddomain "github.com/smallbiznis/ratecard/internal/ratecard/domain"
	socialaccountdomain "github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type accountsStub struct {
	socialaccountdomain.Service
	mock.Mock
}

func (m *accountsStub) List(ctx context.Context, subjectID string) ([]socialaccountdomain.Account, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).([]socialaccountdomain.Account), args.Error(1)
}

type profilesStub struct {
	profiledomain.Service
	currency string
}

func (p *profilesStub) Get(_ context.Context, subjectID string) (profiledomain.Profile, error) {
	return profiledomain.Profile{SubjectID: subjectID, Currency: p.currency}, nil
}

type rateCardsStub struct {
	ratecarddomain.Service
	mock.Mock
}

func (m *rateCardsStub) History(ctx context.Context, subjectID string) ([]ratecarddomain.RateCard, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).([]ratecarddomain.RateCard), args.Error(1)
}

func (m *rateCardsStub) Count(ctx context.Context, subjectID string) (int64, error) {
	args := m.Called(ctx, subjectID)
	return args.Get(0).(int64), args.Error(1)
}

func newTestService(accounts *accountsStub, cards *rateCardsStub) domain.Service {
	return NewService(Params{
		Log:        zap.NewNop(),
		Accounts:   accounts,
		Profiles:   &profilesStub{currency: "EUR"},
		RateCards:  cards,
		Engagement: engagementservice.NewService(),
	})
}

func TestSummary(t *testing.T) {
	accounts := &accountsStub{}
	cards := &rateCardsStub{}
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	accounts.On("List", mock.Anything, "creator-1").Return([]socialaccountdomain.Account{
		{Platform: "instagram", Followers: 1000, EngagementRate: 9, IsConnected: true},
		{Platform: "youtube", Followers: 1000000, EngagementRate: 1, IsConnected: true},
		{Platform: "tiktok", Followers: 50, EngagementRate: 40, IsConnected: false},
	}, nil)
	cards.On("Count", mock.Anything, "creator-1").Return(int64(2), nil)
	cards.On("History", mock.Anything, "creator-1").Return([]ratecarddomain.RateCard{
		{SubjectID: "creator-1", Platform: "youtube", BaseRate: 12, CreatedAt: now},
		{SubjectID: "creator-1", Platform: "instagram", BaseRate: 3, CreatedAt: now.Add(-time.Hour)},
	}, nil)

	summary, err := newTestService(accounts, cards).Summary(context.Background(), " creator-1 ")
	require.NoError(t, err)

	assert.Equal(t, "creator-1", summary.SubjectID)
	assert.Equal(t, 2, summary.ConnectedAccounts)
	assert.Equal(t, int64(1001000), summary.TotalFollowers)
	assert.Equal(t, "EUR", summary.Currency)
	assert.Equal(t, int64(2), summary.RateCardCount)
	require.NotNil(t, summary.LatestRateCard)
	assert.Equal(t, 12.0, summary.LatestRateCard.BaseRate)
}

// A follower-weighted mean would give roughly 1.01 here. The dashboard
// reports the plain mean of the two accounts.
func TestSummaryAverageEngagementIsUnweighted(t *testing.T) {
	accounts := &accountsStub{}
	cards := &rateCardsStub{}

	accounts.On("List", mock.Anything, "creator-1").Return([]socialaccountdomain.Account{
		{Platform: "instagram", Followers: 1000, EngagementRate: 9, IsConnected: true},
		{Platform: "youtube", Followers: 1000000, EngagementRate: 1, IsConnected: true},
	}, nil)
	cards.On("Count", mock.Anything, "creator-1").Return(int64(0), nil)

	summary, err := newTestService(accounts, cards).Summary(context.Background(), "creator-1")
	require.NoError(t, err)
	assert.Equal(t, 5.0, summary.AvgEngagement)
}

func TestSummaryWithoutData(t *testing.T) {
	accounts := &accountsStub{}
	cards := &rateCardsStub{}

	accounts.On("List", mock.Anything, "nobody").Return([]socialaccountdomain.Account{}, nil)
	cards.On("Count", mock.Anything, "nobody").Return(int64(0), nil)

	summary, err := newTestService(accounts, cards).Summary(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, summary.ConnectedAccounts)
	assert.Zero(t, summary.AvgEngagement)
	assert.Zero(t, summary.RateCardCount)
	assert.Nil(t, summary.LatestRateCard)
	cards.AssertNotCalled(t, "History", mock.Anything, "nobody")
}

func TestSummaryCountComesFromLedger(t *testing.T) {
	accounts := &accountsStub{}
	cards := &rateCardsStub{}

	accounts.On("List", mock.Anything, "creator-1").Return([]socialaccountdomain.Account{}, nil)
	cards.On("Count", mock.Anything, "creator-1").Return(int64(7), nil)
	cards.On("History", mock.Anything, "creator-1").Return([]ratecarddomain.RateCard{
		{SubjectID: "creator-1", Platform: "tiktok", BaseRate: 4},
	}, nil)

	summary, err := newTestService(accounts, cards).Summary(context.Background(), "creator-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), summary.RateCardCount)
	require.NotNil(t, summary.LatestRateCard)
	assert.Equal(t, "tiktok", summary.LatestRateCard.Platform)
	cards.AssertExpectations(t)
}

func TestSummaryErrors(t *testing.T) {
	accounts := &accountsStub{}
	cards := &rateCardsStub{}
	svc := newTestService(accounts, cards)

	_, err := svc.Summary(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidSubject)

	boom := errors.New("boom")
	accounts.On("List", mock.Anything, "creator-1").Return([]socialaccountdomain.Account{}, boom)
	_, err = svc.Summary(context.Background(), "creator-1")
	assert.ErrorIs(t, err, boom)
}
