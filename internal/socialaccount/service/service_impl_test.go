package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/ratecard/internal/clock"
	engagementdomain "github.com/smallbiznis/ratecard/internal/engagement/domain"
	engagementservice "github.com/smallbiznis/ratecard/internal/engagement/service"
	"github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"github.com/smallbiznis/ratecard/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *clock.FakeClock) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(db.SQLiteDSN(filepath.Join(t.TempDir(), "accounts.db"))), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Account{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC))
	svc := New(Params{
		DB:         conn,
		Log:        zap.NewNop(),
		GenID:      node,
		Clock:      fake,
		Engagement: engagementservice.NewService(),
	})
	return svc, fake
}

func TestConnectUpsertsByPlatform(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Connect(ctx, domain.ConnectRequest{
		SubjectID: "creator-1",
		Platform:  "YouTube",
		Username:  "old-channel",
		Metadata:  map[string]any{"channel_id": "UC123"},
	})
	require.NoError(t, err)
	assert.Equal(t, "youtube", first.Platform)
	assert.True(t, first.IsConnected)

	second, err := svc.Connect(ctx, domain.ConnectRequest{
		SubjectID: "creator-1",
		Platform:  "youtube",
		Username:  "new-channel",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	accounts, err := svc.List(ctx, "creator-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "new-channel", accounts[0].Username)
}

func TestConnectValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Connect(ctx, domain.ConnectRequest{SubjectID: "creator-1", Platform: "myspace", Username: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidPlatform)

	_, err = svc.Connect(ctx, domain.ConnectRequest{SubjectID: "", Platform: "tiktok", Username: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidSubject)

	_, err = svc.Connect(ctx, domain.ConnectRequest{SubjectID: "creator-1", Platform: "tiktok"})
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
}

func TestListOrdersByPlatform(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, platform := range []string{"twitter", "instagram", "youtube"} {
		_, err := svc.Connect(ctx, domain.ConnectRequest{SubjectID: "creator-1", Platform: platform, Username: "me"})
		require.NoError(t, err)
	}
	_, err := svc.Connect(ctx, domain.ConnectRequest{SubjectID: "creator-2", Platform: "tiktok", Username: "other"})
	require.NoError(t, err)

	accounts, err := svc.List(ctx, "creator-1")
	require.NoError(t, err)
	require.Len(t, accounts, 3)
	assert.Equal(t, "instagram", accounts[0].Platform)
	assert.Equal(t, "twitter", accounts[1].Platform)
	assert.Equal(t, "youtube", accounts[2].Platform)
}

func TestSyncStoresAggregatedMetrics(t *testing.T) {
	svc, fake := newTestService(t)
	ctx := context.Background()

	_, err := svc.Connect(ctx, domain.ConnectRequest{SubjectID: "creator-1", Platform: "youtube", Username: "me"})
	require.NoError(t, err)

	fake.Advance(time.Minute)
	account, err := svc.Sync(ctx, domain.SyncRequest{
		SubjectID: "creator-1",
		Platform:  "youtube",
		Followers: 100000,
		Items: []engagementdomain.ContentItem{
			{Views: 1000, Likes: 30, Comments: 10},
			{Views: 3000, Likes: 110, Comments: 10},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100000), account.Followers)
	assert.Equal(t, 4.0, account.EngagementRate)
	assert.Equal(t, 2000.0, account.AvgViews)
	require.NotNil(t, account.LastSyncAt)
	assert.True(t, account.LastSyncAt.Equal(fake.Now()))

	stored, err := svc.Get(ctx, "creator-1", "youtube")
	require.NoError(t, err)
	assert.Equal(t, 4.0, stored.EngagementRate)
	assert.Equal(t, int64(100000), stored.Followers)
}

func TestSyncFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Sync(ctx, domain.SyncRequest{SubjectID: "creator-1", Platform: "tiktok", Followers: 10, Items: []engagementdomain.ContentItem{{Views: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Connect(ctx, domain.ConnectRequest{SubjectID: "creator-1", Platform: "tiktok", Username: "me"})
	require.NoError(t, err)

	_, err = svc.Sync(ctx, domain.SyncRequest{SubjectID: "creator-1", Platform: "tiktok", Followers: 10})
	assert.ErrorIs(t, err, engagementdomain.ErrInsufficientData)

	_, err = svc.Sync(ctx, domain.SyncRequest{SubjectID: "creator-1", Platform: "tiktok", Followers: -5, Items: []engagementdomain.ContentItem{{Views: 1}}})
	assert.ErrorIs(t, err, domain.ErrInvalidFollowers)

	stored, err := svc.Get(ctx, "creator-1", "tiktok")
	require.NoError(t, err)
	assert.Nil(t, stored.LastSyncAt, "failed syncs leave the account untouched")
}

func TestDisconnect(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Connect(ctx, domain.ConnectRequest{SubjectID: "creator-1", Platform: "instagram", Username: "me"})
	require.NoError(t, err)

	require.NoError(t, svc.Disconnect(ctx, "creator-1", "Instagram"))

	_, err = svc.Get(ctx, "creator-1", "instagram")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, svc.Disconnect(ctx, "creator-1", "instagram"), domain.ErrNotFound)
}
