package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/ratecard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	keyGenerateSubject = "ratecard:generate:subject:%s"
	keySyncLock        = "ratecard:sync:lock:%s:%s"

	defaultSyncLockTTL = 30 * time.Second
)

// Limiter throttles rate card generation per subject and serializes
// metric syncs per connected account. A nil *Limiter allows everything.
type Limiter struct {
	bucket *TokenBucket
	locker *Locker

	generateRate  float64
	generateBurst int
	syncLockTTL   time.Duration
}

type Params struct {
	fx.In

	Lc  fx.Lifecycle
	Cfg config.Config
	Log *zap.Logger
}

// NewLimiter returns nil when rate limiting is disabled or no redis
// address is configured.
func NewLimiter(p Params) (*Limiter, error) {
	log := p.Log.Named("ratelimit")
	limitCfg := p.Cfg.RateLimit
	if !limitCfg.Enabled {
		log.Info("rate limiting disabled")
		return nil, nil
	}

	addr := strings.TrimSpace(p.Cfg.RedisAddr)
	if addr == "" {
		log.Warn("rate limiting enabled without REDIS_ADDR, generate requests are not throttled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(p.Cfg.RedisPassword),
		DB:       p.Cfg.RedisDB,
	})

	limiter, err := New(client, limitCfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	p.Lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				log.Warn("redis ping failed", zap.String("addr", addr), zap.Error(err))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return limiter, nil
}

func New(client redis.UniversalClient, cfg config.RateLimitConfig) (*Limiter, error) {
	if client == nil {
		return nil, errors.New("rate limit redis client is required")
	}
	if cfg.GenerateRate <= 0 || cfg.GenerateBurst <= 0 {
		return nil, errors.New("generate rate limit must be positive")
	}
	return &Limiter{
		bucket:        NewTokenBucket(client),
		locker:        NewLocker(client),
		generateRate:  cfg.GenerateRate,
		generateBurst: cfg.GenerateBurst,
		syncLockTTL:   defaultSyncLockTTL,
	}, nil
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.bucket != nil
}

func (l *Limiter) AllowGenerate(ctx context.Context, subjectID string) (Result, error) {
	if !l.Enabled() {
		return Result{Allowed: true}, nil
	}
	key := fmt.Sprintf(keyGenerateSubject, strings.TrimSpace(subjectID))
	return l.bucket.Allow(ctx, key, l.generateRate, l.generateBurst)
}

// LockSync returns ErrLockHeld while another sync of the same account is
// running. With the limiter off it returns an empty Lease.
func (l *Limiter) LockSync(ctx context.Context, subjectID, platform string) (Lease, error) {
	if !l.Enabled() {
		return Lease{}, nil
	}
	return l.locker.Acquire(ctx, syncLockKey(subjectID, platform), l.syncLockTTL)
}

func (l *Limiter) ReleaseSync(ctx context.Context, lease Lease) error {
	if !l.Enabled() {
		return nil
	}
	return l.locker.Release(ctx, lease)
}

func syncLockKey(subjectID, platform string) string {
	return fmt.Sprintf(keySyncLock, strings.TrimSpace(subjectID), strings.ToLower(strings.TrimSpace(platform)))
}
