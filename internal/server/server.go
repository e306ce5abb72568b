package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/ratecard/internal/clock"
	"github.com/smallbiznis/ratecard/internal/config"
	"github.com/smallbiznis/ratecard/internal/currency"
	currencydomain "github.com/smallbiznis/ratecard/internal/currency/domain"
	"github.com/smallbiznis/ratecard/internal/dashboard"
	dashboarddomain "github.com/smallbiznis/ratecard/internal/dashboard/domain"
	"github.com/smallbiznis/ratecard/internal/engagement"
	engagementdomain "github.com/smallbiznis/ratecard/internal/engagement/domain"
	"github.com/smallbiznis/ratecard/internal/observability"
	obsmiddleware "github.com/smallbiznis/ratecard/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/ratecard/internal/observability/metrics"
	obstracing "github.com/smallbiznis/ratecard/internal/observability/tracing"
	"github.com/smallbiznis/ratecard/internal/profile"
	profiledomain "github.com/smallbiznis/ratecard/internal/profile/domain"
	"github.com/smallbiznis/ratecard/internal/providers"
	"github.com/smallbiznis/ratecard/internal/providers/pdf"
	"github.com/smallbiznis/ratecard/internal/ratecard"
	ratecarddomain "github.com/smallbiznis/ratecard/internal/ratecard/domain"
	"github.com/smallbiznis/ratecard/internal/ratelimit"
	"github.com/smallbiznis/ratecard/internal/rating"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
	"github.com/smallbiznis/ratecard/internal/socialaccount"
	socialaccountdomain "github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	currency.Module,
	engagement.Module,
	rating.Module,
	profile.Module,
	socialaccount.Module,
	ratecard.Module,
	dashboard.Module,
	providers.Module,
	ratelimit.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine        *gin.Engine
	cfg           config.Config
	clock         clock.Clock
	currencySvc   currencydomain.Service
	engagementSvc engagementdomain.Service
	rateEngine    ratingdomain.Engine
	profileSvc    profiledomain.Service
	accountSvc    socialaccountdomain.Service
	rateCardSvc   ratecarddomain.Service
	dashboardSvc  dashboarddomain.Service
	pdf           pdf.Provider
	limiter       *ratelimit.Limiter
	obsMetrics    *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin           *gin.Engine
	Cfg           config.Config
	Clock         clock.Clock
	CurrencySvc   currencydomain.Service
	EngagementSvc engagementdomain.Service
	Engine        ratingdomain.Engine
	ProfileSvc    profiledomain.Service
	AccountSvc    socialaccountdomain.Service
	RateCardSvc   ratecarddomain.Service
	DashboardSvc  dashboarddomain.Service
	PDF           pdf.Provider
	Limiter       *ratelimit.Limiter  `optional:"true"`
	ObsMetrics    *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		clock:         p.Clock,
		currencySvc:   p.CurrencySvc,
		engagementSvc: p.EngagementSvc,
		rateEngine:    p.Engine,
		profileSvc:    p.ProfileSvc,
		accountSvc:    p.AccountSvc,
		rateCardSvc:   p.RateCardSvc,
		dashboardSvc:  p.DashboardSvc,
		pdf:           p.PDF,
		limiter:       p.Limiter,
		obsMetrics:    p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/currencies", s.ListCurrencies)
	api.POST("/rates/estimate", s.EstimateRate)
	api.POST("/engagement/aggregate", s.AggregateEngagement)

	subject := api.Group("/subjects/:subject")

	// -------- Profile --------
	subject.GET("/profile", s.GetProfile)
	subject.PUT("/profile", s.UpsertProfile)

	// -------- Social accounts --------
	subject.GET("/social-accounts", s.ListSocialAccounts)
	subject.POST("/social-accounts/:platform/connect", s.ConnectSocialAccount)
	subject.DELETE("/social-accounts/:platform", s.DisconnectSocialAccount)
	subject.POST("/social-accounts/:platform/sync", s.SyncSocialAccount)

	// -------- Rate cards --------
	subject.POST("/rate-cards/generate", s.GenerateRateLimit(), s.GenerateRateCard)
	subject.GET("/rate-cards", s.ListRateCards)
	subject.GET("/rate-cards/export.pdf", s.ExportRateCards)

	subject.GET("/dashboard", s.GetDashboard)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
