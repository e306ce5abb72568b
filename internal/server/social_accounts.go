package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ratecard/internal/observability/logger"
	"github.com/smallbiznis/ratecard/internal/ratelimit"
	socialaccountdomain "github.com/smallbiznis/ratecard/internal/socialaccount/domain"
	"go.uber.org/zap"
)

type connectAccountRequest struct {
	Username string         `json:"username"`
	Metadata map[string]any `json:"metadata"`
}

type syncAccountRequest struct {
	Followers int64                `json:"followers"`
	Items     []contentItemRequest `json:"items"`
}

func (s *Server) ListSocialAccounts(c *gin.Context) {
	resp, err := s.accountSvc.List(c.Request.Context(), c.Param("subject"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ConnectSocialAccount(c *gin.Context) {
	var req connectAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.accountSvc.Connect(c.Request.Context(), socialaccountdomain.ConnectRequest{
		SubjectID: c.Param("subject"),
		Platform:  c.Param("platform"),
		Username:  strings.TrimSpace(req.Username),
		Metadata:  req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DisconnectSocialAccount(c *gin.Context) {
	if err := s.accountSvc.Disconnect(c.Request.Context(), c.Param("subject"), c.Param("platform")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// SyncSocialAccount stores freshly fetched metrics. Only one sync per
// account runs at a time when the limiter is configured.
func (s *Server) SyncSocialAccount(c *gin.Context) {
	var req syncAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ctx := c.Request.Context()
	subject, platform := c.Param("subject"), c.Param("platform")

	lease, err := s.limiter.LockSync(ctx, subject, platform)
	if errors.Is(err, ratelimit.ErrLockHeld) {
		AbortWithError(c, ErrSyncInProgress)
		return
	}
	if err != nil {
		logger.FromContext(ctx).Warn("sync lock failed", zap.Error(err))
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	defer func() {
		if err := s.limiter.ReleaseSync(ctx, lease); err != nil {
			logger.FromContext(ctx).Warn("sync unlock failed", zap.Error(err))
		}
	}()

	resp, err := s.accountSvc.Sync(ctx, socialaccountdomain.SyncRequest{
		SubjectID: subject,
		Platform:  platform,
		Followers: req.Followers,
		Items:     toContentItems(req.Items),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
