package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/ratecard/internal/providers/pdf"
	ratecarddomain "github.com/smallbiznis/ratecard/internal/ratecard/domain"
)

type generateRateCardRequest struct {
	Platform         string   `json:"platform"`
	CampaignType     string   `json:"campaign_type"`
	CustomFollowers  *int64   `json:"custom_followers"`
	CustomEngagement *float64 `json:"custom_engagement"`
}

func (s *Server) GenerateRateCard(c *gin.Context) {
	var req generateRateCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Platform) == "" {
		AbortWithError(c, newValidationError("platform", "required", "platform is required"))
		return
	}

	resp, err := s.rateCardSvc.Generate(c.Request.Context(), ratecarddomain.GenerateRequest{
		SubjectID:        c.Param("subject"),
		Platform:         req.Platform,
		CampaignType:     req.CampaignType,
		CustomFollowers:  req.CustomFollowers,
		CustomEngagement: req.CustomEngagement,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListRateCards(c *gin.Context) {
	resp, err := s.rateCardSvc.History(c.Request.Context(), c.Param("subject"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportRateCards(c *gin.Context) {
	ctx := c.Request.Context()
	subject := strings.TrimSpace(c.Param("subject"))

	cards, err := s.rateCardSvc.History(ctx, subject)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	profile, err := s.profileSvc.Get(ctx, subject)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	reader, err := s.pdf.RenderRateCards(ctx, pdf.RateCardSheet{
		SubjectID:   subject,
		DisplayName: profile.Name,
		Currency:    profile.Currency,
		GeneratedAt: s.clock.Now(),
		Cards:       cards,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rate-cards-%s.pdf"`, sanitizeFilename(subject)))
	c.DataFromReader(http.StatusOK, -1, "application/pdf", reader, nil)
}

func (s *Server) GetDashboard(c *gin.Context) {
	resp, err := s.dashboardSvc.Summary(c.Request.Context(), c.Param("subject"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func sanitizeFilename(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
