package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	engagementdomain "github.com/smallbiznis/ratecard/internal/engagement/domain"
	ratingdomain "github.com/smallbiznis/ratecard/internal/rating/domain"
)

type estimateRequest struct {
	Platform       string  `json:"platform"`
	Followers      int64   `json:"followers"`
	EngagementRate float64 `json:"engagement_rate"`
	CampaignType   string  `json:"campaign_type"`
	Currency       string  `json:"currency"`
}

type estimateResponse struct {
	Quote     ratingdomain.Quote     `json:"quote"`
	Breakdown ratingdomain.Breakdown `json:"breakdown"`
}

// EstimateRate prices a request without touching the ledger.
func (s *Server) EstimateRate(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Platform) == "" {
		AbortWithError(c, newValidationError("platform", "required", "platform is required"))
		return
	}

	currency := strings.TrimSpace(req.Currency)
	if currency == "" {
		currency = s.currencySvc.Base()
	}

	quote, err := s.rateEngine.Estimate(ratingdomain.EstimateRequest{
		Platform:       req.Platform,
		Followers:      req.Followers,
		EngagementRate: req.EngagementRate,
		CampaignType:   req.CampaignType,
		Currency:       currency,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	breakdown, err := s.rateEngine.Breakdown(req.Platform, req.Followers, req.CampaignType, currency)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": estimateResponse{Quote: quote, Breakdown: breakdown}})
}

type contentItemRequest struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

type aggregateRequest struct {
	Items []contentItemRequest `json:"items"`
}

func (s *Server) AggregateEngagement(c *gin.Context) {
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	summary, err := s.engagementSvc.Aggregate(toContentItems(req.Items))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}

func (s *Server) ListCurrencies(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": s.currencySvc.List(),
		"base": s.currencySvc.Base(),
	})
}

func toContentItems(items []contentItemRequest) []engagementdomain.ContentItem {
	out := make([]engagementdomain.ContentItem, 0, len(items))
	for _, item := range items {
		out = append(out, engagementdomain.ContentItem{
			Views:    item.Views,
			Likes:    item.Likes,
			Comments: item.Comments,
		})
	}
	return out
}
