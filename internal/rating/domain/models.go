// Package domain describes the pricing inputs and outputs of the rate engine.
package domain

import "strings"

type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
	PlatformTwitter   Platform = "twitter"
	PlatformFacebook  Platform = "facebook"
)

// Platforms lists the platforms an account can be connected to.
var Platforms = []Platform{
	PlatformYouTube,
	PlatformInstagram,
	PlatformTikTok,
	PlatformTwitter,
	PlatformFacebook,
}

func NormalizePlatform(value string) Platform {
	return Platform(strings.ToLower(strings.TrimSpace(value)))
}

// Known reports whether p is one of the connectable platforms. Pricing does
// not require a known platform.
func (p Platform) Known() bool {
	for _, candidate := range Platforms {
		if p == candidate {
			return true
		}
	}
	return false
}

const (
	CampaignReel      = "reel"
	CampaignVideo     = "video"
	CampaignSponsored = "sponsored"
	CampaignPost      = "post"
	CampaignStory     = "story"
	CampaignDefault   = "default"
)

// BreakdownCampaign is the campaign type every breakdown is priced with.
const BreakdownCampaign = CampaignPost

// FactorTable is an immutable lookup with a fallback for keys it does not
// hold. Keys are matched case-insensitively.
type FactorTable struct {
	entries  map[string]float64
	fallback float64
}

func NewFactorTable(entries map[string]float64, fallback float64) FactorTable {
	copied := make(map[string]float64, len(entries))
	for key, value := range entries {
		copied[normalizeKey(key)] = value
	}
	return FactorTable{entries: copied, fallback: fallback}
}

// Lookup returns the factor for key and whether the key was present. Absent
// keys return the fallback.
func (t FactorTable) Lookup(key string) (float64, bool) {
	if value, ok := t.entries[normalizeKey(key)]; ok {
		return value, true
	}
	return t.fallback, false
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// EstimateRequest carries already resolved audience metrics. EngagementRate
// is a percentage.
type EstimateRequest struct {
	Platform       string
	Followers      int64
	EngagementRate float64
	CampaignType   string
	Currency       string
}

// Quote is a priced estimate with every factor that contributed to it.
type Quote struct {
	Platform             string  `json:"platform"`
	CampaignType         string  `json:"campaign_type"`
	Currency             string  `json:"currency"`
	Followers            int64   `json:"followers"`
	EngagementRate       float64 `json:"engagement_rate"`
	PlatformFactor       float64 `json:"platform_factor"`
	BaseRate             float64 `json:"base_rate"`
	EngagementMultiplier float64 `json:"engagement_multiplier"`
	CampaignMultiplier   float64 `json:"campaign_multiplier"`
	CurrencyMultiplier   float64 `json:"currency_multiplier"`
	Price                float64 `json:"price"`
}

// Breakdown is the price of the same audience without any engagement bonus,
// priced as a plain post, in the requested currency.
type Breakdown struct {
	BaseRate             float64 `json:"base_rate"`
	PlatformFactor       float64 `json:"platform_factor"`
	EngagementMultiplier float64 `json:"engagement_multiplier"`
	CampaignMultiplier   float64 `json:"campaign_multiplier"`
	CurrencyMultiplier   float64 `json:"currency_multiplier"`
}

// MetricsOverride holds caller supplied metrics. It only applies when both
// values are present.
type MetricsOverride struct {
	Followers      *int64
	EngagementRate *float64
}

func (o *MetricsOverride) Complete() bool {
	return o != nil && o.Followers != nil && o.EngagementRate != nil
}

// ConnectedMetrics are the last synced metrics of a connected account.
type ConnectedMetrics struct {
	Platform       string
	Followers      int64
	EngagementRate float64
}

type MetricsSource string

const (
	MetricsSourceOverride  MetricsSource = "override"
	MetricsSourceConnected MetricsSource = "connected"
)

type Metrics struct {
	Followers      int64         `json:"followers"`
	EngagementRate float64       `json:"engagement_rate"`
	Source         MetricsSource `json:"source"`
}
