// Package domain describes per-content engagement counters and their summary.
package domain

// ContentItem holds the raw counters of one recent piece of content as
// reported by a platform.
type ContentItem struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
}

// Summary is the normalized view of a content batch. EngagementRate is a
// percentage (4.25 means 4.25%) and may exceed 100.
type Summary struct {
	ItemCount      int     `json:"item_count"`
	TotalViews     int64   `json:"total_views"`
	TotalLikes     int64   `json:"total_likes"`
	TotalComments  int64   `json:"total_comments"`
	AvgViews       float64 `json:"avg_views"`
	EngagementRate float64 `json:"engagement_rate"`
}
