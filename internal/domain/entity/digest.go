package entity

import (
	"time"

	"github.com/google/uuid"
)

// GlobalRegion is the pseudo-region used for the cross-region digest.
const GlobalRegion = "global"

// Digest is a processed summary of one region's news cycle (or of all
// regions combined, when Region == GlobalRegion), ready for delivery.
type Digest struct {
	ID           string
	Region       string
	RegionName   string // localized display name for the delivery channel
	Summary      string // formatted HTML body
	KeyTopics    []string
	ArticleCount int
	SourcesUsed  []string
	ArticleIDs   []string
	TimePeriod   string // morning, afternoon, evening
	CreatedAt    time.Time
	SentAt       *time.Time
}

// NewDigest creates a Digest with a fresh UUID and creation timestamp.
func NewDigest(region, regionName, summary string) *Digest {
	return &Digest{
		ID:         uuid.New().String(),
		Region:     region,
		RegionName: regionName,
		Summary:    summary,
		TimePeriod: "evening",
		CreatedAt:  time.Now().UTC(),
	}
}

// IsGlobal reports whether this digest aggregates all regions.
func (d *Digest) IsGlobal() bool {
	return d.Region == GlobalRegion
}

// Story is a single summarized news story produced by the LLM backend.
type Story struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
}

// Summary is the structured output of regional summarization.
type Summary struct {
	KeyTopics []string `json:"key_topics"`
	Stories   []Story  `json:"stories"`
}

// GlobalEvent is a globally significant news event spanning regions.
type GlobalEvent struct {
	Headline   string   `json:"headline"`
	Summary    string   `json:"summary"`
	Regions    []string `json:"regions"`
	Importance string   `json:"importance"`
}

// GlobalSummary is the structured output of cross-region summarization.
type GlobalSummary struct {
	KeyTopics []string      `json:"key_topics"`
	Events    []GlobalEvent `json:"events"`
}
