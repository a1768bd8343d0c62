package domain

import (
	"strings"
	"time"
)

// GameType identifies which game a session tracks. The set is closed;
// dispatch happens through the handler registry in the service package.
type GameType string

const (
	GameLoL      GameType = "lol"
	GameTFT      GameType = "tft"
	GameValorant GameType = "valorant"
)

// DetectGameType maps a free-text Twitch category string to a GameType.
// Empty or unrecognized input defaults to LoL for backward compatibility.
func DetectGameType(category string) GameType {
	if category == "" {
		return GameLoL
	}
	normalized := strings.ToLower(category)
	if strings.Contains(normalized, "teamfight tactics") || normalized == "tft" {
		return GameTFT
	}
	if strings.Contains(normalized, "valorant") {
		return GameValorant
	}
	return GameLoL
}

// SessionRecord is the per-(game, summoner, tag) state accumulated across
// queries within one stream session. StartingRating is nil until the first
// observation and immutable afterwards for the life of the session.
type SessionRecord struct {
	ID             string    `json:"id"`
	GameType       GameType  `json:"game_type"`
	StreamStart    time.Time `json:"stream_start"`
	LastSeen       time.Time `json:"last_seen"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	RatingChange   int       `json:"rating_change"`
	StartingRating *int      `json:"starting_rating"`

	// TFT only: the five most recent placements, most recent first.
	Placements []int `json:"placements,omitempty"`
}

// CaptureState is the persisted live/offline edge tracker for the configured
// channel. CapturedRating is set only on the offline->live transition and
// cleared only on live->offline.
type CaptureState struct {
	WasLive         bool       `json:"was_live"`
	CapturedRating  *int       `json:"captured_rating"`
	CapturedAt      *time.Time `json:"captured_at"`
	StreamStartedAt *time.Time `json:"stream_started_at"`
}

// ProcessedMatch is a ranked LoL match reduced to what the record needs.
type ProcessedMatch struct {
	MatchID   string
	StartedAt time.Time
	Win       bool
	QueueID   int
}

// ProcessedTFTMatch is a TFT match reduced to its placement outcome.
type ProcessedTFTMatch struct {
	MatchID   string
	StartedAt time.Time
	Placement int
	IsFirst   bool
	IsTop4    bool
}

// Queue IDs for the ranked filters.
const (
	RankedSoloQueueID = 420
	RankedFlexQueueID = 440
	TFTRankedQueueID  = 1100
)

// RegionalRoute groups platform regions for the account/match APIs.
func RegionalRoute(region string) string {
	switch region {
	case "na1", "br1", "la1", "la2":
		return "americas"
	case "euw1", "eun1", "tr1", "ru":
		return "europe"
	case "kr", "jp1":
		return "asia"
	case "oc1", "ph2", "sg2", "th2", "tw2", "vn2":
		return "sea"
	default:
		return "americas"
	}
}
