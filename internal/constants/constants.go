package constants

import "time"

// Session resolution windows.
const (
	// RestartWindow absorbs bot restarts and short stream drops: a declared
	// stream start within this distance of the stored one continues the
	// existing session.
	RestartWindow = 10 * time.Minute

	// CaptureMatchWindow is how far an auto-captured stream start may differ
	// from the declared one and still count as the same session.
	CaptureMatchWindow = 5 * time.Minute
)

// Match aggregation.
const (
	MatchFetchLimit = 20
	MatchFetchDelay = 50 * time.Millisecond
)

// KV cache TTLs, mirroring how quickly each upstream value goes stale.
const (
	AccountCacheTTL     = 24 * time.Hour
	SummonerCacheTTL    = 1 * time.Hour
	MatchListCacheTTL   = 2 * time.Minute
	MatchDetailCacheTTL = 1 * time.Hour
	RankedCacheTTL      = 2 * time.Minute
	TwitchTokenCacheTTL = 1 * time.Hour
	CaptureStateTTL     = 24 * time.Hour
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout     = 5 * time.Second
	DefaultCaptureEvery = 60 * time.Second
)
