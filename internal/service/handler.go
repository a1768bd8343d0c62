package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/api"
	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"
	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"
	"github.com/kazu-source/Stream-Record-Tracker/internal/rating"
	"github.com/kazu-source/Stream-Record-Tracker/internal/repository"

	"github.com/rs/zerolog"
)

// RiotAPI is the match-provider collaborator boundary. *api.RiotClient is the
// production implementation; tests substitute fakes.
type RiotAPI interface {
	GetAccountByRiotID(ctx context.Context, name, tag, region string) (*api.Account, error)
	GetMatchIDs(ctx context.Context, puuid, region string, count int, since time.Time) ([]string, error)
	GetMatch(ctx context.Context, matchID, region string) (*api.Match, error)
	GetRankedEntries(ctx context.Context, puuid, region string) ([]api.LeagueEntry, error)
	GetTFTMatchIDs(ctx context.Context, puuid, region string, count int, since time.Time) ([]string, error)
	GetTFTMatch(ctx context.Context, matchID, region string) (*api.TFTMatch, error)
	GetTFTSummonerByPUUID(ctx context.Context, puuid, region string) (*api.TFTSummoner, error)
	GetTFTRankedEntries(ctx context.Context, summonerID, region string) ([]api.LeagueEntry, error)
}

// TwitchAPI is the streaming-platform collaborator boundary.
type TwitchAPI interface {
	IsConfigured() bool
	GetStreamInfo(ctx context.Context, channel string) (*api.Stream, error)
}

// Query carries one inbound chat-bot request after parameter validation.
type Query struct {
	Summoner string
	Tag      string
	Region   string
	// StreamStart is the declared broadcast start. The offline path never
	// reaches a handler's HandleOnline.
	StreamStart time.Time
	// TestStartRating overrides the starting-rating policy when set.
	TestStartRating *int
}

// Handler is the per-game capability: fetch and filter matches, aggregate
// them into the session record, format the response line.
type Handler interface {
	GameType() domain.GameType
	HandleOnline(ctx context.Context, q Query) (string, error)
	HandleOffline(ctx context.Context, summoner, tag string) (string, error)
}

// Registry holds the closed set of game handlers. Lookup falls back to the
// default (LoL) handler for game types without one, matching how unsupported
// categories behaved upstream.
type Registry struct {
	handlers map[domain.GameType]Handler
	fallback Handler
	logger   zerolog.Logger
}

func NewRegistry(riot RiotAPI, resolver *SessionResolver, sessions *repository.SessionRepository, captures *repository.CaptureRepository, logger zerolog.Logger) *Registry {
	deps := handlerDeps{
		riot:     riot,
		resolver: resolver,
		sessions: sessions,
		captures: captures,
		logger:   logger,
	}
	lol := &lolHandler{handlerDeps: deps}
	tft := &tftHandler{handlerDeps: deps}

	return &Registry{
		handlers: map[domain.GameType]Handler{
			domain.GameLoL: lol,
			domain.GameTFT: tft,
		},
		fallback: lol,
		logger:   logger,
	}
}

func (r *Registry) Get(game domain.GameType) Handler {
	if h, ok := r.handlers[game]; ok {
		return h
	}
	r.logger.Debug().Str("game", string(game)).Msg("no handler for game type, falling back to default")
	return r.fallback
}

// handlerDeps is shared collaborator wiring for the game handlers.
type handlerDeps struct {
	riot     RiotAPI
	resolver *SessionResolver
	sessions *repository.SessionRepository
	captures *repository.CaptureRepository
	logger   zerolog.Logger
}

// capturedStartingRating returns the auto-captured rating when its recorded
// stream start matches the declared one within the capture window, else nil.
func (d *handlerDeps) capturedStartingRating(ctx context.Context, summoner, tag string, streamStart time.Time) *int {
	state, err := d.captures.Get(ctx, summoner, tag)
	if err != nil {
		d.logger.Warn().Err(err).Msg("failed to read capture state")
		return nil
	}
	if state == nil || state.CapturedRating == nil || state.StreamStartedAt == nil {
		return nil
	}

	diff := state.StreamStartedAt.Sub(streamStart)
	if diff < 0 {
		diff = -diff
	}
	if diff <= constants.CaptureMatchWindow {
		d.logger.Info().Int("rating", *state.CapturedRating).Msg("using auto-captured starting rating")
		return state.CapturedRating
	}
	return nil
}

// resolveStartingRating applies the cross-cutting preference order for a
// session's baseline: explicit test override, then the auto-captured value,
// then the currently observed rating. For a continuing session the stored
// value is reused verbatim.
func (d *handlerDeps) resolveStartingRating(ctx context.Context, q Query, res SessionResolution, gamesPlayed int, current *int) *int {
	if q.TestStartRating != nil {
		d.logger.Info().Int("rating", *q.TestStartRating).Msg("using test starting rating override")
		return q.TestStartRating
	}

	if !res.IsNew {
		if res.Prior != nil {
			return res.Prior.StartingRating
		}
		return nil
	}

	if captured := d.capturedStartingRating(ctx, q.Summoner, q.Tag, q.StreamStart); captured != nil {
		return captured
	}
	if gamesPlayed == 0 {
		// No games yet, so the current rating is the starting rating.
		d.logger.Debug().Msg("no games played yet, current rating becomes starting rating")
		return current
	}

	// Games were played before the first query; the baseline is already off.
	d.logger.Warn().Msg("games played before first query, rating delta may be inaccurate")
	return current
}

// soloQueueRating observes the player's current normalized solo-queue rating.
// A missing queue entry or a failed lookup yields nil, which flows through as
// "rating unavailable" rather than a zero delta.
func (d *handlerDeps) soloQueueRating(ctx context.Context, puuid, region string) *int {
	entries, err := d.riot.GetRankedEntries(ctx, puuid, region)
	if err != nil {
		d.logger.Warn().Err(err).Msg("failed to fetch ranked entries")
		return nil
	}
	for _, e := range entries {
		if e.QueueType == "RANKED_SOLO_5x5" {
			value := rating.ToScale(e.Tier, e.Rank, e.LeaguePoints)
			return &value
		}
	}
	d.logger.Debug().Str("puuid", puuid).Msg("no solo queue entry found")
	return nil
}

// ratingDelta computes the signed change when both ends are known.
func ratingDelta(current, starting *int) *int {
	if current == nil || starting == nil {
		return nil
	}
	delta := rating.Delta(*current, *starting)
	return &delta
}

// formatRatingChange renders the LP segment of a response line.
func formatRatingChange(change *int) string {
	if change == nil {
		return "LP: N/A"
	}
	if *change >= 0 {
		return fmt.Sprintf("LP: +%d", *change)
	}
	return fmt.Sprintf("LP: %d", *change)
}
