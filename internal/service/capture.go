package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/config"
	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"
	"github.com/kazu-source/Stream-Record-Tracker/internal/repository"

	"github.com/rs/zerolog"
)

// CaptureService samples the configured player's rating at the moment their
// channel goes live. The provider cannot answer "what was the rating at
// stream start" retroactively, so the only way to know is to catch the
// offline-to-live edge as closely as the tick granularity allows.
type CaptureService struct {
	cfg      *config.Config
	riot     RiotAPI
	twitch   TwitchAPI
	captures *repository.CaptureRepository
	logger   zerolog.Logger
}

func NewCaptureService(cfg *config.Config, riot RiotAPI, twitch TwitchAPI, captures *repository.CaptureRepository, logger zerolog.Logger) *CaptureService {
	return &CaptureService{cfg: cfg, riot: riot, twitch: twitch, captures: captures, logger: logger}
}

// Tick evaluates one scheduler step of the live/offline state machine.
// Missing channel/player configuration is a silent no-op, not an error.
func (s *CaptureService) Tick(ctx context.Context) error {
	if s.cfg.TwitchChannel == "" || s.cfg.SummonerName == "" ||
		s.cfg.SummonerTag == "" || s.cfg.SummonerRegion == "" {
		return nil
	}
	if !s.twitch.IsConfigured() {
		s.logger.Debug().Msg("twitch api not configured, skipping rating capture")
		return nil
	}

	state, err := s.captures.Get(ctx, s.cfg.SummonerName, s.cfg.SummonerTag)
	if err != nil {
		return fmt.Errorf("read capture state: %w", err)
	}
	// Unknown collapses to offline with no captured rating.
	wasLive := state != nil && state.WasLive

	stream, err := s.twitch.GetStreamInfo(ctx, s.cfg.TwitchChannel)
	if err != nil {
		return fmt.Errorf("stream info: %w", err)
	}
	isLive := stream != nil && stream.Type == "live"

	switch {
	case isLive && !wasLive:
		// Live edge: snapshot the rating once, at the edge.
		return s.captureLiveEdge(ctx, stream.StartedAt)

	case !isLive && wasLive:
		s.logger.Info().Str("channel", s.cfg.TwitchChannel).Msg("stream went offline")
		next := &domain.CaptureState{WasLive: false}
		if state != nil {
			// History fields survive the offline transition; the captured
			// rating does not.
			next.CapturedAt = state.CapturedAt
			next.StreamStartedAt = state.StreamStartedAt
		}
		return s.captures.Save(ctx, s.cfg.SummonerName, s.cfg.SummonerTag, next)

	default:
		// still live or still offline
		return nil
	}
}

func (s *CaptureService) captureLiveEdge(ctx context.Context, streamStartedAt time.Time) error {
	s.logger.Info().Str("channel", s.cfg.TwitchChannel).Msg("stream went live, capturing rating")

	account, err := s.riot.GetAccountByRiotID(ctx, s.cfg.SummonerName, s.cfg.SummonerTag, s.cfg.SummonerRegion)
	if err != nil {
		return fmt.Errorf("fetch account: %w", err)
	}

	deps := handlerDeps{riot: s.riot, logger: s.logger}
	current := deps.soloQueueRating(ctx, account.PUUID, s.cfg.SummonerRegion)

	now := time.Now()
	next := &domain.CaptureState{
		WasLive:         true,
		CapturedRating:  current,
		CapturedAt:      &now,
		StreamStartedAt: &streamStartedAt,
	}
	if err := s.captures.Save(ctx, s.cfg.SummonerName, s.cfg.SummonerTag, next); err != nil {
		return err
	}

	event := s.logger.Info().Time("stream_started_at", streamStartedAt)
	if current != nil {
		event = event.Int("rating", *current)
	}
	event.Msg("starting rating captured")
	return nil
}
