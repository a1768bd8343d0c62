package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"
	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"

	"github.com/rs/zerolog"
)

// SessionRepository persists one SessionRecord per (game, summoner, tag) key.
// Records expire via the store's TTL; there is no delete path.
type SessionRepository struct {
	kv     KV
	logger zerolog.Logger
}

func NewSessionRepository(kv KV, logger zerolog.Logger) *SessionRepository {
	return &SessionRepository{kv: kv, logger: logger}
}

func sessionKey(game domain.GameType, summoner, tag string) string {
	return fmt.Sprintf("session:%s:%s:%s", game, strings.ToLower(summoner), strings.ToLower(tag))
}

// Get returns the stored session for the key, or nil when none exists.
func (r *SessionRepository) Get(ctx context.Context, game domain.GameType, summoner, tag string) (*domain.SessionRecord, error) {
	data, ok, err := r.kv.Get(ctx, sessionKey(game, summoner, tag))
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var record domain.SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &record, nil
}

func (r *SessionRepository) Save(ctx context.Context, summoner, tag string, record *domain.SessionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	key := sessionKey(record.GameType, summoner, tag)
	if err := r.kv.Put(ctx, key, data, 0); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	r.logger.Debug().
		Str("key", key).
		Int("wins", record.Wins).
		Int("losses", record.Losses).
		Msg("session saved")
	return nil
}

// CaptureRepository persists the live/offline edge tracker for the channel
// configured for automatic rating capture. State outlives a single stream
// via a 24h TTL.
type CaptureRepository struct {
	kv     KV
	logger zerolog.Logger
}

func NewCaptureRepository(kv KV, logger zerolog.Logger) *CaptureRepository {
	return &CaptureRepository{kv: kv, logger: logger}
}

func captureKey(summoner, tag string) string {
	return fmt.Sprintf("lp-capture:%s:%s", strings.ToLower(summoner), strings.ToLower(tag))
}

func (r *CaptureRepository) Get(ctx context.Context, summoner, tag string) (*domain.CaptureState, error) {
	data, ok, err := r.kv.Get(ctx, captureKey(summoner, tag))
	if err != nil {
		return nil, fmt.Errorf("get capture state: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var state domain.CaptureState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode capture state: %w", err)
	}
	return &state, nil
}

func (r *CaptureRepository) Save(ctx context.Context, summoner, tag string, state *domain.CaptureState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode capture state: %w", err)
	}

	if err := r.kv.Put(ctx, captureKey(summoner, tag), data, constants.CaptureStateTTL); err != nil {
		return fmt.Errorf("save capture state: %w", err)
	}

	r.logger.Debug().Bool("was_live", state.WasLive).Msg("capture state saved")
	return nil
}
