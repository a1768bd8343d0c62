package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"
	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"
	"github.com/kazu-source/Stream-Record-Tracker/internal/repository"

	"github.com/rs/zerolog"
)

// SessionResolution is the outcome of deciding whether a query continues an
// existing stream session or starts a new one. Prior is returned even for a
// new session so callers can still read a stale record's fields.
type SessionResolution struct {
	IsNew          bool
	EffectiveStart time.Time
	Prior          *domain.SessionRecord
}

// SessionResolver applies the restart-tolerance policy over the stored
// session record. It is a tie-break over one persisted record per key, with
// absence as a valid input.
type SessionResolver struct {
	sessions *repository.SessionRepository
	logger   zerolog.Logger
}

func NewSessionResolver(sessions *repository.SessionRepository, logger zerolog.Logger) *SessionResolver {
	return &SessionResolver{sessions: sessions, logger: logger}
}

// Resolve decides session continuity for a declared stream start.
//
// A request within the restart window of the stored start continues the
// session and keeps the original start, absorbing clock drift and bot
// restart jitter. A request arriving shortly after the last observed
// activity is also treated as a continuation when its start is not older
// than that activity minus the window (a stream drop-and-reconnect where
// the declared start jumps forward).
func (r *SessionResolver) Resolve(ctx context.Context, game domain.GameType, summoner, tag string, requestedStart time.Time) (SessionResolution, error) {
	prior, err := r.sessions.Get(ctx, game, summoner, tag)
	if err != nil {
		return SessionResolution{}, fmt.Errorf("resolve session: %w", err)
	}

	if prior == nil {
		return SessionResolution{IsNew: true, EffectiveStart: requestedStart}, nil
	}

	diff := requestedStart.Sub(prior.StreamStart)
	if diff < 0 {
		diff = -diff
	}
	if diff <= constants.RestartWindow {
		r.logger.Debug().
			Str("game", string(game)).
			Time("stored_start", prior.StreamStart).
			Time("requested_start", requestedStart).
			Msg("stream restart within window, continuing session")
		return SessionResolution{IsNew: false, EffectiveStart: prior.StreamStart, Prior: prior}, nil
	}

	sinceLastSeen := time.Since(prior.LastSeen)
	if sinceLastSeen <= constants.RestartWindow &&
		requestedStart.After(prior.LastSeen.Add(-constants.RestartWindow)) {
		r.logger.Debug().
			Str("game", string(game)).
			Dur("since_last_seen", sinceLastSeen).
			Msg("recent activity, treating as reconnect")
		return SessionResolution{IsNew: false, EffectiveStart: prior.StreamStart, Prior: prior}, nil
	}

	return SessionResolution{IsNew: true, EffectiveStart: requestedStart, Prior: prior}, nil
}
