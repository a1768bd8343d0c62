package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

const (
	lolNoGames       = "No ranked games this stream yet!"
	lolOfflineNoData = "Stream is offline. No previous record found."
)

// lolHandler tracks ranked solo queue with binary win/loss outcomes.
type lolHandler struct {
	handlerDeps
}

func (h *lolHandler) GameType() domain.GameType { return domain.GameLoL }

func (h *lolHandler) HandleOnline(ctx context.Context, q Query) (string, error) {
	res, err := h.resolver.Resolve(ctx, domain.GameLoL, q.Summoner, q.Tag, q.StreamStart)
	if err != nil {
		return "", err
	}

	account, err := h.riot.GetAccountByRiotID(ctx, q.Summoner, q.Tag, q.Region)
	if err != nil {
		return "", fmt.Errorf("fetch account: %w", err)
	}
	h.logger.Debug().Str("puuid", account.PUUID).Str("summoner", q.Summoner).Msg("account resolved")

	// The current rating and the match walk are independent once the account
	// is known; only per-match detail fetches must stay sequential.
	g, gctx := errgroup.WithContext(ctx)
	var current *int
	var matches []domain.ProcessedMatch
	g.Go(func() error {
		current = h.soloQueueRating(gctx, account.PUUID, q.Region)
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = h.streamMatches(gctx, account.PUUID, q.Region, res.EffectiveStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	wins, losses := record(matches)
	starting := h.resolveStartingRating(ctx, q, res, wins+losses, current)
	change := ratingDelta(current, starting)

	session := res.Prior
	if res.IsNew {
		id, err := gonanoid.New()
		if err != nil {
			return "", fmt.Errorf("failed to generate nanoid: %w", err)
		}
		session = &domain.SessionRecord{
			ID:             id,
			GameType:       domain.GameLoL,
			StreamStart:    res.EffectiveStart,
			StartingRating: starting,
		}
	}
	session.LastSeen = time.Now()
	session.Wins = wins
	session.Losses = losses
	if change != nil {
		session.RatingChange = *change
	}

	if err := h.sessions.Save(ctx, q.Summoner, q.Tag, session); err != nil {
		return "", err
	}

	h.logger.Info().
		Bool("new_session", res.IsNew).
		Int("wins", wins).
		Int("losses", losses).
		Msg("record computed")

	if wins == 0 && losses == 0 {
		return lolNoGames, nil
	}
	return formatStreamRecord(wins, losses, change), nil
}

func (h *lolHandler) HandleOffline(ctx context.Context, summoner, tag string) (string, error) {
	last, err := h.sessions.Get(ctx, domain.GameLoL, summoner, tag)
	if err != nil {
		return "", err
	}
	if last == nil || (last.Wins == 0 && last.Losses == 0) {
		return lolOfflineNoData, nil
	}
	change := last.RatingChange
	return formatOfflineRecord(last.Wins, last.Losses, &change), nil
}

func formatStreamRecord(wins, losses int, change *int) string {
	return fmt.Sprintf("Stream Record: %dW-%dL | %s", wins, losses, formatRatingChange(change))
}

func formatOfflineRecord(wins, losses int, change *int) string {
	return fmt.Sprintf("Stream is offline. Last stream's record: %dW-%dL | %s",
		wins, losses, formatRatingChange(change))
}
