package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"
	"github.com/kazu-source/Stream-Record-Tracker/internal/rating"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/sync/errgroup"
)

const (
	tftNoGames       = "No ranked TFT games this stream yet!"
	tftOfflineNoData = "Stream is offline. No previous TFT record found."
)

// tftHandler tracks ranked TFT, a placement-based game: top half of the lobby
// counts as a win, and the last five placements ride along in the record.
type tftHandler struct {
	handlerDeps
}

func (h *tftHandler) GameType() domain.GameType { return domain.GameTFT }

func (h *tftHandler) HandleOnline(ctx context.Context, q Query) (string, error) {
	res, err := h.resolver.Resolve(ctx, domain.GameTFT, q.Summoner, q.Tag, q.StreamStart)
	if err != nil {
		return "", err
	}

	account, err := h.riot.GetAccountByRiotID(ctx, q.Summoner, q.Tag, q.Region)
	if err != nil {
		return "", fmt.Errorf("fetch account: %w", err)
	}
	h.logger.Debug().Str("puuid", account.PUUID).Str("summoner", q.Summoner).Msg("account resolved")

	g, gctx := errgroup.WithContext(ctx)
	var current *int
	var matches []domain.ProcessedTFTMatch
	g.Go(func() error {
		current = h.tftRating(gctx, account.PUUID, q.Region)
		return nil
	})
	g.Go(func() error {
		var err error
		matches, err = h.streamTFTMatches(gctx, account.PUUID, q.Region, res.EffectiveStart)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	wins, losses, firsts, placements := tftRecord(matches)
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
			GameType:       domain.GameTFT,
			StreamStart:    res.EffectiveStart,
			StartingRating: starting,
		}
	}
	session.LastSeen = time.Now()
	session.Wins = wins
	session.Losses = losses
	session.Placements = placements
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
		Int("firsts", firsts).
		Msg("tft record computed")

	if wins == 0 && losses == 0 {
		return tftNoGames, nil
	}
	return formatTFTStreamRecord(wins, losses, placements, change), nil
}

func (h *tftHandler) HandleOffline(ctx context.Context, summoner, tag string) (string, error) {
	last, err := h.sessions.Get(ctx, domain.GameTFT, summoner, tag)
	if err != nil {
		return "", err
	}
	if last == nil || (last.Wins == 0 && last.Losses == 0) {
		return tftOfflineNoData, nil
	}
	change := last.RatingChange
	return formatTFTOfflineRecord(last.Wins, last.Losses, last.Placements, &change), nil
}

// tftRating observes the player's current normalized TFT rating. The TFT
// league endpoint keys on summoner ID rather than PUUID, so that hop comes
// first.
func (h *tftHandler) tftRating(ctx context.Context, puuid, region string) *int {
	summoner, err := h.riot.GetTFTSummonerByPUUID(ctx, puuid, region)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to fetch tft summoner")
		return nil
	}
	entries, err := h.riot.GetTFTRankedEntries(ctx, summoner.ID, region)
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to fetch tft ranked entries")
		return nil
	}
	for _, e := range entries {
		if e.QueueType == "RANKED_TFT" {
			value := rating.ToScale(e.Tier, e.Rank, e.LeaguePoints)
			return &value
		}
	}
	h.logger.Debug().Str("puuid", puuid).Msg("no ranked tft entry found")
	return nil
}

func formatTFTStreamRecord(wins, losses int, placements []int, change *int) string {
	return fmt.Sprintf("W-L: %dW-%dL%s | %s",
		wins, losses, formatLastFive(placements), formatRatingChange(change))
}

func formatTFTOfflineRecord(wins, losses int, placements []int, change *int) string {
	return fmt.Sprintf("Stream is offline. Last stream's TFT record: W-L: %dW-%dL%s | %s",
		wins, losses, formatLastFive(placements), formatRatingChange(change))
}

func formatLastFive(placements []int) string {
	if len(placements) == 0 {
		return ""
	}
	parts := make([]string, len(placements))
	for i, p := range placements {
		parts[i] = ordinal(p)
	}
	return " | L5: " + strings.Join(parts, ", ")
}

// ordinal renders 1 as "1st", 2 as "2nd", and so on.
func ordinal(n int) string {
	suffix := "th"
	if n%100 < 11 || n%100 > 13 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
