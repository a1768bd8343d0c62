package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/api"
	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"
	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"
)

// streamTFTMatches is the placement-game variant of the aggregation walk:
// same bounded list, sequential details, rate-limit truncation, and per-match
// skip policy as the LoL pipeline.
func (d *handlerDeps) streamTFTMatches(ctx context.Context, puuid, region string, since time.Time) ([]domain.ProcessedTFTMatch, error) {
	ids, err := d.riot.GetTFTMatchIDs(ctx, puuid, region, constants.MatchFetchLimit, since)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var processed []domain.ProcessedTFTMatch
	for _, id := range ids {
		match, err := d.riot.GetTFTMatch(ctx, id, region)
		if err != nil {
			if errors.Is(err, api.ErrRateLimited) {
				d.logger.Warn().Str("match_id", id).Msg("rate limited, aggregating fetched matches only")
				break
			}
			d.logger.Warn().Err(err).Str("match_id", id).Msg("failed to fetch tft match, skipping")
			continue
		}

		if m, ok := processTFTMatch(match, puuid, since); ok {
			processed = append(processed, m)
		}

		time.Sleep(constants.MatchFetchDelay)
	}

	sort.Slice(processed, func(i, j int) bool {
		return processed[i].StartedAt.Before(processed[j].StartedAt)
	})
	return processed, nil
}

func processTFTMatch(match *api.TFTMatch, puuid string, since time.Time) (domain.ProcessedTFTMatch, bool) {
	startedAt := time.UnixMilli(match.Info.GameDatetime)
	if startedAt.Before(since) {
		return domain.ProcessedTFTMatch{}, false
	}

	for _, p := range match.Info.Participants {
		if p.PUUID == puuid {
			return domain.ProcessedTFTMatch{
				MatchID:   match.Metadata.MatchID,
				StartedAt: startedAt,
				Placement: p.Placement,
				IsFirst:   p.Placement == 1,
				IsTop4:    p.Placement <= 4,
			}, true
		}
	}
	return domain.ProcessedTFTMatch{}, false
}

// tftRecord folds placements into the session counts. Top half of the lobby
// counts as a win, bottom half as a loss; firsts are tracked separately and
// the five most recent placements are kept most recent first.
func tftRecord(matches []domain.ProcessedTFTMatch) (wins, losses, firsts int, placements []int) {
	for _, m := range matches {
		if m.IsTop4 {
			wins++
			if m.IsFirst {
				firsts++
			}
		} else {
			losses++
		}
	}

	recent := make([]domain.ProcessedTFTMatch, len(matches))
	copy(recent, matches)
	sort.Slice(recent, func(i, j int) bool {
		return recent[i].StartedAt.After(recent[j].StartedAt)
	})
	for i := 0; i < len(recent) && i < 5; i++ {
		placements = append(placements, recent[i].Placement)
	}
	return wins, losses, firsts, placements
}
