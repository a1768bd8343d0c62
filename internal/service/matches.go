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

// streamMatches retrieves and filters the ranked matches played since the
// effective session start. Detail fetches are sequential to bound load on the
// rate-limited provider; a rate-limit signal truncates the walk and the
// partial result stands. Individual match failures are skipped.
func (d *handlerDeps) streamMatches(ctx context.Context, puuid, region string, since time.Time) ([]domain.ProcessedMatch, error) {
	ids, err := d.riot.GetMatchIDs(ctx, puuid, region, constants.MatchFetchLimit, since)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	var processed []domain.ProcessedMatch
	for _, id := range ids {
		match, err := d.riot.GetMatch(ctx, id, region)
		if err != nil {
			if errors.Is(err, api.ErrRateLimited) {
				d.logger.Warn().Str("match_id", id).Msg("rate limited, aggregating fetched matches only")
				break
			}
			d.logger.Warn().Err(err).Str("match_id", id).Msg("failed to fetch match, skipping")
			continue
		}

		if m, ok := processMatch(match, puuid, since); ok {
			processed = append(processed, m)
		}

		// Stay under the provider's rate limit between detail fetches.
		time.Sleep(constants.MatchFetchDelay)
	}

	// Sort ascending by in-game start so counts are reproducible regardless
	// of provider return order.
	sort.Slice(processed, func(i, j int) bool {
		return processed[i].StartedAt.Before(processed[j].StartedAt)
	})
	return processed, nil
}

// processMatch keeps a match only when it is ranked solo queue, started after
// the session did, and includes the target player.
func processMatch(match *api.Match, puuid string, since time.Time) (domain.ProcessedMatch, bool) {
	if match.Info.QueueID != domain.RankedSoloQueueID {
		return domain.ProcessedMatch{}, false
	}

	startedAt := time.UnixMilli(match.Info.GameStartTimestamp)
	if startedAt.Before(since) {
		return domain.ProcessedMatch{}, false
	}

	for _, p := range match.Info.Participants {
		if p.PUUID == puuid {
			return domain.ProcessedMatch{
				MatchID:   match.Metadata.MatchID,
				StartedAt: startedAt,
				Win:       p.Win,
				QueueID:   match.Info.QueueID,
			}, true
		}
	}
	return domain.ProcessedMatch{}, false
}

// record folds matches into the session's win/loss counts.
func record(matches []domain.ProcessedMatch) (wins, losses int) {
	for _, m := range matches {
		if m.Win {
			wins++
		} else {
			losses++
		}
	}
	return wins, losses
}
