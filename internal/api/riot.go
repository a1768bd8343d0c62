package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/config"
	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"
	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"
	"github.com/kazu-source/Stream-Record-Tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// ErrRateLimited is returned when the provider answers 429. Callers stop
// fetching and work with what they already have.
var ErrRateLimited = errors.New("riot api: rate limited")

type RiotClient struct {
	apiKey      string
	client      *fasthttp.Client
	cache       repository.KV
	logger      zerolog.Logger
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

// RateLimitInfo mirrors the app-level rate limit headers Riot reports on
// every response. Advisory only; 429 is the authoritative signal.
type RateLimitInfo struct {
	AppLimit   string    `json:"app_limit"`
	AppCount   string    `json:"app_count"`
	RetryAfter int       `json:"retry_after"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func NewRiotClient(cfg *config.Config, cache repository.KV, logger zerolog.Logger) *RiotClient {
	return &RiotClient{
		apiKey: cfg.RiotAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		cache:  cache,
		logger: logger,
	}
}

func (c *RiotClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *RiotClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-App-Rate-Limit")); limit != "" {
		c.rateLimit.AppLimit = limit
	}
	if count := string(resp.Header.Peek("X-App-Rate-Limit-Count")); count != "" {
		c.rateLimit.AppCount = count
	}
	if retry := string(resp.Header.Peek("Retry-After")); retry != "" {
		if val, err := strconv.Atoi(retry); err == nil {
			c.rateLimit.RetryAfter = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

// Account is the Riot ID lookup result.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// LeagueEntry is one ranked queue standing for a player.
type LeagueEntry struct {
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
}

// Match is the LoL match-v5 response, trimmed to the fields the record needs.
type Match struct {
	Metadata struct {
		MatchID string `json:"matchId"`
	} `json:"metadata"`
	Info struct {
		GameStartTimestamp int64 `json:"gameStartTimestamp"`
		QueueID            int   `json:"queueId"`
		Participants       []struct {
			PUUID string `json:"puuid"`
			Win   bool   `json:"win"`
		} `json:"participants"`
	} `json:"info"`
}

// TFTMatch is the tft-match-v1 response, trimmed likewise.
type TFTMatch struct {
	Metadata struct {
		MatchID string `json:"match_id"`
	} `json:"metadata"`
	Info struct {
		GameDatetime int64 `json:"game_datetime"`
		QueueID      int   `json:"queue_id"`
		Participants []struct {
			PUUID     string `json:"puuid"`
			Placement int    `json:"placement"`
		} `json:"participants"`
	} `json:"info"`
}

// TFTSummoner carries the summoner ID the TFT league endpoint keys on.
type TFTSummoner struct {
	ID    string `json:"id"`
	PUUID string `json:"puuid"`
}

func (c *RiotClient) GetAccountByRiotID(ctx context.Context, name, tag, region string) (*Account, error) {
	route := domain.RegionalRoute(region)
	u := fmt.Sprintf("https://%s.api.riotgames.com/riot/account/v1/accounts/by-riot-id/%s/%s",
		route, url.PathEscape(name), url.PathEscape(tag))
	cacheKey := fmt.Sprintf("account:%s:%s", name, tag)
	return fetchJSON[Account](ctx, c, u, cacheKey, constants.AccountCacheTTL)
}

func (c *RiotClient) GetMatchIDs(ctx context.Context, puuid, region string, count int, since time.Time) ([]string, error) {
	route := domain.RegionalRoute(region)
	u := fmt.Sprintf("https://%s.api.riotgames.com/lol/match/v5/matches/by-puuid/%s/ids?count=%d",
		route, puuid, count)
	cacheKey := fmt.Sprintf("matches:%s:%d:all", puuid, count)
	if !since.IsZero() {
		u += fmt.Sprintf("&startTime=%d", since.Unix())
		cacheKey = fmt.Sprintf("matches:%s:%d:%d", puuid, count, since.Unix())
	}
	ids, err := fetchJSON[[]string](ctx, c, u, cacheKey, constants.MatchListCacheTTL)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

func (c *RiotClient) GetMatch(ctx context.Context, matchID, region string) (*Match, error) {
	route := domain.RegionalRoute(region)
	u := fmt.Sprintf("https://%s.api.riotgames.com/lol/match/v5/matches/%s", route, matchID)
	// Match data is immutable, cache longer.
	return fetchJSON[Match](ctx, c, u, "match:"+matchID, constants.MatchDetailCacheTTL)
}

func (c *RiotClient) GetRankedEntries(ctx context.Context, puuid, region string) ([]LeagueEntry, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/lol/league/v4/entries/by-puuid/%s", region, puuid)
	entries, err := fetchJSON[[]LeagueEntry](ctx, c, u, "ranked:"+puuid, constants.RankedCacheTTL)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

func (c *RiotClient) GetTFTMatchIDs(ctx context.Context, puuid, region string, count int, since time.Time) ([]string, error) {
	route := domain.RegionalRoute(region)
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/match/v1/matches/by-puuid/%s/ids?count=%d",
		route, puuid, count)
	cacheKey := fmt.Sprintf("tft-matches:%s:%d:all", puuid, count)
	if !since.IsZero() {
		u += fmt.Sprintf("&startTime=%d", since.Unix())
		cacheKey = fmt.Sprintf("tft-matches:%s:%d:%d", puuid, count, since.Unix())
	}
	ids, err := fetchJSON[[]string](ctx, c, u, cacheKey, constants.MatchListCacheTTL)
	if err != nil {
		return nil, err
	}
	return *ids, nil
}

func (c *RiotClient) GetTFTMatch(ctx context.Context, matchID, region string) (*TFTMatch, error) {
	route := domain.RegionalRoute(region)
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/match/v1/matches/%s", route, matchID)
	return fetchJSON[TFTMatch](ctx, c, u, "tft-match:"+matchID, constants.MatchDetailCacheTTL)
}

func (c *RiotClient) GetTFTSummonerByPUUID(ctx context.Context, puuid, region string) (*TFTSummoner, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/summoner/v1/summoners/by-puuid/%s", region, puuid)
	return fetchJSON[TFTSummoner](ctx, c, u, "tft-summoner:"+puuid, constants.SummonerCacheTTL)
}

func (c *RiotClient) GetTFTRankedEntries(ctx context.Context, summonerID, region string) ([]LeagueEntry, error) {
	u := fmt.Sprintf("https://%s.api.riotgames.com/tft/league/v1/entries/by-summoner/%s", region, summonerID)
	entries, err := fetchJSON[[]LeagueEntry](ctx, c, u, "tft-ranked:"+summonerID, constants.RankedCacheTTL)
	if err != nil {
		return nil, err
	}
	return *entries, nil
}

// fetchJSON resolves a GET through the KV cache first, then the API. Rate
// limit responses surface as ErrRateLimited and are never cached.
func fetchJSON[T any](ctx context.Context, client *RiotClient, requestURL, cacheKey string, ttl time.Duration) (*T, error) {
	if data, ok, err := client.cache.Get(ctx, cacheKey); err == nil && ok {
		var result T
		if err := json.Unmarshal(data, &result); err == nil {
			return &result, nil
		}
		client.logger.Warn().Str("key", cacheKey).Msg("discarding undecodable cache entry")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Riot-Token", client.apiKey)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() == fasthttp.StatusTooManyRequests {
		info := client.GetRateLimitInfo()
		client.logger.Warn().
			Str("app_count", info.AppCount).
			Int("retry_after", info.RetryAfter).
			Msg("riot api rate limit hit")
		return nil, ErrRateLimited
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("riot api error: %d", resp.StatusCode())
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, err
	}

	if err := client.cache.Put(ctx, cacheKey, body, ttl); err != nil {
		client.logger.Warn().Err(err).Str("key", cacheKey).Msg("failed to cache response")
	}
	return &result, nil
}
