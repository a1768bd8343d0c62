package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/config"
	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"
	"github.com/kazu-source/Stream-Record-Tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const (
	twitchTokenURL   = "https://id.twitch.tv/oauth2/token"
	twitchStreamsURL = "https://api.twitch.tv/helix/streams"
	twitchTokenKey   = "twitch:token"
)

// TwitchClient answers one question for the capture scheduler: is the
// configured channel live, and since when. App access tokens are cached in
// the KV store so restarts do not burn token grants.
type TwitchClient struct {
	clientID     string
	clientSecret string
	client       *fasthttp.Client
	cache        repository.KV
	logger       zerolog.Logger
}

// Stream is one entry from the helix streams response. Type is "live" while
// broadcasting.
type Stream struct {
	ID        string    `json:"id"`
	UserLogin string    `json:"user_login"`
	GameName  string    `json:"game_name"`
	Type      string    `json:"type"`
	StartedAt time.Time `json:"started_at"`
}

func NewTwitchClient(cfg *config.Config, cache repository.KV, logger zerolog.Logger) *TwitchClient {
	return &TwitchClient{
		clientID:     cfg.TwitchClientID,
		clientSecret: cfg.TwitchClientSecret,
		client: &fasthttp.Client{
			ReadTimeout:  constants.ExternalAPITimeout,
			WriteTimeout: constants.ExternalAPITimeout,
		},
		cache:  cache,
		logger: logger,
	}
}

func (c *TwitchClient) IsConfigured() bool {
	return c.clientID != "" && c.clientSecret != ""
}

func (c *TwitchClient) accessToken(ctx context.Context) (string, error) {
	if data, ok, err := c.cache.Get(ctx, twitchTokenKey); err == nil && ok {
		return string(data), nil
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "client_credentials")

	req.SetRequestURI(twitchTokenURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.SetBodyString(form.Encode())

	if err := c.do(ctx, req, resp); err != nil {
		return "", fmt.Errorf("twitch token request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("twitch token request failed: %d", resp.StatusCode())
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("decode twitch token: %w", err)
	}

	if err := c.cache.Put(ctx, twitchTokenKey, []byte(body.AccessToken), constants.TwitchTokenCacheTTL); err != nil {
		c.logger.Warn().Err(err).Msg("failed to cache twitch token")
	}
	return body.AccessToken, nil
}

// GetStreamInfo returns the live stream for a channel, or nil when offline.
func (c *TwitchClient) GetStreamInfo(ctx context.Context, channel string) (*Stream, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(twitchStreamsURL + "?user_login=" + url.QueryEscape(channel))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)

	if err := c.do(ctx, req, resp); err != nil {
		return nil, fmt.Errorf("twitch streams request: %w", err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("twitch streams request failed: %d", resp.StatusCode())
	}

	var body struct {
		Data []Stream `json:"data"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode twitch streams: %w", err)
	}

	// Empty data array means the channel is offline.
	if len(body.Data) == 0 {
		return nil, nil
	}
	return &body.Data[0], nil
}

func (c *TwitchClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if deadline, ok := ctx.Deadline(); ok {
		return c.client.DoDeadline(req, resp, deadline)
	}
	return c.client.Do(req, resp)
}
