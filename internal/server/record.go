// Package server exposes the chat-bot query interface: one GET endpoint that
// always answers with a single plain-text line, never a structured payload.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/api"
	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"
	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"
	"github.com/kazu-source/Stream-Record-Tracker/internal/service"

	"github.com/rs/zerolog"
)

const (
	respAPIUnavailable = "Stats temporarily unavailable"
	respUnknownError   = "Unknown Error"
	respMissingParams  = "Missing required parameters: summoner, tag, region"
)

type RecordServer struct {
	registry *service.Registry
	logger   zerolog.Logger
}

func NewRecordServer(registry *service.Registry, logger zerolog.Logger) *RecordServer {
	return &RecordServer{registry: registry, logger: logger}
}

// HandleRecord serves the periodic chat-bot query. Parameter validation
// happens before any collaborator call; an absent streamStart means the
// stream is offline and the last session's record is reported instead.
func (s *RecordServer) HandleRecord(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.RequestTimeout)
	defer cancel()

	q := r.URL.Query()
	summoner := q.Get("summoner")
	tag := q.Get("tag")
	region := q.Get("region")
	if summoner == "" || tag == "" || region == "" {
		writeText(w, respMissingParams)
		return
	}

	game := domain.DetectGameType(q.Get("game"))
	handler := s.registry.Get(game)
	s.logger.Info().
		Str("game", string(game)).
		Str("summoner", summoner).
		Str("tag", tag).
		Msg("processing record query")

	streamStartParam := q.Get("streamStart")
	if streamStartParam == "" {
		response, err := handler.HandleOffline(ctx, summoner, tag)
		if err != nil {
			s.writeError(w, err)
			return
		}
		writeText(w, response)
		return
	}

	streamStart, err := time.Parse(time.RFC3339, streamStartParam)
	if err != nil {
		s.logger.Warn().Str("stream_start", streamStartParam).Msg("unparseable streamStart")
		writeText(w, respUnknownError)
		return
	}

	var testStartRating *int
	if v := q.Get("testStartLp"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			testStartRating = &parsed
		}
	}

	response, err := handler.HandleOnline(ctx, service.Query{
		Summoner:        summoner,
		Tag:             tag,
		Region:          region,
		StreamStart:     streamStart,
		TestStartRating: testStartRating,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeText(w, response)
}

// HandleHealthz reports process liveness.
func (s *RecordServer) HandleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeText(w, "ok")
}

func (s *RecordServer) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, api.ErrRateLimited) {
		s.logger.Warn().Err(err).Msg("rate limited at top level")
		writeText(w, respAPIUnavailable)
		return
	}
	s.logger.Error().Err(err).Msg("record query failed")
	writeText(w, respUnknownError)
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(text))
}
