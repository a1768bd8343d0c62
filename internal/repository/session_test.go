package repository

import (
	"context"
	"testing"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/constants"
	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"

	"github.com/rs/zerolog"
)

type memKV struct {
	m    map[string][]byte
	ttls map[string]time.Duration
}

func newMemKV() *memKV {
	return &memKV{m: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (k *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Put(_ context.Context, key string, value []byte, ttl time.Duration) error {
	k.m[key] = value
	k.ttls[key] = ttl
	return nil
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	kv := newMemKV()
	repo := NewSessionRepository(kv, zerolog.Nop())
	ctx := context.Background()

	got, err := repo.Get(ctx, domain.GameLoL, "Faker", "KR1")
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing session, got %+v", got)
	}

	start := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	rating := 1450
	in := &domain.SessionRecord{
		ID:             "abc123",
		GameType:       domain.GameLoL,
		StreamStart:    start,
		LastSeen:       start.Add(time.Hour),
		Wins:           2,
		Losses:         1,
		RatingChange:   38,
		StartingRating: &rating,
	}
	if err := repo.Save(ctx, "Faker", "KR1", in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err = repo.Get(ctx, domain.GameLoL, "Faker", "KR1")
	if err != nil || got == nil {
		t.Fatalf("get after save: got=%v err=%v", got, err)
	}
	if got.ID != in.ID || got.Wins != 2 || got.Losses != 1 || got.RatingChange != 38 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.StartingRating == nil || *got.StartingRating != 1450 {
		t.Fatalf("starting rating = %v, want 1450", got.StartingRating)
	}
	if !got.StreamStart.Equal(start) {
		t.Fatalf("stream start = %v, want %v", got.StreamStart, start)
	}
}

func TestSessionKeyIsCaseInsensitiveAndGameScoped(t *testing.T) {
	kv := newMemKV()
	repo := NewSessionRepository(kv, zerolog.Nop())
	ctx := context.Background()

	in := &domain.SessionRecord{ID: "abc123", GameType: domain.GameLoL, Wins: 1}
	if err := repo.Save(ctx, "FaKeR", "kr1", in); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Get(ctx, domain.GameLoL, "faker", "KR1")
	if err != nil || got == nil {
		t.Fatalf("case-folded lookup failed: got=%v err=%v", got, err)
	}

	// Same player under a different game is a distinct key.
	got, err = repo.Get(ctx, domain.GameTFT, "faker", "KR1")
	if err != nil {
		t.Fatalf("tft lookup: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no tft session, got %+v", got)
	}
}

func TestCaptureRepositoryTTLAndRoundTrip(t *testing.T) {
	kv := newMemKV()
	repo := NewCaptureRepository(kv, zerolog.Nop())
	ctx := context.Background()

	got, err := repo.Get(ctx, "Faker", "KR1")
	if err != nil {
		t.Fatalf("get empty: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing state, got %+v", got)
	}

	rating := 1450
	at := time.Date(2026, 8, 30, 19, 0, 0, 0, time.UTC)
	in := &domain.CaptureState{
		WasLive:         true,
		CapturedRating:  &rating,
		CapturedAt:      &at,
		StreamStartedAt: &at,
	}
	if err := repo.Save(ctx, "Faker", "KR1", in); err != nil {
		t.Fatalf("save: %v", err)
	}

	if ttl := kv.ttls["lp-capture:faker:kr1"]; ttl != constants.CaptureStateTTL {
		t.Fatalf("ttl = %v, want %v", ttl, constants.CaptureStateTTL)
	}

	got, err = repo.Get(ctx, "Faker", "KR1")
	if err != nil || got == nil {
		t.Fatalf("get after save: got=%v err=%v", got, err)
	}
	if !got.WasLive || got.CapturedRating == nil || *got.CapturedRating != 1450 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.StreamStartedAt == nil || !got.StreamStartedAt.Equal(at) {
		t.Fatalf("stream started at = %v, want %v", got.StreamStartedAt, at)
	}
}
