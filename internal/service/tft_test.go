package service

import (
	"context"
	"testing"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/api"
	"github.com/kazu-source/Stream-Record-Tracker/internal/domain"
)

func tftEntry(tier, rank string, lp int) []api.LeagueEntry {
	return []api.LeagueEntry{{QueueType: "RANKED_TFT", Tier: tier, Rank: rank, LeaguePoints: lp}}
}

func TestTFTNewSessionZeroGames(t *testing.T) {
	riot := &fakeRiot{tftEntries: tftEntry("GOLD", "II", 50)}
	fx := newHandlerFixture(riot)
	h := &tftHandler{handlerDeps: fx.deps}

	response, err := h.HandleOnline(context.Background(), Query{
		Summoner: "Faker", Tag: "KR1", Region: "kr",
		StreamStart: time.Now().Add(-10 * time.Minute),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response != tftNoGames {
		t.Fatalf("response = %q, want %q", response, tftNoGames)
	}

	saved, err := fx.sessions.Get(context.Background(), domain.GameTFT, "Faker", "KR1")
	if err != nil || saved == nil {
		t.Fatalf("expected saved session, err=%v", err)
	}
	if saved.StartingRating == nil || *saved.StartingRating != 1450 {
		t.Fatalf("starting rating = %v, want 1450", saved.StartingRating)
	}
}

func TestTFTContinuingSessionWithPlacements(t *testing.T) {
	streamStart := time.Now().Add(-3 * time.Hour)
	riot := &fakeRiot{
		tftEntries: tftEntry("GOLD", "II", 88),
		tftIDs:     []string{"t1", "t2", "t3"},
		tftMatches: map[string]*api.TFTMatch{
			"t1": tftMatch("t1", streamStart.Add(10*time.Minute), testPUUID, 1),
			"t2": tftMatch("t2", streamStart.Add(50*time.Minute), testPUUID, 6),
			"t3": tftMatch("t3", streamStart.Add(90*time.Minute), testPUUID, 3),
		},
	}
	fx := newHandlerFixture(riot)
	h := &tftHandler{handlerDeps: fx.deps}

	prior := &domain.SessionRecord{
		ID:             "prior",
		GameType:       domain.GameTFT,
		StreamStart:    streamStart,
		LastSeen:       time.Now().Add(-10 * time.Minute),
		StartingRating: intPtr(1450),
	}
	if err := fx.sessions.Save(context.Background(), "Faker", "KR1", prior); err != nil {
		t.Fatalf("save prior: %v", err)
	}

	response, err := h.HandleOnline(context.Background(), Query{
		Summoner: "Faker", Tag: "KR1", Region: "kr",
		StreamStart: streamStart.Add(time.Minute),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Most recent placement first: 3rd, 6th, 1st.
	if response != "W-L: 2W-1L | L5: 3rd, 6th, 1st | LP: +38" {
		t.Fatalf("response = %q", response)
	}

	saved, err := fx.sessions.Get(context.Background(), domain.GameTFT, "Faker", "KR1")
	if err != nil || saved == nil {
		t.Fatalf("expected saved session, err=%v", err)
	}
	if len(saved.Placements) != 3 || saved.Placements[0] != 3 {
		t.Fatalf("placements = %v", saved.Placements)
	}
}

func TestTFTOffline(t *testing.T) {
	fx := newHandlerFixture(&fakeRiot{})
	h := &tftHandler{handlerDeps: fx.deps}

	response, err := h.HandleOffline(context.Background(), "Faker", "KR1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response != tftOfflineNoData {
		t.Fatalf("response = %q, want %q", response, tftOfflineNoData)
	}

	prior := &domain.SessionRecord{
		GameType:     domain.GameTFT,
		StreamStart:  time.Now().Add(-8 * time.Hour),
		LastSeen:     time.Now().Add(-4 * time.Hour),
		Wins:         4,
		Losses:       2,
		RatingChange: -12,
		Placements:   []int{5, 2, 1, 8, 4},
	}
	if err := fx.sessions.Save(context.Background(), "Faker", "KR1", prior); err != nil {
		t.Fatalf("save prior: %v", err)
	}

	response, err = h.HandleOffline(context.Background(), "Faker", "KR1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response != "Stream is offline. Last stream's TFT record: W-L: 4W-2L | L5: 5th, 2nd, 1st, 8th, 4th | LP: -12" {
		t.Fatalf("response = %q", response)
	}
}
