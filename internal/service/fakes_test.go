package service

import (
	"context"
	"sync"
	"time"

	"github.com/kazu-source/Stream-Record-Tracker/internal/api"
)

// memKV is an in-memory stand-in for the durable key-value store.
type memKV struct {
	mu   sync.Mutex
	m    map[string][]byte
	puts int
}

func newMemKV() *memKV {
	return &memKV{m: make(map[string][]byte)}
}

func (k *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.m[key]
	return v, ok, nil
}

func (k *memKV) Put(_ context.Context, key string, value []byte, _ time.Duration) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.m[key] = value
	k.puts++
	return nil
}

// fakeRiot scripts the match-provider collaborator.
type fakeRiot struct {
	account     *api.Account
	accountErr  error
	matchIDs    []string
	matchIDsErr error
	matches     map[string]*api.Match
	matchErrs   map[string]error
	entries     []api.LeagueEntry
	entriesErr  error

	tftIDs       []string
	tftIDsErr    error
	tftMatches   map[string]*api.TFTMatch
	tftMatchErrs map[string]error
	tftSummoner  *api.TFTSummoner
	tftEntries   []api.LeagueEntry
}

func (f *fakeRiot) GetAccountByRiotID(context.Context, string, string, string) (*api.Account, error) {
	if f.accountErr != nil {
		return nil, f.accountErr
	}
	if f.account != nil {
		return f.account, nil
	}
	return &api.Account{PUUID: "puuid-1"}, nil
}

func (f *fakeRiot) GetMatchIDs(context.Context, string, string, int, time.Time) ([]string, error) {
	return f.matchIDs, f.matchIDsErr
}

func (f *fakeRiot) GetMatch(_ context.Context, matchID, _ string) (*api.Match, error) {
	if err, ok := f.matchErrs[matchID]; ok {
		return nil, err
	}
	return f.matches[matchID], nil
}

func (f *fakeRiot) GetRankedEntries(context.Context, string, string) ([]api.LeagueEntry, error) {
	return f.entries, f.entriesErr
}

func (f *fakeRiot) GetTFTMatchIDs(context.Context, string, string, int, time.Time) ([]string, error) {
	return f.tftIDs, f.tftIDsErr
}

func (f *fakeRiot) GetTFTMatch(_ context.Context, matchID, _ string) (*api.TFTMatch, error) {
	if err, ok := f.tftMatchErrs[matchID]; ok {
		return nil, err
	}
	return f.tftMatches[matchID], nil
}

func (f *fakeRiot) GetTFTSummonerByPUUID(context.Context, string, string) (*api.TFTSummoner, error) {
	if f.tftSummoner != nil {
		return f.tftSummoner, nil
	}
	return &api.TFTSummoner{ID: "summoner-1", PUUID: "puuid-1"}, nil
}

func (f *fakeRiot) GetTFTRankedEntries(context.Context, string, string) ([]api.LeagueEntry, error) {
	return f.tftEntries, nil
}

// fakeTwitch scripts the streaming-platform collaborator.
type fakeTwitch struct {
	configured bool
	stream     *api.Stream
	err        error
	calls      int
}

func (f *fakeTwitch) IsConfigured() bool { return f.configured }

func (f *fakeTwitch) GetStreamInfo(context.Context, string) (*api.Stream, error) {
	f.calls++
	return f.stream, f.err
}

func lolMatch(id string, startedAt time.Time, queueID int, puuid string, win bool) *api.Match {
	m := &api.Match{}
	m.Metadata.MatchID = id
	m.Info.GameStartTimestamp = startedAt.UnixMilli()
	m.Info.QueueID = queueID
	m.Info.Participants = []struct {
		PUUID string `json:"puuid"`
		Win   bool   `json:"win"`
	}{{PUUID: puuid, Win: win}}
	return m
}

func tftMatch(id string, startedAt time.Time, puuid string, placement int) *api.TFTMatch {
	m := &api.TFTMatch{}
	m.Metadata.MatchID = id
	m.Info.GameDatetime = startedAt.UnixMilli()
	m.Info.QueueID = 1100
	m.Info.Participants = []struct {
		PUUID     string `json:"puuid"`
		Placement int    `json:"placement"`
	}{{PUUID: puuid, Placement: placement}}
	return m
}

func intPtr(v int) *int { return &v }
