package domain

import "testing"

func TestDetectGameType(t *testing.T) {
	cases := []struct {
		category string
		want     GameType
	}{
		{"", GameLoL},
		{"League of Legends", GameLoL},
		{"Teamfight Tactics", GameTFT},
		{"TEAMFIGHT TACTICS", GameTFT},
		{"tft", GameTFT},
		{"TFT", GameTFT},
		{"VALORANT", GameValorant},
		{"Just Chatting", GameLoL},
		{"Dota 2", GameLoL},
	}
	for _, tc := range cases {
		if got := DetectGameType(tc.category); got != tc.want {
			t.Errorf("DetectGameType(%q) = %s, want %s", tc.category, got, tc.want)
		}
	}
}

func TestRegionalRoute(t *testing.T) {
	cases := []struct {
		region string
		want   string
	}{
		{"na1", "americas"},
		{"br1", "americas"},
		{"kr", "asia"},
		{"jp1", "asia"},
		{"euw1", "europe"},
		{"eun1", "europe"},
		{"tr1", "europe"},
		{"oc1", "sea"},
		{"", "americas"},
		{"nonsense", "americas"},
	}
	for _, tc := range cases {
		if got := RegionalRoute(tc.region); got != tc.want {
			t.Errorf("RegionalRoute(%q) = %q, want %q", tc.region, got, tc.want)
		}
	}
}
