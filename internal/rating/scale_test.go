package rating

import "testing"

func TestToScaleMonotonicAcrossLadder(t *testing.T) {
	// Every adjacent (tier, division) pair in ladder order must be strictly
	// increasing for all point values within a division.
	ladder := []struct {
		tier     string
		division string
	}{
		{"IRON", "IV"}, {"IRON", "III"}, {"IRON", "II"}, {"IRON", "I"},
		{"BRONZE", "IV"}, {"BRONZE", "III"}, {"BRONZE", "II"}, {"BRONZE", "I"},
		{"SILVER", "IV"}, {"SILVER", "III"}, {"SILVER", "II"}, {"SILVER", "I"},
		{"GOLD", "IV"}, {"GOLD", "III"}, {"GOLD", "II"}, {"GOLD", "I"},
		{"PLATINUM", "IV"}, {"PLATINUM", "III"}, {"PLATINUM", "II"}, {"PLATINUM", "I"},
		{"EMERALD", "IV"}, {"EMERALD", "III"}, {"EMERALD", "II"}, {"EMERALD", "I"},
		{"DIAMOND", "IV"}, {"DIAMOND", "III"}, {"DIAMOND", "II"}, {"DIAMOND", "I"},
	}

	for i := 1; i < len(ladder); i++ {
		prev, next := ladder[i-1], ladder[i]
		// The next rung's floor must clear the previous rung's ceiling, so
		// any points in [0, 100) on the next rung beat any on the previous.
		ceiling := ToScale(prev.tier, prev.division, 99)
		floor := ToScale(next.tier, next.division, 0)
		if floor <= ceiling {
			t.Fatalf("ladder not increasing: %s %s ceiling %d >= %s %s floor %d",
				prev.tier, prev.division, ceiling, next.tier, next.division, floor)
		}
	}
}

func TestToScale(t *testing.T) {
	testcases := []struct {
		name     string
		tier     string
		division string
		points   int
		expected int
	}{
		{"iron floor", "IRON", "IV", 0, 0},
		{"gold two", "GOLD", "II", 50, 1450},
		{"gold two high", "GOLD", "II", 88, 1488},
		{"diamond one", "DIAMOND", "I", 99, 2799},
		{"master has no division", "MASTER", "", 240, 3040},
		{"grandmaster shares master base", "GRANDMASTER", "", 0, 2800},
		{"challenger shares master base", "CHALLENGER", "", 0, 2800},
		{"unknown tier maps to zero", "WOOD", "IV", 10, 10},
		{"unknown division maps to zero", "GOLD", "V", 10, 1210},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToScale(tc.tier, tc.division, tc.points); got != tc.expected {
				t.Fatalf("ToScale(%s, %s, %d) = %d, want %d",
					tc.tier, tc.division, tc.points, got, tc.expected)
			}
		})
	}
}

func TestDeltaAntisymmetry(t *testing.T) {
	values := []int{-500, -38, 0, 1, 99, 1450, 1488, 2800}
	for _, a := range values {
		for _, b := range values {
			if Delta(a, b) != -Delta(b, a) {
				t.Fatalf("Delta(%d, %d) != -Delta(%d, %d)", a, b, b, a)
			}
		}
	}

	if got := Delta(1488, 1450); got != 38 {
		t.Fatalf("Delta(1488, 1450) = %d, want 38", got)
	}
	if got := Delta(1450, 1488); got != -38 {
		t.Fatalf("Delta(1450, 1488) = %d, want -38", got)
	}
}
