// Package rating flattens a tiered, divisioned ladder position into one
// monotonically increasing integer so that deltas stay meaningful across
// promotions and demotions.
package rating

// Tier base values, evenly spaced in ladder order. The top three tiers have
// no divisions and share one base.
var tierBase = map[string]int{
	"IRON":        0,
	"BRONZE":      400,
	"SILVER":      800,
	"GOLD":        1200,
	"PLATINUM":    1600,
	"EMERALD":     2000,
	"DIAMOND":     2400,
	"MASTER":      2800,
	"GRANDMASTER": 2800,
	"CHALLENGER":  2800,
}

// Division offsets within a tier, lowest (IV) to highest (I).
var divisionOffset = map[string]int{
	"IV":  0,
	"III": 100,
	"II":  200,
	"I":   300,
}

// ToScale converts a (tier, division, points) triple into a single scale
// value. Unknown tier or division strings contribute 0 rather than failing;
// upstream data is advisory, not validated.
func ToScale(tier, division string, points int) int {
	return tierBase[tier] + divisionOffset[division] + points
}

// Delta is the signed rating change from starting to current.
func Delta(current, starting int) int {
	return current - starting
}
