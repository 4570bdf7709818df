package odds

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AmericanToDecimal converts American odds to decimal odds. Zero is invalid
// and returns zero.
func AmericanToDecimal(american float64) float64 {
	switch {
	case american > 0:
		return 1 + american/100
	case american < 0:
		return 1 + 100/-american
	}
	return 0
}

// ImpliedProbability is the bookmaker's implied probability of an American
// price, vig included.
func ImpliedProbability(american float64) float64 {
	d := AmericanToDecimal(american)
	if d == 0 {
		return 0
	}
	return 1 / d
}

// NoVig removes the overround from a two-way market multiplicatively and
// returns the fair probability of the first side. ok is false when either
// price is unusable.
func NoVig(price, other float64) (float64, bool) {
	p, q := ImpliedProbability(price), ImpliedProbability(other)
	if p <= 0 || q <= 0 {
		return 0, false
	}
	return p / (p + q), true
}

// Median of vals; the mean of the middle two when even. ok is false for an
// empty input.
func Median(vals []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	s := append([]float64(nil), vals...)
	sort.Float64s(s)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid], true
	}
	return decimal.Avg(decimal.NewFromFloat(s[mid-1]), decimal.NewFromFloat(s[mid])).InexactFloat64(), true
}
