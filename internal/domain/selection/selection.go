// Package selection ranks candidate picks and chooses a fixed number per
// pick type while spreading them across as many games as possible.
package selection

import (
	"sort"

	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/types"
)

// DefaultPerType is the number of picks chosen per type.
const DefaultPerType = 3

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithPerType sets how many picks are chosen for each type.
func WithPerType(n int) Option {
	return func(s *Selector) {
		if n > 0 {
			s.perType = n
		}
	}
}

// WithOrder overrides the order in which types claim games.
func WithOrder(order ...types.PickType) Option {
	return func(s *Selector) {
		if len(order) > 0 {
			s.order = order
		}
	}
}

// Selector is stateless between calls.
type Selector struct {
	perType int
	order   []types.PickType
}

// NewSelector creates a selector with configuration options.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{perType: DefaultPerType, order: types.PickTypes}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PerType returns the configured count.
func (s *Selector) PerType() int { return s.perType }

// Select returns up to perType picks for each type, types in claim order
// and picks within a type by descending confidence. Games chosen for an
// earlier type are avoided by later ones while alternatives exist.
func (s *Selector) Select(pool []model.CandidatePick) []model.CandidatePick {
	byType := make(map[types.PickType][]model.CandidatePick, len(s.order))
	for _, p := range pool {
		byType[p.Type] = append(byType[p.Type], p)
	}
	used := make(map[string]struct{})
	out := make([]model.CandidatePick, 0, s.perType*len(s.order))
	for _, t := range s.order {
		chosen := s.selectType(byType[t], used)
		for _, p := range chosen {
			used[p.GameID] = struct{}{}
		}
		out = append(out, chosen...)
	}
	return out
}

func (s *Selector) selectType(items []model.CandidatePick, used map[string]struct{}) []model.CandidatePick {
	if len(items) == 0 {
		return nil
	}
	sorted := SortByConfidence(items)
	chosen := make([]model.CandidatePick, 0, s.perType)
	local := make(map[string]struct{})
	taken := make([]bool, len(sorted))

	take := func(i int) {
		chosen = append(chosen, sorted[i])
		local[sorted[i].GameID] = struct{}{}
		taken[i] = true
	}

	for i, p := range sorted {
		if len(chosen) == s.perType {
			return chosen
		}
		_, g := used[p.GameID]
		_, l := local[p.GameID]
		if !g && !l {
			take(i)
		}
	}
	for i, p := range sorted {
		if len(chosen) == s.perType {
			return chosen
		}
		if _, l := local[p.GameID]; !l && !taken[i] {
			take(i)
		}
	}
	for len(chosen) < s.perType {
		for i := range sorted {
			if len(chosen) == s.perType {
				break
			}
			take(i)
		}
	}
	return chosen
}

// SortByConfidence returns a copy sorted by descending confidence, larger
// edge first on ties, otherwise keeping input order.
func SortByConfidence(items []model.CandidatePick) []model.CandidatePick {
	out := append([]model.CandidatePick(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].EdgePercent > out[j].EdgePercent
	})
	return out
}

// BestPerGameType keeps the highest-confidence pick for each game and type,
// preserving first-seen order.
func BestPerGameType(pool []model.CandidatePick) []model.CandidatePick {
	type key struct {
		game string
		t    types.PickType
	}
	idx := make(map[key]int, len(pool))
	out := make([]model.CandidatePick, 0, len(pool))
	for _, p := range pool {
		k := key{p.GameID, p.Type}
		if i, ok := idx[k]; ok {
			if p.Confidence > out[i].Confidence {
				out[i] = p
			}
			continue
		}
		idx[k] = len(out)
		out = append(out, p)
	}
	return out
}
