package probe

import (
	"fmt"

	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/types"
)

// Violation describes one broken output rule.
// Soft violations are expected on thin slates and only logged.
type Violation struct {
	Rule   string
	Detail string
	Soft   bool
}

func (v Violation) String() string { return v.Rule + ": " + v.Detail }

// Rule names reported by Verify.
const (
	RuleUnknownType = "unknown_type"
	RulePerType     = "per_type"
	RuleConfidence  = "confidence"
	RuleGrouping    = "grouping"
	RuleOrdering    = "ordering"
	RuleDiversity   = "diversity"
	RuleCandidates  = "candidates"
)

// Verify checks a day's recommendations against the output rules: at most
// perType picks per type, confidence within bounds, types grouped in claim
// order with descending confidence. A game repeated within a type while the
// slate had enough games to avoid it is reported as a soft violation, since
// some games may lack a market.
func Verify(rec *model.Recommendations, perType int) []Violation {
	var out []Violation
	add := func(rule, format string, args ...any) {
		out = append(out, Violation{Rule: rule, Detail: fmt.Sprintf(format, args...)})
	}

	rank := make(map[types.PickType]int, len(types.PickTypes))
	for i, t := range types.PickTypes {
		rank[t] = i
	}

	counts := make(map[types.PickType]int)
	games := make(map[types.PickType]map[string]int)
	lastRank := -1
	for i, p := range rec.Picks {
		r, ok := rank[p.Type]
		if !ok {
			add(RuleUnknownType, "pick %d has type %q", i, p.Type)
			continue
		}
		if r < lastRank {
			add(RuleGrouping, "pick %d (%s) follows a later type", i, p.Type)
		}
		if r == lastRank && i > 0 && p.Confidence > rec.Picks[i-1].Confidence {
			add(RuleOrdering, "pick %d (%s) confidence %d exceeds previous %d", i, p.Type, p.Confidence, rec.Picks[i-1].Confidence)
		}
		lastRank = r

		if p.Confidence < MinConfidence || p.Confidence > MaxConfidence {
			add(RuleConfidence, "pick %d (%s %s) confidence %d outside [%d,%d]", i, p.Type, p.GameID, p.Confidence, MinConfidence, MaxConfidence)
		}
		counts[p.Type]++
		if games[p.Type] == nil {
			games[p.Type] = make(map[string]int)
		}
		games[p.Type][p.GameID]++
	}

	for _, t := range types.PickTypes {
		if counts[t] > perType {
			add(RulePerType, "%s has %d picks, limit %d", t, counts[t], perType)
		}
		distinct := len(games[t])
		if distinct < counts[t] && rec.TotalGames >= counts[t] {
			add(RuleDiversity, "%s repeats a game: %d picks over %d games with %d games on the slate", t, counts[t], distinct, rec.TotalGames)
			out[len(out)-1].Soft = true
		}
	}

	if len(rec.Picks) > 0 && rec.CandidateCount == 0 {
		add(RuleCandidates, "%d picks from an empty candidate pool", len(rec.Picks))
	}
	return out
}

// Hard counts the violations that fail a run.
func Hard(vs []Violation) int {
	n := 0
	for _, v := range vs {
		if !v.Soft {
			n++
		}
	}
	return n
}
