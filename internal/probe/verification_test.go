package probe_test

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/types"
	"github.com/okian/nbapicks/internal/probe"
)

func pick(game string, t types.PickType, confidence int) model.CandidatePick {
	return model.CandidatePick{GameID: game, Type: t, Confidence: confidence}
}

func rules(vs []probe.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Rule)
	}
	return out
}

func TestVerify(t *testing.T) {
	convey.Convey("Given a well formed day", t, func() {
		rec := &model.Recommendations{
			TotalGames:     3,
			CandidateCount: 6,
			Picks: []model.CandidatePick{
				pick("g1", types.PickML, 80),
				pick("g2", types.PickML, 70),
				pick("g3", types.PickSpread, 75),
				pick("g1", types.PickSpread, 60),
				pick("g2", types.PickTotal, 55),
			},
		}

		convey.Convey("Then nothing is reported", func() {
			convey.So(probe.Verify(rec, 3), convey.ShouldBeEmpty)
		})

		convey.Convey("When a type exceeds the limit", func() {
			vs := probe.Verify(rec, 1)
			convey.So(rules(vs), convey.ShouldContain, probe.RulePerType)
			convey.So(probe.Hard(vs), convey.ShouldEqual, 2)
		})

		convey.Convey("When a confidence is out of bounds", func() {
			rec.Picks[1].Confidence = 95
			vs := probe.Verify(rec, 3)
			convey.So(rules(vs), convey.ShouldContain, probe.RuleConfidence)
			convey.So(rules(vs), convey.ShouldContain, probe.RuleOrdering)
		})

		convey.Convey("When types are interleaved", func() {
			rec.Picks = append(rec.Picks, pick("g3", types.PickML, 51))
			convey.So(rules(probe.Verify(rec, 3)), convey.ShouldContain, probe.RuleGrouping)
		})

		convey.Convey("When an unknown type appears", func() {
			rec.Picks = append(rec.Picks, pick("g3", types.PickType("PROP"), 60))
			convey.So(rules(probe.Verify(rec, 3)), convey.ShouldContain, probe.RuleUnknownType)
		})

		convey.Convey("When picks exist without candidates", func() {
			rec.CandidateCount = 0
			convey.So(rules(probe.Verify(rec, 3)), convey.ShouldContain, probe.RuleCandidates)
		})
	})

	convey.Convey("Given a type that repeats a game", t, func() {
		rec := &model.Recommendations{
			CandidateCount: 2,
			Picks: []model.CandidatePick{
				pick("g1", types.PickML, 80),
				pick("g1", types.PickML, 80),
			},
		}

		convey.Convey("When the slate has a single game", func() {
			rec.TotalGames = 1
			convey.So(probe.Verify(rec, 3), convey.ShouldBeEmpty)
		})

		convey.Convey("When the slate had other games", func() {
			rec.TotalGames = 4
			vs := probe.Verify(rec, 3)
			convey.So(rules(vs), convey.ShouldResemble, []string{probe.RuleDiversity})
			convey.So(vs[0].Soft, convey.ShouldBeTrue)
			convey.So(probe.Hard(vs), convey.ShouldEqual, 0)
		})
	})
}
