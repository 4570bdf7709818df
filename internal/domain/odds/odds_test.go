package odds_test

import (
	"context"
	"testing"

	"github.com/okian/nbapicks/internal/domain/extract"
	"github.com/okian/nbapicks/internal/domain/lines"
	"github.com/okian/nbapicks/internal/domain/odds"
	"github.com/okian/nbapicks/internal/domain/team"
	"github.com/okian/nbapicks/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func pt(v float64) *float64 { return &v }

func spreads(home, away string, hp, price float64) odds.Market {
	return odds.Market{Key: odds.MarketSpreads, Outcomes: []odds.Outcome{
		{Name: home, Point: pt(hp), Price: price},
		{Name: away, Point: pt(-hp), Price: price},
	}}
}

func totals(p, over, under float64) odds.Market {
	return odds.Market{Key: odds.MarketTotals, Outcomes: []odds.Outcome{
		{Name: "Over", Point: pt(p), Price: over},
		{Name: "Under", Point: pt(p), Price: under},
	}}
}

func h2h(home, away string, hp, ap float64) odds.Market {
	return odds.Market{Key: odds.MarketH2H, Outcomes: []odds.Outcome{
		{Name: home, Price: hp},
		{Name: away, Price: ap},
	}}
}

const (
	home = "Boston Celtics"
	away = "Miami Heat"
)

func newEstimator() *lines.Estimator {
	return lines.NewEstimator(lines.NewMemoryStore(0), lines.Defaults{SpreadAbs: 2.5, Total: 224, Price: -110})
}

func TestPrices(t *testing.T) {
	Convey("Given American prices", t, func() {
		So(odds.AmericanToDecimal(150), ShouldEqual, 2.5)
		So(odds.AmericanToDecimal(-200), ShouldEqual, 1.5)
		So(odds.AmericanToDecimal(0), ShouldEqual, 0)
		So(odds.ImpliedProbability(100), ShouldEqual, 0.5)

		Convey("Then a symmetric market is fair at one half", func() {
			p, ok := odds.NoVig(-110, -110)
			So(ok, ShouldBeTrue)
			So(p, ShouldAlmostEqual, 0.5, 1e-9)
		})

		Convey("Then the favourite keeps the larger share", func() {
			p, ok := odds.NoVig(-200, 170)
			So(ok, ShouldBeTrue)
			So(p, ShouldBeGreaterThan, 0.6)
			So(p, ShouldBeLessThan, 0.7)
		})

		Convey("Then a zero price is unusable", func() {
			_, ok := odds.NoVig(0, -110)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given medians", t, func() {
		v, ok := odds.Median([]float64{3, 1, 2})
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 2)
		v, _ = odds.Median([]float64{-3.5, -4.5})
		So(v, ShouldEqual, -4)
		_, ok = odds.Median(nil)
		So(ok, ShouldBeFalse)
	})
}

func TestBestMode(t *testing.T) {
	Convey("Given an event quoted by several bookmakers", t, func() {
		ev := odds.Event{
			ID: "e1", HomeTeam: home, AwayTeam: away, CommenceTime: "2025-01-15T00:30:00Z",
			Bookmakers: []odds.Bookmaker{
				{Key: "bovada", Title: "Bovada", Markets: []odds.Market{h2h(home, away, -150, 130), spreads(home, away, -3.5, -110), totals(221.5, -110, -110)}},
				{Key: "fanduel", Title: "FanDuel", Markets: []odds.Market{spreads(home, away, -4, -108)}},
			},
		}

		Convey("When a priority bookmaker is present", func() {
			n := odds.NewNormalizer(types.ModeBest, []string{"draftkings", "fanduel"}, nil)
			mo := n.Normalize(ev)

			Convey("Then its markets win and gaps are filled from others", func() {
				So(mo.Bookmaker, ShouldEqual, "FanDuel")
				So(mo.Spread.HomePoint, ShouldEqual, -4)
				So(mo.Spread.Provider, ShouldEqual, "FanDuel")
				So(mo.Total.Point, ShouldEqual, 221.5)
				So(mo.Total.Provider, ShouldEqual, "Bovada")
				So(mo.Moneyline.HomePrice, ShouldEqual, -150)
				So(mo.Spread.Source, ShouldEqual, types.SourceReal)
				So(mo.CommenceTime, ShouldNotBeNil)
				So(mo.Home.Abbreviation, ShouldEqual, "BOS")
				So(mo.Away.Abbreviation, ShouldEqual, "MIA")
			})
		})

		Convey("When no priority bookmaker is present", func() {
			n := odds.NewNormalizer(types.ModeBest, []string{"caesars"}, nil)
			b, ok := n.PickBest(ev)

			Convey("Then the bookmaker with the most markets is chosen", func() {
				So(ok, ShouldBeTrue)
				So(b.Key, ShouldEqual, "bovada")
			})
		})
	})

	Convey("Given a spread quoted for the away side only", t, func() {
		ev := odds.Event{HomeTeam: home, AwayTeam: away, Bookmakers: []odds.Bookmaker{{
			Key: "dk", Markets: []odds.Market{{Key: odds.MarketSpreads, Outcomes: []odds.Outcome{{Name: away, Point: pt(5.5), Price: -105}}}},
		}}}
		mo := odds.NewNormalizer(types.ModeBest, nil, nil).Normalize(ev)

		Convey("Then the home point is derived by negation", func() {
			So(mo.Spread.HomePoint, ShouldEqual, -5.5)
			So(mo.Spread.AwayPoint, ShouldEqual, 5.5)
			So(mo.Spread.HomePrice, ShouldBeNil)
			So(*mo.Spread.AwayPrice, ShouldEqual, -105)
		})
	})
}

func TestConsensusMode(t *testing.T) {
	Convey("Given three bookmakers with differing lines", t, func() {
		ev := odds.Event{HomeTeam: home, AwayTeam: away, Bookmakers: []odds.Bookmaker{
			{Key: "a", Markets: []odds.Market{spreads(home, away, -3, -110), totals(220, -110, -110), h2h(home, away, -140, 120)}},
			{Key: "b", Markets: []odds.Market{spreads(home, away, -4, -105), totals(222, -115, -105)}},
			{Key: "c", Markets: []odds.Market{spreads(home, away, -5, -120), h2h(home, away, -160, 140)}},
		}}
		mo := odds.NewNormalizer(types.ModeConsensus, nil, nil).Normalize(ev)

		Convey("Then every field is the median of real quotes", func() {
			So(mo.Bookmaker, ShouldEqual, odds.ConsensusTitle)
			So(mo.Spread.HomePoint, ShouldEqual, -4)
			So(mo.Spread.AwayPoint, ShouldEqual, 4)
			So(*mo.Spread.HomePrice, ShouldEqual, -110)
			So(mo.Total.Point, ShouldEqual, 221)
			So(*mo.Total.OverPrice, ShouldEqual, -112.5)
			So(mo.Moneyline.HomePrice, ShouldEqual, -150)
			So(mo.Moneyline.AwayPrice, ShouldEqual, 130)
			So(mo.Home.DisplayName, ShouldEqual, home)
			So(mo.Away.Abbreviation, ShouldEqual, "MIA")
		})
	})
}

func TestEventTeamIdentity(t *testing.T) {
	Convey("Given an event naming a team by a short market name", t, func() {
		ev := odds.Event{HomeTeam: "LA Clippers", AwayTeam: "Team World"}

		Convey("When it is normalized in either mode", func() {
			for _, mode := range []types.OddsMode{types.ModeBest, types.ModeConsensus} {
				mo := odds.NewNormalizer(mode, nil, nil).Normalize(ev)

				Convey("Then the "+string(mode)+" result resolves like a schedule record", func() {
					fromSchedule := team.Resolve(extract.Record{"teamTricode": "LAC", "teamCity": "LA", "teamName": "Clippers"})
					So(mo.Home.Abbreviation, ShouldEqual, "LAC")
					So(team.Key(mo.Home), ShouldEqual, team.Key(fromSchedule))
					So(mo.Away.Abbreviation, ShouldBeEmpty)
					So(mo.Away.DisplayName, ShouldEqual, "Team World")
				})
			}
		})
	})
}

func TestEnrichment(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fetch where one event lacks spreads and totals", t, func() {
		est := newEstimator()
		n := odds.NewNormalizer(types.ModeBest, nil, est)
		events := []odds.Event{
			{ID: "1", HomeTeam: home, AwayTeam: "Denver Nuggets", Bookmakers: []odds.Bookmaker{
				{Key: "dk", Title: "DraftKings", Markets: []odds.Market{spreads(home, "Denver Nuggets", -6.5, -110), totals(230, -110, -110)}},
			}},
			{ID: "2", HomeTeam: away, AwayTeam: home, Bookmakers: []odds.Bookmaker{
				{Key: "dk", Title: "DraftKings", Markets: []odds.Market{h2h(away, home, 150, -170)}},
			}},
		}
		out := n.NormalizeAll(ctx, events)

		Convey("Then the real event is untouched", func() {
			So(out[0].Spread.Source, ShouldEqual, types.SourceReal)
			So(out[0].Spread.HomePoint, ShouldEqual, -6.5)
		})

		Convey("Then the thin event gets estimated lines from history", func() {
			So(out[1].Spread.Source, ShouldEqual, types.SourceEstimated)
			So(out[1].Spread.Provider, ShouldEqual, odds.EstimatedTitle)
			So(out[1].Spread.HomePoint, ShouldEqual, -6.5)
			So(out[1].Spread.AwayPoint, ShouldEqual, 6.5)
			So(*out[1].Spread.HomePrice, ShouldEqual, -110)
			So(out[1].Spread.Detail, ShouldEqual, lines.BasisAway)
			So(out[1].Total.Point, ShouldEqual, 230)
			So(out[1].Total.Source, ShouldEqual, types.SourceEstimated)
			So(out[1].Moneyline.HomePrice, ShouldEqual, 150)
			So(out[1].Bookmaker, ShouldEqual, "DraftKings")
		})

		Convey("Then the input events are not mutated", func() {
			So(len(events[1].Bookmakers), ShouldEqual, 1)
		})
	})

	Convey("Given an event that only lacks totals", t, func() {
		n := odds.NewNormalizer(types.ModeConsensus, nil, newEstimator())
		out := n.NormalizeAll(ctx, []odds.Event{{HomeTeam: home, AwayTeam: away, Bookmakers: []odds.Bookmaker{
			{Key: "dk", Markets: []odds.Market{spreads(home, away, -2, -110)}},
		}}})

		Convey("Then only the total is estimated", func() {
			So(out[0].Spread.Source, ShouldEqual, types.SourceReal)
			So(out[0].Total.Source, ShouldEqual, types.SourceEstimated)
			So(out[0].Total.Point, ShouldEqual, 224)
		})
	})

	Convey("Given a game with no odds event", t, func() {
		n := odds.NewNormalizer(types.ModeBest, nil, newEstimator())
		mo := n.Estimated(ctx, home, away, nil)

		Convey("Then default estimated lines are produced without a moneyline", func() {
			So(mo.Spread.HomePoint, ShouldEqual, -2.5)
			So(mo.Total.Point, ShouldEqual, 224)
			So(mo.Moneyline, ShouldBeNil)
			So(mo.Bookmaker, ShouldEqual, odds.EstimatedTitle)
		})
	})
}
