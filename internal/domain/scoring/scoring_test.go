package scoring_test

import (
	"testing"
	"time"

	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/scoring"
	"github.com/okian/nbapicks/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func fp(v float64) *float64 { return &v }

func form(games, wins, pf, pa int) model.TeamRecentForm {
	return model.TeamRecentForm{GamesPlayed: games, Wins: wins, Losses: games - wins, PointsFor: pf, PointsAgainst: pa}
}

func TestFormFromResults(t *testing.T) {
	Convey("Given twelve results out of order", t, func() {
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		var rs []model.GameResult
		for i := 0; i < 12; i++ {
			r := model.GameResult{PointsFor: 100, PointsAgainst: 110, PlayedAt: base.AddDate(0, 0, i)}
			if i >= 2 {
				r.PointsFor = 120
			}
			rs = append(rs, r)
		}
		rs[0], rs[11] = rs[11], rs[0]

		Convey("When aggregating the last ten", func() {
			f := scoring.FormFromResults("BOS", rs, 10)

			Convey("Then only the most recent ten count", func() {
				So(f.TeamID, ShouldEqual, "BOS")
				So(f.GamesPlayed, ShouldEqual, 10)
				So(f.Wins, ShouldEqual, 10)
				So(f.Losses, ShouldEqual, 0)
				So(f.PointsFor, ShouldEqual, 1200)
			})
		})
	})
}

func TestConfidence(t *testing.T) {
	Convey("Given edges and sample sizes", t, func() {
		So(scoring.Confidence(0, 10), ShouldEqual, 50)
		So(scoring.Confidence(2, 10), ShouldEqual, 63)
		So(scoring.Confidence(-2, 10), ShouldEqual, 63)
		So(scoring.Confidence(100, 10), ShouldEqual, 92)
		So(scoring.Confidence(100, 9), ShouldEqual, 78)
		So(scoring.Confidence(100, 7), ShouldEqual, 72)
		So(scoring.Confidence(100, 5), ShouldEqual, 64)

		Convey("Then confidence never decreases with edge or sample size", func() {
			for games := 0; games <= 10; games++ {
				prev := 0
				for e := 0.0; e <= 10; e += 0.25 {
					c := scoring.Confidence(e, games)
					So(c, ShouldBeGreaterThanOrEqualTo, prev)
					So(c, ShouldBeBetweenOrEqual, 50, 92)
					prev = c
				}
			}
			for e := 0.0; e <= 10; e += 0.5 {
				prev := 0
				for games := 0; games <= 10; games++ {
					c := scoring.Confidence(e, games)
					So(c, ShouldBeGreaterThanOrEqualTo, prev)
					prev = c
				}
			}
		})
	})
}

func TestScore(t *testing.T) {
	s := scoring.NewScorer()
	g := model.Game{GameID: "g1", Home: model.Team{DisplayName: "Boston Celtics"}, Away: model.Team{DisplayName: "Miami Heat"}}

	Convey("Given a hot four-game team against a level ten-game team", t, func() {
		in := scoring.Input{
			Game:     g,
			HomeForm: form(4, 3, 460, 430),
			AwayForm: form(10, 5, 1100, 1100),
		}
		proj, picks := s.Score(in)

		Convey("Then the model favours the home side", func() {
			So(proj, ShouldNotBeNil)
			So(proj.ExpectedHome, ShouldEqual, 112.5)
			So(proj.ExpectedAway, ShouldEqual, 108.75)
			So(proj.ExpectedMargin, ShouldEqual, 3.75)
			So(proj.SampleSize, ShouldEqual, 4)
		})

		Convey("Then one ML pick is produced, capped by the small sample", func() {
			So(picks, ShouldHaveLength, 1)
			So(picks[0].Type, ShouldEqual, types.PickML)
			So(picks[0].Side, ShouldEqual, types.SideHome)
			So(picks[0].Confidence, ShouldEqual, 64)
			So(picks[0].Provider, ShouldEqual, scoring.ProviderModel)
			So(picks[0].MarketProbability, ShouldEqual, 0.5)
			So(picks[0].ModelProbability, ShouldBeGreaterThan, 0.5)
			So(picks[0].EdgePercent, ShouldAlmostEqual, (picks[0].ModelProbability-0.5)*100, 1e-6)
		})
	})

	Convey("Given full samples and market lines", t, func() {
		in := scoring.Input{
			Game:     g,
			HomeForm: form(10, 7, 1180, 1100),
			AwayForm: form(10, 4, 1080, 1120),
			Odds: &model.MarketOdds{
				Spread:    &model.SpreadLine{HomePoint: -3.5, AwayPoint: 3.5, HomePrice: fp(-110), AwayPrice: fp(-110), Provider: "FanDuel", Source: types.SourceReal},
				Total:     &model.TotalLine{Point: 236, OverPrice: fp(-110), UnderPrice: fp(-110), Provider: "ESTIMATED", Source: types.SourceEstimated},
				Moneyline: &model.Moneyline{HomePrice: -200, AwayPrice: 170, Provider: "FanDuel"},
			},
		}
		// home 115, away 109: margin 6, total 224
		proj, picks := s.Score(in)
		So(proj.ExpectedMargin, ShouldEqual, 6)
		So(proj.ExpectedTotal, ShouldEqual, 224)
		So(picks, ShouldHaveLength, 3)

		Convey("Then the ML pick uses the vig-free market price", func() {
			ml := picks[0]
			So(ml.Side, ShouldEqual, types.SideHome)
			So(ml.Provider, ShouldEqual, "FanDuel")
			So(*ml.Price, ShouldEqual, -200)
			So(ml.MarketProbability, ShouldBeBetween, 0.6, 0.7)
			So(ml.Confidence, ShouldEqual, 89)
		})

		Convey("Then the spread pick takes the home side", func() {
			sp := picks[1]
			So(sp.Type, ShouldEqual, types.PickSpread)
			So(sp.Side, ShouldEqual, types.SideHome)
			So(*sp.Line, ShouldEqual, -3.5)
			So(sp.Confidence, ShouldEqual, 66)
			So(sp.MarketProbability, ShouldEqual, 0.5)
			So(sp.Reason, ShouldEqual, "expected margin 6.0 vs line -3.5")
		})

		Convey("Then the total pick goes under on an estimated line", func() {
			tp := picks[2]
			So(tp.Side, ShouldEqual, types.SideUnder)
			So(tp.LineSource, ShouldEqual, types.SourceEstimated)
			So(tp.Confidence, ShouldEqual, 92)
		})
	})

	Convey("Given a close game and tight lines", t, func() {
		in := scoring.Input{
			Game:     g,
			HomeForm: form(10, 5, 1100, 1100),
			AwayForm: form(10, 5, 1100, 1090),
			Odds: &model.MarketOdds{
				Spread: &model.SpreadLine{HomePoint: -1, AwayPoint: 1},
				Total:  &model.TotalLine{Point: 219},
			},
		}
		_, picks := s.Score(in)

		Convey("Then no pick clears any threshold", func() {
			So(picks, ShouldBeEmpty)
		})
	})

	Convey("Given a team with no completed games", t, func() {
		proj, picks := s.Score(scoring.Input{Game: g, HomeForm: form(0, 0, 0, 0), AwayForm: form(10, 5, 1100, 1100)})
		So(proj, ShouldBeNil)
		So(picks, ShouldBeEmpty)
	})
}
