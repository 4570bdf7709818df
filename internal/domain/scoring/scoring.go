// Package scoring turns recent-form aggregates and market lines into
// candidate picks with a heuristic confidence.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/odds"
	"github.com/okian/nbapicks/internal/domain/types"
)

// Default scoring configuration constants.
const (
	DefaultRecentGames = 10

	defaultMarginSigma = 11.5
	defaultTotalSigma  = 10.5

	mlThreshold     = 2.0
	spreadThreshold = 1.0
	totalThreshold  = 3.0

	minConfidence = 50
	maxConfidence = 92
	edgeWeight    = 6.5

	// ProviderModel tags picks backed only by the form model.
	ProviderModel = "MODEL"
	unknownMarket = 0.5
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithSigmas sets the standard deviations used to turn point edges into
// probabilities.
func WithSigmas(margin, total float64) Option {
	return func(s *Scorer) {
		if margin > 0 {
			s.marginSigma = margin
		}
		if total > 0 {
			s.totalSigma = total
		}
	}
}

// Input is everything needed to score one game.
type Input struct {
	Game     model.Game
	HomeForm model.TeamRecentForm
	AwayForm model.TeamRecentForm
	Odds     *model.MarketOdds
}

// Scorer produces ML, SPREAD and TOTAL candidates independently. It holds
// no mutable state.
type Scorer struct {
	marginSigma float64
	totalSigma  float64
}

// NewScorer creates a scorer with configuration options.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{marginSigma: defaultMarginSigma, totalSigma: defaultTotalSigma}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FormFromResults aggregates the most recent limit results for a team.
// Results may arrive in any order.
func FormFromResults(teamID string, results []model.GameResult, limit int) model.TeamRecentForm {
	if limit <= 0 {
		limit = DefaultRecentGames
	}
	rs := append([]model.GameResult(nil), results...)
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].PlayedAt.After(rs[j].PlayedAt) })
	if len(rs) > limit {
		rs = rs[:limit]
	}
	f := model.TeamRecentForm{TeamID: teamID}
	for _, r := range rs {
		f.GamesPlayed++
		f.PointsFor += r.PointsFor
		f.PointsAgainst += r.PointsAgainst
		switch {
		case r.PointsFor > r.PointsAgainst:
			f.Wins++
		case r.PointsFor < r.PointsAgainst:
			f.Losses++
		}
	}
	return f
}

// Project computes expected points from the two teams' averages. ok is
// false when either team has no completed games.
func Project(home, away model.TeamRecentForm) (model.Projection, bool) {
	if home.GamesPlayed == 0 || away.GamesPlayed == 0 {
		return model.Projection{}, false
	}
	eh := (home.AvgFor() + away.AvgAgainst()) / 2
	ea := (away.AvgFor() + home.AvgAgainst()) / 2
	return model.Projection{
		ExpectedHome:   eh,
		ExpectedAway:   ea,
		ExpectedMargin: eh - ea,
		ExpectedTotal:  eh + ea,
		SampleSize:     min(home.GamesPlayed, away.GamesPlayed),
	}, true
}

// Confidence maps a point edge to [50, 92], capped by sample size.
func Confidence(edge float64, games int) int {
	c := math.Max(minConfidence, math.Min(maxConfidence, minConfidence+math.Abs(edge)*edgeWeight))
	switch {
	case games < 6:
		c = math.Min(c, 64)
	case games < 8:
		c = math.Min(c, 72)
	case games < 10:
		c = math.Min(c, 78)
	}
	return int(math.Round(c))
}

// Score returns the projection and zero to three picks for the game.
func (s *Scorer) Score(in Input) (*model.Projection, []model.CandidatePick) {
	p, ok := Project(in.HomeForm, in.AwayForm)
	if !ok {
		return nil, nil
	}
	var picks []model.CandidatePick
	if pk, ok := s.moneyline(in, p); ok {
		picks = append(picks, pk)
	}
	if pk, ok := s.spread(in, p); ok {
		picks = append(picks, pk)
	}
	if pk, ok := s.total(in, p); ok {
		picks = append(picks, pk)
	}
	return &p, picks
}

func (s *Scorer) base(in Input, t types.PickType) model.CandidatePick {
	return model.CandidatePick{
		GameID:       in.Game.GameID,
		Type:         t,
		Home:         in.Game.Home.DisplayName,
		Away:         in.Game.Away.DisplayName,
		StartTimeUTC: in.Game.StartTimeUTC,
	}
}

func (s *Scorer) moneyline(in Input, p model.Projection) (model.CandidatePick, bool) {
	m := p.ExpectedMargin
	if math.Abs(m) < mlThreshold {
		return model.CandidatePick{}, false
	}
	pk := s.base(in, types.PickML)
	pk.Side = types.SideHome
	if m < 0 {
		pk.Side = types.SideAway
	}
	pk.Provider = ProviderModel
	market := unknownMarket
	if in.Odds != nil && in.Odds.Moneyline != nil {
		ml := in.Odds.Moneyline
		price, other := ml.HomePrice, ml.AwayPrice
		if pk.Side == types.SideAway {
			price, other = other, price
		}
		if fair, ok := odds.NoVig(price, other); ok {
			market = fair
			pk.Price = &price
			pk.Provider = ml.Provider
		}
	}
	s.finish(&pk, m, s.marginSigma, market, p.SampleSize)
	pk.Reason = fmt.Sprintf("expected home margin %s", round1(m))
	return pk, true
}

func (s *Scorer) spread(in Input, p model.Projection) (model.CandidatePick, bool) {
	if in.Odds == nil || in.Odds.Spread == nil {
		return model.CandidatePick{}, false
	}
	sp := in.Odds.Spread
	abs := math.Abs(sp.HomePoint)
	homeEdge := p.ExpectedMargin - abs
	awayEdge := -p.ExpectedMargin - abs

	pk := s.base(in, types.PickSpread)
	var edge float64
	var line float64
	var price, other *float64
	switch {
	case homeEdge > spreadThreshold:
		pk.Side, edge, line, price, other = types.SideHome, homeEdge, sp.HomePoint, sp.HomePrice, sp.AwayPrice
	case awayEdge > spreadThreshold:
		pk.Side, edge, line, price, other = types.SideAway, awayEdge, sp.AwayPoint, sp.AwayPrice, sp.HomePrice
	default:
		return model.CandidatePick{}, false
	}
	pk.Line = &line
	pk.Price = price
	pk.Provider = sp.Provider
	pk.LineSource = sp.Source
	s.finish(&pk, edge, s.marginSigma, marketProbability(price, other), p.SampleSize)
	pk.Reason = fmt.Sprintf("expected margin %s vs line %s", round1(p.ExpectedMargin), round1(sp.HomePoint))
	return pk, true
}

func (s *Scorer) total(in Input, p model.Projection) (model.CandidatePick, bool) {
	if in.Odds == nil || in.Odds.Total == nil {
		return model.CandidatePick{}, false
	}
	tl := in.Odds.Total
	diff := p.ExpectedTotal - tl.Point

	pk := s.base(in, types.PickTotal)
	var price, other *float64
	switch {
	case diff > totalThreshold:
		pk.Side, price, other = types.SideOver, tl.OverPrice, tl.UnderPrice
	case diff < -totalThreshold:
		pk.Side, price, other = types.SideUnder, tl.UnderPrice, tl.OverPrice
	default:
		return model.CandidatePick{}, false
	}
	line := tl.Point
	pk.Line = &line
	pk.Price = price
	pk.Provider = tl.Provider
	pk.LineSource = tl.Source
	s.finish(&pk, diff, s.totalSigma, marketProbability(price, other), p.SampleSize)
	pk.Reason = fmt.Sprintf("expected total %s vs line %s", round1(p.ExpectedTotal), round1(tl.Point))
	return pk, true
}

func (s *Scorer) finish(pk *model.CandidatePick, edge, sigma, market float64, games int) {
	prob := round4(normalCDF(math.Abs(edge) / sigma))
	market = round4(market)
	pk.ModelProbability = prob
	pk.MarketProbability = market
	pk.EdgePercent = round4((prob - market) * 100)
	pk.Confidence = Confidence(edge, games)
}

func marketProbability(price, other *float64) float64 {
	if price == nil || other == nil {
		return unknownMarket
	}
	if fair, ok := odds.NoVig(*price, *other); ok {
		return fair
	}
	return unknownMarket
}

func normalCDF(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

func round1(v float64) string {
	return decimal.NewFromFloat(v).Round(1).StringFixed(1)
}

func round4(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
