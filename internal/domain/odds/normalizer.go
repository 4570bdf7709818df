package odds

import (
	"context"
	"math"
	"time"

	"github.com/okian/nbapicks/internal/domain/lines"
	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/team"
	"github.com/okian/nbapicks/internal/domain/types"
)

// Normalizer converts events to canonical market odds. The estimator is
// shared process state; Normalizer itself holds none.
type Normalizer struct {
	mode      types.OddsMode
	priority  []string
	estimator *lines.Estimator
}

// NewNormalizer builds a normalizer. priority lists bookmaker keys to prefer
// in best mode.
func NewNormalizer(mode types.OddsMode, priority []string, estimator *lines.Estimator) *Normalizer {
	return &Normalizer{mode: mode, priority: priority, estimator: estimator}
}

// Mode returns the configured selection mode.
func (n *Normalizer) Mode() types.OddsMode { return n.mode }

// NormalizeAll feeds this snapshot's real lines to the estimator, injects
// estimated bookmakers where markets are missing, and normalizes every event.
func (n *Normalizer) NormalizeAll(ctx context.Context, events []Event) []model.MarketOdds {
	enriched := n.Enrich(ctx, events)
	out := make([]model.MarketOdds, 0, len(enriched))
	for _, ev := range enriched {
		out = append(out, n.Normalize(ev))
	}
	return out
}

// Enrich observes real lines and appends a synthetic bookmaker to events
// lacking spreads or totals. Input events are not modified.
func (n *Normalizer) Enrich(ctx context.Context, events []Event) []Event {
	if n.estimator == nil {
		return events
	}
	samples := make([]lines.Sample, 0, len(events))
	for _, ev := range events {
		samples = append(samples, realSample(ev))
	}
	n.estimator.Observe(ctx, samples)

	out := make([]Event, len(events))
	for i, ev := range events {
		out[i] = n.ensureEstimated(ctx, ev)
	}
	return out
}

// Estimated builds market odds for a pair with no odds event at all.
func (n *Normalizer) Estimated(ctx context.Context, home, away string, commence *time.Time) model.MarketOdds {
	ev := Event{HomeTeam: home, AwayTeam: away}
	if commence != nil {
		ev.CommenceTime = commence.UTC().Format(time.RFC3339)
	}
	return n.Normalize(n.ensureEstimated(ctx, ev))
}

// realSample reads the first real spread magnitude and total across
// bookmakers in feed order.
func realSample(ev Event) lines.Sample {
	s := lines.Sample{Home: ev.HomeTeam, Away: ev.AwayTeam}
	for _, b := range ev.Bookmakers {
		if b.IsEstimated() {
			continue
		}
		if s.SpreadAbs == nil {
			if m, ok := b.Market(MarketSpreads); ok {
				if o, ok := m.Outcome(ev.HomeTeam); ok && o.Point != nil {
					v := math.Abs(*o.Point)
					s.SpreadAbs = &v
				} else if o, ok := m.Outcome(ev.AwayTeam); ok && o.Point != nil {
					v := math.Abs(*o.Point)
					s.SpreadAbs = &v
				}
			}
		}
		if s.Total == nil {
			if p := totalPoint(b); p != nil {
				s.Total = p
			}
		}
	}
	return s
}

func (n *Normalizer) ensureEstimated(ctx context.Context, ev Event) Event {
	if ev.HomeTeam == "" || ev.AwayTeam == "" || n.estimator == nil {
		return ev
	}
	needSpread := !ev.HasMarket(MarketSpreads)
	needTotal := !ev.HasMarket(MarketTotals)
	if !needSpread && !needTotal {
		return ev
	}
	for _, b := range ev.Bookmakers {
		if b.IsEstimated() {
			return ev
		}
	}
	est := n.estimator.EstimateAndRecord(ctx, ev.HomeTeam, ev.AwayTeam, needSpread, needTotal)

	synthetic := Bookmaker{
		Key:        EstimatedKey,
		Title:      EstimatedTitle,
		LastUpdate: time.Now().UTC().Format(time.RFC3339),
	}
	price := est.Price
	if needSpread {
		home, away := -est.SpreadAbs, est.SpreadAbs
		synthetic.Markets = append(synthetic.Markets, Market{
			Key: MarketSpreads,
			Outcomes: []Outcome{
				{Name: ev.HomeTeam, Point: &home, Price: price},
				{Name: ev.AwayTeam, Point: &away, Price: price},
			},
			Meta: &MarketMeta{Provider: EstimatedTitle, SourceDetail: est.SpreadBasis},
		})
	}
	if needTotal {
		total := est.Total
		synthetic.Markets = append(synthetic.Markets, Market{
			Key: MarketTotals,
			Outcomes: []Outcome{
				{Name: "Over", Point: &total, Price: price},
				{Name: "Under", Point: &total, Price: price},
			},
			Meta: &MarketMeta{Provider: EstimatedTitle, SourceDetail: est.TotalBasis},
		})
	}
	bms := make([]Bookmaker, 0, len(ev.Bookmakers)+1)
	bms = append(bms, ev.Bookmakers...)
	ev.Bookmakers = append(bms, synthetic)
	return ev
}

// Normalize converts one event according to the configured mode.
func (n *Normalizer) Normalize(ev Event) model.MarketOdds {
	if n.mode == types.ModeConsensus {
		return consensus(ev)
	}
	return n.best(ev)
}

// PickBest chooses the representative bookmaker among real ones: the first
// priority key present, else the one quoting the most market kinds, ties to
// the earliest. ok is false when no real bookmaker exists.
func (n *Normalizer) PickBest(ev Event) (Bookmaker, bool) {
	for _, key := range n.priority {
		for _, b := range ev.Bookmakers {
			if !b.IsEstimated() && b.Key == key {
				return b, true
			}
		}
	}
	best, bestN, found := Bookmaker{}, -1, false
	for _, b := range ev.Bookmakers {
		if b.IsEstimated() {
			continue
		}
		if k := b.marketKeys(); k > bestN {
			best, bestN, found = b, k, true
		}
	}
	return best, found
}

// ordered lists the best bookmaker first, then other real ones in feed
// order, then estimated ones.
func (n *Normalizer) ordered(ev Event) []Bookmaker {
	out := make([]Bookmaker, 0, len(ev.Bookmakers))
	best, ok := n.PickBest(ev)
	if ok {
		out = append(out, best)
	}
	for _, b := range ev.Bookmakers {
		if !b.IsEstimated() && (!ok || b.Key != best.Key) {
			out = append(out, b)
		}
	}
	for _, b := range ev.Bookmakers {
		if b.IsEstimated() {
			out = append(out, b)
		}
	}
	return out
}

// baseOdds carries the event identity, with both teams resolved the same
// way schedule teams are.
func baseOdds(ev Event) model.MarketOdds {
	return model.MarketOdds{
		EventID:      ev.ID,
		HomeTeam:     ev.HomeTeam,
		AwayTeam:     ev.AwayTeam,
		Home:         team.FromMarketName(ev.HomeTeam),
		Away:         team.FromMarketName(ev.AwayTeam),
		CommenceTime: ev.Commence(),
	}
}

func (n *Normalizer) best(ev Event) model.MarketOdds {
	mo := baseOdds(ev)
	books := n.ordered(ev)
	if len(books) > 0 {
		mo.Bookmaker = books[0].Name()
	}
	for _, b := range books {
		if mo.Spread == nil {
			mo.Spread = spreadFrom(b, ev)
		}
		if mo.Total == nil {
			mo.Total = totalFrom(b)
		}
		if mo.Moneyline == nil {
			mo.Moneyline = moneylineFrom(b, ev)
		}
	}
	return mo
}

func sourceOf(b Bookmaker) types.LineSource {
	if b.IsEstimated() {
		return types.SourceEstimated
	}
	return types.SourceReal
}

func detailOf(m Market) string {
	if m.Meta != nil {
		return m.Meta.SourceDetail
	}
	return ""
}

func spreadFrom(b Bookmaker, ev Event) *model.SpreadLine {
	m, ok := b.Market(MarketSpreads)
	if !ok {
		return nil
	}
	oh, hok := m.Outcome(ev.HomeTeam)
	oa, aok := m.Outcome(ev.AwayTeam)
	hok = hok && oh.Point != nil
	aok = aok && oa.Point != nil
	if !hok && !aok {
		return nil
	}
	line := &model.SpreadLine{Provider: b.Name(), Source: sourceOf(b), Detail: detailOf(m)}
	switch {
	case hok && aok:
		line.HomePoint, line.AwayPoint = *oh.Point, *oa.Point
	case hok:
		line.HomePoint, line.AwayPoint = *oh.Point, -*oh.Point
	default:
		line.HomePoint, line.AwayPoint = -*oa.Point, *oa.Point
	}
	if hok {
		p := oh.Price
		line.HomePrice = &p
	}
	if aok {
		p := oa.Price
		line.AwayPrice = &p
	}
	return line
}

func totalPoint(b Bookmaker) *float64 {
	m, ok := b.Market(MarketTotals)
	if !ok {
		return nil
	}
	if o, ok := m.Outcome("Over"); ok && o.Point != nil {
		v := *o.Point
		return &v
	}
	if o, ok := m.Outcome("Under"); ok && o.Point != nil {
		v := *o.Point
		return &v
	}
	return nil
}

func totalFrom(b Bookmaker) *model.TotalLine {
	p := totalPoint(b)
	if p == nil {
		return nil
	}
	m, _ := b.Market(MarketTotals)
	line := &model.TotalLine{Point: *p, Provider: b.Name(), Source: sourceOf(b), Detail: detailOf(m)}
	if o, ok := m.Outcome("Over"); ok {
		v := o.Price
		line.OverPrice = &v
	}
	if o, ok := m.Outcome("Under"); ok {
		v := o.Price
		line.UnderPrice = &v
	}
	return line
}

func moneylineFrom(b Bookmaker, ev Event) *model.Moneyline {
	m, ok := b.Market(MarketH2H)
	if !ok {
		return nil
	}
	oh, hok := m.Outcome(ev.HomeTeam)
	oa, aok := m.Outcome(ev.AwayTeam)
	if !hok || !aok {
		return nil
	}
	return &model.Moneyline{HomePrice: oh.Price, AwayPrice: oa.Price, Provider: b.Name()}
}
