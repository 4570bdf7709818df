package odds

import (
	"github.com/okian/nbapicks/internal/domain/model"
	"github.com/okian/nbapicks/internal/domain/types"
)

// quotes collects per-field values across bookmakers.
type quotes struct {
	homePoint, awayPoint, homePrice, awayPrice []float64
	point, overPrice, underPrice               []float64
	mlHome, mlAway                             []float64
}

func collect(books []Bookmaker, ev Event) quotes {
	var q quotes
	for _, b := range books {
		if m, ok := b.Market(MarketSpreads); ok {
			if o, ok := m.Outcome(ev.HomeTeam); ok {
				if o.Point != nil {
					q.homePoint = append(q.homePoint, *o.Point)
				}
				if o.Price != 0 {
					q.homePrice = append(q.homePrice, o.Price)
				}
			}
			if o, ok := m.Outcome(ev.AwayTeam); ok {
				if o.Point != nil {
					q.awayPoint = append(q.awayPoint, *o.Point)
				}
				if o.Price != 0 {
					q.awayPrice = append(q.awayPrice, o.Price)
				}
			}
		}
		if p := totalPoint(b); p != nil {
			q.point = append(q.point, *p)
			m, _ := b.Market(MarketTotals)
			if o, ok := m.Outcome("Over"); ok && o.Price != 0 {
				q.overPrice = append(q.overPrice, o.Price)
			}
			if o, ok := m.Outcome("Under"); ok && o.Price != 0 {
				q.underPrice = append(q.underPrice, o.Price)
			}
		}
		if ml := moneylineFrom(b, ev); ml != nil {
			q.mlHome = append(q.mlHome, ml.HomePrice)
			q.mlAway = append(q.mlAway, ml.AwayPrice)
		}
	}
	return q
}

func medianPtr(vals []float64) *float64 {
	if v, ok := Median(vals); ok {
		return &v
	}
	return nil
}

// consensus takes the median of every field independently across real
// bookmakers. A market missing from all real bookmakers falls back to the
// estimated bookmaker's value.
func consensus(ev Event) model.MarketOdds {
	var real, est []Bookmaker
	for _, b := range ev.Bookmakers {
		if b.IsEstimated() {
			est = append(est, b)
		} else {
			real = append(real, b)
		}
	}
	mo := baseOdds(ev)
	if len(real) > 0 {
		mo.Bookmaker = ConsensusTitle
	} else if len(est) > 0 {
		mo.Bookmaker = EstimatedTitle
	}

	q := collect(real, ev)
	if hp, ap := medianPtr(q.homePoint), medianPtr(q.awayPoint); hp != nil || ap != nil {
		line := &model.SpreadLine{
			Provider:  ConsensusTitle,
			Source:    types.SourceReal,
			HomePrice: medianPtr(q.homePrice),
			AwayPrice: medianPtr(q.awayPrice),
		}
		switch {
		case hp != nil && ap != nil:
			line.HomePoint, line.AwayPoint = *hp, *ap
		case hp != nil:
			line.HomePoint, line.AwayPoint = *hp, -*hp
		default:
			line.HomePoint, line.AwayPoint = -*ap, *ap
		}
		mo.Spread = line
	}
	if p := medianPtr(q.point); p != nil {
		mo.Total = &model.TotalLine{
			Point:      *p,
			Provider:   ConsensusTitle,
			Source:     types.SourceReal,
			OverPrice:  medianPtr(q.overPrice),
			UnderPrice: medianPtr(q.underPrice),
		}
	}
	if h, a := medianPtr(q.mlHome), medianPtr(q.mlAway); h != nil && a != nil {
		mo.Moneyline = &model.Moneyline{HomePrice: *h, AwayPrice: *a, Provider: ConsensusTitle}
	}

	for _, b := range est {
		if mo.Spread == nil {
			mo.Spread = spreadFrom(b, ev)
		}
		if mo.Total == nil {
			mo.Total = totalFrom(b)
		}
	}
	return mo
}
