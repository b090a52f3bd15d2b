// Package ranking orders one product's offers so the best deal comes first.
package ranking

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/xfinds/xfinds-backend/internal/catalog"
)

// Reason explains which factor set an offer apart. Display only.
type Reason string

const (
	ReasonBestPrice         Reason = "best_price"
	ReasonFastest           Reason = "fastest"
	ReasonRecommendedAgent  Reason = "recommended_agent"
	ReasonTopRated          Reason = "top_rated"
	ReasonInStock           Reason = "in_stock"
	ReasonBalanced          Reason = "balanced"
	ReasonIncompleteListing Reason = "incomplete_listing"
)

// Factor weights. They sum to 1 and are scaled to a 0-100 score.
const (
	WeightCost        = 0.5
	WeightRating      = 0.2
	WeightRecommended = 0.1
	WeightInStock     = 0.1
	WeightDelivery    = 0.1

	maxRating = 5.0
	maxScore  = 100
)

// factor order doubles as the tie-break order when picking a reason.
const (
	factorCost = iota
	factorDelivery
	factorRecommended
	factorRating
	factorInStock
	factorCount
)

var factorReasons = [factorCount]Reason{
	factorCost:        ReasonBestPrice,
	factorDelivery:    ReasonFastest,
	factorRecommended: ReasonRecommendedAgent,
	factorRating:      ReasonTopRated,
	factorInStock:     ReasonInStock,
}

// RankedOffer is an offer annotated with its position in the comparison.
type RankedOffer struct {
	catalog.ProductOffer
	Rank   int    `json:"rank"`
	Score  int    `json:"score"`
	Reason Reason `json:"reason"`

	// LandedCost is null for malformed offers.
	LandedCost decimal.NullDecimal `json:"landedCost"`
}

type scored struct {
	offer        catalog.ProductOffer
	landed       decimal.Decimal
	wellFormed   bool
	contribution [factorCount]float64
	raw          float64
	score        int
}

// RankOffers scores and orders offers. The result is independent of input order and
// never nil. Unknown agents score as unrated and unrecommended; malformed offers score
// zero and sort last.
func RankOffers(offers []catalog.ProductOffer, agents []catalog.Agent) []RankedOffer {
	out := make([]RankedOffer, 0, len(offers))
	if len(offers) == 0 {
		return out
	}

	index := catalog.IndexAgents(agents)
	entries := make([]scored, len(offers))
	for i, offer := range offers {
		landed, ok := offer.LandedCost()
		entries[i] = scored{offer: offer, landed: landed, wellFormed: ok}
	}

	bounds := boundsOf(entries)
	for i := range entries {
		e := &entries[i]
		if !e.wellFormed {
			continue
		}
		agent := index.Lookup(e.offer.AgentID)
		e.contribution[factorCost] = WeightCost * bounds.costScore(e.landed)
		e.contribution[factorDelivery] = WeightDelivery * bounds.daysScore(e.offer.EstDays)
		if agent != nil {
			e.contribution[factorRating] = WeightRating * clamp01(agent.Rating/maxRating)
			if agent.Recommended {
				e.contribution[factorRecommended] = WeightRecommended
			}
		}
		if e.offer.InStock {
			e.contribution[factorInStock] = WeightInStock
		}
		for _, c := range e.contribution {
			e.raw += c
		}
	}

	for i := range entries {
		entries[i].score = scoreOf(entries[i])
	}
	sort.SliceStable(entries, func(i, j int) bool { return less(entries[i], entries[j]) })

	averages := averageContributions(entries)
	for i, e := range entries {
		ranked := RankedOffer{
			ProductOffer: e.offer,
			Rank:         i + 1,
			Score:        e.score,
			Reason:       ReasonIncompleteListing,
		}
		if e.wellFormed {
			ranked.LandedCost = decimal.NewNullDecimal(e.landed)
			ranked.Reason = reasonFor(e, averages)
		}
		out = append(out, ranked)
	}
	return out
}

// Best returns the top ranked offer, if any.
func Best(ranked []RankedOffer) (RankedOffer, bool) {
	if len(ranked) == 0 {
		return RankedOffer{}, false
	}
	return ranked[0], true
}

func scoreOf(e scored) int {
	if !e.wellFormed {
		return 0
	}
	score := math.Round(e.raw * maxScore)
	if score < 0 || math.IsNaN(score) {
		return 0
	}
	if score > maxScore {
		return maxScore
	}
	return int(score)
}

func less(a, b scored) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.wellFormed != b.wellFormed {
		return a.wellFormed
	}
	if a.wellFormed && !a.landed.Equal(b.landed) {
		return a.landed.LessThan(b.landed)
	}
	if a.offer.AgentID != b.offer.AgentID {
		return a.offer.AgentID < b.offer.AgentID
	}
	if a.offer.Link != b.offer.Link {
		return a.offer.Link < b.offer.Link
	}
	return a.offer.EstDays < b.offer.EstDays
}

type setBounds struct {
	minCost, maxCost decimal.Decimal
	minDays, maxDays int
}

func boundsOf(entries []scored) setBounds {
	var (
		b     setBounds
		found bool
	)
	for _, e := range entries {
		if !e.wellFormed {
			continue
		}
		if !found {
			b = setBounds{minCost: e.landed, maxCost: e.landed, minDays: e.offer.EstDays, maxDays: e.offer.EstDays}
			found = true
			continue
		}
		if e.landed.LessThan(b.minCost) {
			b.minCost = e.landed
		}
		if e.landed.GreaterThan(b.maxCost) {
			b.maxCost = e.landed
		}
		if e.offer.EstDays < b.minDays {
			b.minDays = e.offer.EstDays
		}
		if e.offer.EstDays > b.maxDays {
			b.maxDays = e.offer.EstDays
		}
	}
	return b
}

// costScore is 1 for the cheapest offer and 0 for the most expensive.
func (b setBounds) costScore(landed decimal.Decimal) float64 {
	span := b.maxCost.Sub(b.minCost)
	if !span.IsPositive() {
		return 1
	}
	return clamp01(b.maxCost.Sub(landed).Div(span).InexactFloat64())
}

func (b setBounds) daysScore(days int) float64 {
	span := b.maxDays - b.minDays
	if span <= 0 {
		return 1
	}
	return clamp01(float64(b.maxDays-days) / float64(span))
}

func averageContributions(entries []scored) [factorCount]float64 {
	var (
		sum [factorCount]float64
		n   int
	)
	for _, e := range entries {
		if !e.wellFormed {
			continue
		}
		n++
		for f := range sum {
			sum[f] += e.contribution[f]
		}
	}
	if n == 0 {
		return sum
	}
	for f := range sum {
		sum[f] /= float64(n)
	}
	return sum
}

const reasonEpsilon = 1e-9

func reasonFor(e scored, averages [factorCount]float64) Reason {
	best := -1
	bestDelta := reasonEpsilon
	for f := 0; f < factorCount; f++ {
		delta := e.contribution[f] - averages[f]
		if delta > bestDelta {
			best = f
			bestDelta = delta
		}
	}
	if best < 0 {
		return ReasonBalanced
	}
	return factorReasons[best]
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
