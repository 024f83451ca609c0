package scoring

import "sort"

// Candidate is one supplier scored for one item.
type Candidate struct {
	SupplierID   uint            `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	PricePerUnit float64         `json:"price_per_unit"`
	DeliveryDays int             `json:"delivery_days"`
	MarketPrice  float64         `json:"market_price"`
	Metrics      SupplierMetrics `json:"metrics"`
	Breakdown    ScoreBreakdown  `json:"breakdown"`
	Rank         int             `json:"rank"`
}

// Rank orders candidates by total score descending, breaking ties by supplier id
// ascending, assigns 1-based ranks and keeps at most limit entries (limit <= 0 keeps all).
// The input slice is reordered in place.
func Rank(candidates []Candidate, limit int) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Breakdown.Total != candidates[j].Breakdown.Total {
			return candidates[i].Breakdown.Total > candidates[j].Breakdown.Total
		}
		return candidates[i].SupplierID < candidates[j].SupplierID
	})
	for i := range candidates {
		candidates[i].Rank = i + 1
	}
	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}
