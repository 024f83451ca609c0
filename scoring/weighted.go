package scoring

import (
	"github.com/amirphl/printshop/models"
)

// Term names of the weighted model. Each normalized score is in [0, 100].
const (
	TermPriceScore       = "price_score"
	TermRatingScore      = "rating_score"
	TermDeliveryScore    = "delivery_score"
	TermReliabilityScore = "reliability_score"
)

const (
	multiItemUpliftPerItem = 0.02
	multiItemUpliftMax     = 0.10
	neutralNormalizedScore = 50
)

// WeightedModel normalizes four criteria to 0..100 and combines them with percentage weights.
type WeightedModel struct {
	weights models.ScoringWeights
}

// NewWeightedModel creates the weighted model. Weights are expected to be validated.
func NewWeightedModel(weights models.ScoringWeights) *WeightedModel {
	return &WeightedModel{weights: weights}
}

func (m *WeightedModel) Name() string { return ModelWeighted }

func (m *WeightedModel) Score(in ScoreInput) ScoreBreakdown {
	priceScore := float64(neutralNormalizedScore)
	if in.SupplierPrice > 0 && in.MarketPrice > 0 {
		priceScore = clamp(100-(in.SupplierPrice/in.MarketPrice-0.5)*100, 0, 100)
	}

	ratingScore := clamp(in.Metrics.AverageRating*10, 0, 100)

	deliveryScore := float64(neutralNormalizedScore)
	if in.DeliveryDays > 0 {
		deliveryScore = clamp(100-float64(in.DeliveryDays-1)*10, 0, 100)
	}

	reliabilityScore := clamp(in.Metrics.PromiseKeepingPct-in.Metrics.CancellationPct, 0, 100)

	b := ScoreBreakdown{
		Model: ModelWeighted,
		Terms: []Term{
			{Name: TermPriceScore, Value: priceScore, Min: 0, Max: 100},
			{Name: TermRatingScore, Value: ratingScore, Min: 0, Max: 100},
			{Name: TermDeliveryScore, Value: deliveryScore, Min: 0, Max: 100},
			{Name: TermReliabilityScore, Value: reliabilityScore, Min: 0, Max: 100},
		},
	}
	w := m.weights
	b.Total = (priceScore*float64(w.Price) +
		ratingScore*float64(w.Rating) +
		deliveryScore*float64(w.DeliveryTime) +
		reliabilityScore*float64(w.Reliability)) / 100
	return b
}

// ApplyMultiItemBonus uplifts the total by 2% per other item, capped at 10%.
func (m *WeightedModel) ApplyMultiItemBonus(b ScoreBreakdown, otherItems int) ScoreBreakdown {
	if otherItems <= 0 {
		return b
	}
	uplift := min(float64(otherItems)*multiItemUpliftPerItem, multiItemUpliftMax)
	bonus := b.Total * uplift
	b.MultiItemBonus += bonus
	b.Total += bonus
	return b
}
