package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/amirphl/printshop/models"
)

// Model names accepted by NewStrategy.
const (
	ModelBounded  = "bounded"
	ModelWeighted = "weighted"
)

// ScoreInput is everything a strategy needs to score one supplier for one item.
type ScoreInput struct {
	Metrics       SupplierMetrics
	SupplierPrice float64
	MarketPrice   float64
	DeliveryDays  int
}

// Term is one auditable contribution to a score.
type Term struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// ScoreBreakdown is the full, deterministic explanation of a score.
type ScoreBreakdown struct {
	Model          string  `json:"model"`
	Base           float64 `json:"base"`
	Terms          []Term  `json:"terms"`
	MultiItemBonus float64 `json:"multi_item_bonus"`
	Total          float64 `json:"total"`
}

// Term returns the named term value, or 0 when absent.
func (b ScoreBreakdown) Term(name string) float64 {
	for _, t := range b.Terms {
		if t.Name == name {
			return t.Value
		}
	}
	return 0
}

// Strategy is a scoring model. Implementations must be pure and deterministic.
type Strategy interface {
	Name() string
	Score(in ScoreInput) ScoreBreakdown
	ApplyMultiItemBonus(b ScoreBreakdown, otherItems int) ScoreBreakdown
}

// NewStrategy builds the named strategy. Weights are only used by the weighted model.
func NewStrategy(name string, capacityBonusMax int, weights models.ScoringWeights) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ModelBounded:
		return NewBoundedModel(capacityBonusMax), nil
	case ModelWeighted:
		if err := weights.Validate(); err != nil {
			return nil, err
		}
		return NewWeightedModel(weights), nil
	default:
		return nil, fmt.Errorf("unknown scoring model %q", name)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
