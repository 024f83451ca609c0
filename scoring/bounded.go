package scoring

import "math"

// Term names of the bounded model.
const (
	TermPrice          = "price"
	TermPromiseKeeping = "promise_keeping"
	TermCourierConfirm = "courier_confirm"
	TermEarlyFinish    = "early_finish"
	TermCategoryExpert = "category_expert"
	TermCurrentLoad    = "current_load"
	TermConsistency    = "consistency"
	TermCancellation   = "cancellation"
)

// BoundedModel scores a supplier as an experience-based base plus bounded bonus and penalty terms.
type BoundedModel struct {
	capacityBonusMax int
}

// NewBoundedModel creates the bounded model with the given multi-item bonus cap.
func NewBoundedModel(capacityBonusMax int) *BoundedModel {
	if capacityBonusMax < 0 {
		capacityBonusMax = 0
	}
	return &BoundedModel{capacityBonusMax: capacityBonusMax}
}

func (m *BoundedModel) Name() string { return ModelBounded }

// Score applies the bounded formula. The total is the unclamped sum of base and terms.
func (m *BoundedModel) Score(in ScoreInput) ScoreBreakdown {
	met := in.Metrics
	b := ScoreBreakdown{
		Model: ModelBounded,
		Base:  BaseScore(met.CompletedJobs),
		Terms: []Term{
			{Name: TermPrice, Value: PriceTerm(in.SupplierPrice, in.MarketPrice), Min: -10, Max: 10},
			{Name: TermPromiseKeeping, Value: clamp((met.PromiseKeepingPct-80)*0.4, -8, 8), Min: -8, Max: 8},
			{Name: TermCourierConfirm, Value: clamp((met.CourierConfirmPct-80)*0.3, -6, 6), Min: -6, Max: 6},
			{Name: TermEarlyFinish, Value: clamp(met.EarlyFinishAvgDays, 0, 3), Min: 0, Max: 3},
			{Name: TermCategoryExpert, Value: categoryExpertTerm(met.CategoryJobs), Min: 0, Max: 2},
			{Name: TermCurrentLoad, Value: currentLoadTerm(met.CurrentLoad), Min: -3, Max: 0},
			{Name: TermConsistency, Value: consistencyTerm(met), Min: 0, Max: 2},
			{Name: TermCancellation, Value: cancellationTerm(met.CancellationPct), Min: -2, Max: 0},
		},
	}
	b.Total = b.Base
	for _, t := range b.Terms {
		b.Total += t.Value
	}
	return b
}

// ApplyMultiItemBonus adds min(otherItems, cap) points.
func (m *BoundedModel) ApplyMultiItemBonus(b ScoreBreakdown, otherItems int) ScoreBreakdown {
	if otherItems <= 0 {
		return b
	}
	bonus := float64(min(otherItems, m.capacityBonusMax))
	b.MultiItemBonus += bonus
	b.Total += bonus
	return b
}

// BaseScore maps completed job count to the experience tier.
func BaseScore(completedJobs int) float64 {
	switch {
	case completedJobs >= 10:
		return 100
	case completedJobs >= 5:
		return 90
	case completedJobs >= 1:
		return 80
	default:
		return 70
	}
}

// PriceTerm rewards prices below market and penalizes prices above, within [-10, 10].
// Without a baseline or a price the term is 0.
func PriceTerm(supplierPrice, marketPrice float64) float64 {
	if supplierPrice <= 0 || marketPrice <= 0 {
		return 0
	}
	return clamp((marketPrice-supplierPrice)/marketPrice*100*0.5, -10, 10)
}

func categoryExpertTerm(categoryJobs int) float64 {
	switch {
	case categoryJobs >= 10:
		return 2
	case categoryJobs >= 5:
		return 1
	default:
		return 0
	}
}

func currentLoadTerm(openJobs int) float64 {
	if openJobs <= 0 {
		return 0
	}
	return math.Max(-math.Floor(float64(openJobs)/3), -3)
}

func consistencyTerm(met SupplierMetrics) float64 {
	if !met.HasConsistencySample() {
		return 0
	}
	switch {
	case met.CoefficientOfVariation < 0.2:
		return 2
	case met.CoefficientOfVariation < ConsistencyThreshold:
		return 1
	default:
		return 0
	}
}

func cancellationTerm(cancellationPct float64) float64 {
	if cancellationPct <= 0 {
		return 0
	}
	return math.Max(-math.Floor(cancellationPct/5), -2)
}
