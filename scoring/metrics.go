// Package scoring derives supplier performance metrics from job history and turns them into ranked scores.
package scoring

import (
	"math"

	"github.com/amirphl/printshop/models"
)

// Neutral values substituted when a metric has no qualifying samples.
// Promise-keeping and courier confirmation use the scoring pivot so an
// unknown supplier is neither rewarded nor penalized on those terms.
const (
	NeutralPromiseKeepingPct    = 80.0
	NeutralCourierConfirmPct    = 80.0
	NeutralCategoryExpertisePct = 50.0
	NeutralAverageRating        = 5.0
)

// ConsistencyThreshold is the coefficient of variation below which delivery times count as consistent.
const ConsistencyThreshold = 0.3

// SupplierMetrics is the aggregated view of one supplier's job history.
// Every derived percentage carries the number of samples it was computed from.
type SupplierMetrics struct {
	SupplierID    uint `json:"supplier_id"`
	TotalJobs     int  `json:"total_jobs"`
	CompletedJobs int  `json:"completed_jobs"`

	PromiseKeepingPct     float64 `json:"promise_keeping_pct"`
	PromiseKeepingSamples int     `json:"promise_keeping_samples"`

	CourierConfirmPct     float64 `json:"courier_confirm_pct"`
	CourierConfirmSamples int     `json:"courier_confirm_samples"`

	EarlyFinishAvgDays float64 `json:"early_finish_avg_days"`
	EarlyFinishSamples int     `json:"early_finish_samples"`

	// CategoryJobCounts holds job counts per category; ForCategory derives the expertise fields.
	CategoryJobCounts    map[uint]int `json:"category_job_counts,omitempty"`
	CategoryID           *uint        `json:"category_id,omitempty"`
	CategoryJobs         int          `json:"category_jobs"`
	CategoryExpertisePct float64      `json:"category_expertise_pct"`

	CurrentLoad int `json:"current_load"`

	DeliverySamples        int     `json:"delivery_samples"`
	AverageDeliveryDays    float64 `json:"average_delivery_days"`
	DeliveryStdDevDays     float64 `json:"delivery_stddev_days"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	Consistent             bool    `json:"consistent"`

	CancelledJobs   int     `json:"cancelled_jobs"`
	CancellationPct float64 `json:"cancellation_pct"`

	AverageRating float64 `json:"average_rating"`
	RatingSamples int     `json:"rating_samples"`
}

// NeutralMetrics returns metrics for a supplier with no usable history.
func NeutralMetrics(supplierID uint) SupplierMetrics {
	return SupplierMetrics{
		SupplierID:           supplierID,
		PromiseKeepingPct:    NeutralPromiseKeepingPct,
		CourierConfirmPct:    NeutralCourierConfirmPct,
		CategoryExpertisePct: NeutralCategoryExpertisePct,
		AverageRating:        NeutralAverageRating,
	}
}

// Aggregate computes a supplier's metrics from its jobs. unitCategories maps
// product unit ids to category ids; units missing from the map are not
// attributed to any category.
func Aggregate(supplierID uint, jobs []*models.SupplierJob, unitCategories map[uint]uint) SupplierMetrics {
	m := NeutralMetrics(supplierID)
	m.CategoryJobCounts = make(map[uint]int)

	var (
		promised, kept          int
		markedReady, confirmed  int
		earlyTotal              float64
		earlySamples            int
		deliveryDays            []float64
		ratingTotal, ratingSeen int
	)

	for _, j := range jobs {
		if j == nil {
			continue
		}
		m.TotalJobs++

		if j.Status.IsCompleted() {
			m.CompletedJobs++
		}
		if j.Status.IsOpen() {
			m.CurrentLoad++
		}
		if j.Status == models.SupplierJobStatusCancelled {
			m.CancelledJobs++
		}
		if catID, ok := unitCategories[j.ProductUnitID]; ok {
			m.CategoryJobCounts[catID]++
		}
		if j.Rating != nil {
			ratingTotal += *j.Rating
			ratingSeen++
		}

		actual, hasActual := j.ActualDays()
		if hasActual {
			markedReady++
			if j.CourierConfirmedReady != nil && *j.CourierConfirmedReady {
				confirmed++
			}
			deliveryDays = append(deliveryDays, actual)
		}
		if hasActual && j.PromisedDeliveryDays != nil {
			promisedDays := float64(*j.PromisedDeliveryDays)
			promised++
			if actual <= promisedDays {
				kept++
			}
			earlyTotal += math.Max(0, promisedDays-actual)
			earlySamples++
		}
	}

	if promised > 0 {
		m.PromiseKeepingPct = percent(kept, promised)
		m.PromiseKeepingSamples = promised
	}
	if markedReady > 0 {
		m.CourierConfirmPct = percent(confirmed, markedReady)
		m.CourierConfirmSamples = markedReady
	}
	if earlySamples > 0 {
		m.EarlyFinishAvgDays = earlyTotal / float64(earlySamples)
		m.EarlyFinishSamples = earlySamples
	}
	if m.TotalJobs > 0 {
		m.CancellationPct = percent(m.CancelledJobs, m.TotalJobs)
	}
	if ratingSeen > 0 {
		m.AverageRating = float64(ratingTotal) / float64(ratingSeen)
		m.RatingSamples = ratingSeen
	}

	m.DeliverySamples = len(deliveryDays)
	if len(deliveryDays) > 0 {
		mean, stddev := meanStdDev(deliveryDays)
		m.AverageDeliveryDays = mean
		m.DeliveryStdDevDays = stddev
		if len(deliveryDays) >= 2 && mean > 0 {
			m.CoefficientOfVariation = stddev / mean
			m.Consistent = m.CoefficientOfVariation < ConsistencyThreshold
		}
	}

	return m
}

// ForCategory returns a copy of m with the category expertise fields scoped to categoryID.
func (m SupplierMetrics) ForCategory(categoryID *uint) SupplierMetrics {
	out := m
	out.CategoryID = categoryID
	out.CategoryJobs = 0
	out.CategoryExpertisePct = NeutralCategoryExpertisePct
	if categoryID == nil || m.TotalJobs == 0 {
		return out
	}
	out.CategoryJobs = m.CategoryJobCounts[*categoryID]
	out.CategoryExpertisePct = percent(out.CategoryJobs, m.TotalJobs)
	return out
}

// HasConsistencySample reports whether the coefficient of variation is defined.
func (m SupplierMetrics) HasConsistencySample() bool {
	return m.DeliverySamples >= 2 && m.AverageDeliveryDays > 0
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

// meanStdDev returns the mean and population standard deviation.
func meanStdDev(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(values)))
}
