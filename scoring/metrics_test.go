package scoring

import (
	"testing"
	"time"

	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func readyJob(unitID uint, status models.SupplierJobStatus, promised int, actualDays int, courier bool) *models.SupplierJob {
	readyAt := baseTime.Add(time.Duration(actualDays) * 24 * time.Hour)
	return &models.SupplierJob{
		SupplierID:            7,
		ProductUnitID:         unitID,
		Status:                status,
		PromisedDeliveryDays:  utils.ToPtr(promised),
		ReadyAt:               &readyAt,
		CourierConfirmedReady: utils.ToPtr(courier),
		CreatedAt:             baseTime,
	}
}

func TestAggregate(t *testing.T) {
	unitCategories := map[uint]uint{1: 10, 2: 20}

	delivered := readyJob(1, models.SupplierJobStatusDelivered, 5, 3, true)
	delivered.Rating = utils.ToPtr(8)
	late := readyJob(1, models.SupplierJobStatusReady, 4, 6, false)

	jobs := []*models.SupplierJob{
		delivered,
		late,
		{SupplierID: 7, ProductUnitID: 2, Status: models.SupplierJobStatusCancelled, CreatedAt: baseTime},
		{SupplierID: 7, ProductUnitID: 2, Status: models.SupplierJobStatusPending, CreatedAt: baseTime},
		{SupplierID: 7, ProductUnitID: 1, Status: models.SupplierJobStatusInProgress, CreatedAt: baseTime},
		nil,
	}

	m := Aggregate(7, jobs, unitCategories)

	assert.Equal(t, uint(7), m.SupplierID)
	assert.Equal(t, 5, m.TotalJobs)
	assert.Equal(t, 2, m.CompletedJobs)
	assert.Equal(t, 2, m.CurrentLoad)
	assert.Equal(t, 1, m.CancelledJobs)
	assert.InDelta(t, 20.0, m.CancellationPct, 1e-9)

	assert.Equal(t, 2, m.PromiseKeepingSamples)
	assert.InDelta(t, 50.0, m.PromiseKeepingPct, 1e-9)

	assert.Equal(t, 2, m.CourierConfirmSamples)
	assert.InDelta(t, 50.0, m.CourierConfirmPct, 1e-9)

	assert.Equal(t, 2, m.EarlyFinishSamples)
	assert.InDelta(t, 1.0, m.EarlyFinishAvgDays, 1e-9)

	assert.Equal(t, 2, m.DeliverySamples)
	assert.InDelta(t, 4.5, m.AverageDeliveryDays, 1e-9)
	assert.InDelta(t, 1.5, m.DeliveryStdDevDays, 1e-9)
	assert.InDelta(t, 1.0/3.0, m.CoefficientOfVariation, 1e-9)
	assert.False(t, m.Consistent)

	assert.Equal(t, 1, m.RatingSamples)
	assert.InDelta(t, 8.0, m.AverageRating, 1e-9)

	assert.Equal(t, map[uint]int{10: 3, 20: 2}, m.CategoryJobCounts)

	t.Run("ForCategory", func(t *testing.T) {
		scoped := m.ForCategory(utils.ToPtr(uint(10)))
		assert.Equal(t, 3, scoped.CategoryJobs)
		assert.InDelta(t, 60.0, scoped.CategoryExpertisePct, 1e-9)

		unknown := m.ForCategory(utils.ToPtr(uint(99)))
		assert.Equal(t, 0, unknown.CategoryJobs)
		assert.InDelta(t, 0.0, unknown.CategoryExpertisePct, 1e-9)

		unscoped := m.ForCategory(nil)
		assert.InDelta(t, NeutralCategoryExpertisePct, unscoped.CategoryExpertisePct, 1e-9)
	})
}

func TestAggregateNeutralDefaults(t *testing.T) {
	m := Aggregate(3, nil, nil)

	assert.Equal(t, 0, m.TotalJobs)
	assert.Equal(t, NeutralPromiseKeepingPct, m.PromiseKeepingPct)
	assert.Equal(t, NeutralCourierConfirmPct, m.CourierConfirmPct)
	assert.Equal(t, NeutralAverageRating, m.AverageRating)
	assert.Zero(t, m.EarlyFinishAvgDays)
	assert.Zero(t, m.CancellationPct)
	assert.False(t, m.HasConsistencySample())

	scoped := m.ForCategory(utils.ToPtr(uint(1)))
	assert.Equal(t, NeutralCategoryExpertisePct, scoped.CategoryExpertisePct)
}

func TestAggregateConsistentDelivery(t *testing.T) {
	jobs := []*models.SupplierJob{
		readyJob(1, models.SupplierJobStatusDelivered, 5, 4, true),
		readyJob(1, models.SupplierJobStatusDelivered, 5, 4, true),
		readyJob(1, models.SupplierJobStatusDelivered, 5, 4, true),
	}
	m := Aggregate(7, jobs, nil)

	require.True(t, m.HasConsistencySample())
	assert.InDelta(t, 0.0, m.CoefficientOfVariation, 1e-9)
	assert.True(t, m.Consistent)
	assert.InDelta(t, 100.0, m.PromiseKeepingPct, 1e-9)
	assert.InDelta(t, 100.0, m.CourierConfirmPct, 1e-9)
}
