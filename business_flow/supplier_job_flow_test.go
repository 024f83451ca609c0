package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/scoring"
	"github.com/amirphl/printshop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setJobStatus(t *testing.T, e *testEnv, jobID uint, status models.SupplierJobStatus) *dto.SupplierJobResponse {
	t.Helper()
	resp, err := e.jobFlow.UpdateJobStatus(context.Background(), jobID, &dto.UpdateSupplierJobStatusRequest{Status: string(status)})
	require.NoError(t, err)
	return resp
}

func TestUpdateJobStatusTransitions(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	supplier := e.store.addSupplier("supplier")
	job := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, ProductUnitID: 1})

	resp := setJobStatus(t, e, job.ID, models.SupplierJobStatusInProgress)
	assert.True(t, resp.Success)
	assert.Equal(t, "in_progress", resp.Job.Status)
	assert.Nil(t, e.store.job(job.ID).ReadyAt)

	resp = setJobStatus(t, e, job.ID, models.SupplierJobStatusReady)
	assert.Equal(t, "ready", resp.Job.Status)
	assert.NotNil(t, resp.Job.ReadyAt)
	assert.NotNil(t, e.store.job(job.ID).ReadyAt)

	_, err := e.jobFlow.UpdateJobStatus(context.Background(), job.ID, &dto.UpdateSupplierJobStatusRequest{Status: "pending"})
	assert.ErrorIs(t, err, ErrJobTransitionNotAllowed)

	_, err = e.jobFlow.UpdateJobStatus(context.Background(), job.ID, &dto.UpdateSupplierJobStatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, ErrInvalidJobStatus)

	resp, err = e.jobFlow.UpdateJobStatus(context.Background(), 9999, &dto.UpdateSupplierJobStatusRequest{Status: "ready"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestUpdateJobStatusAdvancesQuote(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	customer := e.store.addCustomer("customer")
	supplier := e.store.addSupplier("supplier")
	q := e.store.addQuote(customer.ID, models.QuoteStatusInProduction, 0)
	quoteID := q.ID
	first := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, QuoteID: &quoteID, Status: models.SupplierJobStatusInProgress})
	second := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, QuoteID: &quoteID, Status: models.SupplierJobStatusInProgress})
	e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, QuoteID: &quoteID, Status: models.SupplierJobStatusCancelled})

	resp := setJobStatus(t, e, first.ID, models.SupplierJobStatusReady)
	assert.False(t, resp.QuoteAdvanced)
	assert.Equal(t, models.QuoteStatusInProduction, e.store.quote(q.ID).Status)

	resp = setJobStatus(t, e, second.ID, models.SupplierJobStatusReady)
	assert.True(t, resp.QuoteAdvanced)
	assert.Equal(t, models.QuoteStatusReady, e.store.quote(q.ID).Status)
}

func TestCancellingLastOpenJobAdvancesQuote(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	customer := e.store.addCustomer("customer")
	supplier := e.store.addSupplier("supplier")
	q := e.store.addQuote(customer.ID, models.QuoteStatusInProduction, 0)
	quoteID := q.ID
	a := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, QuoteID: &quoteID, Status: models.SupplierJobStatusInProgress})
	b := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, QuoteID: &quoteID, Status: models.SupplierJobStatusInProgress})

	resp := setJobStatus(t, e, a.ID, models.SupplierJobStatusReady)
	assert.False(t, resp.QuoteAdvanced)
	assert.Equal(t, models.QuoteStatusInProduction, e.store.quote(q.ID).Status)

	resp = setJobStatus(t, e, b.ID, models.SupplierJobStatusCancelled)
	assert.True(t, resp.QuoteAdvanced)
	assert.Equal(t, models.QuoteStatusReady, e.store.quote(q.ID).Status)
}

func TestCancellingEveryJobKeepsQuoteInProduction(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	customer := e.store.addCustomer("customer")
	supplier := e.store.addSupplier("supplier")
	q := e.store.addQuote(customer.ID, models.QuoteStatusInProduction, 0)
	quoteID := q.ID
	a := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, QuoteID: &quoteID, Status: models.SupplierJobStatusPending})
	b := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, QuoteID: &quoteID, Status: models.SupplierJobStatusInProgress})

	setJobStatus(t, e, a.ID, models.SupplierJobStatusCancelled)
	resp := setJobStatus(t, e, b.ID, models.SupplierJobStatusCancelled)
	assert.False(t, resp.QuoteAdvanced)
	assert.Equal(t, models.QuoteStatusInProduction, e.store.quote(q.ID).Status)
}

func TestConfirmCourierReady(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	supplier := e.store.addSupplier("supplier")
	job := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, Status: models.SupplierJobStatusInProgress})

	_, err := e.jobFlow.ConfirmCourierReady(context.Background(), job.ID)
	assert.ErrorIs(t, err, ErrJobNotReady)

	setJobStatus(t, e, job.ID, models.SupplierJobStatusReady)
	resp, err := e.jobFlow.ConfirmCourierReady(context.Background(), job.ID)
	require.NoError(t, err)
	assert.True(t, resp.Job.CourierConfirmedReady)
	stored := e.store.job(job.ID)
	assert.True(t, utils.IsTrue(stored.CourierConfirmedReady))
	assert.NotNil(t, stored.CourierConfirmedAt)

	resp, err = e.jobFlow.ConfirmCourierReady(context.Background(), 9999)
	require.NoError(t, err)
	assert.False(t, resp.Success)
}

func TestRateSupplierJob(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	supplier := e.store.addSupplier("supplier")
	open := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, Status: models.SupplierJobStatusInProgress})
	done := e.store.addJob(models.SupplierJob{SupplierID: supplier.ID, Status: models.SupplierJobStatusDelivered})

	_, err := e.jobFlow.RateSupplierJob(context.Background(), open.ID, &dto.RateSupplierJobRequest{Rating: 7})
	assert.ErrorIs(t, err, ErrJobNotReady)

	_, err = e.jobFlow.RateSupplierJob(context.Background(), done.ID, &dto.RateSupplierJobRequest{Rating: 0})
	assert.True(t, IsRatingOutOfRange(err))

	resp, err := e.jobFlow.RateSupplierJob(context.Background(), done.ID, &dto.RateSupplierJobRequest{Rating: 9})
	require.NoError(t, err)
	assert.Equal(t, 9, *resp.Job.Rating)
	assert.Equal(t, int64(9), e.store.user(supplier.ID).RatingTotal)
	assert.Equal(t, int64(1), e.store.user(supplier.ID).RatingCount)

	_, err = e.jobFlow.RateSupplierJob(context.Background(), done.ID, &dto.RateSupplierJobRequest{Rating: 4})
	require.NoError(t, err)
	assert.Equal(t, int64(4), e.store.user(supplier.ID).RatingTotal)
	assert.Equal(t, int64(1), e.store.user(supplier.ID).RatingCount)
}

func TestRecordCourierEvent(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	customer := e.store.addCustomer("customer")
	unit := e.store.addUnit(1, "Cards", "S")
	q := e.store.addQuote(customer.ID, models.QuoteStatusReady, 0)
	item := e.store.addItem(q.ID, unit.ID, 1)

	_, err := e.jobFlow.RecordCourierEvent(context.Background(), item.ID, &dto.CourierEventRequest{Event: "delivered"})
	assert.ErrorIs(t, err, ErrCourierDeliveryBeforePickup)

	_, err = e.jobFlow.RecordCourierEvent(context.Background(), item.ID, &dto.CourierEventRequest{Event: "lost"})
	assert.ErrorIs(t, err, ErrInvalidCourierEvent)

	resp, err := e.jobFlow.RecordCourierEvent(context.Background(), item.ID, &dto.CourierEventRequest{Event: "picked_up"})
	require.NoError(t, err)
	assert.True(t, resp.Item.CourierPickedUp)
	pickedAt := e.store.item(item.ID).CourierPickedUpAt
	require.NotNil(t, pickedAt)

	_, err = e.jobFlow.RecordCourierEvent(context.Background(), item.ID, &dto.CourierEventRequest{Event: "picked_up"})
	require.NoError(t, err)
	assert.Equal(t, *pickedAt, *e.store.item(item.ID).CourierPickedUpAt)

	resp, err = e.jobFlow.RecordCourierEvent(context.Background(), item.ID, &dto.CourierEventRequest{Event: "delivered"})
	require.NoError(t, err)
	assert.True(t, resp.Item.CourierDelivered)
	assert.NotNil(t, resp.Item.CourierDeliveredAt)

	resp, err = e.jobFlow.RecordCourierEvent(context.Background(), 9999, &dto.CourierEventRequest{Event: "picked_up"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
}
