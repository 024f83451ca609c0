package businessflow

import (
	"context"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/repository"
	"github.com/amirphl/printshop/utils"
)

// SupplierJobFlow tracks production progress and feedback on supplier jobs
type SupplierJobFlow interface {
	UpdateJobStatus(ctx context.Context, jobID uint, req *dto.UpdateSupplierJobStatusRequest) (*dto.SupplierJobResponse, error)
	ConfirmCourierReady(ctx context.Context, jobID uint) (*dto.SupplierJobResponse, error)
	RateSupplierJob(ctx context.Context, jobID uint, req *dto.RateSupplierJobRequest) (*dto.SupplierJobResponse, error)
	RecordCourierEvent(ctx context.Context, quoteItemID uint, req *dto.CourierEventRequest) (*dto.CourierEventResponse, error)
}

// SupplierJobFlowImpl implements SupplierJobFlow
type SupplierJobFlowImpl struct {
	transactor  repository.Transactor
	jobRepo     repository.SupplierJobRepository
	quoteRepo   repository.QuoteRepository
	itemRepo    repository.QuoteItemRepository
	userRepo    repository.UserRepository
	metricsFlow SupplierMetricsFlow
}

func NewSupplierJobFlow(
	transactor repository.Transactor,
	jobRepo repository.SupplierJobRepository,
	quoteRepo repository.QuoteRepository,
	itemRepo repository.QuoteItemRepository,
	userRepo repository.UserRepository,
	metricsFlow SupplierMetricsFlow,
) SupplierJobFlow {
	return &SupplierJobFlowImpl{
		transactor:  transactor,
		jobRepo:     jobRepo,
		quoteRepo:   quoteRepo,
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		metricsFlow: metricsFlow,
	}
}

func jobNotFound() *dto.SupplierJobResponse {
	return &dto.SupplierJobResponse{Message: "Supplier job not found", Success: false}
}

// UpdateJobStatus moves a job along its production states. When the last open
// job of an in-production quote completes or is cancelled, the quote becomes ready.
func (f *SupplierJobFlowImpl) UpdateJobStatus(ctx context.Context, jobID uint, req *dto.UpdateSupplierJobStatusRequest) (*dto.SupplierJobResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "Request is required", ErrInvalidRequest)
	}
	next := models.SupplierJobStatus(req.Status)
	if !next.Valid() {
		return nil, NewBusinessErrorf("INVALID_JOB_STATUS", "Unknown job status %q", ErrInvalidJobStatus, req.Status)
	}

	var (
		job      *models.SupplierJob
		advanced bool
	)
	err := f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := f.jobRepo.LockByID(txCtx, jobID)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		job = current
		if current.Status == next {
			return nil
		}
		if !current.Status.CanTransitionTo(next) {
			return NewBusinessErrorf("JOB_TRANSITION_NOT_ALLOWED", "Cannot move job from %s to %s", ErrJobTransitionNotAllowed, current.Status, next)
		}

		readyAt := current.ReadyAt
		if next == models.SupplierJobStatusReady {
			readyAt = utils.UTCNowPtr()
		}
		if err := f.jobRepo.UpdateStatus(txCtx, current.ID, next, readyAt); err != nil {
			return err
		}
		job.Status = next
		job.ReadyAt = readyAt

		if current.QuoteID != nil && (next.IsCompleted() || next == models.SupplierJobStatusCancelled) {
			advanced, err = f.advanceQuoteIfDone(txCtx, *current.QuoteID)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, writeError("JOB_STATUS_FAILED", "Failed to update supplier job", err)
	}
	if job == nil {
		return jobNotFound(), nil
	}
	f.metricsFlow.Invalidate(ctx, job.SupplierID)
	if advanced {
		quoteTransitions.WithLabelValues(string(models.QuoteStatusReady)).Inc()
	}

	out := ToSupplierJobDTO(job)
	return &dto.SupplierJobResponse{Message: "Supplier job updated", Success: true, Job: &out, QuoteAdvanced: advanced}, nil
}

// advanceQuoteIfDone moves an in-production quote to ready once every
// non-cancelled job is completed. A quote whose jobs were all cancelled stays put.
func (f *SupplierJobFlowImpl) advanceQuoteIfDone(txCtx context.Context, quoteID uint) (bool, error) {
	jobs, err := f.jobRepo.ListByQuote(txCtx, quoteID)
	if err != nil {
		return false, err
	}
	completed := 0
	for _, j := range jobs {
		if j.Status == models.SupplierJobStatusCancelled {
			continue
		}
		if !j.Status.IsCompleted() {
			return false, nil
		}
		completed++
	}
	if completed == 0 {
		return false, nil
	}

	quote, err := f.quoteRepo.LockByID(txCtx, quoteID)
	if err != nil {
		return false, err
	}
	if quote == nil || quote.Status != models.QuoteStatusInProduction {
		return false, nil
	}
	if err := f.quoteRepo.UpdateStatus(txCtx, quote.ID, models.QuoteStatusReady, nil); err != nil {
		return false, err
	}
	return true, nil
}

// ConfirmCourierReady records that the courier confirmed the job was really ready.
func (f *SupplierJobFlowImpl) ConfirmCourierReady(ctx context.Context, jobID uint) (*dto.SupplierJobResponse, error) {
	var job *models.SupplierJob
	err := f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := f.jobRepo.LockByID(txCtx, jobID)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		if current.ReadyAt == nil {
			return NewBusinessError("JOB_NOT_READY", "Supplier has not marked the job ready", ErrJobNotReady)
		}
		now := utils.UTCNow()
		if err := f.jobRepo.ConfirmCourierReady(txCtx, current.ID, now); err != nil {
			return err
		}
		current.CourierConfirmedReady = utils.ToPtr(true)
		current.CourierConfirmedAt = &now
		job = current
		return nil
	})
	if err != nil {
		return nil, writeError("COURIER_CONFIRM_FAILED", "Failed to confirm courier readiness", err)
	}
	if job == nil {
		return jobNotFound(), nil
	}
	f.metricsFlow.Invalidate(ctx, job.SupplierID)

	out := ToSupplierJobDTO(job)
	return &dto.SupplierJobResponse{Message: "Courier confirmation recorded", Success: true, Job: &out}, nil
}

// RateSupplierJob stores a 1..10 rating on a completed job and folds it into the
// supplier's running totals. A repeated rating replaces the previous one.
func (f *SupplierJobFlowImpl) RateSupplierJob(ctx context.Context, jobID uint, req *dto.RateSupplierJobRequest) (*dto.SupplierJobResponse, error) {
	if req == nil || req.Rating < 1 || req.Rating > 10 {
		return nil, NewBusinessError("RATING_OUT_OF_RANGE", "Rating must be between 1 and 10", ErrRatingOutOfRange)
	}

	var job *models.SupplierJob
	err := f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := f.jobRepo.LockByID(txCtx, jobID)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		if !current.Status.IsCompleted() {
			return NewBusinessError("JOB_NOT_READY", "Only completed jobs can be rated", ErrJobNotReady)
		}
		if err := f.jobRepo.SetRating(txCtx, current.ID, req.Rating); err != nil {
			return err
		}
		totalDelta, countDelta := int64(req.Rating), int64(1)
		if current.Rating != nil {
			totalDelta -= int64(*current.Rating)
			countDelta = 0
		}
		if err := f.userRepo.AddRating(txCtx, current.SupplierID, totalDelta, countDelta); err != nil {
			return err
		}
		rating := req.Rating
		current.Rating = &rating
		job = current
		return nil
	})
	if err != nil {
		return nil, writeError("RATE_JOB_FAILED", "Failed to rate supplier job", err)
	}
	if job == nil {
		return jobNotFound(), nil
	}
	f.metricsFlow.Invalidate(ctx, job.SupplierID)

	out := ToSupplierJobDTO(job)
	return &dto.SupplierJobResponse{Message: "Supplier job rated", Success: true, Job: &out}, nil
}

// RecordCourierEvent marks a quote item as picked up or delivered by the courier.
func (f *SupplierJobFlowImpl) RecordCourierEvent(ctx context.Context, quoteItemID uint, req *dto.CourierEventRequest) (*dto.CourierEventResponse, error) {
	if req == nil || (req.Event != "picked_up" && req.Event != "delivered") {
		return nil, NewBusinessError("INVALID_COURIER_EVENT", "Event must be picked_up or delivered", ErrInvalidCourierEvent)
	}

	var item *models.QuoteItem
	err := f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := f.itemRepo.ByID(txCtx, quoteItemID)
		if err != nil {
			return err
		}
		if current == nil {
			return nil
		}
		now := utils.UTCNow()
		switch req.Event {
		case "picked_up":
			if utils.IsTrue(current.CourierPickedUp) {
				item = current
				return nil
			}
			if err := f.itemRepo.SetCourierPickedUp(txCtx, current.ID, now); err != nil {
				return err
			}
			current.CourierPickedUp = utils.ToPtr(true)
			current.CourierPickedUpAt = &now
		case "delivered":
			if !utils.IsTrue(current.CourierPickedUp) {
				return NewBusinessError("NOT_PICKED_UP", "Item must be picked up before delivery", ErrCourierDeliveryBeforePickup)
			}
			if utils.IsTrue(current.CourierDelivered) {
				item = current
				return nil
			}
			if err := f.itemRepo.SetCourierDelivered(txCtx, current.ID, now); err != nil {
				return err
			}
			current.CourierDelivered = utils.ToPtr(true)
			current.CourierDeliveredAt = &now
		}
		item = current
		return nil
	})
	if err != nil {
		return nil, writeError("COURIER_EVENT_FAILED", "Failed to record courier event", err)
	}
	if item == nil {
		return &dto.CourierEventResponse{Message: "Quote item not found", Success: false}, nil
	}

	out := ToQuoteItemDTO(item)
	return &dto.CourierEventResponse{Message: "Courier event recorded", Success: true, Item: &out}, nil
}
