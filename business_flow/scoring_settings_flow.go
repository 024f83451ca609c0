package businessflow

import (
	"context"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/repository"
	"github.com/amirphl/printshop/scoring"
)

// ScoringSettingsFlow reads and updates the weighted model's weights
type ScoringSettingsFlow interface {
	GetWeights(ctx context.Context) (*dto.ScoringWeightsResponse, error)
	SetWeights(ctx context.Context, req *dto.ScoringWeights) (*dto.ScoringWeightsResponse, error)
}

// ScoringSettingsFlowImpl implements ScoringSettingsFlow
type ScoringSettingsFlowImpl struct {
	weightsRepo repository.ScoringWeightsRepository
	activeModel string
}

func NewScoringSettingsFlow(weightsRepo repository.ScoringWeightsRepository, activeModel string) ScoringSettingsFlow {
	if activeModel == "" {
		activeModel = scoring.ModelBounded
	}
	return &ScoringSettingsFlowImpl{weightsRepo: weightsRepo, activeModel: activeModel}
}

func toWeightsDTO(w models.ScoringWeights) dto.ScoringWeights {
	return dto.ScoringWeights{
		Price:        w.Price,
		Rating:       w.Rating,
		DeliveryTime: w.DeliveryTime,
		Reliability:  w.Reliability,
	}
}

func (f *ScoringSettingsFlowImpl) GetWeights(ctx context.Context) (*dto.ScoringWeightsResponse, error) {
	w, err := f.weightsRepo.Get(ctx)
	if err != nil {
		if !degradedRead("scoring weights", err) {
			return nil, err
		}
		w = models.DefaultScoringWeights()
	}
	return &dto.ScoringWeightsResponse{
		Message:     "Scoring weights retrieved",
		ActiveModel: f.activeModel,
		Weights:     toWeightsDTO(w),
	}, nil
}

// SetWeights validates and stores new weights. Each must be within 0..100 and they must sum to 100.
func (f *ScoringSettingsFlowImpl) SetWeights(ctx context.Context, req *dto.ScoringWeights) (*dto.ScoringWeightsResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_WEIGHTS", "Weights are required", ErrInvalidWeights)
	}
	w := models.ScoringWeights{
		ID:           models.ScoringWeightsID,
		Price:        req.Price,
		Rating:       req.Rating,
		DeliveryTime: req.DeliveryTime,
		Reliability:  req.Reliability,
	}
	if err := w.Validate(); err != nil {
		return nil, NewBusinessError("INVALID_WEIGHTS", err.Error(), ErrInvalidWeights)
	}
	if err := f.weightsRepo.Set(ctx, w); err != nil {
		return nil, writeError("WEIGHTS_SAVE_FAILED", "Failed to save scoring weights", err)
	}
	return &dto.ScoringWeightsResponse{
		Message:     "Scoring weights updated",
		ActiveModel: f.activeModel,
		Weights:     toWeightsDTO(w),
	}, nil
}
