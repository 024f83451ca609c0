package handlers

import (
	"github.com/amirphl/printshop/app/dto"
	businessflow "github.com/amirphl/printshop/business_flow"
	"github.com/gofiber/fiber/v3"
)

// ScoringSettingsHandlerInterface defines the contract for scoring settings handlers
type ScoringSettingsHandlerInterface interface {
	GetWeights(c fiber.Ctx) error
	SetWeights(c fiber.Ctx) error
}

// ScoringSettingsHandler exposes the weighted model's weights
type ScoringSettingsHandler struct {
	baseHandler
	flow businessflow.ScoringSettingsFlow
}

func NewScoringSettingsHandler(flow businessflow.ScoringSettingsFlow) *ScoringSettingsHandler {
	return &ScoringSettingsHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// GetWeights
// @Summary Get scoring weights
// @Tags Scoring
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ScoringWeightsResponse}
// @Router /api/v1/scoring/weights [get]
func (h *ScoringSettingsHandler) GetWeights(c fiber.Ctx) error {
	ctx, cancel := h.createRequestContext(c, "/api/v1/scoring/weights")
	defer cancel()

	res, err := h.flow.GetWeights(ctx)
	if err != nil {
		return h.flowError(c, err, "GET_WEIGHTS_FAILED", "Failed to retrieve scoring weights")
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// SetWeights
// @Summary Set scoring weights
// @Tags Scoring
// @Accept json
// @Produce json
// @Param request body dto.ScoringWeights true "Weights summing to 100"
// @Success 200 {object} dto.APIResponse{data=dto.ScoringWeightsResponse}
// @Failure 400 {object} dto.APIResponse
// @Router /api/v1/scoring/weights [put]
func (h *ScoringSettingsHandler) SetWeights(c fiber.Ctx) error {
	var req dto.ScoringWeights
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/scoring/weights")
	defer cancel()

	res, err := h.flow.SetWeights(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "WEIGHTS_SAVE_FAILED", "Failed to save scoring weights")
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}
