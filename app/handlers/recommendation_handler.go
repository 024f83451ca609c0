package handlers

import (
	"strconv"

	"github.com/amirphl/printshop/app/dto"
	businessflow "github.com/amirphl/printshop/business_flow"
	"github.com/gofiber/fiber/v3"
)

// RecommendationHandlerInterface defines the contract for recommendation handlers
type RecommendationHandlerInterface interface {
	Generate(c fiber.Ctx) error
	Export(c fiber.Ctx) error
	MarketPrice(c fiber.Ctx) error
}

// RecommendationHandler serves ranked supplier recommendations
type RecommendationHandler struct {
	baseHandler
	flow businessflow.RecommendationFlow
}

func NewRecommendationHandler(flow businessflow.RecommendationFlow) *RecommendationHandler {
	return &RecommendationHandler{
		baseHandler: newBaseHandler(),
		flow:        flow,
	}
}

// Generate ranks suppliers for each requested item
// @Summary Generate supplier recommendations
// @Tags Recommendations
// @Accept json
// @Produce json
// @Param request body dto.GenerateRecommendationsRequest true "Items to recommend suppliers for"
// @Success 200 {object} dto.APIResponse{data=dto.GenerateRecommendationsResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 500 {object} dto.APIResponse
// @Router /api/v1/recommendations [post]
func (h *RecommendationHandler) Generate(c fiber.Ctx) error {
	var req dto.GenerateRecommendationsRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/recommendations")
	defer cancel()

	res, err := h.flow.GenerateRecommendations(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "RECOMMENDATION_FAILED", "Failed to generate recommendations")
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// Export returns the recommendations as an XLSX workbook
// @Summary Export supplier recommendations
// @Tags Recommendations
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body dto.GenerateRecommendationsRequest true "Items to recommend suppliers for"
// @Success 200 {file} file
// @Failure 400 {object} dto.APIResponse
// @Router /api/v1/recommendations/export [post]
func (h *RecommendationHandler) Export(c fiber.Ctx) error {
	var req dto.GenerateRecommendationsRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/recommendations/export")
	defer cancel()

	filename, data, err := h.flow.ExportRecommendations(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "RECOMMENDATION_EXPORT_FAILED", "Failed to export recommendations")
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// MarketPrice returns the average active price of a unit, or of all units when none is given
// @Summary Market price
// @Tags Recommendations
// @Produce json
// @Param product_unit_id query int false "Product unit id"
// @Success 200 {object} dto.APIResponse{data=dto.MarketPriceResponse}
// @Router /api/v1/market-price [get]
func (h *RecommendationHandler) MarketPrice(c fiber.Ctx) error {
	var unitID *uint
	if v := c.Query("product_unit_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil || id == 0 {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product_unit_id", "VALIDATION_ERROR", nil)
		}
		u := uint(id)
		unitID = &u
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/market-price")
	defer cancel()

	res, err := h.flow.MarketPrice(ctx, unitID)
	if err != nil {
		return h.flowError(c, err, "MARKET_PRICE_FAILED", "Failed to compute market price")
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}
