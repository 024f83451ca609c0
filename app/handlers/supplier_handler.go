package handlers

import (
	"strconv"

	"github.com/amirphl/printshop/app/dto"
	businessflow "github.com/amirphl/printshop/business_flow"
	"github.com/gofiber/fiber/v3"
)

// SupplierHandlerInterface defines the contract for supplier handlers
type SupplierHandlerInterface interface {
	UpsertPrice(c fiber.Ctx) error
	ListPrices(c fiber.Ctx) error
	Metrics(c fiber.Ctx) error
	UpdateJobStatus(c fiber.Ctx) error
	ConfirmCourierReady(c fiber.Ctx) error
	RateJob(c fiber.Ctx) error
	CourierEvent(c fiber.Ctx) error
}

// SupplierHandler handles supplier prices, metrics and production jobs
type SupplierHandler struct {
	baseHandler
	prices  businessflow.SupplierPriceFlow
	metrics businessflow.SupplierMetricsFlow
	jobs    businessflow.SupplierJobFlow
}

func NewSupplierHandler(
	prices businessflow.SupplierPriceFlow,
	metrics businessflow.SupplierMetricsFlow,
	jobs businessflow.SupplierJobFlow,
) *SupplierHandler {
	return &SupplierHandler{
		baseHandler: newBaseHandler(),
		prices:      prices,
		metrics:     metrics,
		jobs:        jobs,
	}
}

// UpsertPrice creates or replaces a supplier's price for a unit
// @Summary Upsert supplier price
// @Tags Suppliers
// @Accept json
// @Produce json
// @Param request body dto.UpsertSupplierPriceRequest true "Price"
// @Success 200 {object} dto.APIResponse{data=dto.SupplierPriceResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/supplier-prices [put]
func (h *SupplierHandler) UpsertPrice(c fiber.Ctx) error {
	var req dto.UpsertSupplierPriceRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/supplier-prices")
	defer cancel()

	res, err := h.prices.UpsertPrice(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "PRICE_UPSERT_FAILED", "Failed to save supplier price")
	}
	if res.Price == nil {
		return h.ErrorResponse(c, fiber.StatusNotFound, res.Message, "NOT_FOUND", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// ListPrices lists the active supplier prices of a unit
// @Summary List unit prices
// @Tags Suppliers
// @Produce json
// @Param id path int true "Product unit id"
// @Success 200 {object} dto.APIResponse{data=dto.ListSupplierPricesResponse}
// @Router /api/v1/product-units/{id}/prices [get]
func (h *SupplierHandler) ListPrices(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product unit id", "VALIDATION_ERROR", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/product-units/:id/prices")
	defer cancel()

	res, err := h.prices.ListForUnit(ctx, id)
	if err != nil {
		return h.flowError(c, err, "LIST_PRICES_FAILED", "Failed to list supplier prices")
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// Metrics returns a supplier's aggregated performance metrics
// @Summary Supplier metrics
// @Tags Suppliers
// @Produce json
// @Param id path int true "Supplier id"
// @Param category_id query int false "Category to compute expertise for"
// @Param product_unit_id query int false "Product unit whose category scopes the expertise"
// @Success 200 {object} dto.APIResponse{data=dto.SupplierMetricsResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/suppliers/{id}/metrics [get]
func (h *SupplierHandler) Metrics(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid supplier id", "VALIDATION_ERROR", nil)
	}
	var query dto.SupplierMetricsQuery
	if query.CategoryID, ok = optionalIDQuery(c, "category_id"); !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid category_id", "VALIDATION_ERROR", nil)
	}
	if query.ProductUnitID, ok = optionalIDQuery(c, "product_unit_id"); !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid product_unit_id", "VALIDATION_ERROR", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/suppliers/:id/metrics")
	defer cancel()

	res, err := h.metrics.GetSupplierMetrics(ctx, id, query)
	if err != nil {
		return h.flowError(c, err, "SUPPLIER_METRICS_FAILED", "Failed to compute supplier metrics")
	}
	if !res.Found {
		return h.ErrorResponse(c, fiber.StatusNotFound, res.Message, "SUPPLIER_NOT_FOUND", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// UpdateJobStatus moves a supplier job through production
// @Summary Update supplier job status
// @Tags Supplier Jobs
// @Accept json
// @Produce json
// @Param id path int true "Job id"
// @Param request body dto.UpdateSupplierJobStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.SupplierJobResponse}
// @Failure 409 {object} dto.APIResponse
// @Router /api/v1/supplier-jobs/{id}/status [patch]
func (h *SupplierHandler) UpdateJobStatus(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job id", "VALIDATION_ERROR", nil)
	}
	var req dto.UpdateSupplierJobStatusRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/supplier-jobs/:id/status")
	defer cancel()

	res, err := h.jobs.UpdateJobStatus(ctx, id, &req)
	if err != nil {
		return h.flowError(c, err, "JOB_STATUS_FAILED", "Failed to update supplier job")
	}
	return h.jobResponse(c, res)
}

// ConfirmCourierReady records the courier's confirmation that a job was ready
// @Summary Confirm courier readiness
// @Tags Supplier Jobs
// @Produce json
// @Param id path int true "Job id"
// @Success 200 {object} dto.APIResponse{data=dto.SupplierJobResponse}
// @Router /api/v1/supplier-jobs/{id}/courier-confirm [post]
func (h *SupplierHandler) ConfirmCourierReady(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job id", "VALIDATION_ERROR", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/supplier-jobs/:id/courier-confirm")
	defer cancel()

	res, err := h.jobs.ConfirmCourierReady(ctx, id)
	if err != nil {
		return h.flowError(c, err, "COURIER_CONFIRM_FAILED", "Failed to confirm courier readiness")
	}
	return h.jobResponse(c, res)
}

// RateJob rates a completed supplier job
// @Summary Rate supplier job
// @Tags Supplier Jobs
// @Accept json
// @Produce json
// @Param id path int true "Job id"
// @Param request body dto.RateSupplierJobRequest true "Rating 1..10"
// @Success 200 {object} dto.APIResponse{data=dto.SupplierJobResponse}
// @Router /api/v1/supplier-jobs/{id}/rating [post]
func (h *SupplierHandler) RateJob(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid job id", "VALIDATION_ERROR", nil)
	}
	var req dto.RateSupplierJobRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/supplier-jobs/:id/rating")
	defer cancel()

	res, err := h.jobs.RateSupplierJob(ctx, id, &req)
	if err != nil {
		return h.flowError(c, err, "RATE_JOB_FAILED", "Failed to rate supplier job")
	}
	return h.jobResponse(c, res)
}

// CourierEvent records a courier pickup or delivery of a quote item
// @Summary Courier event
// @Tags Supplier Jobs
// @Accept json
// @Produce json
// @Param id path int true "Quote item id"
// @Param request body dto.CourierEventRequest true "Event"
// @Success 200 {object} dto.APIResponse{data=dto.CourierEventResponse}
// @Router /api/v1/quote-items/{id}/courier [post]
func (h *SupplierHandler) CourierEvent(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote item id", "VALIDATION_ERROR", nil)
	}
	var req dto.CourierEventRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quote-items/:id/courier")
	defer cancel()

	res, err := h.jobs.RecordCourierEvent(ctx, id, &req)
	if err != nil {
		return h.flowError(c, err, "COURIER_EVENT_FAILED", "Failed to record courier event")
	}
	if !res.Success {
		return h.ErrorResponse(c, fiber.StatusNotFound, res.Message, "QUOTE_ITEM_NOT_FOUND", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

func (h *SupplierHandler) jobResponse(c fiber.Ctx, res *dto.SupplierJobResponse) error {
	if !res.Success {
		return h.ErrorResponse(c, fiber.StatusNotFound, res.Message, "SUPPLIER_JOB_NOT_FOUND", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// optionalIDQuery parses a positive id query parameter; absent yields nil.
func optionalIDQuery(c fiber.Ctx, key string) (*uint, bool) {
	v := c.Query(key)
	if v == "" {
		return nil, true
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil || n == 0 {
		return nil, false
	}
	id := uint(n)
	return &id, true
}
