package handlers

import (
	"github.com/amirphl/printshop/app/dto"
	businessflow "github.com/amirphl/printshop/business_flow"
	"github.com/gofiber/fiber/v3"
)

// QuoteHandlerInterface defines the contract for quote handlers
type QuoteHandlerInterface interface {
	Create(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	Revise(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Reject(c fiber.Ctx) error
	RateDeal(c fiber.Ctx) error
	History(c fiber.Ctx) error
	Document(c fiber.Ctx) error
	SelectSupplier(c fiber.Ctx) error
	AutoSelect(c fiber.Ctx) error
}

// QuoteHandler handles quote lifecycle and supplier selection requests
type QuoteHandler struct {
	baseHandler
	lifecycle businessflow.QuoteLifecycleFlow
	selection businessflow.SelectionFlow
}

func NewQuoteHandler(lifecycle businessflow.QuoteLifecycleFlow, selection businessflow.SelectionFlow) *QuoteHandler {
	return &QuoteHandler{
		baseHandler: newBaseHandler(),
		lifecycle:   lifecycle,
		selection:   selection,
	}
}

func (h *QuoteHandler) quoteNotFound(c fiber.Ctx) error {
	return h.ErrorResponse(c, fiber.StatusNotFound, "Quote not found", "QUOTE_NOT_FOUND", nil)
}

// Create requests a new draft quote
// @Summary Request quote
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body dto.CreateQuoteRequest true "Quote items"
// @Success 201 {object} dto.APIResponse{data=dto.QuoteResponse}
// @Failure 400 {object} dto.APIResponse
// @Router /api/v1/quotes [post]
func (h *QuoteHandler) Create(c fiber.Ctx) error {
	var req dto.CreateQuoteRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes")
	defer cancel()

	res, err := h.lifecycle.RequestQuote(ctx, &req)
	if err != nil {
		return h.flowError(c, err, "QUOTE_CREATE_FAILED", "Failed to create quote")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, res.Message, res)
}

// Get returns one quote version with its items
// @Summary Get quote
// @Tags Quotes
// @Produce json
// @Param id path int true "Quote id"
// @Success 200 {object} dto.APIResponse{data=dto.QuoteResponse}
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/quotes/{id} [get]
func (h *QuoteHandler) Get(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote id", "VALIDATION_ERROR", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:id")
	defer cancel()

	res, err := h.lifecycle.GetQuote(ctx, id)
	if err != nil {
		return h.flowError(c, err, "GET_QUOTE_FAILED", "Failed to retrieve quote")
	}
	if res.Quote == nil {
		return h.quoteNotFound(c)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// Revise supersedes the quote and creates its next version
// @Summary Revise quote
// @Tags Quotes
// @Produce json
// @Param id path int true "Quote id"
// @Success 201 {object} dto.APIResponse{data=dto.ReviseQuoteResponse}
// @Failure 404 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /api/v1/quotes/{id}/revise [post]
func (h *QuoteHandler) Revise(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote id", "VALIDATION_ERROR", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:id/revise")
	defer cancel()

	res, err := h.lifecycle.ReviseQuote(ctx, id)
	if err != nil {
		return h.flowError(c, err, "QUOTE_REVISE_FAILED", "Failed to revise quote")
	}
	if !res.Success {
		return h.quoteNotFound(c)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, res.Message, res)
}

// UpdateStatus changes the quote status directly
// @Summary Update quote status
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote id"
// @Param request body dto.UpdateQuoteStatusRequest true "Target status"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateQuoteStatusResponse}
// @Failure 400 {object} dto.APIResponse
// @Failure 409 {object} dto.APIResponse
// @Router /api/v1/quotes/{id}/status [patch]
func (h *QuoteHandler) UpdateStatus(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote id", "VALIDATION_ERROR", nil)
	}
	var req dto.UpdateQuoteStatusRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:id/status")
	defer cancel()

	res, err := h.lifecycle.UpdateQuoteStatus(ctx, id, &req)
	if err != nil {
		return h.flowError(c, err, "QUOTE_STATUS_FAILED", "Failed to update quote status")
	}
	if !res.Success {
		return h.quoteNotFound(c)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// Reject rejects a sent quote with a reason
// @Summary Reject quote
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote id"
// @Param request body dto.RejectQuoteRequest true "Rejection reason"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateQuoteStatusResponse}
// @Router /api/v1/quotes/{id}/reject [post]
func (h *QuoteHandler) Reject(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote id", "VALIDATION_ERROR", nil)
	}
	var req dto.RejectQuoteRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:id/reject")
	defer cancel()

	res, err := h.lifecycle.RejectQuote(ctx, id, &req)
	if err != nil {
		return h.flowError(c, err, "QUOTE_REJECT_FAILED", "Failed to reject quote")
	}
	if !res.Success {
		return h.quoteNotFound(c)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// RateDeal stores the customer's rating of the deal
// @Summary Rate deal
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote id"
// @Param request body dto.RateDealRequest true "Rating 1..10"
// @Success 200 {object} dto.APIResponse{data=dto.RateDealResponse}
// @Router /api/v1/quotes/{id}/rating [post]
func (h *QuoteHandler) RateDeal(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote id", "VALIDATION_ERROR", nil)
	}
	var req dto.RateDealRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:id/rating")
	defer cancel()

	res, err := h.lifecycle.RateDeal(ctx, id, &req)
	if err != nil {
		return h.flowError(c, err, "RATE_DEAL_FAILED", "Failed to rate deal")
	}
	if !res.Success {
		return h.quoteNotFound(c)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// History lists every version of the quote's revision chain
// @Summary Quote history
// @Tags Quotes
// @Produce json
// @Param id path int true "Quote id"
// @Success 200 {object} dto.APIResponse{data=dto.QuoteHistoryResponse}
// @Router /api/v1/quotes/{id}/history [get]
func (h *QuoteHandler) History(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote id", "VALIDATION_ERROR", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:id/history")
	defer cancel()

	res, err := h.lifecycle.History(ctx, id)
	if err != nil {
		return h.flowError(c, err, "QUOTE_HISTORY_FAILED", "Failed to retrieve quote history")
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// Document renders the quote as a PDF
// @Summary Quote PDF
// @Tags Quotes
// @Produce application/pdf
// @Param id path int true "Quote id"
// @Success 200 {file} file
// @Failure 404 {object} dto.APIResponse
// @Router /api/v1/quotes/{id}/document [get]
func (h *QuoteHandler) Document(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote id", "VALIDATION_ERROR", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:id/document")
	defer cancel()

	filename, data, err := h.lifecycle.QuoteDocument(ctx, id)
	if err != nil {
		return h.flowError(c, err, "QUOTE_DOCUMENT_FAILED", "Failed to render quote document")
	}
	if data == nil {
		return h.quoteNotFound(c)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", "inline; filename="+filename)
	return c.Send(data)
}

// SelectSupplier commits one supplier's prices onto several quote items
// @Summary Select supplier for items
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote id"
// @Param request body dto.SelectSupplierRequest true "Supplier and item prices"
// @Success 200 {object} dto.APIResponse{data=dto.SelectSupplierResponse}
// @Failure 409 {object} dto.APIResponse
// @Failure 503 {object} dto.APIResponse
// @Router /api/v1/quotes/{id}/selection [post]
func (h *QuoteHandler) SelectSupplier(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote id", "VALIDATION_ERROR", nil)
	}
	var req dto.SelectSupplierRequest
	if ok, err := h.bindAndValidate(c, &req); !ok {
		return err
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:id/selection")
	defer cancel()

	res, err := h.selection.SelectSupplierForItems(ctx, id, &req)
	if err != nil {
		return h.flowError(c, err, "SELECTION_FAILED", "Failed to commit supplier selection")
	}
	if !res.Success {
		return h.ErrorResponse(c, fiber.StatusNotFound, res.Message, "NOT_FOUND", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// AutoSelect commits the best-ranked supplier for every item of the quote
// @Summary Auto-populate suppliers
// @Tags Quotes
// @Produce json
// @Param id path int true "Quote id"
// @Success 200 {object} dto.APIResponse{data=dto.AutoSelectResponse}
// @Failure 409 {object} dto.APIResponse
// @Router /api/v1/quotes/{id}/auto-select [post]
func (h *QuoteHandler) AutoSelect(c fiber.Ctx) error {
	id, ok := h.idParam(c, "id")
	if !ok {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote id", "VALIDATION_ERROR", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/v1/quotes/:id/auto-select")
	defer cancel()

	res, err := h.selection.AutoSelect(ctx, id)
	if err != nil {
		return h.flowError(c, err, "AUTO_SELECT_FAILED", "Failed to auto-select suppliers")
	}
	if !res.Success {
		return h.quoteNotFound(c)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}
