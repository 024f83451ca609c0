package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/amirphl/printshop/app/dto"
	businessflow "github.com/amirphl/printshop/business_flow"
	"github.com/amirphl/printshop/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLifecycle struct {
	businessflow.QuoteLifecycleFlow
	updateErr error
	found     bool
}

func (s *stubLifecycle) UpdateQuoteStatus(ctx context.Context, quoteID uint, req *dto.UpdateQuoteStatusRequest) (*dto.UpdateQuoteStatusResponse, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &dto.UpdateQuoteStatusResponse{Message: "ok", Success: s.found, QuoteID: quoteID, Status: req.Status, Changed: s.found}, nil
}

func (s *stubLifecycle) GetQuote(ctx context.Context, quoteID uint) (*dto.QuoteResponse, error) {
	if !s.found {
		return &dto.QuoteResponse{Message: "Quote not found"}, nil
	}
	return &dto.QuoteResponse{Message: "Quote retrieved", Quote: &dto.Quote{ID: quoteID, Status: "draft"}}, nil
}

type stubSelection struct {
	businessflow.SelectionFlow
	err error
}

func (s *stubSelection) SelectSupplierForItems(ctx context.Context, quoteID uint, req *dto.SelectSupplierRequest) (*dto.SelectSupplierResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SelectSupplierResponse{Message: "Supplier selected", Success: true, QuoteID: quoteID}, nil
}

func newQuoteApp(lc *stubLifecycle, sel *stubSelection) *fiber.App {
	h := NewQuoteHandler(lc, sel)
	app := fiber.New()
	app.Get("/quotes/:id", h.Get)
	app.Patch("/quotes/:id/status", h.UpdateStatus)
	app.Post("/quotes/:id/selection", h.SelectSupplier)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, dto.APIResponse) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out dto.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func errorCode(t *testing.T, out dto.APIResponse) string {
	t.Helper()
	m, ok := out.Error.(map[string]any)
	require.True(t, ok, "error detail missing")
	code, _ := m["code"].(string)
	return code
}

func TestUpdateStatusMapsErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "conflict",
			err:        businessflow.NewBusinessError("INVALID_STATUS_TRANSITION", "nope", businessflow.ErrInvalidStatusTransition),
			wantStatus: http.StatusConflict,
			wantCode:   "INVALID_STATUS_TRANSITION",
		},
		{
			name:       "validation",
			err:        businessflow.NewBusinessError("REJECTION_REASON_REQUIRED", "reason", businessflow.ErrRejectionReasonRequired),
			wantStatus: http.StatusBadRequest,
			wantCode:   "REJECTION_REASON_REQUIRED",
		},
		{
			name:       "storage",
			err:        businessflow.NewBusinessError("STORAGE_UNAVAILABLE", "down", fmt.Errorf("dial: %w", repository.ErrStorageUnavailable)),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "STORAGE_UNAVAILABLE",
		},
		{
			name:       "unexpected",
			err:        fmt.Errorf("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "QUOTE_STATUS_FAILED",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newQuoteApp(&stubLifecycle{updateErr: tt.err}, &stubSelection{})
			status, out := doJSON(t, app, http.MethodPatch, "/quotes/7/status", `{"status":"sent"}`)
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, out.Success)
			assert.Equal(t, tt.wantCode, errorCode(t, out))
		})
	}
}

func TestUpdateStatusValidatesBody(t *testing.T) {
	app := newQuoteApp(&stubLifecycle{found: true}, &stubSelection{})

	status, out := doJSON(t, app, http.MethodPatch, "/quotes/7/status", `{"status":"superseded"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, out))

	status, _ = doJSON(t, app, http.MethodPatch, "/quotes/abc/status", `{"status":"sent"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, out = doJSON(t, app, http.MethodPatch, "/quotes/7/status", `{"status":"sent"}`)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
}

func TestNotFoundMapsTo404(t *testing.T) {
	app := newQuoteApp(&stubLifecycle{found: false}, &stubSelection{})

	status, out := doJSON(t, app, http.MethodGet, "/quotes/7", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "QUOTE_NOT_FOUND", errorCode(t, out))

	status, _ = doJSON(t, app, http.MethodPatch, "/quotes/7/status", `{"status":"sent"}`)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSelectSupplierValidation(t *testing.T) {
	app := newQuoteApp(&stubLifecycle{}, &stubSelection{})

	status, out := doJSON(t, app, http.MethodPost, "/quotes/7/selection", `{"supplier_id":3,"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, out))

	status, out = doJSON(t, app, http.MethodPost, "/quotes/7/selection",
		`{"supplier_id":3,"items":[{"quote_item_id":1,"product_unit_id":2,"price_per_unit":10,"delivery_days":2}]}`)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
}

func TestSelectSupplierConflict(t *testing.T) {
	err := businessflow.NewBusinessError("ITEM_NOT_IN_QUOTE", "Item 9 is not part of quote 7", businessflow.ErrItemNotInQuote)
	app := newQuoteApp(&stubLifecycle{}, &stubSelection{err: err})

	status, out := doJSON(t, app, http.MethodPost, "/quotes/7/selection",
		`{"supplier_id":3,"items":[{"quote_item_id":9,"product_unit_id":2,"price_per_unit":10,"delivery_days":2}]}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ITEM_NOT_IN_QUOTE", errorCode(t, out))
	assert.Equal(t, "Item 9 is not part of quote 7", out.Message)
}

type stubMetrics struct {
	businessflow.SupplierMetricsFlow
	got dto.SupplierMetricsQuery
	err error
}

func (s *stubMetrics) GetSupplierMetrics(ctx context.Context, supplierID uint, query dto.SupplierMetricsQuery) (*dto.SupplierMetricsResponse, error) {
	s.got = query
	if s.err != nil {
		return nil, s.err
	}
	return &dto.SupplierMetricsResponse{Message: "Supplier metrics retrieved", Found: true}, nil
}

func newSupplierApp(m *stubMetrics) *fiber.App {
	h := NewSupplierHandler(nil, m, nil)
	app := fiber.New()
	app.Get("/suppliers/:id/metrics", h.Metrics)
	return app
}

func TestSupplierMetricsScopedByProductUnit(t *testing.T) {
	m := &stubMetrics{}
	app := newSupplierApp(m)

	status, out := doJSON(t, app, http.MethodGet, "/suppliers/3/metrics?product_unit_id=12", "")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, out.Success)
	require.NotNil(t, m.got.ProductUnitID)
	assert.Equal(t, uint(12), *m.got.ProductUnitID)
	assert.Nil(t, m.got.CategoryID)

	status, out = doJSON(t, app, http.MethodGet, "/suppliers/3/metrics?product_unit_id=abc", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, out))
}

func TestSupplierMetricsUnknownProductUnit(t *testing.T) {
	err := businessflow.NewBusinessError("UNKNOWN_PRODUCT_UNIT", "Product unit 12 does not exist", businessflow.ErrUnknownUnit)
	app := newSupplierApp(&stubMetrics{err: err})

	status, out := doJSON(t, app, http.MethodGet, "/suppliers/3/metrics?product_unit_id=12", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "UNKNOWN_PRODUCT_UNIT", errorCode(t, out))
}
