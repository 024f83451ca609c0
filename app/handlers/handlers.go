// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/amirphl/printshop/app/dto"
	businessflow "github.com/amirphl/printshop/business_flow"
	"github.com/amirphl/printshop/utils"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// baseHandler carries the response helpers shared by every handler
type baseHandler struct {
	validator *validator.Validate
}

func newBaseHandler() baseHandler {
	return baseHandler{validator: validator.New()}
}

func (h *baseHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *baseHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

func (h *baseHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), utils.DefaultRequestTimeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, utils.DefaultRequestTimeout)
	return ctx, cancel
}

// bindAndValidate decodes the JSON body into req and runs struct validation.
// On failure the error response has already been written and ok is false.
func (h *baseHandler) bindAndValidate(c fiber.Ctx, req any) (bool, error) {
	if err := c.Bind().JSON(req); err != nil {
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", err.Error())
		}
		var validationErrors []string
		for _, fe := range verrs {
			validationErrors = append(validationErrors, getValidationErrorMessage(fe))
		}
		return false, h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	return true, nil
}

// idParam parses a positive integer path parameter.
func (h *baseHandler) idParam(c fiber.Ctx, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

// flowError maps a business flow error onto an HTTP response.
func (h *baseHandler) flowError(c fiber.Ctx, err error, fallbackCode, fallbackMessage string) error {
	var be *businessflow.BusinessError
	code, message := fallbackCode, fallbackMessage
	if errors.As(err, &be) {
		code, message = be.Code, be.Message
	}

	switch {
	case businessflow.IsStorageUnavailable(err):
		return h.ErrorResponse(c, fiber.StatusServiceUnavailable, "Storage is temporarily unavailable", "STORAGE_UNAVAILABLE", nil)
	case businessflow.IsValidationError(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, message, code, nil)
	case businessflow.IsConflictError(err):
		return h.ErrorResponse(c, fiber.StatusConflict, message, code, nil)
	}
	log.Printf("%s: %v", fallbackCode, err)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	default:
		return err.Field() + " is invalid"
	}
}
