// Package businessflow contains the core business logic and use cases of the quoting engine
package businessflow

import (
	"errors"
	"fmt"

	"github.com/amirphl/printshop/repository"
)

// Business flow error constants
var (
	// Storage errors
	ErrStorageUnavailable = repository.ErrStorageUnavailable

	// Request errors
	ErrInvalidRequest  = errors.New("invalid request")
	ErrNoItems         = errors.New("at least one item is required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrInvalidPrice    = errors.New("price per unit must be positive")
	ErrInvalidDays     = errors.New("delivery days must not be negative")
	ErrInvalidMarkup   = errors.New("markup percent must not be negative")
	ErrUnknownUnit     = errors.New("product unit does not exist")
	ErrAmbiguousScope  = errors.New("scope by category or by product unit, not both")

	// Quote errors
	ErrInvalidQuoteStatus      = errors.New("invalid quote status")
	ErrInvalidStatusTransition = errors.New("status transition not allowed")
	ErrSupersedeViaRevise      = errors.New("quotes are superseded only by revising them")
	ErrRejectionReasonRequired = errors.New("rejection reason is required")
	ErrQuoteNotRevisable       = errors.New("quote cannot be revised in its current status")
	ErrQuoteNotEditable        = errors.New("quote items cannot change in its current status")
	ErrQuoteNotRateable        = errors.New("quote cannot be rated before it is approved")
	ErrItemNotInQuote          = errors.New("item does not belong to the quote")
	ErrItemUnitMismatch        = errors.New("item product unit does not match the quote item")
	ErrRatingOutOfRange        = errors.New("rating must be between 1 and 10")

	// Supplier errors
	ErrSupplierInactive            = errors.New("supplier is not an active supplier")
	ErrInvalidJobStatus            = errors.New("invalid supplier job status")
	ErrJobTransitionNotAllowed     = errors.New("supplier job transition not allowed")
	ErrJobNotReady                 = errors.New("supplier job has not been marked ready")
	ErrInvalidCourierEvent         = errors.New("invalid courier event")
	ErrCourierDeliveryBeforePickup = errors.New("item must be picked up before delivery")

	// Settings errors
	ErrInvalidWeights = errors.New("invalid scoring weights")

	// Concurrency errors
	ErrAutoSelectInProgress = errors.New("auto-select already running for this quote")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// writeError wraps a failed mutation. Connection failures get the STORAGE_UNAVAILABLE code.
func writeError(code, message string, err error) error {
	if repository.IsStorageUnavailable(err) {
		return NewBusinessError("STORAGE_UNAVAILABLE", "Storage is temporarily unavailable", err)
	}
	var be *BusinessError
	if errors.As(err, &be) {
		return err
	}
	return NewBusinessError(code, message, err)
}

func IsStorageUnavailable(err error) bool {
	return repository.IsStorageUnavailable(err)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrNoItems) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInvalidPrice) ||
		errors.Is(err, ErrInvalidDays) ||
		errors.Is(err, ErrInvalidMarkup) ||
		errors.Is(err, ErrUnknownUnit) ||
		errors.Is(err, ErrAmbiguousScope) ||
		errors.Is(err, ErrInvalidQuoteStatus) ||
		errors.Is(err, ErrRejectionReasonRequired) ||
		errors.Is(err, ErrRatingOutOfRange) ||
		errors.Is(err, ErrInvalidJobStatus) ||
		errors.Is(err, ErrInvalidCourierEvent) ||
		errors.Is(err, ErrInvalidWeights)
}

func IsConflictError(err error) bool {
	return errors.Is(err, ErrInvalidStatusTransition) ||
		errors.Is(err, ErrSupersedeViaRevise) ||
		errors.Is(err, ErrQuoteNotRevisable) ||
		errors.Is(err, ErrQuoteNotEditable) ||
		errors.Is(err, ErrQuoteNotRateable) ||
		errors.Is(err, ErrItemNotInQuote) ||
		errors.Is(err, ErrItemUnitMismatch) ||
		errors.Is(err, ErrSupplierInactive) ||
		errors.Is(err, ErrJobTransitionNotAllowed) ||
		errors.Is(err, ErrJobNotReady) ||
		errors.Is(err, ErrCourierDeliveryBeforePickup) ||
		errors.Is(err, ErrAutoSelectInProgress)
}

func IsItemNotInQuote(err error) bool {
	return errors.Is(err, ErrItemNotInQuote)
}

func IsRejectionReasonRequired(err error) bool {
	return errors.Is(err, ErrRejectionReasonRequired)
}

func IsInvalidStatusTransition(err error) bool {
	return errors.Is(err, ErrInvalidStatusTransition)
}

func IsRatingOutOfRange(err error) bool {
	return errors.Is(err, ErrRatingOutOfRange)
}

func IsInvalidWeights(err error) bool {
	return errors.Is(err, ErrInvalidWeights)
}
