// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/amirphl/printshop/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UserRepository defines operations for customers, suppliers and staff
type UserRepository interface {
	Repository[models.User, models.UserFilter]
	ByIDs(ctx context.Context, ids []uint) ([]*models.User, error)
	ListActiveSuppliers(ctx context.Context) ([]*models.User, error)
	AddRating(ctx context.Context, userID uint, totalDelta, countDelta int64) error
}

// ProductUnitRepository defines read operations over the priced catalog units
type ProductUnitRepository interface {
	Repository[models.ProductUnit, models.ProductUnitFilter]
	ByIDsWithProduct(ctx context.Context, ids []uint) ([]*models.ProductUnit, error)
	CategoriesByUnitIDs(ctx context.Context, ids []uint) (map[uint]uint, error)
	AllUnitCategories(ctx context.Context) (map[uint]uint, error)
}

// SupplierPriceRepository defines operations for supplier price rows
type SupplierPriceRepository interface {
	Repository[models.SupplierPrice, models.SupplierPriceFilter]
	BySupplierAndUnit(ctx context.Context, supplierID, productUnitID uint) (*models.SupplierPrice, error)
	ListActiveByProductUnits(ctx context.Context, productUnitIDs []uint) ([]*models.SupplierPrice, error)
	Upsert(ctx context.Context, price *models.SupplierPrice) error
	AveragePrice(ctx context.Context, productUnitID *uint) (float64, error)
}

// SupplierJobRepository defines operations for supplier fulfillment history
type SupplierJobRepository interface {
	Repository[models.SupplierJob, models.SupplierJobFilter]
	LockByID(ctx context.Context, id uint) (*models.SupplierJob, error)
	ListBySupplier(ctx context.Context, supplierID uint) ([]*models.SupplierJob, error)
	ListByQuote(ctx context.Context, quoteID uint) ([]*models.SupplierJob, error)
	CreateForQuoteItems(ctx context.Context, jobs []*models.SupplierJob) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status models.SupplierJobStatus, readyAt *time.Time) error
	ConfirmCourierReady(ctx context.Context, id uint, at time.Time) error
	SetRating(ctx context.Context, id uint, rating int) error
}

// QuoteRepository defines operations for versioned quotes
type QuoteRepository interface {
	Repository[models.Quote, models.QuoteFilter]
	ByUUID(ctx context.Context, uuid string) (*models.Quote, error)
	LockByID(ctx context.Context, id uint) (*models.Quote, error)
	ListByParentIDs(ctx context.Context, parentIDs []uint) ([]*models.Quote, error)
	UpdateStatus(ctx context.Context, id uint, status models.QuoteStatus, rejectionReason *string) error
	SetDealRating(ctx context.Context, id uint, rating int) error
	RecalculateTotals(ctx context.Context, id uint) (totalSupplierCost, finalValue float64, err error)
}

// QuoteItemRepository defines operations for quote line items
type QuoteItemRepository interface {
	Repository[models.QuoteItem, models.QuoteItemFilter]
	ListByQuote(ctx context.Context, quoteID uint) ([]*models.QuoteItem, error)
	ApplySelection(ctx context.Context, quoteID uint, sel models.QuoteItemSelection) (bool, error)
	SetCourierPickedUp(ctx context.Context, id uint, at time.Time) error
	SetCourierDelivered(ctx context.Context, id uint, at time.Time) error
}

// ScoringWeightsRepository defines operations for the singleton scoring weights row
type ScoringWeightsRepository interface {
	Get(ctx context.Context) (models.ScoringWeights, error)
	Set(ctx context.Context, weights models.ScoringWeights) error
}
