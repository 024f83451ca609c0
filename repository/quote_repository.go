package repository

import (
	"context"

	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/utils"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuoteRepositoryImpl implements QuoteRepository interface
type QuoteRepositoryImpl struct {
	*BaseRepository[models.Quote, models.QuoteFilter]
}

// NewQuoteRepository creates a new quote repository
func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &QuoteRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Quote, models.QuoteFilter](db),
	}
}

// ByUUID retrieves a quote by its public UUID
func (r *QuoteRepositoryImpl) ByUUID(ctx context.Context, uuidStr string) (*models.Quote, error) {
	parsed, err := uuid.Parse(uuidStr)
	if err != nil {
		return nil, err
	}
	rows, err := r.ByFilter(ctx, models.QuoteFilter{UUID: &parsed}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListByParentIDs returns the direct children of the given quotes
func (r *QuoteRepositoryImpl) ListByParentIDs(ctx context.Context, parentIDs []uint) ([]*models.Quote, error) {
	if len(parentIDs) == 0 {
		return []*models.Quote{}, nil
	}
	return r.ByFilter(ctx, models.QuoteFilter{ParentIDs: parentIDs}, "version ASC, id ASC", 0, 0)
}

// UpdateStatus sets the quote status, recording the rejection reason when given
func (r *QuoteRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status models.QuoteStatus, rejectionReason *string) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	updates := map[string]any{
		"status":     status,
		"updated_at": utils.UTCNow(),
	}
	if rejectionReason != nil {
		updates["rejection_reason"] = *rejectionReason
	}

	if err = db.Model(&models.Quote{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return storageErr("failed to update quote status", err)
	}
	return nil
}

// SetDealRating stores the customer's 1..10 deal rating
func (r *QuoteRepositoryImpl) SetDealRating(ctx context.Context, id uint, rating int) error {
	err := r.getDB(ctx).Model(&models.Quote{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"deal_rating": rating,
			"updated_at":  utils.UTCNow(),
		}).Error
	if err != nil {
		return storageErr("failed to rate quote", err)
	}
	return nil
}

// RecalculateTotals recomputes the quote totals from its items and persists them in one statement
func (r *QuoteRepositoryImpl) RecalculateTotals(ctx context.Context, id uint) (totalSupplierCost, finalValue float64, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, 0, err
	}
	defer finish(db, shouldCommit, &err)

	var totals struct {
		TotalSupplierCost float64
		FinalValue        float64
	}
	err = db.Raw(`
		UPDATE quotes q
		SET total_supplier_cost = t.cost,
		    final_value = t.value,
		    updated_at = ?
		FROM (
			SELECT COALESCE(SUM(COALESCE(supplier_cost, 0) * quantity), 0) AS cost,
			       COALESCE(SUM(COALESCE(customer_price, 0) * quantity), 0) AS value
			FROM quote_items
			WHERE quote_id = ?
		) t
		WHERE q.id = ?
		RETURNING q.total_supplier_cost, q.final_value
	`, utils.UTCNow(), id, id).Scan(&totals).Error
	if err != nil {
		return 0, 0, storageErr("failed to recalculate quote totals", err)
	}

	return totals.TotalSupplierCost, totals.FinalValue, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *QuoteRepositoryImpl) applyFilter(query *gorm.DB, filter models.QuoteFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ParentQuoteID != nil {
		query = query.Where("parent_quote_id = ?", *filter.ParentQuoteID)
	}
	if len(filter.ParentIDs) > 0 {
		query = query.Where("parent_quote_id IN ?", filter.ParentIDs)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves quotes based on filter criteria
func (r *QuoteRepositoryImpl) ByFilter(ctx context.Context, filter models.QuoteFilter, orderBy string, limit, offset int) ([]*models.Quote, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Quote{}), filter)
	query = paginate(query, orderBy, limit, offset)

	var quotes []*models.Quote
	if err := query.Find(&quotes).Error; err != nil {
		return nil, storageErr("failed to list quotes", err)
	}
	return quotes, nil
}

// Count returns the number of quotes matching the filter
func (r *QuoteRepositoryImpl) Count(ctx context.Context, filter models.QuoteFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.Quote{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, storageErr("failed to count quotes", err)
	}
	return count, nil
}

// Exists checks if any quote matches the filter
func (r *QuoteRepositoryImpl) Exists(ctx context.Context, filter models.QuoteFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
