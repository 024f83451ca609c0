package repository

import (
	"context"
	"time"

	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/utils"
	"gorm.io/gorm"
)

// QuoteItemRepositoryImpl implements QuoteItemRepository interface
type QuoteItemRepositoryImpl struct {
	*BaseRepository[models.QuoteItem, models.QuoteItemFilter]
}

// NewQuoteItemRepository creates a new quote item repository
func NewQuoteItemRepository(db *gorm.DB) QuoteItemRepository {
	return &QuoteItemRepositoryImpl{
		BaseRepository: NewBaseRepository[models.QuoteItem, models.QuoteItemFilter](db),
	}
}

// ListByQuote returns a quote's items in insertion order
func (r *QuoteItemRepositoryImpl) ListByQuote(ctx context.Context, quoteID uint) ([]*models.QuoteItem, error) {
	return r.ByFilter(ctx, models.QuoteItemFilter{QuoteID: &quoteID}, "id ASC", 0, 0)
}

// ApplySelection writes a supplier choice onto an item of the given quote.
// Returns false when the item does not belong to the quote.
func (r *QuoteItemRepositoryImpl) ApplySelection(ctx context.Context, quoteID uint, sel models.QuoteItemSelection) (applied bool, err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return false, err
	}
	defer finish(db, shouldCommit, &err)

	updates := map[string]any{
		"supplier_id":           sel.SupplierID,
		"supplier_cost":         sel.SupplierCost,
		"customer_price":        sel.CustomerPrice,
		"delivery_days":         sel.DeliveryDays,
		"manual_price_override": false,
		"updated_at":            utils.UTCNow(),
	}
	if len(sel.ScoreSnapshot) > 0 {
		updates["score_snapshot"] = sel.ScoreSnapshot
	}

	res := db.Model(&models.QuoteItem{}).
		Where("id = ? AND quote_id = ?", sel.QuoteItemID, quoteID).
		Updates(updates)
	if res.Error != nil {
		return false, storageErr("failed to apply supplier selection", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetCourierPickedUp records the courier pickup of an item
func (r *QuoteItemRepositoryImpl) SetCourierPickedUp(ctx context.Context, id uint, at time.Time) error {
	err := r.getDB(ctx).Model(&models.QuoteItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"courier_picked_up":    true,
			"courier_picked_up_at": at,
			"updated_at":           utils.UTCNow(),
		}).Error
	if err != nil {
		return storageErr("failed to record courier pickup", err)
	}
	return nil
}

// SetCourierDelivered records the courier delivery of an item
func (r *QuoteItemRepositoryImpl) SetCourierDelivered(ctx context.Context, id uint, at time.Time) error {
	err := r.getDB(ctx).Model(&models.QuoteItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"courier_delivered":    true,
			"courier_delivered_at": at,
			"updated_at":           utils.UTCNow(),
		}).Error
	if err != nil {
		return storageErr("failed to record courier delivery", err)
	}
	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *QuoteItemRepositoryImpl) applyFilter(query *gorm.DB, filter models.QuoteItemFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.QuoteID != nil {
		query = query.Where("quote_id = ?", *filter.QuoteID)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.ProductUnitID != nil {
		query = query.Where("product_unit_id = ?", *filter.ProductUnitID)
	}
	return query
}

// ByFilter retrieves quote items based on filter criteria
func (r *QuoteItemRepositoryImpl) ByFilter(ctx context.Context, filter models.QuoteItemFilter, orderBy string, limit, offset int) ([]*models.QuoteItem, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.QuoteItem{}), filter)
	query = paginate(query, orderBy, limit, offset)

	var items []*models.QuoteItem
	if err := query.Find(&items).Error; err != nil {
		return nil, storageErr("failed to list quote items", err)
	}
	return items, nil
}

// Count returns the number of quote items matching the filter
func (r *QuoteItemRepositoryImpl) Count(ctx context.Context, filter models.QuoteItemFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.QuoteItem{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, storageErr("failed to count quote items", err)
	}
	return count, nil
}

// Exists checks if any quote item matches the filter
func (r *QuoteItemRepositoryImpl) Exists(ctx context.Context, filter models.QuoteItemFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
