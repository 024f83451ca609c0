package repository

import (
	"context"
	"time"

	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SupplierJobRepositoryImpl implements SupplierJobRepository interface
type SupplierJobRepositoryImpl struct {
	*BaseRepository[models.SupplierJob, models.SupplierJobFilter]
}

// NewSupplierJobRepository creates a new supplier job repository
func NewSupplierJobRepository(db *gorm.DB) SupplierJobRepository {
	return &SupplierJobRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SupplierJob, models.SupplierJobFilter](db),
	}
}

// ListBySupplier returns the full job history of a supplier, oldest first
func (r *SupplierJobRepositoryImpl) ListBySupplier(ctx context.Context, supplierID uint) ([]*models.SupplierJob, error) {
	return r.ByFilter(ctx, models.SupplierJobFilter{SupplierID: &supplierID}, "created_at ASC, id ASC", 0, 0)
}

// ListByQuote returns the jobs created for a quote's items
func (r *SupplierJobRepositoryImpl) ListByQuote(ctx context.Context, quoteID uint) ([]*models.SupplierJob, error) {
	return r.ByFilter(ctx, models.SupplierJobFilter{QuoteID: &quoteID}, "id ASC", 0, 0)
}

// CreateForQuoteItems inserts jobs, skipping quote items that already have one.
// Returns the number of rows actually inserted.
func (r *SupplierJobRepositoryImpl) CreateForQuoteItems(ctx context.Context, jobs []*models.SupplierJob) (inserted int64, err error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return 0, err
	}
	defer finish(db, shouldCommit, &err)

	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quote_item_id"}},
		DoNothing: true,
	}).Create(&jobs)
	if res.Error != nil {
		return 0, storageErr("failed to create supplier jobs", res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateStatus sets the job status, stamping ready_at when given
func (r *SupplierJobRepositoryImpl) UpdateStatus(ctx context.Context, id uint, status models.SupplierJobStatus, readyAt *time.Time) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	updates := map[string]any{
		"status":     status,
		"updated_at": utils.UTCNow(),
	}
	if readyAt != nil {
		updates["ready_at"] = *readyAt
	}

	if err = db.Model(&models.SupplierJob{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return storageErr("failed to update supplier job status", err)
	}
	return nil
}

// ConfirmCourierReady records that a courier verified the job was ready
func (r *SupplierJobRepositoryImpl) ConfirmCourierReady(ctx context.Context, id uint, at time.Time) error {
	err := r.getDB(ctx).Model(&models.SupplierJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"courier_confirmed_ready": true,
			"courier_confirmed_at":    at,
			"updated_at":              utils.UTCNow(),
		}).Error
	if err != nil {
		return storageErr("failed to confirm courier readiness", err)
	}
	return nil
}

// SetRating stores the post-hoc rating of a job
func (r *SupplierJobRepositoryImpl) SetRating(ctx context.Context, id uint, rating int) error {
	err := r.getDB(ctx).Model(&models.SupplierJob{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"rating":     rating,
			"updated_at": utils.UTCNow(),
		}).Error
	if err != nil {
		return storageErr("failed to rate supplier job", err)
	}
	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *SupplierJobRepositoryImpl) applyFilter(query *gorm.DB, filter models.SupplierJobFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.QuoteID != nil {
		query = query.Where("quote_id = ?", *filter.QuoteID)
	}
	if filter.QuoteItemID != nil {
		query = query.Where("quote_item_id = ?", *filter.QuoteItemID)
	}
	if len(filter.ProductUnitIDs) > 0 {
		query = query.Where("product_unit_id IN ?", filter.ProductUnitIDs)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves supplier jobs based on filter criteria
func (r *SupplierJobRepositoryImpl) ByFilter(ctx context.Context, filter models.SupplierJobFilter, orderBy string, limit, offset int) ([]*models.SupplierJob, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.SupplierJob{}), filter)
	query = paginate(query, orderBy, limit, offset)

	var jobs []*models.SupplierJob
	if err := query.Find(&jobs).Error; err != nil {
		return nil, storageErr("failed to list supplier jobs", err)
	}
	return jobs, nil
}

// Count returns the number of supplier jobs matching the filter
func (r *SupplierJobRepositoryImpl) Count(ctx context.Context, filter models.SupplierJobFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.SupplierJob{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, storageErr("failed to count supplier jobs", err)
	}
	return count, nil
}

// Exists checks if any supplier job matches the filter
func (r *SupplierJobRepositoryImpl) Exists(ctx context.Context, filter models.SupplierJobFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
