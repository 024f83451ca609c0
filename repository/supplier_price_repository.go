package repository

import (
	"context"
	"database/sql"

	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SupplierPriceRepositoryImpl implements SupplierPriceRepository interface
type SupplierPriceRepositoryImpl struct {
	*BaseRepository[models.SupplierPrice, models.SupplierPriceFilter]
}

// NewSupplierPriceRepository creates a new supplier price repository
func NewSupplierPriceRepository(db *gorm.DB) SupplierPriceRepository {
	return &SupplierPriceRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SupplierPrice, models.SupplierPriceFilter](db),
	}
}

// BySupplierAndUnit retrieves the price a supplier quotes for one unit
func (r *SupplierPriceRepositoryImpl) BySupplierAndUnit(ctx context.Context, supplierID, productUnitID uint) (*models.SupplierPrice, error) {
	rows, err := r.ByFilter(ctx, models.SupplierPriceFilter{SupplierID: &supplierID, ProductUnitID: &productUnitID}, "", 1, 0)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// ListActiveByProductUnits returns active prices of active suppliers for the given units, supplier preloaded
func (r *SupplierPriceRepositoryImpl) ListActiveByProductUnits(ctx context.Context, productUnitIDs []uint) ([]*models.SupplierPrice, error) {
	if len(productUnitIDs) == 0 {
		return []*models.SupplierPrice{}, nil
	}

	var rows []*models.SupplierPrice
	err := r.getDB(ctx).
		Joins("Supplier").
		Where("supplier_prices.product_unit_id IN ?", productUnitIDs).
		Where("supplier_prices.is_active = ?", true).
		Where(`"Supplier".role = ? AND "Supplier".status = ?`, models.UserRoleSupplier, models.UserStatusActive).
		Order("supplier_prices.product_unit_id ASC, supplier_prices.supplier_id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storageErr("failed to list supplier prices", err)
	}
	return rows, nil
}

// Upsert inserts the price or overwrites the existing (supplier, unit) row
func (r *SupplierPriceRepositoryImpl) Upsert(ctx context.Context, price *models.SupplierPrice) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	price.UpdatedAt = utils.UTCNow()
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "supplier_id"}, {Name: "product_unit_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"price_per_unit": clause.Expr{SQL: "EXCLUDED.price_per_unit"},
			"delivery_days":  clause.Expr{SQL: "EXCLUDED.delivery_days"},
			"is_active":      clause.Expr{SQL: "EXCLUDED.is_active"},
			"updated_at":     clause.Expr{SQL: "EXCLUDED.updated_at"},
		}),
	}).Create(price).Error
	if err != nil {
		return storageErr("failed to upsert supplier price", err)
	}
	return nil
}

// AveragePrice returns the mean active price for a unit, or across all units when productUnitID is nil.
// Zero means no prices exist.
func (r *SupplierPriceRepositoryImpl) AveragePrice(ctx context.Context, productUnitID *uint) (float64, error) {
	query := r.getDB(ctx).
		Model(&models.SupplierPrice{}).
		Joins("JOIN users ON users.id = supplier_prices.supplier_id").
		Where("supplier_prices.is_active = ?", true).
		Where("users.role = ? AND users.status = ?", models.UserRoleSupplier, models.UserStatusActive)
	if productUnitID != nil {
		query = query.Where("supplier_prices.product_unit_id = ?", *productUnitID)
	}

	var avg sql.NullFloat64
	if err := query.Select("AVG(supplier_prices.price_per_unit)").Scan(&avg).Error; err != nil {
		return 0, storageErr("failed to compute market price", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *SupplierPriceRepositoryImpl) applyFilter(query *gorm.DB, filter models.SupplierPriceFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.ProductUnitID != nil {
		query = query.Where("product_unit_id = ?", *filter.ProductUnitID)
	}
	if len(filter.ProductUnitIDs) > 0 {
		query = query.Where("product_unit_id IN ?", filter.ProductUnitIDs)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves supplier prices based on filter criteria
func (r *SupplierPriceRepositoryImpl) ByFilter(ctx context.Context, filter models.SupplierPriceFilter, orderBy string, limit, offset int) ([]*models.SupplierPrice, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.SupplierPrice{}), filter)
	query = paginate(query, orderBy, limit, offset)

	var rows []*models.SupplierPrice
	if err := query.Find(&rows).Error; err != nil {
		return nil, storageErr("failed to list supplier prices", err)
	}
	return rows, nil
}

// Count returns the number of supplier prices matching the filter
func (r *SupplierPriceRepositoryImpl) Count(ctx context.Context, filter models.SupplierPriceFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.SupplierPrice{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, storageErr("failed to count supplier prices", err)
	}
	return count, nil
}

// Exists checks if any supplier price matches the filter
func (r *SupplierPriceRepositoryImpl) Exists(ctx context.Context, filter models.SupplierPriceFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
