package repository

import (
	"context"

	"github.com/amirphl/printshop/models"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ProductUnitRepositoryImpl implements ProductUnitRepository interface
type ProductUnitRepositoryImpl struct {
	*BaseRepository[models.ProductUnit, models.ProductUnitFilter]
}

// NewProductUnitRepository creates a new product unit repository
func NewProductUnitRepository(db *gorm.DB) ProductUnitRepository {
	return &ProductUnitRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ProductUnit, models.ProductUnitFilter](db),
	}
}

// ByIDsWithProduct loads units together with their product and category
func (r *ProductUnitRepositoryImpl) ByIDsWithProduct(ctx context.Context, ids []uint) ([]*models.ProductUnit, error) {
	if len(ids) == 0 {
		return []*models.ProductUnit{}, nil
	}

	var units []*models.ProductUnit
	err := r.getDB(ctx).
		Preload("Product.Category").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&units).Error
	if err != nil {
		return nil, storageErr("failed to load product units", err)
	}
	return units, nil
}

// CategoriesByUnitIDs maps each given unit to its category
func (r *ProductUnitRepositoryImpl) CategoriesByUnitIDs(ctx context.Context, ids []uint) (map[uint]uint, error) {
	out := make(map[uint]uint, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	ids64 := make([]int64, len(ids))
	for i, id := range ids {
		ids64[i] = int64(id)
	}

	var rows []models.ProductUnitCategory
	err := r.getDB(ctx).Raw(`
		SELECT pu.id AS product_unit_id, p.category_id
		FROM product_units pu
		JOIN products p ON p.id = pu.product_id
		WHERE pu.id = ANY(?)
	`, pq.Array(ids64)).Scan(&rows).Error
	if err != nil {
		return nil, storageErr("failed to load unit categories", err)
	}

	for _, row := range rows {
		out[row.ProductUnitID] = row.CategoryID
	}
	return out, nil
}

// AllUnitCategories maps every unit to its category
func (r *ProductUnitRepositoryImpl) AllUnitCategories(ctx context.Context) (map[uint]uint, error) {
	var rows []models.ProductUnitCategory
	err := r.getDB(ctx).Raw(`
		SELECT pu.id AS product_unit_id, p.category_id
		FROM product_units pu
		JOIN products p ON p.id = pu.product_id
	`).Scan(&rows).Error
	if err != nil {
		return nil, storageErr("failed to load unit categories", err)
	}

	out := make(map[uint]uint, len(rows))
	for _, row := range rows {
		out[row.ProductUnitID] = row.CategoryID
	}
	return out, nil
}

// applyFilter applies filter conditions to the GORM query
func (r *ProductUnitRepositoryImpl) applyFilter(query *gorm.DB, filter models.ProductUnitFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	return query
}

// ByFilter retrieves product units based on filter criteria
func (r *ProductUnitRepositoryImpl) ByFilter(ctx context.Context, filter models.ProductUnitFilter, orderBy string, limit, offset int) ([]*models.ProductUnit, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.ProductUnit{}), filter)
	query = paginate(query, orderBy, limit, offset)

	var units []*models.ProductUnit
	if err := query.Find(&units).Error; err != nil {
		return nil, storageErr("failed to list product units", err)
	}
	return units, nil
}

// Count returns the number of product units matching the filter
func (r *ProductUnitRepositoryImpl) Count(ctx context.Context, filter models.ProductUnitFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.ProductUnit{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, storageErr("failed to count product units", err)
	}
	return count, nil
}

// Exists checks if any product unit matches the filter
func (r *ProductUnitRepositoryImpl) Exists(ctx context.Context, filter models.ProductUnitFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
