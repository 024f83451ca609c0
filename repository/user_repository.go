package repository

import (
	"context"

	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/utils"
	"gorm.io/gorm"
)

// UserRepositoryImpl implements UserRepository interface
type UserRepositoryImpl struct {
	*BaseRepository[models.User, models.UserFilter]
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &UserRepositoryImpl{
		BaseRepository: NewBaseRepository[models.User, models.UserFilter](db),
	}
}

// ByIDs retrieves users by a set of IDs
func (r *UserRepositoryImpl) ByIDs(ctx context.Context, ids []uint) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}
	return r.ByFilter(ctx, models.UserFilter{IDs: ids}, "id ASC", 0, 0)
}

// ListActiveSuppliers returns every supplier that is allowed to receive work
func (r *UserRepositoryImpl) ListActiveSuppliers(ctx context.Context) ([]*models.User, error) {
	role := models.UserRoleSupplier
	status := models.UserStatusActive
	return r.ByFilter(ctx, models.UserFilter{Role: &role, Status: &status}, "id ASC", 0, 0)
}

// AddRating adjusts a user's running rating counters in place
func (r *UserRepositoryImpl) AddRating(ctx context.Context, userID uint, totalDelta, countDelta int64) (err error) {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	defer finish(db, shouldCommit, &err)

	err = db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"rating_total": gorm.Expr("rating_total + ?", totalDelta),
			"rating_count": gorm.Expr("rating_count + ?", countDelta),
			"updated_at":   utils.UTCNow(),
		}).Error
	if err != nil {
		return storageErr("failed to update user rating", err)
	}

	return nil
}

// applyFilter applies filter conditions to the GORM query
func (r *UserRepositoryImpl) applyFilter(query *gorm.DB, filter models.UserFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id IN ?", filter.IDs)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Email != nil {
		query = query.Where("email = ?", *filter.Email)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves users based on filter criteria
func (r *UserRepositoryImpl) ByFilter(ctx context.Context, filter models.UserFilter, orderBy string, limit, offset int) ([]*models.User, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.User{}), filter)
	query = paginate(query, orderBy, limit, offset)

	var users []*models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, storageErr("failed to list users", err)
	}
	return users, nil
}

// Count returns the number of users matching the filter
func (r *UserRepositoryImpl) Count(ctx context.Context, filter models.UserFilter) (int64, error) {
	query := r.applyFilter(r.getDB(ctx).Model(&models.User{}), filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, storageErr("failed to count users", err)
	}
	return count, nil
}

// Exists checks if any user matches the filter
func (r *UserRepositoryImpl) Exists(ctx context.Context, filter models.UserFilter) (bool, error) {
	count, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
