package repository

import (
	"context"
	"errors"

	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScoringWeightsRepositoryImpl implements ScoringWeightsRepository interface
type ScoringWeightsRepositoryImpl struct {
	db *gorm.DB
}

// NewScoringWeightsRepository creates a new scoring weights repository
func NewScoringWeightsRepository(db *gorm.DB) ScoringWeightsRepository {
	return &ScoringWeightsRepositoryImpl{db: db}
}

func (r *ScoringWeightsRepositoryImpl) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(TxContextKey).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Get returns the stored weights, or the defaults when the row was never written
func (r *ScoringWeightsRepositoryImpl) Get(ctx context.Context) (models.ScoringWeights, error) {
	var w models.ScoringWeights
	err := r.getDB(ctx).Where("id = ?", models.ScoringWeightsID).Take(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DefaultScoringWeights(), nil
		}
		return models.ScoringWeights{}, storageErr("failed to load scoring weights", err)
	}
	return w, nil
}

// Set overwrites the singleton row. Callers validate the weights first.
func (r *ScoringWeightsRepositoryImpl) Set(ctx context.Context, weights models.ScoringWeights) error {
	weights.ID = models.ScoringWeightsID
	weights.UpdatedAt = utils.UTCNow()

	err := r.getDB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "rating", "delivery_time", "reliability", "updated_at"}),
	}).Create(&weights).Error
	if err != nil {
		return storageErr("failed to save scoring weights", err)
	}
	return nil
}
