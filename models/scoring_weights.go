package models

import (
	"fmt"
	"time"
)

// ScoringWeightsID is the primary key of the singleton weights row.
const ScoringWeightsID uint = 1

// ScoringWeights holds the admin-tunable weights of the legacy weighted scoring model.
type ScoringWeights struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Price        int       `gorm:"not null" json:"price"`
	Rating       int       `gorm:"not null" json:"rating"`
	DeliveryTime int       `gorm:"not null" json:"delivery_time"`
	Reliability  int       `gorm:"not null" json:"reliability"`
	UpdatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (ScoringWeights) TableName() string {
	return "scoring_weights"
}

// DefaultScoringWeights returns the weights used when no row is stored.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		ID:           ScoringWeightsID,
		Price:        40,
		Rating:       30,
		DeliveryTime: 20,
		Reliability:  10,
	}
}

// Validate checks every weight is within 0..100 and the four sum to exactly 100.
func (w ScoringWeights) Validate() error {
	for name, v := range map[string]int{
		"price":         w.Price,
		"rating":        w.Rating,
		"delivery_time": w.DeliveryTime,
		"reliability":   w.Reliability,
	} {
		if v < 0 || v > 100 {
			return fmt.Errorf("weight %s must be between 0 and 100, got %d", name, v)
		}
	}
	if sum := w.Price + w.Rating + w.DeliveryTime + w.Reliability; sum != 100 {
		return fmt.Errorf("weights must sum to 100, got %d", sum)
	}
	return nil
}
