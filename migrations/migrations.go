// Package migrations holds the versioned database schema
package migrations

import (
	"fmt"

	"github.com/amirphl/printshop/models"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// List returns every migration in the order it must run
func List() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20260901_create_catalog",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Category{}, &models.Product{}, &models.ProductUnit{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("product_units", "products", "categories", "users")
			},
		},
		{
			ID: "20260902_create_supplier_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.SupplierPrice{}, &models.SupplierJob{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("supplier_jobs", "supplier_prices")
			},
		},
		{
			ID: "20260903_create_quotes",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Quote{}, &models.QuoteItem{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("quote_items", "quotes")
			},
		},
		{
			ID: "20260904_create_scoring_weights",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&models.ScoringWeights{}); err != nil {
					return err
				}
				defaults := models.DefaultScoringWeights()
				return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&defaults).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("scoring_weights")
			},
		},
	}
}

// Run applies every pending migration
func Run(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, List())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
