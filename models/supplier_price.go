package models

import (
	"time"

	"github.com/amirphl/printshop/utils"
	"gorm.io/gorm"
)

// SupplierPrice is a supplier's offer for one product unit. One row per (supplier, unit).
type SupplierPrice struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SupplierID    uint      `gorm:"not null;uniqueIndex:uk_supplier_prices_supplier_unit,priority:1" json:"supplier_id"`
	ProductUnitID uint      `gorm:"not null;uniqueIndex:uk_supplier_prices_supplier_unit,priority:2;index:idx_supplier_prices_product_unit_id" json:"product_unit_id"`
	PricePerUnit  float64   `gorm:"type:numeric(14,2);not null" json:"price_per_unit"`
	DeliveryDays  int       `gorm:"not null;default:0" json:"delivery_days"`
	IsActive      *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt     time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	Supplier    *User        `gorm:"foreignKey:SupplierID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	ProductUnit *ProductUnit `gorm:"foreignKey:ProductUnitID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SupplierPrice) TableName() string {
	return "supplier_prices"
}

// BeforeCreate ensures timestamps and the active flag are set.
func (p *SupplierPrice) BeforeCreate(tx *gorm.DB) error {
	if p.IsActive == nil {
		p.IsActive = utils.ToPtr(true)
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = utils.UTCNow()
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// SupplierPriceFilter represents filter criteria for supplier price queries
type SupplierPriceFilter struct {
	ID             *uint
	SupplierID     *uint
	ProductUnitID  *uint
	ProductUnitIDs []uint
	IsActive       *bool
}
