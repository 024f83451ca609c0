package models

import (
	"time"

	"github.com/amirphl/printshop/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuoteItem is one line of a quote. Supplier fields stay empty until a selection is committed.
type QuoteItem struct {
	ID                  uint     `gorm:"primaryKey" json:"id"`
	QuoteID             uint     `gorm:"not null;index:idx_quote_items_quote_id" json:"quote_id"`
	ProductUnitID       uint     `gorm:"not null;index:idx_quote_items_product_unit_id" json:"product_unit_id"`
	Quantity            int      `gorm:"not null;default:1" json:"quantity"`
	SupplierID          *uint    `gorm:"index:idx_quote_items_supplier_id" json:"supplier_id,omitempty"`
	SupplierCost        *float64 `gorm:"type:numeric(14,2)" json:"supplier_cost,omitempty"`
	CustomerPrice       *float64 `gorm:"type:numeric(14,2)" json:"customer_price,omitempty"`
	DeliveryDays        *int     `json:"delivery_days,omitempty"`
	ManualPriceOverride *bool    `gorm:"not null;default:false" json:"manual_price_override"`

	// ScoreSnapshot keeps the score breakdown that justified the selection.
	ScoreSnapshot datatypes.JSON `gorm:"type:jsonb" json:"score_snapshot,omitempty"`

	CourierPickedUp    *bool      `gorm:"not null;default:false" json:"courier_picked_up"`
	CourierPickedUpAt  *time.Time `json:"courier_picked_up_at,omitempty"`
	CourierDelivered   *bool      `gorm:"not null;default:false" json:"courier_delivered"`
	CourierDeliveredAt *time.Time `json:"courier_delivered_at,omitempty"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`

	ProductUnit *ProductUnit `gorm:"foreignKey:ProductUnitID;references:ID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (QuoteItem) TableName() string {
	return "quote_items"
}

// BeforeCreate ensures flags and timestamps are set.
func (i *QuoteItem) BeforeCreate(tx *gorm.DB) error {
	if i.ManualPriceOverride == nil {
		i.ManualPriceOverride = utils.ToPtr(false)
	}
	if i.CourierPickedUp == nil {
		i.CourierPickedUp = utils.ToPtr(false)
	}
	if i.CourierDelivered == nil {
		i.CourierDelivered = utils.ToPtr(false)
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = utils.UTCNow()
	}
	if i.UpdatedAt.IsZero() {
		i.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// CloneForRevision copies the commercial content of the item into a new quote.
// Courier progress is not carried over.
func (i *QuoteItem) CloneForRevision(quoteID uint) *QuoteItem {
	clone := &QuoteItem{
		QuoteID:             quoteID,
		ProductUnitID:       i.ProductUnitID,
		Quantity:            i.Quantity,
		SupplierID:          i.SupplierID,
		SupplierCost:        i.SupplierCost,
		CustomerPrice:       i.CustomerPrice,
		DeliveryDays:        i.DeliveryDays,
		ManualPriceOverride: i.ManualPriceOverride,
		CourierPickedUp:     utils.ToPtr(false),
		CourierDelivered:    utils.ToPtr(false),
	}
	if len(i.ScoreSnapshot) > 0 {
		clone.ScoreSnapshot = append(datatypes.JSON(nil), i.ScoreSnapshot...)
	}
	return clone
}

// QuoteItemSelection is the per-item payload the selection committer writes.
type QuoteItemSelection struct {
	QuoteItemID   uint
	SupplierID    uint
	SupplierCost  float64
	CustomerPrice float64
	DeliveryDays  int
	ScoreSnapshot datatypes.JSON
}

// QuoteItemFilter represents filter criteria for quote item queries
type QuoteItemFilter struct {
	ID            *uint
	IDs           []uint
	QuoteID       *uint
	SupplierID    *uint
	ProductUnitID *uint
}
