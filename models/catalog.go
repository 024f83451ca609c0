package models

import "time"

// Category groups products, e.g. business cards or banners.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex:uk_categories_name" json:"name"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

func (Category) TableName() string {
	return "categories"
}

// Product belongs to one category.
type Product struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CategoryID uint      `gorm:"not null;index:idx_products_category_id" json:"category_id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	CreatedAt  time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	Category *Category `gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
}

func (Product) TableName() string {
	return "products"
}

// ProductUnit is a concrete size/quantity tier of a product and the atomic priced unit.
type ProductUnit struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProductID    uint      `gorm:"not null;index:idx_product_units_product_id" json:"product_id"`
	SizeLabel    string    `gorm:"size:100;not null" json:"size_label"`
	QuantityTier int       `gorm:"not null" json:"quantity_tier"`
	CreatedAt    time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`

	Product *Product `gorm:"foreignKey:ProductID;references:ID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
}

func (ProductUnit) TableName() string {
	return "product_units"
}

// ProductUnitCategory maps a product unit to its category through the product.
type ProductUnitCategory struct {
	ProductUnitID uint
	CategoryID    uint
}

// ProductUnitFilter represents filter criteria for product unit queries
type ProductUnitFilter struct {
	ID        *uint
	IDs       []uint
	ProductID *uint
}
