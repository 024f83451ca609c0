package dto

import "github.com/amirphl/printshop/scoring"

// RecommendationItemRequest is one line item to find suppliers for.
type RecommendationItemRequest struct {
	QuoteItemID   *uint `json:"quote_item_id,omitempty"`
	ProductUnitID uint  `json:"product_unit_id" validate:"required"`
	Quantity      int   `json:"quantity" validate:"required,min=1"`
}

// GenerateRecommendationsRequest asks for ranked suppliers per item.
type GenerateRecommendationsRequest struct {
	Items []RecommendationItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
	Limit int                         `json:"limit,omitempty" validate:"omitempty,min=1,max=50"`
}

// ScoreTerm is one clamped component of a score.
type ScoreTerm struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// ScoreBreakdown exposes how a total score was built.
type ScoreBreakdown struct {
	Model          string      `json:"model"`
	Base           float64     `json:"base"`
	Terms          []ScoreTerm `json:"terms"`
	MultiItemBonus float64     `json:"multi_item_bonus"`
	Total          float64     `json:"total"`
}

// SupplierCandidate is one ranked supplier for an item.
type SupplierCandidate struct {
	Rank             int                     `json:"rank"`
	SupplierID       uint                    `json:"supplier_id"`
	SupplierName     string                  `json:"supplier_name"`
	CompanyName      *string                 `json:"company_name,omitempty"`
	PricePerUnit     float64                 `json:"price_per_unit"`
	DeliveryDays     int                     `json:"delivery_days"`
	FulfillableItems int                     `json:"fulfillable_items"`
	Score            ScoreBreakdown          `json:"score"`
	Metrics          scoring.SupplierMetrics `json:"metrics"`
}

// ItemRecommendation lists the ranked suppliers of one requested item.
// Suppliers is empty, never omitted, when nobody prices the unit.
type ItemRecommendation struct {
	Index            int                 `json:"index"`
	QuoteItemID      *uint               `json:"quote_item_id,omitempty"`
	ProductUnitID    uint                `json:"product_unit_id"`
	ProductUnitLabel string              `json:"product_unit_label,omitempty"`
	Quantity         int                 `json:"quantity"`
	MarketPrice      float64             `json:"market_price"`
	Suppliers        []SupplierCandidate `json:"suppliers"`
}

// GenerateRecommendationsResponse carries one entry per requested item, in request order.
type GenerateRecommendationsResponse struct {
	Message string               `json:"message"`
	Model   string               `json:"model"`
	Items   []ItemRecommendation `json:"items"`
}
