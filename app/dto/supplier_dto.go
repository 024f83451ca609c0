package dto

import "github.com/amirphl/printshop/scoring"

// UpsertSupplierPriceRequest sets a supplier's price for a product unit.
type UpsertSupplierPriceRequest struct {
	SupplierID    uint    `json:"supplier_id" validate:"required"`
	ProductUnitID uint    `json:"product_unit_id" validate:"required"`
	PricePerUnit  float64 `json:"price_per_unit" validate:"gt=0"`
	DeliveryDays  int     `json:"delivery_days" validate:"min=0,max=365"`
	IsActive      *bool   `json:"is_active,omitempty"`
}

// SupplierPrice represents a price row in responses.
type SupplierPrice struct {
	ID            uint    `json:"id"`
	SupplierID    uint    `json:"supplier_id"`
	ProductUnitID uint    `json:"product_unit_id"`
	PricePerUnit  float64 `json:"price_per_unit"`
	DeliveryDays  int     `json:"delivery_days"`
	IsActive      bool    `json:"is_active"`
	UpdatedAt     string  `json:"updated_at"`
}

// SupplierPriceResponse wraps an upserted price.
type SupplierPriceResponse struct {
	Message string         `json:"message"`
	Price   *SupplierPrice `json:"price,omitempty"`
}

// ListSupplierPricesResponse lists the active prices of a unit.
type ListSupplierPricesResponse struct {
	Message string          `json:"message"`
	Items   []SupplierPrice `json:"items"`
}

// MarketPriceResponse carries the reference price of a unit.
// HasBaseline is false when no supplier prices the unit.
type MarketPriceResponse struct {
	Message       string  `json:"message"`
	ProductUnitID *uint   `json:"product_unit_id,omitempty"`
	MarketPrice   float64 `json:"market_price"`
	HasBaseline   bool    `json:"has_baseline"`
}

// SupplierMetricsQuery scopes a metrics lookup. ProductUnitID resolves to its category.
type SupplierMetricsQuery struct {
	CategoryID    *uint
	ProductUnitID *uint
}

// SupplierMetricsResponse exposes the aggregated history of a supplier.
type SupplierMetricsResponse struct {
	Message string                   `json:"message"`
	Found   bool                     `json:"found"`
	Metrics *scoring.SupplierMetrics `json:"metrics,omitempty"`
}

// UpdateSupplierJobStatusRequest moves a job through production.
type UpdateSupplierJobStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress ready picked_up delivered cancelled"`
}

// RateSupplierJobRequest represents a post-hoc 1..10 rating of a job.
type RateSupplierJobRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=10"`
}

// SupplierJob represents a job row in responses.
type SupplierJob struct {
	ID                    uint    `json:"id"`
	SupplierID            uint    `json:"supplier_id"`
	QuoteID               *uint   `json:"quote_id,omitempty"`
	QuoteItemID           *uint   `json:"quote_item_id,omitempty"`
	ProductUnitID         uint    `json:"product_unit_id"`
	Quantity              int     `json:"quantity"`
	Price                 float64 `json:"price"`
	Status                string  `json:"status"`
	PromisedDeliveryDays  *int    `json:"promised_delivery_days,omitempty"`
	ReadyAt               *string `json:"ready_at,omitempty"`
	CourierConfirmedReady bool    `json:"courier_confirmed_ready"`
	Rating                *int    `json:"rating,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

// SupplierJobResponse reports the outcome of a job mutation.
// Success is false when the job does not exist.
type SupplierJobResponse struct {
	Message       string       `json:"message"`
	Success       bool         `json:"success"`
	Job           *SupplierJob `json:"job,omitempty"`
	QuoteAdvanced bool         `json:"quote_advanced"`
}

// CourierEventRequest records a courier pickup or delivery of a quote item.
type CourierEventRequest struct {
	Event string `json:"event" validate:"required,oneof=picked_up delivered"`
}

// CourierEventResponse reports the item after the event.
type CourierEventResponse struct {
	Message string     `json:"message"`
	Success bool       `json:"success"`
	Item    *QuoteItem `json:"item,omitempty"`
}

// ScoringWeights represents the legacy weighted model's percentages.
type ScoringWeights struct {
	Price        int `json:"price" validate:"min=0,max=100"`
	Rating       int `json:"rating" validate:"min=0,max=100"`
	DeliveryTime int `json:"delivery_time" validate:"min=0,max=100"`
	Reliability  int `json:"reliability" validate:"min=0,max=100"`
}

// ScoringWeightsResponse carries the stored weights and the active model.
type ScoringWeightsResponse struct {
	Message     string         `json:"message"`
	ActiveModel string         `json:"active_model"`
	Weights     ScoringWeights `json:"weights"`
}
