package dto

import "encoding/json"

// CreateQuoteItemRequest is one line of a new quote.
type CreateQuoteItemRequest struct {
	ProductUnitID uint `json:"product_unit_id" validate:"required"`
	Quantity      int  `json:"quantity" validate:"required,min=1"`
}

// CreateQuoteRequest represents payload for requesting a new quote.
type CreateQuoteRequest struct {
	CustomerID    uint                     `json:"customer_id" validate:"required"`
	MarkupPercent *float64                 `json:"markup_percent,omitempty" validate:"omitempty,min=0,max=1000"`
	Notes         *string                  `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Items         []CreateQuoteItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
}

// QuoteItem represents a quote line in responses.
type QuoteItem struct {
	ID                  uint            `json:"id"`
	ProductUnitID       uint            `json:"product_unit_id"`
	Quantity            int             `json:"quantity"`
	SupplierID          *uint           `json:"supplier_id,omitempty"`
	SupplierCost        *float64        `json:"supplier_cost,omitempty"`
	CustomerPrice       *float64        `json:"customer_price,omitempty"`
	DeliveryDays        *int            `json:"delivery_days,omitempty"`
	ManualPriceOverride bool            `json:"manual_price_override"`
	ScoreSnapshot       json.RawMessage `json:"score_snapshot,omitempty"`
	CourierPickedUp     bool            `json:"courier_picked_up"`
	CourierPickedUpAt   *string         `json:"courier_picked_up_at,omitempty"`
	CourierDelivered    bool            `json:"courier_delivered"`
	CourierDeliveredAt  *string         `json:"courier_delivered_at,omitempty"`
}

// Quote represents one quote version in responses.
type Quote struct {
	ID                uint        `json:"id"`
	UUID              string      `json:"uuid"`
	CustomerID        uint        `json:"customer_id"`
	Status            string      `json:"status"`
	Version           int         `json:"version"`
	ParentQuoteID     *uint       `json:"parent_quote_id,omitempty"`
	MarkupPercent     float64     `json:"markup_percent"`
	TotalSupplierCost float64     `json:"total_supplier_cost"`
	FinalValue        float64     `json:"final_value"`
	RejectionReason   *string     `json:"rejection_reason,omitempty"`
	DealRating        *int        `json:"deal_rating,omitempty"`
	Notes             *string     `json:"notes,omitempty"`
	CreatedAt         string      `json:"created_at"`
	UpdatedAt         string      `json:"updated_at"`
	Items             []QuoteItem `json:"items"`
}

// QuoteResponse wraps a single quote.
type QuoteResponse struct {
	Message string `json:"message"`
	Quote   *Quote `json:"quote,omitempty"`
}

// ReviseQuoteResponse reports the successor created by a revision.
// NewQuoteID is zero when the quote did not exist.
type ReviseQuoteResponse struct {
	Message    string `json:"message"`
	Success    bool   `json:"success"`
	NewQuoteID uint   `json:"new_quote_id"`
	Quote      *Quote `json:"quote,omitempty"`
}

// UpdateQuoteStatusRequest represents a direct status change by staff.
type UpdateQuoteStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=draft sent approved rejected in_production ready"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=2000"`
}

// RejectQuoteRequest represents a rejection with its mandatory reason.
type RejectQuoteRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// UpdateQuoteStatusResponse reports the outcome of a status change.
type UpdateQuoteStatusResponse struct {
	Message     string `json:"message"`
	Success     bool   `json:"success"`
	QuoteID     uint   `json:"quote_id"`
	Status      string `json:"status,omitempty"`
	Changed     bool   `json:"changed"`
	JobsCreated int64  `json:"jobs_created"`
}

// RateDealRequest represents the customer's 1..10 rating of a deal.
type RateDealRequest struct {
	Rating int `json:"rating" validate:"required,min=1,max=10"`
}

// RateDealResponse reports the stored rating.
type RateDealResponse struct {
	Message string `json:"message"`
	Success bool   `json:"success"`
	QuoteID uint   `json:"quote_id"`
	Rating  int    `json:"rating,omitempty"`
}

// QuoteHistoryResponse lists every version of a chain, oldest first.
type QuoteHistoryResponse struct {
	Message  string  `json:"message"`
	Versions []Quote `json:"versions"`
}
