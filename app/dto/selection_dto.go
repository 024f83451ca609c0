package dto

// SelectionItemRequest is the price a supplier offers for one quote item.
type SelectionItemRequest struct {
	QuoteItemID   uint    `json:"quote_item_id" validate:"required"`
	ProductUnitID uint    `json:"product_unit_id" validate:"required"`
	PricePerUnit  float64 `json:"price_per_unit" validate:"gt=0"`
	DeliveryDays  int     `json:"delivery_days" validate:"min=0"`
}

// SelectSupplierRequest commits one supplier onto several items of a quote.
type SelectSupplierRequest struct {
	SupplierID    uint                   `json:"supplier_id" validate:"required"`
	Items         []SelectionItemRequest `json:"items" validate:"required,min=1,max=100,dive"`
	MarkupPercent *float64               `json:"markup_percent,omitempty" validate:"omitempty,min=0,max=1000"`
}

// SelectSupplierResponse reports the updated items and quote totals.
// Success is false when the quote or supplier does not exist.
type SelectSupplierResponse struct {
	Message           string      `json:"message"`
	Success           bool        `json:"success"`
	QuoteID           uint        `json:"quote_id"`
	UpdatedItems      []QuoteItem `json:"updated_items"`
	TotalSupplierCost float64     `json:"total_supplier_cost"`
	FinalValue        float64     `json:"final_value"`
}

// AutoSelectedItem is the supplier chosen automatically for one item.
type AutoSelectedItem struct {
	QuoteItemID uint    `json:"quote_item_id"`
	SupplierID  uint    `json:"supplier_id"`
	Score       float64 `json:"score"`
}

// AutoSelectResponse reports the result of auto-populating a quote.
type AutoSelectResponse struct {
	Message           string             `json:"message"`
	Success           bool               `json:"success"`
	QuoteID           uint               `json:"quote_id"`
	Selected          []AutoSelectedItem `json:"selected"`
	UnfilledItemIDs   []uint             `json:"unfilled_item_ids"`
	TotalSupplierCost float64            `json:"total_supplier_cost"`
	FinalValue        float64            `json:"final_value"`
}
