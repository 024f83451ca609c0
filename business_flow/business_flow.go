// Package businessflow contains the business logic for the application.
package businessflow

import (
	"encoding/json"
	"log"
	"time"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/scoring"
	"github.com/amirphl/printshop/utils"
)

// degradedRead logs a storage failure on a read path and reports whether the
// caller should fall back to an empty or neutral result.
func degradedRead(op string, err error) bool {
	if err == nil || !IsStorageUnavailable(err) {
		return false
	}
	log.Printf("[degraded] %s: storage unavailable, serving fallback: %v", op, err)
	return true
}

// ToQuoteDTO converts a quote and its items to the response shape
func ToQuoteDTO(q *models.Quote, items []*models.QuoteItem) dto.Quote {
	out := dto.Quote{
		ID:                q.ID,
		UUID:              q.UUID.String(),
		CustomerID:        q.CustomerID,
		Status:            string(q.Status),
		Version:           q.Version,
		ParentQuoteID:     q.ParentQuoteID,
		MarkupPercent:     q.MarkupPercent,
		TotalSupplierCost: q.TotalSupplierCost,
		FinalValue:        q.FinalValue,
		RejectionReason:   q.RejectionReason,
		DealRating:        q.DealRating,
		Notes:             q.Notes,
		CreatedAt:         q.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         q.UpdatedAt.Format(time.RFC3339),
		Items:             make([]dto.QuoteItem, 0, len(items)),
	}
	for _, it := range items {
		out.Items = append(out.Items, ToQuoteItemDTO(it))
	}
	return out
}

func ToQuoteItemDTO(it *models.QuoteItem) dto.QuoteItem {
	out := dto.QuoteItem{
		ID:                  it.ID,
		ProductUnitID:       it.ProductUnitID,
		Quantity:            it.Quantity,
		SupplierID:          it.SupplierID,
		SupplierCost:        it.SupplierCost,
		CustomerPrice:       it.CustomerPrice,
		DeliveryDays:        it.DeliveryDays,
		ManualPriceOverride: utils.IsTrue(it.ManualPriceOverride),
		CourierPickedUp:     utils.IsTrue(it.CourierPickedUp),
		CourierPickedUpAt:   utils.FormatTimePtr(it.CourierPickedUpAt),
		CourierDelivered:    utils.IsTrue(it.CourierDelivered),
		CourierDeliveredAt:  utils.FormatTimePtr(it.CourierDeliveredAt),
	}
	if len(it.ScoreSnapshot) > 0 {
		out.ScoreSnapshot = json.RawMessage(it.ScoreSnapshot)
	}
	return out
}

func ToSupplierJobDTO(j *models.SupplierJob) dto.SupplierJob {
	return dto.SupplierJob{
		ID:                    j.ID,
		SupplierID:            j.SupplierID,
		QuoteID:               j.QuoteID,
		QuoteItemID:           j.QuoteItemID,
		ProductUnitID:         j.ProductUnitID,
		Quantity:              j.Quantity,
		Price:                 j.Price,
		Status:                string(j.Status),
		PromisedDeliveryDays:  j.PromisedDeliveryDays,
		ReadyAt:               utils.FormatTimePtr(j.ReadyAt),
		CourierConfirmedReady: utils.IsTrue(j.CourierConfirmedReady),
		Rating:                j.Rating,
		CreatedAt:             j.CreatedAt.Format(time.RFC3339),
	}
}

func ToSupplierPriceDTO(p *models.SupplierPrice) dto.SupplierPrice {
	return dto.SupplierPrice{
		ID:            p.ID,
		SupplierID:    p.SupplierID,
		ProductUnitID: p.ProductUnitID,
		PricePerUnit:  p.PricePerUnit,
		DeliveryDays:  p.DeliveryDays,
		IsActive:      utils.IsTrue(p.IsActive),
		UpdatedAt:     p.UpdatedAt.Format(time.RFC3339),
	}
}

func ToScoreBreakdownDTO(b scoring.ScoreBreakdown) dto.ScoreBreakdown {
	out := dto.ScoreBreakdown{
		Model:          b.Model,
		Base:           b.Base,
		Terms:          make([]dto.ScoreTerm, 0, len(b.Terms)),
		MultiItemBonus: b.MultiItemBonus,
		Total:          b.Total,
	}
	for _, t := range b.Terms {
		out.Terms = append(out.Terms, dto.ScoreTerm{Name: t.Name, Value: t.Value, Min: t.Min, Max: t.Max})
	}
	return out
}

func unitLabel(u *models.ProductUnit) string {
	if u == nil {
		return ""
	}
	if u.Product != nil {
		return u.Product.Name + " / " + u.SizeLabel
	}
	return u.SizeLabel
}
