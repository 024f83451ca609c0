package businessflow

import (
	"context"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/repository"
	"github.com/amirphl/printshop/utils"
)

// SupplierPriceFlow maintains supplier price offers
type SupplierPriceFlow interface {
	UpsertPrice(ctx context.Context, req *dto.UpsertSupplierPriceRequest) (*dto.SupplierPriceResponse, error)
	ListForUnit(ctx context.Context, productUnitID uint) (*dto.ListSupplierPricesResponse, error)
}

// SupplierPriceFlowImpl implements SupplierPriceFlow
type SupplierPriceFlowImpl struct {
	priceRepo repository.SupplierPriceRepository
	userRepo  repository.UserRepository
	unitRepo  repository.ProductUnitRepository
}

func NewSupplierPriceFlow(
	priceRepo repository.SupplierPriceRepository,
	userRepo repository.UserRepository,
	unitRepo repository.ProductUnitRepository,
) SupplierPriceFlow {
	return &SupplierPriceFlowImpl{
		priceRepo: priceRepo,
		userRepo:  userRepo,
		unitRepo:  unitRepo,
	}
}

// UpsertPrice creates or replaces the supplier's offer for a unit. A nil price
// in the response means the supplier or unit does not exist.
func (f *SupplierPriceFlowImpl) UpsertPrice(ctx context.Context, req *dto.UpsertSupplierPriceRequest) (*dto.SupplierPriceResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "Request is required", ErrInvalidRequest)
	}
	if req.PricePerUnit <= 0 {
		return nil, NewBusinessError("INVALID_PRICE", "Price per unit must be positive", ErrInvalidPrice)
	}
	if req.DeliveryDays < 0 {
		return nil, NewBusinessError("INVALID_DELIVERY_DAYS", "Delivery days must not be negative", ErrInvalidDays)
	}

	supplier, err := f.userRepo.ByID(ctx, req.SupplierID)
	if err != nil {
		return nil, writeError("PRICE_UPSERT_FAILED", "Failed to load supplier", err)
	}
	if supplier == nil || supplier.Role != models.UserRoleSupplier {
		return &dto.SupplierPriceResponse{Message: "Supplier not found"}, nil
	}
	unit, err := f.unitRepo.ByID(ctx, req.ProductUnitID)
	if err != nil {
		return nil, writeError("PRICE_UPSERT_FAILED", "Failed to load product unit", err)
	}
	if unit == nil {
		return &dto.SupplierPriceResponse{Message: "Product unit not found"}, nil
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	row := &models.SupplierPrice{
		SupplierID:    supplier.ID,
		ProductUnitID: unit.ID,
		PricePerUnit:  req.PricePerUnit,
		DeliveryDays:  req.DeliveryDays,
		IsActive:      utils.ToPtr(active),
	}
	if err := f.priceRepo.Upsert(ctx, row); err != nil {
		return nil, writeError("PRICE_UPSERT_FAILED", "Failed to save supplier price", err)
	}

	stored, err := f.priceRepo.BySupplierAndUnit(ctx, supplier.ID, unit.ID)
	if err != nil {
		return nil, writeError("PRICE_UPSERT_FAILED", "Failed to reload supplier price", err)
	}
	if stored == nil {
		stored = row
	}
	out := ToSupplierPriceDTO(stored)
	return &dto.SupplierPriceResponse{Message: "Supplier price saved", Price: &out}, nil
}

// ListForUnit returns the active prices of a unit offered by active suppliers.
func (f *SupplierPriceFlowImpl) ListForUnit(ctx context.Context, productUnitID uint) (*dto.ListSupplierPricesResponse, error) {
	rows, err := f.priceRepo.ListActiveByProductUnits(ctx, []uint{productUnitID})
	if err != nil {
		if degradedRead("list unit prices", err) {
			return &dto.ListSupplierPricesResponse{Message: "Storage unavailable", Items: []dto.SupplierPrice{}}, nil
		}
		return nil, err
	}
	items := make([]dto.SupplierPrice, 0, len(rows))
	for _, r := range rows {
		items = append(items, ToSupplierPriceDTO(r))
	}
	return &dto.ListSupplierPricesResponse{Message: "Supplier prices retrieved", Items: items}, nil
}
