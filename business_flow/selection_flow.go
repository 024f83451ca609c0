package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/config"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/repository"
	"github.com/amirphl/printshop/utils"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
)

// SelectionFlow commits supplier choices onto quote items
type SelectionFlow interface {
	SelectSupplierForItems(ctx context.Context, quoteID uint, req *dto.SelectSupplierRequest) (*dto.SelectSupplierResponse, error)
	AutoSelect(ctx context.Context, quoteID uint) (*dto.AutoSelectResponse, error)
}

// SelectionFlowImpl implements SelectionFlow
type SelectionFlowImpl struct {
	transactor  repository.Transactor
	quoteRepo   repository.QuoteRepository
	itemRepo    repository.QuoteItemRepository
	userRepo    repository.UserRepository
	recFlow     RecommendationFlow
	rc          *redis.Client
	cacheConfig *config.CacheConfig
	lockTimeout time.Duration
}

func NewSelectionFlow(
	transactor repository.Transactor,
	quoteRepo repository.QuoteRepository,
	itemRepo repository.QuoteItemRepository,
	userRepo repository.UserRepository,
	recFlow RecommendationFlow,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	lockTimeout time.Duration,
) SelectionFlow {
	if lockTimeout <= 0 {
		lockTimeout = 30 * time.Second
	}
	return &SelectionFlowImpl{
		transactor:  transactor,
		quoteRepo:   quoteRepo,
		itemRepo:    itemRepo,
		userRepo:    userRepo,
		recFlow:     recFlow,
		rc:          rc,
		cacheConfig: cacheConfig,
		lockTimeout: lockTimeout,
	}
}

// CustomerPrice applies a markup percentage to a supplier cost and rounds to a whole currency unit.
func CustomerPrice(supplierCost, markupPercent float64) float64 {
	return math.Round(supplierCost * (1 + markupPercent/100))
}

// selectionLine is one item to commit for a supplier.
type selectionLine struct {
	quoteItemID   uint
	productUnitID uint
	pricePerUnit  float64
	deliveryDays  int
	snapshot      datatypes.JSON
}

type commitResult struct {
	found             bool
	totalSupplierCost float64
	finalValue        float64
	items             []*models.QuoteItem
}

func validateSelectionRequest(req *dto.SelectSupplierRequest) error {
	if req == nil || len(req.Items) == 0 {
		return NewBusinessError("NO_ITEMS", "At least one item is required", ErrNoItems)
	}
	if req.SupplierID == 0 {
		return NewBusinessError("INVALID_REQUEST", "Supplier is required", ErrInvalidRequest)
	}
	if req.MarkupPercent != nil && *req.MarkupPercent < 0 {
		return NewBusinessError("INVALID_MARKUP", "Markup percent must not be negative", ErrInvalidMarkup)
	}
	for i, it := range req.Items {
		if it.QuoteItemID == 0 {
			return NewBusinessErrorf("INVALID_REQUEST", "Item %d has no quote item id", ErrInvalidRequest, i)
		}
		if it.PricePerUnit <= 0 {
			return NewBusinessErrorf("INVALID_PRICE", "Item %d has a non-positive price", ErrInvalidPrice, i)
		}
		if it.DeliveryDays < 0 {
			return NewBusinessErrorf("INVALID_DELIVERY_DAYS", "Item %d has negative delivery days", ErrInvalidDays, i)
		}
	}
	return nil
}

// SelectSupplierForItems writes one supplier's prices onto several quote items and
// recalculates the quote totals. Any item failure rolls back the whole batch.
func (f *SelectionFlowImpl) SelectSupplierForItems(ctx context.Context, quoteID uint, req *dto.SelectSupplierRequest) (*dto.SelectSupplierResponse, error) {
	if err := validateSelectionRequest(req); err != nil {
		selectionCommits.WithLabelValues("invalid").Inc()
		return nil, err
	}

	lines := make([]selectionLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, selectionLine{
			quoteItemID:   it.QuoteItemID,
			productUnitID: it.ProductUnitID,
			pricePerUnit:  it.PricePerUnit,
			deliveryDays:  it.DeliveryDays,
		})
	}

	var res commitResult
	err := f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		quote, err := f.quoteRepo.LockByID(txCtx, quoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return nil
		}

		supplier, err := f.userRepo.ByID(txCtx, req.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil || supplier.Role != models.UserRoleSupplier {
			return nil
		}
		if supplier.Status != models.UserStatusActive {
			return NewBusinessError("SUPPLIER_INACTIVE", "Supplier is not active", ErrSupplierInactive)
		}

		markup := quote.MarkupPercent
		if req.MarkupPercent != nil {
			markup = *req.MarkupPercent
		}
		res, err = f.commit(txCtx, quote, map[uint][]selectionLine{supplier.ID: lines}, markup)
		return err
	})
	if err != nil {
		selectionCommits.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, writeError("SELECTION_FAILED", "Failed to commit supplier selection", err)
	}
	if !res.found {
		selectionCommits.WithLabelValues("not_found").Inc()
		return &dto.SelectSupplierResponse{Message: "Quote or supplier not found", Success: false, QuoteID: quoteID, UpdatedItems: []dto.QuoteItem{}}, nil
	}
	selectionCommits.WithLabelValues("success").Inc()

	selected := make(map[uint]bool, len(lines))
	for _, l := range lines {
		selected[l.quoteItemID] = true
	}
	updated := make([]dto.QuoteItem, 0, len(lines))
	for _, it := range res.items {
		if selected[it.ID] {
			updated = append(updated, ToQuoteItemDTO(it))
		}
	}

	return &dto.SelectSupplierResponse{
		Message:           "Supplier selected",
		Success:           true,
		QuoteID:           quoteID,
		UpdatedItems:      updated,
		TotalSupplierCost: res.totalSupplierCost,
		FinalValue:        res.finalValue,
	}, nil
}

// commit applies selections to a locked quote. It must run inside a transaction.
func (f *SelectionFlowImpl) commit(txCtx context.Context, quote *models.Quote, bySupplier map[uint][]selectionLine, markup float64) (commitResult, error) {
	if !quote.Status.IsEditable() {
		return commitResult{}, NewBusinessErrorf("QUOTE_NOT_EDITABLE", "Quote in status %s cannot change suppliers", ErrQuoteNotEditable, quote.Status)
	}

	existing, err := f.itemRepo.ListByQuote(txCtx, quote.ID)
	if err != nil {
		return commitResult{}, err
	}
	byID := make(map[uint]*models.QuoteItem, len(existing))
	for _, it := range existing {
		byID[it.ID] = it
	}

	supplierIDs := make([]uint, 0, len(bySupplier))
	for id := range bySupplier {
		supplierIDs = append(supplierIDs, id)
	}
	sort.Slice(supplierIDs, func(i, j int) bool { return supplierIDs[i] < supplierIDs[j] })

	for _, supplierID := range supplierIDs {
		for _, l := range bySupplier[supplierID] {
			item, ok := byID[l.quoteItemID]
			if !ok {
				return commitResult{}, NewBusinessErrorf("ITEM_NOT_IN_QUOTE", "Item %d is not part of quote %d", ErrItemNotInQuote, l.quoteItemID, quote.ID)
			}
			if l.productUnitID != 0 && l.productUnitID != item.ProductUnitID {
				return commitResult{}, NewBusinessErrorf("ITEM_UNIT_MISMATCH", "Item %d is for unit %d, not %d", ErrItemUnitMismatch, l.quoteItemID, item.ProductUnitID, l.productUnitID)
			}
			applied, err := f.itemRepo.ApplySelection(txCtx, quote.ID, models.QuoteItemSelection{
				QuoteItemID:   l.quoteItemID,
				SupplierID:    supplierID,
				SupplierCost:  l.pricePerUnit,
				CustomerPrice: CustomerPrice(l.pricePerUnit, markup),
				DeliveryDays:  l.deliveryDays,
				ScoreSnapshot: l.snapshot,
			})
			if err != nil {
				return commitResult{}, err
			}
			if !applied {
				return commitResult{}, NewBusinessErrorf("ITEM_NOT_IN_QUOTE", "Item %d is not part of quote %d", ErrItemNotInQuote, l.quoteItemID, quote.ID)
			}
		}
	}

	total, final, err := f.quoteRepo.RecalculateTotals(txCtx, quote.ID)
	if err != nil {
		return commitResult{}, err
	}
	items, err := f.itemRepo.ListByQuote(txCtx, quote.ID)
	if err != nil {
		return commitResult{}, err
	}
	return commitResult{found: true, totalSupplierCost: total, finalValue: final, items: items}, nil
}

// AutoSelect commits the top-ranked supplier of every quote item in one transaction.
// Items without any eligible supplier are reported as unfilled.
func (f *SelectionFlowImpl) AutoSelect(ctx context.Context, quoteID uint) (*dto.AutoSelectResponse, error) {
	if f.rc != nil {
		lock, err := acquireRedisLock(ctx, f.rc, f.lockKey(quoteID), f.lockTimeout)
		if err != nil {
			return nil, NewBusinessError("AUTO_SELECT_LOCK_FAILED", "Failed to acquire lock", err)
		}
		if lock == nil {
			return nil, NewBusinessError("AUTO_SELECT_LOCK_BUSY", "Auto-select is already running for this quote", ErrAutoSelectInProgress)
		}
		defer lock.Release(context.Background())
	}

	notFound := &dto.AutoSelectResponse{Message: "Quote not found", Success: false, QuoteID: quoteID, Selected: []dto.AutoSelectedItem{}, UnfilledItemIDs: []uint{}}

	quote, err := f.quoteRepo.ByID(ctx, quoteID)
	if err != nil {
		return nil, writeError("AUTO_SELECT_FAILED", "Failed to load quote", err)
	}
	if quote == nil {
		return notFound, nil
	}
	if !quote.Status.IsEditable() {
		return nil, NewBusinessErrorf("QUOTE_NOT_EDITABLE", "Quote in status %s cannot change suppliers", ErrQuoteNotEditable, quote.Status)
	}

	items, err := f.itemRepo.ListByQuote(ctx, quoteID)
	if err != nil {
		return nil, writeError("AUTO_SELECT_FAILED", "Failed to load quote items", err)
	}
	resp := &dto.AutoSelectResponse{
		Message:         "Suppliers selected",
		Success:         true,
		QuoteID:         quoteID,
		Selected:        []dto.AutoSelectedItem{},
		UnfilledItemIDs: []uint{},
	}
	if len(items) == 0 {
		resp.TotalSupplierCost = quote.TotalSupplierCost
		resp.FinalValue = quote.FinalValue
		return resp, nil
	}

	req := &dto.GenerateRecommendationsRequest{Limit: 1}
	for _, it := range items {
		id := it.ID
		req.Items = append(req.Items, dto.RecommendationItemRequest{QuoteItemID: &id, ProductUnitID: it.ProductUnitID, Quantity: it.Quantity})
	}
	recs, err := f.recFlow.GenerateRecommendations(ctx, req)
	if err != nil {
		return nil, err
	}

	bySupplier := make(map[uint][]selectionLine)
	for _, rec := range recs.Items {
		if rec.QuoteItemID == nil {
			continue
		}
		if len(rec.Suppliers) == 0 {
			resp.UnfilledItemIDs = append(resp.UnfilledItemIDs, *rec.QuoteItemID)
			continue
		}
		top := rec.Suppliers[0]
		snapshot, err := json.Marshal(top.Score)
		if err != nil {
			return nil, NewBusinessError("AUTO_SELECT_FAILED", "Failed to encode score snapshot", err)
		}
		bySupplier[top.SupplierID] = append(bySupplier[top.SupplierID], selectionLine{
			quoteItemID:   *rec.QuoteItemID,
			productUnitID: rec.ProductUnitID,
			pricePerUnit:  top.PricePerUnit,
			deliveryDays:  top.DeliveryDays,
			snapshot:      datatypes.JSON(snapshot),
		})
		resp.Selected = append(resp.Selected, dto.AutoSelectedItem{
			QuoteItemID: *rec.QuoteItemID,
			SupplierID:  top.SupplierID,
			Score:       top.Score.Total,
		})
	}

	if len(bySupplier) == 0 {
		resp.Message = "No eligible suppliers"
		resp.TotalSupplierCost = quote.TotalSupplierCost
		resp.FinalValue = quote.FinalValue
		return resp, nil
	}

	var res commitResult
	err = f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		locked, err := f.quoteRepo.LockByID(txCtx, quoteID)
		if err != nil {
			return err
		}
		if locked == nil {
			return nil
		}
		res, err = f.commit(txCtx, locked, bySupplier, locked.MarkupPercent)
		return err
	})
	if err != nil {
		selectionCommits.WithLabelValues(outcomeLabel(err)).Inc()
		return nil, writeError("AUTO_SELECT_FAILED", "Failed to commit supplier selection", err)
	}
	if !res.found {
		selectionCommits.WithLabelValues("not_found").Inc()
		return notFound, nil
	}
	selectionCommits.WithLabelValues("success").Inc()

	resp.TotalSupplierCost = res.totalSupplierCost
	resp.FinalValue = res.finalValue
	return resp, nil
}

func (f *SelectionFlowImpl) lockKey(quoteID uint) string {
	id := strconv.FormatUint(uint64(quoteID), 10)
	if f.cacheConfig == nil {
		return utils.QuoteAutoSelectLockKey + ":" + id
	}
	return f.cacheConfig.RedisKey(utils.QuoteAutoSelectLockKey, id)
}

func outcomeLabel(err error) string {
	var be *BusinessError
	switch {
	case IsStorageUnavailable(err):
		return "storage_unavailable"
	case errors.As(err, &be):
		return "rejected"
	default:
		return "error"
	}
}
