package businessflow

import (
	"context"
	"sort"
	"strings"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/config"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/repository"
	"github.com/amirphl/printshop/utils"
)

// QuoteLifecycleFlow manages quote versions and their status machine
type QuoteLifecycleFlow interface {
	RequestQuote(ctx context.Context, req *dto.CreateQuoteRequest) (*dto.QuoteResponse, error)
	GetQuote(ctx context.Context, quoteID uint) (*dto.QuoteResponse, error)
	ReviseQuote(ctx context.Context, quoteID uint) (*dto.ReviseQuoteResponse, error)
	UpdateQuoteStatus(ctx context.Context, quoteID uint, req *dto.UpdateQuoteStatusRequest) (*dto.UpdateQuoteStatusResponse, error)
	RejectQuote(ctx context.Context, quoteID uint, req *dto.RejectQuoteRequest) (*dto.UpdateQuoteStatusResponse, error)
	RateDeal(ctx context.Context, quoteID uint, req *dto.RateDealRequest) (*dto.RateDealResponse, error)
	History(ctx context.Context, quoteID uint) (*dto.QuoteHistoryResponse, error)
	QuoteDocument(ctx context.Context, quoteID uint) (string, []byte, error)
}

// QuoteLifecycleFlowImpl implements QuoteLifecycleFlow
type QuoteLifecycleFlowImpl struct {
	transactor    repository.Transactor
	quoteRepo     repository.QuoteRepository
	itemRepo      repository.QuoteItemRepository
	userRepo      repository.UserRepository
	jobRepo       repository.SupplierJobRepository
	unitRepo      repository.ProductUnitRepository
	metricsFlow   SupplierMetricsFlow
	defaultMarkup float64
	document      config.DocumentConfig
}

func NewQuoteLifecycleFlow(
	transactor repository.Transactor,
	quoteRepo repository.QuoteRepository,
	itemRepo repository.QuoteItemRepository,
	userRepo repository.UserRepository,
	jobRepo repository.SupplierJobRepository,
	unitRepo repository.ProductUnitRepository,
	metricsFlow SupplierMetricsFlow,
	defaultMarkup float64,
	document config.DocumentConfig,
) QuoteLifecycleFlow {
	if defaultMarkup < 0 {
		defaultMarkup = utils.DefaultMarkupPercent
	}
	return &QuoteLifecycleFlowImpl{
		transactor:    transactor,
		quoteRepo:     quoteRepo,
		itemRepo:      itemRepo,
		userRepo:      userRepo,
		jobRepo:       jobRepo,
		unitRepo:      unitRepo,
		metricsFlow:   metricsFlow,
		defaultMarkup: defaultMarkup,
		document:      document,
	}
}

// RequestQuote creates a draft version 1 quote with its items.
func (f *QuoteLifecycleFlowImpl) RequestQuote(ctx context.Context, req *dto.CreateQuoteRequest) (*dto.QuoteResponse, error) {
	if req == nil || len(req.Items) == 0 {
		return nil, NewBusinessError("NO_ITEMS", "At least one item is required", ErrNoItems)
	}
	for i, it := range req.Items {
		if it.ProductUnitID == 0 {
			return nil, NewBusinessErrorf("INVALID_REQUEST", "Item %d has no product unit", ErrInvalidRequest, i)
		}
		if it.Quantity < 1 {
			return nil, NewBusinessErrorf("INVALID_QUANTITY", "Item %d has quantity %d", ErrInvalidQuantity, i, it.Quantity)
		}
	}
	markup := f.defaultMarkup
	if req.MarkupPercent != nil {
		if *req.MarkupPercent < 0 {
			return nil, NewBusinessError("INVALID_MARKUP", "Markup percent must not be negative", ErrInvalidMarkup)
		}
		markup = *req.MarkupPercent
	}

	var (
		quote *models.Quote
		items []*models.QuoteItem
	)
	err := f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		customer, err := f.userRepo.ByID(txCtx, req.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil || customer.Role != models.UserRoleCustomer {
			return NewBusinessError("CUSTOMER_NOT_FOUND", "Customer not found", ErrInvalidRequest)
		}

		q := &models.Quote{
			CustomerID:    customer.ID,
			Status:        models.QuoteStatusDraft,
			Version:       1,
			MarkupPercent: markup,
			Notes:         req.Notes,
		}
		if err := f.quoteRepo.Save(txCtx, q); err != nil {
			return err
		}
		rows := make([]*models.QuoteItem, 0, len(req.Items))
		for _, it := range req.Items {
			rows = append(rows, &models.QuoteItem{
				QuoteID:       q.ID,
				ProductUnitID: it.ProductUnitID,
				Quantity:      it.Quantity,
			})
		}
		if err := f.itemRepo.SaveBatch(txCtx, rows); err != nil {
			return err
		}
		quote, items = q, rows
		return nil
	})
	if err != nil {
		return nil, writeError("QUOTE_CREATE_FAILED", "Failed to create quote", err)
	}
	quoteTransitions.WithLabelValues(string(models.QuoteStatusDraft)).Inc()

	out := ToQuoteDTO(quote, items)
	return &dto.QuoteResponse{Message: "Quote created", Quote: &out}, nil
}

// GetQuote returns the quote with its items, or a nil quote when it does not exist.
func (f *QuoteLifecycleFlowImpl) GetQuote(ctx context.Context, quoteID uint) (*dto.QuoteResponse, error) {
	quote, err := f.quoteRepo.ByID(ctx, quoteID)
	if err != nil {
		if degradedRead("get quote", err) {
			return &dto.QuoteResponse{Message: "Storage unavailable"}, nil
		}
		return nil, err
	}
	if quote == nil {
		return &dto.QuoteResponse{Message: "Quote not found"}, nil
	}
	items, err := f.itemRepo.ListByQuote(ctx, quote.ID)
	if err != nil {
		if !degradedRead("list quote items", err) {
			return nil, err
		}
		items = nil
	}
	out := ToQuoteDTO(quote, items)
	return &dto.QuoteResponse{Message: "Quote retrieved", Quote: &out}, nil
}

// ReviseQuote supersedes a quote and creates its successor draft with cloned items.
func (f *QuoteLifecycleFlowImpl) ReviseQuote(ctx context.Context, quoteID uint) (*dto.ReviseQuoteResponse, error) {
	var (
		child *models.Quote
		items []*models.QuoteItem
	)
	err := f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		parent, err := f.quoteRepo.LockByID(txCtx, quoteID)
		if err != nil {
			return err
		}
		if parent == nil {
			return nil
		}
		if parent.Status.IsTerminal() {
			return NewBusinessErrorf("QUOTE_NOT_REVISABLE", "Quote in status %s cannot be revised", ErrQuoteNotRevisable, parent.Status)
		}

		if err := f.quoteRepo.UpdateStatus(txCtx, parent.ID, models.QuoteStatusSuperseded, nil); err != nil {
			return err
		}

		parentID := parent.ID
		q := &models.Quote{
			CustomerID:    parent.CustomerID,
			Status:        models.QuoteStatusDraft,
			Version:       parent.Version + 1,
			ParentQuoteID: &parentID,
			MarkupPercent: parent.MarkupPercent,
			Notes:         parent.Notes,
		}
		if err := f.quoteRepo.Save(txCtx, q); err != nil {
			return err
		}

		src, err := f.itemRepo.ListByQuote(txCtx, parent.ID)
		if err != nil {
			return err
		}
		clones := make([]*models.QuoteItem, 0, len(src))
		for _, it := range src {
			clones = append(clones, it.CloneForRevision(q.ID))
		}
		if len(clones) > 0 {
			if err := f.itemRepo.SaveBatch(txCtx, clones); err != nil {
				return err
			}
		}

		total, final, err := f.quoteRepo.RecalculateTotals(txCtx, q.ID)
		if err != nil {
			return err
		}
		q.TotalSupplierCost, q.FinalValue = total, final
		child, items = q, clones
		return nil
	})
	if err != nil {
		return nil, writeError("QUOTE_REVISE_FAILED", "Failed to revise quote", err)
	}
	if child == nil {
		return &dto.ReviseQuoteResponse{Message: "Quote not found", Success: false}, nil
	}
	quoteTransitions.WithLabelValues(string(models.QuoteStatusSuperseded)).Inc()

	out := ToQuoteDTO(child, items)
	return &dto.ReviseQuoteResponse{
		Message:    "Quote revised",
		Success:    true,
		NewQuoteID: child.ID,
		Quote:      &out,
	}, nil
}

// UpdateQuoteStatus applies a direct status change. Entering in_production
// opens one supplier job per priced item.
func (f *QuoteLifecycleFlowImpl) UpdateQuoteStatus(ctx context.Context, quoteID uint, req *dto.UpdateQuoteStatusRequest) (*dto.UpdateQuoteStatusResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "Request is required", ErrInvalidRequest)
	}
	next := models.QuoteStatus(req.Status)
	if !next.Valid() {
		return nil, NewBusinessErrorf("INVALID_QUOTE_STATUS", "Unknown status %q", ErrInvalidQuoteStatus, req.Status)
	}
	if next == models.QuoteStatusSuperseded {
		return nil, NewBusinessError("SUPERSEDE_VIA_REVISE", "Use revise to supersede a quote", ErrSupersedeViaRevise)
	}
	var reason *string
	if req.Reason != nil {
		if r := strings.TrimSpace(*req.Reason); r != "" {
			reason = &r
		}
	}
	if next == models.QuoteStatusRejected && reason == nil {
		return nil, NewBusinessError("REJECTION_REASON_REQUIRED", "A reason is required to reject a quote", ErrRejectionReasonRequired)
	}
	if next != models.QuoteStatusRejected {
		reason = nil
	}

	resp := &dto.UpdateQuoteStatusResponse{QuoteID: quoteID}
	var touchedSuppliers []uint
	err := f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		quote, err := f.quoteRepo.LockByID(txCtx, quoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return nil
		}
		resp.Success = true
		resp.Status = string(quote.Status)
		if quote.Status == next {
			return nil
		}
		if !quote.Status.CanTransitionTo(next) {
			return NewBusinessError("INVALID_STATUS_TRANSITION", transitionRefusal(quote.Status, next), ErrInvalidStatusTransition)
		}
		if err := f.quoteRepo.UpdateStatus(txCtx, quote.ID, next, reason); err != nil {
			return err
		}
		if next == models.QuoteStatusInProduction {
			created, suppliers, err := f.openSupplierJobs(txCtx, quote)
			if err != nil {
				return err
			}
			resp.JobsCreated = created
			touchedSuppliers = suppliers
		}
		resp.Status = string(next)
		resp.Changed = true
		return nil
	})
	if err != nil {
		return nil, writeError("QUOTE_STATUS_FAILED", "Failed to update quote status", err)
	}
	if !resp.Success {
		resp.Message = "Quote not found"
		return resp, nil
	}
	for _, id := range touchedSuppliers {
		f.metricsFlow.Invalidate(ctx, id)
	}
	if resp.Changed {
		quoteTransitions.WithLabelValues(resp.Status).Inc()
		resp.Message = "Quote status updated"
	} else {
		resp.Message = "Quote already in requested status"
	}
	return resp, nil
}

// openSupplierJobs creates jobs for priced items. Items that already have a job are skipped.
func (f *QuoteLifecycleFlowImpl) openSupplierJobs(txCtx context.Context, quote *models.Quote) (int64, []uint, error) {
	items, err := f.itemRepo.ListByQuote(txCtx, quote.ID)
	if err != nil {
		return 0, nil, err
	}
	customerID := quote.CustomerID
	quoteID := quote.ID
	jobs := make([]*models.SupplierJob, 0, len(items))
	seen := map[uint]bool{}
	var suppliers []uint
	for _, it := range items {
		if it.SupplierID == nil || it.SupplierCost == nil {
			continue
		}
		itemID := it.ID
		jobs = append(jobs, &models.SupplierJob{
			SupplierID:           *it.SupplierID,
			CustomerID:           &customerID,
			ProductUnitID:        it.ProductUnitID,
			QuoteID:              &quoteID,
			QuoteItemID:          &itemID,
			Quantity:             it.Quantity,
			Price:                *it.SupplierCost * float64(it.Quantity),
			Status:               models.SupplierJobStatusPending,
			PromisedDeliveryDays: it.DeliveryDays,
		})
		if !seen[*it.SupplierID] {
			seen[*it.SupplierID] = true
			suppliers = append(suppliers, *it.SupplierID)
		}
	}
	if len(jobs) == 0 {
		return 0, nil, nil
	}
	created, err := f.jobRepo.CreateForQuoteItems(txCtx, jobs)
	if err != nil {
		return 0, nil, err
	}
	return created, suppliers, nil
}

func (f *QuoteLifecycleFlowImpl) RejectQuote(ctx context.Context, quoteID uint, req *dto.RejectQuoteRequest) (*dto.UpdateQuoteStatusResponse, error) {
	if req == nil {
		return nil, NewBusinessError("REJECTION_REASON_REQUIRED", "A reason is required to reject a quote", ErrRejectionReasonRequired)
	}
	reason := req.Reason
	return f.UpdateQuoteStatus(ctx, quoteID, &dto.UpdateQuoteStatusRequest{
		Status: string(models.QuoteStatusRejected),
		Reason: &reason,
	})
}

// RateDeal stores the customer's rating of a deal and folds it into the
// customer's running totals. A repeated rating replaces the previous one.
func (f *QuoteLifecycleFlowImpl) RateDeal(ctx context.Context, quoteID uint, req *dto.RateDealRequest) (*dto.RateDealResponse, error) {
	if req == nil || req.Rating < 1 || req.Rating > 10 {
		return nil, NewBusinessError("RATING_OUT_OF_RANGE", "Rating must be between 1 and 10", ErrRatingOutOfRange)
	}

	found := false
	err := f.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		quote, err := f.quoteRepo.LockByID(txCtx, quoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return nil
		}
		if !quote.Status.IsRateable() {
			return NewBusinessErrorf("QUOTE_NOT_RATEABLE", "Quote in status %s cannot be rated", ErrQuoteNotRateable, quote.Status)
		}
		if err := f.quoteRepo.SetDealRating(txCtx, quote.ID, req.Rating); err != nil {
			return err
		}
		totalDelta, countDelta := int64(req.Rating), int64(1)
		if quote.DealRating != nil {
			totalDelta -= int64(*quote.DealRating)
			countDelta = 0
		}
		if err := f.userRepo.AddRating(txCtx, quote.CustomerID, totalDelta, countDelta); err != nil {
			return err
		}
		found = true
		return nil
	})
	if err != nil {
		return nil, writeError("RATE_DEAL_FAILED", "Failed to rate deal", err)
	}
	if !found {
		return &dto.RateDealResponse{Message: "Quote not found", Success: false, QuoteID: quoteID}, nil
	}
	return &dto.RateDealResponse{Message: "Deal rated", Success: true, QuoteID: quoteID, Rating: req.Rating}, nil
}

// History returns every version of the quote's chain ordered by version.
func (f *QuoteLifecycleFlowImpl) History(ctx context.Context, quoteID uint) (*dto.QuoteHistoryResponse, error) {
	empty := &dto.QuoteHistoryResponse{Message: "Quote not found", Versions: []dto.Quote{}}

	versions, err := f.chain(ctx, quoteID)
	if err != nil {
		if degradedRead("quote history", err) {
			return empty, nil
		}
		return nil, err
	}
	if len(versions) == 0 {
		return empty, nil
	}

	out := &dto.QuoteHistoryResponse{Message: "Quote history retrieved", Versions: make([]dto.Quote, 0, len(versions))}
	for _, q := range versions {
		items, err := f.itemRepo.ListByQuote(ctx, q.ID)
		if err != nil {
			if !degradedRead("quote history items", err) {
				return nil, err
			}
			items = nil
		}
		out.Versions = append(out.Versions, ToQuoteDTO(q, items))
	}
	return out, nil
}

// chain walks to the root of a revision chain and collects every descendant.
func (f *QuoteLifecycleFlowImpl) chain(ctx context.Context, quoteID uint) ([]*models.Quote, error) {
	start, err := f.quoteRepo.ByID(ctx, quoteID)
	if err != nil || start == nil {
		return nil, err
	}

	visited := map[uint]bool{start.ID: true}
	root := start
	for root.ParentQuoteID != nil && !visited[*root.ParentQuoteID] {
		parent, err := f.quoteRepo.ByID(ctx, *root.ParentQuoteID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		visited[parent.ID] = true
		root = parent
	}

	all := []*models.Quote{root}
	seen := map[uint]bool{root.ID: true}
	frontier := []uint{root.ID}
	for len(frontier) > 0 {
		children, err := f.quoteRepo.ListByParentIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		var next []uint
		for _, c := range children {
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			all = append(all, c)
			next = append(next, c.ID)
		}
		frontier = next
	}

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Version != all[j].Version {
			return all[i].Version < all[j].Version
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

// transitionRefusal tells staff which direct status sets are open from the current status.
func transitionRefusal(from, to models.QuoteStatus) string {
	allowed := from.AllowedTransitions()
	if len(allowed) == 0 {
		return "Cannot move quote from " + string(from) + " to " + string(to) + ": " + string(from) + " accepts no further status changes"
	}
	names := make([]string, len(allowed))
	for i, s := range allowed {
		names[i] = string(s)
	}
	return "Cannot move quote from " + string(from) + " to " + string(to) + ": status changes follow the quote workflow, allowed from " +
		string(from) + ": " + strings.Join(names, ", ")
}
