package businessflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/config"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/repository"
	"github.com/amirphl/printshop/scoring"
	"github.com/amirphl/printshop/utils"
	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"
)

// RecommendationFlow ranks suppliers for quote line items
type RecommendationFlow interface {
	GenerateRecommendations(ctx context.Context, req *dto.GenerateRecommendationsRequest) (*dto.GenerateRecommendationsResponse, error)
	ExportRecommendations(ctx context.Context, req *dto.GenerateRecommendationsRequest) (string, []byte, error)
	MarketPrice(ctx context.Context, productUnitID *uint) (*dto.MarketPriceResponse, error)
}

// RecommendationFlowImpl implements RecommendationFlow
type RecommendationFlowImpl struct {
	priceRepo   repository.SupplierPriceRepository
	unitRepo    repository.ProductUnitRepository
	weightsRepo repository.ScoringWeightsRepository
	metricsFlow SupplierMetricsFlow
	cfg         config.ScoringConfig
}

func NewRecommendationFlow(
	priceRepo repository.SupplierPriceRepository,
	unitRepo repository.ProductUnitRepository,
	weightsRepo repository.ScoringWeightsRepository,
	metricsFlow SupplierMetricsFlow,
	cfg config.ScoringConfig,
) RecommendationFlow {
	return &RecommendationFlowImpl{
		priceRepo:   priceRepo,
		unitRepo:    unitRepo,
		weightsRepo: weightsRepo,
		metricsFlow: metricsFlow,
		cfg:         cfg,
	}
}

// itemRanking is the ranked result for one requested item before DTO conversion.
type itemRanking struct {
	request     dto.RecommendationItemRequest
	unit        *models.ProductUnit
	marketPrice float64
	candidates  []scoring.Candidate
}

type rankingResult struct {
	model     string
	items     []itemRanking
	suppliers map[uint]*models.User
	breadth   map[uint]int
}

func (f *RecommendationFlowImpl) GenerateRecommendations(ctx context.Context, req *dto.GenerateRecommendationsRequest) (*dto.GenerateRecommendationsResponse, error) {
	if err := validateRecommendationRequest(req); err != nil {
		return nil, err
	}
	res, err := f.rank(ctx, req.Items, f.limit(req.Limit))
	if err != nil {
		return nil, err
	}
	return res.toDTO(), nil
}

func validateRecommendationRequest(req *dto.GenerateRecommendationsRequest) error {
	if req == nil || len(req.Items) == 0 {
		return NewBusinessError("NO_ITEMS", "At least one item is required", ErrNoItems)
	}
	for i, it := range req.Items {
		if it.ProductUnitID == 0 {
			return NewBusinessErrorf("INVALID_REQUEST", "Item %d has no product unit", ErrInvalidRequest, i)
		}
		if it.Quantity < 1 {
			return NewBusinessErrorf("INVALID_QUANTITY", "Item %d has quantity %d", ErrInvalidQuantity, i, it.Quantity)
		}
	}
	return nil
}

func (f *RecommendationFlowImpl) limit(requested int) int {
	if requested > 0 {
		return requested
	}
	if f.cfg.TopN > 0 {
		return f.cfg.TopN
	}
	return utils.DefaultRecommendationLimit
}

func (f *RecommendationFlowImpl) strategy(ctx context.Context) (scoring.Strategy, error) {
	capacity := f.cfg.CapacityBonusMax
	if capacity <= 0 {
		capacity = utils.DefaultCapacityBonusMax
	}
	weights := models.DefaultScoringWeights()
	if strings.EqualFold(f.cfg.Model, scoring.ModelWeighted) {
		w, err := f.weightsRepo.Get(ctx)
		if err != nil && !degradedRead("scoring weights", err) {
			return nil, err
		}
		if err == nil {
			weights = w
		}
	}
	s, err := scoring.NewStrategy(f.cfg.Model, capacity, weights)
	if err != nil {
		return nil, NewBusinessError("INVALID_SCORING_MODEL", "Scoring model is misconfigured", err)
	}
	return s, nil
}

// rank scores every active supplier price of every requested item.
func (f *RecommendationFlowImpl) rank(ctx context.Context, items []dto.RecommendationItemRequest, limit int) (*rankingResult, error) {
	start := time.Now()
	defer func() { recommendationLatency.Observe(time.Since(start).Seconds()) }()

	strat, err := f.strategy(ctx)
	if err != nil {
		return nil, err
	}

	res := &rankingResult{
		model:     strat.Name(),
		items:     make([]itemRanking, len(items)),
		suppliers: make(map[uint]*models.User),
		breadth:   make(map[uint]int),
	}
	for i, it := range items {
		res.items[i] = itemRanking{request: it, candidates: []scoring.Candidate{}}
	}

	unitIDs := distinctUnitIDs(items)

	prices, err := f.priceRepo.ListActiveByProductUnits(ctx, unitIDs)
	if err != nil {
		if degradedRead("list supplier prices", err) {
			recommendationsGenerated.WithLabelValues(res.model).Inc()
			return res, nil
		}
		return nil, err
	}
	pricesByUnit := make(map[uint][]*models.SupplierPrice)
	for _, p := range prices {
		pricesByUnit[p.ProductUnitID] = append(pricesByUnit[p.ProductUnitID], p)
		if p.Supplier != nil {
			res.suppliers[p.SupplierID] = p.Supplier
		} else if _, ok := res.suppliers[p.SupplierID]; !ok {
			res.suppliers[p.SupplierID] = nil
		}
	}

	// Breadth counts batch items, so two lines of the same unit count twice.
	for _, it := range items {
		for _, p := range pricesByUnit[it.ProductUnitID] {
			res.breadth[p.SupplierID]++
		}
	}

	units := make(map[uint]*models.ProductUnit)
	rows, err := f.unitRepo.ByIDsWithProduct(ctx, unitIDs)
	if err != nil && !degradedRead("load product units", err) {
		return nil, err
	}
	for _, u := range rows {
		units[u.ID] = u
	}

	market := make(map[uint]float64, len(unitIDs))
	for _, id := range unitIDs {
		price, err := f.priceRepo.AveragePrice(ctx, &id)
		if err != nil {
			if !degradedRead("market price", err) {
				return nil, err
			}
			price = 0
		}
		market[id] = price
	}

	metrics, err := f.fetchMetrics(ctx, res.suppliers)
	if err != nil {
		return nil, err
	}

	scored := 0
	for i := range res.items {
		ir := &res.items[i]
		unitID := ir.request.ProductUnitID
		ir.unit = units[unitID]
		ir.marketPrice = market[unitID]

		var categoryID *uint
		if ir.unit != nil && ir.unit.Product != nil {
			c := ir.unit.Product.CategoryID
			categoryID = &c
		}

		cands := make([]scoring.Candidate, 0, len(pricesByUnit[unitID]))
		for _, p := range pricesByUnit[unitID] {
			m := metrics[p.SupplierID].ForCategory(categoryID)
			b := strat.Score(scoring.ScoreInput{
				Metrics:       m,
				SupplierPrice: p.PricePerUnit,
				MarketPrice:   ir.marketPrice,
				DeliveryDays:  p.DeliveryDays,
			})
			b = strat.ApplyMultiItemBonus(b, res.breadth[p.SupplierID]-1)

			name := ""
			if s := res.suppliers[p.SupplierID]; s != nil {
				name = s.DisplayName
			}
			cands = append(cands, scoring.Candidate{
				SupplierID:   p.SupplierID,
				SupplierName: name,
				PricePerUnit: p.PricePerUnit,
				DeliveryDays: p.DeliveryDays,
				MarketPrice:  ir.marketPrice,
				Metrics:      m,
				Breakdown:    b,
			})
		}
		scored += len(cands)
		ir.candidates = scoring.Rank(cands, limit)
	}

	candidatesScored.Add(float64(scored))
	recommendationsGenerated.WithLabelValues(res.model).Inc()
	return res, nil
}

// fetchMetrics loads metrics for every supplier concurrently. Results land in a
// map keyed by supplier id, so ranking does not depend on completion order.
func (f *RecommendationFlowImpl) fetchMetrics(ctx context.Context, suppliers map[uint]*models.User) (map[uint]scoring.SupplierMetrics, error) {
	ids := make([]uint, 0, len(suppliers))
	for id := range suppliers {
		ids = append(ids, id)
	}
	results := make([]scoring.SupplierMetrics, len(ids))

	workers := f.cfg.MaxConcurrentFetches
	if workers <= 0 {
		workers = utils.DefaultMetricFetchWorkers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, id := range ids {
		g.Go(func() error {
			m, err := f.metricsFlow.Metrics(gctx, id)
			if err != nil {
				return fmt.Errorf("metrics for supplier %d: %w", id, err)
			}
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[uint]scoring.SupplierMetrics, len(ids))
	for i, id := range ids {
		out[id] = results[i]
	}
	return out, nil
}

func distinctUnitIDs(items []dto.RecommendationItemRequest) []uint {
	seen := make(map[uint]bool, len(items))
	ids := make([]uint, 0, len(items))
	for _, it := range items {
		if !seen[it.ProductUnitID] {
			seen[it.ProductUnitID] = true
			ids = append(ids, it.ProductUnitID)
		}
	}
	return ids
}

func (r *rankingResult) toDTO() *dto.GenerateRecommendationsResponse {
	out := &dto.GenerateRecommendationsResponse{
		Message: "Recommendations generated",
		Model:   r.model,
		Items:   make([]dto.ItemRecommendation, 0, len(r.items)),
	}
	for i, ir := range r.items {
		rec := dto.ItemRecommendation{
			Index:            i,
			QuoteItemID:      ir.request.QuoteItemID,
			ProductUnitID:    ir.request.ProductUnitID,
			ProductUnitLabel: unitLabel(ir.unit),
			Quantity:         ir.request.Quantity,
			MarketPrice:      ir.marketPrice,
			Suppliers:        make([]dto.SupplierCandidate, 0, len(ir.candidates)),
		}
		for _, c := range ir.candidates {
			sc := dto.SupplierCandidate{
				Rank:             c.Rank,
				SupplierID:       c.SupplierID,
				SupplierName:     c.SupplierName,
				PricePerUnit:     c.PricePerUnit,
				DeliveryDays:     c.DeliveryDays,
				FulfillableItems: r.breadth[c.SupplierID],
				Score:            ToScoreBreakdownDTO(c.Breakdown),
				Metrics:          c.Metrics,
			}
			if s := r.suppliers[c.SupplierID]; s != nil {
				sc.CompanyName = s.CompanyName
			}
			rec.Suppliers = append(rec.Suppliers, sc)
		}
		out.Items = append(out.Items, rec)
	}
	return out
}

// MarketPrice returns the average active price of a unit, or of all units when productUnitID is nil.
func (f *RecommendationFlowImpl) MarketPrice(ctx context.Context, productUnitID *uint) (*dto.MarketPriceResponse, error) {
	price, err := f.priceRepo.AveragePrice(ctx, productUnitID)
	if err != nil {
		if !degradedRead("market price", err) {
			return nil, err
		}
		price = 0
	}
	return &dto.MarketPriceResponse{
		Message:       "Market price retrieved",
		ProductUnitID: productUnitID,
		MarketPrice:   price,
		HasBaseline:   price > 0,
	}, nil
}

// ExportRecommendations renders the ranking as a workbook with one sheet per item.
func (f *RecommendationFlowImpl) ExportRecommendations(ctx context.Context, req *dto.GenerateRecommendationsRequest) (string, []byte, error) {
	if err := validateRecommendationRequest(req); err != nil {
		return "", nil, err
	}
	res, err := f.rank(ctx, req.Items, f.limit(req.Limit))
	if err != nil {
		return "", nil, err
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	termNames := termColumns(res)
	header := []string{"rank", "supplier_id", "supplier_name", "price_per_unit", "delivery_days", "fulfillable_items", "base"}
	header = append(header, termNames...)
	header = append(header, "multi_item_bonus", "total")

	usedNames := map[string]bool{}
	for i, ir := range res.items {
		baseName := sanitizeSheetName(fmt.Sprintf("%d %s", i+1, unitLabel(ir.unit)))
		name := baseName
		idx := 1
		for usedNames[name] {
			idx++
			suffix := fmt.Sprintf("_%d", idx)
			name = truncateSheetNameTo(baseName, maxSheetNameRunes-len(suffix)) + suffix
		}
		usedNames[name] = true
		if i == 0 {
			if err := xl.SetSheetName(xl.GetSheetName(0), name); err != nil {
				return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to create sheet", err)
			}
		} else if _, err := xl.NewSheet(name); err != nil {
			return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to create sheet", err)
		}

		_ = xl.SetSheetRow(name, "A1", &header)
		for ri, c := range ir.candidates {
			record := []any{
				c.Rank,
				c.SupplierID,
				c.SupplierName,
				c.PricePerUnit,
				c.DeliveryDays,
				res.breadth[c.SupplierID],
				c.Breakdown.Base,
			}
			for _, t := range termNames {
				record = append(record, c.Breakdown.Term(t))
			}
			record = append(record, c.Breakdown.MultiItemBonus, c.Breakdown.Total)
			cellRef, _ := excelize.CoordinatesToCellName(1, ri+2)
			_ = xl.SetSheetRow(name, cellRef, &record)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to write workbook", err)
	}
	filename := "recommendations_" + strconv.FormatInt(utils.UTCNow().Unix(), 10) + ".xlsx"
	return filename, buf.Bytes(), nil
}

// termColumns lists term names in first-seen order so every sheet shares one header.
func termColumns(res *rankingResult) []string {
	var names []string
	seen := map[string]bool{}
	for _, ir := range res.items {
		for _, c := range ir.candidates {
			for _, t := range c.Breakdown.Terms {
				if !seen[t.Name] {
					seen[t.Name] = true
					names = append(names, t.Name)
				}
			}
		}
	}
	return names
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain: : \\ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := replacer.Replace(name)
	return truncateSheetName(strings.TrimSpace(safe))
}

const maxSheetNameRunes = 31

func truncateSheetName(name string) string {
	if name == "" {
		return "Sheet"
	}
	return truncateSheetNameTo(name, maxSheetNameRunes)
}

// truncateSheetNameTo cuts on rune boundaries; excelize counts sheet names in runes.
func truncateSheetNameTo(name string, limit int) string {
	runes := []rune(name)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return name
}
