package businessflow

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/config"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/repository"
	"github.com/amirphl/printshop/scoring"
	"github.com/amirphl/printshop/utils"
	"github.com/redis/go-redis/v9"
)

// SupplierMetricsFlow aggregates and caches supplier performance metrics
type SupplierMetricsFlow interface {
	Metrics(ctx context.Context, supplierID uint) (scoring.SupplierMetrics, error)
	GetSupplierMetrics(ctx context.Context, supplierID uint, query dto.SupplierMetricsQuery) (*dto.SupplierMetricsResponse, error)
	Invalidate(ctx context.Context, supplierID uint)
	Warm(ctx context.Context) (int, error)
}

// SupplierMetricsFlowImpl implements SupplierMetricsFlow.
// A nil redis client disables caching.
type SupplierMetricsFlowImpl struct {
	userRepo    repository.UserRepository
	jobRepo     repository.SupplierJobRepository
	unitRepo    repository.ProductUnitRepository
	rc          *redis.Client
	cacheConfig *config.CacheConfig
	ttl         time.Duration
}

func NewSupplierMetricsFlow(
	userRepo repository.UserRepository,
	jobRepo repository.SupplierJobRepository,
	unitRepo repository.ProductUnitRepository,
	rc *redis.Client,
	cacheConfig *config.CacheConfig,
	ttl time.Duration,
) SupplierMetricsFlow {
	if ttl <= 0 {
		ttl = utils.DefaultMetricsCacheTTL
	}
	return &SupplierMetricsFlowImpl{
		userRepo:    userRepo,
		jobRepo:     jobRepo,
		unitRepo:    unitRepo,
		rc:          rc,
		cacheConfig: cacheConfig,
		ttl:         ttl,
	}
}

func (f *SupplierMetricsFlowImpl) cacheKey(supplierID uint) string {
	id := strconv.FormatUint(uint64(supplierID), 10)
	if f.cacheConfig == nil {
		return utils.SupplierMetricsCacheKey + ":" + id
	}
	return f.cacheConfig.RedisKey(utils.SupplierMetricsCacheKey, id)
}

// Metrics returns the supplier's metrics across all categories. Storage
// failures degrade to neutral metrics and are not cached.
func (f *SupplierMetricsFlowImpl) Metrics(ctx context.Context, supplierID uint) (scoring.SupplierMetrics, error) {
	if m, ok := f.readCache(ctx, supplierID); ok {
		return m, nil
	}

	m, degraded, err := f.compute(ctx, supplierID)
	if err != nil {
		return scoring.SupplierMetrics{}, err
	}
	if !degraded {
		f.writeCache(ctx, supplierID, m)
	}
	return m, nil
}

func (f *SupplierMetricsFlowImpl) compute(ctx context.Context, supplierID uint) (scoring.SupplierMetrics, bool, error) {
	jobs, err := f.jobRepo.ListBySupplier(ctx, supplierID)
	if err != nil {
		if degradedRead("supplier metrics jobs", err) {
			return scoring.NeutralMetrics(supplierID), true, nil
		}
		return scoring.SupplierMetrics{}, false, err
	}

	unitIDs := make([]uint, 0, len(jobs))
	seen := make(map[uint]bool, len(jobs))
	for _, j := range jobs {
		if !seen[j.ProductUnitID] {
			seen[j.ProductUnitID] = true
			unitIDs = append(unitIDs, j.ProductUnitID)
		}
	}

	categories := map[uint]uint{}
	if len(unitIDs) > 0 {
		categories, err = f.unitRepo.CategoriesByUnitIDs(ctx, unitIDs)
		if err != nil {
			if !degradedRead("supplier metrics categories", err) {
				return scoring.SupplierMetrics{}, false, err
			}
			categories = map[uint]uint{}
		}
	}

	return scoring.Aggregate(supplierID, jobs, categories), false, nil
}

func (f *SupplierMetricsFlowImpl) readCache(ctx context.Context, supplierID uint) (scoring.SupplierMetrics, bool) {
	if f.rc == nil {
		return scoring.SupplierMetrics{}, false
	}
	bs, err := f.rc.Get(ctx, f.cacheKey(supplierID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("supplier metrics cache read failed for %d: %v", supplierID, err)
		}
		metricsCacheLookups.WithLabelValues("miss").Inc()
		return scoring.SupplierMetrics{}, false
	}
	var m scoring.SupplierMetrics
	if err := json.Unmarshal(bs, &m); err != nil {
		metricsCacheLookups.WithLabelValues("miss").Inc()
		return scoring.SupplierMetrics{}, false
	}
	metricsCacheLookups.WithLabelValues("hit").Inc()
	return m, true
}

func (f *SupplierMetricsFlowImpl) writeCache(ctx context.Context, supplierID uint, m scoring.SupplierMetrics) {
	if f.rc == nil {
		return
	}
	bs, err := json.Marshal(m)
	if err != nil {
		return
	}
	if err := f.rc.Set(ctx, f.cacheKey(supplierID), bs, f.ttl).Err(); err != nil {
		log.Printf("supplier metrics cache write failed for %d: %v", supplierID, err)
	}
}

// Invalidate drops the cached metrics of a supplier. Errors are logged only.
func (f *SupplierMetricsFlowImpl) Invalidate(ctx context.Context, supplierID uint) {
	if f.rc == nil {
		return
	}
	if err := f.rc.Del(ctx, f.cacheKey(supplierID)).Err(); err != nil {
		log.Printf("supplier metrics cache invalidation failed for %d: %v", supplierID, err)
	}
}

// Warm recomputes and caches metrics of every active supplier, returning how many were refreshed.
func (f *SupplierMetricsFlowImpl) Warm(ctx context.Context) (int, error) {
	suppliers, err := f.userRepo.ListActiveSuppliers(ctx)
	if err != nil {
		return 0, err
	}
	refreshed := 0
	for _, s := range suppliers {
		if err := ctx.Err(); err != nil {
			return refreshed, err
		}
		m, degraded, err := f.compute(ctx, s.ID)
		if err != nil {
			return refreshed, err
		}
		if degraded {
			return refreshed, ErrStorageUnavailable
		}
		f.writeCache(ctx, s.ID, m)
		refreshed++
	}
	return refreshed, nil
}

// GetSupplierMetrics returns the metrics of one supplier, optionally scoped to a
// category or to the category of a product unit.
// Found is false when the user does not exist or is not a supplier.
func (f *SupplierMetricsFlowImpl) GetSupplierMetrics(ctx context.Context, supplierID uint, query dto.SupplierMetricsQuery) (*dto.SupplierMetricsResponse, error) {
	categoryID, err := f.scopeCategory(ctx, query)
	if err != nil {
		return nil, err
	}

	supplier, err := f.userRepo.ByID(ctx, supplierID)
	if err != nil {
		if degradedRead("get supplier", err) {
			return &dto.SupplierMetricsResponse{Message: "Storage unavailable", Found: false}, nil
		}
		return nil, err
	}
	if supplier == nil || supplier.Role != models.UserRoleSupplier {
		return &dto.SupplierMetricsResponse{Message: "Supplier not found", Found: false}, nil
	}

	m, err := f.Metrics(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	m = m.ForCategory(categoryID)
	if m.RatingSamples == 0 && supplier.RatingCount > 0 {
		m.AverageRating = supplier.AverageRating()
		m.RatingSamples = int(supplier.RatingCount)
	}

	return &dto.SupplierMetricsResponse{
		Message: "Supplier metrics retrieved",
		Found:   true,
		Metrics: &m,
	}, nil
}

func (f *SupplierMetricsFlowImpl) scopeCategory(ctx context.Context, query dto.SupplierMetricsQuery) (*uint, error) {
	if query.ProductUnitID == nil {
		return query.CategoryID, nil
	}
	if query.CategoryID != nil {
		return nil, NewBusinessError("AMBIGUOUS_SCOPE", "Pass either category_id or product_unit_id", ErrAmbiguousScope)
	}
	categories, err := f.unitRepo.CategoriesByUnitIDs(ctx, []uint{*query.ProductUnitID})
	if err != nil {
		return nil, writeError("SUPPLIER_METRICS_FAILED", "Failed to resolve product unit", err)
	}
	categoryID, ok := categories[*query.ProductUnitID]
	if !ok {
		return nil, NewBusinessErrorf("UNKNOWN_PRODUCT_UNIT", "Product unit %d does not exist", ErrUnknownUnit, *query.ProductUnitID)
	}
	return &categoryID, nil
}
