package businessflow

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/amirphl/printshop/config"
	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/repository"
	"github.com/amirphl/printshop/utils"
	"github.com/google/uuid"
)

var errDown = fmt.Errorf("dial tcp 127.0.0.1:5432: %w", repository.ErrStorageUnavailable)

// memStore is an in-memory stand-in for the database. Reads return copies so
// flows cannot mutate stored rows without going through a repository.
type memStore struct {
	mu      sync.Mutex
	nextID  uint
	down    bool
	users   map[uint]models.User
	units   map[uint]models.ProductUnit
	prices  map[uint]models.SupplierPrice
	jobs    map[uint]models.SupplierJob
	quotes  map[uint]models.Quote
	items   map[uint]models.QuoteItem
	weights *models.ScoringWeights
}

func newMemStore() *memStore {
	return &memStore{
		nextID: 100,
		users:  map[uint]models.User{},
		units:  map[uint]models.ProductUnit{},
		prices: map[uint]models.SupplierPrice{},
		jobs:   map[uint]models.SupplierJob{},
		quotes: map[uint]models.Quote{},
		items:  map[uint]models.QuoteItem{},
	}
}

func (s *memStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memStore) setDown(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.down = down
}

type memSnapshot struct {
	nextID  uint
	users   map[uint]models.User
	units   map[uint]models.ProductUnit
	prices  map[uint]models.SupplierPrice
	jobs    map[uint]models.SupplierJob
	quotes  map[uint]models.Quote
	items   map[uint]models.QuoteItem
	weights *models.ScoringWeights
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		nextID: s.nextID,
		users:  maps.Clone(s.users),
		units:  maps.Clone(s.units),
		prices: maps.Clone(s.prices),
		jobs:   maps.Clone(s.jobs),
		quotes: maps.Clone(s.quotes),
		items:  maps.Clone(s.items),
	}
	if s.weights != nil {
		w := *s.weights
		snap.weights = &w
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = snap.nextID
	s.users, s.units, s.prices = snap.users, snap.units, snap.prices
	s.jobs, s.quotes, s.items = snap.jobs, snap.quotes, snap.items
	s.weights = snap.weights
}

// fakeTransactor restores the store when fn fails, mimicking a rollback.
type fakeTransactor struct {
	store *memStore
	calls int
}

func (t *fakeTransactor) WithinTransaction(ctx context.Context, fn func(context.Context) error) error {
	t.calls++
	snap := t.store.snapshot()
	if err := fn(ctx); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

// ----- seeding helpers -----

func (s *memStore) addUser(role models.UserRole, status models.UserStatus, name string) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := models.User{
		ID:          s.id(),
		UUID:        uuid.New(),
		Role:        role,
		Status:      status,
		DisplayName: name,
		Email:       name + "@example.com",
	}
	s.users[u.ID] = u
	return &u
}

func (s *memStore) addSupplier(name string) *models.User {
	return s.addUser(models.UserRoleSupplier, models.UserStatusActive, name)
}

func (s *memStore) addCustomer(name string) *models.User {
	return s.addUser(models.UserRoleCustomer, models.UserStatusActive, name)
}

func (s *memStore) addUnit(categoryID uint, productName, size string) *models.ProductUnit {
	s.mu.Lock()
	defer s.mu.Unlock()
	productID := s.id()
	u := models.ProductUnit{
		ID:           s.id(),
		ProductID:    productID,
		SizeLabel:    size,
		QuantityTier: 100,
		Product:      &models.Product{ID: productID, CategoryID: categoryID, Name: productName},
	}
	s.units[u.ID] = u
	return &u
}

func (s *memStore) addPrice(supplierID, unitID uint, price float64, days int) *models.SupplierPrice {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := models.SupplierPrice{
		ID:            s.id(),
		SupplierID:    supplierID,
		ProductUnitID: unitID,
		PricePerUnit:  price,
		DeliveryDays:  days,
		IsActive:      utils.ToPtr(true),
	}
	s.prices[p.ID] = p
	return &p
}

func (s *memStore) addJob(j models.SupplierJob) *models.SupplierJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	j.ID = s.id()
	if j.Status == "" {
		j.Status = models.SupplierJobStatusPending
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if j.CourierConfirmedReady == nil {
		j.CourierConfirmedReady = utils.ToPtr(false)
	}
	s.jobs[j.ID] = j
	return &j
}

func (s *memStore) addQuote(customerID uint, status models.QuoteStatus, markup float64) *models.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := models.Quote{
		ID:            s.id(),
		UUID:          uuid.New(),
		CustomerID:    customerID,
		Status:        status,
		Version:       1,
		MarkupPercent: markup,
		CreatedAt:     utils.UTCNow(),
		UpdatedAt:     utils.UTCNow(),
	}
	s.quotes[q.ID] = q
	return &q
}

func (s *memStore) addItem(quoteID, unitID uint, qty int) *models.QuoteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := models.QuoteItem{
		ID:                  s.id(),
		QuoteID:             quoteID,
		ProductUnitID:       unitID,
		Quantity:            qty,
		ManualPriceOverride: utils.ToPtr(false),
		CourierPickedUp:     utils.ToPtr(false),
		CourierDelivered:    utils.ToPtr(false),
	}
	s.items[it.ID] = it
	return &it
}

func (s *memStore) setItemPrice(itemID, supplierID uint, cost, price float64, days int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it := s.items[itemID]
	it.SupplierID = &supplierID
	it.SupplierCost = &cost
	it.CustomerPrice = &price
	it.DeliveryDays = &days
	s.items[itemID] = it
}

func (s *memStore) quote(id uint) models.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quotes[id]
}

func (s *memStore) item(id uint) models.QuoteItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[id]
}

func (s *memStore) job(id uint) models.SupplierJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *memStore) user(id uint) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *memStore) jobsForQuote(quoteID uint) []models.SupplierJob {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SupplierJob
	for _, j := range s.jobs {
		if j.QuoteID != nil && *j.QuoteID == quoteID {
			out = append(out, j)
		}
	}
	return out
}

func sortedKeys[V any](m map[uint]V) []uint {
	return slices.Sorted(maps.Keys(m))
}

// ----- user repository -----

type fakeUserRepo struct {
	repository.UserRepository
	s *memStore
}

func (r *fakeUserRepo) ByID(ctx context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepo) ListActiveSuppliers(ctx context.Context) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	var out []*models.User
	for _, id := range sortedKeys(r.s.users) {
		u := r.s.users[id]
		if u.IsActiveSupplier() {
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) AddRating(ctx context.Context, userID uint, totalDelta, countDelta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	u := r.s.users[userID]
	u.RatingTotal += totalDelta
	u.RatingCount += countDelta
	r.s.users[userID] = u
	return nil
}

// ----- product unit repository -----

type fakeUnitRepo struct {
	repository.ProductUnitRepository
	s *memStore
}

func (r *fakeUnitRepo) ByID(ctx context.Context, id uint) (*models.ProductUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	u, ok := r.s.units[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUnitRepo) ByIDsWithProduct(ctx context.Context, ids []uint) ([]*models.ProductUnit, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	var out []*models.ProductUnit
	for _, id := range ids {
		if u, ok := r.s.units[id]; ok {
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r *fakeUnitRepo) CategoriesByUnitIDs(ctx context.Context, ids []uint) (map[uint]uint, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	out := map[uint]uint{}
	for _, id := range ids {
		if u, ok := r.s.units[id]; ok && u.Product != nil {
			out[id] = u.Product.CategoryID
		}
	}
	return out, nil
}

// ----- supplier price repository -----

type fakePriceRepo struct {
	repository.SupplierPriceRepository
	s *memStore
}

func (r *fakePriceRepo) activeLocked(unitID *uint) []models.SupplierPrice {
	var out []models.SupplierPrice
	for _, id := range sortedKeys(r.s.prices) {
		p := r.s.prices[id]
		if !utils.IsTrue(p.IsActive) {
			continue
		}
		if unitID != nil && p.ProductUnitID != *unitID {
			continue
		}
		u, ok := r.s.users[p.SupplierID]
		if !ok || !u.IsActiveSupplier() {
			continue
		}
		p.Supplier = &u
		out = append(out, p)
	}
	return out
}

func (r *fakePriceRepo) ListActiveByProductUnits(ctx context.Context, unitIDs []uint) ([]*models.SupplierPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	var out []*models.SupplierPrice
	for _, p := range r.activeLocked(nil) {
		if slices.Contains(unitIDs, p.ProductUnitID) {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *fakePriceRepo) AveragePrice(ctx context.Context, unitID *uint) (float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return 0, errDown
	}
	rows := r.activeLocked(unitID)
	if len(rows) == 0 {
		return 0, nil
	}
	var sum float64
	for _, p := range rows {
		sum += p.PricePerUnit
	}
	return sum / float64(len(rows)), nil
}

func (r *fakePriceRepo) Upsert(ctx context.Context, price *models.SupplierPrice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	for id, p := range r.s.prices {
		if p.SupplierID == price.SupplierID && p.ProductUnitID == price.ProductUnitID {
			p.PricePerUnit = price.PricePerUnit
			p.DeliveryDays = price.DeliveryDays
			p.IsActive = price.IsActive
			r.s.prices[id] = p
			price.ID = id
			return nil
		}
	}
	price.ID = r.s.id()
	r.s.prices[price.ID] = *price
	return nil
}

func (r *fakePriceRepo) BySupplierAndUnit(ctx context.Context, supplierID, unitID uint) (*models.SupplierPrice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	for _, p := range r.s.prices {
		if p.SupplierID == supplierID && p.ProductUnitID == unitID {
			return &p, nil
		}
	}
	return nil, nil
}

// ----- supplier job repository -----

type fakeJobRepo struct {
	repository.SupplierJobRepository
	s *memStore
}

func (r *fakeJobRepo) ListBySupplier(ctx context.Context, supplierID uint) ([]*models.SupplierJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	var out []*models.SupplierJob
	for _, id := range sortedKeys(r.s.jobs) {
		j := r.s.jobs[id]
		if j.SupplierID == supplierID {
			out = append(out, &j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ListByQuote(ctx context.Context, quoteID uint) ([]*models.SupplierJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	var out []*models.SupplierJob
	for _, id := range sortedKeys(r.s.jobs) {
		j := r.s.jobs[id]
		if j.QuoteID != nil && *j.QuoteID == quoteID {
			out = append(out, &j)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) LockByID(ctx context.Context, id uint) (*models.SupplierJob, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	j, ok := r.s.jobs[id]
	if !ok {
		return nil, nil
	}
	return &j, nil
}

func (r *fakeJobRepo) CreateForQuoteItems(ctx context.Context, jobs []*models.SupplierJob) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return 0, errDown
	}
	var created int64
	for _, j := range jobs {
		exists := false
		for _, existing := range r.s.jobs {
			if existing.QuoteItemID != nil && j.QuoteItemID != nil && *existing.QuoteItemID == *j.QuoteItemID {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		j.ID = r.s.id()
		j.CreatedAt = utils.UTCNow()
		r.s.jobs[j.ID] = *j
		created++
	}
	return created, nil
}

func (r *fakeJobRepo) UpdateStatus(ctx context.Context, id uint, status models.SupplierJobStatus, readyAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	j := r.s.jobs[id]
	j.Status = status
	j.ReadyAt = readyAt
	r.s.jobs[id] = j
	return nil
}

func (r *fakeJobRepo) ConfirmCourierReady(ctx context.Context, id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	j := r.s.jobs[id]
	j.CourierConfirmedReady = utils.ToPtr(true)
	j.CourierConfirmedAt = &at
	r.s.jobs[id] = j
	return nil
}

func (r *fakeJobRepo) SetRating(ctx context.Context, id uint, rating int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	j := r.s.jobs[id]
	j.Rating = &rating
	r.s.jobs[id] = j
	return nil
}

// ----- quote repository -----

type fakeQuoteRepo struct {
	repository.QuoteRepository
	s *memStore
}

func (r *fakeQuoteRepo) ByID(ctx context.Context, id uint) (*models.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	q, ok := r.s.quotes[id]
	if !ok {
		return nil, nil
	}
	return &q, nil
}

func (r *fakeQuoteRepo) LockByID(ctx context.Context, id uint) (*models.Quote, error) {
	return r.ByID(ctx, id)
}

func (r *fakeQuoteRepo) Save(ctx context.Context, q *models.Quote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	if q.ID == 0 {
		q.ID = r.s.id()
	}
	if q.UUID == uuid.Nil {
		q.UUID = uuid.New()
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = utils.UTCNow()
		q.UpdatedAt = q.CreatedAt
	}
	r.s.quotes[q.ID] = *q
	return nil
}

func (r *fakeQuoteRepo) ListByParentIDs(ctx context.Context, parentIDs []uint) ([]*models.Quote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	var out []*models.Quote
	for _, id := range sortedKeys(r.s.quotes) {
		q := r.s.quotes[id]
		if q.ParentQuoteID != nil && slices.Contains(parentIDs, *q.ParentQuoteID) {
			out = append(out, &q)
		}
	}
	return out, nil
}

func (r *fakeQuoteRepo) UpdateStatus(ctx context.Context, id uint, status models.QuoteStatus, reason *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	q := r.s.quotes[id]
	q.Status = status
	if reason != nil {
		q.RejectionReason = reason
	}
	r.s.quotes[id] = q
	return nil
}

func (r *fakeQuoteRepo) SetDealRating(ctx context.Context, id uint, rating int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	q := r.s.quotes[id]
	q.DealRating = &rating
	r.s.quotes[id] = q
	return nil
}

func (r *fakeQuoteRepo) RecalculateTotals(ctx context.Context, id uint) (float64, float64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return 0, 0, errDown
	}
	var total, final float64
	for _, it := range r.s.items {
		if it.QuoteID != id {
			continue
		}
		if it.SupplierCost != nil {
			total += *it.SupplierCost * float64(it.Quantity)
		}
		if it.CustomerPrice != nil {
			final += *it.CustomerPrice * float64(it.Quantity)
		}
	}
	q := r.s.quotes[id]
	q.TotalSupplierCost, q.FinalValue = total, final
	r.s.quotes[id] = q
	return total, final, nil
}

// ----- quote item repository -----

type fakeItemRepo struct {
	repository.QuoteItemRepository
	s *memStore
}

func (r *fakeItemRepo) ByID(ctx context.Context, id uint) (*models.QuoteItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *fakeItemRepo) ListByQuote(ctx context.Context, quoteID uint) ([]*models.QuoteItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return nil, errDown
	}
	var out []*models.QuoteItem
	for _, id := range sortedKeys(r.s.items) {
		it := r.s.items[id]
		if it.QuoteID == quoteID {
			out = append(out, &it)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) SaveBatch(ctx context.Context, items []*models.QuoteItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	for _, it := range items {
		if it.ID == 0 {
			it.ID = r.s.id()
		}
		if it.ManualPriceOverride == nil {
			it.ManualPriceOverride = utils.ToPtr(false)
		}
		if it.CourierPickedUp == nil {
			it.CourierPickedUp = utils.ToPtr(false)
		}
		if it.CourierDelivered == nil {
			it.CourierDelivered = utils.ToPtr(false)
		}
		r.s.items[it.ID] = *it
	}
	return nil
}

func (r *fakeItemRepo) ApplySelection(ctx context.Context, quoteID uint, sel models.QuoteItemSelection) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return false, errDown
	}
	it, ok := r.s.items[sel.QuoteItemID]
	if !ok || it.QuoteID != quoteID {
		return false, nil
	}
	supplierID, cost, price, days := sel.SupplierID, sel.SupplierCost, sel.CustomerPrice, sel.DeliveryDays
	it.SupplierID = &supplierID
	it.SupplierCost = &cost
	it.CustomerPrice = &price
	it.DeliveryDays = &days
	it.ManualPriceOverride = utils.ToPtr(false)
	if len(sel.ScoreSnapshot) > 0 {
		it.ScoreSnapshot = sel.ScoreSnapshot
	}
	r.s.items[it.ID] = it
	return true, nil
}

func (r *fakeItemRepo) SetCourierPickedUp(ctx context.Context, id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	it := r.s.items[id]
	it.CourierPickedUp = utils.ToPtr(true)
	it.CourierPickedUpAt = &at
	r.s.items[id] = it
	return nil
}

func (r *fakeItemRepo) SetCourierDelivered(ctx context.Context, id uint, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	it := r.s.items[id]
	it.CourierDelivered = utils.ToPtr(true)
	it.CourierDeliveredAt = &at
	r.s.items[id] = it
	return nil
}

// ----- scoring weights repository -----

type fakeWeightsRepo struct {
	s *memStore
}

func (r *fakeWeightsRepo) Get(ctx context.Context) (models.ScoringWeights, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return models.ScoringWeights{}, errDown
	}
	if r.s.weights == nil {
		return models.DefaultScoringWeights(), nil
	}
	return *r.s.weights, nil
}

func (r *fakeWeightsRepo) Set(ctx context.Context, w models.ScoringWeights) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.down {
		return errDown
	}
	r.s.weights = &w
	return nil
}

// ----- wiring -----

type testEnv struct {
	store      *memStore
	tx         *fakeTransactor
	users      *fakeUserRepo
	units      *fakeUnitRepo
	prices     *fakePriceRepo
	jobs       *fakeJobRepo
	quotes     *fakeQuoteRepo
	items      *fakeItemRepo
	weights    *fakeWeightsRepo
	scoringCfg config.ScoringConfig

	metrics        SupplierMetricsFlow
	recommendation RecommendationFlow
	selection      SelectionFlow
	lifecycle      QuoteLifecycleFlow
	jobFlow        SupplierJobFlow
	priceFlow      SupplierPriceFlow
	settings       ScoringSettingsFlow
}

func newTestEnv(model string) *testEnv {
	s := newMemStore()
	e := &testEnv{
		store:   s,
		tx:      &fakeTransactor{store: s},
		users:   &fakeUserRepo{s: s},
		units:   &fakeUnitRepo{s: s},
		prices:  &fakePriceRepo{s: s},
		jobs:    &fakeJobRepo{s: s},
		quotes:  &fakeQuoteRepo{s: s},
		items:   &fakeItemRepo{s: s},
		weights: &fakeWeightsRepo{s: s},
		scoringCfg: config.ScoringConfig{
			Model:                model,
			TopN:                 5,
			CapacityBonusMax:     5,
			DefaultMarkupPercent: 30,
			MaxConcurrentFetches: 4,
		},
	}
	cacheCfg := &config.CacheConfig{RedisPrefix: "test:"}
	e.metrics = NewSupplierMetricsFlow(e.users, e.jobs, e.units, nil, cacheCfg, time.Minute)
	e.recommendation = NewRecommendationFlow(e.prices, e.units, e.weights, e.metrics, e.scoringCfg)
	e.selection = NewSelectionFlow(e.tx, e.quotes, e.items, e.users, e.recommendation, nil, cacheCfg, time.Second)
	e.lifecycle = NewQuoteLifecycleFlow(e.tx, e.quotes, e.items, e.users, e.jobs, e.units, e.metrics, 30, config.DocumentConfig{})
	e.jobFlow = NewSupplierJobFlow(e.tx, e.jobs, e.quotes, e.items, e.users, e.metrics)
	e.priceFlow = NewSupplierPriceFlow(e.prices, e.users, e.units)
	e.settings = NewScoringSettingsFlow(e.weights, model)
	return e
}
