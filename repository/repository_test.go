package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/amirphl/printshop/models"
	"github.com/amirphl/printshop/repository"
	testingutil "github.com/amirphl/printshop/testing"
	"github.com/amirphl/printshop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDB(t *testing.T, fn func(*testingutil.TestDB) error) {
	t.Helper()
	err := testingutil.TestWithDB(fn)
	testingutil.SkipIfUnavailable(t, err)
	require.NoError(t, err)
}

func TestSupplierPriceRepository(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) error {
		repo := repository.NewSupplierPriceRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		unit, err := fixtures.CreateTestProductUnit("business cards", "85x55", 500)
		require.NoError(t, err)
		active, err := fixtures.CreateTestSupplier("Alpha")
		require.NoError(t, err)
		inactive, err := fixtures.CreateInactiveSupplier("Beta")
		require.NoError(t, err)

		t.Run("UpsertInsertsThenUpdates", func(t *testing.T) {
			require.NoError(t, repo.Upsert(ctx, &models.SupplierPrice{SupplierID: active.ID, ProductUnitID: unit.ID, PricePerUnit: 90, DeliveryDays: 3}))
			require.NoError(t, repo.Upsert(ctx, &models.SupplierPrice{SupplierID: active.ID, ProductUnitID: unit.ID, PricePerUnit: 110, DeliveryDays: 2}))

			count, err := repo.Count(ctx, models.SupplierPriceFilter{SupplierID: &active.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(1), count)

			row, err := repo.BySupplierAndUnit(ctx, active.ID, unit.ID)
			require.NoError(t, err)
			require.NotNil(t, row)
			assert.InDelta(t, 110, row.PricePerUnit, 0.001)
			assert.Equal(t, 2, row.DeliveryDays)
		})

		t.Run("ListActiveSkipsInactiveSuppliers", func(t *testing.T) {
			_, err := fixtures.CreateTestSupplierPrice(inactive.ID, unit.ID, 10, 1)
			require.NoError(t, err)

			rows, err := repo.ListActiveByProductUnits(ctx, []uint{unit.ID})
			require.NoError(t, err)
			require.Len(t, rows, 1)
			assert.Equal(t, active.ID, rows[0].SupplierID)
			require.NotNil(t, rows[0].Supplier)
			assert.Equal(t, "Alpha", rows[0].Supplier.DisplayName)
		})

		t.Run("AveragePrice", func(t *testing.T) {
			other, err := fixtures.CreateTestSupplier("Gamma")
			require.NoError(t, err)
			_, err = fixtures.CreateTestSupplierPrice(other.ID, unit.ID, 90, 4)
			require.NoError(t, err)

			avg, err := repo.AveragePrice(ctx, &unit.ID)
			require.NoError(t, err)
			assert.InDelta(t, 100, avg, 0.001)

			missing := uint(999999)
			avg, err = repo.AveragePrice(ctx, &missing)
			require.NoError(t, err)
			assert.Zero(t, avg)
		})

		return nil
	})
}

func TestQuoteRepositories(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) error {
		quotes := repository.NewQuoteRepository(testDB.DB)
		items := repository.NewQuoteItemRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		supplier, err := fixtures.CreateTestSupplier("Alpha")
		require.NoError(t, err)
		unitA, err := fixtures.CreateTestProductUnit("flyers", "A5", 1000)
		require.NoError(t, err)
		unitB, err := fixtures.CreateTestProductUnit("flyers", "A4", 1000)
		require.NoError(t, err)

		quote, quoteItems, err := fixtures.CreateTestQuote(customer.ID, 2, unitA.ID, unitB.ID)
		require.NoError(t, err)

		t.Run("ApplySelectionAndRecalculate", func(t *testing.T) {
			for _, item := range quoteItems {
				applied, err := items.ApplySelection(ctx, quote.ID, models.QuoteItemSelection{
					QuoteItemID:   item.ID,
					SupplierID:    supplier.ID,
					SupplierCost:  100,
					CustomerPrice: 130,
					DeliveryDays:  3,
				})
				require.NoError(t, err)
				assert.True(t, applied)
			}

			cost, value, err := quotes.RecalculateTotals(ctx, quote.ID)
			require.NoError(t, err)
			assert.InDelta(t, 400, cost, 0.001)
			assert.InDelta(t, 520, value, 0.001)

			stored, err := quotes.ByID(ctx, quote.ID)
			require.NoError(t, err)
			assert.InDelta(t, 520, stored.FinalValue, 0.001)
		})

		t.Run("ApplySelectionRejectsForeignItem", func(t *testing.T) {
			applied, err := items.ApplySelection(ctx, quote.ID+1000, models.QuoteItemSelection{QuoteItemID: quoteItems[0].ID, SupplierID: supplier.ID})
			require.NoError(t, err)
			assert.False(t, applied)
		})

		t.Run("TransactionRollsBack", func(t *testing.T) {
			sentinel := errors.New("abort")
			err := repository.WithTransaction(ctx, testDB.DB, func(txCtx context.Context) error {
				require.NoError(t, quotes.UpdateStatus(txCtx, quote.ID, models.QuoteStatusSent, nil))
				return sentinel
			})
			assert.ErrorIs(t, err, sentinel)

			stored, err := quotes.ByID(ctx, quote.ID)
			require.NoError(t, err)
			assert.Equal(t, models.QuoteStatusDraft, stored.Status)
		})

		t.Run("ChildrenByParent", func(t *testing.T) {
			child := &models.Quote{CustomerID: customer.ID, Version: 2, ParentQuoteID: &quote.ID}
			require.NoError(t, quotes.Save(ctx, child))

			children, err := quotes.ListByParentIDs(ctx, []uint{quote.ID})
			require.NoError(t, err)
			require.Len(t, children, 1)
			assert.Equal(t, child.ID, children[0].ID)
		})

		t.Run("ByIDNotFound", func(t *testing.T) {
			q, err := quotes.ByID(ctx, 999999)
			assert.NoError(t, err)
			assert.Nil(t, q)
		})

		return nil
	})
}

func TestSupplierJobRepository(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) error {
		repo := repository.NewSupplierJobRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		customer, err := fixtures.CreateTestCustomer()
		require.NoError(t, err)
		supplier, err := fixtures.CreateTestSupplier("Alpha")
		require.NoError(t, err)
		unit, err := fixtures.CreateTestProductUnit("banners", "2x1m", 1)
		require.NoError(t, err)
		quote, quoteItems, err := fixtures.CreateTestQuote(customer.ID, 1, unit.ID)
		require.NoError(t, err)

		newJobs := func() []*models.SupplierJob {
			return []*models.SupplierJob{{
				SupplierID:    supplier.ID,
				CustomerID:    &customer.ID,
				ProductUnitID: unit.ID,
				QuoteID:       &quote.ID,
				QuoteItemID:   &quoteItems[0].ID,
				Quantity:      1,
				Price:         50,
			}}
		}

		t.Run("CreateForQuoteItemsIsIdempotent", func(t *testing.T) {
			inserted, err := repo.CreateForQuoteItems(ctx, newJobs())
			require.NoError(t, err)
			assert.Equal(t, int64(1), inserted)

			inserted, err = repo.CreateForQuoteItems(ctx, newJobs())
			require.NoError(t, err)
			assert.Zero(t, inserted)

			jobs, err := repo.ListByQuote(ctx, quote.ID)
			require.NoError(t, err)
			assert.Len(t, jobs, 1)
		})

		t.Run("StatusCourierAndRating", func(t *testing.T) {
			jobs, err := repo.ListBySupplier(ctx, supplier.ID)
			require.NoError(t, err)
			require.Len(t, jobs, 1)
			id := jobs[0].ID

			readyAt := utils.UTCNow().Add(time.Hour)
			require.NoError(t, repo.UpdateStatus(ctx, id, models.SupplierJobStatusReady, &readyAt))
			require.NoError(t, repo.ConfirmCourierReady(ctx, id, readyAt))
			require.NoError(t, repo.SetRating(ctx, id, 9))

			job, err := repo.ByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, models.SupplierJobStatusReady, job.Status)
			require.NotNil(t, job.ReadyAt)
			assert.True(t, utils.IsTrue(job.CourierConfirmedReady))
			require.NotNil(t, job.Rating)
			assert.Equal(t, 9, *job.Rating)
		})

		return nil
	})
}

func TestScoringWeightsRepository(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) error {
		repo := repository.NewScoringWeightsRepository(testDB.DB)
		ctx := testingutil.CreateTestContext()

		w, err := repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.DefaultScoringWeights().Price, w.Price)

		update := models.ScoringWeights{Price: 0, Rating: 50, DeliveryTime: 30, Reliability: 20}
		require.NoError(t, repo.Set(ctx, update))

		w, err = repo.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, w.Price)
		assert.Equal(t, 50, w.Rating)
		assert.Equal(t, 30, w.DeliveryTime)
		assert.Equal(t, 20, w.Reliability)

		return nil
	})
}

func TestUserRepositoryRating(t *testing.T) {
	withDB(t, func(testDB *testingutil.TestDB) error {
		repo := repository.NewUserRepository(testDB.DB)
		fixtures := testingutil.NewTestFixtures(testDB)
		ctx := testingutil.CreateTestContext()

		supplier, err := fixtures.CreateTestSupplier("Alpha")
		require.NoError(t, err)
		_, err = fixtures.CreateInactiveSupplier("Beta")
		require.NoError(t, err)

		require.NoError(t, repo.AddRating(ctx, supplier.ID, 8, 1))
		require.NoError(t, repo.AddRating(ctx, supplier.ID, 6, 1))

		stored, err := repo.ByID(ctx, supplier.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(14), stored.RatingTotal)
		assert.Equal(t, int64(2), stored.RatingCount)
		assert.InDelta(t, 7, stored.AverageRating(), 0.001)

		active, err := repo.ListActiveSuppliers(ctx)
		require.NoError(t, err)
		require.Len(t, active, 1)
		assert.Equal(t, supplier.ID, active[0].ID)

		return nil
	})
}
