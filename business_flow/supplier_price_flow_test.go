package businessflow

import (
	"context"
	"testing"

	"github.com/amirphl/printshop/app/dto"
	"github.com/amirphl/printshop/scoring"
	"github.com/amirphl/printshop/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertPrice(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	supplier := e.store.addSupplier("supplier")
	unit := e.store.addUnit(1, "Cards", "S")

	resp, err := e.priceFlow.UpsertPrice(context.Background(), &dto.UpsertSupplierPriceRequest{
		SupplierID: supplier.ID, ProductUnitID: unit.ID, PricePerUnit: 12.5, DeliveryDays: 3,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Price)
	assert.Equal(t, 12.5, resp.Price.PricePerUnit)
	assert.True(t, resp.Price.IsActive)
	firstID := resp.Price.ID

	resp, err = e.priceFlow.UpsertPrice(context.Background(), &dto.UpsertSupplierPriceRequest{
		SupplierID: supplier.ID, ProductUnitID: unit.ID, PricePerUnit: 11, DeliveryDays: 2, IsActive: utils.ToPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, firstID, resp.Price.ID)
	assert.Equal(t, 11.0, resp.Price.PricePerUnit)
	assert.False(t, resp.Price.IsActive)
	assert.Len(t, e.store.prices, 1)

	list, err := e.priceFlow.ListForUnit(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

func TestUpsertPriceValidationAndMissing(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	supplier := e.store.addSupplier("supplier")
	customer := e.store.addCustomer("customer")
	unit := e.store.addUnit(1, "Cards", "S")

	_, err := e.priceFlow.UpsertPrice(context.Background(), &dto.UpsertSupplierPriceRequest{SupplierID: supplier.ID, ProductUnitID: unit.ID})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = e.priceFlow.UpsertPrice(context.Background(), &dto.UpsertSupplierPriceRequest{SupplierID: supplier.ID, ProductUnitID: unit.ID, PricePerUnit: 1, DeliveryDays: -2})
	assert.ErrorIs(t, err, ErrInvalidDays)

	resp, err := e.priceFlow.UpsertPrice(context.Background(), &dto.UpsertSupplierPriceRequest{SupplierID: customer.ID, ProductUnitID: unit.ID, PricePerUnit: 1})
	require.NoError(t, err)
	assert.Nil(t, resp.Price)

	resp, err = e.priceFlow.UpsertPrice(context.Background(), &dto.UpsertSupplierPriceRequest{SupplierID: supplier.ID, ProductUnitID: 9999, PricePerUnit: 1})
	require.NoError(t, err)
	assert.Nil(t, resp.Price)
	assert.Empty(t, e.store.prices)
}

func TestListForUnit(t *testing.T) {
	e := newTestEnv(scoring.ModelBounded)
	a := e.store.addSupplier("a")
	b := e.store.addSupplier("b")
	unit := e.store.addUnit(1, "Cards", "S")
	other := e.store.addUnit(1, "Cards", "M")
	e.store.addPrice(a.ID, unit.ID, 10, 1)
	e.store.addPrice(b.ID, unit.ID, 12, 2)
	e.store.addPrice(a.ID, other.ID, 99, 1)

	resp, err := e.priceFlow.ListForUnit(context.Background(), unit.ID)
	require.NoError(t, err)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, a.ID, resp.Items[0].SupplierID)
	assert.Equal(t, b.ID, resp.Items[1].SupplierID)

	e.store.setDown(true)
	resp, err = e.priceFlow.ListForUnit(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestScoringSettings(t *testing.T) {
	e := newTestEnv(scoring.ModelWeighted)

	resp, err := e.settings.GetWeights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, scoring.ModelWeighted, resp.ActiveModel)
	assert.Equal(t, dto.ScoringWeights{Price: 40, Rating: 30, DeliveryTime: 20, Reliability: 10}, resp.Weights)

	_, err = e.settings.SetWeights(context.Background(), &dto.ScoringWeights{Price: 50, Rating: 50, DeliveryTime: 10})
	assert.True(t, IsInvalidWeights(err))
	_, err = e.settings.SetWeights(context.Background(), &dto.ScoringWeights{Price: 120, Rating: -20})
	assert.True(t, IsInvalidWeights(err))

	want := dto.ScoringWeights{Price: 25, Rating: 25, DeliveryTime: 25, Reliability: 25}
	_, err = e.settings.SetWeights(context.Background(), &want)
	require.NoError(t, err)
	resp, err = e.settings.GetWeights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, resp.Weights)

	e.store.setDown(true)
	resp, err = e.settings.GetWeights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, resp.Weights.Price)

	_, err = e.settings.SetWeights(context.Background(), &want)
	assert.True(t, IsStorageUnavailable(err))
}
