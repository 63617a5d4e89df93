package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsim/retirement-simulator/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "finsim.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func testParams(spending float64) *domain.SimulationParameters {
	return &domain.SimulationParameters{
		CurrentAge:             55,
		MaxAge:                 90,
		Gender:                 domain.Female,
		State:                  "NY",
		FilingStatus:           domain.Single,
		AnnualSpending:         spending,
		RetirementAge:          62,
		SocialSecurityStartAge: 67,
		ReturnModel:            domain.Bootstrap,
		StockAllocation:        0.7,
		StockIndex:             domain.FundVT,
		BondIndex:              domain.FundBND,
		InitialCapital:         800000,
		WithdrawalStrategy:     domain.TaxableFirst,
		NumPaths:               1000,
	}
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	saved, err := st.Create(ctx, "base case", testParams(60000))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.False(t, saved.CreatedAt.IsZero())

	got, err := st.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "base case", got.Name)
	assert.Equal(t, 60000.0, got.Params.AnnualSpending)
	assert.Equal(t, domain.Female, got.Params.Gender)
	assert.Equal(t, 0.7, got.Params.StockAllocation)
}

func TestCreateRequiresName(t *testing.T) {
	st := openTestStore(t)
	_, err := st.Create(context.Background(), "", testParams(60000))
	assert.Error(t, err)
}

func TestCreateRejectsInvalidParams(t *testing.T) {
	st := openTestStore(t)
	params := testParams(60000)
	params.NumPaths = 1
	_, err := st.Create(context.Background(), "broken", params)
	assert.Error(t, err)
}

func TestGetUnknownID(t *testing.T) {
	st := openTestStore(t)
	_, err := st.Get(context.Background(), "no-such-id")
	assert.Error(t, err)
}

func TestListOrdersByUpdatedAt(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	first, err := st.Create(ctx, "first", testParams(50000))
	require.NoError(t, err)
	_, err = st.Create(ctx, "second", testParams(55000))
	require.NoError(t, err)

	require.NoError(t, st.Update(ctx, first.ID, testParams(52000)))

	saved, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 2)
	assert.Equal(t, "first", saved[0].Name)
	assert.Equal(t, 52000.0, saved[0].Params.AnnualSpending)
}

func TestUpdateUnknownID(t *testing.T) {
	st := openTestStore(t)
	err := st.Update(context.Background(), "missing", testParams(60000))
	assert.Error(t, err)
}

func TestDelete(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	saved, err := st.Create(ctx, "disposable", testParams(60000))
	require.NoError(t, err)

	require.NoError(t, st.Delete(ctx, saved.ID))
	_, err = st.Get(ctx, saved.ID)
	assert.Error(t, err)

	assert.Error(t, st.Delete(ctx, saved.ID))
}
