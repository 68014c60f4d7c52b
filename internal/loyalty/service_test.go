package loyalty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/washpoint/backend/internal/domain"
	"github.com/washpoint/backend/internal/models"
)

type cardKey struct {
	shop, customer int64
}

type fakeStore struct {
	programs map[int64]*models.LoyaltyProgram
	cards    map[cardKey]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		programs: make(map[int64]*models.LoyaltyProgram),
		cards:    make(map[cardKey]int),
	}
}

func (f *fakeStore) ActiveProgram(_ context.Context, shopID int64) (*models.LoyaltyProgram, error) {
	p, ok := f.programs[shopID]
	if !ok {
		return nil, domain.NotFound("loyalty program")
	}
	return p, nil
}

func (f *fakeStore) UpsertProgram(_ context.Context, p *models.LoyaltyProgram) error {
	p.ID = int64(len(f.programs) + 1)
	p.IsActive = true
	f.programs[p.ShopID] = p
	return nil
}

func (f *fakeStore) Card(_ context.Context, shopID, customerID int64) (*models.LoyaltyCard, error) {
	key := cardKey{shopID, customerID}
	return &models.LoyaltyCard{ShopID: shopID, CustomerID: customerID, Points: f.cards[key]}, nil
}

func (f *fakeStore) AddPoints(_ context.Context, shopID, customerID int64, delta int) (int, error) {
	key := cardKey{shopID, customerID}
	f.cards[key] += delta
	if f.cards[key] < 0 {
		f.cards[key] = 0
	}
	return f.cards[key], nil
}

func newTestService(store Store) *Service {
	return NewService(store, zap.NewNop())
}

func program(required int) *models.LoyaltyProgram {
	return &models.LoyaltyProgram{ShopID: 1, Name: "Free wash", WashesRequired: required, IsActive: true}
}

func TestEarnPoint(t *testing.T) {
	ctx := context.Background()

	t.Run("accrues against the active program", func(t *testing.T) {
		store := newFakeStore()
		store.programs[1] = program(10)
		svc := newTestService(store)

		require.NoError(t, svc.EarnPoint(ctx, 1, 5))
		require.NoError(t, svc.EarnPoint(ctx, 1, 5))
		assert.Equal(t, 2, store.cards[cardKey{1, 5}])
	})

	t.Run("no active program accrues nothing and is not an error", func(t *testing.T) {
		store := newFakeStore()
		svc := newTestService(store)

		require.NoError(t, svc.EarnPoint(ctx, 1, 5))
		assert.Empty(t, store.cards)
	})
}

func TestStatus(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.programs[1] = program(3)
	store.cards[cardKey{1, 5}] = 2
	svc := newTestService(store)

	status, err := svc.Status(ctx, 1, 5)
	require.NoError(t, err)
	assert.False(t, status.CanRedeem)
	assert.Equal(t, 2, status.CurrentPoints)
	assert.Equal(t, 3, status.Required)

	store.cards[cardKey{1, 5}] = 3
	status, err = svc.Status(ctx, 1, 5)
	require.NoError(t, err)
	assert.True(t, status.CanRedeem)
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("deducts the threshold and carries the rest over", func(t *testing.T) {
		store := newFakeStore()
		store.programs[1] = program(3)
		store.cards[cardKey{1, 5}] = 4
		svc := newTestService(store)

		status, err := svc.Redeem(ctx, 1, 5)
		require.NoError(t, err)
		assert.Equal(t, 1, status.CurrentPoints)
		assert.False(t, status.CanRedeem)
	})

	t.Run("rejects an insufficient balance", func(t *testing.T) {
		store := newFakeStore()
		store.programs[1] = program(3)
		store.cards[cardKey{1, 5}] = 2
		svc := newTestService(store)

		_, err := svc.Redeem(ctx, 1, 5)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Equal(t, 2, store.cards[cardKey{1, 5}], "balance untouched")
	})

	t.Run("no program means nothing to redeem", func(t *testing.T) {
		svc := newTestService(newFakeStore())

		_, err := svc.Redeem(ctx, 1, 5)
		require.Error(t, err)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestConfigureProgramReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.ConfigureProgram(ctx, 1, ProgramInput{Name: "Old", WashesRequired: 5})
	require.NoError(t, err)
	p, err := svc.ConfigureProgram(ctx, 1, ProgramInput{Name: "New", WashesRequired: 8})
	require.NoError(t, err)

	active, err := store.ActiveProgram(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, p.ID, active.ID)
	assert.Equal(t, 8, active.WashesRequired)
}
