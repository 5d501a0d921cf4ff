package cart

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/angelmondragon/webmarket/pkg/localstore"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, persist localstore.Store) *Store {
	t.Helper()
	if persist == nil {
		persist = localstore.NewMemory()
	}
	store, err := NewStore(context.Background(), persist, nil)
	require.NoError(t, err)
	return store
}

func product(id uint, price string) Product {
	return Product{ID: id, Name: "item", Price: decimal.RequireFromString(price), Image: "img.png"}
}

func TestAddToCartMergesSameProduct(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	store.AddToCart(ctx, product(1, "10"), 2)
	store.AddToCart(ctx, Product{ID: 1}, 3)

	state := store.Snapshot()
	require.Len(t, state.Lines, 1)
	assert.Equal(t, 5, store.ItemCount())
	assert.True(t, decimal.NewFromInt(50).Equal(store.Total()), "total %s", store.Total())
	assert.Equal(t, "10", state.Lines[0].UnitPrice.String(), "first add fixes the unit price")
}

func TestAddToCartClampsQuantity(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	store.AddToCart(ctx, product(1, "5"), 0)
	store.AddToCart(ctx, product(2, "5"), -4)

	line, ok := store.Snapshot().Find(1)
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
	line, ok = store.Snapshot().Find(2)
	require.True(t, ok)
	assert.Equal(t, 1, line.Quantity)
}

func TestLinesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	store.AddToCart(ctx, product(3, "1"), 1)
	store.AddToCart(ctx, product(1, "1"), 1)
	store.AddToCart(ctx, product(2, "1"), 1)
	store.AddToCart(ctx, product(3, "1"), 1)

	var ids []uint
	for _, line := range store.Snapshot().Lines {
		ids = append(ids, line.ProductID)
	}
	assert.Equal(t, []uint{3, 1, 2}, ids)
}

func TestUpdateQuantityNonPositiveEqualsRemove(t *testing.T) {
	ctx := context.Background()
	for _, qty := range []int{0, -5} {
		updated := newTestStore(t, nil)
		removed := newTestStore(t, nil)
		for _, s := range []*Store{updated, removed} {
			s.AddToCart(ctx, product(1, "10"), 2)
			s.AddToCart(ctx, product(2, "4"), 1)
		}

		updated.UpdateQuantity(ctx, 1, qty)
		removed.RemoveFromCart(ctx, 1)

		assert.Equal(t, removed.Snapshot(), updated.Snapshot(), "quantity %d", qty)
		_, ok := updated.Snapshot().Find(1)
		assert.False(t, ok)
	}
}

func TestUpdateQuantitySetsValue(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)
	store.AddToCart(ctx, product(1, "2.50"), 1)

	store.UpdateQuantity(ctx, 1, 4)

	assert.Equal(t, 4, store.ItemCount())
	assert.Equal(t, "10", store.Total().String())
}

func TestMissingLineOperationsAreSilentNoOps(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)
	store.AddToCart(ctx, product(1, "10"), 1)

	notified := 0
	store.Subscribe(func(State) { notified++ })

	store.RemoveFromCart(ctx, 99)
	store.UpdateQuantity(ctx, 99, 3)
	store.UpdateQuantity(ctx, 99, 0)

	assert.Equal(t, 0, notified)
	assert.Equal(t, 1, store.ItemCount())
}

func TestClearCart(t *testing.T) {
	ctx := context.Background()
	persist := localstore.NewMemory()
	store := newTestStore(t, persist)
	store.AddToCart(ctx, product(1, "10"), 3)

	store.ClearCart(ctx)

	assert.True(t, store.Snapshot().IsEmpty())
	assert.Equal(t, 0, store.ItemCount())
	assert.True(t, store.Total().IsZero())

	reloaded := newTestStore(t, persist)
	assert.True(t, reloaded.Snapshot().IsEmpty())
}

func TestTotalMatchesLinesAfterRandomMutations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)
	rng := rand.New(rand.NewSource(7))
	prices := []string{"0", "1.25", "10", "99.99", "3.10"}

	for i := 0; i < 500; i++ {
		id := uint(rng.Intn(5) + 1)
		switch rng.Intn(4) {
		case 0:
			store.AddToCart(ctx, product(id, prices[id-1]), rng.Intn(5)-1)
		case 1:
			store.RemoveFromCart(ctx, id)
		case 2:
			store.UpdateQuantity(ctx, id, rng.Intn(6)-2)
		default:
			if rng.Intn(20) == 0 {
				store.ClearCart(ctx)
			}
		}

		state := store.Snapshot()
		expected := decimal.Zero
		count := 0
		for _, line := range state.Lines {
			expected = expected.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
			count += line.Quantity
			require.GreaterOrEqual(t, line.Quantity, 1)
		}
		require.True(t, expected.Equal(store.Total()), "step %d: %s != %s", i, expected, store.Total())
		require.Equal(t, count, store.ItemCount())
		require.True(t, state.validate(), "step %d produced duplicate or invalid lines", i)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	persist := localstore.NewMemory()
	store := newTestStore(t, persist)
	store.AddToCart(ctx, product(2, "19.99"), 2)
	store.AddToCart(ctx, product(1, "5"), 1)
	store.UpdateQuantity(ctx, 2, 3)

	reloaded := newTestStore(t, persist)

	assert.Equal(t, store.Snapshot(), reloaded.Snapshot())
	assert.Equal(t, "64.97", reloaded.Total().String())
}

func TestStateJSONRoundTrip(t *testing.T) {
	state := State{Lines: []Line{
		{ProductID: 4, Name: "Headphones", UnitPrice: decimal.RequireFromString("1499.50"), ImageRef: "a.png", Quantity: 2},
		{ProductID: 1, Name: "Cable", UnitPrice: decimal.RequireFromString("0.99"), Quantity: 1},
	}}

	raw, err := json.Marshal(state)
	require.NoError(t, err)
	var decoded State
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Len(t, decoded.Lines, 2)
	for i := range state.Lines {
		assert.Equal(t, state.Lines[i].ProductID, decoded.Lines[i].ProductID)
		assert.Equal(t, state.Lines[i].Quantity, decoded.Lines[i].Quantity)
		assert.True(t, state.Lines[i].UnitPrice.Equal(decoded.Lines[i].UnitPrice))
	}
	assert.True(t, state.Total().Equal(decoded.Total()))
}

func TestLoadFallsBackToEmpty(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*localstore.Memory)
	}{
		{name: "absent", setup: func(*localstore.Memory) {}},
		{name: "not json", setup: func(m *localstore.Memory) {
			_ = m.Set(context.Background(), localstore.KeyCart, []byte("{{{"))
		}},
		{name: "zero quantity", setup: func(m *localstore.Memory) {
			_ = m.Set(context.Background(), localstore.KeyCart, []byte(`{"lines":[{"productId":1,"unitPrice":"1","quantity":0}]}`))
		}},
		{name: "duplicate ids", setup: func(m *localstore.Memory) {
			_ = m.Set(context.Background(), localstore.KeyCart, []byte(`{"lines":[{"productId":1,"unitPrice":"1","quantity":1},{"productId":1,"unitPrice":"1","quantity":2}]}`))
		}},
		{name: "negative price", setup: func(m *localstore.Memory) {
			_ = m.Set(context.Background(), localstore.KeyCart, []byte(`{"lines":[{"productId":1,"unitPrice":"-1","quantity":1}]}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			persist := localstore.NewMemory()
			tt.setup(persist)
			store := newTestStore(t, persist)
			assert.True(t, store.Snapshot().IsEmpty())
			assert.Equal(t, 0, store.ItemCount())
		})
	}
}

func TestLoadReadErrorFallsBackToEmpty(t *testing.T) {
	store := newTestStore(t, &flakyStore{Memory: localstore.NewMemory(), getErr: errors.New("disk unavailable")})
	assert.True(t, store.Snapshot().IsEmpty())
}

func TestPersistFailureKeepsInMemoryMutation(t *testing.T) {
	ctx := context.Background()
	persist := &flakyStore{Memory: localstore.NewMemory(), setErr: errors.New("disk full")}
	store := newTestStore(t, persist)

	store.AddToCart(ctx, product(1, "10"), 2)

	assert.Equal(t, 2, store.ItemCount())
}

func TestNewStoreRequiresPersistence(t *testing.T) {
	_, err := NewStore(context.Background(), nil, nil)
	require.Error(t, err)
}

func TestSubscribersObserveSameState(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	var first, second []State
	store.Subscribe(func(s State) { first = append(first, s) })
	unsubscribe := store.Subscribe(func(s State) { second = append(second, s) })

	store.AddToCart(ctx, product(1, "10"), 1)
	unsubscribe()
	unsubscribe()
	store.AddToCart(ctx, product(2, "10"), 1)

	require.Len(t, first, 2)
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])
	assert.Equal(t, 2, first[1].ItemCount())
	assert.Equal(t, store.Snapshot(), first[1])
}

func TestSubscriberCanReadStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	var badge int
	store.Subscribe(func(State) { badge = store.ItemCount() })
	store.AddToCart(ctx, product(1, "1"), 3)

	assert.Equal(t, 3, badge)
}

func TestListenerCannotCorruptStore(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)
	store.Subscribe(func(s State) {
		if len(s.Lines) > 0 {
			s.Lines[0].Quantity = 999
		}
	})

	store.AddToCart(ctx, product(1, "1"), 1)

	assert.Equal(t, 1, store.ItemCount())
}

func TestConcurrentAddsAreSerialized(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t, nil)

	var notifications int
	var mu sync.Mutex
	store.Subscribe(func(State) {
		mu.Lock()
		notifications++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.AddToCart(ctx, product(1, "2"), 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, store.ItemCount())
	assert.Len(t, store.Snapshot().Lines, 1)
	assert.Equal(t, 20, notifications)
}

type flakyStore struct {
	*localstore.Memory
	getErr error
	setErr error
}

func (f *flakyStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Memory.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.Memory.Set(ctx, key, value)
}
