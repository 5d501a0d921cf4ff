package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/angelmondragon/webmarket/pkg/localstore"
	"github.com/angelmondragon/webmarket/pkg/logger"
	"github.com/shopspring/decimal"
)

// Listener receives the post-mutation state. Every listener gets the same State
// for a given mutation; it must be treated as read-only. Listeners must not
// mutate the store synchronously.
type Listener func(State)

type subscription struct {
	id int
	fn Listener
}

// Store owns the shopping basket. It is constructed once and handed to every
// surface that reads or edits the cart.
type Store struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	lines   []Line
	persist localstore.Store
	logg    *logger.Logger

	subs   []subscription
	nextID int
}

// NewStore builds a store and rehydrates it from persist. Missing or corrupt
// data yields an empty cart; it never fails construction.
func NewStore(ctx context.Context, persist localstore.Store, logg *logger.Logger) (*Store, error) {
	if persist == nil {
		return nil, fmt.Errorf("local store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	s := &Store{persist: persist, logg: logg, lines: []Line{}}
	s.lines = s.load(ctx)
	return s, nil
}

func (s *Store) load(ctx context.Context) []Line {
	raw, err := s.persist.Get(ctx, localstore.KeyCart)
	if errors.Is(err, localstore.ErrNotFound) {
		return []Line{}
	}
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "cart.load_failed")
		return []Line{}
	}
	var state State
	if err := json.Unmarshal(raw, &state); err != nil || !state.validate() {
		reason := "invalid lines"
		if err != nil {
			reason = err.Error()
		}
		s.logg.Warn(s.logg.WithField(ctx, "reason", reason), "cart.load_corrupt")
		return []Line{}
	}
	return cloneLines(state.Lines)
}

// AddToCart increments the line for product by quantity, or appends a new line.
// Quantities below 1 are treated as 1.
func (s *Store) AddToCart(ctx context.Context, product Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	s.mutate(ctx, "add", func(lines []Line) ([]Line, bool) {
		for i := range lines {
			if lines[i].ProductID == product.ID {
				lines[i].Quantity += quantity
				return lines, true
			}
		}
		return append(lines, Line{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			ImageRef:  product.Image,
			Quantity:  quantity,
		}), true
	})
}

// RemoveFromCart deletes the line for productID. Absent ids are ignored.
func (s *Store) RemoveFromCart(ctx context.Context, productID uint) {
	s.mutate(ctx, "remove", func(lines []Line) ([]Line, bool) {
		return removeLine(lines, productID)
	})
}

// UpdateQuantity sets the quantity for productID. A quantity of zero or less
// removes the line. Absent ids are ignored.
func (s *Store) UpdateQuantity(ctx context.Context, productID uint, quantity int) {
	s.mutate(ctx, "update", func(lines []Line) ([]Line, bool) {
		if quantity <= 0 {
			return removeLine(lines, productID)
		}
		for i := range lines {
			if lines[i].ProductID == productID {
				if lines[i].Quantity == quantity {
					return lines, false
				}
				lines[i].Quantity = quantity
				return lines, true
			}
		}
		return lines, false
	})
}

// ClearCart empties the basket.
func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, "clear", func(lines []Line) ([]Line, bool) {
		return []Line{}, true
	})
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{Lines: cloneLines(s.lines)}
}

// ItemCount is recomputed from the lines on every call.
func (s *Store) ItemCount() int {
	return s.Snapshot().ItemCount()
}

// Total is recomputed from the lines on every call.
func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total()
}

// Subscribe registers fn for change notifications and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subs {
				if sub.id == id {
					s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// mutate applies fn to a private copy of the lines. When fn reports a change the
// new lines are committed, persisted and broadcast in mutation order.
func (s *Store) mutate(ctx context.Context, op string, fn func([]Line) ([]Line, bool)) {
	s.mu.Lock()
	next, changed := fn(cloneLines(s.lines))
	if !changed {
		s.mu.Unlock()
		return
	}
	s.lines = next
	state := State{Lines: cloneLines(next)}
	s.save(ctx, op, state)
	listeners := make([]Listener, len(s.subs))
	for i, sub := range s.subs {
		listeners[i] = sub.fn
	}

	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	for _, fn := range listeners {
		fn(state)
	}
}

func (s *Store) save(ctx context.Context, op string, state State) {
	raw, err := json.Marshal(state)
	if err == nil {
		err = s.persist.Set(ctx, localstore.KeyCart, raw)
	}
	if err != nil {
		s.logg.Error(s.logg.WithFields(ctx, map[string]any{"op": op, "lines": len(state.Lines)}), "cart.persist_failed", err)
		return
	}
	s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"op": op, "item_count": state.ItemCount()}), "cart.persisted")
}

func removeLine(lines []Line, productID uint) ([]Line, bool) {
	for i := range lines {
		if lines[i].ProductID == productID {
			return append(lines[:i], lines[i+1:]...), true
		}
	}
	return lines, false
}
