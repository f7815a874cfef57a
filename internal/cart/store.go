package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"storefront-be/internal/logger"
	"storefront-be/internal/product"
	"storefront-be/internal/storage"

	"go.uber.org/zap"
)

// Store owns the cart lines and mirrors them into a durable slot after every
// change. Slot failures are logged and never surface to callers.
type Store struct {
	slot storage.Slot

	mu    sync.Mutex
	lines []Line

	nextID    int
	listeners map[int]func(Snapshot)
}

// NewStore restores the cart from slot. An unreadable or corrupt slot yields
// an empty cart.
func NewStore(ctx context.Context, slot storage.Slot) *Store {
	s := &Store{
		slot:      slot,
		lines:     []Line{},
		listeners: make(map[int]func(Snapshot)),
	}

	lines, err := s.load(ctx)
	if err != nil {
		logger.FromCtx(ctx).Warn("failed to restore cart, starting empty", zap.Error(err))
		return s
	}
	s.lines = lines
	return s
}

func (s *Store) load(ctx context.Context) ([]Line, error) {
	data, err := s.slot.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []Line{}, nil
	}

	var stored []Line
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedDecodeCart, err)
	}

	log := logger.FromCtx(ctx)
	lines := make([]Line, 0, len(stored))
	for _, l := range stored {
		if l.ID == "" || l.Amount < 1 || l.Stock < 1 {
			log.Warn("dropping stored cart line",
				zap.String("product_id", l.ID),
				zap.Int("amount", l.Amount),
				zap.Int("stock", l.Stock),
			)
			continue
		}

		// first occurrence wins, matching insertion order
		if i := slices.IndexFunc(lines, func(x Line) bool { return x.ID == l.ID }); i >= 0 {
			log.Warn("dropping duplicate stored cart line",
				zap.String("product_id", l.ID),
				zap.Int("kept_amount", lines[i].Amount),
				zap.Int("dropped_amount", l.Amount),
			)
			continue
		}

		l.Amount = product.ClampAmount(l.Amount, l.Stock)
		lines = append(lines, l)
	}
	return lines, nil
}

// AddToCart puts amount of p in the cart. An existing line for the same
// product is overwritten with the new amount, color and image. The amount is
// capped at the product stock.
func (s *Store) AddToCart(ctx context.Context, p product.SingleProduct, amount int, color, image string) error {
	if p.ID == "" {
		return ErrMissingProductID
	}
	if amount < 1 {
		return ErrInvalidQuantity
	}
	if p.Stock < 1 {
		return ErrOutOfStock
	}

	amount = product.ClampAmount(amount, p.Stock)

	s.mutate(ctx, "AddToCart", func(lines []Line) ([]Line, bool) {
		i := slices.IndexFunc(lines, func(l Line) bool { return l.ID == p.ID })
		if i < 0 {
			return append(lines, newLine(p, amount, color, image)), true
		}
		lines[i].Amount = amount
		lines[i].Color = color
		lines[i].Image = image
		return lines, true
	})
	return nil
}

// RemoveFromCart drops the line for id. Unknown ids are ignored.
func (s *Store) RemoveFromCart(ctx context.Context, id string) {
	s.mutate(ctx, "RemoveFromCart", func(lines []Line) ([]Line, bool) {
		n := len(lines)
		lines = slices.DeleteFunc(lines, func(l Line) bool { return l.ID == id })
		return lines, len(lines) != n
	})
}

// ToggleAmount moves the amount of one line by one within [1, stock].
func (s *Store) ToggleAmount(ctx context.Context, id string, dir Direction) error {
	if dir != Inc && dir != Dec {
		return ErrInvalidDirection
	}

	s.mutate(ctx, "ToggleAmount", func(lines []Line) ([]Line, bool) {
		i := slices.IndexFunc(lines, func(l Line) bool { return l.ID == id })
		if i < 0 {
			return lines, false
		}

		l := &lines[i]
		switch dir {
		case Inc:
			if l.Amount < l.Stock {
				l.Amount++
				return lines, true
			}
		case Dec:
			if l.Amount > 1 {
				l.Amount--
				return lines, true
			}
		}
		return lines, false
	})
	return nil
}

func (s *Store) ClearCart(ctx context.Context) {
	s.mutate(ctx, "ClearCart", func(lines []Line) ([]Line, bool) {
		return []Line{}, len(lines) > 0
	})
}

func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lines)
}

func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return computeTotals(s.lines)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:  slices.Clone(s.lines),
		Totals: computeTotals(s.lines),
	}
}

// Subscribe registers fn to be called after every change. The returned func
// removes it.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// mutate runs fn on the lines under the lock. When fn reports a change the
// lines are persisted, still under the lock so slot writes keep mutation
// order, and listeners are notified once the lock is released.
func (s *Store) mutate(ctx context.Context, method string, fn func([]Line) ([]Line, bool)) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "store"),
		zap.String("method", method),
	)

	s.mu.Lock()
	lines, changed := fn(s.lines)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.lines = lines
	s.persistLocked(ctx, log)

	snap := s.snapshotLocked()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	log.Debug("cart updated", zap.Int("lines", len(snap.Lines)), zap.Int("total_items", snap.TotalItems))

	for _, l := range listeners {
		l(snap)
	}
}

func (s *Store) persistLocked(ctx context.Context, log *zap.Logger) {
	start := time.Now()

	data, err := json.Marshal(s.lines)
	if err != nil {
		log.Warn("failed to encode cart", zap.Error(fmt.Errorf("%w: %v", ErrFailedEncodeCart, err)))
		return
	}

	// the write must finish even when the request that triggered it is gone
	if err := s.slot.Save(context.WithoutCancel(ctx), data); err != nil {
		log.Warn("failed to persist cart", zap.Error(err), zap.Duration("duration", time.Since(start)))
	}
}
