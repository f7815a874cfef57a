package cart

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"storefront-be/internal/product"
	"storefront-be/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSlot struct {
	mock.Mock
}

func (m *MockSlot) Load(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSlot) Save(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func chair() product.SingleProduct {
	return product.SingleProduct{
		ID:     "rec1",
		Name:   "accent chair",
		Price:  1000,
		Stock:  10,
		Colors: []string{"red", "blue"},
		Images: []product.Image{{URL: "https://img/chair.jpg"}},
	}
}

func sofa() product.SingleProduct {
	return product.SingleProduct{ID: "rec2", Name: "sofa", Price: 2500, Stock: 2}
}

func newFileStore(t *testing.T) (*Store, storage.Slot) {
	t.Helper()
	slot, err := storage.NewFileSlot(filepath.Join(t.TempDir(), "cart.json"))
	require.NoError(t, err)
	return NewStore(context.Background(), slot), slot
}

func assertTotalsConsistent(t *testing.T, s *Store) {
	t.Helper()
	var items int
	var amount int64
	for _, l := range s.Lines() {
		items += l.Amount
		amount += int64(l.Amount) * l.Price
		assert.GreaterOrEqual(t, l.Amount, 1)
		assert.LessOrEqual(t, l.Amount, l.Stock)
	}
	totals := s.Totals()
	assert.Equal(t, items, totals.TotalItems)
	assert.Equal(t, amount, totals.TotalAmount)
	assert.Equal(t, ShippingFee, totals.ShippingFee)
}

func TestStore_AddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("Adds a new line", func(t *testing.T) {
		s, _ := newFileStore(t)

		require.NoError(t, s.AddToCart(ctx, chair(), 2, "red", "img"))

		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, "rec1", lines[0].ID)
		assert.Equal(t, 2, lines[0].Amount)
		assert.Equal(t, int64(2000), s.Totals().TotalAmount)
		assertTotalsConsistent(t, s)
	})

	t.Run("Re-adding overwrites amount and color", func(t *testing.T) {
		s, _ := newFileStore(t)

		require.NoError(t, s.AddToCart(ctx, chair(), 3, "red", "img"))
		require.NoError(t, s.AddToCart(ctx, chair(), 5, "blue", "img2"))

		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, 5, lines[0].Amount)
		assert.Equal(t, "blue", lines[0].Color)
		assert.Equal(t, "img2", lines[0].Image)
		assertTotalsConsistent(t, s)
	})

	t.Run("Amount is capped at stock", func(t *testing.T) {
		s, _ := newFileStore(t)

		require.NoError(t, s.AddToCart(ctx, sofa(), 9, "", ""))

		assert.Equal(t, 2, s.Lines()[0].Amount)
		assertTotalsConsistent(t, s)
	})

	t.Run("Non positive amount is rejected", func(t *testing.T) {
		s, _ := newFileStore(t)

		assert.ErrorIs(t, s.AddToCart(ctx, chair(), 0, "", ""), ErrInvalidQuantity)
		assert.ErrorIs(t, s.AddToCart(ctx, chair(), -3, "", ""), ErrInvalidQuantity)
		assert.Empty(t, s.Lines())
	})

	t.Run("Out of stock product is rejected", func(t *testing.T) {
		s, _ := newFileStore(t)
		p := chair()
		p.Stock = 0

		assert.ErrorIs(t, s.AddToCart(ctx, p, 1, "", ""), ErrOutOfStock)
	})

	t.Run("Lines keep insertion order", func(t *testing.T) {
		s, _ := newFileStore(t)
		require.NoError(t, s.AddToCart(ctx, sofa(), 1, "", ""))
		require.NoError(t, s.AddToCart(ctx, chair(), 1, "", ""))
		require.NoError(t, s.AddToCart(ctx, sofa(), 2, "", ""))

		lines := s.Lines()
		assert.Equal(t, "rec2", lines[0].ID)
		assert.Equal(t, "rec1", lines[1].ID)
	})
}

func TestStore_ToggleAmount(t *testing.T) {
	ctx := context.Background()

	t.Run("Increase stops at stock", func(t *testing.T) {
		s, _ := newFileStore(t)
		require.NoError(t, s.AddToCart(ctx, sofa(), 1, "", ""))

		require.NoError(t, s.ToggleAmount(ctx, "rec2", Inc))
		require.NoError(t, s.ToggleAmount(ctx, "rec2", Inc))

		assert.Equal(t, 2, s.Lines()[0].Amount)
		assertTotalsConsistent(t, s)
	})

	t.Run("Decrease stops at one", func(t *testing.T) {
		s, _ := newFileStore(t)
		require.NoError(t, s.AddToCart(ctx, chair(), 2, "", ""))

		require.NoError(t, s.ToggleAmount(ctx, "rec1", Dec))
		require.NoError(t, s.ToggleAmount(ctx, "rec1", Dec))

		assert.Equal(t, 1, s.Lines()[0].Amount)
	})

	t.Run("Unknown id is a no-op", func(t *testing.T) {
		s, _ := newFileStore(t)
		require.NoError(t, s.AddToCart(ctx, chair(), 2, "", ""))

		assert.NoError(t, s.ToggleAmount(ctx, "missing", Inc))
		assert.Equal(t, 2, s.Lines()[0].Amount)
	})

	t.Run("Unknown direction changes nothing", func(t *testing.T) {
		s, _ := newFileStore(t)
		require.NoError(t, s.AddToCart(ctx, chair(), 2, "", ""))

		assert.ErrorIs(t, s.ToggleAmount(ctx, "rec1", "sideways"), ErrInvalidDirection)
		assert.Equal(t, 2, s.Lines()[0].Amount)
	})
}

func TestStore_RemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)
	require.NoError(t, s.AddToCart(ctx, chair(), 2, "", ""))
	require.NoError(t, s.AddToCart(ctx, sofa(), 1, "", ""))

	s.RemoveFromCart(ctx, "missing")
	assert.Len(t, s.Lines(), 2)

	s.RemoveFromCart(ctx, "rec1")
	assert.Len(t, s.Lines(), 1)
	assertTotalsConsistent(t, s)

	s.ClearCart(ctx)
	assert.Empty(t, s.Lines())
	assert.Equal(t, Totals{ShippingFee: ShippingFee}, s.Totals())
}

func TestStore_Persistence(t *testing.T) {
	ctx := context.Background()

	t.Run("Reload restores the same lines", func(t *testing.T) {
		s, slot := newFileStore(t)
		require.NoError(t, s.AddToCart(ctx, chair(), 3, "red", "img"))
		require.NoError(t, s.AddToCart(ctx, sofa(), 1, "", ""))
		require.NoError(t, s.ToggleAmount(ctx, "rec2", Inc))

		reloaded := NewStore(ctx, slot)

		assert.Equal(t, s.Lines(), reloaded.Lines())
		assert.Equal(t, s.Totals(), reloaded.Totals())
	})

	t.Run("Stored form is a JSON array of lines", func(t *testing.T) {
		s, slot := newFileStore(t)
		require.NoError(t, s.AddToCart(ctx, chair(), 1, "red", "img"))

		data, err := slot.Load(ctx)
		require.NoError(t, err)

		var stored []map[string]any
		require.NoError(t, json.Unmarshal(data, &stored))
		require.Len(t, stored, 1)
		assert.Equal(t, "rec1", stored[0]["id"])
		assert.EqualValues(t, 1, stored[0]["amount"])
	})

	t.Run("Load failure starts empty", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Load", mock.Anything).Return(nil, errors.New("connection refused"))

		s := NewStore(ctx, slot)

		assert.Empty(t, s.Lines())
	})

	t.Run("Corrupt data starts empty", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Load", mock.Anything).Return([]byte("{not json"), nil)

		s := NewStore(ctx, slot)

		assert.Empty(t, s.Lines())
	})

	t.Run("Invalid stored lines are dropped", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Load", mock.Anything).Return([]byte(`[{"id":"","amount":1},{"id":"a","amount":0},{"id":"b","amount":2,"stock":5,"price":100},{"id":"b","amount":1}]`), nil)

		s := NewStore(ctx, slot)

		lines := s.Lines()
		require.Len(t, lines, 1)
		assert.Equal(t, "b", lines[0].ID)
		assert.Equal(t, 2, lines[0].Amount)
	})

	t.Run("Save failure is swallowed", func(t *testing.T) {
		slot := new(MockSlot)
		slot.On("Load", mock.Anything).Return(nil, nil)
		slot.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

		s := NewStore(ctx, slot)

		require.NoError(t, s.AddToCart(ctx, chair(), 1, "", ""))
		assert.Len(t, s.Lines(), 1)
		slot.AssertNumberOfCalls(t, "Save", 1)
	})
}

func TestStore_RestoredLinesRespectStock(t *testing.T) {
	ctx := context.Background()

	restore := func(t *testing.T, stored string) *Store {
		t.Helper()
		slot := new(MockSlot)
		slot.On("Load", mock.Anything).Return([]byte(stored), nil)
		slot.On("Save", mock.Anything, mock.Anything).Return(nil)
		return NewStore(ctx, slot)
	}

	t.Run("Line without stock is dropped", func(t *testing.T) {
		s := restore(t, `[{"id":"a","amount":2,"price":100},{"id":"b","amount":1,"stock":3,"price":100}]`)

		require.Len(t, s.Lines(), 1)
		assert.Equal(t, "b", s.Lines()[0].ID)

		require.NoError(t, s.ToggleAmount(ctx, "a", Inc))
		assert.Len(t, s.Lines(), 1)
	})

	t.Run("Amount above stock is clamped", func(t *testing.T) {
		s := restore(t, `[{"id":"b","amount":9,"stock":3,"price":100}]`)

		assert.Equal(t, 3, s.Lines()[0].Amount)

		require.NoError(t, s.ToggleAmount(ctx, "b", Inc))
		assert.Equal(t, 3, s.Lines()[0].Amount)

		require.NoError(t, s.ToggleAmount(ctx, "b", Dec))
		assert.Equal(t, 2, s.Lines()[0].Amount)
		assertTotalsConsistent(t, s)
	})

	t.Run("First duplicate wins", func(t *testing.T) {
		s := restore(t, `[{"id":"b","amount":1,"stock":3},{"id":"b","amount":2,"stock":3}]`)

		require.Len(t, s.Lines(), 1)
		assert.Equal(t, 1, s.Lines()[0].Amount)
	})
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	s, _ := newFileStore(t)

	var got []Snapshot
	stop := s.Subscribe(func(snap Snapshot) { got = append(got, snap) })

	require.NoError(t, s.AddToCart(ctx, chair(), 2, "", ""))
	s.RemoveFromCart(ctx, "missing")
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].TotalItems)

	stop()
	s.ClearCart(ctx)
	assert.Len(t, got, 1)
}
