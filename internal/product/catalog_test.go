package product

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) FetchProducts(ctx context.Context) ([]Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Product), args.Error(1)
}

func (m *MockFetcher) FetchProduct(ctx context.Context, id string) (*SingleProduct, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SingleProduct), args.Error(1)
}

func sampleProducts() []Product {
	return []Product{
		{ID: "a", Name: "accent chair", Price: 1000, Category: "chair", Colors: []string{"red"}, Featured: true},
		{ID: "b", Name: "bar stool", Price: 2000, Category: "sofa", Colors: []string{"blue"}},
	}
}

func TestCatalog_Products(t *testing.T) {
	ctx := context.Background()

	t.Run("Fetches once and caches", func(t *testing.T) {
		f := new(MockFetcher)
		f.On("FetchProducts", ctx).Return(sampleProducts(), nil).Once()
		c := NewCatalog(f, 0)

		first, err := c.Products(ctx)
		require.NoError(t, err)
		second, err := c.Products(ctx)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Len(t, second, 2)
		f.AssertExpectations(t)
	})

	t.Run("Returned slice is a copy", func(t *testing.T) {
		f := new(MockFetcher)
		f.On("FetchProducts", ctx).Return(sampleProducts(), nil).Once()
		c := NewCatalog(f, 0)

		got, err := c.Products(ctx)
		require.NoError(t, err)
		got[0].Name = "mutated"

		again, err := c.Products(ctx)
		require.NoError(t, err)
		assert.Equal(t, "accent chair", again[0].Name)
	})

	t.Run("First fetch failure is surfaced", func(t *testing.T) {
		f := new(MockFetcher)
		f.On("FetchProducts", ctx).Return(nil, errors.New("network down")).Once()
		c := NewCatalog(f, 0)

		_, err := c.Products(ctx)
		assert.EqualError(t, err, "network down")
		assert.Equal(t, "network down", c.LastError())
	})

	t.Run("Refresh failure keeps previous data", func(t *testing.T) {
		f := new(MockFetcher)
		f.On("FetchProducts", ctx).Return(sampleProducts(), nil).Once()
		f.On("FetchProducts", ctx).Return(nil, errors.New("timeout")).Once()

		now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		c := NewCatalog(f, time.Minute)
		c.now = func() time.Time { return now }

		_, err := c.Products(ctx)
		require.NoError(t, err)

		now = now.Add(2 * time.Minute)
		got, err := c.Products(ctx)
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, "timeout", c.LastError())
		f.AssertExpectations(t)
	})
}

func TestCatalog_FeaturedAndLookup(t *testing.T) {
	ctx := context.Background()
	f := new(MockFetcher)
	f.On("FetchProducts", ctx).Return(sampleProducts(), nil).Once()
	c := NewCatalog(f, 0)

	featured, err := c.Featured(ctx)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	assert.Equal(t, "a", featured[0].ID)

	price, err := c.Price(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), price)

	_, err = c.Price(ctx, "zzz")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalog_Product(t *testing.T) {
	ctx := context.Background()

	t.Run("Caches single product", func(t *testing.T) {
		f := new(MockFetcher)
		f.On("FetchProduct", ctx, "a").Return(&SingleProduct{ID: "a", Name: "chair", Stock: 4}, nil).Once()
		c := NewCatalog(f, 0)

		p1, err := c.Product(ctx, "a")
		require.NoError(t, err)
		p2, err := c.Product(ctx, "a")
		require.NoError(t, err)

		assert.Equal(t, 4, p2.Stock)
		assert.NotSame(t, p1, p2)
		f.AssertExpectations(t)
	})

	t.Run("Missing id", func(t *testing.T) {
		c := NewCatalog(new(MockFetcher), 0)
		_, err := c.Product(ctx, "")
		assert.ErrorIs(t, err, ErrMissingID)
	})
}

func TestHandler(t *testing.T) {
	f := new(MockFetcher)
	f.On("FetchProducts", mock.Anything).Return(sampleProducts(), nil)
	f.On("FetchProduct", mock.Anything, "a").Return(&SingleProduct{ID: "a", Name: "chair", Stock: 2}, nil)
	f.On("FetchProduct", mock.Anything, "missing").Return(nil, ErrUpstreamStatus)

	mux := http.NewServeMux()
	NewHandler(NewCatalog(f, 0)).Register(mux)

	tests := []struct {
		name     string
		path     string
		wantCode int
		contains string
	}{
		{name: "List", path: "/api/products", wantCode: http.StatusOK, contains: `"count":2`},
		{name: "Featured", path: "/api/products/featured", wantCode: http.StatusOK, contains: `"count":1`},
		{name: "Single", path: "/api/products/a", wantCode: http.StatusOK, contains: `"stock":2`},
		{name: "Single upstream failure", path: "/api/products/missing", wantCode: http.StatusBadGateway, contains: `"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}
