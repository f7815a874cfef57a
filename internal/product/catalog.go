package product

import (
	"context"
	"slices"
	"sync"
	"time"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

// Catalog caches the product feed for the session.
//
// The list is fetched on first use. With a zero ttl it is never refreshed;
// otherwise a read after ttl triggers a refetch. A failed refetch keeps the
// previous list and records the error message.
type Catalog struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	fetchMu sync.Mutex

	mu        sync.RWMutex
	products  []Product
	index     map[string]int
	fetchedAt time.Time
	loaded    bool
	lastErr   string
	singles   map[string]*SingleProduct
}

func NewCatalog(fetcher Fetcher, ttl time.Duration) *Catalog {
	return &Catalog{
		fetcher: fetcher,
		ttl:     ttl,
		now:     time.Now,
		singles: make(map[string]*SingleProduct),
	}
}

// Products returns the cached catalog, loading it when needed.
// It only fails when nothing has ever been loaded.
func (c *Catalog) Products(ctx context.Context) ([]Product, error) {
	if products, ok := c.cached(); ok {
		return products, nil
	}

	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	// another caller may have refreshed while we waited
	if products, ok := c.cached(); ok {
		return products, nil
	}

	fetched, err := c.fetcher.FetchProducts(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastErr = err.Error()
		loaded := c.loaded
		previous := slices.Clone(c.products)
		c.mu.Unlock()

		if loaded {
			logger.FromCtx(ctx).Warn("catalog refresh failed, serving previous data",
				zap.Error(err),
				zap.Int("count", len(previous)),
			)
			return previous, nil
		}
		return nil, err
	}

	index := make(map[string]int, len(fetched))
	for i, p := range fetched {
		index[p.ID] = i
	}

	c.mu.Lock()
	c.products = fetched
	c.index = index
	c.fetchedAt = c.now()
	c.loaded = true
	c.lastErr = ""
	c.mu.Unlock()

	return slices.Clone(fetched), nil
}

func (c *Catalog) cached() ([]Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.loaded {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return slices.Clone(c.products), true
}

// Featured returns the products flagged as featured, in catalog order.
func (c *Catalog) Featured(ctx context.Context) ([]Product, error) {
	products, err := c.Products(ctx)
	if err != nil {
		return nil, err
	}

	featured := make([]Product, 0)
	for _, p := range products {
		if p.Featured {
			featured = append(featured, p)
		}
	}
	return featured, nil
}

// Lookup finds a listing record by id.
func (c *Catalog) Lookup(ctx context.Context, id string) (Product, error) {
	if _, err := c.Products(ctx); err != nil {
		return Product{}, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	i, ok := c.index[id]
	if !ok {
		return Product{}, ErrProductNotFound
	}
	return c.products[i], nil
}

// Price returns the trusted unit price of a product.
func (c *Catalog) Price(ctx context.Context, id string) (int64, error) {
	p, err := c.Lookup(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.Price, nil
}

// Product returns the detail record for id, fetching it once per session.
func (c *Catalog) Product(ctx context.Context, id string) (*SingleProduct, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	c.mu.RLock()
	sp, ok := c.singles[id]
	c.mu.RUnlock()
	if ok {
		cp := *sp
		return &cp, nil
	}

	sp, err := c.fetcher.FetchProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.singles[id] = sp
	c.mu.Unlock()

	cp := *sp
	return &cp, nil
}

// LastError is the message of the most recent failed catalog fetch.
func (c *Catalog) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}
