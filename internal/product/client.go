package product

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"storefront-be/internal/logger"

	"go.uber.org/zap"
)

const fetchTimeout = 10 * time.Second

// Fetcher reads the upstream catalog feed.
type Fetcher interface {
	FetchProducts(ctx context.Context) ([]Product, error)
	FetchProduct(ctx context.Context, id string) (*SingleProduct, error)
}

type client struct {
	productsURL      string
	singleProductURL string
	httpClient       *http.Client
}

// NewClient returns a Fetcher for the products endpoint and the single
// product endpoint. The id is appended to singleProductURL as-is (escaped).
func NewClient(productsURL, singleProductURL string) Fetcher {
	return &client{
		productsURL:      productsURL,
		singleProductURL: singleProductURL,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

func (c *client) FetchProducts(ctx context.Context) ([]Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "client"),
		zap.String("method", "FetchProducts"),
	)

	start := time.Now()

	body, err := c.get(ctx, c.productsURL)
	if err != nil {
		log.Error("catalog fetch failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		log.Error("catalog payload is not an array", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	products := make([]Product, 0, len(raw))
	for i, item := range raw {
		var p Product
		if err := json.Unmarshal(item, &p); err != nil {
			log.Warn("skipping undecodable product", zap.Int("index", i), zap.Error(err))
			continue
		}
		if err := p.Validate(); err != nil {
			log.Warn("skipping invalid product", zap.Int("index", i), zap.Error(err))
			continue
		}
		products = append(products, p)
	}

	log.Info("catalog fetched",
		zap.Int("received", len(raw)),
		zap.Int("accepted", len(products)),
		zap.Duration("duration", time.Since(start)),
	)

	return products, nil
}

func (c *client) FetchProduct(ctx context.Context, id string) (*SingleProduct, error) {
	if id == "" {
		return nil, ErrMissingID
	}

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "client"),
		zap.String("method", "FetchProduct"),
		zap.String("product_id", id),
	)

	body, err := c.get(ctx, c.singleProductURL+url.QueryEscape(id))
	if err != nil {
		log.Error("single product fetch failed", zap.Error(err))
		return nil, err
	}

	var p SingleProduct
	if err := json.Unmarshal(body, &p); err != nil {
		log.Error("failed decoding single product", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}
	if err := p.Validate(); err != nil {
		log.Error("single product failed validation", zap.Error(err))
		return nil, err
	}

	return &p, nil
}

func (c *client) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	return body, nil
}
