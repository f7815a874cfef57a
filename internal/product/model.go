package product

import (
	"fmt"
	"strings"
)

// Product is one listing record of the catalog feed. Prices are in cents.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int64    `json:"price"`
	Image       string   `json:"image"`
	Colors      []string `json:"colors"`
	Company     string   `json:"company"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Shipping    bool     `json:"shipping,omitempty"`
	Featured    bool     `json:"featured,omitempty"`
}

// SingleProduct is the detail record returned by the single product endpoint.
type SingleProduct struct {
	ID          string   `json:"id"`
	Stock       int      `json:"stock"`
	Price       int64    `json:"price"`
	Shipping    bool     `json:"shipping"`
	Colors      []string `json:"colors"`
	Category    string   `json:"category"`
	Images      []Image  `json:"images"`
	Reviews     int      `json:"reviews"`
	Stars       float64  `json:"stars"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Company     string   `json:"company"`
}

type Image struct {
	ID         string     `json:"id"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	URL        string     `json:"url"`
	Filename   string     `json:"filename"`
	Size       int        `json:"size"`
	Type       string     `json:"type"`
	Thumbnails Thumbnails `json:"thumbnails"`
}

type Thumbnails struct {
	Small Thumbnail `json:"small"`
	Large Thumbnail `json:"large"`
	Full  Thumbnail `json:"full"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Validate checks the fields every consumer relies on.
func (p Product) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product %s has no name", ErrInvalidProduct, p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: product %s has negative price", ErrInvalidProduct, p.ID)
	}
	return nil
}

func (p SingleProduct) Validate() error {
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidProduct)
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: product %s has no name", ErrInvalidProduct, p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: product %s has negative price", ErrInvalidProduct, p.ID)
	}
	if p.Stock < 0 {
		return fmt.Errorf("%w: product %s has negative stock", ErrInvalidProduct, p.ID)
	}
	return nil
}

// MainImage returns the URL of the first image, or "" when there is none.
func (p SingleProduct) MainImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// ClampAmount bounds a quantity to [1, stock].
func ClampAmount(amount, stock int) int {
	if amount > stock {
		amount = stock
	}
	if amount < 1 {
		amount = 1
	}
	return amount
}
