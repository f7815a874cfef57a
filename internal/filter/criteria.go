package filter

import "errors"

// All is the permissive sentinel for tag criteria.
const All = "all"

var (
	ErrInvalidSortKey  = errors.New("invalid sort key")
	ErrInvalidViewMode = errors.New("invalid view mode")
	ErrInvalidMaxPrice = errors.New("max price cannot be negative")
)

// Criteria narrows the catalog. Zero values and "all" are permissive.
type Criteria struct {
	Category     string `json:"category"`
	Company      string `json:"company"`
	Color        string `json:"color"`
	MaxPrice     int64  `json:"maxPrice"`
	FreeShipping bool   `json:"freeShipping"`
	Search       string `json:"search"`
}

func DefaultCriteria() Criteria {
	return Criteria{
		Category: All,
		Company:  All,
		Color:    All,
	}
}

type SortKey string

const (
	PriceLowest  SortKey = "price-lowest"
	PriceHighest SortKey = "price-highest"
	NameAsc      SortKey = "name-a"
	NameDesc     SortKey = "name-z"
)

func (k SortKey) Valid() bool {
	switch k {
	case PriceLowest, PriceHighest, NameAsc, NameDesc:
		return true
	}
	return false
}

type ViewMode string

const (
	Grid ViewMode = "grid"
	List ViewMode = "list"
)

func (v ViewMode) Valid() bool {
	return v == Grid || v == List
}

// PriceRange holds the cheapest and most expensive catalog prices.
type PriceRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// Options lists the distinct values a shopper can pick from, "all" first.
type Options struct {
	Categories []string `json:"categories"`
	Companies  []string `json:"companies"`
	Colors     []string `json:"colors"`
}

func isAll(v string) bool {
	return v == "" || v == All
}
