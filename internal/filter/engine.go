package filter

import (
	"cmp"
	"slices"
	"strings"

	"storefront-be/internal/product"
	"storefront-be/internal/utils"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type predicate func(p product.Product) bool

// Filter returns the products matching every active criterion, in catalog
// order. The input slice is never modified.
func Filter(catalog []product.Product, c Criteria) []product.Product {
	preds := make([]predicate, 0, 6)

	if c.FreeShipping {
		preds = append(preds, func(p product.Product) bool { return p.Shipping })
	}
	if c.Search != "" {
		needle := strings.ToLower(c.Search)
		preds = append(preds, func(p product.Product) bool {
			return strings.Contains(strings.ToLower(p.Name), needle)
		})
	}
	if !isAll(c.Category) {
		preds = append(preds, func(p product.Product) bool {
			return utils.EqualFoldTrim(p.Category, c.Category)
		})
	}
	if !isAll(c.Company) {
		preds = append(preds, func(p product.Product) bool {
			return utils.EqualFoldTrim(p.Company, c.Company)
		})
	}
	if !isAll(c.Color) {
		preds = append(preds, func(p product.Product) bool {
			return slices.ContainsFunc(p.Colors, func(color string) bool {
				return strings.EqualFold(color, c.Color)
			})
		})
	}
	if c.MaxPrice > 0 {
		preds = append(preds, func(p product.Product) bool { return p.Price <= c.MaxPrice })
	}

	out := make([]product.Product, 0, len(catalog))
next:
	for _, p := range catalog {
		for _, keep := range preds {
			if !keep(p) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}

// Sort returns a stably sorted copy. Unknown keys keep the input order.
func Sort(products []product.Product, key SortKey) []product.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []product.Product{}
	}

	switch key {
	case PriceLowest:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return cmp.Compare(a.Price, b.Price)
		})
	case PriceHighest:
		slices.SortStableFunc(out, func(a, b product.Product) int {
			return cmp.Compare(b.Price, a.Price)
		})
	case NameAsc, NameDesc:
		// a Collator is not safe for concurrent use
		col := collate.New(language.English)
		slices.SortStableFunc(out, func(a, b product.Product) int {
			if key == NameDesc {
				a, b = b, a
			}
			return col.CompareString(a.Name, b.Name)
		})
	}
	return out
}

// Apply filters then sorts.
func Apply(catalog []product.Product, c Criteria, key SortKey) []product.Product {
	return Sort(Filter(catalog, c), key)
}

// Bounds reports the price range of the catalog; zero for an empty one.
func Bounds(catalog []product.Product) PriceRange {
	if len(catalog) == 0 {
		return PriceRange{}
	}

	r := PriceRange{Min: catalog[0].Price, Max: catalog[0].Price}
	for _, p := range catalog[1:] {
		r.Min = min(r.Min, p.Price)
		r.Max = max(r.Max, p.Price)
	}
	return r
}

// BuildOptions collects the distinct categories, companies and colors in
// first-seen order.
func BuildOptions(catalog []product.Product) Options {
	opts := Options{
		Categories: []string{All},
		Companies:  []string{All},
		Colors:     []string{All},
	}

	for _, p := range catalog {
		opts.Categories = appendUnique(opts.Categories, p.Category)
		opts.Companies = appendUnique(opts.Companies, p.Company)
		for _, c := range p.Colors {
			opts.Colors = appendUnique(opts.Colors, c)
		}
	}
	return opts
}

func appendUnique(list []string, v string) []string {
	if v == "" || slices.Contains(list, v) {
		return list
	}
	return append(list, v)
}
