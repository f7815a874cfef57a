package cart

import "storefront-be/internal/product"

// ShippingFee is the flat shipping charge in cents.
const ShippingFee int64 = 534

// Line is one product in the cart. There is at most one line per product id.
type Line struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Stock    int    `json:"stock"`
	Shipping bool   `json:"shipping"`
	Color    string `json:"color"`
	Image    string `json:"image"`
	Amount   int    `json:"amount"`
}

func (l Line) Subtotal() int64 {
	return int64(l.Amount) * l.Price
}

func newLine(p product.SingleProduct, amount int, color, image string) Line {
	return Line{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		Shipping: p.Shipping,
		Color:    color,
		Image:    image,
		Amount:   amount,
	}
}

type Direction string

const (
	Inc Direction = "inc"
	Dec Direction = "dec"
)

type Totals struct {
	TotalItems  int   `json:"totalItems"`
	TotalAmount int64 `json:"totalAmount"`
	ShippingFee int64 `json:"shippingFee"`
}

// OrderTotal is the subtotal plus shipping.
func (t Totals) OrderTotal() int64 {
	return t.TotalAmount + t.ShippingFee
}

func computeTotals(lines []Line) Totals {
	t := Totals{ShippingFee: ShippingFee}
	for _, l := range lines {
		t.TotalItems += l.Amount
		t.TotalAmount += l.Subtotal()
	}
	return t
}

// Snapshot is a copy of the cart and its derived totals.
type Snapshot struct {
	Lines []Line `json:"cart"`
	Totals
}
