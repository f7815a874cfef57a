package selection

import (
	"sync"

	"storefront-be/internal/product"
)

// State is the shopper's pending choice on a product page.
type State struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Stock  int    `json:"stock"`
	Image  string `json:"image"`
	Color  string `json:"color"`
	Amount int    `json:"amount"`
}

func initialState() State {
	return State{Amount: 1}
}

// Store holds the selection for the product currently being viewed. It has no
// link to the cart.
type Store struct {
	mu    sync.Mutex
	state State
}

func NewStore() *Store {
	return &Store{state: initialState()}
}

// SetProduct starts a new selection: amount 1, no color, first image.
func (s *Store) SetProduct(p product.SingleProduct) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{
		ID:     p.ID,
		Name:   p.Name,
		Price:  p.Price,
		Stock:  p.Stock,
		Image:  p.MainImage(),
		Amount: 1,
	}
}

func (s *Store) IncreaseAmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Amount < s.state.Stock {
		s.state.Amount++
	}
}

func (s *Store) DecreaseAmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Amount = max(s.state.Amount-1, 1)
}

// SetAmount stores n bounded to [1, stock].
func (s *Store) SetAmount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Amount = product.ClampAmount(n, s.state.Stock)
}

func (s *Store) SetColor(color string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Color = color
}

func (s *Store) SetImage(image string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Image = image
}

func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = initialState()
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
