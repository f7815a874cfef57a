package filter

import (
	"sync"

	"storefront-be/internal/product"
)

// Snapshot is a copy of the filter/view state at one point in time.
type Snapshot struct {
	Criteria    Criteria   `json:"filters"`
	Sort        SortKey    `json:"sort"`
	View        ViewMode   `json:"view"`
	Bounds      PriceRange `json:"bounds"`
	ResultCount int        `json:"resultCount"`
}

// State is the single owner of the shopper's filter criteria, sort key and
// view mode. It is session scoped and never persisted.
type State struct {
	mu          sync.Mutex
	snap        Snapshot
	initialized bool

	nextID    int
	listeners map[int]func(Snapshot)
}

func NewState() *State {
	return &State{
		snap: Snapshot{
			Criteria: DefaultCriteria(),
			Sort:     PriceLowest,
			View:     Grid,
		},
		listeners: make(map[int]func(Snapshot)),
	}
}

// Init seeds the price ceiling from the catalog bounds. Only the first call
// has an effect; it reports whether it did.
func (s *State) Init(bounds PriceRange) bool {
	applied := false
	s.update(func(snap *Snapshot) {
		if s.initialized {
			return
		}
		s.initialized = true
		applied = true
		snap.Bounds = bounds
		snap.Criteria.MaxPrice = bounds.Max
	})
	return applied
}

func (s *State) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

func (s *State) SetCategory(category string) {
	s.update(func(snap *Snapshot) { snap.Criteria.Category = category })
}

func (s *State) SetCompany(company string) {
	s.update(func(snap *Snapshot) { snap.Criteria.Company = company })
}

func (s *State) SetColor(color string) {
	s.update(func(snap *Snapshot) { snap.Criteria.Color = color })
}

func (s *State) SetMaxPrice(price int64) error {
	if price < 0 {
		return ErrInvalidMaxPrice
	}
	s.update(func(snap *Snapshot) { snap.Criteria.MaxPrice = price })
	return nil
}

func (s *State) SetFreeShipping(on bool) {
	s.update(func(snap *Snapshot) { snap.Criteria.FreeShipping = on })
}

func (s *State) ToggleFreeShipping() {
	s.update(func(snap *Snapshot) { snap.Criteria.FreeShipping = !snap.Criteria.FreeShipping })
}

func (s *State) SetSearch(text string) {
	s.update(func(snap *Snapshot) { snap.Criteria.Search = text })
}

func (s *State) SetSort(key SortKey) error {
	if !key.Valid() {
		return ErrInvalidSortKey
	}
	s.update(func(snap *Snapshot) { snap.Sort = key })
	return nil
}

func (s *State) SetView(mode ViewMode) error {
	if !mode.Valid() {
		return ErrInvalidViewMode
	}
	s.update(func(snap *Snapshot) { snap.View = mode })
	return nil
}

// ClearFilters resets every criterion to its permissive default except the
// price ceiling, which becomes maxPrice. Sort and view are kept.
func (s *State) ClearFilters(maxPrice int64) {
	s.update(func(snap *Snapshot) {
		snap.Criteria = DefaultCriteria()
		snap.Criteria.MaxPrice = max(maxPrice, 0)
	})
}

// Apply runs the engine with the current criteria and sort key and records
// the size of the result.
func (s *State) Apply(catalog []product.Product) []product.Product {
	snap := s.Snapshot()
	result := Apply(catalog, snap.Criteria, snap.Sort)

	s.update(func(snap *Snapshot) { snap.ResultCount = len(result) })
	return result
}

func (s *State) ResultCount() int {
	return s.Snapshot().ResultCount
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn to be called after every change. The returned func
// removes it.
func (s *State) Subscribe(fn func(Snapshot)) func() {
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

// update applies fn under the lock and notifies listeners outside of it when
// the snapshot changed.
func (s *State) update(fn func(*Snapshot)) {
	s.mu.Lock()
	before := s.snap
	fn(&s.snap)
	after := s.snap
	var listeners []func(Snapshot)
	if after != before {
		listeners = make([]func(Snapshot), 0, len(s.listeners))
		for _, l := range s.listeners {
			listeners = append(listeners, l)
		}
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(after)
	}
}
