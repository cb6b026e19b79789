package shipper

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Registry manages registered shippers.
type Registry struct {
	shippers map[string]Shipper
	mu       sync.RWMutex
}

// NewRegistry creates a new shipper registry.
func NewRegistry() *Registry {
	return &Registry{
		shippers: make(map[string]Shipper),
	}
}

// Register adds a shipper, replacing any shipper with the same name.
func (r *Registry) Register(s Shipper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shippers[s.Name()] = s
}

// Get returns a shipper by name.
func (r *Registry) Get(name string) (Shipper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.shippers[name]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrCarrierNotFound, name)
}

// Names returns the registered shipper names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.shippers))
	for name := range r.shippers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Count returns the number of registered shippers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shippers)
}

// QuoteSet is the merged outcome of quoting several shippers.
type QuoteSet struct {
	Quotes []*QuoteResponse
	// Rates holds every rate of every quote, cheapest first.
	Rates  []RateOption
	Errors []error
}

// Quote asks the named shippers for rates in parallel, or every registered
// shipper when no name is given. A failing shipper adds to Errors and does
// not fail the others.
func (r *Registry) Quote(ctx context.Context, req *QuoteRequest, names ...string) *QuoteSet {
	if len(names) == 0 {
		names = r.Names()
	}
	if len(names) == 0 {
		return &QuoteSet{Errors: []error{ErrCarrierNotFound}}
	}

	set := &QuoteSet{}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		g.Go(func() error {
			resp, err := r.quoteOne(ctx, name, req)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				set.Errors = append(set.Errors, err)
				return nil
			}
			set.Quotes = append(set.Quotes, resp)
			set.Rates = append(set.Rates, resp.Rates...)
			return nil
		})
	}
	_ = g.Wait()

	slices.SortStableFunc(set.Rates, func(a, b RateOption) int {
		return cmp.Compare(a.TotalPrice.Amount, b.TotalPrice.Amount)
	})
	return set
}

func (r *Registry) quoteOne(ctx context.Context, name string, req *QuoteRequest) (*QuoteResponse, error) {
	s, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	resp, err := s.GetQuote(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return resp, nil
}
