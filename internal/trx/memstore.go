package trx

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore keeps everything in process memory. Dipakai untuk dev lokal
// (STORE_DRIVER=memory) dan test.
type MemStore struct {
	mu       sync.RWMutex
	products map[string]Product
	invoices map[string]Invoice
	now      func() time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		products: map[string]Product{},
		invoices: map[string]Invoice{},
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemStore) CreateProduct(_ context.Context, p Product) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	p.ID = NewID()
	p.CreatedAt = now
	p.TimeStamp = now
	s.products[p.ID] = p
	return p, nil
}

func (s *MemStore) ListProducts(_ context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return lessCreated(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out, nil
}

func (s *MemStore) GetProduct(_ context.Context, id string) (Product, error) {
	if !ValidID(id) {
		return Product{}, ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (s *MemStore) UpdateProduct(_ context.Context, id string, patch ProductPatch) (Product, error) {
	if !ValidID(id) {
		return Product{}, ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	patch.Apply(&p, s.now())
	s.products[id] = p
	return p, nil
}

func (s *MemStore) DeleteProduct(_ context.Context, id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrNotFound
	}
	delete(s.products, id)
	return nil
}

func (s *MemStore) Resolve(ctx context.Context, productID string) (Resolution, error) {
	return ProductResolver(s).Resolve(ctx, productID)
}

func (s *MemStore) CreateInvoice(_ context.Context, inv Invoice) (Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	inv.ID = NewID()
	inv.CreatedAt = now
	inv.TimeStamp = now
	inv.Products = append([]LineItem(nil), inv.Products...)
	s.invoices[inv.ID] = inv
	return inv, nil
}

func (s *MemStore) ListInvoices(_ context.Context) ([]Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedInvoices(func(Invoice) bool { return true }), nil
}

func (s *MemStore) GetInvoice(_ context.Context, id string) (Invoice, error) {
	if !ValidID(id) {
		return Invoice{}, ErrInvalidID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	inv, ok := s.invoices[id]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	return inv, nil
}

func (s *MemStore) UpdateInvoice(_ context.Context, id string, patch InvoicePatch) (Invoice, error) {
	if !ValidID(id) {
		return Invoice{}, ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if !ok {
		return Invoice{}, ErrNotFound
	}
	patch.Apply(&inv, s.now())
	s.invoices[id] = inv
	return inv, nil
}

func (s *MemStore) DeleteInvoice(_ context.Context, id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.invoices[id]; !ok {
		return ErrNotFound
	}
	delete(s.invoices, id)
	return nil
}

func (s *MemStore) InvoicesReferencing(_ context.Context, productID string) ([]Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedInvoices(func(inv Invoice) bool { return inv.References(productID) }), nil
}

func (s *MemStore) sortedInvoices(keep func(Invoice) bool) []Invoice {
	out := make([]Invoice, 0, len(s.invoices))
	for _, inv := range s.invoices {
		if keep(inv) {
			out = append(out, inv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return lessCreated(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID) })
	return out
}

// ObjectID diawali timestamp detik + counter, jadi id jadi tie-breaker yang stabil.
func lessCreated(a, b time.Time, idA, idB string) bool {
	if !a.Equal(b) {
		return a.Before(b)
	}
	return idA < idB
}
