package store

import (
	"sync"
	"time"

	"saloncart-backend/internal/domains/cart/model"
	"saloncart-backend/pkg/kv"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Store holds the authoritative list of items one customer intends to pay
// for in a single checkout pass. It guarantees, after every mutation:
//
//   - at most one service entry per appointment id
//   - at most one product entry per product id (adds merge by quantity)
//   - no service entry whose scheduled time has passed or cannot be parsed
//   - every product quantity within [1, stock]
//   - the persisted representation equal to the in-memory set (write-through)
//
// All operations are total: anomalies (duplicate add, out-of-stock add,
// clamped quantity, corrupt persisted payload) are absorbed with a log line
// and never surface as errors. Callers that need user feedback must diff
// derived state before and after the call.
type Store struct {
	mu    sync.Mutex
	kv    kv.Store
	key   string
	items []model.Item

	now func() time.Time
	log zerolog.Logger
}

// Option configures a Store
type Option func(*Store)

// WithClock overrides the expiry clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger overrides the diagnostic logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.log = logger }
}

// New creates a store bound to one persistence slot, hydrates it from the
// backend and runs the first reconciliation pass. A missing or malformed
// payload yields an empty cart; a malformed payload is also deleted so the
// next hydration starts clean.
func New(backend kv.Store, key string, opts ...Option) *Store {
	s := &Store{
		kv:  backend,
		key: key,
		now: time.Now,
		log: log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked()
	return s
}

func (s *Store) hydrateLocked() {
	payload, found, err := s.kv.Read(s.key)
	if err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("cart hydration read failed, starting empty")
		return
	}
	if !found {
		return
	}

	items, err := model.DecodeItems(payload)
	if err != nil {
		s.log.Warn().Err(err).Str("key", s.key).Msg("corrupt cart payload dropped")
		if delErr := s.kv.Delete(s.key); delErr != nil {
			s.log.Error().Err(delErr).Str("key", s.key).Msg("failed to drop corrupt cart payload")
		}
		return
	}

	s.items = items
	if s.reconcileLocked() {
		s.persistLocked()
	}
}

// reconcileLocked runs the dedup + expiry sweep:
// duplicate service entries (same appointment id) and services whose
// scheduled time is unparsable or not strictly in the future are dropped;
// products always survive. Returns whether the sweep removed anything.
func (s *Store) reconcileLocked() bool {
	now := s.now()
	seen := make(map[int64]bool, len(s.items))
	kept := s.items[:0]

	for _, item := range s.items {
		if item.Service == nil {
			kept = append(kept, item)
			continue
		}
		svc := item.Service
		if seen[svc.AppointmentID] {
			s.log.Warn().
				Int64("appointment_id", svc.AppointmentID).
				Msg("duplicate appointment removed from cart")
			continue
		}
		if svc.IsExpired(now) {
			s.log.Info().
				Int64("appointment_id", svc.AppointmentID).
				Str("scheduled_time", svc.ScheduledTime).
				Msg("expired appointment removed from cart")
			continue
		}
		seen[svc.AppointmentID] = true
		kept = append(kept, item)
	}

	changed := len(kept) != len(s.items)
	s.items = kept
	return changed
}

func (s *Store) persistLocked() {
	payload, err := model.EncodeItems(s.items)
	if err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("cart encode failed, skipping persist")
		return
	}
	if err := s.kv.Write(s.key, payload); err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("cart persist failed")
	}
}

// AddService appends a booked appointment to the cart.
// Adding an appointment id already present is a silent no-op that keeps the
// existing entry.
func (s *Store) AddService(in model.ServiceItemInput) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.items {
		if item.Service != nil && item.Service.AppointmentID == in.AppointmentID {
			s.log.Warn().
				Int64("appointment_id", in.AppointmentID).
				Msg("appointment already in cart, keeping existing entry")
			return
		}
	}

	s.items = append(s.items, in.ToItem())
	s.reconcileLocked()
	s.persistLocked()
}

// AddProduct appends a retail product, merging quantity into any existing
// entry for the same product id and clamping to the stock ceiling.
// An out-of-stock product (stock <= 0) is never added.
func (s *Store) AddProduct(in model.ProductItemInput) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.Stock != nil && *in.Stock <= 0 {
		s.log.Warn().
			Int64("product_id", in.ProductID).
			Int("stock", *in.Stock).
			Msg("out-of-stock product not added to cart")
		return
	}

	for _, item := range s.items {
		if item.Product == nil || item.Product.ProductID != in.ProductID {
			continue
		}
		// The incoming item carries fresher catalog data than the stored
		// entry, so a stock ceiling supplied now replaces the stored one.
		// A nil incoming stock means the caller had no stock data; the
		// known ceiling stays.
		if in.Stock != nil {
			stock := *in.Stock
			item.Product.Stock = &stock
		}
		requested := item.Product.Quantity + in.Quantity
		quantity, clamped := item.Product.ClampQuantity(requested)
		if clamped {
			s.log.Warn().
				Int64("product_id", in.ProductID).
				Int("requested", requested).
				Int("clamped", quantity).
				Msg("product quantity clamped to stock")
		}
		item.Product.Quantity = quantity
		s.reconcileLocked()
		s.persistLocked()
		return
	}

	entry := in.ToItem()
	quantity, clamped := entry.Product.ClampQuantity(in.Quantity)
	if clamped {
		s.log.Warn().
			Int64("product_id", in.ProductID).
			Int("requested", in.Quantity).
			Int("clamped", quantity).
			Msg("product quantity clamped to stock")
	}
	entry.Product.Quantity = quantity

	s.items = append(s.items, entry)
	s.reconcileLocked()
	s.persistLocked()
}

// RemoveItem removes every entry matching (kind, id).
// Sweeping all matches keeps the cart sane even if a duplicate ever slipped
// past the insertion rules. Removing an absent id is a no-op.
func (s *Store) RemoveItem(id int64, kind model.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeItemLocked(id, kind)
}

func (s *Store) removeItemLocked(id int64, kind model.Kind) {
	kept := s.items[:0]
	for _, item := range s.items {
		switch kind {
		case model.KindService:
			if item.Service != nil && item.Service.AppointmentID == id {
				continue
			}
		case model.KindProduct:
			if item.Product != nil && item.Product.ProductID == id {
				continue
			}
		}
		kept = append(kept, item)
	}

	if len(kept) == len(s.items) {
		s.items = kept
		return
	}
	s.items = kept
	s.reconcileLocked()
	s.persistLocked()
}

// UpdateProductQuantity sets the product's quantity, clamped to stock.
// A quantity of zero or less removes the product entirely. Updating an
// absent product is a no-op.
func (s *Store) UpdateProductQuantity(productID int64, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if quantity <= 0 {
		s.removeItemLocked(productID, model.KindProduct)
		return
	}

	for _, item := range s.items {
		if item.Product == nil || item.Product.ProductID != productID {
			continue
		}
		clampedQty, clamped := item.Product.ClampQuantity(quantity)
		if clamped {
			s.log.Warn().
				Int64("product_id", productID).
				Int("requested", quantity).
				Int("clamped", clampedQty).
				Msg("product quantity clamped to stock")
		}
		item.Product.Quantity = clampedQty
		s.reconcileLocked()
		s.persistLocked()
		return
	}
}

// RemoveDuplicateServices keeps the first entry per appointment id and drops
// the rest. The automatic sweep already enforces this; the operation exists
// for callers that want to force a cleanup on demand.
func (s *Store) RemoveDuplicateServices() {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[int64]bool, len(s.items))
	kept := s.items[:0]
	for _, item := range s.items {
		if item.Service != nil {
			if seen[item.Service.AppointmentID] {
				continue
			}
			seen[item.Service.AppointmentID] = true
		}
		kept = append(kept, item)
	}

	if len(kept) == len(s.items) {
		s.items = kept
		return
	}
	s.items = kept
	s.reconcileLocked()
	s.persistLocked()
}

// Clear empties the cart and erases the persisted slot.
// Called on checkout completion or an explicit clear request.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	if err := s.kv.Delete(s.key); err != nil {
		s.log.Error().Err(err).Str("key", s.key).Msg("cart clear failed to delete persisted slot")
	}
}

// Services returns the service entries in insertion order
func (s *Store) Services() []model.ServiceItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	services := make([]model.ServiceItem, 0, len(s.items))
	for _, item := range s.items {
		if item.Service != nil {
			services = append(services, *item.Service)
		}
	}
	return services
}

// Products returns the product entries in insertion order
func (s *Store) Products() []model.ProductItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := make([]model.ProductItem, 0, len(s.items))
	for _, item := range s.items {
		if item.Product != nil {
			products = append(products, item.Product.Clone())
		}
	}
	return products
}

// ServiceTotal sums service prices
func (s *Store) ServiceTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		if item.Service != nil {
			total = total.Add(item.Service.Price)
		}
	}
	return total
}

// ProductTotal sums price * quantity over products
func (s *Store) ProductTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		if item.Product != nil {
			total = total.Add(item.Product.Subtotal())
		}
	}
	return total
}

// TotalPrice sums both subtotals
func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Total())
	}
	return total
}

// Snapshot returns the cart with all derived aggregates in one pass
func (s *Store) Snapshot() model.CartResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := model.CartResponse{
		Services:     make([]model.ServiceItem, 0, len(s.items)),
		Products:     make([]model.ProductItem, 0, len(s.items)),
		ServiceTotal: decimal.Zero,
		ProductTotal: decimal.Zero,
	}
	for _, item := range s.items {
		switch {
		case item.Service != nil:
			resp.Services = append(resp.Services, *item.Service)
			resp.ServiceTotal = resp.ServiceTotal.Add(item.Service.Price)
		case item.Product != nil:
			resp.Products = append(resp.Products, item.Product.Clone())
			resp.ProductTotal = resp.ProductTotal.Add(item.Product.Subtotal())
		}
	}
	resp.ItemsCount = len(s.items)
	resp.Total = resp.ServiceTotal.Add(resp.ProductTotal)
	return resp
}
