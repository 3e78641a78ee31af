package store

import (
	"fmt"
	"testing"
	"time"

	"saloncart-backend/internal/domains/cart/model"
	"saloncart-backend/pkg/kv"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

const testKey = "cart:session:test"

func newTestStore(t *testing.T, backend kv.Store) *Store {
	t.Helper()
	return New(backend, testKey,
		WithClock(func() time.Time { return testNow }),
		WithLogger(zerolog.Nop()),
	)
}

func futureService(appointmentID int64, price int64) model.ServiceItemInput {
	return model.ServiceItemInput{
		AppointmentID: appointmentID,
		SalonID:       7,
		SalonName:     "Aria Salon",
		ServiceID:     3,
		ServiceName:   "Haircut",
		StaffID:       11,
		StaffName:     "Mai",
		ScheduledTime: testNow.Add(48 * time.Hour).Format(time.RFC3339),
		Price:         decimal.NewFromInt(price),
	}
}

func product(productID int64, price int64, quantity int, stock *int) model.ProductItemInput {
	return model.ProductItemInput{
		ProductID: productID,
		Name:      fmt.Sprintf("Product %d", productID),
		Price:     decimal.NewFromInt(price),
		Quantity:  quantity,
		Stock:     stock,
	}
}

func intPtr(v int) *int { return &v }

func TestAddService_DeduplicatesByAppointmentID(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	first := futureService(1, 50)
	first.Notes = "original"
	s.AddService(first)

	second := futureService(1, 99)
	second.Notes = "replacement attempt"
	s.AddService(second)

	services := s.Services()
	require.Len(t, services, 1)
	assert.Equal(t, "original", services[0].Notes)
	assert.True(t, services[0].Price.Equal(decimal.NewFromInt(50)))
}

func TestAddService_KeepsDistinctAppointments(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	s.AddService(futureService(1, 50))
	s.AddService(futureService(2, 30))

	services := s.Services()
	require.Len(t, services, 2)
	assert.Equal(t, int64(1), services[0].AppointmentID)
	assert.Equal(t, int64(2), services[1].AppointmentID)
}

func TestAddProduct_MergesQuantityForSameProduct(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	s.AddProduct(product(1, 20, 2, intPtr(10)))
	s.AddProduct(product(1, 20, 3, intPtr(10)))

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 5, products[0].Quantity)
}

func TestAddProduct_ClampsQuantityToStock(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	s.AddProduct(product(1, 20, 10, intPtr(3)))
	s.AddProduct(product(1, 20, 5, intPtr(3)))

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 3, products[0].Quantity)
}

func TestAddProduct_OutOfStockIsNoOp(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	s.AddProduct(product(1, 20, 1, intPtr(0)))

	assert.Empty(t, s.Products())
}

func TestAddProduct_NilStockIsUnbounded(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	s.AddProduct(product(1, 20, 500, nil))
	s.AddProduct(product(1, 20, 500, nil))

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 1000, products[0].Quantity)
}

func TestAddProduct_MergeAdoptsRefreshedStock(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	s.AddProduct(product(1, 20, 2, intPtr(10)))
	// The second add carries a lower ceiling fetched from the catalog
	// after the first; the merge must clamp against the fresh value.
	s.AddProduct(product(1, 20, 5, intPtr(3)))

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 3, products[0].Quantity)
	require.NotNil(t, products[0].Stock)
	assert.Equal(t, 3, *products[0].Stock)
}

func TestAddProduct_MergeKeepsKnownStockWhenInputHasNone(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	s.AddProduct(product(1, 20, 1, intPtr(3)))
	s.AddProduct(product(1, 20, 5, nil))

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 3, products[0].Quantity)
}

func TestProducts_ReturnedCopiesAreDetached(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	s.AddProduct(product(1, 20, 2, intPtr(3)))

	products := s.Products()
	require.NotNil(t, products[0].Stock)
	*products[0].Stock = 100

	snap := s.Snapshot()
	*snap.Products[0].Stock = 100

	// The ceiling inside the store is untouched by either mutation.
	s.AddProduct(product(1, 20, 10, nil))
	assert.Equal(t, 3, s.Products()[0].Quantity)
}

func TestRemoveItem_AbsentIDIsNoOp(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	s.AddService(futureService(1, 50))

	assert.NotPanics(t, func() {
		s.RemoveItem(999, model.KindService)
		s.RemoveItem(999, model.KindProduct)
	})
	assert.Len(t, s.Services(), 1)
}

func TestRemoveItem_RemovesOnlyMatchingKind(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	s.AddService(futureService(5, 50))
	s.AddProduct(product(5, 20, 1, nil))

	s.RemoveItem(5, model.KindProduct)

	assert.Len(t, s.Services(), 1)
	assert.Empty(t, s.Products())
}

func TestUpdateProductQuantity_ZeroRemovesItem(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	s.AddProduct(product(1, 20, 3, intPtr(10)))

	s.UpdateProductQuantity(1, 0)

	assert.Empty(t, s.Products())
}

func TestUpdateProductQuantity_ClampsToStock(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	s.AddProduct(product(1, 20, 1, intPtr(4)))

	s.UpdateProductQuantity(1, 9)

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 4, products[0].Quantity)
}

func TestUpdateProductQuantity_AbsentProductIsNoOp(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	s.AddProduct(product(1, 20, 2, nil))

	s.UpdateProductQuantity(42, 5)

	products := s.Products()
	require.Len(t, products, 1)
	assert.Equal(t, 2, products[0].Quantity)
}

func TestTotals(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	s.AddService(futureService(1, 50))
	s.AddProduct(product(1, 20, 3, nil))

	assert.True(t, s.ServiceTotal().Equal(decimal.NewFromInt(50)),
		"service total = %s", s.ServiceTotal())
	assert.True(t, s.ProductTotal().Equal(decimal.NewFromInt(60)),
		"product total = %s", s.ProductTotal())
	assert.True(t, s.TotalPrice().Equal(decimal.NewFromInt(110)),
		"total = %s", s.TotalPrice())
}

func TestTotals_EmptyCartIsZero(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	assert.True(t, s.TotalPrice().Equal(decimal.Zero))
}

func TestHydration_SweepsExpiredAppointments(t *testing.T) {
	backend := kv.NewMemory()

	// Persisted payload holds one past and one future appointment,
	// written as the raw JSON a previous session left behind.
	payload := fmt.Sprintf(`[
		{"kind":"service","appointment_id":1,"service_name":"Haircut","scheduled_time":"2000-01-01T00:00:00Z","price":"50"},
		{"kind":"service","appointment_id":2,"service_name":"Manicure","scheduled_time":%q,"price":"30"}
	]`, testNow.Add(24*time.Hour).Format(time.RFC3339))
	require.NoError(t, backend.Write(testKey, payload))

	s := newTestStore(t, backend)

	services := s.Services()
	require.Len(t, services, 1)
	assert.Equal(t, int64(2), services[0].AppointmentID)

	// The sweep shrank the set, so the reduced list was written back.
	persisted, found, err := backend.Read(testKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, persisted, `"appointment_id":1`)
}

func TestHydration_SweepsUnparsableScheduledTime(t *testing.T) {
	backend := kv.NewMemory()
	payload := `[{"kind":"service","appointment_id":1,"service_name":"Haircut","scheduled_time":"not-a-date","price":"50"}]`
	require.NoError(t, backend.Write(testKey, payload))

	s := newTestStore(t, backend)

	assert.Empty(t, s.Services())
}

func TestHydration_SweepsDuplicateAppointments(t *testing.T) {
	backend := kv.NewMemory()
	future := testNow.Add(24 * time.Hour).Format(time.RFC3339)
	payload := fmt.Sprintf(`[
		{"kind":"service","appointment_id":1,"service_name":"Haircut","scheduled_time":%q,"price":"50","notes":"first"},
		{"kind":"service","appointment_id":1,"service_name":"Haircut","scheduled_time":%q,"price":"50","notes":"second"}
	]`, future, future)
	require.NoError(t, backend.Write(testKey, payload))

	s := newTestStore(t, backend)

	services := s.Services()
	require.Len(t, services, 1)
	assert.Equal(t, "first", services[0].Notes)
}

func TestMutation_SweepsNewlyExpiredAppointments(t *testing.T) {
	backend := kv.NewMemory()
	clock := testNow
	s := New(backend, testKey,
		WithClock(func() time.Time { return clock }),
		WithLogger(zerolog.Nop()),
	)

	svc := futureService(1, 50)
	svc.ScheduledTime = testNow.Add(time.Hour).Format(time.RFC3339)
	s.AddService(svc)
	require.Len(t, s.Services(), 1)

	// The appointment passes; the next mutation prunes it.
	clock = testNow.Add(2 * time.Hour)
	s.AddProduct(product(1, 20, 1, nil))

	assert.Empty(t, s.Services())
	assert.Len(t, s.Products(), 1)
}

func TestHydration_CorruptPayloadYieldsEmptyCart(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "definitely not json{"},
		{"wrong shape", `{"kind":"service"}`},
		{"unknown kind", `[{"kind":"voucher","id":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := kv.NewMemory()
			require.NoError(t, backend.Write(testKey, tt.payload))

			s := newTestStore(t, backend)

			assert.Empty(t, s.Services())
			assert.Empty(t, s.Products())

			// Corrupt payload is dropped so the next hydration starts clean.
			_, found, err := backend.Read(testKey)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	backend := kv.NewMemory()
	s := newTestStore(t, backend)

	s.AddService(futureService(1, 50))
	s.AddService(futureService(2, 30))
	s.AddProduct(product(9, 20, 3, intPtr(5)))
	s.UpdateProductQuantity(9, 2)
	s.RemoveItem(2, model.KindService)

	// A fresh store over the same slot sees the identical set.
	rehydrated := newTestStore(t, backend)
	assert.Equal(t, s.Services(), rehydrated.Services())
	assert.Equal(t, s.Products(), rehydrated.Products())
	assert.True(t, s.TotalPrice().Equal(rehydrated.TotalPrice()))
}

func TestClear_IsTotal(t *testing.T) {
	backend := kv.NewMemory()
	s := newTestStore(t, backend)
	s.AddService(futureService(1, 50))
	s.AddProduct(product(1, 20, 3, nil))

	s.Clear()

	assert.Empty(t, s.Services())
	assert.Empty(t, s.Products())
	assert.True(t, s.TotalPrice().Equal(decimal.Zero))

	_, found, err := backend.Read(testKey)
	require.NoError(t, err)
	assert.False(t, found, "persisted slot must be erased")

	rehydrated := newTestStore(t, backend)
	assert.Empty(t, rehydrated.Services())
	assert.Empty(t, rehydrated.Products())
}

func TestRemoveDuplicateServices_AlsoSweepsNewlyExpired(t *testing.T) {
	backend := kv.NewMemory()
	clock := testNow
	s := New(backend, testKey,
		WithClock(func() time.Time { return clock }),
		WithLogger(zerolog.Nop()),
	)

	// Duplicates never survive the normal operations, so build the
	// invariant-violating state the operation defends against directly.
	expiring := futureService(1, 50)
	expiring.ScheduledTime = testNow.Add(time.Hour).Format(time.RFC3339)
	s.items = []model.Item{
		expiring.ToItem(),
		expiring.ToItem(),
		futureService(2, 30).ToItem(),
	}

	// Appointment 1 passes before the cleanup runs; the dedupe is a
	// state change, so the expiry sweep must run with it.
	clock = testNow.Add(2 * time.Hour)
	s.RemoveDuplicateServices()

	services := s.Services()
	require.Len(t, services, 1)
	assert.Equal(t, int64(2), services[0].AppointmentID)

	persisted, found, err := backend.Read(testKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.NotContains(t, persisted, `"appointment_id":1`)
}

func TestRemoveDuplicateServices_NoDuplicatesIsNoOp(t *testing.T) {
	backend := kv.NewMemory()
	s := newTestStore(t, backend)
	s.AddService(futureService(1, 50))
	s.AddService(futureService(2, 30))

	s.RemoveDuplicateServices()

	assert.Len(t, s.Services(), 2)
}

func TestSnapshot(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	s.AddService(futureService(1, 50))
	s.AddProduct(product(1, 20, 3, nil))

	snap := s.Snapshot()

	assert.Len(t, snap.Services, 1)
	assert.Len(t, snap.Products, 1)
	assert.Equal(t, 2, snap.ItemsCount)
	assert.True(t, snap.ServiceTotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, snap.ProductTotal.Equal(decimal.NewFromInt(60)))
	assert.True(t, snap.Total.Equal(decimal.NewFromInt(110)))
}

func TestManager_ReturnsSameStorePerSession(t *testing.T) {
	m := NewManager(kv.NewMemory(), WithLogger(zerolog.Nop()))

	a := m.ForSession("abc")
	b := m.ForSession("abc")

	assert.Same(t, a, b)
}

func TestManager_IsolatesSessions(t *testing.T) {
	m := NewManager(kv.NewMemory(),
		WithClock(func() time.Time { return testNow }),
		WithLogger(zerolog.Nop()),
	)

	m.ForSession("abc").AddProduct(product(1, 20, 1, nil))

	assert.Empty(t, m.ForSession("other").Products())
	assert.Len(t, m.ForSession("abc").Products(), 1)
}
