package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceItem_IsExpired(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		scheduled string
		expired   bool
	}{
		{"future", "2026-03-16T12:00:00Z", false},
		{"future zone-less", "2026-03-16T12:00:00", false},
		{"past", "2000-01-01T00:00:00Z", true},
		{"exactly now", "2026-03-15T12:00:00Z", true},
		{"empty", "", true},
		{"garbage", "next tuesday", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ServiceItem{ScheduledTime: tt.scheduled}
			assert.Equal(t, tt.expired, s.IsExpired(now))
		})
	}
}

func TestProductItem_ClampQuantity(t *testing.T) {
	stock := 3
	p := ProductItem{Stock: &stock}

	q, clamped := p.ClampQuantity(10)
	assert.Equal(t, 3, q)
	assert.True(t, clamped)

	q, clamped = p.ClampQuantity(2)
	assert.Equal(t, 2, q)
	assert.False(t, clamped)

	unbounded := ProductItem{}
	q, clamped = unbounded.ClampQuantity(10000)
	assert.Equal(t, 10000, q)
	assert.False(t, clamped)
}

func TestDecodeItems_Dispatch(t *testing.T) {
	payload := `[
		{"kind":"service","appointment_id":1,"service_name":"Haircut","scheduled_time":"2026-03-16T12:00:00Z","price":"50"},
		{"kind":"product","product_id":2,"name":"Shampoo","price":"20","quantity":3}
	]`

	items, err := DecodeItems(payload)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.NotNil(t, items[0].Service)
	assert.Equal(t, KindService, items[0].ItemKind())
	assert.Equal(t, int64(1), items[0].Service.AppointmentID)

	require.NotNil(t, items[1].Product)
	assert.Equal(t, KindProduct, items[1].ItemKind())
	assert.True(t, items[1].Total().Equal(decimal.NewFromInt(60)))
}

func TestDecodeItems_UnknownKind(t *testing.T) {
	_, err := DecodeItems(`[{"kind":"voucher","id":1}]`)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestEncodeItems_NilIsEmptyArray(t *testing.T) {
	payload, err := EncodeItems(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", payload)
}
