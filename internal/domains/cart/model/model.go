package model

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Kind discriminates the two cart entry variants
type Kind string

const (
	KindService Kind = "service"
	KindProduct Kind = "product"
)

// ServiceItem represents a pre-created appointment awaiting payment.
// The appointment already exists on the booking side when it enters the cart;
// the cart only tracks the customer's intent to pay for it.
type ServiceItem struct {
	Kind          Kind            `json:"kind"`
	AppointmentID int64           `json:"appointment_id"`
	SalonID       int64           `json:"salon_id"`
	SalonName     string          `json:"salon_name"`
	ServiceID     int64           `json:"service_id"`
	ServiceName   string          `json:"service_name"`
	StaffID       int64           `json:"staff_id"`
	StaffName     string          `json:"staff_name"`
	ScheduledTime string          `json:"scheduled_time"`
	Price         decimal.Decimal `json:"price"`
	Notes         string          `json:"notes,omitempty"`
}

// ScheduledAt parses the scheduled time.
// The booking side emits ISO-8601; accept RFC3339 and the zone-less variant.
func (s *ServiceItem) ScheduledAt() (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s.ScheduledTime); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04:05", s.ScheduledTime)
}

// IsExpired reports whether the appointment is no longer payable.
// Unparsable or empty scheduled times count as expired.
func (s *ServiceItem) IsExpired(now time.Time) bool {
	at, err := s.ScheduledAt()
	if err != nil {
		return true
	}
	return !at.After(now)
}

// ProductItem represents a retail item with quantity
type ProductItem struct {
	Kind        Kind            `json:"kind"`
	ProductID   int64           `json:"product_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"image_url,omitempty"`
	SalonID     int64           `json:"salon_id,omitempty"`
	SalonName   string          `json:"salon_name,omitempty"`
	Stock       *int            `json:"stock,omitempty"`
}

// ClampQuantity reduces q to the stock ceiling.
// Returns: (clamped quantity, whether clamping reduced the request)
// A nil Stock means the quantity is unbounded.
func (p *ProductItem) ClampQuantity(q int) (int, bool) {
	if p.Stock == nil || q <= *p.Stock {
		return q, false
	}
	return *p.Stock, true
}

// Subtotal calculates price * quantity
func (p *ProductItem) Subtotal() decimal.Decimal {
	return p.Price.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

// Clone returns a copy whose Stock pointer is detached from the receiver,
// so holders of the copy cannot reach the original's clamp ceiling
func (p *ProductItem) Clone() ProductItem {
	clone := *p
	if p.Stock != nil {
		stock := *p.Stock
		clone.Stock = &stock
	}
	return clone
}

// Item is the tagged union persisted in the cart set.
// Exactly one of Service/Product is non-nil.
type Item struct {
	Service *ServiceItem
	Product *ProductItem
}

// ItemKind returns the discriminator of the wrapped variant
func (i Item) ItemKind() Kind {
	if i.Service != nil {
		return KindService
	}
	return KindProduct
}

// Total returns what the item contributes to the cart total:
// price for a service, price times quantity for a product.
func (i Item) Total() decimal.Decimal {
	if i.Service != nil {
		return i.Service.Price
	}
	if i.Product != nil {
		return i.Product.Subtotal()
	}
	return decimal.Zero
}

// MarshalJSON flattens the union into one object carrying the kind tag
func (i Item) MarshalJSON() ([]byte, error) {
	if i.Service != nil {
		return json.Marshal(i.Service)
	}
	if i.Product != nil {
		return json.Marshal(i.Product)
	}
	return nil, ErrEmptyItem
}

// UnmarshalJSON dispatches on the kind discriminator
func (i *Item) UnmarshalJSON(data []byte) error {
	var probe struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Kind {
	case KindService:
		var s ServiceItem
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		i.Service = &s
		i.Product = nil
	case KindProduct:
		var p ProductItem
		if err := json.Unmarshal(data, &p); err != nil {
			return err
		}
		i.Product = &p
		i.Service = nil
	default:
		return ErrUnknownKind
	}
	return nil
}

// EncodeItems serializes the cart set to its persisted representation:
// a JSON array of flat item objects with kind discriminators.
func EncodeItems(items []Item) (string, error) {
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeItems parses a persisted cart payload.
// Any malformed entry fails the whole decode; the store treats a decode
// failure as "no cart" rather than salvaging partial data.
func DecodeItems(payload string) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ServiceItemInput carries the fields for AddService, minus the kind tag
type ServiceItemInput struct {
	AppointmentID int64
	SalonID       int64
	SalonName     string
	ServiceID     int64
	ServiceName   string
	StaffID       int64
	StaffName     string
	ScheduledTime string
	Price         decimal.Decimal
	Notes         string
}

// ToItem builds the tagged cart entry
func (in ServiceItemInput) ToItem() Item {
	return Item{Service: &ServiceItem{
		Kind:          KindService,
		AppointmentID: in.AppointmentID,
		SalonID:       in.SalonID,
		SalonName:     in.SalonName,
		ServiceID:     in.ServiceID,
		ServiceName:   in.ServiceName,
		StaffID:       in.StaffID,
		StaffName:     in.StaffName,
		ScheduledTime: in.ScheduledTime,
		Price:         in.Price,
		Notes:         in.Notes,
	}}
}

// ProductItemInput carries the fields for AddProduct, minus the kind tag
type ProductItemInput struct {
	ProductID   int64
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	ImageURL    string
	SalonID     int64
	SalonName   string
	Stock       *int
}

// ToItem builds the tagged cart entry. Quantity is NOT clamped here;
// the store owns the stock-ceiling rule. The Stock pointer is copied so
// the entry does not alias caller-owned memory.
func (in ProductItemInput) ToItem() Item {
	stock := in.Stock
	if stock != nil {
		v := *stock
		stock = &v
	}
	return Item{Product: &ProductItem{
		Kind:        KindProduct,
		ProductID:   in.ProductID,
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		ImageURL:    in.ImageURL,
		SalonID:     in.SalonID,
		SalonName:   in.SalonName,
		Stock:       stock,
	}}
}
