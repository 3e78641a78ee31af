package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

// ========================================
// REQUEST DTOs
// ========================================

// AddServiceRequest represents request to add a booked appointment to cart
type AddServiceRequest struct {
	AppointmentID int64           `json:"appointment_id" binding:"required"`
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

func (r AddServiceRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.AppointmentID,
			validation.Required.Error("appointment_id is required"),
			validation.Min(int64(1)).Error("appointment_id must be positive")),
		validation.Field(&r.ServiceName,
			validation.Required.Error("service_name is required")),
		validation.Field(&r.ScheduledTime,
			validation.Required.Error("scheduled_time is required")),
		validation.Field(&r.Price,
			validation.By(nonNegativePrice)),
	)
}

// ToInput converts the request into the store input type
func (r AddServiceRequest) ToInput() ServiceItemInput {
	return ServiceItemInput{
		AppointmentID: r.AppointmentID,
		SalonID:       r.SalonID,
		SalonName:     r.SalonName,
		ServiceID:     r.ServiceID,
		ServiceName:   r.ServiceName,
		StaffID:       r.StaffID,
		StaffName:     r.StaffName,
		ScheduledTime: r.ScheduledTime,
		Price:         r.Price,
		Notes:         r.Notes,
	}
}

// AddProductRequest represents request to add a retail product to cart
type AddProductRequest struct {
	ProductID   int64           `json:"product_id" binding:"required"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity" binding:"required"`
	ImageURL    string          `json:"image_url,omitempty"`
	SalonID     int64           `json:"salon_id,omitempty"`
	SalonName   string          `json:"salon_name,omitempty"`
	Stock       *int            `json:"stock,omitempty"`
}

func (r AddProductRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID,
			validation.Required.Error("product_id is required"),
			validation.Min(int64(1)).Error("product_id must be positive")),
		validation.Field(&r.Name,
			validation.Required.Error("name is required")),
		validation.Field(&r.Quantity,
			validation.Required.Error("quantity is required"),
			validation.Min(1).Error("quantity must be >= 1")),
		validation.Field(&r.Price,
			validation.By(nonNegativePrice)),
	)
}

// ToInput converts the request into the store input type
func (r AddProductRequest) ToInput() ProductItemInput {
	return ProductItemInput{
		ProductID:   r.ProductID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
		ImageURL:    r.ImageURL,
		SalonID:     r.SalonID,
		SalonName:   r.SalonName,
		Stock:       r.Stock,
	}
}

// UpdateQuantityRequest represents request to set a product's quantity.
// Zero or negative removes the product from the cart, so no lower bound is
// enforced here.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func nonNegativePrice(value interface{}) error {
	price, ok := value.(decimal.Decimal)
	if !ok || price.LessThan(decimal.Zero) {
		return validation.NewError("validation_price", "price must be >= 0")
	}
	return nil
}

// ========================================
// RESPONSE DTOs
// ========================================

// CartResponse represents the full cart with derived totals
type CartResponse struct {
	Services     []ServiceItem   `json:"services"`
	Products     []ProductItem   `json:"products"`
	ItemsCount   int             `json:"items_count"`
	ServiceTotal decimal.Decimal `json:"service_total"`
	ProductTotal decimal.Decimal `json:"product_total"`
	Total        decimal.Decimal `json:"total"`
}
