package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

type PaymentStatus string

type PaymentMode string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	PaymentModeCashOnDelivery PaymentMode = "cash_on_delivery"
	PaymentModeUPI            PaymentMode = "upi"
	PaymentModeBankTransfer   PaymentMode = "bank_transfer"
	PaymentModeCredit         PaymentMode = "credit"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}

	return false
}

// Address is embedded into the order as a snapshot.
type Address struct {
	FullName     string `json:"full_name" validate:"required"`
	MobileNumber string `json:"mobile_number" validate:"required,numeric,min=10,max=15"`
	FlatHouseNo  string `json:"flat_house_no" validate:"required"`
	AreaStreet   string `json:"area_street" validate:"required"`
	City         string `json:"city" validate:"required"`
	State        string `json:"state" validate:"required"`
	Pincode      string `json:"pincode" validate:"required,numeric,len=6"`
	Landmark     string `json:"landmark,omitempty"`
}

type OrderItem struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Position  int             `json:"position"`
	Product   *OrderedProduct `json:"product,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	ShopID          uuid.UUID       `json:"shop_id"`
	AdminID         uuid.UUID       `json:"admin_id"`
	Items           []OrderItem     `json:"items"`
	DeliveryAddress *Address        `json:"delivery_address"`
	PaymentMode     PaymentMode     `json:"payment_mode"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	Status          OrderStatus     `json:"order_status"`
	ItemTotal       decimal.Decimal `json:"item_total"`
	DeliveryCharges decimal.Decimal `json:"delivery_charges"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Notes           string          `json:"notes,omitempty"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"`
}

// Emptiness of items, address and payment mode is checked by the order
// service so each failure keeps its own error code.
type CreateOrderRequest struct {
	Items           []OrderItemRequest `json:"items" validate:"dive"`
	DeliveryAddress *Address           `json:"delivery_address" validate:"omitempty"`
	PaymentMode     PaymentMode        `json:"payment_mode" validate:"omitempty,oneof=cash_on_delivery upi bank_transfer credit"`
	Notes           string             `json:"notes,omitempty" validate:"max=500"`
}

// Shop-facing status update; only cancellation is honoured.
type ShopOrderStatusRequest struct {
	OrderStatus OrderStatus `json:"orderStatus" validate:"required,oneof=pending confirmed preparing out_for_delivery delivered cancelled"`
}

type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" validate:"required,oneof=pending confirmed preparing out_for_delivery delivered cancelled"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" validate:"required,oneof=pending paid failed refunded"`
}

// AdminOrderFilter narrows the admin listing. A nil AdminID lists every
// fulfiller's orders.
type AdminOrderFilter struct {
	AdminID *uuid.UUID
	Status  *OrderStatus
}
