package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is a stored cart line joined with the live catalog entry. Price is
// the product's current price, never a snapshot.
type CartLine struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	AddedAt   time.Time       `json:"added_at"`
	Product   *ProductSummary `json:"product"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Cart struct {
	ID         uuid.UUID       `json:"id,omitempty"`
	UserID     uuid.UUID       `json:"user_id"`
	IsActive   bool            `json:"is_active"`
	Items      []CartLine      `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	UpdatedAt  time.Time       `json:"updated_at,omitempty"`
}

type CartCount struct {
	Count int `json:"count"`
}

type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity"   validate:"omitempty,min=1"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}
