package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the catalog view consumed by carts and orders. Catalog CRUD lives
// outside this service; only the fields needed for pricing, ownership and
// display are read.
type Product struct {
	ID       uuid.UUID       `json:"id"`
	AdminID  uuid.UUID       `json:"admin_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	IsActive bool            `json:"is_active"`
	Category string          `json:"category,omitempty"`
	Unit     string          `json:"unit,omitempty"`
}

// ProductSummary is the product detail expanded into cart lines.
type ProductSummary struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	Unit     string          `json:"unit,omitempty"`
}

// OrderedProduct describes the product on an order line. It carries no
// price; the line's unit_price is the price the order was placed at.
type OrderedProduct struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Category string    `json:"category,omitempty"`
	Unit     string    `json:"unit,omitempty"`
}

func (p *Product) Summary() *ProductSummary {
	return &ProductSummary{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Category: p.Category,
		Unit:     p.Unit,
	}
}

func (p *Product) Ordered() *OrderedProduct {
	return &OrderedProduct{
		ID:       p.ID,
		Name:     p.Name,
		Category: p.Category,
		Unit:     p.Unit,
	}
}
