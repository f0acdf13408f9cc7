package service

import (
	"fmt"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/errors"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	"github.com/shopspring/decimal"
)

// Money is kept to two decimal places.
const moneyScale = 2

type OrderTotals struct {
	ItemTotal       decimal.Decimal
	DeliveryCharges decimal.Decimal
	TotalAmount     decimal.Decimal
}

// PricingEngine turns priced lines into line totals and order totals.
// Carts are priced from the live catalog, orders from the unit prices
// captured when the order was placed.
type PricingEngine struct {
	deliveryCharges decimal.Decimal
}

func NewPricingEngine(deliveryCharges decimal.Decimal) *PricingEngine {
	if deliveryCharges.IsNegative() {
		deliveryCharges = decimal.Zero
	}

	return &PricingEngine{deliveryCharges: deliveryCharges.Round(moneyScale)}
}

func LineTotal(price decimal.Decimal, quantity int) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, errors.InvalidOrderLineError(fmt.Sprintf("Price cannot be negative: %s", price))
	}

	if quantity <= 0 {
		return decimal.Zero, errors.InvalidOrderLineError(fmt.Sprintf("Quantity must be positive: %d", quantity))
	}

	return price.Mul(decimal.NewFromInt(int64(quantity))).Round(moneyScale), nil
}

// PriceOrder fills in every line total and returns the order totals.
func (p *PricingEngine) PriceOrder(items []models.OrderItem) (OrderTotals, error) {
	itemTotal := decimal.Zero

	for i := range items {
		lineTotal, err := LineTotal(items[i].UnitPrice, items[i].Quantity)
		if err != nil {
			return OrderTotals{}, err
		}

		items[i].UnitPrice = items[i].UnitPrice.Round(moneyScale)
		items[i].LineTotal = lineTotal
		itemTotal = itemTotal.Add(lineTotal)
	}

	return OrderTotals{
		ItemTotal:       itemTotal,
		DeliveryCharges: p.deliveryCharges,
		TotalAmount:     itemTotal.Add(p.deliveryCharges),
	}, nil
}

// PriceCart fills in the line totals from the product's current price and sets
// the cart's item count and total price.
func (p *PricingEngine) PriceCart(cart *models.Cart) {
	totalItems := 0
	totalPrice := decimal.Zero

	for i := range cart.Items {
		line := &cart.Items[i]
		totalItems += line.Quantity

		if line.Product == nil {
			line.LineTotal = decimal.Zero
			continue
		}

		// stored lines always have quantity > 0, and catalog prices are non-negative
		lineTotal, err := LineTotal(line.Product.Price, line.Quantity)
		if err != nil {
			lineTotal = decimal.Zero
		}

		line.LineTotal = lineTotal
		totalPrice = totalPrice.Add(lineTotal)
	}

	cart.TotalItems = totalItems
	cart.TotalPrice = totalPrice
}
