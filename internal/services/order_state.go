package service

import "github.com/aaravmahajanofficial/grocery-order-platform/internal/models"

// orderTransitions lists the forward steps of the fulfilment flow. Delivered
// and cancelled have no outgoing steps.
var orderTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderStatusPending:        {models.OrderStatusConfirmed, models.OrderStatusCancelled},
	models.OrderStatusConfirmed:      {models.OrderStatusPreparing, models.OrderStatusCancelled},
	models.OrderStatusPreparing:      {models.OrderStatusOutForDelivery, models.OrderStatusCancelled},
	models.OrderStatusOutForDelivery: {models.OrderStatusDelivered, models.OrderStatusCancelled},
	models.OrderStatusDelivered:      {},
	models.OrderStatusCancelled:      {},
}

func ValidOrderStatus(status models.OrderStatus) bool {
	_, ok := orderTransitions[status]
	return ok
}

func IsTerminal(status models.OrderStatus) bool {
	next, ok := orderTransitions[status]
	return ok && len(next) == 0
}

// CanTransition reports whether to is the next step of the flow after from.
func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}

	return false
}

// CanCancel reports whether a shop may still cancel an order in this status.
func CanCancel(status models.OrderStatus) bool {
	return CanTransition(status, models.OrderStatusCancelled)
}

// CanAdminSet reports whether the fulfilling admin may move an order from one
// status to another. Admins may set any status, including jumps and
// reversals, as long as the order is not yet terminal.
func CanAdminSet(from, to models.OrderStatus) bool {
	return ValidOrderStatus(to) && ValidOrderStatus(from) && !IsTerminal(from)
}
