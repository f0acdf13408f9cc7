package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrItemNotFound         = errors.New("cart item not found")
	ErrQuantityLimit        = errors.New("cart line quantity limit exceeded")
	ErrOrderNotFound        = errors.New("order not found")
	ErrDuplicateOrderNumber = errors.New("order number already taken")
	ErrStatusConflict       = errors.New("order status changed concurrently")
)

const uniqueViolation = "23505"

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	return pqErr.Code == uniqueViolation && (constraint == "" || pqErr.Constraint == constraint)
}
