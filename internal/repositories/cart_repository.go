package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	"github.com/google/uuid"
)

// CartRepository stores one cart per shop user. Every line mutation is a single
// statement keyed by (cart_id, product_id), so concurrent requests for the same
// line never lose an update.
type CartRepository interface {
	EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity, maxQuantity int) (int, error)
	SetItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
	CountItems(ctx context.Context, userID uuid.UUID) (int, error)
}

type cartRepository struct {
	DB *sql.DB
}

func NewCartRepo(db *sql.DB) CartRepository {
	return &cartRepository{DB: db}
}

// EnsureCart returns the user's cart id, creating the cart on first use.
func (r *cartRepository) EnsureCart(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO carts (user_id, is_active, created_at, updated_at)
		VALUES ($1, TRUE, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET is_active = TRUE, updated_at = NOW()
		RETURNING id
	`

	var cartID uuid.UUID
	if err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&cartID); err != nil {
		return uuid.Nil, fmt.Errorf("failed to ensure cart: %w", err)
	}

	return cartID, nil
}

// GetCartByUserID loads the cart with its lines joined to the live catalog.
func (r *cartRepository) GetCartByUserID(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, is_active, updated_at
		FROM carts
		WHERE user_id = $1
	`

	cart := &models.Cart{}

	err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&cart.ID, &cart.UserID, &cart.IsActive, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartNotFound
		}

		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	itemsQuery := `
		SELECT ci.product_id, ci.quantity, ci.added_at,
		       p.name, p.price, COALESCE(c.name, ''), COALESCE(u.name, '')
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		LEFT JOIN categories c ON p.category_id = c.id
		LEFT JOIN units u ON p.unit_id = u.id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at, ci.product_id
	`

	rows, err := r.DB.QueryContext(dbCtx, itemsQuery, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart items: %w", err)
	}
	defer rows.Close()

	cart.Items = []models.CartLine{}

	for rows.Next() {
		line := models.CartLine{Product: &models.ProductSummary{}}

		if err := rows.Scan(&line.ProductID, &line.Quantity, &line.AddedAt,
			&line.Product.Name, &line.Product.Price, &line.Product.Category, &line.Product.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}

		line.Product.ID = line.ProductID
		cart.Items = append(cart.Items, line)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cart items: %w", err)
	}

	return cart, nil
}

// AddItem increments an existing line or inserts a new one and returns the
// resulting quantity. A line that would exceed maxQuantity is left untouched
// and ErrQuantityLimit is returned.
func (r *cartRepository) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity, maxQuantity int) (int, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	if quantity > maxQuantity {
		return 0, ErrQuantityLimit
	}

	query := `
		INSERT INTO cart_items (cart_id, product_id, quantity, added_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		ON CONFLICT (cart_id, product_id) DO UPDATE
		SET quantity = cart_items.quantity + EXCLUDED.quantity, updated_at = NOW()
		WHERE cart_items.quantity + EXCLUDED.quantity <= $4
		RETURNING quantity
	`

	var newQuantity int

	err := r.DB.QueryRowContext(dbCtx, query, cartID, productID, quantity, maxQuantity).Scan(&newQuantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrQuantityLimit
		}

		return 0, fmt.Errorf("failed to add cart item: %w", err)
	}

	return newQuantity, nil
}

func (r *cartRepository) SetItemQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		UPDATE cart_items ci
		SET quantity = $3, updated_at = NOW()
		FROM carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1 AND ci.product_id = $2
	`

	result, err := r.DB.ExecContext(dbCtx, query, userID, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	return requireAffected(result, ErrItemNotFound)
}

func (r *cartRepository) RemoveItem(ctx context.Context, userID, productID uuid.UUID) error {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1 AND ci.product_id = $2
	`

	result, err := r.DB.ExecContext(dbCtx, query, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	return requireAffected(result, ErrItemNotFound)
}

// ClearCart empties the cart but keeps the cart row active.
func (r *cartRepository) ClearCart(ctx context.Context, userID uuid.UUID) error {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		DELETE FROM cart_items ci
		USING carts c
		WHERE ci.cart_id = c.id AND c.user_id = $1
	`

	if _, err := r.DB.ExecContext(dbCtx, query, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	return nil
}

func (r *cartRepository) CountItems(ctx context.Context, userID uuid.UUID) (int, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		SELECT COALESCE(SUM(ci.quantity), 0)
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = $1
	`

	var count int
	if err := r.DB.QueryRowContext(dbCtx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}

	return count, nil
}

func requireAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return notFound
	}

	return nil
}
