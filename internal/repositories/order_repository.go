package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type OrderRepository interface {
	NextOrderSequence(ctx context.Context) (int64, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByShop(ctx context.Context, shopID uuid.UUID, page, size int) ([]models.Order, int, error)
	ListOrders(ctx context.Context, filter models.AdminOrderFilter, page, size int) ([]models.Order, int, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (time.Time, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (time.Time, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

const orderColumns = `
	o.id, o.order_number, o.shop_id, o.admin_id, o.delivery_address, o.payment_mode, o.payment_status,
	o.status, o.item_total, o.delivery_charges, o.total_amount, o.notes, o.is_active, o.created_at, o.updated_at`

const orderItemColumns = `
	oi.id, oi.order_id, oi.product_id, oi.position, oi.quantity, oi.unit_price, oi.line_total, oi.created_at,
	p.name, COALESCE(c.name, ''), COALESCE(u.name, '')`

const orderItemJoins = `
	FROM order_items oi
	JOIN products p ON p.id = oi.product_id
	LEFT JOIN categories c ON p.category_id = c.id
	LEFT JOIN units u ON p.unit_id = u.id`

func (r *orderRepository) NextOrderSequence(ctx context.Context) (int64, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var seq int64
	if err := r.DB.QueryRowContext(dbCtx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to allocate order number: %w", err)
	}

	return seq, nil
}

// CreateOrder writes the order and its lines in one transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order) (err error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	address, err := json.Marshal(order.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal delivery address: %w", err)
	}

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO orders (id, order_number, shop_id, admin_id, delivery_address, payment_mode, payment_status,
		                    status, item_total, delivery_charges, total_amount, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, query, order.ID, order.OrderNumber, order.ShopID, order.AdminID, address,
		order.PaymentMode, order.PaymentStatus, order.Status, order.ItemTotal, order.DeliveryCharges,
		order.TotalAmount, order.Notes, order.IsActive).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "orders_order_number_key") {
			return ErrDuplicateOrderNumber
		}

		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, position, quantity, unit_price, line_total, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		item.Position = i
		item.CreatedAt = order.CreatedAt

		if _, err = tx.ExecContext(dbCtx, itemQuery, item.ID, order.ID, item.ProductID, item.Position, item.Quantity,
			item.UnitPrice, item.LineTotal, item.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert an order item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	return nil
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders o WHERE o.id = $1`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	orders := []models.Order{*order}
	if err := r.loadItems(dbCtx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

func (r *orderRepository) ListOrdersByShop(ctx context.Context, shopID uuid.UUID, page, size int) ([]models.Order, int, error) {
	return r.list(ctx, "o.shop_id = $1", []any{shopID}, page, size)
}

func (r *orderRepository) ListOrders(ctx context.Context, filter models.AdminOrderFilter, page, size int) ([]models.Order, int, error) {
	var conditions []string

	var args []any

	if filter.AdminID != nil {
		args = append(args, *filter.AdminID)
		conditions = append(conditions, fmt.Sprintf("o.admin_id = $%d", len(args)))
	}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", len(args)))
	}

	where := "TRUE"
	if len(conditions) > 0 {
		where = strings.Join(conditions, " AND ")
	}

	return r.list(ctx, where, args, page, size)
}

func (r *orderRepository) list(ctx context.Context, where string, args []any, page, size int) ([]models.Order, int, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	var total int

	countQuery := `SELECT COUNT(*) FROM orders o WHERE ` + where
	if err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM orders o WHERE %s ORDER BY o.created_at DESC, o.order_number DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)+1, len(args)+2)

	rows, err := r.DB.QueryContext(dbCtx, query, append(args, size, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan the orders: %w", err)
		}

		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate orders: %w", err)
	}

	if err := r.loadItems(dbCtx, orders); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// loadItems fetches the lines of every order in one query.
func (r *orderRepository) loadItems(ctx context.Context, orders []models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	index := make(map[uuid.UUID]int, len(orders))

	for i := range orders {
		ids[i] = orders[i].ID.String()
		index[orders[i].ID] = i
		orders[i].Items = []models.OrderItem{}
	}

	query := `SELECT ` + orderItemColumns + orderItemJoins + `
		WHERE oi.order_id = ANY($1::uuid[])
		ORDER BY oi.order_id, oi.position`

	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to get the order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := models.OrderItem{Product: &models.OrderedProduct{}}

		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Position, &item.Quantity, &item.UnitPrice,
			&item.LineTotal, &item.CreatedAt, &item.Product.Name, &item.Product.Category, &item.Product.Unit); err != nil {
			return fmt.Errorf("failed to scan order item: %w", err)
		}

		item.Product.ID = item.ProductID

		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate order items: %w", err)
	}

	return nil
}

// UpdateOrderStatus moves the order from one status to another only if it is
// still in the observed status. A lost race yields ErrStatusConflict.
func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (time.Time, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
		RETURNING updated_at
	`

	var updatedAt time.Time

	err := r.DB.QueryRowContext(dbCtx, query, id, from, to).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrStatusConflict
		}

		return time.Time{}, fmt.Errorf("failed to update order status: %w", err)
	}

	return updatedAt, nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status models.PaymentStatus) (time.Time, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders SET payment_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	var updatedAt time.Time

	err := r.DB.QueryRowContext(dbCtx, query, id, status).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrOrderNotFound
		}

		return time.Time{}, fmt.Errorf("failed to update payment status: %w", err)
	}

	return updatedAt, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	order := &models.Order{}

	var address []byte

	err := row.Scan(&order.ID, &order.OrderNumber, &order.ShopID, &order.AdminID, &address, &order.PaymentMode,
		&order.PaymentStatus, &order.Status, &order.ItemTotal, &order.DeliveryCharges, &order.TotalAmount,
		&order.Notes, &order.IsActive, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(address) > 0 {
		order.DeliveryAddress = &models.Address{}
		if err := json.Unmarshal(address, order.DeliveryAddress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal delivery address: %w", err)
		}
	}

	return order, nil
}
