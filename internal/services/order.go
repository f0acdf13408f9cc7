package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/access"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/cache"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/config"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/errors"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/metrics"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-order-platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"
)

const defaultMaxLineQuantity = 100

var tracer = otel.Tracer("github.com/aaravmahajanofficial/grocery-order-platform/internal/services")

type OrderService interface {
	CreateOrder(ctx context.Context, principal *access.Principal, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, principal *access.Principal, id uuid.UUID) (*models.Order, error)
	ListShopOrders(ctx context.Context, principal *access.Principal, page, size int) ([]models.Order, int, error)
	ListAdminOrders(ctx context.Context, principal *access.Principal, status *models.OrderStatus, page, size int) ([]models.Order, int, error)
	CancelOrder(ctx context.Context, principal *access.Principal, id uuid.UUID) (*models.Order, error)
	UpdateStatusAsShop(ctx context.Context, principal *access.Principal, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	UpdateStatusAsAdmin(ctx context.Context, principal *access.Principal, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, principal *access.Principal, id uuid.UUID, status models.PaymentStatus) (*models.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	limiter     repository.RateLimitRepository
	cache       cache.Cache
	cacheTTL    time.Duration
	loads       singleflight.Group
	pricing     *PricingEngine
	sanitizer   *bluemonday.Policy
	cfg         config.Orders
}

// NewOrderService wires the order lifecycle. limiter and orderCache may be nil,
// which disables checkout rate limiting and read caching respectively.
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, limiter repository.RateLimitRepository,
	orderCache cache.Cache, cacheTTL time.Duration, pricing *PricingEngine, cfg config.Orders) OrderService {

	if cfg.NumberMaxRetries < 1 {
		cfg.NumberMaxRetries = 1
	}

	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "ORD"
	}

	if cfg.MaxLineQuantity < 1 {
		cfg.MaxLineQuantity = defaultMaxLineQuantity
	}

	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		limiter:     limiter,
		cache:       orderCache,
		cacheTTL:    cacheTTL,
		pricing:     pricing,
		sanitizer:   bluemonday.StrictPolicy(),
		cfg:         cfg,
	}
}

// CreateOrder builds an order from an explicit item list. The cart is left
// untouched; clearing it is the caller's decision.
func (s *orderService) CreateOrder(ctx context.Context, principal *access.Principal, req *models.CreateOrderRequest) (order *models.Order, err error) {

	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	logger := middleware.LoggerFromContext(ctx)

	if len(req.Items) == 0 {
		return nil, errors.EmptyOrderError()
	}

	if req.DeliveryAddress == nil {
		return nil, errors.MissingAddressError()
	}

	if req.PaymentMode == "" {
		return nil, errors.MissingPaymentModeError()
	}

	if err := s.checkRateLimit(ctx, principal.ID); err != nil {
		return nil, err
	}

	order = &models.Order{
		ID:              uuid.New(),
		ShopID:          principal.ID,
		DeliveryAddress: s.sanitizeAddress(req.DeliveryAddress),
		PaymentMode:     req.PaymentMode,
		PaymentStatus:   models.PaymentStatusPending,
		Status:          models.OrderStatusPending,
		Notes:           s.sanitize(req.Notes),
		IsActive:        true,
		Items:           make([]models.OrderItem, 0, len(req.Items)),
	}

	// resolve in request order so the first missing product is the one reported
	for i, item := range req.Items {
		if item.Quantity > s.cfg.MaxLineQuantity {
			return nil, errors.InvalidOrderLineError(fmt.Sprintf("Quantity per product cannot exceed %d", s.cfg.MaxLineQuantity))
		}

		product, err := lookupActiveProduct(ctx, s.productRepo, item.ProductID)
		if err != nil {
			return nil, err
		}

		if i == 0 {
			order.AdminID = product.AdminID
		} else if product.AdminID != order.AdminID {
			return nil, errors.MultiVendorOrderError(fmt.Sprintf("Product %s belongs to a different seller; place a separate order for it", product.ID))
		}

		order.Items = append(order.Items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			Position:  i,
			Product:   product.Ordered(),
		})
	}

	totals, err := s.pricing.PriceOrder(order.Items)
	if err != nil {
		return nil, err
	}

	order.ItemTotal = totals.ItemTotal
	order.DeliveryCharges = totals.DeliveryCharges
	order.TotalAmount = totals.TotalAmount

	if err := s.persistWithNumber(ctx, order); err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID.String()),
		attribute.String("order.number", order.OrderNumber),
		attribute.Int("order.items", len(order.Items)),
	)

	metrics.OrderCreated(string(order.PaymentMode))
	logger.Info("Order created",
		slog.String("orderId", order.ID.String()),
		slog.String("orderNumber", order.OrderNumber),
		slog.String("adminId", order.AdminID.String()),
		slog.String("totalAmount", order.TotalAmount.StringFixed(moneyScale)),
	)

	return order, nil
}

// persistWithNumber assigns the next order number and inserts the order,
// drawing a fresh number when another order already holds it.
func (s *orderService) persistWithNumber(ctx context.Context, order *models.Order) error {

	logger := middleware.LoggerFromContext(ctx)

	for attempt := 1; attempt <= s.cfg.NumberMaxRetries; attempt++ {

		seq, err := s.orderRepo.NextOrderSequence(ctx)
		if err != nil {
			return errors.DatabaseError("Failed to allocate order number").WithError(err)
		}

		order.OrderNumber = FormatOrderNumber(s.cfg.NumberPrefix, seq)

		err = s.orderRepo.CreateOrder(ctx, order)
		if err == nil {
			return nil
		}

		if !stdErrors.Is(err, repository.ErrDuplicateOrderNumber) {
			return errors.DatabaseError("Failed to create order").WithError(err)
		}

		metrics.OrderNumberRetry()
		logger.Warn("Order number collision, retrying", slog.String("orderNumber", order.OrderNumber), slog.Int("attempt", attempt))
	}

	return errors.ConflictError("Could not allocate a unique order number, please retry")
}

func FormatOrderNumber(prefix string, seq int64) string {
	return fmt.Sprintf("%s%06d", prefix, seq)
}

func (s *orderService) checkRateLimit(ctx context.Context, shopID uuid.UUID) error {
	if s.limiter == nil {
		return nil
	}

	allowed, _, retryAfter, err := s.limiter.CheckCheckoutRateLimit(ctx, shopID)
	if err != nil {
		// Redis being down must not block ordering
		middleware.LoggerFromContext(ctx).Warn("Checkout rate limit unavailable", slog.String("error", err.Error()))
		return nil
	}

	if !allowed {
		return errors.TooManyRequestsError(fmt.Sprintf("Too many checkout attempts, retry in %d seconds", retryAfter))
	}

	return nil
}

func (s *orderService) GetOrder(ctx context.Context, principal *access.Principal, id uuid.UUID) (*models.Order, error) {

	order, err := s.cachedOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !access.CanReadOrder(principal, order.ShopID, order.AdminID) {
		return nil, errors.NotFoundError("Order not found")
	}

	return order, nil
}

func (s *orderService) ListShopOrders(ctx context.Context, principal *access.Principal, page, size int) ([]models.Order, int, error) {

	orders, total, err := s.orderRepo.ListOrdersByShop(ctx, principal.ID, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, total, nil
}

// ListAdminOrders lists the orders an admin fulfils. A principal allowed to
// read any order sees every fulfiller's orders.
func (s *orderService) ListAdminOrders(ctx context.Context, principal *access.Principal, status *models.OrderStatus, page, size int) ([]models.Order, int, error) {

	if status != nil && !ValidOrderStatus(*status) {
		return nil, 0, errors.AddValidationError("status", "unknown order status "+string(*status))
	}

	filter := models.AdminOrderFilter{Status: status}

	switch {
	case principal.Has(access.ScopeOrderReadAny):
	case principal.Has(access.ScopeOrderFulfil):
		filter.AdminID = &principal.ID
	default:
		return nil, 0, errors.ForbiddenError("You do not have permission to list these orders")
	}

	orders, total, err := s.orderRepo.ListOrders(ctx, filter, page, size)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, total, nil
}

// CancelOrder lets the purchasing shop cancel its own order while it is not
// yet delivered or cancelled. Other principals see the order as missing.
func (s *orderService) CancelOrder(ctx context.Context, principal *access.Principal, id uuid.UUID) (*models.Order, error) {

	order, err := s.freshOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !access.CanCancelOrder(principal, order.ShopID) {
		return nil, errors.NotFoundError("Order not found")
	}

	if !CanCancel(order.Status) {
		return nil, errors.OrderNotCancellableError(string(order.Status))
	}

	return s.moveStatus(ctx, principal, order, models.OrderStatusCancelled)
}

func (s *orderService) UpdateStatusAsShop(ctx context.Context, principal *access.Principal, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	if status != models.OrderStatusCancelled {
		return nil, errors.ForbiddenError("Shops can only cancel orders")
	}

	return s.CancelOrder(ctx, principal, id)
}

// UpdateStatusAsAdmin lets the fulfilling admin set any status on an order that
// has not reached a terminal state. Setting the current status is a no-op.
func (s *orderService) UpdateStatusAsAdmin(ctx context.Context, principal *access.Principal, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	if !ValidOrderStatus(status) {
		return nil, errors.AddValidationError("status", "unknown order status "+string(status))
	}

	order, err := s.freshOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !access.CanFulfilOrder(principal, order.AdminID) {
		return nil, errors.ForbiddenError("You can only update orders for your own products")
	}

	if order.Status == status {
		return order, nil
	}

	if !CanAdminSet(order.Status, status) {
		return nil, errors.OrderStatusTerminalError(string(order.Status))
	}

	if !CanTransition(order.Status, status) {
		middleware.LoggerFromContext(ctx).Info("Out of sequence status change",
			slog.String("orderId", order.ID.String()),
			slog.String("from", string(order.Status)),
			slog.String("to", string(status)),
		)
	}

	return s.moveStatus(ctx, principal, order, status)
}

func (s *orderService) UpdatePaymentStatus(ctx context.Context, principal *access.Principal, id uuid.UUID, status models.PaymentStatus) (*models.Order, error) {

	if !status.Valid() {
		return nil, errors.InvalidPaymentStatusError(string(status))
	}

	order, err := s.freshOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	if !access.CanFulfilOrder(principal, order.AdminID) {
		return nil, errors.ForbiddenError("You can only update orders for your own products")
	}

	updatedAt, err := s.orderRepo.UpdatePaymentStatus(ctx, order.ID, status)
	if err != nil {
		return nil, mapOrderError(err)
	}

	order.PaymentStatus = status
	order.UpdatedAt = updatedAt
	s.invalidate(ctx, order.ID)

	middleware.LoggerFromContext(ctx).Info("Payment status updated",
		slog.String("orderId", order.ID.String()),
		slog.String("paymentStatus", string(status)),
	)

	return order, nil
}

// moveStatus writes the new status only if the order still has the status it
// was read with.
func (s *orderService) moveStatus(ctx context.Context, principal *access.Principal, order *models.Order, to models.OrderStatus) (*models.Order, error) {

	from := order.Status

	updatedAt, err := s.orderRepo.UpdateOrderStatus(ctx, order.ID, from, to)
	if err != nil {
		return nil, mapOrderError(err)
	}

	order.Status = to
	order.UpdatedAt = updatedAt
	s.invalidate(ctx, order.ID)

	metrics.OrderStatusChanged(string(to), string(principal.Role))
	middleware.LoggerFromContext(ctx).Info("Order status updated",
		slog.String("orderId", order.ID.String()),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)

	return order, nil
}

func (s *orderService) freshOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, mapOrderError(err)
	}

	return order, nil
}

func (s *orderService) cachedOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {

	if s.cache == nil {
		return s.freshOrder(ctx, id)
	}

	return cache.ReadThrough(ctx, s.cache, &s.loads, cache.Key(cache.OrderKeyPrefix, id.String()), s.cacheTTL,
		func(ctx context.Context) (*models.Order, error) {
			return s.freshOrder(ctx, id)
		})
}

func (s *orderService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Delete(ctx, cache.Key(cache.OrderKeyPrefix, id.String())); err != nil {
		middleware.LoggerFromContext(ctx).Warn("Failed to invalidate cached order", slog.String("orderId", id.String()), slog.String("error", err.Error()))
	}
}

// sanitize strips markup from free text; the strict policy escapes entities,
// which are unescaped again since responses are JSON, not HTML.
func (s *orderService) sanitize(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}

func (s *orderService) sanitizeAddress(address *models.Address) *models.Address {
	clean := *address
	clean.FullName = s.sanitize(address.FullName)
	clean.FlatHouseNo = s.sanitize(address.FlatHouseNo)
	clean.AreaStreet = s.sanitize(address.AreaStreet)
	clean.City = s.sanitize(address.City)
	clean.State = s.sanitize(address.State)
	clean.Landmark = s.sanitize(address.Landmark)

	return &clean
}

func mapOrderError(err error) error {
	switch {
	case stdErrors.Is(err, repository.ErrOrderNotFound):
		return errors.NotFoundError("Order not found").WithError(err)
	case stdErrors.Is(err, repository.ErrStatusConflict):
		return errors.ConflictError("Order was modified concurrently, please reload and retry").WithError(err)
	default:
		return errors.DatabaseError("Failed to update order").WithError(err)
	}
}
