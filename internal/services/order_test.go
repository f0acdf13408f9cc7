package service_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/access"
	cacheMocks "github.com/aaravmahajanofficial/grocery-order-platform/internal/cache/mocks"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/config"
	appErrors "github.com/aaravmahajanofficial/grocery-order-platform/internal/errors"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-order-platform/internal/repositories"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/grocery-order-platform/internal/services"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testOrdersConfig = config.Orders{NumberPrefix: "ORD", NumberMaxRetries: 3}

type orderServiceDeps struct {
	orders   *mocks.OrderRepository
	products *mocks.ProductRepository
	limiter  *mocks.RateLimitRepository
}

func setupOrderServiceTest(t *testing.T) (service.OrderService, *orderServiceDeps) {
	deps := &orderServiceDeps{
		orders:   mocks.NewOrderRepository(t),
		products: mocks.NewProductRepository(t),
		limiter:  mocks.NewRateLimitRepository(t),
	}

	deps.limiter.On("CheckCheckoutRateLimit", mock.Anything, mock.Anything).Return(true, 4, 0, nil).Maybe()

	orderService := service.NewOrderService(deps.orders, deps.products, deps.limiter, nil, time.Minute,
		service.NewPricingEngine(decimal.Zero), testOrdersConfig)

	return orderService, deps
}

func testAddress() *models.Address {
	return &models.Address{
		FullName:     "Asha Traders",
		MobileNumber: "9876543210",
		FlatHouseNo:  "12",
		AreaStreet:   "MG Road",
		City:         "Pune",
		State:        "MH",
		Pincode:      "411001",
	}
}

func orderRequest(items ...models.OrderItemRequest) *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		Items:           items,
		DeliveryAddress: testAddress(),
		PaymentMode:     models.PaymentModeCashOnDelivery,
	}
}

func activeProduct(adminID uuid.UUID, price string) *models.Product {
	return &models.Product{ID: uuid.New(), AdminID: adminID, Name: "Basmati Rice", Price: dec(price), IsActive: true, Category: "Grains", Unit: "kg"}
}

func existingOrder(shopID, adminID uuid.UUID, status models.OrderStatus) *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   "ORD000001",
		ShopID:        shopID,
		AdminID:       adminID,
		Status:        status,
		PaymentStatus: models.PaymentStatusPending,
		IsActive:      true,
	}
}

func TestOrderService_CreateOrder(t *testing.T) {
	shop := access.NewPrincipal(uuid.New(), access.RoleShop)
	adminID := uuid.New()

	t.Run("Totals from snapshotted prices", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderServiceTest(t)
		product := activeProduct(adminID, "10")

		deps.products.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		deps.orders.On("NextOrderSequence", mock.Anything).Return(int64(42), nil).Once()
		deps.orders.On("CreateOrder", mock.Anything, mock.AnythingOfType("*models.Order")).Return(nil).Run(func(args mock.Arguments) {
			order := args.Get(1).(*models.Order)
			assert.Equal(t, "ORD000042", order.OrderNumber)
			assert.Equal(t, shop.ID, order.ShopID)
			assert.Equal(t, adminID, order.AdminID)
			assert.Equal(t, models.OrderStatusPending, order.Status)
			assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
		}).Once()

		// Act
		order, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: product.ID, Quantity: 3}))

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "30.00", order.ItemTotal.StringFixed(2))
		assert.True(t, order.DeliveryCharges.IsZero())
		assert.Equal(t, "30.00", order.TotalAmount.StringFixed(2))
		assert.True(t, order.IsActive)
		require.Len(t, order.Items, 1)
		assert.Equal(t, order.ID, order.Items[0].OrderID)
		require.NotNil(t, order.Items[0].Product)
		assert.Equal(t, "Basmati Rice", order.Items[0].Product.Name)
		assert.Equal(t, "kg", order.Items[0].Product.Unit)
	})

	t.Run("Later price change does not touch the order", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderServiceTest(t)
		product := activeProduct(adminID, "10")

		var stored *models.Order
		deps.products.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		deps.orders.On("NextOrderSequence", mock.Anything).Return(int64(1), nil).Once()
		deps.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
			snapshot := *args.Get(1).(*models.Order)
			snapshot.Items = append([]models.OrderItem(nil), snapshot.Items...)
			stored = &snapshot
		}).Once()

		order, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: product.ID, Quantity: 2}))
		require.NoError(t, err)

		product.Price = dec("15")
		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(stored, nil).Once()

		// Act
		reread, err := orderService.GetOrder(context.Background(), shop, order.ID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "10.00", reread.Items[0].UnitPrice.StringFixed(2))
		assert.Equal(t, "20.00", reread.TotalAmount.StringFixed(2))
	})

	t.Run("Empty items persists nothing", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)

		order, err := orderService.CreateOrder(context.Background(), shop, orderRequest())

		assert.Nil(t, order)
		assertAppErrorCode(t, err, appErrors.ErrCodeEmptyOrder)
		deps.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Missing address", func(t *testing.T) {
		orderService, _ := setupOrderServiceTest(t)
		req := orderRequest(models.OrderItemRequest{ProductID: uuid.New(), Quantity: 1})
		req.DeliveryAddress = nil

		_, err := orderService.CreateOrder(context.Background(), shop, req)

		assertAppErrorCode(t, err, appErrors.ErrCodeMissingAddress)
	})

	t.Run("Missing payment mode", func(t *testing.T) {
		orderService, _ := setupOrderServiceTest(t)
		req := orderRequest(models.OrderItemRequest{ProductID: uuid.New(), Quantity: 1})
		req.PaymentMode = ""

		_, err := orderService.CreateOrder(context.Background(), shop, req)

		assertAppErrorCode(t, err, appErrors.ErrCodeMissingPaymentMode)
	})

	t.Run("First missing product aborts the order", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		first := activeProduct(adminID, "5")
		missing := uuid.New()
		third := uuid.New()

		deps.products.On("GetProductByID", mock.Anything, first.ID).Return(first, nil).Once()
		deps.products.On("GetProductByID", mock.Anything, missing).Return(nil, repository.ErrProductNotFound).Once()

		_, err := orderService.CreateOrder(context.Background(), shop, orderRequest(
			models.OrderItemRequest{ProductID: first.ID, Quantity: 1},
			models.OrderItemRequest{ProductID: missing, Quantity: 1},
			models.OrderItemRequest{ProductID: third, Quantity: 1},
		))

		assertAppErrorCode(t, err, appErrors.ErrCodeProductNotFound)
		assert.Contains(t, err.Error(), missing.String())
		deps.products.AssertNotCalled(t, "GetProductByID", mock.Anything, third)
		deps.orders.AssertNotCalled(t, "NextOrderSequence", mock.Anything)
	})

	t.Run("Products from two admins are rejected", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		mine := activeProduct(adminID, "5")
		theirs := activeProduct(uuid.New(), "5")

		deps.products.On("GetProductByID", mock.Anything, mine.ID).Return(mine, nil).Once()
		deps.products.On("GetProductByID", mock.Anything, theirs.ID).Return(theirs, nil).Once()

		_, err := orderService.CreateOrder(context.Background(), shop, orderRequest(
			models.OrderItemRequest{ProductID: mine.ID, Quantity: 1},
			models.OrderItemRequest{ProductID: theirs.ID, Quantity: 1},
		))

		assertAppErrorCode(t, err, appErrors.ErrCodeMultiVendorOrder)
		deps.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("Zero quantity line", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		product := activeProduct(adminID, "5")

		deps.products.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()

		_, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: product.ID}))

		assertAppErrorCode(t, err, appErrors.ErrCodeInvalidOrderLine)
	})

	for _, quantity := range []int{101, math.MaxInt32 + 1} {
		t.Run(fmt.Sprintf("Quantity %d above the line cap", quantity), func(t *testing.T) {
			orderService, deps := setupOrderServiceTest(t)

			_, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: uuid.New(), Quantity: quantity}))

			assertAppErrorCode(t, err, appErrors.ErrCodeInvalidOrderLine)
			assert.Contains(t, err.Error(), "cannot exceed 100")
			deps.products.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
			deps.orders.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
		})
	}

	t.Run("Configured line cap", func(t *testing.T) {
		products := mocks.NewProductRepository(t)
		cfg := testOrdersConfig
		cfg.MaxLineQuantity = 10
		orderService := service.NewOrderService(mocks.NewOrderRepository(t), products, nil, nil, time.Minute,
			service.NewPricingEngine(decimal.Zero), cfg)

		_, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: uuid.New(), Quantity: 11}))

		assertAppErrorCode(t, err, appErrors.ErrCodeInvalidOrderLine)
		assert.Contains(t, err.Error(), "cannot exceed 10")
	})

	t.Run("Lines are numbered in request order", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		first := activeProduct(adminID, "5")
		second := activeProduct(adminID, "7")
		second.Name = "Toor Dal"

		deps.products.On("GetProductByID", mock.Anything, first.ID).Return(first, nil).Once()
		deps.products.On("GetProductByID", mock.Anything, second.ID).Return(second, nil).Once()
		deps.orders.On("NextOrderSequence", mock.Anything).Return(int64(7), nil).Once()
		deps.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()

		order, err := orderService.CreateOrder(context.Background(), shop, orderRequest(
			models.OrderItemRequest{ProductID: second.ID, Quantity: 1},
			models.OrderItemRequest{ProductID: first.ID, Quantity: 100},
		))

		require.NoError(t, err)
		require.Len(t, order.Items, 2)
		assert.Equal(t, 0, order.Items[0].Position)
		assert.Equal(t, "Toor Dal", order.Items[0].Product.Name)
		assert.Equal(t, 1, order.Items[1].Position)
		assert.Equal(t, first.ID, order.Items[1].ProductID)
	})

	t.Run("Duplicate order number draws a new one", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		product := activeProduct(adminID, "5")

		deps.products.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		deps.orders.On("NextOrderSequence", mock.Anything).Return(int64(7), nil).Once()
		deps.orders.On("NextOrderSequence", mock.Anything).Return(int64(8), nil).Once()
		deps.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(repository.ErrDuplicateOrderNumber).Once()
		deps.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()

		order, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: product.ID, Quantity: 1}))

		require.NoError(t, err)
		assert.Equal(t, "ORD000008", order.OrderNumber)
	})

	t.Run("Gives up after repeated collisions", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		product := activeProduct(adminID, "5")

		deps.products.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		deps.orders.On("NextOrderSequence", mock.Anything).Return(int64(7), nil).Times(3)
		deps.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(repository.ErrDuplicateOrderNumber).Times(3)

		_, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: product.ID, Quantity: 1}))

		assertAppErrorCode(t, err, appErrors.ErrCodeConflict)
	})

	t.Run("Database failure is not retried", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		product := activeProduct(adminID, "5")
		dbErr := errors.New("deadlock detected")

		deps.products.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		deps.orders.On("NextOrderSequence", mock.Anything).Return(int64(7), nil).Once()
		deps.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(dbErr).Once()

		_, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: product.ID, Quantity: 1}))

		assertAppErrorCode(t, err, appErrors.ErrCodeDatabaseError)
		assert.ErrorIs(t, err, dbErr)
	})

	t.Run("Markup is stripped from free text", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		product := activeProduct(adminID, "5")
		req := orderRequest(models.OrderItemRequest{ProductID: product.ID, Quantity: 1})
		req.Notes = `<script>alert(1)</script>Leave at gate & ring`
		req.DeliveryAddress.Landmark = `<b>Near temple</b>`

		deps.products.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		deps.orders.On("NextOrderSequence", mock.Anything).Return(int64(1), nil).Once()
		deps.orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()

		order, err := orderService.CreateOrder(context.Background(), shop, req)

		require.NoError(t, err)
		assert.Equal(t, "Leave at gate & ring", order.Notes)
		assert.Equal(t, "Near temple", order.DeliveryAddress.Landmark)
		assert.Equal(t, "<b>Near temple</b>", req.DeliveryAddress.Landmark)
	})
}

func TestOrderService_CreateOrder_RateLimited(t *testing.T) {
	shop := access.NewPrincipal(uuid.New(), access.RoleShop)

	t.Run("Denied", func(t *testing.T) {
		orders := mocks.NewOrderRepository(t)
		products := mocks.NewProductRepository(t)
		limiter := mocks.NewRateLimitRepository(t)
		orderService := service.NewOrderService(orders, products, limiter, nil, time.Minute, service.NewPricingEngine(decimal.Zero), testOrdersConfig)

		limiter.On("CheckCheckoutRateLimit", mock.Anything, shop.ID).Return(false, 0, 9, nil).Once()

		_, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: uuid.New(), Quantity: 1}))

		assertAppErrorCode(t, err, appErrors.ErrCodeTooManyRequests)
		assert.Contains(t, err.Error(), "9 seconds")
		products.AssertNotCalled(t, "GetProductByID", mock.Anything, mock.Anything)
	})

	t.Run("Limiter outage does not block checkout", func(t *testing.T) {
		orders := mocks.NewOrderRepository(t)
		products := mocks.NewProductRepository(t)
		limiter := mocks.NewRateLimitRepository(t)
		orderService := service.NewOrderService(orders, products, limiter, nil, time.Minute, service.NewPricingEngine(decimal.Zero), testOrdersConfig)
		product := activeProduct(uuid.New(), "1")

		limiter.On("CheckCheckoutRateLimit", mock.Anything, shop.ID).Return(false, 0, 0, errors.New("redis down")).Once()
		products.On("GetProductByID", mock.Anything, product.ID).Return(product, nil).Once()
		orders.On("NextOrderSequence", mock.Anything).Return(int64(3), nil).Once()
		orders.On("CreateOrder", mock.Anything, mock.Anything).Return(nil).Once()

		order, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: product.ID, Quantity: 1}))

		require.NoError(t, err)
		assert.Equal(t, "ORD000003", order.OrderNumber)
	})
}

// memoryOrderRepository hands out numbers from an atomic counter and enforces
// order number uniqueness like the database constraint does.
type memoryOrderRepository struct {
	repository.OrderRepository

	seq     atomic.Int64
	mu      sync.Mutex
	numbers map[string]uuid.UUID
}

func (r *memoryOrderRepository) NextOrderSequence(context.Context) (int64, error) {
	return r.seq.Add(1), nil
}

func (r *memoryOrderRepository) CreateOrder(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.numbers[order.OrderNumber]; taken {
		return repository.ErrDuplicateOrderNumber
	}

	r.numbers[order.OrderNumber] = order.ID

	return nil
}

func TestOrderService_CreateOrder_ConcurrentNumbersAreDistinct(t *testing.T) {
	// Arrange
	const checkouts = 50

	repo := &memoryOrderRepository{numbers: make(map[string]uuid.UUID)}
	products := mocks.NewProductRepository(t)
	product := activeProduct(uuid.New(), "2.50")
	products.On("GetProductByID", mock.Anything, product.ID).Return(product, nil)

	orderService := service.NewOrderService(repo, products, nil, nil, time.Minute, service.NewPricingEngine(decimal.Zero), testOrdersConfig)

	var wg sync.WaitGroup
	numbers := make(chan string, checkouts)
	failures := make(chan error, checkouts)

	// Act
	for i := range checkouts {
		wg.Add(1)
		go func() {
			defer wg.Done()

			shop := access.NewPrincipal(uuid.New(), access.RoleShop)
			order, err := orderService.CreateOrder(context.Background(), shop, orderRequest(models.OrderItemRequest{ProductID: product.ID, Quantity: i + 1}))
			if err != nil {
				failures <- err
				return
			}
			numbers <- order.OrderNumber
		}()
	}

	wg.Wait()
	close(numbers)
	close(failures)

	// Assert
	for err := range failures {
		t.Errorf("checkout failed: %v", err)
	}

	seen := make(map[string]bool, checkouts)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate order number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, checkouts)
	assert.Len(t, repo.numbers, checkouts)
}

func TestOrderService_GetOrder(t *testing.T) {
	shopID := uuid.New()
	adminID := uuid.New()

	t.Run("Visible to the purchaser, the fulfiller and head admins", func(t *testing.T) {
		for _, principal := range []*access.Principal{
			access.NewPrincipal(shopID, access.RoleShop),
			access.NewPrincipal(adminID, access.RoleAdmin),
			access.NewPrincipal(uuid.New(), access.RoleHeadAdmin),
		} {
			orderService, deps := setupOrderServiceTest(t)
			order := existingOrder(shopID, adminID, models.OrderStatusPending)
			deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

			got, err := orderService.GetOrder(context.Background(), principal, order.ID)

			require.NoError(t, err, string(principal.Role))
			assert.Equal(t, order.ID, got.ID)
		}
	})

	t.Run("Other shops see not found", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shopID, adminID, models.OrderStatusPending)
		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := orderService.GetOrder(context.Background(), access.NewPrincipal(uuid.New(), access.RoleShop), order.ID)

		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Missing order", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		id := uuid.New()
		deps.orders.On("GetOrderByID", mock.Anything, id).Return(nil, repository.ErrOrderNotFound).Once()

		_, err := orderService.GetOrder(context.Background(), access.NewPrincipal(shopID, access.RoleShop), id)

		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
	})

	t.Run("Served from cache", func(t *testing.T) {
		// Arrange
		orders := mocks.NewOrderRepository(t)
		orderCache := cacheMocks.NewCache(t)
		orderService := service.NewOrderService(orders, mocks.NewProductRepository(t), nil, orderCache, time.Minute,
			service.NewPricingEngine(decimal.Zero), testOrdersConfig)
		order := existingOrder(shopID, adminID, models.OrderStatusConfirmed)

		orderCache.On("Get", mock.Anything, "order:"+order.ID.String(), mock.AnythingOfType("**models.Order")).
			Run(func(args mock.Arguments) {
				*args.Get(2).(**models.Order) = order
			}).
			Return(true, nil).Once()

		// Act
		got, err := orderService.GetOrder(context.Background(), access.NewPrincipal(shopID, access.RoleShop), order.ID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusConfirmed, got.Status)
		orders.AssertNotCalled(t, "GetOrderByID", mock.Anything, mock.Anything)
	})

	t.Run("Cache miss loads and stores", func(t *testing.T) {
		orders := mocks.NewOrderRepository(t)
		orderCache := cacheMocks.NewCache(t)
		orderService := service.NewOrderService(orders, mocks.NewProductRepository(t), nil, orderCache, time.Minute,
			service.NewPricingEngine(decimal.Zero), testOrdersConfig)
		order := existingOrder(shopID, adminID, models.OrderStatusPending)
		key := "order:" + order.ID.String()

		orderCache.On("Get", mock.Anything, key, mock.Anything).Return(false, nil).Once()
		orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		orderCache.On("Version", mock.Anything, key).Return(int64(0), nil).Once()
		orderCache.On("SetIfVersion", mock.Anything, key, order, time.Minute, int64(0)).Return(true, nil).Once()

		got, err := orderService.GetOrder(context.Background(), access.NewPrincipal(adminID, access.RoleAdmin), order.ID)

		require.NoError(t, err)
		assert.Same(t, order, got)
	})
}

func TestOrderService_ListOrders(t *testing.T) {
	t.Run("Shop lists its own orders", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		shop := access.NewPrincipal(uuid.New(), access.RoleShop)
		orders := []models.Order{*existingOrder(shop.ID, uuid.New(), models.OrderStatusPending)}

		deps.orders.On("ListOrdersByShop", mock.Anything, shop.ID, 2, 10).Return(orders, 11, nil).Once()

		got, total, err := orderService.ListShopOrders(context.Background(), shop, 2, 10)

		require.NoError(t, err)
		assert.Len(t, got, 1)
		assert.Equal(t, 11, total)
	})

	t.Run("Admin listing is scoped to the fulfiller", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		admin := access.NewPrincipal(uuid.New(), access.RoleAdmin)
		status := models.OrderStatusPending

		deps.orders.On("ListOrders", mock.Anything, mock.MatchedBy(func(f models.AdminOrderFilter) bool {
			return f.AdminID != nil && *f.AdminID == admin.ID && f.Status != nil && *f.Status == status
		}), 1, 20).Return([]models.Order{}, 0, nil).Once()

		_, _, err := orderService.ListAdminOrders(context.Background(), admin, &status, 1, 20)

		require.NoError(t, err)
	})

	t.Run("Head admin lists every fulfiller", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)

		deps.orders.On("ListOrders", mock.Anything, models.AdminOrderFilter{}, 1, 20).Return([]models.Order{}, 0, nil).Once()

		_, _, err := orderService.ListAdminOrders(context.Background(), access.NewPrincipal(uuid.New(), access.RoleHeadAdmin), nil, 1, 20)

		require.NoError(t, err)
	})

	t.Run("Shops cannot use the admin listing", func(t *testing.T) {
		orderService, _ := setupOrderServiceTest(t)

		_, _, err := orderService.ListAdminOrders(context.Background(), access.NewPrincipal(uuid.New(), access.RoleShop), nil, 1, 20)

		assertAppErrorCode(t, err, appErrors.ErrCodeForbidden)
	})

	t.Run("Unknown status filter", func(t *testing.T) {
		orderService, _ := setupOrderServiceTest(t)
		status := models.OrderStatus("shipped")

		_, _, err := orderService.ListAdminOrders(context.Background(), access.NewPrincipal(uuid.New(), access.RoleAdmin), &status, 1, 20)

		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
	})
}

func TestOrderService_CancelOrder(t *testing.T) {
	shop := access.NewPrincipal(uuid.New(), access.RoleShop)
	adminID := uuid.New()

	t.Run("Pending order is cancelled", func(t *testing.T) {
		// Arrange
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shop.ID, adminID, models.OrderStatusPending)
		updatedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		deps.orders.On("UpdateOrderStatus", mock.Anything, order.ID, models.OrderStatusPending, models.OrderStatusCancelled).Return(updatedAt, nil).Once()

		// Act
		got, err := orderService.CancelOrder(context.Background(), shop, order.ID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, got.Status)
		assert.Equal(t, updatedAt, got.UpdatedAt)
	})

	t.Run("Delivered order is not cancellable", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shop.ID, adminID, models.OrderStatusDelivered)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := orderService.CancelOrder(context.Background(), shop, order.ID)

		assertAppErrorCode(t, err, appErrors.ErrCodeOrderNotCancellable)
		deps.orders.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Another shop's order looks missing", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(uuid.New(), adminID, models.OrderStatusPending)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := orderService.CancelOrder(context.Background(), shop, order.ID)

		assertAppErrorCode(t, err, appErrors.ErrCodeNotFound)
		deps.orders.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Concurrent change", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shop.ID, adminID, models.OrderStatusConfirmed)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		deps.orders.On("UpdateOrderStatus", mock.Anything, order.ID, models.OrderStatusConfirmed, models.OrderStatusCancelled).
			Return(time.Time{}, repository.ErrStatusConflict).Once()

		_, err := orderService.CancelOrder(context.Background(), shop, order.ID)

		assertAppErrorCode(t, err, appErrors.ErrCodeConflict)
	})

	t.Run("Invalidates the cached order", func(t *testing.T) {
		orders := mocks.NewOrderRepository(t)
		orderCache := cacheMocks.NewCache(t)
		orderService := service.NewOrderService(orders, mocks.NewProductRepository(t), nil, orderCache, time.Minute,
			service.NewPricingEngine(decimal.Zero), testOrdersConfig)
		order := existingOrder(shop.ID, adminID, models.OrderStatusPending)

		orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		orders.On("UpdateOrderStatus", mock.Anything, order.ID, models.OrderStatusPending, models.OrderStatusCancelled).Return(time.Now(), nil).Once()
		orderCache.On("Delete", mock.Anything, "order:"+order.ID.String()).Return(nil).Once()

		_, err := orderService.CancelOrder(context.Background(), shop, order.ID)

		require.NoError(t, err)
	})
}

func TestOrderService_UpdateStatusAsShop(t *testing.T) {
	shop := access.NewPrincipal(uuid.New(), access.RoleShop)

	t.Run("Anything but cancel is forbidden", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)

		_, err := orderService.UpdateStatusAsShop(context.Background(), shop, uuid.New(), models.OrderStatusConfirmed)

		assertAppErrorCode(t, err, appErrors.ErrCodeForbidden)
		deps.orders.AssertNotCalled(t, "GetOrderByID", mock.Anything, mock.Anything)
		deps.orders.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Cancel goes through", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shop.ID, uuid.New(), models.OrderStatusPreparing)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		deps.orders.On("UpdateOrderStatus", mock.Anything, order.ID, models.OrderStatusPreparing, models.OrderStatusCancelled).Return(time.Now(), nil).Once()

		got, err := orderService.UpdateStatusAsShop(context.Background(), shop, order.ID, models.OrderStatusCancelled)

		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusCancelled, got.Status)
	})
}

func TestOrderService_UpdateStatusAsAdmin(t *testing.T) {
	admin := access.NewPrincipal(uuid.New(), access.RoleAdmin)
	shopID := uuid.New()

	t.Run("Forward step", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shopID, admin.ID, models.OrderStatusPending)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		deps.orders.On("UpdateOrderStatus", mock.Anything, order.ID, models.OrderStatusPending, models.OrderStatusConfirmed).Return(time.Now(), nil).Once()

		got, err := orderService.UpdateStatusAsAdmin(context.Background(), admin, order.ID, models.OrderStatusConfirmed)

		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusConfirmed, got.Status)
		assert.Equal(t, models.PaymentStatusPending, got.PaymentStatus)
	})

	t.Run("Jump ahead is allowed", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shopID, admin.ID, models.OrderStatusPending)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		deps.orders.On("UpdateOrderStatus", mock.Anything, order.ID, models.OrderStatusPending, models.OrderStatusDelivered).Return(time.Now(), nil).Once()

		got, err := orderService.UpdateStatusAsAdmin(context.Background(), admin, order.ID, models.OrderStatusDelivered)

		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusDelivered, got.Status)
		// payment is tracked independently of delivery
		assert.Equal(t, models.PaymentStatusPending, got.PaymentStatus)
	})

	t.Run("Same status is a no-op", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shopID, admin.ID, models.OrderStatusPreparing)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		got, err := orderService.UpdateStatusAsAdmin(context.Background(), admin, order.ID, models.OrderStatusPreparing)

		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusPreparing, got.Status)
		deps.orders.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Terminal order is frozen", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shopID, admin.ID, models.OrderStatusCancelled)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := orderService.UpdateStatusAsAdmin(context.Background(), admin, order.ID, models.OrderStatusConfirmed)

		assertAppErrorCode(t, err, appErrors.ErrCodeOrderStatusTerminal)
	})

	t.Run("Other admin is forbidden and nothing changes", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shopID, uuid.New(), models.OrderStatusPending)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := orderService.UpdateStatusAsAdmin(context.Background(), admin, order.ID, models.OrderStatusConfirmed)

		assertAppErrorCode(t, err, appErrors.ErrCodeForbidden)
		deps.orders.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Head admin cannot fulfil", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(shopID, admin.ID, models.OrderStatusPending)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := orderService.UpdateStatusAsAdmin(context.Background(), access.NewPrincipal(uuid.New(), access.RoleHeadAdmin), order.ID, models.OrderStatusConfirmed)

		assertAppErrorCode(t, err, appErrors.ErrCodeForbidden)
	})

	t.Run("Unknown status", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)

		_, err := orderService.UpdateStatusAsAdmin(context.Background(), admin, uuid.New(), models.OrderStatus("shipped"))

		assertAppErrorCode(t, err, appErrors.ErrCodeValidation)
		deps.orders.AssertNotCalled(t, "GetOrderByID", mock.Anything, mock.Anything)
	})
}

func TestOrderService_UpdatePaymentStatus(t *testing.T) {
	admin := access.NewPrincipal(uuid.New(), access.RoleAdmin)

	t.Run("Fulfiller records payment", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		order := existingOrder(uuid.New(), admin.ID, models.OrderStatusOutForDelivery)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()
		deps.orders.On("UpdatePaymentStatus", mock.Anything, order.ID, models.PaymentStatusPaid).Return(time.Now(), nil).Once()

		got, err := orderService.UpdatePaymentStatus(context.Background(), admin, order.ID, models.PaymentStatusPaid)

		require.NoError(t, err)
		assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
		assert.Equal(t, models.OrderStatusOutForDelivery, got.Status)
	})

	t.Run("Unknown payment status", func(t *testing.T) {
		orderService, _ := setupOrderServiceTest(t)

		_, err := orderService.UpdatePaymentStatus(context.Background(), admin, uuid.New(), models.PaymentStatus("settled"))

		assertAppErrorCode(t, err, appErrors.ErrCodeInvalidPaymentStatus)
	})

	t.Run("Shop is forbidden", func(t *testing.T) {
		orderService, deps := setupOrderServiceTest(t)
		shop := access.NewPrincipal(uuid.New(), access.RoleShop)
		order := existingOrder(shop.ID, admin.ID, models.OrderStatusPending)

		deps.orders.On("GetOrderByID", mock.Anything, order.ID).Return(order, nil).Once()

		_, err := orderService.UpdatePaymentStatus(context.Background(), shop, order.ID, models.PaymentStatusPaid)

		assertAppErrorCode(t, err, appErrors.ErrCodeForbidden)
		deps.orders.AssertNotCalled(t, "UpdatePaymentStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD000001", service.FormatOrderNumber("ORD", 1))
	assert.Equal(t, "GRO123456", service.FormatOrderNumber("GRO", 123456))
	assert.Equal(t, fmt.Sprintf("ORD%d", 1234567), service.FormatOrderNumber("ORD", 1234567))
}
