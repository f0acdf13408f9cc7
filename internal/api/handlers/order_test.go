package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/access"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/grocery-order-platform/internal/errors"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/services/mocks"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/testutils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrderTest(t *testing.T) (*mocks.OrderService, *handlers.OrderHandler) {
	mockOrderService := mocks.NewOrderService(t)
	return mockOrderService, handlers.NewOrderHandler(mockOrderService)
}

func principalWithID(id uuid.UUID) any {
	return mock.MatchedBy(func(p *access.Principal) bool { return p != nil && p.ID == id })
}

const createOrderBody = `{
	"items": [{"product_id": "%s", "quantity": 3}],
	"delivery_address": {
		"full_name": "Asha Traders",
		"mobile_number": "9876543210",
		"flat_house_no": "12",
		"area_street": "MG Road",
		"city": "Pune",
		"state": "MH",
		"pincode": "411001"
	},
	"payment_mode": "cash_on_delivery"
}`

func TestOrderHandler_CreateOrder(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest(t)
		shopID := uuid.New()
		productID := uuid.New()
		body := strings.Replace(createOrderBody, "%s", productID.String(), 1)
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPost, "/orders", strings.NewReader(body), shopID, access.RoleShop, nil)
		recorder := httptest.NewRecorder()

		created := &models.Order{
			ID:          uuid.New(),
			OrderNumber: "ORD000001",
			ShopID:      shopID,
			Status:      models.OrderStatusPending,
			ItemTotal:   decimal.NewFromInt(30),
			TotalAmount: decimal.NewFromInt(30),
		}
		mockOrderService.On("CreateOrder", mock.Anything, principalWithID(shopID), mock.MatchedBy(func(r *models.CreateOrderRequest) bool {
			return len(r.Items) == 1 && r.Items[0].ProductID == productID && r.Items[0].Quantity == 3 &&
				r.DeliveryAddress != nil && r.DeliveryAddress.City == "Pune" && r.PaymentMode == models.PaymentModeCashOnDelivery
		})).Return(created, nil).Once()

		// Act
		orderHandler.CreateOrder()(recorder, req)

		// Assert
		require.Equal(t, http.StatusCreated, recorder.Code)

		var got models.Order
		resp := decodeResponse(t, recorder, &got)
		assert.True(t, resp.Success)
		assert.Equal(t, "ORD000001", got.OrderNumber)
		assert.True(t, decimal.NewFromInt(30).Equal(got.TotalAmount))
	})

	t.Run("Empty items reaches the service", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		shopID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPost, "/orders",
			strings.NewReader(`{"items":[],"payment_mode":"upi"}`), shopID, access.RoleShop, nil)
		recorder := httptest.NewRecorder()

		mockOrderService.On("CreateOrder", mock.Anything, principalWithID(shopID), mock.Anything).Return(nil, appErrors.EmptyOrderError()).Once()

		orderHandler.CreateOrder()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		resp := decodeResponse(t, recorder, nil)
		assert.Equal(t, appErrors.ErrCodeEmptyOrder, resp.Error.Code)
	})

	t.Run("Unknown payment mode", func(t *testing.T) {
		_, orderHandler := setupOrderTest(t)
		body := strings.Replace(createOrderBody, "%s", uuid.NewString(), 1)
		body = strings.Replace(body, "cash_on_delivery", "barter", 1)
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPost, "/orders", strings.NewReader(body), uuid.New(), access.RoleShop, nil)
		recorder := httptest.NewRecorder()

		orderHandler.CreateOrder()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		resp := decodeResponse(t, recorder, nil)
		assert.Equal(t, appErrors.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("Malformed JSON", func(t *testing.T) {
		_, orderHandler := setupOrderTest(t)
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPost, "/orders", strings.NewReader(`{"items":`), uuid.New(), access.RoleShop, nil)
		recorder := httptest.NewRecorder()

		orderHandler.CreateOrder()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Rate limited", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		body := strings.Replace(createOrderBody, "%s", uuid.NewString(), 1)
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPost, "/orders", strings.NewReader(body), uuid.New(), access.RoleShop, nil)
		recorder := httptest.NewRecorder()

		mockOrderService.On("CreateOrder", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, appErrors.TooManyRequestsError("Too many checkout attempts, retry in 5 seconds")).Once()

		orderHandler.CreateOrder()(recorder, req)

		assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
	})
}

func TestOrderHandler_GetOrder(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		shopID := uuid.New()
		orderID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodGet, "/orders/"+orderID.String(), nil, shopID, access.RoleShop,
			map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		mockOrderService.On("GetOrder", mock.Anything, principalWithID(shopID), orderID).Return(&models.Order{ID: orderID, ShopID: shopID}, nil).Once()

		orderHandler.GetOrder()(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var got models.Order
		decodeResponse(t, recorder, &got)
		assert.Equal(t, orderID, got.ID)
	})

	t.Run("Invalid id", func(t *testing.T) {
		_, orderHandler := setupOrderTest(t)
		req := testutils.CreateTestRequestWithPrincipal(http.MethodGet, "/orders/not-a-uuid", nil, uuid.New(), access.RoleShop,
			map[string]string{"id": "not-a-uuid"})
		recorder := httptest.NewRecorder()

		orderHandler.GetOrder()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Not visible", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		orderID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodGet, "/orders/"+orderID.String(), nil, uuid.New(), access.RoleShop,
			map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		mockOrderService.On("GetOrder", mock.Anything, mock.Anything, orderID).Return(nil, appErrors.NotFoundError("Order not found")).Once()

		orderHandler.GetOrder()(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestOrderHandler_ListOrders(t *testing.T) {
	t.Run("Shop listing with pagination", func(t *testing.T) {
		// Arrange
		mockOrderService, orderHandler := setupOrderTest(t)
		shopID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodGet, "/orders?page=2&pageSize=5", nil, shopID, access.RoleShop, nil)
		recorder := httptest.NewRecorder()

		orders := []models.Order{{ID: uuid.New(), ShopID: shopID}}
		mockOrderService.On("ListShopOrders", mock.Anything, principalWithID(shopID), 2, 5).Return(orders, 6, nil).Once()

		// Act
		orderHandler.ListOrders()(recorder, req)

		// Assert
		require.Equal(t, http.StatusOK, recorder.Code)
		var page struct {
			Data       []models.Order `json:"data"`
			Total      int            `json:"total"`
			Page       int            `json:"page"`
			PageSize   int            `json:"pageSize"`
			TotalPages int            `json:"totalPages"`
			HasMore    bool           `json:"hasMore"`
		}
		decodeResponse(t, recorder, &page)
		assert.Len(t, page.Data, 1)
		assert.Equal(t, 6, page.Total)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 5, page.PageSize)
		assert.Equal(t, 2, page.TotalPages)
		assert.False(t, page.HasMore)
	})

	t.Run("Admin listing with status filter", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		adminID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodGet, "/orders/admin?status=pending", nil, adminID, access.RoleAdmin, nil)
		recorder := httptest.NewRecorder()

		mockOrderService.On("ListAdminOrders", mock.Anything, principalWithID(adminID), mock.MatchedBy(func(s *models.OrderStatus) bool {
			return s != nil && *s == models.OrderStatusPending
		}), 1, 10).Return([]models.Order{}, 0, nil).Once()

		orderHandler.ListAdminOrders()(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Admin listing without filter", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		headAdminID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodGet, "/orders/admin", nil, headAdminID, access.RoleHeadAdmin, nil)
		recorder := httptest.NewRecorder()

		mockOrderService.On("ListAdminOrders", mock.Anything, principalWithID(headAdminID), (*models.OrderStatus)(nil), 1, 10).
			Return([]models.Order{}, 0, nil).Once()

		orderHandler.ListAdminOrders()(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})
}

func TestOrderHandler_StatusChanges(t *testing.T) {
	t.Run("Shop asks for a non-cancel status", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		shopID := uuid.New()
		orderID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPut, "/orders/"+orderID.String()+"/status",
			strings.NewReader(`{"orderStatus":"confirmed"}`), shopID, access.RoleShop, map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		mockOrderService.On("UpdateStatusAsShop", mock.Anything, principalWithID(shopID), orderID, models.OrderStatusConfirmed).
			Return(nil, appErrors.ForbiddenError("Shops can only cancel orders")).Once()

		orderHandler.UpdateOrderStatus()(recorder, req)

		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})

	t.Run("Shop status body is validated", func(t *testing.T) {
		_, orderHandler := setupOrderTest(t)
		orderID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPut, "/orders/"+orderID.String()+"/status",
			strings.NewReader(`{"orderStatus":"shipped"}`), uuid.New(), access.RoleShop, map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		orderHandler.UpdateOrderStatus()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Cancel", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		shopID := uuid.New()
		orderID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPut, "/orders/"+orderID.String()+"/cancel", nil,
			shopID, access.RoleShop, map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		mockOrderService.On("CancelOrder", mock.Anything, principalWithID(shopID), orderID).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusCancelled}, nil).Once()

		orderHandler.CancelOrder()(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var got models.Order
		resp := decodeResponse(t, recorder, &got)
		assert.Equal(t, "Order cancelled successfully", resp.Message)
		assert.Equal(t, models.OrderStatusCancelled, got.Status)
	})

	t.Run("Cancel delivered order", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		orderID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPut, "/orders/"+orderID.String()+"/cancel", nil,
			uuid.New(), access.RoleShop, map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		mockOrderService.On("CancelOrder", mock.Anything, mock.Anything, orderID).
			Return(nil, appErrors.OrderNotCancellableError(string(models.OrderStatusDelivered))).Once()

		orderHandler.CancelOrder()(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		resp := decodeResponse(t, recorder, nil)
		assert.Equal(t, appErrors.ErrCodeOrderNotCancellable, resp.Error.Code)
	})

	t.Run("Admin status update", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		adminID := uuid.New()
		orderID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPut, "/orders/admin/"+orderID.String()+"/status",
			strings.NewReader(`{"status":"out_for_delivery"}`), adminID, access.RoleAdmin, map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		mockOrderService.On("UpdateStatusAsAdmin", mock.Anything, principalWithID(adminID), orderID, models.OrderStatusOutForDelivery).
			Return(&models.Order{ID: orderID, Status: models.OrderStatusOutForDelivery}, nil).Once()

		orderHandler.UpdateAdminOrderStatus()(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Admin status conflict", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		orderID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPut, "/orders/admin/"+orderID.String()+"/status",
			strings.NewReader(`{"status":"confirmed"}`), uuid.New(), access.RoleAdmin, map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		mockOrderService.On("UpdateStatusAsAdmin", mock.Anything, mock.Anything, orderID, models.OrderStatusConfirmed).
			Return(nil, appErrors.ConflictError("Order was modified concurrently, please reload and retry")).Once()

		orderHandler.UpdateAdminOrderStatus()(recorder, req)

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("Payment status", func(t *testing.T) {
		mockOrderService, orderHandler := setupOrderTest(t)
		adminID := uuid.New()
		orderID := uuid.New()
		req := testutils.CreateTestRequestWithPrincipal(http.MethodPut, "/orders/admin/"+orderID.String()+"/payment-status",
			strings.NewReader(`{"payment_status":"paid"}`), adminID, access.RoleAdmin, map[string]string{"id": orderID.String()})
		recorder := httptest.NewRecorder()

		mockOrderService.On("UpdatePaymentStatus", mock.Anything, principalWithID(adminID), orderID, models.PaymentStatusPaid).
			Return(&models.Order{ID: orderID, PaymentStatus: models.PaymentStatusPaid}, nil).Once()

		orderHandler.UpdatePaymentStatus()(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var got models.Order
		decodeResponse(t, recorder, &got)
		assert.Equal(t, models.PaymentStatusPaid, got.PaymentStatus)
	})
}
