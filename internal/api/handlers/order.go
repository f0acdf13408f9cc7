package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	service "github.com/aaravmahajanofficial/grocery-order-platform/internal/services"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/utils"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type OrderHandler struct {
	orderService service.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService, validator: validator.New()}
}

// CreateOrder godoc
//	@Summary		Place an order
//	@Description	Creates an order from an explicit item list. Prices are fixed at this moment; the cart is left untouched.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			order	body		models.CreateOrderRequest	true	"Items, delivery address, payment mode and notes"
//	@Success		201		{object}	models.Order				"Created order"
//	@Failure		400		{object}	response.ErrorResponse		"Empty order, missing address or payment mode, invalid line, or products from several sellers"
//	@Failure		401		{object}	response.ErrorResponse		"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse		"Role cannot place orders"
//	@Failure		404		{object}	response.ErrorResponse		"Product not found or inactive"
//	@Failure		409		{object}	response.ErrorResponse		"Order number could not be allocated"
//	@Failure		429		{object}	response.ErrorResponse		"Too many checkout attempts"
//	@Failure		500		{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders [post]
func (h *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}
		logger = logger.With(slog.String("shopId", principal.ID.String()))

		var req models.CreateOrderRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid create order input")
			return
		}

		order, err := h.orderService.CreateOrder(r.Context(), principal, &req)
		if err != nil {
			logger.Error("Failed to create order", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.SuccessWithMessage(w, http.StatusCreated, "Order placed successfully", order)
	}
}

// GetOrder godoc
//	@Summary		Get an order by ID
//	@Description	Visible to the purchasing shop, the fulfilling admin and head admins. Anyone else gets 404.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string					true	"Order ID (UUID)"	Format(uuid)
//	@Success		200	{object}	models.Order			"Order"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid order ID format"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders/{id} [get]
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			logger.Warn("Invalid order id", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		order, err := h.orderService.GetOrder(r.Context(), principal, id)
		if err != nil {
			logger.Warn("Failed to get order", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// ListOrders godoc
//	@Summary		List the shop's orders
//	@Description	Newest first.
//	@Tags			Orders
//	@Produce		json
//	@Param			page		query		int												false	"Page number for pagination (default: 1)"			minimum(1)
//	@Param			pageSize	query		int												false	"Number of items per page (default: 10, max: 100)"	minimum(1)	maximum(100)
//	@Success		200			{object}	models.PaginatedResponse{Data=[]models.Order}	"Orders"
//	@Failure		401			{object}	response.ErrorResponse							"Authentication required"
//	@Failure		500			{object}	response.ErrorResponse							"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders [get]
func (h *OrderHandler) ListOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)

		orders, total, err := h.orderService.ListShopOrders(r.Context(), principal, page, pageSize)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewPage(orders, total, page, pageSize))
	}
}

// UpdateOrderStatus godoc
//	@Summary		Change order status as the purchasing shop
//	@Description	Shops may only move their own order to cancelled. Any other target status is refused.
//	@Tags			Orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Order ID (UUID)"	Format(uuid)
//	@Param			status	body		models.ShopOrderStatusRequest	true	"Target status"
//	@Success		200		{object}	models.Order					"Updated order"
//	@Failure		400		{object}	response.ErrorResponse			"Invalid input or order no longer cancellable"
//	@Failure		401		{object}	response.ErrorResponse			"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse			"Shops can only cancel orders"
//	@Failure		404		{object}	response.ErrorResponse			"Order not found"
//	@Failure		409		{object}	response.ErrorResponse			"Order changed concurrently"
//	@Failure		500		{object}	response.ErrorResponse			"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders/{id}/status [put]
func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.ShopOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid order status input")
			return
		}

		order, err := h.orderService.UpdateStatusAsShop(r.Context(), principal, id, req.OrderStatus)
		if err != nil {
			logger.Warn("Failed to update order status", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// CancelOrder godoc
//	@Summary		Cancel an order
//	@Description	The purchasing shop may cancel until the order is delivered.
//	@Tags			Orders
//	@Produce		json
//	@Param			id	path		string					true	"Order ID (UUID)"	Format(uuid)
//	@Success		200	{object}	models.Order			"Cancelled order"
//	@Failure		400	{object}	response.ErrorResponse	"Order no longer cancellable"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"Order not found"
//	@Failure		409	{object}	response.ErrorResponse	"Order changed concurrently"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders/{id}/cancel [put]
func (h *OrderHandler) CancelOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		order, err := h.orderService.CancelOrder(r.Context(), principal, id)
		if err != nil {
			logger.Warn("Failed to cancel order", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.SuccessWithMessage(w, http.StatusOK, "Order cancelled successfully", order)
	}
}

// ListAdminOrders godoc
//	@Summary		List orders for fulfilment
//	@Description	Admins see the orders for their own products. Head admins see every order.
//	@Tags			Admin Orders
//	@Produce		json
//	@Param			status		query		string											false	"Filter by order status"	Enums(pending, confirmed, preparing, out_for_delivery, delivered, cancelled)
//	@Param			page		query		int												false	"Page number for pagination (default: 1)"			minimum(1)
//	@Param			pageSize	query		int												false	"Number of items per page (default: 10, max: 100)"	minimum(1)	maximum(100)
//	@Success		200			{object}	models.PaginatedResponse{Data=[]models.Order}	"Orders"
//	@Failure		400			{object}	response.ErrorResponse							"Unknown status filter"
//	@Failure		401			{object}	response.ErrorResponse							"Authentication required"
//	@Failure		403			{object}	response.ErrorResponse							"Role cannot list fulfilment orders"
//	@Failure		500			{object}	response.ErrorResponse							"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders/admin [get]
func (h *OrderHandler) ListAdminOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		page, pageSize := utils.ParsePagination(r)

		var status *models.OrderStatus
		if raw := r.URL.Query().Get("status"); raw != "" {
			s := models.OrderStatus(raw)
			status = &s
		}

		orders, total, err := h.orderService.ListAdminOrders(r.Context(), principal, status, page, pageSize)
		if err != nil {
			logger.Warn("Failed to list admin orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.NewPage(orders, total, page, pageSize))
	}
}

// UpdateAdminOrderStatus godoc
//	@Summary		Change order status as the fulfilling admin
//	@Description	Any status may be set until the order is delivered or cancelled. Setting the current status changes nothing.
//	@Tags			Admin Orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"Order ID (UUID)"	Format(uuid)
//	@Param			status	body		models.UpdateOrderStatusRequest	true	"Target status"
//	@Success		200		{object}	models.Order					"Updated order"
//	@Failure		400		{object}	response.ErrorResponse			"Invalid status or order already terminal"
//	@Failure		401		{object}	response.ErrorResponse			"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse			"Order belongs to another admin"
//	@Failure		404		{object}	response.ErrorResponse			"Order not found"
//	@Failure		409		{object}	response.ErrorResponse			"Order changed concurrently"
//	@Failure		500		{object}	response.ErrorResponse			"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders/admin/{id}/status [put]
func (h *OrderHandler) UpdateAdminOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid admin order status input")
			return
		}

		order, err := h.orderService.UpdateStatusAsAdmin(r.Context(), principal, id, req.Status)
		if err != nil {
			logger.Warn("Failed to update order status",
				slog.String("orderId", id.String()),
				slog.String("status", string(req.Status)),
				slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

// UpdatePaymentStatus godoc
//	@Summary		Record payment status
//	@Description	Payment status is tracked independently of the order status.
//	@Tags			Admin Orders
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string								true	"Order ID (UUID)"	Format(uuid)
//	@Param			status	body		models.UpdatePaymentStatusRequest	true	"Payment status"
//	@Success		200		{object}	models.Order						"Updated order"
//	@Failure		400		{object}	response.ErrorResponse				"Invalid payment status"
//	@Failure		401		{object}	response.ErrorResponse				"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse				"Order belongs to another admin"
//	@Failure		404		{object}	response.ErrorResponse				"Order not found"
//	@Failure		500		{object}	response.ErrorResponse				"Internal server error"
//	@Security		BearerAuth
//	@Router			/orders/admin/{id}/payment-status [put]
func (h *OrderHandler) UpdatePaymentStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdatePaymentStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid payment status input")
			return
		}

		order, err := h.orderService.UpdatePaymentStatus(r.Context(), principal, id, req.PaymentStatus)
		if err != nil {
			logger.Warn("Failed to update payment status", slog.String("orderId", id.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}
