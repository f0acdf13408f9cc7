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

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

// GetCart godoc
//	@Summary		Get the shop's cart
//	@Description	Returns the cart priced at current catalog prices. A shop without a cart gets an empty one.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.Cart				"Current cart"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		403	{object}	response.ErrorResponse	"Role cannot manage a cart"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/cart [get]
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), principal.ID)
		if err != nil {
			logger.Error("Failed to get cart", slog.String("userId", principal.ID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// AddItem godoc
//	@Summary		Add a product to the cart
//	@Description	Adds a line or increments the existing line for the product. The cart is created on first use.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			item	body		models.AddItemRequest	true	"Product and quantity (defaults to 1)"
//	@Success		200		{object}	models.Cart				"Updated cart"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error or quantity above the per-line cap"
//	@Failure		401		{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404		{object}	response.ErrorResponse	"Product not found or inactive"
//	@Failure		500		{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/cart/items [post]
func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add item input")
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), principal.ID, &req)
		if err != nil {
			logger.Error("Failed to add item to cart", slog.String("productId", req.ProductID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// UpdateQuantity godoc
//	@Summary		Set a cart line's quantity
//	@Description	Overwrites the quantity of a line already in the cart. Zero removes the line.
//	@Tags			Cart
//	@Accept			json
//	@Produce		json
//	@Param			productId	path		string						true	"Product ID (UUID)"	Format(uuid)
//	@Param			quantity	body		models.UpdateQuantityRequest	true	"New quantity"
//	@Success		200			{object}	models.Cart					"Updated cart"
//	@Failure		400			{object}	response.ErrorResponse		"Invalid product ID or negative quantity"
//	@Failure		401			{object}	response.ErrorResponse		"Authentication required"
//	@Failure		404			{object}	response.ErrorResponse		"Product is not in the cart"
//	@Failure		500			{object}	response.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/cart/items/{productId} [put]
func (h *CartHandler) UpdateQuantity() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateQuantityRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid update quantity input")
			return
		}

		cart, err := h.cartService.UpdateQuantity(r.Context(), principal.ID, productID, *req.Quantity)
		if err != nil {
			logger.Error("Failed to update cart quantity", slog.String("productId", productID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// RemoveItem godoc
//	@Summary		Remove a product from the cart
//	@Tags			Cart
//	@Produce		json
//	@Param			productId	path		string					true	"Product ID (UUID)"	Format(uuid)
//	@Success		200			{object}	models.Cart				"Updated cart"
//	@Failure		400			{object}	response.ErrorResponse	"Invalid product ID"
//	@Failure		401			{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404			{object}	response.ErrorResponse	"Product is not in the cart"
//	@Failure		500			{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/cart/items/{productId} [delete]
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), principal.ID, productID)
		if err != nil {
			logger.Error("Failed to remove cart item", slog.String("productId", productID.String()), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

// ClearCart godoc
//	@Summary		Empty the cart
//	@Description	Removes every line. The cart itself stays active.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.Cart				"Empty cart"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/cart [delete]
func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		cart, err := h.cartService.ClearCart(r.Context(), principal.ID)
		if err != nil {
			logger.Error("Failed to clear cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Cart cleared", slog.String("userId", principal.ID.String()))
		response.Success(w, http.StatusOK, cart)
	}
}

// GetCount godoc
//	@Summary		Count items in the cart
//	@Description	Sum of line quantities; zero when the shop has no cart.
//	@Tags			Cart
//	@Produce		json
//	@Success		200	{object}	models.CartCount		"Item count"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/cart/count [get]
func (h *CartHandler) GetCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		principal, ok := principalOrUnauthorized(w, r, logger)
		if !ok {
			return
		}

		count, err := h.cartService.GetCount(r.Context(), principal.ID)
		if err != nil {
			logger.Error("Failed to count cart items", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, count)
	}
}
