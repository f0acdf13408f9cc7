package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/api/middleware"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/errors"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/metrics"
	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	repository "github.com/aaravmahajanofficial/grocery-order-platform/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	GetCount(ctx context.Context, userID uuid.UUID) (*models.CartCount, error)
}

type cartService struct {
	repo            repository.CartRepository
	productRepo     repository.ProductRepository
	pricing         *PricingEngine
	maxLineQuantity int
}

func NewCartService(repo repository.CartRepository, productRepo repository.ProductRepository, pricing *PricingEngine, maxLineQuantity int) CartService {
	return &cartService{repo: repo, productRepo: productRepo, pricing: pricing, maxLineQuantity: maxLineQuantity}
}

// GetCart returns the cart priced at current catalog prices. A user without a
// cart gets an empty one; nothing is persisted.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.repo.GetCartByUserID(ctx, userID)
	if err != nil {
		if stdErrors.Is(err, repository.ErrCartNotFound) {
			return emptyCart(userID), nil
		}

		return nil, errors.DatabaseError("Failed to get cart").WithError(err)
	}

	s.pricing.PriceCart(cart)

	return cart, nil
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {

	logger := middleware.LoggerFromContext(ctx)

	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	if quantity < 0 {
		return nil, errors.InvalidQuantityError("Quantity must be positive")
	}

	if _, err := lookupActiveProduct(ctx, s.productRepo, req.ProductID); err != nil {
		return nil, err
	}

	cartID, err := s.repo.EnsureCart(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to create cart").WithError(err)
	}

	newQuantity, err := s.repo.AddItem(ctx, cartID, req.ProductID, quantity, s.maxLineQuantity)
	if err != nil {
		if stdErrors.Is(err, repository.ErrQuantityLimit) {
			return nil, errors.InvalidQuantityError(fmt.Sprintf("Quantity per product cannot exceed %d", s.maxLineQuantity))
		}

		return nil, errors.DatabaseError("Failed to add item to cart").WithError(err)
	}

	metrics.CartMutation("add")
	logger.Info("Item added to cart", slog.String("productId", req.ProductID.String()), slog.Int("quantity", newQuantity))

	return s.GetCart(ctx, userID)
}

// UpdateQuantity sets the line to an absolute quantity; zero removes it.
func (s *cartService) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.Cart, error) {

	if quantity < 0 {
		return nil, errors.InvalidQuantityError("Quantity cannot be negative")
	}

	if quantity > s.maxLineQuantity {
		return nil, errors.InvalidQuantityError(fmt.Sprintf("Quantity per product cannot exceed %d", s.maxLineQuantity))
	}

	if quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	if err := s.repo.SetItemQuantity(ctx, userID, productID, quantity); err != nil {
		return nil, mapCartLineError(err, productID)
	}

	metrics.CartMutation("update")

	return s.GetCart(ctx, userID)
}

func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {

	if err := s.repo.RemoveItem(ctx, userID, productID); err != nil {
		return nil, mapCartLineError(err, productID)
	}

	metrics.CartMutation("remove")

	return s.GetCart(ctx, userID)
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	if err := s.repo.ClearCart(ctx, userID); err != nil {
		return nil, errors.DatabaseError("Failed to clear cart").WithError(err)
	}

	metrics.CartMutation("clear")

	return s.GetCart(ctx, userID)
}

func (s *cartService) GetCount(ctx context.Context, userID uuid.UUID) (*models.CartCount, error) {

	count, err := s.repo.CountItems(ctx, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to count cart items").WithError(err)
	}

	return &models.CartCount{Count: count}, nil
}

// lookupActiveProduct treats an inactive product as missing.
func lookupActiveProduct(ctx context.Context, repo repository.ProductRepository, productID uuid.UUID) (*models.Product, error) {

	product, err := repo.GetProductByID(ctx, productID)
	if err != nil {
		if stdErrors.Is(err, repository.ErrProductNotFound) {
			return nil, errors.ProductNotFoundError(productID.String())
		}

		return nil, errors.DatabaseError("Failed to get product").WithError(err)
	}

	if !product.IsActive {
		return nil, errors.ProductNotFoundError(productID.String())
	}

	return product, nil
}

func mapCartLineError(err error, productID uuid.UUID) error {
	if stdErrors.Is(err, repository.ErrItemNotFound) {
		return errors.ItemNotFoundError(productID.String())
	}

	return errors.DatabaseError("Failed to update cart").WithError(err)
}

func emptyCart(userID uuid.UUID) *models.Cart {
	return &models.Cart{
		UserID:     userID,
		IsActive:   true,
		Items:      []models.CartLine{},
		TotalItems: 0,
		TotalPrice: decimal.Zero,
	}
}
