package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aaravmahajanofficial/grocery-order-platform/internal/models"
	"github.com/google/uuid"
)

// ProductRepository is the read side of the catalog. Catalog writes belong to
// the admin tooling.
type ProductRepository interface {
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

// GetProductByID returns the product regardless of its active flag.
func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := withQueryTimeout(ctx)
	defer cancel()

	product := &models.Product{}

	query := `
        SELECT p.id, p.admin_id, p.name, p.price, p.is_active,
               COALESCE(c.name, ''), COALESCE(u.name, '')
        FROM products p
        LEFT JOIN categories c ON p.category_id = c.id
        LEFT JOIN units u ON p.unit_id = u.id
        WHERE p.id = $1`

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&product.ID, &product.AdminID, &product.Name, &product.Price, &product.IsActive, &product.Category, &product.Unit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}

		return nil, fmt.Errorf("querying database: %w", err)
	}

	return product, nil
}
