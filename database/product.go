package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FredvanRijswijk/novatrek-engine/internal/apierror"
	"github.com/FredvanRijswijk/novatrek-engine/model"
)

func (d Datasource) CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO novatrek.products (product_id, seller_id, name, price, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, product.ProductID, product.SellerID, product.Name, product.Price, product.Currency, product.Status, product.CreatedAt)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create product", err)
	}
	return product, nil
}

func (d Datasource) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT product_id, seller_id, name, price, currency, status, created_at
		FROM novatrek.products
		WHERE product_id = $1
	`, id)

	product := &model.Product{}
	err := row.Scan(&product.ProductID, &product.SellerID, &product.Name, &product.Price, &product.Currency, &product.Status, &product.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Product with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve product", err)
	}
	return product, nil
}
