package store

import (
	"context"

	"github.com/canchapp/canchapp/internal/commerce"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type CommerceStore struct {
	db *sqlx.DB
}

const (
	productColumns = `id, owner_id, name, price, stock, active, created_at`
	saleColumns    = `id, product_id, owner_id, quantity, total, sold_by, created_at`
)

func NewCommerceStore(db *sqlx.DB) *CommerceStore {
	return &CommerceStore{db: db}
}

func (s *CommerceStore) CreateProduct(ctx context.Context, p *commerce.Product) error {
	_, err := s.db.NamedExecContext(ctx, `INSERT INTO products (`+productColumns+`)
		VALUES (:id, :owner_id, :name, :price, :stock, :active, :created_at)`, p)
	return err
}

func (s *CommerceStore) UpdateProduct(ctx context.Context, p *commerce.Product) error {
	res, err := s.db.NamedExecContext(ctx, `UPDATE products SET
		name = :name,
		price = :price,
		stock = :stock,
		active = :active
		WHERE id = :id AND owner_id = :owner_id`, p)
	if err != nil {
		return err
	}
	return rowsOrNotFound(res)
}

func (s *CommerceStore) DeleteProduct(ctx context.Context, ownerID, id uuid.UUID) error {
	return execOne(ctx, s.db, "DELETE FROM products WHERE id = ? AND owner_id = ?", id, ownerID)
}

func (s *CommerceStore) GetProduct(ctx context.Context, id uuid.UUID) (*commerce.Product, error) {
	return getProduct(ctx, s.db, id)
}

func (s *CommerceStore) GetProductTx(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*commerce.Product, error) {
	return getProduct(ctx, tx, id)
}

func getProduct(ctx context.Context, q sqlx.QueryerContext, id uuid.UUID) (*commerce.Product, error) {
	var p commerce.Product
	if err := sqlx.GetContext(ctx, q, &p, "SELECT "+productColumns+" FROM products WHERE id = ?", id); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *CommerceStore) ListProducts(ctx context.Context, ownerID uuid.UUID) ([]commerce.Product, error) {
	var list []commerce.Product
	err := s.db.SelectContext(ctx, &list,
		"SELECT "+productColumns+" FROM products WHERE owner_id = ? ORDER BY name ASC", ownerID)
	return list, err
}

// DecrementStock takes quantity units out of stock only if that many are available.
// It reports false when the stock was insufficient.
func (s *CommerceStore) DecrementStock(ctx context.Context, tx *sqlx.Tx, productID uuid.UUID, quantity int) (bool, error) {
	res, err := tx.ExecContext(ctx, "UPDATE products SET stock = stock - ? WHERE id = ? AND stock >= ?", quantity, productID, quantity)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (s *CommerceStore) CreateSale(ctx context.Context, tx *sqlx.Tx, sale *commerce.Sale) error {
	_, err := tx.NamedExecContext(ctx, `INSERT INTO sales (`+saleColumns+`)
		VALUES (:id, :product_id, :owner_id, :quantity, :total, :sold_by, :created_at)`, sale)
	return err
}

func (s *CommerceStore) ListSales(ctx context.Context, ownerID uuid.UUID) ([]commerce.Sale, error) {
	var list []commerce.Sale
	err := s.db.SelectContext(ctx, &list,
		"SELECT "+saleColumns+" FROM sales WHERE owner_id = ? ORDER BY created_at DESC", ownerID)
	return list, err
}

// SalesSummary totals the owner's sales per product, best sellers first.
func (s *CommerceStore) SalesSummary(ctx context.Context, ownerID uuid.UUID) ([]commerce.SalesSummary, error) {
	var list []commerce.SalesSummary
	err := s.db.SelectContext(ctx, &list, `SELECT s.product_id, p.name AS product_name,
			SUM(s.quantity) AS quantity, SUM(s.total) AS total
		FROM sales s
		JOIN products p ON p.id = s.product_id
		WHERE s.owner_id = ?
		GROUP BY s.product_id, p.name
		ORDER BY total DESC, product_name ASC`, ownerID)
	return list, err
}
