package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/canchapp/canchapp/internal/commerce"
	"github.com/canchapp/canchapp/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type ShopService struct {
	db    *sqlx.DB
	store *store.CommerceStore
	now   func() time.Time
}

func NewShopService(db *sqlx.DB, store *store.CommerceStore) *ShopService {
	return &ShopService{db: db, store: store, now: time.Now}
}

type ProductInput struct {
	Name   string `json:"name"`
	Price  int64  `json:"price"`
	Stock  int    `json:"stock"`
	Active *bool  `json:"active"`
}

func (in ProductInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return invalidf("name is required")
	case in.Price < 0:
		return invalidf("price cannot be negative")
	case in.Stock < 0:
		return invalidf("stock cannot be negative")
	}
	return nil
}

func (s *ShopService) CreateProduct(ctx context.Context, in ProductInput) (*commerce.Product, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := &commerce.Product{
		ID:        uuid.New(),
		OwnerID:   u.ID,
		Name:      strings.TrimSpace(in.Name),
		Price:     in.Price,
		Stock:     in.Stock,
		Active:    in.Active == nil || *in.Active,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return p, nil
}

// ownProduct loads a product of the current owner. Products of other owners look missing.
func (s *ShopService) ownProduct(ctx context.Context, id uuid.UUID) (*commerce.Product, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	p, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound("product", err)
	}
	if p.OwnerID != u.ID {
		return nil, fmt.Errorf("product: %w", ErrNotFound)
	}
	return p, nil
}

func (s *ShopService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*commerce.Product, error) {
	p, err := s.ownProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	p.Name = strings.TrimSpace(in.Name)
	p.Price = in.Price
	p.Stock = in.Stock
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return nil, notFound("product", err)
	}
	return p, nil
}

func (s *ShopService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	p, err := s.ownProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, p.OwnerID, p.ID); err != nil {
		return notFound("product", err)
	}
	return nil
}

func (s *ShopService) ListProducts(ctx context.Context) ([]commerce.Product, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListProducts(ctx, u.ID)
}

// RecordSale sells quantity units of a product at its current price.
func (s *ShopService) RecordSale(ctx context.Context, productID uuid.UUID, quantity int) (*commerce.Sale, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, invalidf("quantity must be positive")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := s.store.GetProductTx(ctx, tx, productID)
	if err != nil {
		return nil, notFound("product", err)
	}
	if p.OwnerID != u.ID {
		return nil, fmt.Errorf("product: %w", ErrNotFound)
	}
	if !p.Active {
		return nil, conflictf("product %s is not active", p.Name)
	}
	ok, err := s.store.DecrementStock(ctx, tx, p.ID, quantity)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, conflictf("only %d units of %s left", p.Stock, p.Name)
	}

	sale := &commerce.Sale{
		ID:        uuid.New(),
		ProductID: p.ID,
		OwnerID:   u.ID,
		Quantity:  quantity,
		Total:     p.Price * int64(quantity),
		SoldBy:    u.ID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.CreateSale(ctx, tx, sale); err != nil {
		return nil, fmt.Errorf("failed to record sale: %w", err)
	}
	return sale, tx.Commit()
}

func (s *ShopService) ListSales(ctx context.Context) ([]commerce.Sale, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.ListSales(ctx, u.ID)
}

func (s *ShopService) Summary(ctx context.Context) ([]commerce.SalesSummary, error) {
	u, err := requireOwner(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.SalesSummary(ctx, u.ID)
}
