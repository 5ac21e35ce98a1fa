package commerce

import (
	"time"

	"github.com/google/uuid"
)

// Product is an item an owner sells at the venue (drinks, balls, rentals).
type Product struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Name      string    `db:"name" json:"name"`
	Price     int64     `db:"price" json:"price"`
	Stock     int       `db:"stock" json:"stock"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Sale struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ProductID uuid.UUID `db:"product_id" json:"product_id"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Total     int64     `db:"total" json:"total"`
	SoldBy    uuid.UUID `db:"sold_by" json:"sold_by"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type SalesSummary struct {
	ProductID   uuid.UUID `db:"product_id" json:"product_id"`
	ProductName string    `db:"product_name" json:"product_name"`
	Quantity    int       `db:"quantity" json:"quantity"`
	Total       int64     `db:"total" json:"total"`
}
