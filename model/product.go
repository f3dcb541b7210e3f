package model

import "time"

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product is a purchasable marketplace listing. Price is stored in minor
// currency units; the checkout orchestrator always recomputes the charge amount
// from this record, never from client input.
type Product struct {
	ID        int64     `json:"-"`
	ProductID string    `json:"id"`
	SellerID  string    `json:"seller_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Available reports whether the product can currently be purchased.
func (product *Product) Available() bool {
	return product.Status == ProductStatusActive
}
