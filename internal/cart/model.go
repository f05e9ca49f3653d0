package cart

import (
	"time"

	"ecochain-be/internal/tokens"
)

type Item struct {
	ID         string    `json:"id"`
	UserID     uint      `json:"userId"`
	ProductID  string    `json:"productId"`
	Name       string    `json:"name"`
	Price      float64   `json:"price"`
	TokenPrice int64     `json:"tokenPrice"`
	Stock      int       `json:"stock"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Cart struct {
	Items          []Item  `json:"items"`
	CartTokenTotal int64   `json:"cartTokenTotal"`
	Subtotal       float64 `json:"subtotal"`
}

type SetQuantityParams struct {
	UserID    uint
	ProductID string
	Quantity  int
}

// LineItems converts cart rows into the billing input used by checkout.
func LineItems(items []Item) []tokens.LineItem {
	out := make([]tokens.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, tokens.LineItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Price:      it.Price,
			TokenPrice: it.TokenPrice,
			Quantity:   it.Quantity,
		})
	}
	return out
}
