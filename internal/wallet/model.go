package wallet

import "time"

type Reason string

const (
	ReasonCollectionReward Reason = "collection_reward"
	ReasonOrderRedemption  Reason = "order_redemption"
	ReasonOrderRefund      Reason = "order_refund"
)

// Wallet is the EcoToken balance of one user. The database row is the
// authoritative value; nothing in process caches it.
type Wallet struct {
	UserID         uint      `json:"userId"`
	CurrentBalance int64     `json:"currentBalance"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Transaction struct {
	ID           int64     `json:"id"`
	UserID       uint      `json:"userId"`
	Delta        int64     `json:"delta"`
	BalanceAfter int64     `json:"balanceAfter"`
	Reason       Reason    `json:"reason"`
	Reference    string    `json:"reference"`
	CreatedAt    time.Time `json:"createdAt"`
}

type TransactionPage struct {
	Items []Transaction `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}
