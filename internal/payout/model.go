package payout

import "context"

type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodUPI          Method = "upi"
	MethodCash         Method = "cash"
)

// ParseMethod normalizes the admin's choice; anything unknown is a bank transfer.
func ParseMethod(s string) Method {
	switch Method(s) {
	case MethodUPI, MethodCash:
		return Method(s)
	}
	return MethodBankTransfer
}

type Request struct {
	Reference    string
	CollectionID string
	CollectorID  uint
	Amount       int64
	Method       Method
	Description  string
}

type Result struct {
	ProviderReference string `json:"providerReference"`
	Status            string `json:"status"`
}

// Gateway moves settled INR amounts to collectors.
type Gateway interface {
	Disburse(ctx context.Context, req Request) (*Result, error)
}

type xenditPayoutRequest struct {
	ReferenceID       string            `json:"reference_id"`
	ChannelCode       string            `json:"channel_code"`
	ChannelProperties map[string]string `json:"channel_properties"`
	Amount            int64             `json:"amount"`
	Currency          string            `json:"currency"`
	Description       string            `json:"description,omitempty"`
	Metadata          map[string]any    `json:"metadata,omitempty"`
}

type xenditPayoutResponse struct {
	ID          string `json:"id"`
	ReferenceID string `json:"reference_id"`
	Status      string `json:"status"`
	Amount      int64  `json:"amount"`
}
