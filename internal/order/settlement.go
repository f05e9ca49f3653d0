package order

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/tokens"
	"ecochain-be/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Normalize trims every address field.
func (a ShippingAddress) Normalize() ShippingAddress {
	return ShippingAddress{
		Street:     strings.TrimSpace(a.Street),
		City:       strings.TrimSpace(a.City),
		State:      strings.TrimSpace(a.State),
		PostalCode: strings.TrimSpace(a.PostalCode),
	}
}

func validateAddress(a ShippingAddress) error {
	err := validate.Struct(a)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return apperr.Validation("shippingAddress."+verrs[0].Field(), "is required")
	}
	return apperr.Validation("shippingAddress", err.Error())
}

// FinalizeOrder validates a checkout and builds the immutable order snapshot.
// Nothing is persisted here.
func FinalizeOrder(
	econ *tokens.Economy,
	userID uint,
	items []tokens.LineItem,
	address ShippingAddress,
	method PaymentMethod,
	tokenAmount int64,
	balance int64,
) (*Order, error) {
	address = address.Normalize()
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, apperr.Validation("items", "cart is empty")
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, apperr.Validation("items.quantity", "must be greater than zero")
		}
	}

	method = PaymentMethod(strings.ToLower(strings.TrimSpace(string(method))))
	if !method.Valid() {
		return nil, apperr.Validation("paymentMethod", "must be one of cod, upi, card, netbanking, wallet")
	}

	maxRedeemable := tokens.MaxRedeemableTokens(tokens.CartTokenTotal(items), balance)
	if tokenAmount < 0 || tokenAmount > maxRedeemable {
		available := balance
		if available < 0 {
			available = 0
		}
		return nil, &apperr.InsufficientTokensError{
			Requested:     tokenAmount,
			Available:     available,
			MaxRedeemable: maxRedeemable,
		}
	}

	summary := econ.ComputeOrderSummary(items, tokenAmount)

	orderItems := make([]Item, 0, len(items))
	for _, it := range items {
		orderItems = append(orderItems, Item{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Price:      it.Price,
			TokenPrice: it.TokenPrice,
			Quantity:   it.Quantity,
			Subtotal:   it.Price * float64(it.Quantity),
		})
	}

	now := time.Now().UTC()
	return &Order{
		ID:              uuid.NewString(),
		OrderNumber:     utils.GenerateOrderNumber(),
		UserID:          userID,
		Items:           orderItems,
		ShippingAddress: address,
		PaymentMethod:   method,
		Billing:         billingFrom(summary),
		Status:          StatusPlaced,
		Timeline: []TimelineEntry{
			{Status: StatusPlaced, ActorID: userID, At: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
