package order

import (
	"errors"
	"testing"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/tokens"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validAddress = ShippingAddress{
	Street:     "12 MG Road",
	City:       "Bengaluru",
	State:      "Karnataka",
	PostalCode: "560001",
}

func toteLine() []tokens.LineItem {
	return []tokens.LineItem{{ProductID: "p-1", Name: "Tote", Price: 299, TokenPrice: 50, Quantity: 2}}
}

func TestFinalizeOrder(t *testing.T) {
	econ := tokens.DefaultEconomy()

	t.Run("Success", func(t *testing.T) {
		o, err := FinalizeOrder(econ, 9, toteLine(), validAddress, "UPI", 50, 100)
		require.NoError(t, err)

		assert.Equal(t, StatusPlaced, o.Status)
		assert.Equal(t, PaymentUPI, o.PaymentMethod)
		assert.NotEmpty(t, o.ID)
		assert.Contains(t, o.OrderNumber, "ECO-")
		assert.Len(t, o.Timeline, 1)

		assert.InDelta(t, 598.0, o.Billing.Subtotal, 0.001)
		assert.LessOrEqual(t, o.Billing.EcoTokenValue, econ.TokenValueInCurrency(50))
		assert.Equal(t, int64(50), o.Billing.EcoTokensApplied)
		assert.InDelta(t, 98.64, o.Billing.Taxes, 0.001)
		assert.InDelta(t, 686.64, o.Billing.FinalAmount, 0.001)
		assert.InDelta(t, 598.0, o.Items[0].Subtotal, 0.001)
	})

	t.Run("TrimsAddress", func(t *testing.T) {
		addr := validAddress
		addr.City = "  Pune "
		o, err := FinalizeOrder(econ, 9, toteLine(), addr, PaymentCOD, 0, 0)
		require.NoError(t, err)
		assert.Equal(t, "Pune", o.ShippingAddress.City)
	})

	t.Run("BlankAddressField", func(t *testing.T) {
		addr := validAddress
		addr.PostalCode = "   "
		_, err := FinalizeOrder(econ, 9, toteLine(), addr, PaymentCOD, 0, 0)

		var verr *apperr.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "shippingAddress.postalCode", verr.Field)
	})

	t.Run("EmptyCart", func(t *testing.T) {
		_, err := FinalizeOrder(econ, 9, nil, validAddress, PaymentCOD, 0, 0)
		var verr *apperr.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("ZeroQuantity", func(t *testing.T) {
		lines := toteLine()
		lines[0].Quantity = 0
		_, err := FinalizeOrder(econ, 9, lines, validAddress, PaymentCOD, 0, 0)
		var verr *apperr.ValidationError
		assert.True(t, errors.As(err, &verr))
	})

	t.Run("UnknownPaymentMethod", func(t *testing.T) {
		_, err := FinalizeOrder(econ, 9, toteLine(), validAddress, "bitcoin", 0, 0)
		var verr *apperr.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "paymentMethod", verr.Field)
	})

	t.Run("TokensAboveBalance", func(t *testing.T) {
		_, err := FinalizeOrder(econ, 9, toteLine(), validAddress, PaymentCard, 80, 60)

		var terr *apperr.InsufficientTokensError
		require.True(t, errors.As(err, &terr))
		assert.Equal(t, int64(80), terr.Requested)
		assert.Equal(t, int64(60), terr.MaxRedeemable)
	})

	t.Run("TokensAboveCartTokenTotal", func(t *testing.T) {
		_, err := FinalizeOrder(econ, 9, toteLine(), validAddress, PaymentCard, 150, 500)

		var terr *apperr.InsufficientTokensError
		require.True(t, errors.As(err, &terr))
		assert.Equal(t, int64(100), terr.MaxRedeemable)
	})

	t.Run("NegativeTokens", func(t *testing.T) {
		_, err := FinalizeOrder(econ, 9, toteLine(), validAddress, PaymentCard, -1, 500)
		var terr *apperr.InsufficientTokensError
		assert.True(t, errors.As(err, &terr))
	})
}
