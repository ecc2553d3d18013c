package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
)

func TestValidateProduct_Valid(t *testing.T) {
	r := ValidateProduct(&domain.Product{Name: "Coffee", Price: 2500, Cost: 1800, Stock: 10})
	assert.True(t, r.Valid)
	assert.Empty(t, r.Errors)
	assert.Empty(t, r.Warnings)
}

func TestValidateProduct_AccumulatesErrors(t *testing.T) {
	r := ValidateProduct(&domain.Product{Price: -5, Stock: -1})
	require.False(t, r.Valid)
	require.Len(t, r.Errors, 3)

	fields := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		fields = append(fields, e.Field)
	}
	assert.ElementsMatch(t, []string{"name", "price", "stock"}, fields)
	assert.Equal(t, CodeRequiredField, r.Errors[0].Code)
}

func TestValidateProduct_LowMarginWarning(t *testing.T) {
	r := ValidateProduct(&domain.Product{Name: "Loss Leader", Price: 100, Cost: 150, Stock: 5})
	assert.True(t, r.Valid, "low margin is a warning, not an error")
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "at or below cost")
}

func TestValidateProduct_ZeroCostAllowed(t *testing.T) {
	r := ValidateProduct(&domain.Product{Name: "Gift", Price: 100})
	assert.True(t, r.Valid)
	assert.Empty(t, r.Warnings)
}

func TestValidateCustomer(t *testing.T) {
	assert.True(t, ValidateCustomer(&domain.Customer{Name: "Aye Aye"}).Valid)
	assert.False(t, ValidateCustomer(&domain.Customer{}).Valid)
	assert.False(t, ValidateCustomer(&domain.Customer{Name: "X", Visits: -2}).Valid)
}

func TestValidateSale_UnknownPaymentMethodIsWarning(t *testing.T) {
	r := ValidateSale(&domain.Sale{TotalAmount: 500, PaymentMethod: "barter"})
	assert.True(t, r.Valid)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "barter")
}

func TestValidateSale_MissingTotal(t *testing.T) {
	r := ValidateSale(&domain.Sale{PaymentMethod: domain.PaymentCash})
	require.False(t, r.Valid)
	assert.Equal(t, "totalAmount", r.Errors[0].Field)
}

func TestValidateSale_SubtotalMismatchWarning(t *testing.T) {
	r := ValidateSale(&domain.Sale{
		TotalAmount: 1000,
		Items: []domain.SaleItem{
			{ProductName: "Coffee", Quantity: 2, Price: 500, Subtotal: 999},
		},
	})
	assert.True(t, r.Valid)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "subtotal")
}

func TestValidateSale_ItemErrorsAccumulate(t *testing.T) {
	r := ValidateSale(&domain.Sale{
		TotalAmount: 1000,
		Items: []domain.SaleItem{
			{Quantity: 0, Price: 100},
			{ProductName: "Tea", Quantity: 1, Price: 100, Subtotal: 100},
		},
	})
	require.False(t, r.Valid)
	assert.Equal(t, "items[0].productId", r.Errors[0].Field)
	assert.Equal(t, "items[0].quantity", r.Errors[1].Field)
}

func TestValidateExpense(t *testing.T) {
	assert.True(t, ValidateExpense(&domain.Expense{Description: "Rent", Amount: 300000}).Valid)

	r := ValidateExpense(&domain.Expense{Amount: -1})
	require.False(t, r.Valid)
	assert.Len(t, r.Errors, 2)
}

func TestValidateStockMovement_BothSpellings(t *testing.T) {
	for _, typ := range []string{"stock_in", "stock_out", "in", "out"} {
		r := ValidateStockMovement(&domain.StockMovement{ProductName: "Coffee", Type: typ, Quantity: 5})
		assert.True(t, r.Valid, "type %q should be accepted", typ)
	}

	r := ValidateStockMovement(&domain.StockMovement{ProductName: "Coffee", Type: "sideways", Quantity: 5})
	require.False(t, r.Valid)
	assert.Equal(t, CodeInvalidEnum, r.Errors[0].Code)
}

func TestValidateBulkPricing(t *testing.T) {
	assert.True(t, ValidateBulkPricing(&domain.BulkPricingTier{ProductName: "Coffee", MinQuantity: 10, Price: 2000}).Valid)

	r := ValidateBulkPricing(&domain.BulkPricingTier{})
	require.False(t, r.Valid)
	assert.Len(t, r.Errors, 3)
}
