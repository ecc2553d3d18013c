package validation

import (
	"fmt"
	"math"
	"slices"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
)

// Field error codes attached to record validation failures.
const (
	CodeRequiredField = "REQUIRED_FIELD"
	CodeInvalidRange  = "INVALID_RANGE"
	CodeInvalidEnum   = "INVALID_ENUM"
)

// FieldError describes a single failed check on a record.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Result accumulates errors and warnings for one record. A record with
// warnings but no errors is still valid.
type Result struct {
	Valid    bool         `json:"valid"`
	Errors   []FieldError `json:"errors,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

func (r *Result) fail(field, code, message string) {
	r.Valid = false
	r.Errors = append(r.Errors, FieldError{Field: field, Message: message, Code: code})
}

func (r *Result) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func newResult() Result {
	return Result{Valid: true}
}

// ValidateProduct checks a product record. Cost is optional; a product
// priced at or below its cost gets a low-margin warning, not an error.
func ValidateProduct(p *domain.Product) Result {
	r := newResult()
	if p.Name == "" {
		r.fail("name", CodeRequiredField, "product name is required")
	}
	if p.Price <= 0 {
		r.fail("price", CodeInvalidRange, "price must be greater than 0")
	}
	if p.Cost < 0 {
		r.fail("cost", CodeInvalidRange, "cost must not be negative")
	}
	if p.Stock < 0 {
		r.fail("stock", CodeInvalidRange, "stock must not be negative")
	}
	if p.MinStock < 0 {
		r.fail("minStock", CodeInvalidRange, "minStock must not be negative")
	}
	if r.Valid && p.Cost > 0 && p.Price <= p.Cost {
		r.warn("product %q is priced at or below cost", p.Name)
	}
	return r
}

// ValidateCategory checks a category record.
func ValidateCategory(c *domain.Category) Result {
	r := newResult()
	if c.Name == "" {
		r.fail("name", CodeRequiredField, "category name is required")
	}
	return r
}

// ValidateSupplier checks a supplier record.
func ValidateSupplier(s *domain.Supplier) Result {
	r := newResult()
	if s.Name == "" {
		r.fail("name", CodeRequiredField, "supplier name is required")
	}
	return r
}

// ValidateCustomer checks a customer record.
func ValidateCustomer(c *domain.Customer) Result {
	r := newResult()
	if c.Name == "" {
		r.fail("name", CodeRequiredField, "customer name is required")
	}
	if c.Visits < 0 {
		r.fail("visits", CodeInvalidRange, "visits must not be negative")
	}
	return r
}

// ValidateSale checks a sale record and its items. An unknown payment
// method is a warning rather than an error so older snapshots import.
func ValidateSale(s *domain.Sale) Result {
	r := newResult()
	if s.TotalAmount <= 0 {
		r.fail("totalAmount", CodeRequiredField, "sale total amount is required and must be greater than 0")
	}
	if s.Discount < 0 {
		r.fail("discount", CodeInvalidRange, "discount must not be negative")
	}
	if s.PaymentMethod != "" && !slices.Contains(domain.KnownPaymentMethods, s.PaymentMethod) {
		r.warn("unknown payment method %q", s.PaymentMethod)
	}
	for i := range s.Items {
		validateSaleItem(&r, i, &s.Items[i])
	}
	return r
}

// ValidateSaleItem checks a standalone sale item record.
func ValidateSaleItem(item *domain.SaleItem) Result {
	r := newResult()
	validateSaleItem(&r, -1, item)
	return r
}

func validateSaleItem(r *Result, idx int, item *domain.SaleItem) {
	field := func(name string) string {
		if idx < 0 {
			return name
		}
		return fmt.Sprintf("items[%d].%s", idx, name)
	}

	if item.ProductID == "" && item.ProductName == "" {
		r.fail(field("productId"), CodeRequiredField, "sale item needs a product id or name")
	}
	if item.Quantity <= 0 {
		r.fail(field("quantity"), CodeInvalidRange, "quantity must be greater than 0")
	}
	if item.Price < 0 {
		r.fail(field("price"), CodeInvalidRange, "price must not be negative")
	}

	expected := item.Quantity*item.Price - item.Discount
	if item.Subtotal != 0 && math.Abs(item.Subtotal-expected) > 0.01 {
		r.warn("sale item %q subtotal %.2f does not match quantity x price - discount (%.2f)",
			item.ProductName, item.Subtotal, expected)
	}
}

// ValidateExpense checks an expense record.
func ValidateExpense(e *domain.Expense) Result {
	r := newResult()
	if e.Description == "" {
		r.fail("description", CodeRequiredField, "expense description is required")
	}
	if e.Amount <= 0 {
		r.fail("amount", CodeInvalidRange, "amount must be greater than 0")
	}
	return r
}

// ValidateExpenseCategory checks an expense category record.
func ValidateExpenseCategory(c *domain.ExpenseCategory) Result {
	r := newResult()
	if c.Name == "" {
		r.fail("name", CodeRequiredField, "expense category name is required")
	}
	return r
}

// ValidateStockMovement checks a stock movement record. Both the short
// and the prefixed movement-type spellings are accepted.
func ValidateStockMovement(m *domain.StockMovement) Result {
	r := newResult()
	if m.ProductID == "" && m.ProductName == "" {
		r.fail("productId", CodeRequiredField, "stock movement needs a product id or name")
	}
	if m.Type == "" {
		r.fail("type", CodeRequiredField, "movement type is required")
	} else if !domain.ValidMovementType(m.Type) {
		r.fail("type", CodeInvalidEnum,
			fmt.Sprintf("movement type %q must be one of stock_in, stock_out, in, out", m.Type))
	}
	if m.Quantity <= 0 {
		r.fail("quantity", CodeInvalidRange, "quantity must be greater than 0")
	}
	return r
}

// ValidateBulkPricing checks a bulk pricing tier record.
func ValidateBulkPricing(b *domain.BulkPricingTier) Result {
	r := newResult()
	if b.ProductID == "" && b.ProductName == "" {
		r.fail("productId", CodeRequiredField, "bulk pricing tier needs a product id or name")
	}
	if b.MinQuantity <= 0 {
		r.fail("minQuantity", CodeInvalidRange, "minQuantity must be greater than 0")
	}
	if b.Price <= 0 {
		r.fail("price", CodeInvalidRange, "price must be greater than 0")
	}
	return r
}
