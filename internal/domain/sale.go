package domain

// Payment methods known to the app. Unknown values are accepted with a
// warning rather than rejected - older devices shipped custom methods.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentMobile   = "mobile"
	PaymentCredit   = "credit"
	PaymentTransfer = "transfer"
)

// KnownPaymentMethods lists the soft-allowed payment methods.
var KnownPaymentMethods = []string{
	PaymentCash, PaymentCard, PaymentMobile, PaymentCredit, PaymentTransfer,
}

// Sale is a completed checkout transaction.
type Sale struct {
	Record
	CustomerID    string     `json:"customerId,omitempty"`
	CustomerName  string     `json:"customerName,omitempty"` // Fallback reference for snapshots without IDs
	TotalAmount   float64    `json:"totalAmount"`
	Discount      float64    `json:"discount,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Note          string     `json:"note,omitempty"`
	Items         []SaleItem `json:"items,omitempty"` // Inline items, present in complete snapshots
}

// SaleItem is a single line of a sale.
type SaleItem struct {
	Record
	SaleID      string  `json:"saleId,omitempty"`
	ProductID   string  `json:"productId,omitempty"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
	Discount    float64 `json:"discount,omitempty"`
	Subtotal    float64 `json:"subtotal"`
}
