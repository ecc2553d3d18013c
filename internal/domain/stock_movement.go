package domain

// Stock movement directions. Two spellings exist in the wild: the
// original app wrote "stock_in"/"stock_out" in some releases and
// "in"/"out" in others. Both are accepted on import and normalized
// to the long form.
const (
	MovementStockIn  = "stock_in"
	MovementStockOut = "stock_out"
)

// StockMovement records a manual inventory adjustment.
type StockMovement struct {
	Record
	ProductID   string  `json:"productId,omitempty"`
	ProductName string  `json:"productName,omitempty"`
	Type        string  `json:"type"` // "stock_in" or "stock_out" (legacy: "in"/"out")
	Quantity    float64 `json:"quantity"`
	Reason      string  `json:"reason,omitempty"`
}

// ValidMovementType reports whether t is an accepted movement type,
// including the legacy short spellings.
func ValidMovementType(t string) bool {
	switch t {
	case MovementStockIn, MovementStockOut, "in", "out":
		return true
	default:
		return false
	}
}

// NormalizeMovementType maps legacy short spellings to the long form.
// Unknown values are returned unchanged.
func NormalizeMovementType(t string) string {
	switch t {
	case "in":
		return MovementStockIn
	case "out":
		return MovementStockOut
	default:
		return t
	}
}
