package domain

// Expense is a business cost entry outside of inventory purchases.
type Expense struct {
	Record
	CategoryID   string  `json:"categoryId,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
	Description  string  `json:"description"`
	Amount       float64 `json:"amount"`
}

// ExpenseCategory groups expenses for reporting.
type ExpenseCategory struct {
	Record
	Name string `json:"name"`
}
