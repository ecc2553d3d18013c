package domain

// Customer is a repeat buyer tracked for credit and loyalty.
type Customer struct {
	Record
	Name     string  `json:"name"`
	Phone    string  `json:"phone,omitempty"`
	Email    string  `json:"email,omitempty"`
	Address  string  `json:"address,omitempty"`
	Balance  float64 `json:"balance,omitempty"` // Outstanding credit balance
	Visits   int     `json:"visits,omitempty"`
	Note     string  `json:"note,omitempty"`
}
