package domain

// Product is a sellable item tracked in inventory.
type Product struct {
	Record
	Name        string  `json:"name"`
	Barcode     string  `json:"barcode,omitempty"`
	Price       float64 `json:"price"`          // Selling price per unit
	Cost        float64 `json:"cost,omitempty"` // Purchase cost per unit
	Stock       float64 `json:"stock"`          // Current stock level
	MinStock    float64 `json:"minStock,omitempty"`
	Unit        string  `json:"unit,omitempty"` // "pcs", "kg", ...
	CategoryID  string  `json:"categoryId,omitempty"`
	SupplierID  string  `json:"supplierId,omitempty"`
	Description string  `json:"description,omitempty"`
}

// Category groups products for navigation and reporting.
type Category struct {
	Record
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Supplier is a product source referenced by products.
type Supplier struct {
	Record
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// BulkPricingTier is a quantity-based price override for a product.
type BulkPricingTier struct {
	Record
	ProductID   string  `json:"productId,omitempty"`
	ProductName string  `json:"productName,omitempty"` // Fallback reference for snapshots without IDs
	MinQuantity float64 `json:"minQuantity"`
	Price       float64 `json:"price"`
}
