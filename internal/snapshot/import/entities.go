package snapimport

import (
	"context"
	"time"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/match"
	"github.com/Iceblockp/mobile-pos-sub001/internal/validation"
)

func categoryKeys(c *domain.Category) match.Keys {
	return match.Keys{ID: c.ID, Name: c.Name}
}

func supplierKeys(s *domain.Supplier) match.Keys {
	return match.Keys{ID: s.ID, Name: s.Name}
}

func productKeys(p *domain.Product) match.Keys {
	return match.Keys{ID: p.ID, Name: p.Name, Barcode: p.Barcode}
}

func customerKeys(c *domain.Customer) match.Keys {
	return match.Keys{ID: c.ID, Name: c.Name, Phone: c.Phone}
}

// ImportProducts restores the products section, creating referenced
// categories and suppliers first.
func (i *Importer) ImportProducts(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	res, snap, err := i.open(ctx, "importProducts", snapshot.TypeProducts, path, &opts)
	if err != nil || snap == nil {
		return res, err
	}

	categories := importDependencies(ctx, i, res, snap,
		snapshot.SectionCategories, "Category", i.store.Categories,
		categoryKeys,
		func(c *domain.Category) *domain.Record { return &c.Record },
		validation.ValidateCategory)
	suppliers := importDependencies(ctx, i, res, snap,
		snapshot.SectionSuppliers, "Supplier", i.store.Suppliers,
		supplierKeys,
		func(s *domain.Supplier) *domain.Record { return &s.Record },
		validation.ValidateSupplier)

	plan := batchPlan[domain.Product]{
		entityType: "Product",
		section:    snapshot.SectionProducts,
		entity:     i.store.Products,
		validate:   validation.ValidateProduct,
		keys:       productKeys,
		meta:       func(p *domain.Product) *domain.Record { return &p.Record },
		prepare: func(p *domain.Product, idx int) bool {
			if !opts.ValidateReferences {
				return true
			}
			resolveOptional(res, categories, &p.CategoryID, "", "category", "product "+p.Name)
			resolveOptional(res, suppliers, &p.SupplierID, "", "supplier", "product "+p.Name)
			return true
		},
	}
	if err := runBatches(ctx, i, res, snap, opts, plan); err != nil {
		return nil, err
	}
	return i.finish(res, start, opts), nil
}

// ImportCustomers restores the customers section.
func (i *Importer) ImportCustomers(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	res, snap, err := i.open(ctx, "importCustomers", snapshot.TypeCustomers, path, &opts)
	if err != nil || snap == nil {
		return res, err
	}

	plan := batchPlan[domain.Customer]{
		entityType: "Customer",
		section:    snapshot.SectionCustomers,
		entity:     i.store.Customers,
		validate:   validation.ValidateCustomer,
		keys:       customerKeys,
		meta:       func(c *domain.Customer) *domain.Record { return &c.Record },
	}
	if err := runBatches(ctx, i, res, snap, opts, plan); err != nil {
		return nil, err
	}
	return i.finish(res, start, opts), nil
}

// ImportSales restores the sales section and then any standalone sale
// items, resolving product and customer references.
func (i *Importer) ImportSales(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	res, snap, err := i.open(ctx, "importSales", snapshot.TypeSales, path, &opts)
	if err != nil || snap == nil {
		return res, err
	}

	var products, customers *refCache
	if opts.ValidateReferences {
		if products, err = i.productCache(ctx); err != nil {
			return nil, err
		}
		if customers, err = loadRefCache(ctx, i.store.Customers, func(c *domain.Customer) (string, string) {
			return c.ID, c.Name
		}); err != nil {
			return nil, err
		}
	}

	plan := batchPlan[domain.Sale]{
		entityType: "Sale",
		section:    snapshot.SectionSales,
		entity:     i.store.Sales,
		validate:   validation.ValidateSale,
		keys:       func(s *domain.Sale) match.Keys { return match.Keys{ID: s.ID} },
		meta:       func(s *domain.Sale) *domain.Record { return &s.Record },
		prepare: func(s *domain.Sale, idx int) bool {
			if !opts.ValidateReferences {
				return true
			}
			resolveOptional(res, customers, &s.CustomerID, s.CustomerName, "customer", "sale")
			for j := range s.Items {
				item := &s.Items[j]
				resolveOptional(res, products, &item.ProductID, item.ProductName, "product", "sale item "+item.ProductName)
			}
			return true
		},
	}
	if err := runBatches(ctx, i, res, snap, opts, plan); err != nil {
		return nil, err
	}

	if err := i.importSaleItems(ctx, res, snap, opts, products); err != nil {
		return nil, err
	}
	return i.finish(res, start, opts), nil
}

// importSaleItems restores the standalone saleItems section. Items must
// reference a known sale; product references fall back to name.
func (i *Importer) importSaleItems(ctx context.Context, res *Result, snap *snapshot.Snapshot, opts Options, products *refCache) error {
	sec, ok := snap.Section(snapshot.SectionSaleItems)
	if !ok || sec.Corrupted || sec.Len() == 0 {
		return nil
	}

	sales, err := loadRefCache(ctx, i.store.Sales, func(s *domain.Sale) (string, string) {
		return s.ID, ""
	})
	if err != nil {
		res.addError(CodeImportError, snapshot.SectionSaleItems, -1, "cannot read existing sales: %v", err)
		return nil
	}

	plan := batchPlan[domain.SaleItem]{
		entityType: "SaleItem",
		section:    snapshot.SectionSaleItems,
		entity:     i.store.SaleItems,
		validate:   validation.ValidateSaleItem,
		keys:       func(it *domain.SaleItem) match.Keys { return match.Keys{ID: it.ID} },
		meta:       func(it *domain.SaleItem) *domain.Record { return &it.Record },
		prepare: func(it *domain.SaleItem, idx int) bool {
			if !resolveRequired(sales, &it.SaleID, "") {
				res.addError(CodeMissingSale, snapshot.SectionSaleItems, idx,
					"sale item %d references unknown sale %q", idx, it.SaleID)
				return false
			}
			if opts.ValidateReferences && !resolveRequired(products, &it.ProductID, it.ProductName) {
				res.addError(CodeMissingProduct, snapshot.SectionSaleItems, idx,
					"sale item %d references unknown product %q", idx, refLabel(it.ProductID, it.ProductName))
				return false
			}
			return true
		},
	}
	return runBatches(ctx, i, res, snap, opts, plan)
}

// ImportExpenses restores the expenses section, creating referenced
// expense categories first.
func (i *Importer) ImportExpenses(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	res, snap, err := i.open(ctx, "importExpenses", snapshot.TypeExpenses, path, &opts)
	if err != nil || snap == nil {
		return res, err
	}

	categories := importDependencies(ctx, i, res, snap,
		snapshot.SectionExpenseCategories, "ExpenseCategory", i.store.ExpenseCategories,
		func(c *domain.ExpenseCategory) match.Keys { return match.Keys{ID: c.ID, Name: c.Name} },
		func(c *domain.ExpenseCategory) *domain.Record { return &c.Record },
		validation.ValidateExpenseCategory)

	plan := batchPlan[domain.Expense]{
		entityType: "Expense",
		section:    snapshot.SectionExpenses,
		entity:     i.store.Expenses,
		validate:   validation.ValidateExpense,
		keys:       func(e *domain.Expense) match.Keys { return match.Keys{ID: e.ID} },
		meta:       func(e *domain.Expense) *domain.Record { return &e.Record },
		prepare: func(e *domain.Expense, idx int) bool {
			if !opts.ValidateReferences {
				return true
			}
			resolveOptional(res, categories, &e.CategoryID, e.CategoryName, "expense category", "expense "+e.Description)
			return true
		},
	}
	if err := runBatches(ctx, i, res, snap, opts, plan); err != nil {
		return nil, err
	}
	return i.finish(res, start, opts), nil
}

// ImportStockMovements restores the stockMovements section. Movements
// must reference a known product when reference validation is on;
// legacy movement-type spellings are normalized.
func (i *Importer) ImportStockMovements(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	res, snap, err := i.open(ctx, "importStockMovements", snapshot.TypeStockMovements, path, &opts)
	if err != nil || snap == nil {
		return res, err
	}

	var products *refCache
	if opts.ValidateReferences {
		if products, err = i.productCache(ctx); err != nil {
			return nil, err
		}
	}

	plan := batchPlan[domain.StockMovement]{
		entityType: "StockMovement",
		section:    snapshot.SectionStockMovements,
		entity:     i.store.StockMovements,
		validate:   validation.ValidateStockMovement,
		keys:       func(m *domain.StockMovement) match.Keys { return match.Keys{ID: m.ID} },
		meta:       func(m *domain.StockMovement) *domain.Record { return &m.Record },
		prepare: func(m *domain.StockMovement, idx int) bool {
			m.Type = domain.NormalizeMovementType(m.Type)
			if opts.ValidateReferences && !resolveRequired(products, &m.ProductID, m.ProductName) {
				res.addError(CodeMissingProduct, snapshot.SectionStockMovements, idx,
					"stock movement %d references unknown product %q", idx, refLabel(m.ProductID, m.ProductName))
				return false
			}
			return true
		},
	}
	if err := runBatches(ctx, i, res, snap, opts, plan); err != nil {
		return nil, err
	}
	return i.finish(res, start, opts), nil
}

// ImportBulkPricing restores the bulkPricing section. Tiers must
// reference a known product when reference validation is on.
func (i *Importer) ImportBulkPricing(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	res, snap, err := i.open(ctx, "importBulkPricing", snapshot.TypeBulkPricing, path, &opts)
	if err != nil || snap == nil {
		return res, err
	}

	var products *refCache
	if opts.ValidateReferences {
		if products, err = i.productCache(ctx); err != nil {
			return nil, err
		}
	}

	plan := batchPlan[domain.BulkPricingTier]{
		entityType: "BulkPricing",
		section:    snapshot.SectionBulkPricing,
		entity:     i.store.BulkPricing,
		validate:   validation.ValidateBulkPricing,
		keys:       func(b *domain.BulkPricingTier) match.Keys { return match.Keys{ID: b.ID} },
		meta:       func(b *domain.BulkPricingTier) *domain.Record { return &b.Record },
		prepare: func(b *domain.BulkPricingTier, idx int) bool {
			if opts.ValidateReferences && !resolveRequired(products, &b.ProductID, b.ProductName) {
				res.addError(CodeMissingProduct, snapshot.SectionBulkPricing, idx,
					"bulk pricing tier %d references unknown product %q", idx, refLabel(b.ProductID, b.ProductName))
				return false
			}
			return true
		},
	}
	if err := runBatches(ctx, i, res, snap, opts, plan); err != nil {
		return nil, err
	}
	return i.finish(res, start, opts), nil
}

func (i *Importer) productCache(ctx context.Context) (*refCache, error) {
	return loadRefCache(ctx, i.store.Products, func(p *domain.Product) (string, string) {
		return p.ID, p.Name
	})
}

func refLabel(refID, name string) string {
	if refID != "" {
		return refID
	}
	if name != "" {
		return name
	}
	return "unknown"
}
