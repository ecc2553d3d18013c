// Package store provides the embedded entity store backing the POS engine.
//
// The snapshot export/import engine treats this package as an opaque CRUD
// collaborator: typed collections with get/add/update primitives. It never
// issues raw queries.
package store

import (
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
)

// Key prefixes per collection. A record lives at "<prefix><id>", index
// entries at "<prefix>idx:<index>:<key>".
const (
	productPrefix         = "product:"
	categoryPrefix        = "category:"
	supplierPrefix        = "supplier:"
	customerPrefix        = "customer:"
	salePrefix            = "sale:"
	saleItemPrefix        = "saleitem:"
	expensePrefix         = "expense:"
	expenseCategoryPrefix = "expensecat:"
	stockMovementPrefix   = "movement:"
	bulkPricingPrefix     = "bulkprice:"
)

// Store wraps a Badger database instance with typed entity collections.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	Products          *Entity[domain.Product]
	Categories        *Entity[domain.Category]
	Suppliers         *Entity[domain.Supplier]
	Customers         *Entity[domain.Customer]
	Sales             *Entity[domain.Sale]
	SaleItems         *Entity[domain.SaleItem]
	Expenses          *Entity[domain.Expense]
	ExpenseCategories *Entity[domain.ExpenseCategory]
	StockMovements    *Entity[domain.StockMovement]
	BulkPricing       *Entity[domain.BulkPricingTier]
}

// BarcodeIndex is the name of the unique barcode index on products.
const BarcodeIndex = "barcode"

// New creates a new Store instance with the given database path.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger,
	}

	s.Products = NewEntity[domain.Product](s, productPrefix).
		WithIndex(BarcodeIndex, func(p *domain.Product) []string {
			if p.Barcode == "" {
				return nil
			}
			return []string{p.Barcode}
		})
	s.Categories = NewEntity[domain.Category](s, categoryPrefix)
	s.Suppliers = NewEntity[domain.Supplier](s, supplierPrefix)
	s.Customers = NewEntity[domain.Customer](s, customerPrefix)
	s.Sales = NewEntity[domain.Sale](s, salePrefix)
	s.SaleItems = NewEntity[domain.SaleItem](s, saleItemPrefix)
	s.Expenses = NewEntity[domain.Expense](s, expensePrefix)
	s.ExpenseCategories = NewEntity[domain.ExpenseCategory](s, expenseCategoryPrefix)
	s.StockMovements = NewEntity[domain.StockMovement](s, stockMovementPrefix)
	s.BulkPricing = NewEntity[domain.BulkPricingTier](s, bulkPricingPrefix)

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close badger db: %w", err)
	}
	return nil
}
