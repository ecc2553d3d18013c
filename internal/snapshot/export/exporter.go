// Package export serializes store contents into snapshot artifacts.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/store"
)

// Options controls one export call.
type Options struct {
	// OutputPath overrides the default timestamped artifact path.
	OutputPath string
	// OnProgress receives synchronous progress reports.
	OnProgress snapshot.ProgressFunc
}

// Result describes a completed export.
type Result struct {
	Path        string            `json:"path"`
	DataType    snapshot.DataType `json:"dataType"`
	RecordCount int               `json:"recordCount"`
	Counts      map[string]int    `json:"counts"`
	Size        int64             `json:"size"`
	Checksum    string            `json:"checksum"`
	Duration    time.Duration     `json:"duration"`
	ExportDate  time.Time         `json:"exportDate"`
}

// Preview summarizes what a full export would produce, without writing.
type Preview struct {
	TotalRecords      int            `json:"totalRecords"`
	DataCounts        map[string]int `json:"dataCounts"`
	EstimatedFileSize int64          `json:"estimatedFileSize"`
	ExportDate        time.Time      `json:"exportDate"`
}

// Exporter builds snapshot artifacts from store contents.
type Exporter struct {
	store     *store.Store
	snapshots *snapshot.Service
	logger    *logger.Logger
}

// New creates an Exporter.
func New(s *store.Store, snapshots *snapshot.Service, log *logger.Logger) *Exporter {
	return &Exporter{store: s, snapshots: snapshots, logger: log}
}

// sectionLoader reads one store collection into a snapshot section.
type sectionLoader struct {
	key  string
	load func(ctx context.Context) (snapshot.Section, int, error)
}

func loader[T any](key string, entity *store.Entity[T]) sectionLoader {
	return sectionLoader{
		key: key,
		load: func(ctx context.Context) (snapshot.Section, int, error) {
			records, err := entity.GetAll(ctx)
			if err != nil {
				return snapshot.Section{}, 0, fmt.Errorf("load %s: %w", key, err)
			}
			sec, err := snapshot.SectionOf(records)
			if err != nil {
				return snapshot.Section{}, 0, fmt.Errorf("encode %s: %w", key, err)
			}
			return sec, len(records), nil
		},
	}
}

// loadersFor returns the sections included in an export of the given
// type. A typed export carries its reference sections too, so the
// artifact imports cleanly into an empty store.
func (e *Exporter) loadersFor(dataType snapshot.DataType) []sectionLoader {
	switch dataType {
	case snapshot.TypeProducts:
		return []sectionLoader{
			loader(snapshot.SectionCategories, e.store.Categories),
			loader(snapshot.SectionSuppliers, e.store.Suppliers),
			loader(snapshot.SectionProducts, e.store.Products),
		}
	case snapshot.TypeSales:
		return []sectionLoader{
			loader(snapshot.SectionSales, e.store.Sales),
			loader(snapshot.SectionSaleItems, e.store.SaleItems),
		}
	case snapshot.TypeCustomers:
		return []sectionLoader{
			loader(snapshot.SectionCustomers, e.store.Customers),
		}
	case snapshot.TypeExpenses:
		return []sectionLoader{
			loader(snapshot.SectionExpenseCategories, e.store.ExpenseCategories),
			loader(snapshot.SectionExpenses, e.store.Expenses),
		}
	case snapshot.TypeStockMovements:
		return []sectionLoader{
			loader(snapshot.SectionStockMovements, e.store.StockMovements),
		}
	case snapshot.TypeBulkPricing:
		return []sectionLoader{
			loader(snapshot.SectionBulkPricing, e.store.BulkPricing),
		}
	default:
		return []sectionLoader{
			loader(snapshot.SectionCategories, e.store.Categories),
			loader(snapshot.SectionSuppliers, e.store.Suppliers),
			loader(snapshot.SectionProducts, e.store.Products),
			loader(snapshot.SectionCustomers, e.store.Customers),
			loader(snapshot.SectionSales, e.store.Sales),
			loader(snapshot.SectionSaleItems, e.store.SaleItems),
			loader(snapshot.SectionExpenseCategories, e.store.ExpenseCategories),
			loader(snapshot.SectionExpenses, e.store.Expenses),
			loader(snapshot.SectionBulkPricing, e.store.BulkPricing),
			loader(snapshot.SectionStockMovements, e.store.StockMovements),
		}
	}
}

// ExportProducts exports products with their categories and suppliers.
func (e *Exporter) ExportProducts(ctx context.Context, opts Options) (*Result, error) {
	return e.export(ctx, snapshot.TypeProducts, opts)
}

// ExportSales exports sales and their line items.
func (e *Exporter) ExportSales(ctx context.Context, opts Options) (*Result, error) {
	return e.export(ctx, snapshot.TypeSales, opts)
}

// ExportCustomers exports customers.
func (e *Exporter) ExportCustomers(ctx context.Context, opts Options) (*Result, error) {
	return e.export(ctx, snapshot.TypeCustomers, opts)
}

// ExportExpenses exports expenses with their categories.
func (e *Exporter) ExportExpenses(ctx context.Context, opts Options) (*Result, error) {
	return e.export(ctx, snapshot.TypeExpenses, opts)
}

// ExportStockMovements exports stock movements.
func (e *Exporter) ExportStockMovements(ctx context.Context, opts Options) (*Result, error) {
	return e.export(ctx, snapshot.TypeStockMovements, opts)
}

// ExportBulkPricing exports bulk pricing tiers.
func (e *Exporter) ExportBulkPricing(ctx context.Context, opts Options) (*Result, error) {
	return e.export(ctx, snapshot.TypeBulkPricing, opts)
}

// ExportAll exports the complete dataset.
func (e *Exporter) ExportAll(ctx context.Context, opts Options) (*Result, error) {
	return e.export(ctx, snapshot.TypeAll, opts)
}

func (e *Exporter) export(ctx context.Context, dataType snapshot.DataType, opts Options) (*Result, error) {
	start := time.Now()

	if err := e.snapshots.EnsureDir(); err != nil {
		return nil, err
	}
	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = e.snapshots.DefaultPath(dataType)
	}

	e.logger.Info("exporting snapshot", "data_type", dataType, "output", outputPath)

	snap, counts, err := e.build(ctx, dataType, opts.OnProgress)
	if err != nil {
		return nil, err
	}

	snapshot.Report(opts.OnProgress, snapshot.StageWriting, 0, 1)
	written, err := snapshot.Write(outputPath, snap)
	if err != nil {
		return nil, err
	}
	snapshot.Report(opts.OnProgress, snapshot.StageCompleted, 1, 1)

	result := &Result{
		Path:        written.Path,
		DataType:    dataType,
		RecordCount: snap.Metadata.RecordCount,
		Counts:      counts,
		Size:        written.Size,
		Checksum:    written.Checksum,
		Duration:    time.Since(start),
		ExportDate:  snap.Metadata.ExportDate,
	}

	e.logger.Info("export complete",
		"path", result.Path,
		"records", result.RecordCount,
		"size", result.Size,
		"duration", result.Duration,
		"checksum", result.Checksum)
	return result, nil
}

// build assembles the snapshot in memory. The declared record count is
// the primary section's length for typed exports and the total for
// complete exports.
func (e *Exporter) build(ctx context.Context, dataType snapshot.DataType, onProgress snapshot.ProgressFunc) (*snapshot.Snapshot, map[string]int, error) {
	loaders := e.loadersFor(dataType)
	snap := snapshot.New(dataType)
	counts := make(map[string]int, len(loaders))
	total := 0

	for i, l := range loaders {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		snapshot.Report(onProgress, snapshot.StageExporting, i, len(loaders))

		sec, n, err := l.load(ctx)
		if err != nil {
			return nil, nil, err
		}
		snap.SetSection(l.key, sec)
		counts[l.key] = n
		total += n
	}
	snapshot.Report(onProgress, snapshot.StageExporting, len(loaders), len(loaders))

	if key := dataType.PrimarySection(); key != "" {
		snap.Metadata.RecordCount = counts[key]
	} else {
		snap.Metadata.RecordCount = total
	}
	return snap, counts, nil
}

// PreviewAll reports counts and an estimated artifact size for a
// complete export without touching disk.
func (e *Exporter) PreviewAll(ctx context.Context) (*Preview, error) {
	snap, counts, err := e.build(ctx, snapshot.TypeAll, nil)
	if err != nil {
		return nil, err
	}

	size, err := snapshot.EncodedSize(snap)
	if err != nil {
		return nil, fmt.Errorf("estimate size: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	return &Preview{
		TotalRecords:      total,
		DataCounts:        counts,
		EstimatedFileSize: size,
		ExportDate:        snap.Metadata.ExportDate,
	}, nil
}
