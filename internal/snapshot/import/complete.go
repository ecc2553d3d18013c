package snapimport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
	"github.com/Iceblockp/mobile-pos-sub001/internal/id"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/store"
)

// completeStep is one stage of a complete import: a typed importer plus
// the sections it consumes from the source snapshot.
type completeStep struct {
	dataType snapshot.DataType
	sections []string
	run      func(ctx context.Context, path string, opts Options) (*Result, error)
}

// ImportCompleteBackup drives the typed importers in dependency order,
// handing each one a transient single-type artifact cut from the source
// snapshot. The transient artifact is discarded whether or not its
// import succeeded. Sections with no usable records are skipped.
func (i *Importer) ImportCompleteBackup(ctx context.Context, path string, opts Options) (*Result, error) {
	start := time.Now()
	res, snap, err := i.open(ctx, "importCompleteBackup", snapshot.TypeAll, path, &opts)
	if err != nil || snap == nil {
		return res, err
	}

	steps := []completeStep{
		{snapshot.TypeProducts,
			[]string{snapshot.SectionCategories, snapshot.SectionSuppliers, snapshot.SectionProducts},
			i.ImportProducts},
		{snapshot.TypeCustomers,
			[]string{snapshot.SectionCustomers},
			i.ImportCustomers},
		{snapshot.TypeSales,
			[]string{snapshot.SectionSales, snapshot.SectionSaleItems},
			i.ImportSales},
		{snapshot.TypeExpenses,
			[]string{snapshot.SectionExpenseCategories, snapshot.SectionExpenses},
			i.ImportExpenses},
		{snapshot.TypeBulkPricing,
			[]string{snapshot.SectionBulkPricing},
			i.ImportBulkPricing},
		{snapshot.TypeStockMovements,
			[]string{snapshot.SectionStockMovements},
			i.ImportStockMovements},
	}

	subOpts := opts
	subOpts.OnProgress = nil
	subOpts.CreateMissingReferences = false

	for stepIdx, step := range steps {
		snapshot.Report(opts.OnProgress, snapshot.StageImporting, stepIdx, len(steps))
		if res.DetailedCounts[step.dataType.PrimarySection()] == 0 {
			continue
		}

		sub, err := i.runStep(ctx, snap, step, subOpts)
		if err != nil {
			return nil, err
		}
		res.merge(sub)
		if !sub.Success {
			res.Success = false
		}
	}
	snapshot.Report(opts.OnProgress, snapshot.StageImporting, len(steps), len(steps))

	return i.finish(res, start, opts), nil
}

// runStep writes the step's sections to a transient artifact and runs
// the matching typed importer on it.
func (i *Importer) runStep(ctx context.Context, snap *snapshot.Snapshot, step completeStep, opts Options) (*Result, error) {
	part := snapshot.New(step.dataType)
	part.Metadata.Version = snap.Metadata.Version
	for _, key := range step.sections {
		if sec, ok := snap.Section(key); ok && !sec.Corrupted {
			part.SetSection(key, sec)
		}
	}
	if primary, ok := part.Section(step.dataType.PrimarySection()); ok {
		part.Metadata.RecordCount = primary.Len()
	}

	tmpPath := filepath.Join(os.TempDir(),
		fmt.Sprintf("pos-import-%s-%s%s", step.dataType, id.MustToken(), snapshot.ArtifactSuffix))
	if _, err := snapshot.Write(tmpPath, part); err != nil {
		return nil, fmt.Errorf("write transient artifact: %w", err)
	}
	defer os.Remove(tmpPath)

	return step.run(ctx, tmpPath, opts)
}

// Decision settles one pending conflict from an earlier run with
// conflictResolution "ask".
type Decision struct {
	// Action is "update" to overwrite the existing record with the
	// incoming one, anything else to leave it untouched.
	Action string
	// ExistingID is the record to overwrite, from the conflict entry.
	ExistingID string
	// Incoming is the conflict entry's incoming record.
	Incoming any
}

// ResolveConflicts applies caller-mediated decisions collected from a
// previous import run. It never runs interleaved with a batch run.
func (i *Importer) ResolveConflicts(ctx context.Context, decisions []Decision) (*Result, error) {
	res := newResult("")
	res.Success = true

	for idx, d := range decisions {
		if d.Action != ResolutionUpdate {
			res.Skipped++
			continue
		}

		var err error
		switch rec := d.Incoming.(type) {
		case *domain.Product:
			err = applyDecision(ctx, i.store.Products, d.ExistingID, rec, &rec.Record)
		case *domain.Customer:
			err = applyDecision(ctx, i.store.Customers, d.ExistingID, rec, &rec.Record)
		case *domain.Sale:
			err = applyDecision(ctx, i.store.Sales, d.ExistingID, rec, &rec.Record)
		case *domain.Expense:
			err = applyDecision(ctx, i.store.Expenses, d.ExistingID, rec, &rec.Record)
		case *domain.StockMovement:
			err = applyDecision(ctx, i.store.StockMovements, d.ExistingID, rec, &rec.Record)
		case *domain.BulkPricingTier:
			err = applyDecision(ctx, i.store.BulkPricing, d.ExistingID, rec, &rec.Record)
		default:
			res.addError(CodeImportError, "", idx, "decision %d: unsupported record type %T", idx, d.Incoming)
			res.Skipped++
			continue
		}

		if err != nil {
			res.addError(CodeImportError, "", idx, "decision %d: %v", idx, err)
			res.Skipped++
			continue
		}
		res.Updated++
	}
	return res, nil
}

func applyDecision[T any](ctx context.Context, entity *store.Entity[T], existingID string, rec *T, meta *domain.Record) error {
	meta.ID = existingID
	meta.Touch()
	return entity.Update(ctx, existingID, rec)
}
