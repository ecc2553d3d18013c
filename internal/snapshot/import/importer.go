package snapimport

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
	"github.com/Iceblockp/mobile-pos-sub001/internal/id"
	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/recovery"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/match"
	"github.com/Iceblockp/mobile-pos-sub001/internal/store"
	"github.com/Iceblockp/mobile-pos-sub001/internal/validation"
)

// Importer restores snapshot artifacts into the store.
type Importer struct {
	store       *store.Store
	validator   *validation.Validator
	checkpoints *recovery.Checkpoints
	limiter     *rate.Limiter
	batchSize   int
	logger      *logger.Logger
}

// New creates an Importer. defaultBatchSize applies when a call leaves
// Options.BatchSize unset.
func New(s *store.Store, v *validation.Validator, checkpoints *recovery.Checkpoints, defaultBatchSize int, log *logger.Logger) *Importer {
	return &Importer{
		store:       s,
		validator:   v,
		checkpoints: checkpoints,
		// Batches yield briefly so a long import never monopolizes the
		// host process.
		limiter:   rate.NewLimiter(rate.Every(5*time.Millisecond), 1),
		batchSize: defaultBatchSize,
		logger:    log,
	}
}

// open runs the shared pre-flight for every import call: option
// validation, artifact read, availability check, and strict structural
// validation. When the returned snapshot is nil and err is nil, the
// result is a finalized failure to hand back to the caller.
func (i *Importer) open(ctx context.Context, operation string, dataType snapshot.DataType, path string, opts *Options) (*Result, *snapshot.Snapshot, error) {
	res := newResult(dataType)

	*opts = opts.withDefaults(i.batchSize)
	if err := i.validator.Validate(opts); err != nil {
		return nil, nil, err
	}
	if opts.CreateMissingReferences {
		res.addWarning("createMissingReferences is not supported; missing references are reported, not created")
	}

	if _, err := i.checkpoints.Create(operation, map[string]any{"path": path}); err != nil {
		return nil, nil, err
	}

	i.logger.Info("importing snapshot", "operation", operation, "path", path,
		"batch_size", opts.BatchSize, "conflict_resolution", opts.ConflictResolution)

	snapshot.Report(opts.OnProgress, snapshot.StageReading, 0, 1)
	snap, err := snapshot.Read(path)
	if err != nil {
		return res.fail(CodeImportFailed, "cannot read snapshot: %v", err), nil, nil
	}

	snapshot.Report(opts.OnProgress, snapshot.StageValidating, 0, 1)
	av := validation.ValidateAvailability(snap, dataType)
	res.AvailableDataTypes = av.AvailableTypes
	res.DetailedCounts = av.DetailedCounts
	if !av.Valid {
		res.ValidationMessage = av.Message
		return res.fail(CodeMissingDataType, "%s", av.Message), nil, nil
	}

	if issue := validation.ValidateStructure(snap, dataType); issue != nil {
		res.ValidationMessage = issue.Message
		return res.fail(issue.Code, "%s", issue.Message), nil, nil
	}

	// The snapshot was read and its primary data exists; from here on
	// per-record failures are recorded, never fatal.
	res.Success = true
	return res, snap, nil
}

// finish stamps the duration and emits the terminal progress report.
func (i *Importer) finish(res *Result, start time.Time, opts Options) *Result {
	res.Duration = time.Since(start)
	snapshot.Report(opts.OnProgress, snapshot.StageCompleted, 1, 1)
	i.logger.Info("import complete",
		"data_type", res.DataType,
		"imported", res.Imported,
		"updated", res.Updated,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
		"conflicts", len(res.Conflicts),
		"duration", res.Duration)
	return res
}

// batchPlan wires one entity type into the shared batch loop.
type batchPlan[T any] struct {
	entityType string
	section    string
	entity     *store.Entity[T]
	validate   func(*T) validation.Result
	keys       match.KeyFunc[T]
	meta       func(*T) *domain.Record
	// prepare normalizes a decoded record and resolves its references.
	// Returning false skips the record; prepare reports why.
	prepare func(rec *T, idx int) bool
}

// runBatches iterates the primary section in bounded batches, applying
// validation, conflict resolution, and store writes per record. A
// single bad record never aborts the run.
func runBatches[T any](ctx context.Context, imp *Importer, res *Result, snap *snapshot.Snapshot, opts Options, p batchPlan[T]) error {
	sec, _ := snap.Section(p.section)
	total := sec.Len()
	res.processed(p.section)

	existing, err := p.entity.GetAll(ctx)
	if err != nil {
		res.Success = false
		res.addError(CodeImportFailed, p.section, -1, "cannot read existing %s: %v", p.section, err)
		return nil
	}
	detector := match.NewDetector(p.entityType, p.keys, existing)

	for idx, rec := range sec.Records {
		// Cooperative yield between batches.
		if idx > 0 && idx%opts.BatchSize == 0 {
			if err := imp.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		importRecord(ctx, imp, res, detector, opts, p, rec, idx)
		res.ActualProcessedCounts[p.section]++
		snapshot.Report(opts.OnProgress, snapshot.StageImporting, idx+1, total)
	}
	snapshot.Report(opts.OnProgress, snapshot.StageImporting, total, total)
	return nil
}

// importRecord handles one raw entry end to end.
func importRecord[T any](ctx context.Context, imp *Importer, res *Result, detector *match.Detector[T], opts Options, p batchPlan[T], raw snapshot.Record, idx int) {
	var rec T
	if err := raw.Decode(&rec); err != nil {
		res.addError(CodeMalformedRecord, p.section, idx, "record %d is not a valid object", idx)
		res.Skipped++
		return
	}

	vr := p.validate(&rec)
	res.Warnings = append(res.Warnings, vr.Warnings...)
	if !vr.Valid {
		for _, fe := range vr.Errors {
			res.addError(fe.Code, p.section, idx, "record %d: %s %s", idx, fe.Field, fe.Message)
		}
		res.Skipped++
		return
	}

	if p.prepare != nil && !p.prepare(&rec, idx) {
		res.Skipped++
		return
	}

	meta := p.meta(&rec)
	if c := detector.Detect(&rec); c != nil {
		settleConflict(ctx, res, opts, p, c, meta, idx)
		return
	}

	// No conflict: create, preserving a syntactically valid incoming id
	// so cross-references inside the same snapshot keep resolving.
	meta.ID = validRecordID(meta.ID)
	if meta.CreatedAt.IsZero() {
		meta.InitTimestamps()
	} else {
		meta.Touch()
	}

	err := p.entity.Create(ctx, meta.ID, &rec)
	if err != nil && recovery.Classify(err) == recovery.ActionRetry {
		// Constraint-class failure: retry once under a fresh id.
		meta.ID = id.NewRecordID()
		err = p.entity.Create(ctx, meta.ID, &rec)
	}
	if err != nil {
		res.addError(CodeImportError, p.section, idx, "record %d: %v", idx, err)
		res.Skipped++
		return
	}
	res.Imported++
}

// settleConflict applies the configured policy to a detected conflict.
func settleConflict[T any](ctx context.Context, res *Result, opts Options, p batchPlan[T], c *match.Conflict[T], meta *domain.Record, idx int) {
	entry := ConflictEntry{
		EntityType: p.entityType,
		Kind:       c.Kind,
		MatchedBy:  c.MatchedBy,
		Message:    c.Message,
		ExistingID: p.meta(c.Existing).ID,
	}

	switch opts.ConflictResolution {
	case ResolutionUpdate:
		existingMeta := p.meta(c.Existing)
		meta.ID = existingMeta.ID
		if meta.CreatedAt.IsZero() {
			meta.CreatedAt = existingMeta.CreatedAt
		}
		meta.Touch()

		if err := p.entity.Update(ctx, meta.ID, c.Incoming); err != nil {
			res.addError(CodeImportError, p.section, idx, "record %d: %v", idx, err)
			res.Skipped++
			return
		}
		entry.Resolution = OutcomeUpdated
		res.Updated++
	case ResolutionAsk:
		entry.Resolution = OutcomePending
		entry.Incoming = c.Incoming
		res.Skipped++
	default:
		entry.Resolution = OutcomeSkipped
		res.Skipped++
	}
	res.Conflicts = append(res.Conflicts, entry)
}

// importDependencies creates records from a reference section that are
// not already in the store, matched by name or well-formed id. Failures
// are logged and skipped individually. Returns a cache for resolving
// references against both pre-existing and newly created records.
func importDependencies[T any](
	ctx context.Context,
	imp *Importer,
	res *Result,
	snap *snapshot.Snapshot,
	section, entityType string,
	entity *store.Entity[T],
	keys match.KeyFunc[T],
	meta func(*T) *domain.Record,
	validate func(*T) validation.Result,
) *refCache {
	cache, err := loadRefCache(ctx, entity, func(rec *T) (string, string) {
		return meta(rec).ID, keys(rec).Name
	})
	if err != nil {
		res.addError(CodeImportError, section, -1, "cannot read existing %s: %v", section, err)
		return newRefCache()
	}

	sec, ok := snap.Section(section)
	if !ok || sec.Corrupted {
		return cache
	}
	res.processed(section)

	for idx, raw := range sec.Records {
		var rec T
		if err := raw.Decode(&rec); err != nil {
			continue
		}
		if vr := validate(&rec); !vr.Valid {
			continue
		}

		k := keys(&rec)
		if _, exists := cache.resolve(k.ID, k.Name); exists {
			continue
		}

		m := meta(&rec)
		m.ID = validRecordID(m.ID)
		if m.CreatedAt.IsZero() {
			m.InitTimestamps()
		}
		if err := entity.Create(ctx, m.ID, &rec); err != nil {
			imp.logger.Warn("dependency import failed",
				"section", section, "index", idx, "error", err)
			res.addError(CodeImportError, section, idx, "dependency record %d: %v", idx, err)
			continue
		}
		cache.add(m.ID, k.Name)
		res.ActualProcessedCounts[section]++
	}
	return cache
}
