// Package snapimport restores snapshot artifacts into the store in
// bounded batches with per-record conflict resolution.
package snapimport

import (
	"fmt"
	"time"

	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
)

// Conflict resolution policies.
const (
	ResolutionUpdate = "update"
	ResolutionSkip   = "skip"
	ResolutionAsk    = "ask"
)

// Outcomes recorded on conflict entries.
const (
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomePending = "pending"
)

// Top-level and per-record error codes surfaced in results.
const (
	CodeImportFailed    = "IMPORT_FAILED"
	CodeMissingDataType = "MISSING_DATA_TYPE"
	CodeImportError     = "IMPORT_ERROR"
	CodeMalformedRecord = "MALFORMED_RECORD"
	CodeMissingProduct  = "MISSING_PRODUCT"
	CodeMissingSale     = "MISSING_SALE"
)

// Options controls one import call.
type Options struct {
	// BatchSize bounds how many records are processed between
	// cooperative yields. Zero means the configured default.
	BatchSize int `json:"batchSize" validate:"omitempty,gt=0"`
	// ConflictResolution decides what happens when an incoming record
	// matches an existing one. Empty means skip.
	ConflictResolution string `json:"conflictResolution" validate:"omitempty,oneof=update skip ask"`
	// ValidateReferences resolves cross-entity references against the
	// store, by id first and by name for older snapshots.
	ValidateReferences bool `json:"validateReferences"`
	// CreateMissingReferences is accepted for forward compatibility but
	// is not implemented; setting it adds a warning to the result.
	CreateMissingReferences bool `json:"createMissingReferences"`
	// OnProgress receives synchronous per-record progress reports.
	OnProgress snapshot.ProgressFunc `json:"-"`
}

// withDefaults fills unset options.
func (o Options) withDefaults(defaultBatchSize int) Options {
	if o.BatchSize == 0 {
		o.BatchSize = defaultBatchSize
	}
	if o.ConflictResolution == "" {
		o.ConflictResolution = ResolutionSkip
	}
	return o
}

// ImportError is one failure recorded during a run. Index is the
// record's position within its section; -1 for call-level failures.
type ImportError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Section string `json:"section,omitempty"`
	Index   int    `json:"index"`
}

// ConflictEntry describes one detected conflict and how it was settled.
type ConflictEntry struct {
	EntityType string `json:"entityType"`
	Kind       string `json:"kind"`
	MatchedBy  string `json:"matchedBy"`
	Message    string `json:"message"`
	Resolution string `json:"resolution"`
	ExistingID string `json:"existingId,omitempty"`
	Incoming   any    `json:"incoming,omitempty"`
}

// Result reports a completed (or failed) import call.
type Result struct {
	Success   bool              `json:"success"`
	DataType  snapshot.DataType `json:"dataType"`
	Imported  int               `json:"imported"`
	Updated   int               `json:"updated"`
	Skipped   int               `json:"skipped"`
	Errors    []ImportError     `json:"errors"`
	Conflicts []ConflictEntry   `json:"conflicts,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
	Duration  time.Duration     `json:"duration"`

	ProcessedDataTypes    []string       `json:"processedDataTypes"`
	AvailableDataTypes    []string       `json:"availableDataTypes,omitempty"`
	DetailedCounts        map[string]int `json:"detailedCounts,omitempty"`
	ActualProcessedCounts map[string]int `json:"actualProcessedCounts,omitempty"`
	ValidationMessage     string         `json:"validationMessage,omitempty"`
}

func newResult(dataType snapshot.DataType) *Result {
	return &Result{
		DataType:              dataType,
		Errors:                []ImportError{},
		ActualProcessedCounts: make(map[string]int),
	}
}

func (r *Result) addError(code, section string, index int, format string, args ...any) {
	r.Errors = append(r.Errors, ImportError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Section: section,
		Index:   index,
	})
}

func (r *Result) addWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// fail marks the whole call failed with a single call-level error.
func (r *Result) fail(code, format string, args ...any) *Result {
	r.Success = false
	r.addError(code, "", -1, format, args...)
	return r
}

func (r *Result) processed(section string) {
	for _, t := range r.ProcessedDataTypes {
		if t == section {
			return
		}
	}
	r.ProcessedDataTypes = append(r.ProcessedDataTypes, section)
}

// merge folds a sub-result into an aggregate, for complete imports.
func (r *Result) merge(sub *Result) {
	r.Imported += sub.Imported
	r.Updated += sub.Updated
	r.Skipped += sub.Skipped
	r.Errors = append(r.Errors, sub.Errors...)
	r.Conflicts = append(r.Conflicts, sub.Conflicts...)
	r.Warnings = append(r.Warnings, sub.Warnings...)
	for _, t := range sub.ProcessedDataTypes {
		r.processed(t)
	}
	for k, v := range sub.ActualProcessedCounts {
		r.ActualProcessedCounts[k] += v
	}
}
