package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/Iceblockp/mobile-pos-sub001/internal/errors"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	snapimport "github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/import"
)

func (s *Server) registerImportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "runImport",
		Method:      http.MethodPost,
		Path:        "/api/v1/imports/{dataType}",
		Summary:     "Import data",
		Description: "Imports the requested data type from a snapshot artifact",
		Tags:        []string{"Import"},
	}, s.handleRunImport)
}

// === DTOs ===

// ImportRequest is the request body for running an import.
type ImportRequest struct {
	SnapshotID              string `json:"snapshotId" doc:"Artifact to read, from the snapshots endpoints"`
	BatchSize               int    `json:"batchSize,omitempty" doc:"Records per processing batch" minimum:"1"`
	ConflictResolution      string `json:"conflictResolution,omitempty" doc:"update, skip, or ask" enum:"update,skip,ask"`
	ValidateReferences      bool   `json:"validateReferences,omitempty" doc:"Resolve and check cross-record references"`
	CreateMissingReferences bool   `json:"createMissingReferences,omitempty" doc:"Accepted for compatibility; missing references are reported, not created"`
}

// RunImportInput is the Huma input for running an import.
type RunImportInput struct {
	DataType string `path:"dataType" doc:"products, sales, customers, expenses, stockMovements, bulkPricing, or all"`
	Body     ImportRequest
}

// RunImportOutput is the Huma output for running an import.
type RunImportOutput struct {
	Body snapimport.Result
}

// === Handlers ===

func (s *Server) handleRunImport(ctx context.Context, input *RunImportInput) (*RunImportOutput, error) {
	run := s.importFor(snapshot.DataType(input.DataType))
	if run == nil {
		return nil, huma.Error400BadRequest("unknown data type: " + input.DataType)
	}

	artifact, err := s.snapshots.Get(ctx, input.Body.SnapshotID)
	if err != nil {
		if domainerrors.Is(err, snapshot.ErrArtifactNotFound) {
			return nil, huma.Error404NotFound("snapshot not found: " + input.Body.SnapshotID)
		}
		return nil, huma.Error500InternalServerError("failed to resolve snapshot", err)
	}

	result, err := run(ctx, artifact.Path, snapimport.Options{
		BatchSize:               input.Body.BatchSize,
		ConflictResolution:      input.Body.ConflictResolution,
		ValidateReferences:      input.Body.ValidateReferences,
		CreateMissingReferences: input.Body.CreateMissingReferences,
	})
	if err != nil {
		return nil, huma.Error500InternalServerError("import failed", err)
	}

	return &RunImportOutput{Body: *result}, nil
}

func (s *Server) importFor(dataType snapshot.DataType) func(context.Context, string, snapimport.Options) (*snapimport.Result, error) {
	switch dataType {
	case snapshot.TypeProducts:
		return s.importer.ImportProducts
	case snapshot.TypeSales:
		return s.importer.ImportSales
	case snapshot.TypeCustomers:
		return s.importer.ImportCustomers
	case snapshot.TypeExpenses:
		return s.importer.ImportExpenses
	case snapshot.TypeStockMovements:
		return s.importer.ImportStockMovements
	case snapshot.TypeBulkPricing:
		return s.importer.ImportBulkPricing
	case snapshot.TypeAll, snapshot.TypeComplete:
		return s.importer.ImportCompleteBackup
	default:
		return nil
	}
}
