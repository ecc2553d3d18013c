package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/export"
)

func (s *Server) registerExportRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createExport",
		Method:      http.MethodPost,
		Path:        "/api/v1/exports/{dataType}",
		Summary:     "Export data",
		Description: "Serializes the requested data type into a snapshot artifact",
		Tags:        []string{"Export"},
	}, s.handleCreateExport)

	huma.Register(s.api, huma.Operation{
		OperationID: "previewExport",
		Method:      http.MethodGet,
		Path:        "/api/v1/exports/preview",
		Summary:     "Preview export",
		Description: "Returns record counts and an estimated size for a complete export, without writing",
		Tags:        []string{"Export"},
	}, s.handlePreviewExport)
}

// === DTOs ===

// CreateExportInput is the Huma input for creating an export.
type CreateExportInput struct {
	DataType string `path:"dataType" doc:"products, sales, customers, expenses, stockMovements, bulkPricing, or all"`
}

// ExportResponse represents a completed export in API responses.
type ExportResponse struct {
	SnapshotID  string         `json:"snapshotId" doc:"Artifact identifier, usable with the snapshots endpoints"`
	Path        string         `json:"path" doc:"Artifact file path"`
	DataType    string         `json:"dataType" doc:"Declared data type"`
	RecordCount int            `json:"recordCount" doc:"Primary record count"`
	Counts      map[string]int `json:"counts" doc:"Records per section"`
	Size        int64          `json:"size" doc:"Artifact size in bytes"`
	Checksum    string         `json:"checksum" doc:"SHA-256 checksum"`
	Duration    string         `json:"duration" doc:"Export duration"`
	ExportDate  string         `json:"exportDate" doc:"When the export ran"`
}

// CreateExportOutput is the Huma output for creating an export.
type CreateExportOutput struct {
	Body ExportResponse
}

// PreviewExportOutput is the Huma output for previewing an export.
type PreviewExportOutput struct {
	Body export.Preview
}

// === Handlers ===

func (s *Server) handleCreateExport(ctx context.Context, input *CreateExportInput) (*CreateExportOutput, error) {
	run := s.exportFor(snapshot.DataType(input.DataType))
	if run == nil {
		return nil, huma.Error400BadRequest("unknown data type: " + input.DataType)
	}

	result, err := run(ctx, export.Options{})
	if err != nil {
		return nil, huma.Error500InternalServerError("export failed", err)
	}

	return &CreateExportOutput{Body: exportResponse(result)}, nil
}

func (s *Server) handlePreviewExport(ctx context.Context, _ *struct{}) (*PreviewExportOutput, error) {
	preview, err := s.exporter.PreviewAll(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("preview failed", err)
	}
	return &PreviewExportOutput{Body: *preview}, nil
}

func (s *Server) exportFor(dataType snapshot.DataType) func(context.Context, export.Options) (*export.Result, error) {
	switch dataType {
	case snapshot.TypeProducts:
		return s.exporter.ExportProducts
	case snapshot.TypeSales:
		return s.exporter.ExportSales
	case snapshot.TypeCustomers:
		return s.exporter.ExportCustomers
	case snapshot.TypeExpenses:
		return s.exporter.ExportExpenses
	case snapshot.TypeStockMovements:
		return s.exporter.ExportStockMovements
	case snapshot.TypeBulkPricing:
		return s.exporter.ExportBulkPricing
	case snapshot.TypeAll, snapshot.TypeComplete:
		return s.exporter.ExportAll
	default:
		return nil
	}
}

func exportResponse(r *export.Result) ExportResponse {
	return ExportResponse{
		SnapshotID:  snapshot.ArtifactID(r.Path),
		Path:        r.Path,
		DataType:    string(r.DataType),
		RecordCount: r.RecordCount,
		Counts:      r.Counts,
		Size:        r.Size,
		Checksum:    r.Checksum,
		Duration:    r.Duration.String(),
		ExportDate:  r.ExportDate.Format("2006-01-02T15:04:05Z"),
	}
}
