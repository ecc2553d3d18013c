package api

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/Iceblockp/mobile-pos-sub001/internal/errors"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/validation"
)

func (s *Server) registerSnapshotRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSnapshots",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots",
		Summary:     "List snapshots",
		Description: "Lists snapshot artifacts, newest first",
		Tags:        []string{"Snapshots"},
	}, s.handleListSnapshots)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSnapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots/{id}",
		Summary:     "Get snapshot details",
		Tags:        []string{"Snapshots"},
	}, s.handleGetSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "validateSnapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots/{id}/validate",
		Summary:     "Validate snapshot",
		Description: "Reads the artifact and reports which data types it can supply",
		Tags:        []string{"Snapshots"},
	}, s.handleValidateSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "downloadSnapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/snapshots/{id}/download",
		Summary:     "Download snapshot",
		Tags:        []string{"Snapshots"},
	}, s.handleDownloadSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteSnapshot",
		Method:      http.MethodDelete,
		Path:        "/api/v1/snapshots/{id}",
		Summary:     "Delete snapshot",
		Tags:        []string{"Snapshots"},
	}, s.handleDeleteSnapshot)
}

// === DTOs ===

// SnapshotResponse represents an artifact in API responses.
type SnapshotResponse struct {
	ID        string `json:"id" doc:"Snapshot identifier"`
	Path      string `json:"path" doc:"Artifact file path"`
	Size      int64  `json:"size" doc:"Artifact size in bytes"`
	CreatedAt string `json:"createdAt" doc:"When the artifact was written"`
}

// ListSnapshotsOutput is the Huma output for listing snapshots.
type ListSnapshotsOutput struct {
	Body []SnapshotResponse
}

// SnapshotIDInput identifies one artifact.
type SnapshotIDInput struct {
	ID string `path:"id" doc:"Snapshot identifier"`
}

// GetSnapshotOutput is the Huma output for getting a snapshot.
type GetSnapshotOutput struct {
	Body SnapshotResponse
}

// ValidateSnapshotResponse reports what an artifact contains.
type ValidateSnapshotResponse struct {
	Valid              bool           `json:"valid" doc:"Whether the artifact holds any usable records"`
	DataType           string         `json:"dataType,omitempty" doc:"Declared data type"`
	Version            string         `json:"version,omitempty" doc:"Snapshot format version"`
	AvailableDataTypes []string       `json:"availableDataTypes,omitempty" doc:"Sections with usable records"`
	DetailedCounts     map[string]int `json:"detailedCounts,omitempty" doc:"Usable records per section"`
	CorruptedSections  []string       `json:"corruptedSections,omitempty" doc:"Sections that could not be parsed"`
	Errors             []string       `json:"errors,omitempty" doc:"Validation errors"`
}

// ValidateSnapshotOutput is the Huma output for validating a snapshot.
type ValidateSnapshotOutput struct {
	Body ValidateSnapshotResponse
}

// DeleteSnapshotOutput is the Huma output for deleting a snapshot.
type DeleteSnapshotOutput struct {
	Body struct {
		Message string `json:"message" doc:"Success message"`
	}
}

// === Handlers ===

func (s *Server) handleListSnapshots(ctx context.Context, _ *struct{}) (*ListSnapshotsOutput, error) {
	artifacts, err := s.snapshots.List(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list snapshots", err)
	}

	response := make([]SnapshotResponse, len(artifacts))
	for i, a := range artifacts {
		response[i] = snapshotResponse(a)
	}
	return &ListSnapshotsOutput{Body: response}, nil
}

func (s *Server) handleGetSnapshot(ctx context.Context, input *SnapshotIDInput) (*GetSnapshotOutput, error) {
	artifact, err := s.snapshots.Get(ctx, input.ID)
	if err != nil {
		if domainerrors.Is(err, snapshot.ErrArtifactNotFound) {
			return nil, huma.Error404NotFound("snapshot not found")
		}
		return nil, huma.Error500InternalServerError("failed to get snapshot", err)
	}
	return &GetSnapshotOutput{Body: snapshotResponse(*artifact)}, nil
}

func (s *Server) handleValidateSnapshot(ctx context.Context, input *SnapshotIDInput) (*ValidateSnapshotOutput, error) {
	artifact, err := s.snapshots.Get(ctx, input.ID)
	if err != nil {
		if domainerrors.Is(err, snapshot.ErrArtifactNotFound) {
			return nil, huma.Error404NotFound("snapshot not found")
		}
		return nil, huma.Error500InternalServerError("failed to get snapshot", err)
	}

	snap, err := snapshot.Read(artifact.Path)
	if err != nil {
		return &ValidateSnapshotOutput{
			Body: ValidateSnapshotResponse{Errors: []string{err.Error()}},
		}, nil
	}

	av := validation.ValidateAvailability(snap, snap.Metadata.DataType)
	return &ValidateSnapshotOutput{
		Body: ValidateSnapshotResponse{
			Valid:              av.Valid,
			DataType:           string(snap.Metadata.DataType),
			Version:            snap.Metadata.Version,
			AvailableDataTypes: av.AvailableTypes,
			DetailedCounts:     av.DetailedCounts,
			CorruptedSections:  av.CorruptedSections,
			Errors:             av.Errors,
		},
	}, nil
}

func (s *Server) handleDownloadSnapshot(ctx context.Context, input *SnapshotIDInput) (*huma.StreamResponse, error) {
	artifact, err := s.snapshots.Get(ctx, input.ID)
	if err != nil {
		if domainerrors.Is(err, snapshot.ErrArtifactNotFound) {
			return nil, huma.Error404NotFound("snapshot not found")
		}
		return nil, huma.Error500InternalServerError("failed to get snapshot", err)
	}

	f, err := os.Open(artifact.Path)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to open snapshot file", err)
	}

	return &huma.StreamResponse{
		Body: func(ctx huma.Context) {
			ctx.SetHeader("Content-Type", "application/json")
			ctx.SetHeader("Content-Disposition", "attachment; filename=\""+input.ID+snapshot.ArtifactSuffix+"\"")
			io.Copy(ctx.BodyWriter(), f)
			f.Close()
		},
	}, nil
}

func (s *Server) handleDeleteSnapshot(ctx context.Context, input *SnapshotIDInput) (*DeleteSnapshotOutput, error) {
	if err := s.snapshots.Delete(ctx, input.ID); err != nil {
		if domainerrors.Is(err, snapshot.ErrArtifactNotFound) {
			return nil, huma.Error404NotFound("snapshot not found")
		}
		return nil, huma.Error500InternalServerError("failed to delete snapshot", err)
	}

	out := &DeleteSnapshotOutput{}
	out.Body.Message = "Snapshot deleted"
	return out, nil
}

func snapshotResponse(a snapshot.ArtifactInfo) SnapshotResponse {
	return SnapshotResponse{
		ID:        a.ID,
		Path:      a.Path,
		Size:      a.Size,
		CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
