package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
	"github.com/Iceblockp/mobile-pos-sub001/internal/id"
	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/recovery"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/export"
	snapimport "github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/import"
	"github.com/Iceblockp/mobile-pos-sub001/internal/store"
	"github.com/Iceblockp/mobile-pos-sub001/internal/validation"
)

type testServer struct {
	*Server
	store *store.Store
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.New(logger.Config{Environment: "development", Level: logger.ParseLevel("error")})

	st, err := store.New(filepath.Join(t.TempDir(), "data"), log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	snapshots := snapshot.NewService(t.TempDir(), log)
	exporter := export.New(st, snapshots, log)
	importer := snapimport.New(st, validation.New(), recovery.NewCheckpoints(log), 50, log)

	return &testServer{
		Server: NewServer(st, snapshots, exporter, importer, "test", log),
		store:  st,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) seedProduct(t *testing.T, name string) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, Price: 1000, Stock: 3}
	p.ID = id.NewRecordID()
	p.InitTimestamps()
	require.NoError(t, ts.store.Products.Create(context.Background(), p.ID, p))
	return p
}

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Contains(t, []string{"healthy", "degraded"}, health.Status)
	assert.Equal(t, "healthy", health.Components["database"].Status)
}

func TestExportImportLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedProduct(t, "Coffee")

	// Export.
	rec := ts.do(t, http.MethodPost, "/api/v1/exports/products", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var exported ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exported))
	assert.Equal(t, 1, exported.RecordCount)
	assert.NotEmpty(t, exported.SnapshotID)
	assert.NotEmpty(t, exported.Checksum)

	// The artifact shows up in the listing.
	rec = ts.do(t, http.MethodGet, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed []SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, exported.SnapshotID, listed[0].ID)

	// Validation reports a usable products section.
	rec = ts.do(t, http.MethodGet, "/api/v1/snapshots/"+exported.SnapshotID+"/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var validated ValidateSnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &validated))
	assert.True(t, validated.Valid)
	assert.Equal(t, 1, validated.DetailedCounts["products"])

	// Import it back into the same store. Everything is a duplicate.
	rec = ts.do(t, http.MethodPost, "/api/v1/imports/products", ImportRequest{
		SnapshotID:         exported.SnapshotID,
		ConflictResolution: "skip",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result snapimport.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	// Download works.
	rec = ts.do(t, http.MethodGet, "/api/v1/snapshots/"+exported.SnapshotID+"/download", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), exported.SnapshotID)

	// Delete, then the artifact is gone.
	rec = ts.do(t, http.MethodDelete, "/api/v1/snapshots/"+exported.SnapshotID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/v1/snapshots/"+exported.SnapshotID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPreviewExport(t *testing.T) {
	ts := setupTestServer(t)
	ts.seedProduct(t, "Coffee")
	ts.seedProduct(t, "Tea")

	rec := ts.do(t, http.MethodGet, "/api/v1/exports/preview", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var preview export.Preview
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preview))
	assert.Equal(t, 2, preview.TotalRecords)
	assert.Positive(t, preview.EstimatedFileSize)
}

func TestCreateExport_UnknownDataType(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/exports/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRunImport_SnapshotMissing(t *testing.T) {
	ts := setupTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/v1/imports/products", ImportRequest{
		SnapshotID: "does-not-exist",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
