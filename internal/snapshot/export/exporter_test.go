package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
	"github.com/Iceblockp/mobile-pos-sub001/internal/id"
	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/recovery"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	snapimport "github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/import"
	"github.com/Iceblockp/mobile-pos-sub001/internal/store"
	"github.com/Iceblockp/mobile-pos-sub001/internal/validation"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.New(logger.Config{Environment: "development", Level: logger.ParseLevel("error")})
}

func newTestExporter(t *testing.T) (*Exporter, *store.Store) {
	t.Helper()
	log := testLogger(t)

	s, err := store.New(filepath.Join(t.TempDir(), "data"), log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	svc := snapshot.NewService(t.TempDir(), log)
	return New(s, svc, log), s
}

func seedProduct(t *testing.T, s *store.Store, name string, price float64) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name, Price: price, Stock: 10}
	p.ID = id.NewRecordID()
	p.InitTimestamps()
	require.NoError(t, s.Products.Create(context.Background(), p.ID, p))
	return p
}

func TestExportProducts(t *testing.T) {
	exp, s := newTestExporter(t)
	ctx := context.Background()

	cat := &domain.Category{Name: "Drinks"}
	cat.ID = id.NewRecordID()
	cat.InitTimestamps()
	require.NoError(t, s.Categories.Create(ctx, cat.ID, cat))

	coffee := seedProduct(t, s, "Coffee", 2500)
	seedProduct(t, s, "Tea", 1500)

	res, err := exp.ExportProducts(ctx, Options{})
	require.NoError(t, err)

	assert.Equal(t, snapshot.TypeProducts, res.DataType)
	assert.Equal(t, 2, res.RecordCount, "record count is the primary section, not references")
	assert.Equal(t, 1, res.Counts["categories"])
	assert.NotEmpty(t, res.Checksum)
	assert.Positive(t, res.Size)
	assert.True(t, strings.HasSuffix(res.Path, snapshot.ArtifactSuffix))

	info, err := os.Stat(res.Path)
	require.NoError(t, err)
	assert.Equal(t, res.Size, info.Size())

	snap, err := snapshot.Read(res.Path)
	require.NoError(t, err)
	assert.Equal(t, snapshot.TypeProducts, snap.Metadata.DataType)
	assert.Equal(t, snapshot.FormatVersion, snap.Metadata.Version)

	sec, ok := snap.Section(snapshot.SectionProducts)
	require.True(t, ok)
	products := snapshot.DecodeSection[domain.Product](sec)
	require.Len(t, products, 2)

	names := []string{products[0].Name, products[1].Name}
	assert.ElementsMatch(t, []string{"Coffee", "Tea"}, names)
	for _, p := range products {
		if p.Name == "Coffee" {
			assert.Equal(t, coffee.ID, p.ID)
		}
	}
}

func TestExportAll_CountsEverything(t *testing.T) {
	exp, s := newTestExporter(t)
	ctx := context.Background()

	seedProduct(t, s, "Coffee", 2500)
	cust := &domain.Customer{Name: "Aye Aye"}
	cust.ID = id.NewRecordID()
	cust.InitTimestamps()
	require.NoError(t, s.Customers.Create(ctx, cust.ID, cust))

	res, err := exp.ExportAll(ctx, Options{})
	require.NoError(t, err)

	assert.Equal(t, snapshot.TypeAll, res.DataType)
	assert.Equal(t, 2, res.RecordCount, "complete exports count all records")
	assert.Equal(t, 1, res.Counts["products"])
	assert.Equal(t, 1, res.Counts["customers"])
	assert.Equal(t, 0, res.Counts["sales"])
}

func TestExport_CustomOutputPath(t *testing.T) {
	exp, s := newTestExporter(t)
	seedProduct(t, s, "Coffee", 2500)

	path := filepath.Join(t.TempDir(), "custom"+snapshot.ArtifactSuffix)
	res, err := exp.ExportProducts(context.Background(), Options{OutputPath: path})
	require.NoError(t, err)

	assert.Equal(t, path, res.Path)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestExport_ProgressCompletes(t *testing.T) {
	exp, s := newTestExporter(t)
	seedProduct(t, s, "Coffee", 2500)

	var reports []snapshot.Progress
	_, err := exp.ExportProducts(context.Background(), Options{
		OnProgress: func(p snapshot.Progress) { reports = append(reports, p) },
	})
	require.NoError(t, err)

	require.NotEmpty(t, reports)
	last := reports[len(reports)-1]
	assert.Equal(t, snapshot.StageCompleted, last.Stage)
	assert.Equal(t, 100.0, last.Percentage)
}

func TestExport_CancelledContext(t *testing.T) {
	exp, s := newTestExporter(t)
	seedProduct(t, s, "Coffee", 2500)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := exp.ExportProducts(ctx, Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestPreviewAll(t *testing.T) {
	exp, s := newTestExporter(t)
	seedProduct(t, s, "Coffee", 2500)
	seedProduct(t, s, "Tea", 1500)

	preview, err := exp.PreviewAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, preview.TotalRecords)
	assert.Equal(t, 2, preview.DataCounts["products"])
	assert.Positive(t, preview.EstimatedFileSize)
	assert.False(t, preview.ExportDate.IsZero())
}

func TestExportImportRoundTrip(t *testing.T) {
	exp, src := newTestExporter(t)
	ctx := context.Background()

	cat := &domain.Category{Name: "Drinks"}
	cat.ID = id.NewRecordID()
	cat.InitTimestamps()
	require.NoError(t, src.Categories.Create(ctx, cat.ID, cat))

	coffee := &domain.Product{Name: "Coffee", Price: 2500, Stock: 5, CategoryID: cat.ID}
	coffee.ID = id.NewRecordID()
	coffee.InitTimestamps()
	require.NoError(t, src.Products.Create(ctx, coffee.ID, coffee))

	res, err := exp.ExportProducts(ctx, Options{})
	require.NoError(t, err)

	// Import the artifact into a fresh store.
	log := testLogger(t)
	dst, err := store.New(filepath.Join(t.TempDir(), "data"), log.Logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dst.Close() })

	imp := snapimport.New(dst, validation.New(), recovery.NewCheckpoints(log), 50, log)
	ires, err := imp.ImportProducts(ctx, res.Path, snapimport.Options{ValidateReferences: true})
	require.NoError(t, err)

	assert.True(t, ires.Success)
	assert.Equal(t, 1, ires.Imported)
	assert.Empty(t, ires.Errors)

	got, err := dst.Products.Get(ctx, coffee.ID)
	require.NoError(t, err, "identifiers must survive the round trip")
	assert.Equal(t, "Coffee", got.Name)
	assert.Equal(t, cat.ID, got.CategoryID)

	_, err = dst.Categories.Get(ctx, cat.ID)
	require.NoError(t, err)
}
