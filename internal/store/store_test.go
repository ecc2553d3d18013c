package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iceblockp/mobile-pos-sub001/internal/domain"
	"github.com/Iceblockp/mobile-pos-sub001/internal/store"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestEntity_CreateGet(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &domain.Product{Name: "Coffee", Price: 3500, Stock: 12}
	p.ID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"

	require.NoError(t, s.Products.Create(ctx, p.ID, p))

	got, err := s.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", got.Name)
	assert.Equal(t, 3500.0, got.Price)
}

func TestEntity_CreateDuplicateID(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &domain.Product{Name: "Coffee", Price: 10}
	p.ID = "id-1"

	require.NoError(t, s.Products.Create(ctx, p.ID, p))
	err := s.Products.Create(ctx, p.ID, p)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestEntity_BarcodeIndex(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &domain.Product{Name: "Coffee", Barcode: "885001", Price: 10}
	p.ID = "id-1"
	require.NoError(t, s.Products.Create(ctx, p.ID, p))

	got, err := s.Products.GetByIndex(ctx, store.BarcodeIndex, "885001")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)

	// Second product with the same barcode must be rejected.
	dup := &domain.Product{Name: "Other", Barcode: "885001", Price: 20}
	dup.ID = "id-2"
	err = s.Products.Create(ctx, dup.ID, dup)
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	// Products without a barcode never collide.
	a := &domain.Product{Name: "A", Price: 1}
	a.ID = "id-3"
	b := &domain.Product{Name: "B", Price: 2}
	b.ID = "id-4"
	require.NoError(t, s.Products.Create(ctx, a.ID, a))
	require.NoError(t, s.Products.Create(ctx, b.ID, b))
}

func TestEntity_Update(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &domain.Product{Name: "Coffee", Barcode: "885001", Price: 10}
	p.ID = "id-1"
	require.NoError(t, s.Products.Create(ctx, p.ID, p))

	p.Price = 12
	p.Barcode = "885002"
	require.NoError(t, s.Products.Update(ctx, p.ID, p))

	got, err := s.Products.Get(ctx, "id-1")
	require.NoError(t, err)
	assert.Equal(t, 12.0, got.Price)

	// Old index key is gone, new one resolves.
	_, err = s.Products.GetByIndex(ctx, store.BarcodeIndex, "885001")
	assert.ErrorIs(t, err, store.ErrNotFound)
	got, err = s.Products.GetByIndex(ctx, store.BarcodeIndex, "885002")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
}

func TestEntity_UpdateMissing(t *testing.T) {
	s := testStore(t)

	p := &domain.Product{Name: "Ghost", Price: 10}
	err := s.Products.Update(context.Background(), "nope", p)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_DeleteIdempotent(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &domain.Product{Name: "Coffee", Price: 10}
	p.ID = "id-1"
	require.NoError(t, s.Products.Create(ctx, p.ID, p))

	require.NoError(t, s.Products.Delete(ctx, "id-1"))
	require.NoError(t, s.Products.Delete(ctx, "id-1")) // second delete is a no-op

	_, err := s.Products.Get(ctx, "id-1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_GetAllAndCount(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	for i, name := range []string{"A", "B", "C"} {
		c := &domain.Customer{Name: name}
		c.ID = string(rune('a' + i))
		require.NoError(t, s.Customers.Create(ctx, c.ID, c))
	}

	all, err := s.Customers.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := s.Customers.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestEntity_CollectionsAreIsolated(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &domain.Product{Name: "Coffee", Price: 10}
	p.ID = "id-1"
	require.NoError(t, s.Products.Create(ctx, p.ID, p))

	n, err := s.Customers.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
