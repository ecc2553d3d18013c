package validation

import (
	"testing"

	"encoding/json/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
)

func parseSnapshot(t *testing.T, raw string) *snapshot.Snapshot {
	t.Helper()
	var snap snapshot.Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))
	return &snap
}

func TestValidateStructure_OK(t *testing.T) {
	snap := parseSnapshot(t, `{
		"metadata": {"dataType": "products", "version": "2.0", "recordCount": 2},
		"data": {"products": [{"name": "a"}, {"name": "b"}]}
	}`)
	assert.Nil(t, ValidateStructure(snap, snapshot.TypeProducts))
}

func TestValidateStructure_CountMismatch(t *testing.T) {
	snap := parseSnapshot(t, `{
		"metadata": {"dataType": "products", "version": "2.0", "recordCount": 5},
		"data": {"products": [{"name": "a"}, {"name": "b"}]}
	}`)

	issue := ValidateStructure(snap, snapshot.TypeProducts)
	require.NotNil(t, issue)
	assert.Equal(t, CodeCountMismatch, issue.Code)
	assert.Contains(t, issue.Message, "declares 5")
	assert.Contains(t, issue.Message, "contains 2")
}

func TestValidateStructure_MissingMetadata(t *testing.T) {
	snap := parseSnapshot(t, `{"data": {"products": []}}`)
	issue := ValidateStructure(snap, snapshot.TypeProducts)
	require.NotNil(t, issue)
	assert.Equal(t, CodeMissingMetadata, issue.Code)
}

func TestValidateStructure_TypeMismatch(t *testing.T) {
	snap := parseSnapshot(t, `{
		"metadata": {"dataType": "sales", "version": "2.0", "recordCount": 0},
		"data": {"sales": []}
	}`)
	issue := ValidateStructure(snap, snapshot.TypeProducts)
	require.NotNil(t, issue)
	assert.Equal(t, CodeTypeMismatch, issue.Code)
}

func TestValidateStructure_CompleteAcceptedForAnyType(t *testing.T) {
	for _, declared := range []string{"all", "complete"} {
		snap := parseSnapshot(t, `{
			"metadata": {"dataType": "`+declared+`", "version": "2.0", "recordCount": 99},
			"data": {"products": [{"name": "a"}]}
		}`)
		assert.Nil(t, ValidateStructure(snap, snapshot.TypeProducts), "declared %q", declared)
	}
}

func TestValidateAvailability_RequestedTypePresent(t *testing.T) {
	snap := parseSnapshot(t, `{
		"metadata": {"dataType": "products", "version": "2.0", "recordCount": 2},
		"data": {"products": [{"name": "a", "price": 1}, {"name": "b", "price": 2}]}
	}`)

	av := ValidateAvailability(snap, snapshot.TypeProducts)
	assert.True(t, av.Valid)
	assert.Equal(t, 2, av.DetailedCounts["products"])
	assert.Equal(t, []string{"products"}, av.AvailableTypes)
}

func TestValidateAvailability_MissingTypeListsAlternatives(t *testing.T) {
	// Declared type says sales, but only products and customers are present.
	snap := parseSnapshot(t, `{
		"metadata": {"dataType": "sales", "version": "2.0", "recordCount": 0},
		"data": {
			"products": [{"name": "a"}],
			"customers": [{"name": "b"}, {"name": "c"}]
		}
	}`)

	av := ValidateAvailability(snap, snapshot.TypeSales)
	assert.False(t, av.Valid)
	assert.Equal(t, []string{"customers", "products"}, av.AvailableTypes)
	assert.Contains(t, av.Message, "no usable sales records")
	assert.Contains(t, av.Message, "customers (2)")
	assert.Contains(t, av.Message, "products (1)")
}

func TestValidateAvailability_CorruptedSectionCountsZero(t *testing.T) {
	snap := parseSnapshot(t, `{
		"metadata": {"dataType": "all", "version": "2.0", "recordCount": 0},
		"data": {"products": "garbage", "customers": [{"name": "b"}]}
	}`)

	av := ValidateAvailability(snap, snapshot.TypeProducts)
	assert.False(t, av.Valid)
	assert.Equal(t, []string{"products"}, av.CorruptedSections)
	assert.Equal(t, 0, av.DetailedCounts["products"])
	assert.Equal(t, 1, av.DetailedCounts["customers"])
}

func TestValidateAvailability_SkipsEntriesWithoutIdentifyingFields(t *testing.T) {
	snap := parseSnapshot(t, `{
		"metadata": {"dataType": "products", "version": "2.0", "recordCount": 4},
		"data": {"products": [{"name": "ok"}, null, 7, {"price": 5}]}
	}`)

	av := ValidateAvailability(snap, snapshot.TypeProducts)
	assert.True(t, av.Valid)
	assert.Equal(t, 1, av.DetailedCounts["products"])
}

func TestValidateAvailability_CompleteNeedsAnyData(t *testing.T) {
	empty := parseSnapshot(t, `{
		"metadata": {"dataType": "all", "version": "2.0", "recordCount": 0},
		"data": {"products": []}
	}`)
	av := ValidateAvailability(empty, snapshot.TypeAll)
	assert.False(t, av.Valid)

	some := parseSnapshot(t, `{
		"metadata": {"dataType": "all", "version": "2.0", "recordCount": 1},
		"data": {"expenses": [{"amount": 100, "description": "rent"}]}
	}`)
	av = ValidateAvailability(some, snapshot.TypeAll)
	assert.True(t, av.Valid)
}

func TestValidateAvailability_DeclaredTypeMismatchFailsBeforeCounting(t *testing.T) {
	snap := parseSnapshot(t, `{
		"metadata": {"dataType": "customers", "version": "2.0", "recordCount": 1},
		"data": {"customers": [{"name": "b"}], "products": [{"name": "a"}]}
	}`)

	av := ValidateAvailability(snap, snapshot.TypeProducts)
	assert.False(t, av.Valid)
	assert.Contains(t, av.Message, "contains customers data")
	assert.Empty(t, av.AvailableTypes, "mismatch fails before counting")
}

func TestValidateAvailability_DegenerateSnapshots(t *testing.T) {
	av := ValidateAvailability(nil, snapshot.TypeProducts)
	assert.False(t, av.Valid)
	assert.Equal(t, "snapshot is empty", av.Message)

	noData := parseSnapshot(t, `{"metadata": {"dataType": "products", "version": "2.0", "recordCount": 0}}`)
	av = ValidateAvailability(noData, snapshot.TypeProducts)
	assert.False(t, av.Valid)
	assert.Equal(t, "snapshot has no data payload", av.Message)

	badData := parseSnapshot(t, `{"metadata": {"dataType": "products", "version": "2.0", "recordCount": 0}, "data": 42}`)
	av = ValidateAvailability(badData, snapshot.TypeProducts)
	assert.False(t, av.Valid)
	assert.Contains(t, av.Message, "not an object")
}
