package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
)

// Snapshot-level failure codes surfaced in import results.
const (
	CodeCountMismatch   = "COUNT_MISMATCH"
	CodeMissingMetadata = "MISSING_METADATA"
	CodeTypeMismatch    = "TYPE_MISMATCH"
)

// Issue is a snapshot-level validation failure.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidateStructure performs strict structural validation: the metadata
// block must be present, the declared type must match the expected type
// (complete snapshots are accepted for any expected type), and the
// declared record count must equal the primary section's actual length.
// Returns nil when the snapshot is structurally sound.
func ValidateStructure(snap *snapshot.Snapshot, expected snapshot.DataType) *Issue {
	if snap == nil || !snap.HasMetadata {
		return &Issue{Code: CodeMissingMetadata, Message: "snapshot has no metadata block"}
	}

	declared := snap.Metadata.DataType
	if declared.IsComplete() {
		return nil
	}
	if declared != expected {
		return &Issue{
			Code:    CodeTypeMismatch,
			Message: fmt.Sprintf("snapshot contains %s data but %s was requested", declared, expected),
		}
	}

	key := declared.PrimarySection()
	sec, _ := snap.Section(key)
	if sec.Len() != snap.Metadata.RecordCount {
		return &Issue{
			Code: CodeCountMismatch,
			Message: fmt.Sprintf("metadata declares %d %s records but the snapshot contains %d",
				snap.Metadata.RecordCount, key, sec.Len()),
		}
	}
	return nil
}

// Availability reports what a snapshot actually contains, independent of
// what its metadata declares.
type Availability struct {
	Valid             bool           `json:"valid"`
	AvailableTypes    []string       `json:"availableTypes"`
	DetailedCounts    map[string]int `json:"detailedCounts"`
	CorruptedSections []string       `json:"corruptedSections,omitempty"`
	Errors            []string       `json:"errors,omitempty"`
	Message           string         `json:"message,omitempty"`
}

// ValidateAvailability walks every known section, counting only entries
// that are structurally usable for their type, and decides whether the
// snapshot can serve an import of the requested type. A section that is
// present but not an array is flagged corrupted and counts as zero, but
// is still reported.
func ValidateAvailability(snap *snapshot.Snapshot, requested snapshot.DataType) Availability {
	av := Availability{DetailedCounts: make(map[string]int)}

	switch {
	case snap == nil:
		av.Errors = append(av.Errors, "snapshot is empty")
		av.Message = "snapshot is empty"
		return av
	case snap.Data == nil:
		av.Errors = append(av.Errors, "snapshot has no data payload")
		av.Message = "snapshot has no data payload"
		return av
	case !snap.Data.IsObject():
		av.Errors = append(av.Errors, "snapshot data payload is not an object")
		av.Message = "snapshot data payload is not an object"
		return av
	}

	// A declared type that contradicts the request fails before counting.
	declared := snap.Metadata.DataType
	if snap.HasMetadata && declared != "" && !declared.IsComplete() && declared != requested {
		msg := fmt.Sprintf("snapshot contains %s data, but %s was requested", declared, requested)
		av.Errors = append(av.Errors, msg)
		av.Message = msg
		return av
	}

	total := 0
	for _, key := range snapshot.KnownSections() {
		sec, ok := snap.Section(key)
		if !ok {
			continue
		}
		if sec.Corrupted {
			av.CorruptedSections = append(av.CorruptedSections, key)
			av.DetailedCounts[key] = 0
			continue
		}

		count := 0
		for _, rec := range sec.Records {
			if usableEntry(key, rec) {
				count++
			}
		}
		av.DetailedCounts[key] = count
		total += count
		if count > 0 {
			av.AvailableTypes = append(av.AvailableTypes, key)
		}
	}
	sort.Strings(av.AvailableTypes)

	if requested.IsComplete() {
		av.Valid = total > 0
		if !av.Valid {
			av.Message = "snapshot contains no usable records"
		}
		return av
	}

	key := requested.PrimarySection()
	av.Valid = av.DetailedCounts[key] > 0
	if !av.Valid {
		av.Message = missingTypeMessage(key, av)
	}
	return av
}

// missingTypeMessage names the missing type and enumerates what the
// snapshot does contain, with counts, so a caller can redirect the user.
func missingTypeMessage(key string, av Availability) string {
	if len(av.AvailableTypes) == 0 {
		return fmt.Sprintf("snapshot contains no usable %s records and no other data", key)
	}
	alternatives := make([]string, 0, len(av.AvailableTypes))
	for _, t := range av.AvailableTypes {
		alternatives = append(alternatives, fmt.Sprintf("%s (%d)", t, av.DetailedCounts[t]))
	}
	return fmt.Sprintf("snapshot contains no usable %s records; available: %s",
		key, strings.Join(alternatives, ", "))
}

// usableEntry reports whether a raw entry carries the minimum identifying
// fields for its section. Non-object entries never count.
func usableEntry(section string, rec snapshot.Record) bool {
	fields, ok := rec.Fields()
	if !ok {
		return false
	}

	hasString := func(name string) bool {
		s, ok := fields[name].(string)
		return ok && s != ""
	}
	hasNumber := func(name string) bool {
		_, ok := fields[name].(float64)
		return ok
	}

	switch section {
	case snapshot.SectionProducts, snapshot.SectionCategories, snapshot.SectionSuppliers,
		snapshot.SectionCustomers, snapshot.SectionExpenseCategories:
		return hasString("name")
	case snapshot.SectionSales:
		return hasNumber("totalAmount")
	case snapshot.SectionSaleItems:
		return hasString("productId") || hasString("productName") || hasString("saleId")
	case snapshot.SectionExpenses:
		return hasNumber("amount")
	case snapshot.SectionStockMovements:
		return hasString("type")
	case snapshot.SectionBulkPricing:
		return hasNumber("minQuantity")
	default:
		return false
	}
}
