// Package match classifies incoming records against existing store state.
// A record matches either by stable identifier or, for catalog-style
// entities, by a type-specific semantic key.
package match

import (
	"fmt"

	"github.com/Iceblockp/mobile-pos-sub001/internal/id"
)

// How a conflict was detected.
const (
	MatchedByID          = "id"
	MatchedBySemanticKey = "semantic_key"
)

// Conflict kinds.
const (
	KindDuplicate        = "duplicate"
	KindReferenceMissing = "reference_missing"
	KindValidationFailed = "validation_failed"
)

// Keys are the comparable fields extracted from a record. Empty fields
// never participate in matching.
type Keys struct {
	ID      string
	Name    string
	Barcode string
	Phone   string
}

// KeyFunc extracts comparison keys from a record.
type KeyFunc[T any] func(*T) Keys

// Conflict describes one incoming record colliding with an existing one.
type Conflict[T any] struct {
	Kind      string
	MatchedBy string
	Message   string
	Incoming  *T
	Existing  *T
}

// semanticRule names which key fields participate in the fallback match
// for a given entity type.
type semanticRule struct {
	name    bool
	barcode bool
	phone   bool
}

// semanticRuleFor returns the fallback rule for an entity type.
// Transactional types have no natural business key and never match
// semantically; unknown types fall back to plain name equality.
func semanticRuleFor(entityType string) semanticRule {
	switch entityType {
	case "Product":
		return semanticRule{name: true, barcode: true}
	case "Customer":
		return semanticRule{name: true, phone: true}
	case "Sale", "SaleItem", "Expense", "StockMovement", "BulkPricing":
		return semanticRule{}
	default:
		return semanticRule{name: true}
	}
}

// Detector matches incoming records of one entity type against a fixed
// set of existing records. The existing set is indexed once, first
// occurrence winning, so repeated lookups stay cheap and ties resolve to
// the earliest record in iteration order.
type Detector[T any] struct {
	entityType string
	keys       KeyFunc[T]
	rule       semanticRule

	existing  []*T
	byID      map[string]int
	byName    map[string]int
	byBarcode map[string]int
	byPhone   map[string]int
}

// NewDetector indexes existing records for conflict detection. Nil
// entries are skipped, matching how malformed stored records are
// tolerated rather than propagated.
func NewDetector[T any](entityType string, keys KeyFunc[T], existing []*T) *Detector[T] {
	d := &Detector[T]{
		entityType: entityType,
		keys:       keys,
		rule:       semanticRuleFor(entityType),
		existing:   existing,
		byID:       make(map[string]int),
		byName:     make(map[string]int),
		byBarcode:  make(map[string]int),
		byPhone:    make(map[string]int),
	}

	for i, rec := range existing {
		if rec == nil {
			continue
		}
		k := keys(rec)
		if id.Valid(k.ID) {
			addFirst(d.byID, k.ID, i)
		}
		if k.Name != "" {
			addFirst(d.byName, k.Name, i)
		}
		if k.Barcode != "" {
			addFirst(d.byBarcode, k.Barcode, i)
		}
		if k.Phone != "" {
			addFirst(d.byPhone, k.Phone, i)
		}
	}
	return d
}

// addFirst records only the first index for a key; later duplicates in
// the existing set are intentionally shadowed (first wins).
func addFirst(m map[string]int, key string, idx int) {
	if _, ok := m[key]; !ok {
		m[key] = idx
	}
}

// Detect returns the first conflict for an incoming record, or nil when
// the record can proceed as new. A nil record or empty entity type is
// "cannot evaluate" and yields nil.
func (d *Detector[T]) Detect(incoming *T) *Conflict[T] {
	if incoming == nil || d.entityType == "" {
		return nil
	}
	k := d.keys(incoming)

	// First pass: stable identifier. Both sides must carry a valid UUID.
	if id.Valid(k.ID) {
		if idx, ok := d.byID[k.ID]; ok {
			return &Conflict[T]{
				Kind:      KindDuplicate,
				MatchedBy: MatchedByID,
				Message:   fmt.Sprintf("%s with UUID %q already exists", d.entityType, k.ID),
				Incoming:  incoming,
				Existing:  d.existing[idx],
			}
		}
	}

	// Second pass: semantic key. When several keys match different
	// records, the earliest existing record wins.
	bestIdx := -1
	bestField := ""
	consider := func(idx int, field string) {
		if bestIdx == -1 || idx < bestIdx {
			bestIdx = idx
			bestField = field
		}
	}

	if d.rule.name && k.Name != "" {
		if idx, ok := d.byName[k.Name]; ok {
			consider(idx, "name")
		}
	}
	if d.rule.barcode && k.Barcode != "" {
		if idx, ok := d.byBarcode[k.Barcode]; ok {
			consider(idx, "barcode")
		}
	}
	if d.rule.phone && k.Phone != "" {
		if idx, ok := d.byPhone[k.Phone]; ok {
			consider(idx, "phone")
		}
	}

	if bestIdx == -1 {
		return nil
	}

	return &Conflict[T]{
		Kind:      KindDuplicate,
		MatchedBy: MatchedBySemanticKey,
		Message:   d.semanticMessage(bestIdx, bestField, k),
		Incoming:  incoming,
		Existing:  d.existing[bestIdx],
	}
}

// semanticMessage prefers the most specific key in the wording: barcode
// over name for products, phone over name for customers.
func (d *Detector[T]) semanticMessage(idx int, viaField string, k Keys) string {
	existingKeys := d.keys(d.existing[idx])

	// The matched record may also collide on a more specific key even
	// when the earliest match arrived via name.
	if d.rule.barcode && k.Barcode != "" && existingKeys.Barcode == k.Barcode {
		viaField = "barcode"
	} else if d.rule.phone && k.Phone != "" && existingKeys.Phone == k.Phone {
		viaField = "phone"
	}

	switch viaField {
	case "barcode":
		return fmt.Sprintf("%s with barcode %q already exists", d.entityType, k.Barcode)
	case "phone":
		return fmt.Sprintf("%s with phone %q already exists", d.entityType, k.Phone)
	default:
		label := k.Name
		if label == "" {
			label = k.ID
		}
		if label == "" {
			label = "Unknown"
		}
		return fmt.Sprintf("%s %q already exists", d.entityType, label)
	}
}
