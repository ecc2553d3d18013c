// Package snapshot defines the portable snapshot artifact exchanged by the
// export and import pipelines, and a service for managing artifacts on disk.
package snapshot

import (
	"bytes"
	"fmt"
	"time"

	"encoding/json/v2"
)

// FormatVersion is the snapshot schema version. Increment major on breaking changes.
const FormatVersion = "2.0"

// DataType declares a snapshot's intended primary content.
type DataType string

// The closed set of declared types.
const (
	TypeProducts       DataType = "products"
	TypeSales          DataType = "sales"
	TypeCustomers      DataType = "customers"
	TypeExpenses       DataType = "expenses"
	TypeStockMovements DataType = "stockMovements"
	TypeBulkPricing    DataType = "bulkPricing"
	TypeAll            DataType = "all"
	TypeComplete       DataType = "complete"
)

// IsComplete reports whether the type declares a full-dataset snapshot.
// Both spellings appear in artifacts from different app releases.
func (t DataType) IsComplete() bool {
	return t == TypeAll || t == TypeComplete
}

// Valid reports whether t is one of the known declared types.
func (t DataType) Valid() bool {
	switch t {
	case TypeProducts, TypeSales, TypeCustomers, TypeExpenses,
		TypeStockMovements, TypeBulkPricing, TypeAll, TypeComplete:
		return true
	default:
		return false
	}
}

// Section keys within a snapshot body.
const (
	SectionProducts          = "products"
	SectionCategories        = "categories"
	SectionSuppliers         = "suppliers"
	SectionCustomers         = "customers"
	SectionSales             = "sales"
	SectionSaleItems         = "saleItems"
	SectionExpenses          = "expenses"
	SectionExpenseCategories = "expenseCategories"
	SectionStockMovements    = "stockMovements"
	SectionBulkPricing       = "bulkPricing"
)

// KnownSections lists every section key a snapshot body may carry,
// in dependency order.
func KnownSections() []string {
	return []string{
		SectionCategories,
		SectionSuppliers,
		SectionProducts,
		SectionCustomers,
		SectionSales,
		SectionSaleItems,
		SectionExpenseCategories,
		SectionExpenses,
		SectionBulkPricing,
		SectionStockMovements,
	}
}

// PrimarySection returns the section key holding a declared type's primary
// records. Complete types have no single primary section and return "".
func (t DataType) PrimarySection() string {
	switch t {
	case TypeProducts:
		return SectionProducts
	case TypeSales:
		return SectionSales
	case TypeCustomers:
		return SectionCustomers
	case TypeExpenses:
		return SectionExpenses
	case TypeStockMovements:
		return SectionStockMovements
	case TypeBulkPricing:
		return SectionBulkPricing
	default:
		return ""
	}
}

// Metadata describes snapshot contents.
type Metadata struct {
	DataType    DataType  `json:"dataType"`
	Version     string    `json:"version"`
	RecordCount int       `json:"recordCount"`
	ExportDate  time.Time `json:"exportDate"`
}

// Record is one raw entry of a section. Entries are kept as raw bytes so a
// malformed entry (null, a bare number, a truncated object) is carried
// through to per-record validation instead of failing the whole read.
type Record struct {
	raw []byte
}

// NewRecord encodes v into a Record.
func NewRecord(v any) (Record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encode record: %w", err)
	}
	return Record{raw: b}, nil
}

// UnmarshalJSON stores the raw bytes without interpreting them.
func (r *Record) UnmarshalJSON(b []byte) error {
	r.raw = bytes.Clone(b)
	return nil
}

// MarshalJSON writes the raw bytes back out.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.raw == nil {
		return []byte("null"), nil
	}
	return r.raw, nil
}

// IsObject reports whether the entry is a JSON object.
func (r Record) IsObject() bool {
	trimmed := bytes.TrimLeft(r.raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Decode unmarshals the entry into v.
func (r Record) Decode(v any) error {
	if !r.IsObject() {
		return fmt.Errorf("record is not an object")
	}
	return json.Unmarshal(r.raw, v)
}

// Fields decodes the entry into a generic field map for probing.
// Returns false if the entry is not an object.
func (r Record) Fields() (map[string]any, bool) {
	if !r.IsObject() {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(r.raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// Section is an ordered sequence of entries. A section that is present in
// the artifact but is not a JSON array is marked corrupted and carries no
// records.
type Section struct {
	Records   []Record
	Corrupted bool
}

// UnmarshalJSON accepts an array of entries; anything else marks the
// section corrupted rather than failing the snapshot read.
func (s *Section) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimLeft(b, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '[' {
		s.Corrupted = true
		s.Records = nil
		return nil
	}
	return json.Unmarshal(b, &s.Records)
}

// MarshalJSON writes the entries as an array.
func (s Section) MarshalJSON() ([]byte, error) {
	if s.Records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.Records)
}

// Len returns the number of entries, zero for corrupted sections.
func (s Section) Len() int {
	return len(s.Records)
}

// SectionOf builds a Section from a slice of typed records.
func SectionOf[T any](items []*T) (Section, error) {
	sec := Section{Records: make([]Record, 0, len(items))}
	for _, item := range items {
		rec, err := NewRecord(item)
		if err != nil {
			return Section{}, err
		}
		sec.Records = append(sec.Records, rec)
	}
	return sec, nil
}

// DecodeSection decodes every entry of a section into typed records.
// Entries that fail to decode yield a nil slot so callers can report
// per-record errors positionally.
func DecodeSection[T any](sec Section) []*T {
	out := make([]*T, len(sec.Records))
	for i, rec := range sec.Records {
		var v T
		if err := rec.Decode(&v); err != nil {
			continue
		}
		out[i] = &v
	}
	return out
}

// Body is the snapshot payload: a mapping of section name to entries.
//
// Two shapes exist in the wild. Current artifacts carry a keyed object of
// arrays; artifacts from early app releases carry a bare array holding the
// declared type's records. Both are accepted here; Snapshot.Normalize moves
// a legacy array under the declared type's section key.
type Body struct {
	Sections map[string]Section

	// legacy holds a flat-array payload until Normalize runs.
	legacy *Section
	// invalid marks a payload that is neither object nor array.
	invalid bool
}

// UnmarshalJSON accepts either body shape.
func (b *Body) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		b.invalid = true
		return nil
	}

	switch trimmed[0] {
	case '{':
		return json.Unmarshal(data, &b.Sections)
	case '[':
		var sec Section
		if err := json.Unmarshal(data, &sec); err != nil {
			return err
		}
		b.legacy = &sec
		return nil
	default:
		b.invalid = true
		return nil
	}
}

// MarshalJSON always writes the canonical keyed-object shape.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Sections == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(b.Sections)
}

// IsObject reports whether the payload was a usable object (or a legacy
// array, which normalizes into one).
func (b *Body) IsObject() bool {
	return !b.invalid
}

// Snapshot is the portable unit of exchange.
type Snapshot struct {
	Metadata Metadata
	Data     *Body

	// HasMetadata records whether the artifact carried a metadata block
	// (or flattened metadata fields) at all.
	HasMetadata bool
}

// New creates an empty snapshot for the given declared type.
func New(dataType DataType) *Snapshot {
	return &Snapshot{
		Metadata: Metadata{
			DataType:   dataType,
			Version:    FormatVersion,
			ExportDate: time.Now(),
		},
		Data:        &Body{Sections: make(map[string]Section)},
		HasMetadata: true,
	}
}

// rawSnapshot accepts both a nested metadata block and the flattened
// metadata fields some app releases wrote at the top level.
type rawSnapshot struct {
	Metadata    *Metadata `json:"metadata"`
	DataType    DataType  `json:"dataType"`
	Version     string    `json:"version"`
	RecordCount int       `json:"recordCount"`
	ExportDate  time.Time `json:"exportDate"`
	Data        *Body     `json:"data"`
}

// UnmarshalJSON reads either metadata shape and the payload.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var raw rawSnapshot
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.Metadata != nil:
		s.Metadata = *raw.Metadata
		s.HasMetadata = true
	case raw.DataType != "" || raw.Version != "" || raw.RecordCount != 0:
		s.Metadata = Metadata{
			DataType:    raw.DataType,
			Version:     raw.Version,
			RecordCount: raw.RecordCount,
			ExportDate:  raw.ExportDate,
		}
		s.HasMetadata = true
	default:
		s.HasMetadata = false
	}

	s.Data = raw.Data
	s.normalize()
	return nil
}

// MarshalJSON writes the canonical shape: nested metadata plus a keyed
// object body.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Metadata Metadata `json:"metadata"`
		Data     *Body    `json:"data"`
	}{Metadata: s.Metadata, Data: s.Data})
}

// normalize moves a legacy flat-array payload under the declared type's
// section key. Legacy snapshots always declared a concrete type.
func (s *Snapshot) normalize() {
	if s.Data == nil || s.Data.legacy == nil {
		return
	}
	key := s.Metadata.DataType.PrimarySection()
	if key == "" {
		// A legacy array with no usable declared type cannot be placed.
		s.Data.invalid = true
		s.Data.legacy = nil
		return
	}
	s.Data.Sections = map[string]Section{key: *s.Data.legacy}
	s.Data.legacy = nil
}

// Section returns a named section and whether it is present.
func (s *Snapshot) Section(key string) (Section, bool) {
	if s.Data == nil || s.Data.Sections == nil {
		return Section{}, false
	}
	sec, ok := s.Data.Sections[key]
	return sec, ok
}

// SetSection stores a section under the given key.
func (s *Snapshot) SetSection(key string, sec Section) {
	if s.Data == nil {
		s.Data = &Body{}
	}
	if s.Data.Sections == nil {
		s.Data.Sections = make(map[string]Section)
	}
	s.Data.Sections[key] = sec
}
