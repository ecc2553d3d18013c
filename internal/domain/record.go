// Package domain defines the POS entity types exchanged through snapshots.
//
// JSON tags use the camelCase names of the mobile app's snapshot wire
// format so that exported artifacts stay interchangeable with artifacts
// produced on devices.
package domain

import "time"

// Record provides common fields for entities that participate in
// snapshot exchange. Embedded in every exportable domain type.
type Record struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (r *Record) Touch() {
	r.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (r *Record) InitTimestamps() {
	now := time.Now()
	r.CreatedAt = now
	r.UpdatedAt = now
}
