// Package id provides record identifier generation and validation.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NewRecordID creates a new stable record identifier.
//
// Record IDs are UUIDs so that snapshots created on one device can be
// matched by identifier after import on another.
func NewRecordID() string {
	return uuid.NewString()
}

// Valid reports whether s is a well-formed record identifier.
// Empty strings and malformed input return false, never an error.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

// Token creates a short random token using NanoID.
// Used for checkpoint IDs and other non-record identifiers where
// compactness matters more than UUID compatibility.
func Token() (string, error) {
	token, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

// MustToken is like Token but panics if generation fails.
// Use only where entropy exhaustion should crash the program.
func MustToken() string {
	token, err := Token()
	if err != nil {
		panic(fmt.Sprintf("failed to generate token: %v", err))
	}
	return token
}
