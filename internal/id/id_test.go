package id_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iceblockp/mobile-pos-sub001/internal/id"
)

func TestNewRecordID(t *testing.T) {
	a := id.NewRecordID()
	b := id.NewRecordID()

	assert.NotEqual(t, a, b)
	assert.True(t, id.Valid(a))
	assert.True(t, id.Valid(b))
}

func TestValid(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"canonical uuid", "f47ac10b-58cc-4372-a567-0e02b2c3d479", true},
		{"uppercase uuid", "F47AC10B-58CC-4372-A567-0E02B2C3D479", true},
		{"empty", "", false},
		{"short id", "u1", false},
		{"garbage", "not-a-uuid-at-all", false},
		{"almost uuid", "f47ac10b-58cc-4372-a567-0e02b2c3d47", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, id.Valid(tt.input))
		})
	}
}

func TestToken(t *testing.T) {
	a, err := id.Token()
	require.NoError(t, err)
	b, err := id.Token()
	require.NoError(t, err)

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}
