package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectIsRevision(t *testing.T) {
	tests := []struct {
		objType  string
		expected bool
	}{
		{"ItemRevision", true},
		{"DocumentRevision", true},
		{"CCObjectRevision", true},
		{"documentrevision", true},
		{"Dataset", false},
		{"PDF", false},
		{"MSExcelX", false},
		{"", false},
	}

	for _, tt := range tests {
		obj := Object{UID: "x", Type: tt.objType}
		assert.Equal(t, tt.expected, obj.IsRevision(), "type %q", tt.objType)
	}
}
