package keys

import (
	"strings"

	"github.com/google/uuid"
)

// Generator hands out unique opaque keys for array items.
type Generator interface {
	NewKey() string
}

// UUID produces 12-character keys cut from random UUIDs.
type UUID struct{}

// NewKey returns a fresh key.
func (UUID) NewKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// Func adapts a plain function to Generator.
type Func func() string

// NewKey calls f.
func (f Func) NewKey() string { return f() }
