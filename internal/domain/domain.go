// Package domain holds the persisted records of the mapping service: vendors,
// their per-namespace mappings, the append-only mapping history and the shared
// parameter catalog.
package domain

import (
	"strings"

	"github.com/google/uuid"
)

// DefaultNamespace is used when a mapping or resolution names no namespace.
const DefaultNamespace = "default"

// NormalizeNamespace trims ns and falls back to DefaultNamespace.
func NormalizeNamespace(ns string) string {
	ns = strings.TrimSpace(ns)
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}

// ParseID parses an opaque identifier. A malformed id is a validation
// failure, never a miss.
func ParseID(op, what, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, NewError(CodeValidation, op, "invalid "+what+" id format", err)
	}
	return id, nil
}
