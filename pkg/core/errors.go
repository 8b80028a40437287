package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors shared by stores and the catalog service.
var (
	// ErrNotFound is returned when no asset has the requested ID.
	ErrNotFound = errors.New("asset not found")
	// ErrDuplicateID is returned when creating an asset whose ID is taken.
	ErrDuplicateID = errors.New("asset id already exists")
	// ErrKindImmutable is returned when an update tries to change the asset kind.
	ErrKindImmutable = errors.New("asset kind cannot be changed")
	// ErrReadOnly is returned for mutations while the catalog is in view mode.
	ErrReadOnly = errors.New("catalog is in view mode")
)

// ValidationError reports which fields of an asset failed validation.
// Fields maps a field name to the failed rule.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid asset: " + strings.Join(parts, ", ")
}
