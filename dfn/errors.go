package dfn

import (
	"fmt"
	"strings"
)

// InvalidArrayTypeError indicates a field with a shape whose base type
// is not one of the scalar kinds. Fatal for the enclosing component.
type InvalidArrayTypeError struct {
	Field string
	Type  string
}

func (e *InvalidArrayTypeError) Error() string {
	return fmt.Sprintf("Unsupported array type for field %q: %s", e.Field, e.Type)
}

// MissingCompositeError indicates a recarray/record/keystring
// directive which names no sibling fields.
type MissingCompositeError struct {
	Field string
	Type  string
}

func (e *MissingCompositeError) Error() string {
	return fmt.Sprintf("Missing composite definition for field %q: %s", e.Field, e.Type)
}

// HierarchyError indicates a violated component-tree invariant:
// there must be exactly one parentless component, named Root.
type HierarchyError struct {
	Roots []string
}

func (e *HierarchyError) Error() string {
	if len(e.Roots) != 1 {
		return fmt.Sprintf("Expected one root component, found %d", len(e.Roots))
	}
	return fmt.Sprintf("Expected root component %q, found %q", Root, e.Roots[0])
}

// UnknownComponentError indicates a request naming a component absent
// from the loaded definitions.
type UnknownComponentError struct {
	Name string
}

func (e *UnknownComponentError) Error() string {
	return fmt.Sprintf("Unknown component: %s", e.Name)
}

// SchemaKeyError indicates unrecognized attribute keys during strict
// deserialization.
type SchemaKeyError struct {
	Context string
	Keys    []string
}

func (e *SchemaKeyError) Error() string {
	return fmt.Sprintf("Unrecognized keys in %s: %s", e.Context, strings.Join(e.Keys, ", "))
}
