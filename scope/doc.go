// Package scope defines the variable-resolution context handed to every lookup.
//
// A Scope is read-only from the point of view of this module. Callers supply one per
// lookup; it is used for %{name} interpolation and passed through untouched to backends.
package scope
