// Package interpolate expands %{name} placeholders in data source names, datadir
// templates, defaults and backend answers.
//
// Each placeholder is resolved against the caller's scope first and an optional
// extra-data scope second; a variable found in neither expands to the empty string.
// After every substitution the whole string is scanned again, so a value that itself
// contains %{...} is expanded as well. Values are not escaped: when scope values come
// from untrusted input a chain of self-referencing values can keep the scan going, which
// is why expansion stops with ErrExpansionLimit after MaxPasses substitutions.
//
// An unterminated "%{" never matches and is left as literal text.
package interpolate
