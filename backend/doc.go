// Package backend defines the contract between the lookup dispatcher and data backends.
//
// A backend is registered by name with a Factory in a Registry. The dispatcher creates
// each configured backend at most once through a Cache and reuses the instance for every
// later lookup, so factories are the place for expensive setup such as opening
// connections.
//
// Backends receive the lookup key, the caller's scope, an optional hierarchy override and
// a ResolutionType. The resolution type only affects how a single backend combines the
// answers it finds across its data sources; Accumulator implements the three standard
// strategies.
package backend
