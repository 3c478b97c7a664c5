package scope

// Scope resolves variable names to values.
type Scope interface {
	Lookup(name string) (string, bool)
}

// Map is a Scope backed by a plain map. A nil Map is an empty scope.
type Map map[string]string

// Lookup returns the value stored under name.
func (m Map) Lookup(name string) (string, bool) {
	value, ok := m[name]

	return value, ok
}

// Func adapts a function to the Scope interface.
type Func func(name string) (string, bool)

// Lookup calls f(name).
func (f Func) Lookup(name string) (string, bool) {
	return f(name)
}

// Get resolves name against s, treating a nil scope as empty.
func Get(s Scope, name string) (string, bool) {
	if s == nil {
		return "", false
	}

	return s.Lookup(name)
}
