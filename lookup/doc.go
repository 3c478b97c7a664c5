// Package lookup dispatches key lookups across the configured backends.
//
// The Dispatcher walks the backend names from the configuration store in order, skips
// names without a registered factory, creates each backend once through the instance
// cache and asks it for the key. The first backend returning an answer wins; later
// backends are not consulted. When none answers, the default is interpolated against the
// scope and returned.
//
// Backend errors are returned to the caller as they are; the dispatcher never retries
// and never moves on to the next backend after a failure.
package lookup
