// Package session persists conversation histories across turns, keyed by
// session id. The Store interface lives here; backends are implemented in
// sub-packages (badger) or in-process (InMemoryStore) so the wiring layer
// alone decides durability.
package session
