package vfs

import "github.com/google/uuid"

// Identity uniquely identifies a backend instance across process
// lifetime. It backs the aggregate watcher's "remove by backend
// identity" operation and lets FileChangedEvent/FileRenamedEvent name
// their originating backend without holding a reference to it (which
// would complicate ownership and prevent garbage collection of disposed
// backends still referenced by in-flight events).
type Identity uuid.UUID

// NewIdentity allocates a fresh, globally unique Identity.
func NewIdentity() Identity {
	return Identity(uuid.New())
}

// String returns the canonical UUID string form.
func (id Identity) String() string {
	return uuid.UUID(id).String()
}

// IsZero reports whether id is the zero Identity (never assigned).
func (id Identity) IsZero() bool {
	return id == Identity{}
}
