package kv

// Store is the minimal key-value contract the cart persistence layer consumes.
// Implementations must be safe for concurrent use.
// Allows swapping backends (in-memory, file, Redis) without touching cart logic.
type Store interface {
	// Read returns the last value written for key.
	// Returns: (value, found, error)
	// - found = false: key was never written or has been deleted
	Read(key string) (string, bool, error)

	// Write durably stores value under key, overwriting any prior value.
	Write(key string, value string) error

	// Delete removes the stored value. Deleting an absent key is not an error.
	Delete(key string) error
}
