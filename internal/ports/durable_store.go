package ports

// DurableStore is a device-scoped key/value store surviving process restarts,
// with localStorage semantics: synchronous, no network, no TTL. One-shot flags
// must be deleted by the consumer immediately after being read, so a later
// restart cannot replay an already-completed flow.
type DurableStore interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}
