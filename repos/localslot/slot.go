package localslot

// Slot is a small key/value area that survives restarts of the same actor,
// like a browser's localStorage.
type Slot interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
}
