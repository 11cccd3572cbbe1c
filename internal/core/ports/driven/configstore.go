package driven

// ConfigReader reads typed values by dotted key, e.g. "llm.provider".
// Typed getters return the zero value when the key is missing or holds a
// different type; GetFloat widens integers.
type ConfigReader interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string
}

// ConfigStore is a ConfigReader backed by persistent storage.
type ConfigStore interface {
	ConfigReader

	// Set stores a value and persists it before returning. A failed write
	// leaves the previous value in place.
	Set(key string, value any) error

	// Save writes the current values.
	Save() error

	// Load replaces the current values with what storage holds.
	Load() error

	// Path identifies the backing storage, e.g. a file path.
	Path() string
}
