package driven

// ConfigStore is the persisted key/value settings the SettingsService
// reads and writes. Keys are dotted paths such as "llm.provider".
//
// Typed getters return the zero value when a key is unset or holds
// another type; callers apply their own defaults.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	// GetFloat widens integers.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores and persists value immediately.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path locates the backing file, for diagnostics.
	Path() string
}
