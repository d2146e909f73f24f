package config

// DefaultValues returns the default config map for every key.
func DefaultValues() map[string]string {
	return Flatten(Default())
}
