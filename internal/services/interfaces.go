package services

// ThemeCatalog resolves predefined theme names to candidate words.
type ThemeCatalog interface {
	Lookup(name string) ([]string, bool)
	// Default is the list used when a name is unknown.
	Default() (name string, words []string)
}

// Random is the process-wide random source.
type Random interface {
	IntN(n int) int
	Read(p []byte) (int, error)
}
