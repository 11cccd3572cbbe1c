package driven

// NormaliserRegistry selects the appropriate normaliser for an uploaded file.
// It maintains a priority-ordered list of normalisers per extension and
// falls back to a lossy UTF-8 decode when none matches.
type NormaliserRegistry interface {
	TextExtractor

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedExtensions returns all extensions with a dedicated normaliser.
	SupportedExtensions() []string
}
