package docmirror

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into GitHub-flavored Markdown.
	// The input should be clean HTML (e.g., from an Extractor).
	Convert(html string) (string, error)
}
