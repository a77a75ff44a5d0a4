package docmirror

// ExtractResult holds the extracted content from an HTML page.
type ExtractResult struct {
	// Title is the page title. Sources are tried in order: the title
	// element, the first h1, the og:title meta property. Empty when
	// none is present.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, header, footer, sidebar) has been removed and
	// link and image URLs are absolute.
	ContentHTML string
}

// Extractor extracts main content from HTML pages, removing boilerplate.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	// The page URL is the base for resolving relative links and images.
	Extract(html string, pageURL string) (*ExtractResult, error)
}
