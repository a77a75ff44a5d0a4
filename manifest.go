package docmirror

import "context"

// ManifestKind identifies the accepted manifest forms.
type ManifestKind string

const (
	// ManifestIndex is a structured markdown index (llms.txt).
	ManifestIndex ManifestKind = "manifest-index"

	// ManifestFull is a single-file content dump (llms-full.txt).
	ManifestFull ManifestKind = "manifest-full"

	// ManifestSitemap is an XML sitemap or sitemap index.
	ManifestSitemap ManifestKind = "sitemap"
)

// ManifestEntry is one linked page in an index manifest.
type ManifestEntry struct {
	// Label is the link text. When the manifest lists a bare path, the
	// label is synthesized from the final URL segment.
	Label string

	// URL is the absolute page URL.
	URL string
}

// ManifestSection groups index entries under one H2 heading.
type ManifestSection struct {
	Name    string
	Entries []ManifestEntry
}

// ManifestDocument is the parsed structure of an index manifest.
type ManifestDocument struct {
	// Title is the manifest's H1 heading.
	Title string

	// Description is the blockquote following the title, if present.
	Description string

	// Sections holds entries grouped by heading, in document order.
	// Entries appearing before the first H2 live in a section with an
	// empty name.
	Sections []ManifestSection
}

// ManifestResolution is the outcome of resolving a manifest URL.
type ManifestResolution struct {
	Kind ManifestKind

	// Document is the parsed index, set only for ManifestIndex.
	Document *ManifestDocument

	// URLs are the page URLs to crawl, in discovery order.
	URLs []string
}

// ManifestService classifies manifest URLs and expands them into page URLs.
type ManifestService interface {
	// Classify determines the manifest kind from the URL's filename
	// without network access. Unrecognized filenames return an EINVALID
	// error naming the accepted forms.
	Classify(url string) (ManifestKind, error)

	// Resolve fetches the manifest and expands it into page URLs.
	// Index entries are resolved against the manifest origin, a full
	// dump resolves to itself, and sitemap indexes are expanded
	// recursively in document order.
	Resolve(ctx context.Context, url string) (*ManifestResolution, error)
}
