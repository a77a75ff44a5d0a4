package manifest

import (
	"context"
	"strings"

	"github.com/beevik/etree"
	"github.com/fwojciec/docmirror"
)

// Ensure Resolver implements docmirror.ManifestService.
var _ docmirror.ManifestService = (*Resolver)(nil)

// Resolver fetches manifests and expands them into page URLs.
type Resolver struct {
	fetcher docmirror.Fetcher
}

// NewResolver creates a Resolver that fetches manifests through the
// given fetcher.
func NewResolver(fetcher docmirror.Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Classify determines the manifest kind from the URL's filename.
func (r *Resolver) Classify(rawURL string) (docmirror.ManifestKind, error) {
	return Classify(rawURL)
}

// Resolve classifies the manifest URL and expands it into page URLs.
// Classification failures return before any network access.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) (*docmirror.ManifestResolution, error) {
	kind, err := Classify(rawURL)
	if err != nil {
		return nil, err
	}

	switch kind {
	case docmirror.ManifestIndex:
		res, err := r.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		doc, err := ParseIndex(string(res.Body), rawURL)
		if err != nil {
			return nil, err
		}
		return &docmirror.ManifestResolution{
			Kind:     kind,
			Document: doc,
			URLs:     ExtractURLs(doc),
		}, nil

	case docmirror.ManifestFull:
		// A full dump is itself the single page to crawl.
		return &docmirror.ManifestResolution{
			Kind: kind,
			URLs: []string{rawURL},
		}, nil

	default:
		urls, err := r.expandSitemap(ctx, rawURL, make(map[string]bool))
		if err != nil {
			return nil, err
		}
		return &docmirror.ManifestResolution{
			Kind: kind,
			URLs: dedupe(urls),
		}, nil
	}
}

// expandSitemap fetches and parses a sitemap, handling both urlset and
// sitemapindex documents. Sitemap indexes recurse in document order; the
// seen set keeps mutually-referencing indexes from looping.
func (r *Resolver) expandSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	res, err := r.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(res.Body); err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "parsing sitemap XML at %s: %v", sitemapURL, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "empty sitemap XML at %s", sitemapURL)
	}

	if root.Tag == "sitemapindex" {
		return r.expandSitemapIndex(ctx, root, seen)
	}

	return parseURLSet(root), nil
}

// expandSitemapIndex processes a <sitemapindex> element recursively.
func (r *Resolver) expandSitemapIndex(ctx context.Context, root *etree.Element, seen map[string]bool) ([]string, error) {
	var allURLs []string

	for _, sitemap := range root.SelectElements("sitemap") {
		loc := sitemap.SelectElement("loc")
		if loc == nil {
			continue
		}
		childURL := strings.TrimSpace(loc.Text())
		if childURL == "" {
			continue
		}

		urls, err := r.expandSitemap(ctx, childURL, seen)
		if err != nil {
			return nil, err
		}
		allURLs = append(allURLs, urls...)
	}

	return allURLs, nil
}

// parseURLSet extracts page URLs from a <urlset> element in document order.
func parseURLSet(root *etree.Element) []string {
	var urls []string
	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		u := strings.TrimSpace(loc.Text())
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := urls[:0]
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}
