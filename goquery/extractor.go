// Package goquery provides CSS-selector based HTML content extraction.
// It strips page chrome, selects the main content region (using
// framework-specific selectors when the documentation generator is
// recognized), and rewrites link and image URLs to absolute form.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docmirror"
)

// Ensure Extractor implements docmirror.Extractor at compile time.
var _ docmirror.Extractor = (*Extractor)(nil)

// boilerplateSelector matches elements removed before content root
// selection: scripts, embedded styling, and navigation chrome.
const boilerplateSelector = "script, style, noscript, template, iframe, " +
	"nav, header, footer, aside, " +
	".sidebar, .sphinxsidebar, .menu, .navbar, .toc, .table-of-contents, " +
	".breadcrumbs, .pagination, .edit-page"

// frameworkRoots lists content root selectors per framework, tried in
// order before the generic main/article/body chain.
var frameworkRoots = map[docmirror.Framework][]string{
	docmirror.FrameworkDocusaurus: {".theme-doc-markdown", "article"},
	docmirror.FrameworkMkDocs:     {"article.md-content__inner", ".md-content"},
	docmirror.FrameworkSphinx:     {"div.body", "[role='main']", ".document"},
	docmirror.FrameworkVuePress:   {".theme-default-content"},
	docmirror.FrameworkVitePress:  {".vp-doc", ".VPDoc"},
	docmirror.FrameworkNextra:     {".nextra-content", "article"},
}

// Extractor isolates the main content of a documentation page.
type Extractor struct {
	detector *Detector
}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{detector: NewDetector()}
}

// Extract processes raw HTML and returns the main content with link and
// image URLs resolved against pageURL.
func (e *Extractor) Extract(rawHTML string, pageURL string) (*docmirror.ExtractResult, error) {
	if rawHTML == "" {
		return nil, docmirror.Errorf(docmirror.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "failed to parse HTML: %v", err)
	}

	// Detect before stripping: the markers live in the chrome.
	framework := e.detector.detectDocument(doc)

	doc.Find(boilerplateSelector).Remove()

	root := contentRoot(doc, framework)

	if base, err := url.Parse(pageURL); err == nil && base.IsAbs() {
		absolutizeURLs(root, base)
	}
	dropEmptyAnchors(root)

	title := pageTitle(doc, root)

	contentHTML, err := goquery.OuterHtml(root)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "failed to render content: %v", err)
	}

	return &docmirror.ExtractResult{
		Title:       title,
		ContentHTML: contentHTML,
	}, nil
}

// contentRoot selects the element holding the page's main content.
// Framework-specific selectors are tried first, then main, article, and
// finally body.
func contentRoot(doc *goquery.Document, framework docmirror.Framework) *goquery.Selection {
	for _, selector := range frameworkRoots[framework] {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	for _, selector := range []string{"main", "article", "body"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return doc.Selection
}

// absolutizeURLs rewrites a[href] and img[src] attributes to absolute
// URLs resolved against base.
func absolutizeURLs(root *goquery.Selection, base *url.URL) {
	root.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if abs := absoluteURL(base, href); abs != "" {
			sel.SetAttr("href", abs)
		}
	})
	root.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		if abs := absoluteURL(base, src); abs != "" {
			sel.SetAttr("src", abs)
		}
	})
}

// absoluteURL resolves ref against base.
// Returns "" when the reference should be left untouched.
func absoluteURL(base *url.URL, ref string) string {
	if ref == "" || isNonHTTPLink(ref) {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// dropEmptyAnchors removes anchors with no visible text.
// Anchors wrapping images are kept.
func dropEmptyAnchors(root *goquery.Selection) {
	root.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if strings.TrimSpace(sel.Text()) == "" && sel.Find("img").Length() == 0 {
			sel.Remove()
		}
	})
}

// pageTitle returns the page title, preferring the title tag, then the
// first content heading, then the og:title meta property.
func pageTitle(doc *goquery.Document, root *goquery.Selection) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(root.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if og, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		return strings.TrimSpace(og)
	}
	return ""
}
