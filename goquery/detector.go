package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docmirror"
)

// Ensure Detector implements docmirror.FrameworkDetector at compile time.
var _ docmirror.FrameworkDetector = (*Detector)(nil)

// Detector identifies documentation frameworks from HTML content.
// It checks the meta generator tag first, then framework-specific CSS
// classes and data attributes unique to each documentation generator.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified framework.
// Returns FrameworkUnknown if the framework cannot be determined.
func (d *Detector) Detect(html string) docmirror.Framework {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return docmirror.FrameworkUnknown
	}
	return d.detectDocument(doc)
}

// detectDocument is the document-level detection used by the extractor,
// which already holds a parsed document.
func (d *Detector) detectDocument(doc *goquery.Document) docmirror.Framework {
	if framework := d.detectFromMetaGenerator(doc); framework != docmirror.FrameworkUnknown {
		return framework
	}

	// Structural markers, most specific first.
	probes := []struct {
		selector  string
		framework docmirror.Framework
	}{
		{"#__docusaurus", docmirror.FrameworkDocusaurus},
		{".theme-doc-sidebar-container", docmirror.FrameworkDocusaurus},
		{"[data-md-color-scheme]", docmirror.FrameworkMkDocs},
		{"[data-md-component]", docmirror.FrameworkMkDocs},
		{".sphinxsidebar", docmirror.FrameworkSphinx},
		{".toctree-wrapper", docmirror.FrameworkSphinx},
		{".wy-nav-side", docmirror.FrameworkSphinx},
		{"#VPContent", docmirror.FrameworkVitePress},
		{".vp-doc", docmirror.FrameworkVitePress},
		{".theme-default-content", docmirror.FrameworkVuePress},
		{".sidebar-links", docmirror.FrameworkVuePress},
		{"[data-testid='space.sidebar']", docmirror.FrameworkGitBook},
		{"[data-testid='page.desktopTableOfContents']", docmirror.FrameworkGitBook},
		{".nextra-sidebar", docmirror.FrameworkNextra},
		{".nextra-toc", docmirror.FrameworkNextra},
	}

	for _, probe := range probes {
		if doc.Find(probe.selector).Length() > 0 {
			return probe.framework
		}
	}

	return docmirror.FrameworkUnknown
}

// detectFromMetaGenerator checks the meta generator tag.
// Most reliable signal when present.
func (d *Detector) detectFromMetaGenerator(doc *goquery.Document) docmirror.Framework {
	generator, exists := doc.Find("meta[name='generator']").Attr("content")
	if !exists {
		return docmirror.FrameworkUnknown
	}
	generator = strings.ToLower(generator)

	switch {
	case strings.Contains(generator, "sphinx"):
		return docmirror.FrameworkSphinx
	case strings.Contains(generator, "gitbook"):
		return docmirror.FrameworkGitBook
	case strings.Contains(generator, "docusaurus"):
		return docmirror.FrameworkDocusaurus
	case strings.Contains(generator, "mkdocs"):
		return docmirror.FrameworkMkDocs
	case strings.Contains(generator, "vitepress"):
		return docmirror.FrameworkVitePress
	case strings.Contains(generator, "vuepress"):
		return docmirror.FrameworkVuePress
	case strings.Contains(generator, "nextra"):
		return docmirror.FrameworkNextra
	}

	return docmirror.FrameworkUnknown
}
