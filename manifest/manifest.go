// Package manifest classifies manifest URLs and expands them into
// crawlable page URLs. Three manifest forms are recognized by filename:
// a structured index (llms.txt), a full-content dump (llms-full.txt),
// and XML sitemaps (sitemap*.xml, including sitemap indexes).
package manifest

import (
	"bufio"
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/fwojciec/docmirror"
)

// Classify determines the manifest kind from the URL's filename.
// It performs no network access; unrecognized filenames return EINVALID.
func Classify(rawURL string) (docmirror.ManifestKind, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", docmirror.Errorf(docmirror.EINVALID, "invalid manifest URL %q", rawURL)
	}

	base := strings.ToLower(path.Base(u.Path))
	switch {
	case base == "llms.txt":
		return docmirror.ManifestIndex, nil
	case base == "llms-full.txt":
		return docmirror.ManifestFull, nil
	case strings.HasPrefix(base, "sitemap") && strings.HasSuffix(base, ".xml"):
		return docmirror.ManifestSitemap, nil
	}

	return "", docmirror.Errorf(docmirror.EINVALID,
		"unsupported manifest %q: expected llms.txt, llms-full.txt, or sitemap*.xml", base)
}

// ParseIndex parses the line-oriented index grammar:
//
//	# Title
//	> Optional description
//	## Section
//	- Label: /path
//	- /bare/path
//
// Entry paths are resolved against manifestURL. Entries before the first
// section heading land in a section with an empty name. Markdown-style
// link entries ("- [Label](/path)") are accepted as well. Lines that
// match no form are ignored.
func ParseIndex(content, manifestURL string) (*docmirror.ManifestDocument, error) {
	base, err := url.Parse(manifestURL)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "invalid manifest URL %q", manifestURL)
	}

	doc := &docmirror.ManifestDocument{}
	current := docmirror.ManifestSection{}
	inHeader := true
	var desc []string

	flush := func() {
		if current.Name != "" || len(current.Entries) > 0 {
			doc.Sections = append(doc.Sections, current)
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "## "):
			flush()
			current = docmirror.ManifestSection{Name: strings.TrimSpace(line[3:])}
			inHeader = false
		case strings.HasPrefix(line, "# "):
			if doc.Title == "" {
				doc.Title = strings.TrimSpace(line[2:])
			}
		case strings.HasPrefix(line, ">"):
			if inHeader {
				if text := strings.TrimSpace(strings.TrimPrefix(line, ">")); text != "" {
					desc = append(desc, text)
				}
			}
		case strings.HasPrefix(line, "- "):
			inHeader = false
			entry, ok := parseEntry(strings.TrimSpace(line[2:]), base)
			if ok {
				current.Entries = append(current.Entries, entry)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, docmirror.Errorf(docmirror.EINTERNAL, "reading manifest: %v", err)
	}
	flush()

	doc.Description = strings.Join(desc, " ")
	return doc, nil
}

// ExtractURLs flattens the index into page URLs, deduplicated in
// document order.
func ExtractURLs(doc *docmirror.ManifestDocument) []string {
	var urls []string
	seen := make(map[string]bool)
	for _, section := range doc.Sections {
		for _, entry := range section.Entries {
			if !seen[entry.URL] {
				seen[entry.URL] = true
				urls = append(urls, entry.URL)
			}
		}
	}
	return urls
}

// parseEntry parses one list item into an entry. The leading "- " has
// already been stripped.
func parseEntry(rest string, base *url.URL) (docmirror.ManifestEntry, bool) {
	var label, target string

	switch {
	case strings.HasPrefix(rest, "["):
		// Markdown link form: [Label](/path)
		sep := strings.Index(rest, "](")
		if sep < 0 {
			return docmirror.ManifestEntry{}, false
		}
		end := strings.Index(rest[sep+2:], ")")
		if end < 0 {
			return docmirror.ManifestEntry{}, false
		}
		label = strings.TrimSpace(rest[1:sep])
		target = strings.TrimSpace(rest[sep+2 : sep+2+end])
	default:
		// Labeled form: Label: /path. A bare URL has no ": " to split on.
		if idx := strings.Index(rest, ": "); idx > 0 {
			label = strings.TrimSpace(rest[:idx])
			target = strings.TrimSpace(rest[idx+2:])
		} else {
			target = rest
		}
	}

	if target == "" {
		return docmirror.ManifestEntry{}, false
	}

	ref, err := url.Parse(target)
	if err != nil {
		return docmirror.ManifestEntry{}, false
	}
	abs := base.ResolveReference(ref).String()

	if label == "" {
		label = synthesizeLabel(ref.Path)
	}

	return docmirror.ManifestEntry{Label: label, URL: abs}, true
}

// synthesizeLabel derives a label from the final path segment by
// title-casing it: "/docs/getting-started" becomes "Getting Started".
func synthesizeLabel(urlPath string) string {
	slug := path.Base(strings.TrimSuffix(urlPath, "/"))
	slug = strings.TrimSuffix(slug, path.Ext(slug))
	if slug == "" || slug == "." || slug == "/" {
		return "Index"
	}

	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
