package crawl

import (
	"mime"
	"net/http"

	"github.com/fwojciec/docmirror"
)

// markdownTitle returns the first top-level heading in the markdown, or
// "". Headings inside fenced code blocks do not count.
func markdownTitle(markdown string) string {
	for _, section := range docmirror.ExtractSections(markdown) {
		if section.Level == 1 {
			return section.Title
		}
	}
	return ""
}

// isMarkdownContentType reports whether the media type carries markdown
// or plain text that bypasses HTML extraction.
func isMarkdownContentType(mt string) bool {
	switch mt {
	case "text/markdown", "text/x-markdown", "text/plain":
		return true
	}
	return false
}

// contentMediaType returns the response's bare media type, sniffing the
// body when the server declared none.
func contentMediaType(res *docmirror.FetchResult) string {
	ct := res.ContentType
	if ct == "" {
		ct = http.DetectContentType(res.Body)
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}
