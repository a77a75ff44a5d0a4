// Package fs provides file-based storage for the documentation corpus.
package fs

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/fwojciec/docmirror"
)

// URLToFilePath converts a page URL to a corpus-relative markdown path.
// The origin is stripped, a trailing slash dropped, and any file
// extension replaced with .md. The root path maps to index.md.
// Example: https://example.com/docs/api/users → docs/api/users.md
func URLToFilePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", docmirror.Errorf(docmirror.EINVALID, "invalid page URL %q", rawURL)
	}

	p := strings.TrimPrefix(u.Path, "/")
	p = strings.TrimSuffix(p, "/")
	if p == "" {
		return "index.md", nil
	}

	if ext := path.Ext(p); ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	return p + ".md", nil
}

// DefaultDir returns the default output directory for a site: a
// per-host directory under the user cache root. Unparseable URLs land
// in an "unknown" directory.
func DefaultDir(rawURL string) string {
	host := "unknown"
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return filepath.Join(xdg.CacheHome, "docmirror", host)
}
