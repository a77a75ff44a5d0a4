// Package glob compiles glob patterns into URL filters.
package glob

import (
	"net/url"
	"strings"

	"github.com/fwojciec/docmirror"
	"github.com/gobwas/glob"
)

// Compile-time interface verification.
var _ docmirror.URLPattern = (*Pattern)(nil)

// Pattern matches URLs against a compiled glob.
// Patterns starting with "/" match against the URL path only, so
// "/docs/*" matches "https://example.com/docs/api". All other patterns
// match against the full URL string.
type Pattern struct {
	glob     glob.Glob
	pathOnly bool
}

// Compile compiles a single glob pattern. The wildcard crosses path
// separators, so "/docs/*" also matches nested paths.
func Compile(pattern string) (*Pattern, error) {
	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "invalid glob pattern %q", pattern)
	}
	return &Pattern{
		glob:     g,
		pathOnly: strings.HasPrefix(pattern, "/"),
	}, nil
}

// Match reports whether the URL matches the pattern.
func (p *Pattern) Match(rawURL string) bool {
	if p.pathOnly {
		if u, err := url.Parse(rawURL); err == nil {
			return p.glob.Match(u.Path)
		}
	}
	return p.glob.Match(rawURL)
}

// CompileFilter builds a URLFilter from include and exclude pattern lists.
// It returns nil when both lists are empty, which passes every URL.
func CompileFilter(include, exclude []string) (*docmirror.URLFilter, error) {
	if len(include) == 0 && len(exclude) == 0 {
		return nil, nil
	}

	f := &docmirror.URLFilter{}
	for _, pattern := range include {
		p, err := Compile(pattern)
		if err != nil {
			return nil, err
		}
		f.Include = append(f.Include, p)
	}
	for _, pattern := range exclude {
		p, err := Compile(pattern)
		if err != nil {
			return nil, err
		}
		f.Exclude = append(f.Exclude, p)
	}
	return f, nil
}
