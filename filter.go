package docmirror

// URLPattern matches URLs for filtering.
type URLPattern interface {
	Match(url string) bool
}

// URLFilter specifies patterns for including/excluding URLs.
type URLFilter struct {
	// Include patterns - if set, only URLs matching at least one pattern are included.
	Include []URLPattern

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []URLPattern
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(url string) bool {
	if f == nil {
		return true
	}

	// If include patterns exist, URL must match at least one
	if len(f.Include) > 0 {
		matched := false
		for _, p := range f.Include {
			if p.Match(url) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	// Check exclude patterns
	for _, p := range f.Exclude {
		if p.Match(url) {
			return false
		}
	}

	return true
}

// Apply returns the URLs that pass the filter, preserving order.
func (f *URLFilter) Apply(urls []string) []string {
	if f == nil {
		return urls
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out
}
