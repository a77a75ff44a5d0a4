// Package bloom provides approximate URL membership tracking for crawl
// deduplication.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter is a Bloom filter over URL strings. A lookup may report a URL
// as present when it is not (false positive); it never misses a URL
// that was added. Sized generously, the false positive rate stays
// negligible for the lifetime of a crawl.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n expected URLs with the given
// false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// TestAndAdd records the URL and reports whether it was already present.
func (f *Filter) TestAndAdd(url string) bool {
	return f.f.TestAndAddString(url)
}

// Add records the URL.
func (f *Filter) Add(url string) {
	f.f.AddString(url)
}

// Test reports whether the URL might have been added.
func (f *Filter) Test(url string) bool {
	return f.f.TestString(url)
}

// EstimatedCount returns the approximate number of URLs added.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
