package mock

import "github.com/fwojciec/docmirror"

var _ docmirror.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docmirror.Extractor.
type Extractor struct {
	ExtractFn func(html string, pageURL string) (*docmirror.ExtractResult, error)
}

func (e *Extractor) Extract(html string, pageURL string) (*docmirror.ExtractResult, error) {
	return e.ExtractFn(html, pageURL)
}
