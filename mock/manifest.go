package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.ManifestService = (*ManifestService)(nil)

// ManifestService is a mock implementation of docmirror.ManifestService.
type ManifestService struct {
	ClassifyFn func(url string) (docmirror.ManifestKind, error)
	ResolveFn  func(ctx context.Context, url string) (*docmirror.ManifestResolution, error)
}

func (s *ManifestService) Classify(url string) (docmirror.ManifestKind, error) {
	return s.ClassifyFn(url)
}

func (s *ManifestService) Resolve(ctx context.Context, url string) (*docmirror.ManifestResolution, error) {
	return s.ResolveFn(ctx, url)
}
