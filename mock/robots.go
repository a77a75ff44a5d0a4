package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.RobotsService = (*RobotsService)(nil)

// RobotsService is a mock implementation of docmirror.RobotsService.
type RobotsService struct {
	PolicyFn     func(ctx context.Context, pageURL string) *docmirror.RobotsPolicy
	ResetCacheFn func()
}

func (s *RobotsService) Policy(ctx context.Context, pageURL string) *docmirror.RobotsPolicy {
	return s.PolicyFn(ctx, pageURL)
}

func (s *RobotsService) ResetCache() {
	s.ResetCacheFn()
}
