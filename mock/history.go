package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.HistoryService = (*HistoryService)(nil)

// HistoryService is a mock implementation of docmirror.HistoryService.
type HistoryService struct {
	SaveRunFn  func(ctx context.Context, ledger *docmirror.Ledger) error
	ListRunsFn func(ctx context.Context, origin string) ([]*docmirror.RunSummary, error)
	FindRunFn  func(ctx context.Context, runID string) (*docmirror.Ledger, error)
}

func (s *HistoryService) SaveRun(ctx context.Context, ledger *docmirror.Ledger) error {
	return s.SaveRunFn(ctx, ledger)
}

func (s *HistoryService) ListRuns(ctx context.Context, origin string) ([]*docmirror.RunSummary, error) {
	return s.ListRunsFn(ctx, origin)
}

func (s *HistoryService) FindRun(ctx context.Context, runID string) (*docmirror.Ledger, error) {
	return s.FindRunFn(ctx, runID)
}
