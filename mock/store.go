package mock

import (
	"context"

	"github.com/fwojciec/docmirror"
)

var _ docmirror.Store = (*Store)(nil)

// Store is a mock implementation of docmirror.Store.
type Store struct {
	InitFn             func() error
	DirFn              func() string
	SetSourceFn        func(kind docmirror.ManifestKind)
	SavePageFn         func(ctx context.Context, page *docmirror.Page) error
	RecordFailureFn    func(url string, status int)
	HasUnchangedFn     func(url string, hash string) bool
	ExistingFilePathFn func(url string) string
	PageCountFn        func() int
	SaveMetaFn         func() (*docmirror.Ledger, error)
}

func (s *Store) Init() error {
	return s.InitFn()
}

func (s *Store) Dir() string {
	return s.DirFn()
}

func (s *Store) SetSource(kind docmirror.ManifestKind) {
	s.SetSourceFn(kind)
}

func (s *Store) SavePage(ctx context.Context, page *docmirror.Page) error {
	return s.SavePageFn(ctx, page)
}

func (s *Store) RecordFailure(url string, status int) {
	s.RecordFailureFn(url, status)
}

func (s *Store) HasUnchanged(url string, hash string) bool {
	return s.HasUnchangedFn(url, hash)
}

func (s *Store) ExistingFilePath(url string) string {
	return s.ExistingFilePathFn(url)
}

func (s *Store) PageCount() int {
	return s.PageCountFn()
}

func (s *Store) SaveMeta() (*docmirror.Ledger, error) {
	return s.SaveMetaFn()
}
