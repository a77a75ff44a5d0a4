// Package http provides HTTP-based implementations of docmirror services:
// a guarded page fetcher and a robots.txt policy guard.
package http

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/fwojciec/docmirror"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultUserAgent identifies the crawler to origin servers.
const DefaultUserAgent = "docmirror/1.0"

// Ensure Fetcher implements docmirror.Fetcher at compile time.
var _ docmirror.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves text resources from URLs using HTTP requests.
// Responses are guarded before the body is read: non-text content types
// and bodies larger than the configured cap are rejected, and redirect
// chains longer than docmirror.MaxRedirects abort the request.
type Fetcher struct {
	client       *http.Client
	timeout      time.Duration
	userAgent    string
	maxBodyBytes int64
	retryDelays  []time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout (10s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodyBytes overrides the response size cap.
// Defaults to docmirror.MaxResponseBytes (1 MB).
func WithMaxBodyBytes(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodyBytes = n
	}
}

// WithRetryDelays overrides the backoff delays used by FetchWithRetry.
// This is useful for testing without waiting for real delays.
func WithRetryDelays(delays []time.Duration) Option {
	return func(f *Fetcher) {
		f.retryDelays = delays
	}
}

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// NewFetcher creates a new guarded HTTP Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:      DefaultFetchTimeout,
		userAgent:    DefaultUserAgent,
		maxBodyBytes: docmirror.MaxResponseBytes,
		retryDelays:  DefaultRetryDelays(),
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > docmirror.MaxRedirects {
				return docmirror.Errorf(docmirror.EINVALID, "stopped after %d redirects", docmirror.MaxRedirects)
			}
			return nil
		},
	}

	return f
}

// Fetch performs a single guarded GET request for the URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*docmirror.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EINVALID, "invalid URL %q", url)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,text/plain;q=0.8,*/*;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		// Surface the redirect cap error instead of the url.Error wrapper.
		var appErr *docmirror.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode, url); err != nil {
		return nil, err
	}

	contentType := mediaType(resp.Header.Get("Content-Type"))
	if !isTextContentType(contentType) {
		return nil, docmirror.HTTPErrorf(resp.StatusCode, docmirror.EINVALID,
			"unsupported content type %q for %s", contentType, url)
	}

	if resp.ContentLength > f.maxBodyBytes {
		return nil, docmirror.HTTPErrorf(resp.StatusCode, docmirror.EINVALID,
			"declared size %d exceeds %d byte limit for %s", resp.ContentLength, f.maxBodyBytes, url)
	}

	body, err := f.readBody(resp)
	if err != nil {
		return nil, err
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &docmirror.FetchResult{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: contentType,
		FinalURL:    finalURL,
		Header:      resp.Header.Clone(),
	}, nil
}

// FetchWithRetry wraps Fetch with exponential backoff.
// Transient failures (EUNAVAILABLE: HTTP 5xx, 429, network errors) are
// retried up to retries times; permanent failures return immediately.
func (f *Fetcher) FetchWithRetry(ctx context.Context, url string, retries int) (*docmirror.FetchResult, error) {
	maxAttempts := retries + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := f.Fetch(ctx, url)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if docmirror.ErrorCode(err) != docmirror.EUNAVAILABLE {
			return nil, err
		}

		// Don't sleep after the last attempt
		if attempt >= maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.retryDelay(attempt)):
		}
	}

	return nil, lastErr
}

// retryDelay returns the backoff delay for the given zero-based attempt.
// Beyond the configured delays the last delay keeps doubling.
func (f *Fetcher) retryDelay(attempt int) time.Duration {
	if len(f.retryDelays) == 0 {
		return 0
	}
	if attempt < len(f.retryDelays) {
		return f.retryDelays[attempt]
	}
	d := f.retryDelays[len(f.retryDelays)-1]
	for i := len(f.retryDelays) - 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// Close releases idle connections held by the underlying client.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}

func (f *Fetcher) readBody(resp *http.Response) ([]byte, error) {
	reader := io.Reader(resp.Body)
	closers := []io.Closer{}

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, docmirror.Errorf(docmirror.EINTERNAL, "gzip decode: %v", err)
		}
		reader = gz
		closers = append(closers, gz)
	case "br":
		reader = brotli.NewReader(resp.Body)
	case "deflate":
		fl := flate.NewReader(resp.Body)
		reader = fl
		closers = append(closers, fl)
	}

	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
	}()

	limited := io.LimitReader(reader, f.maxBodyBytes+1)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, docmirror.Errorf(docmirror.EUNAVAILABLE, "read body: %v", err)
	}
	if int64(len(body)) > f.maxBodyBytes {
		return nil, docmirror.HTTPErrorf(resp.StatusCode, docmirror.EINVALID,
			"response body exceeds %d byte limit", f.maxBodyBytes)
	}
	return body, nil
}

// checkStatus classifies a non-2xx status into an application error.
// 5xx and 429 are transient; everything else fails permanently.
func checkStatus(status int, url string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status >= 500 || status == http.StatusTooManyRequests:
		return docmirror.HTTPErrorf(status, docmirror.EUNAVAILABLE, "HTTP %d for %s", status, url)
	case status == http.StatusNotFound || status == http.StatusGone:
		return docmirror.HTTPErrorf(status, docmirror.ENOTFOUND, "HTTP %d for %s", status, url)
	default:
		return docmirror.HTTPErrorf(status, docmirror.EINVALID, "HTTP %d for %s", status, url)
	}
}

// mediaType extracts the media type from a Content-Type header value.
func mediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// isTextContentType reports whether the media type is text-like.
// An empty type is accepted; the size cap still applies.
func isTextContentType(mt string) bool {
	if mt == "" {
		return true
	}
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	switch mt {
	case "application/xml", "application/xhtml+xml", "application/rss+xml", "application/atom+xml":
		return true
	}
	return false
}
