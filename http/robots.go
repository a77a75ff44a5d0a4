package http

import (
	"context"
	"net/url"
	"sync"

	"github.com/fwojciec/docmirror"
	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"
)

// Ensure RobotsGuard implements docmirror.RobotsService at compile time.
var _ docmirror.RobotsService = (*RobotsGuard)(nil)

// RobotsGuard resolves robots.txt policies per origin.
// Each origin's robots.txt is fetched at most once per cache lifetime;
// concurrent lookups for the same origin share a single fetch. Fetch or
// parse failures yield a permissive policy unless the guard is
// configured to fail closed.
type RobotsGuard struct {
	fetcher    docmirror.Fetcher
	userAgent  string
	failClosed bool

	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]*docmirror.RobotsPolicy
}

// GuardOption configures a RobotsGuard.
type GuardOption func(*RobotsGuard)

// WithAgent sets the user-agent token matched against robots.txt groups.
// Defaults to DefaultUserAgent.
func WithAgent(ua string) GuardOption {
	return func(g *RobotsGuard) {
		g.userAgent = ua
	}
}

// WithFailClosed makes the guard deny all paths on an origin whose
// robots.txt could not be obtained or parsed.
func WithFailClosed() GuardOption {
	return func(g *RobotsGuard) {
		g.failClosed = true
	}
}

// NewRobotsGuard creates a RobotsGuard that fetches robots.txt through
// the given fetcher.
func NewRobotsGuard(fetcher docmirror.Fetcher, opts ...GuardOption) *RobotsGuard {
	g := &RobotsGuard{
		fetcher:   fetcher,
		userAgent: DefaultUserAgent,
		cache:     make(map[string]*docmirror.RobotsPolicy),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Policy returns the robots policy governing pageURL.
func (g *RobotsGuard) Policy(ctx context.Context, pageURL string) *docmirror.RobotsPolicy {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return g.failurePolicy()
	}
	origin := u.Scheme + "://" + u.Host

	g.mu.RLock()
	policy, ok := g.cache[origin]
	g.mu.RUnlock()
	if ok {
		return policy
	}

	v, _, _ := g.group.Do(origin, func() (any, error) {
		policy := g.resolve(ctx, origin)
		g.mu.Lock()
		g.cache[origin] = policy
		g.mu.Unlock()
		return policy, nil
	})
	policy, _ = v.(*docmirror.RobotsPolicy)
	return policy
}

// ResetCache discards all cached policies.
func (g *RobotsGuard) ResetCache() {
	g.mu.Lock()
	g.cache = make(map[string]*docmirror.RobotsPolicy)
	g.mu.Unlock()
}

// resolve fetches and parses one origin's robots.txt.
func (g *RobotsGuard) resolve(ctx context.Context, origin string) *docmirror.RobotsPolicy {
	res, err := g.fetcher.Fetch(ctx, origin+"/robots.txt")
	if err != nil {
		return g.failurePolicy()
	}

	data, err := robotstxt.FromBytes(res.Body)
	if err != nil {
		return g.failurePolicy()
	}

	group := data.FindGroup(g.userAgent)
	if group == nil {
		group = data.FindGroup("*")
	}
	if group == nil {
		return g.failurePolicy()
	}

	return &docmirror.RobotsPolicy{
		Allow:      group.Test,
		CrawlDelay: group.CrawlDelay,
		Sitemaps:   data.Sitemaps,
	}
}

func (g *RobotsGuard) failurePolicy() *docmirror.RobotsPolicy {
	allowed := !g.failClosed
	return &docmirror.RobotsPolicy{
		Allow: func(string) bool { return allowed },
	}
}
