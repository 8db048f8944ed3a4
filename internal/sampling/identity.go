package sampling

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// IdentityResolver resolves and caches the bot's own username, used for
// mention detection. Resolution happens at most once per process;
// concurrent first-time callers share a single in-flight lookup.
type IdentityResolver struct {
	fetch func(ctx context.Context) (string, error)
	group singleflight.Group

	mu     sync.RWMutex
	handle string
}

// NewIdentityResolver creates a resolver around a transport lookup
// (typically the bot's getMe call).
func NewIdentityResolver(fetch func(ctx context.Context) (string, error)) *IdentityResolver {
	return &IdentityResolver{fetch: fetch}
}

// Handle returns the cached bot username, resolving it on first use.
// A failed resolution is not cached; the next caller retries.
func (r *IdentityResolver) Handle(ctx context.Context) (string, error) {
	r.mu.RLock()
	handle := r.handle
	r.mu.RUnlock()
	if handle != "" {
		return handle, nil
	}

	v, err, _ := r.group.Do("identity", func() (interface{}, error) {
		r.mu.RLock()
		cached := r.handle
		r.mu.RUnlock()
		if cached != "" {
			return cached, nil
		}

		resolved, err := r.fetch(ctx)
		if err != nil {
			return "", err
		}

		r.mu.Lock()
		r.handle = resolved
		r.mu.Unlock()
		return resolved, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
