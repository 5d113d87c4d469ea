package blog

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
)

type ViewState string

const (
	StateLoading  ViewState = "loading"
	StateLoaded   ViewState = "loaded"
	StateFailed   ViewState = "failed"
	StateNotFound ViewState = "not_found"
)

type PostFetcher interface {
	FetchPost(ctx context.Context, slug string) (Post, error)
}

type PostsFetcher interface {
	FetchPosts(ctx context.Context) ([]Post, error)
}

// PostView is the state behind a detail page. Every load is tagged with the
// slug and sequence number it was issued for, and a response is applied only
// while that tag is still the view's current target.
type PostView struct {
	fetcher PostFetcher

	mu     sync.Mutex
	target string
	seq    uint64
	closed bool
	state  ViewState
	post   Post
	err    error
}

type PostSnapshot struct {
	Slug  string
	State ViewState
	Post  Post
	Err   error
}

func NewPostView(fetcher PostFetcher) *PostView {
	return &PostView{fetcher: fetcher, state: StateLoading}
}

// Load points the view at slug and fetches it. An empty slug leaves the view
// loading without issuing a request. ErrStale is returned when the target
// changed (or the view closed) while the request was in flight.
func (v *PostView) Load(ctx context.Context, slug string) error {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.target = slug
	v.state = StateLoading
	v.post = Post{}
	v.err = nil
	v.mu.Unlock()

	if slug == "" {
		return nil
	}

	post, err := v.fetcher.FetchPost(ctx, slug)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || seq != v.seq || slug != v.target {
		slog.Debug("Discarding stale post response", "slug", slug, "current", v.target)
		return ErrStale
	}

	switch {
	case err == nil:
		v.state = StateLoaded
		v.post = post
	case IsNotFound(err):
		v.state = StateNotFound
		v.err = err
	default:
		v.state = StateFailed
		v.err = err
	}

	return err
}

// Close marks the view as gone; responses still in flight are ignored.
func (v *PostView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

func (v *PostView) Snapshot() PostSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return PostSnapshot{Slug: v.target, State: v.state, Post: v.post, Err: v.err}
}

// ListView is the state behind a collection page. Refresh may be called
// concurrently; the most recently issued request wins.
type ListView struct {
	fetcher PostsFetcher

	mu      sync.Mutex
	seq     uint64
	closed  bool
	state   ViewState
	posts   []Post
	err     error
	fetches int
}

type ListSnapshot struct {
	State ViewState
	Posts []Post
	Err   error
}

func NewListView(fetcher PostsFetcher) *ListView {
	return &ListView{fetcher: fetcher, state: StateLoading}
}

func (v *ListView) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.seq++
	seq := v.seq
	v.fetches++
	v.mu.Unlock()

	posts, err := v.fetcher.FetchPosts(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || seq != v.seq {
		slog.Debug("Discarding stale collection response", "seq", seq, "current", v.seq)
		return ErrStale
	}

	if err != nil {
		v.state = StateFailed
		v.err = err
		return err
	}

	v.state = StateLoaded
	v.posts = posts
	v.err = nil
	return nil
}

func (v *ListView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
}

// Fetches counts how many collection requests the view has issued.
func (v *ListView) Fetches() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fetches
}

func (v *ListView) Snapshot() ListSnapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	posts := make([]Post, len(v.posts))
	copy(posts, v.posts)
	return ListSnapshot{State: v.state, Posts: posts, Err: v.err}
}

// IsNotFound reports whether err means the API had no such post: either a
// 404 or a response without an item.
func IsNotFound(err error) bool {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Kind == KindMissingField ||
			(fetchErr.Kind == KindHTTPStatus && fetchErr.Status == http.StatusNotFound)
	}
	return errors.Is(err, ErrNoSlug)
}
