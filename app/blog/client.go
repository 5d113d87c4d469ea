package blog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

const (
	postsPath  = "/api/v1/blogs"
	streamPath = "/api/v1/scrape/stream"
)

// Client fetches posts from the blog API. Each call issues exactly one
// request; there is no retry, caching or request coalescing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	normalizer *Normalizer
	userAgent  string
}

func NewClient(baseURL string, httpClient *http.Client, normalizer *Normalizer, userAgent string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		normalizer: normalizer,
		userAgent:  userAgent,
	}
}

// PostsURL is the collection endpoint.
func (c *Client) PostsURL() string {
	return c.baseURL + postsPath
}

// PostURL is the single-post endpoint for slug.
func (c *Client) PostURL(slug string) string {
	return c.baseURL + postsPath + "/" + url.PathEscape(slug)
}

// StreamURL is the generation progress event stream.
func (c *Client) StreamURL() string {
	return c.baseURL + streamPath
}

func (c *Client) FetchPosts(ctx context.Context) ([]Post, error) {
	endpoint := c.PostsURL()

	envelope, err := c.FetchResource(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if isNull(envelope.Items) {
		return nil, &FetchError{Kind: KindMissingField, URL: endpoint, Field: "items"}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(envelope.Items, &elems); err != nil {
		return nil, &FetchError{Kind: KindMalformedBody, URL: endpoint, Err: fmt.Errorf("decode items: %w", err)}
	}

	// An entry that does not decode is skipped like any other invalid one.
	raws := make([]RawPost, 0, len(elems))
	for i, elem := range elems {
		var raw RawPost
		if err := json.Unmarshal(elem, &raw); err != nil {
			slog.Warn("Skipping invalid post", "index", i, "error", err)
			continue
		}
		raws = append(raws, raw)
	}

	posts := c.normalizer.RunAll(raws)
	slog.Debug("Fetched posts", "url", endpoint, "received", len(elems), "count", len(posts))

	return posts, nil
}

func (c *Client) FetchPost(ctx context.Context, slug string) (Post, error) {
	if strings.TrimSpace(slug) == "" {
		return Post{}, ErrNoSlug
	}
	endpoint := c.PostURL(slug)

	envelope, err := c.FetchResource(ctx, endpoint)
	if err != nil {
		return Post{}, err
	}

	if isNull(envelope.Item) {
		return Post{}, &FetchError{Kind: KindMissingField, URL: endpoint, Field: "item"}
	}

	var raw RawPost
	if err := json.Unmarshal(envelope.Item, &raw); err != nil {
		return Post{}, &FetchError{Kind: KindMalformedBody, URL: endpoint, Err: fmt.Errorf("decode item: %w", err)}
	}

	post, err := c.normalizer.Run(raw)
	if err != nil {
		return Post{}, fmt.Errorf("normalize post %s: %w", slug, err)
	}

	slog.Debug("Fetched post", "url", endpoint, "slug", post.Slug, "body_shape", post.BodyShape)
	return post, nil
}

// FetchResource issues a GET for endpoint and decodes the JSON envelope.
// Non-2xx statuses, non-JSON content types, undecodable bodies and transport
// failures come back as *FetchError.
func (c *Client) FetchResource(ctx context.Context, endpoint string) (*Envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, URL: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: KindNetwork, URL: endpoint, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Kind: KindHTTPStatus, URL: endpoint, Status: resp.StatusCode, Snippet: snippet(data)}
	}

	contentType := resp.Header.Get("Content-Type")
	if !isJSONContentType(contentType) {
		return nil, &FetchError{
			Kind:        KindUnexpectedContentType,
			URL:         endpoint,
			Status:      resp.StatusCode,
			ContentType: contentType,
			Snippet:     snippet(data),
		}
	}

	var envelope Envelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		// Well-formed JSON that is not an object has neither item nor items;
		// callers report that as a missing field.
		var typeErr *json.UnmarshalTypeError
		if !json.Valid(data) || !errors.As(err, &typeErr) {
			return nil, &FetchError{Kind: KindMalformedBody, URL: endpoint, Status: resp.StatusCode, Snippet: snippet(data), Err: err}
		}
		envelope = Envelope{}
	}

	return &envelope, nil
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
