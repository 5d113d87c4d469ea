package blog

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/blogfront/app/theme"
)

func newTestNormalizer() *Normalizer {
	return NewNormalizer(theme.Default(), "")
}

func decodeRaw(t *testing.T, payload string) RawPost {
	t.Helper()
	var raw RawPost
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	return raw
}

func TestNormalizerBodyShapes(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name     string
		payload  string
		expected []string
		shape    BodyShape
	}{
		{
			name:     "paragraph list",
			payload:  `{"slug":"a","title":"A","body":["First.","Second."]}`,
			expected: []string{"First.", "Second."},
			shape:    BodyParagraphs,
		},
		{
			name:     "json encoded list",
			payload:  `{"slug":"a","title":"A","body":"[\"First.\",\"Second.\"]"}`,
			expected: []string{"First.", "Second."},
			shape:    BodyEncodedParagraphs,
		},
		{
			name:     "html string",
			payload:  `{"slug":"a","title":"A","body":"<p>Hello <b>world</b></p>"}`,
			expected: []string{"<p>Hello <b>world</b></p>"},
			shape:    BodyText,
		},
		{
			name:     "string that looks like broken json",
			payload:  `{"slug":"a","title":"A","body":"[not json"}`,
			expected: []string{"[not json"},
			shape:    BodyText,
		},
		{
			name:     "missing body falls back to excerpt",
			payload:  `{"slug":"a","title":"A","excerpt":"Short"}`,
			expected: []string{"Short"},
			shape:    BodyMissing,
		},
		{
			name:     "null body",
			payload:  `{"slug":"a","title":"A","body":null}`,
			expected: []string{""},
			shape:    BodyMissing,
		},
		{
			name:     "empty list falls back to excerpt",
			payload:  `{"slug":"a","title":"A","excerpt":"Short","body":[]}`,
			expected: []string{"Short"},
			shape:    BodyParagraphs,
		},
		{
			name:     "json encoded empty list without excerpt",
			payload:  `{"slug":"a","title":"A","body":"[]"}`,
			expected: []string{""},
			shape:    BodyEncodedParagraphs,
		},
		{
			name:     "mixed element types",
			payload:  `{"slug":"a","title":"A","body":["One",2,{"k":"v"}]}`,
			expected: []string{"One", "2", `{"k":"v"}`},
			shape:    BodyParagraphs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := n.Run(decodeRaw(t, tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, post.Body)
			assert.Equal(t, tt.shape, post.BodyShape)
			assert.NotEmpty(t, post.Body)
		})
	}
}

func TestNormalizerIsDeterministic(t *testing.T) {
	n := newTestNormalizer()
	raw := decodeRaw(t, `{
		"slug": "growth-loops",
		"title": "Growth Loops",
		"body": "[\"One\",\"Two\"]",
		"tags": ["saas", "growth", "saas"],
		"reading_time": 7,
		"generated_at": "2024-03-05T10:00:00Z",
		"views": 1200
	}`)

	first, err := n.Run(raw)
	require.NoError(t, err)
	second, err := n.Run(raw)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestNormalizerReadingTimePrecedence(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		payload  string
		expected int
	}{
		{`{"slug":"a","title":"A","reading_time_minutes":9,"reading_time":4}`, 9},
		{`{"slug":"a","title":"A","reading_time":4}`, 4},
		{`{"slug":"a","title":"A","reading_time":"6"}`, 6},
		{`{"slug":"a","title":"A","reading_time_minutes":0,"reading_time":5}`, 5},
		{`{"slug":"a","title":"A"}`, DefaultReadingTime},
		{`{"slug":"a","title":"A","reading_time":"soon"}`, DefaultReadingTime},
	}

	for _, tt := range tests {
		post, err := n.Run(decodeRaw(t, tt.payload))
		require.NoError(t, err)
		assert.Equal(t, tt.expected, post.ReadingTimeMinutes, tt.payload)
	}
}

func TestNormalizerDefaults(t *testing.T) {
	n := newTestNormalizer()

	post, err := n.Run(decodeRaw(t, `{"slug":"plain","title":"Plain"}`))
	require.NoError(t, err)

	assert.NotNil(t, post.Tags)
	assert.Empty(t, post.Tags)
	assert.NotNil(t, post.SourceURLs)
	assert.Empty(t, post.SourceURLs)
	assert.Equal(t, DefaultPlaceholderImage, post.CoverImage)
	assert.Equal(t, theme.Uncategorized, post.Theme)
	assert.True(t, post.GeneratedAt.IsZero())
	assert.Nil(t, post.Views)
	assert.Nil(t, post.Likes)
	assert.Nil(t, post.Comments)
	assert.Empty(t, post.Author)
}

func TestNormalizerFieldReconciliation(t *testing.T) {
	n := NewNormalizer(theme.Default(), "https://img.example.com/fallback.png")

	post, err := n.Run(decodeRaw(t, `{
		"slug": "funding",
		"title": "Funding",
		"category": "Business",
		"featured_image": "https://img.example.com/featured.png",
		"tags": ["vc", "", "seed", "vc"],
		"source_urls": ["https://a.example.com", " ", "https://b.example.com"],
		"generated_at": "2024-03-05T10:00:00.123456",
		"views": "1500",
		"likes": 0,
		"comments": null,
		"author": "  Jane Founder "
	}`))
	require.NoError(t, err)

	assert.Equal(t, "https://img.example.com/featured.png", post.CoverImage)
	assert.Equal(t, "Business", post.Theme)
	assert.Equal(t, []string{"vc", "seed"}, post.Tags)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, post.SourceURLs)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 123456000, time.UTC), post.GeneratedAt)
	require.NotNil(t, post.Views)
	assert.Equal(t, 1500, *post.Views)
	assert.Nil(t, post.Likes)
	assert.Nil(t, post.Comments)
	assert.Equal(t, "Jane Founder", post.Author)

	withCover, err := n.Run(decodeRaw(t, `{"slug":"x","title":"X","cover_image":"https://c.example.com/c.png","featured_image":"https://f.example.com/f.png"}`))
	require.NoError(t, err)
	assert.Equal(t, "https://c.example.com/c.png", withCover.CoverImage)

	noImage, err := n.Run(decodeRaw(t, `{"slug":"y","title":"Y"}`))
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/fallback.png", noImage.CoverImage)
}

func TestNormalizerSchemaErrors(t *testing.T) {
	n := newTestNormalizer()

	_, err := n.Run(decodeRaw(t, `{"title":"No slug"}`))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "slug", schemaErr.Field)

	_, err = n.Run(decodeRaw(t, `{"slug":"no-title","title":"  "}`))
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "title", schemaErr.Field)
}

func TestNormalizerRunAllSkipsInvalidAndDuplicates(t *testing.T) {
	n := newTestNormalizer()

	var raws []RawPost
	require.NoError(t, json.Unmarshal([]byte(`[
		{"slug":"one","title":"One"},
		{"title":"Missing slug"},
		{"slug":"two","title":"Two"},
		{"slug":"one","title":"One again"}
	]`), &raws))

	posts := n.RunAll(raws)
	require.Len(t, posts, 2)
	assert.Equal(t, "one", posts[0].Slug)
	assert.Equal(t, "One", posts[0].Title)
	assert.Equal(t, "two", posts[1].Slug)
}

func TestStringListAcceptsSingleString(t *testing.T) {
	raw := decodeRaw(t, `{"slug":"a","title":"A","tags":"solo","source_urls":42}`)
	assert.Equal(t, StringList{"solo"}, raw.Tags)
	assert.Empty(t, raw.SourceURLs)
}
