package blog

import (
	"bytes"
	"cmp"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

const (
	DefaultReadingTime      = 3
	DefaultPlaceholderImage = "https://source.unsplash.com/1600x900/?startup,technology"
)

// ThemeResolver maps a post category to a gradient theme key.
type ThemeResolver interface {
	Key(category string) string
}

var generatedAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type Normalizer struct {
	themes           ThemeResolver
	placeholderImage string
}

func NewNormalizer(themes ThemeResolver, placeholderImage string) *Normalizer {
	return &Normalizer{
		themes:           themes,
		placeholderImage: cmp.Or(placeholderImage, DefaultPlaceholderImage),
	}
}

// Run converts a raw post into a Post. It only fails when the slug or title
// is missing; every other field degrades to a default.
func (n *Normalizer) Run(raw RawPost) (Post, error) {
	slug := strings.TrimSpace(raw.Slug)
	if slug == "" {
		return Post{}, &SchemaError{Field: "slug"}
	}
	if strings.TrimSpace(raw.Title) == "" {
		return Post{}, &SchemaError{Field: "title"}
	}

	body, shape := n.normalizeBody(raw.Body.raw, raw.Excerpt)
	if shape == BodyEncodedParagraphs {
		slog.Warn("Double-encoded post body", "slug", slug)
	}

	post := Post{
		Slug:               slug,
		Title:              raw.Title,
		Excerpt:            raw.Excerpt,
		Body:               body,
		BodyShape:          shape,
		CoverImage:         cmp.Or(strings.TrimSpace(raw.CoverImage), strings.TrimSpace(raw.FeaturedImage), n.placeholderImage),
		Category:           strings.TrimSpace(raw.Category),
		ReadingTimeMinutes: readingTime(raw),
		Tags:               uniqueStrings(raw.Tags),
		SourceURLs:         nonEmptyStrings(raw.SourceURLs),
		Author:             strings.TrimSpace(raw.Author),
		GeneratedAt:        parseGeneratedAt(raw.GeneratedAt),
		Views:              positive(raw.Views),
		Likes:              positive(raw.Likes),
		Comments:           positive(raw.Comments),
	}
	post.Theme = n.themes.Key(post.Category)

	return post, nil
}

// RunAll normalizes a collection. Invalid entries and repeated slugs are
// skipped so that slugs stay unique within the result.
func (n *Normalizer) RunAll(raws []RawPost) []Post {
	posts := make([]Post, 0, len(raws))
	seen := make(map[string]bool, len(raws))

	for i, raw := range raws {
		post, err := n.Run(raw)
		if err != nil {
			slog.Warn("Skipping invalid post", "index", i, "error", err)
			continue
		}
		if seen[post.Slug] {
			slog.Warn("Skipping duplicate post", "index", i, "slug", post.Slug)
			continue
		}
		seen[post.Slug] = true
		posts = append(posts, post)
	}

	return posts
}

func (n *Normalizer) normalizeBody(raw json.RawMessage, excerpt string) ([]string, BodyShape) {
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return []string{excerpt}, BodyMissing
	}

	switch raw[0] {
	case '[':
		if paragraphs, ok := decodeParagraphs(raw); ok {
			if len(paragraphs) == 0 {
				return []string{excerpt}, BodyParagraphs
			}
			return paragraphs, BodyParagraphs
		}
	case '"':
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			break
		}
		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "[") {
			if paragraphs, ok := decodeParagraphs([]byte(trimmed)); ok {
				if len(paragraphs) == 0 {
					return []string{excerpt}, BodyEncodedParagraphs
				}
				return paragraphs, BodyEncodedParagraphs
			}
		}
		return []string{text}, BodyText
	}

	return []string{stringify(raw)}, BodyText
}

func decodeParagraphs(data []byte) ([]string, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, false
	}

	paragraphs := make([]string, 0, len(elems))
	for _, elem := range elems {
		paragraphs = append(paragraphs, stringify(elem))
	}
	return paragraphs, true
}

func readingTime(raw RawPost) int {
	if raw.ReadingTimeMinutes.Valid && raw.ReadingTimeMinutes.Value > 0 {
		return raw.ReadingTimeMinutes.Value
	}
	if raw.ReadingTime.Valid && raw.ReadingTime.Value > 0 {
		return raw.ReadingTime.Value
	}
	return DefaultReadingTime
}

func parseGeneratedAt(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range generatedAtLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}

	slog.Debug("Unparsable generated_at", "value", value)
	return time.Time{}
}

func positive(v FlexInt) *int {
	if !v.Valid || v.Value <= 0 {
		return nil
	}
	value := v.Value
	return &value
}

func uniqueStrings(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func nonEmptyStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
