package present

import (
	"log/slog"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/lysyi3m/blogfront/app/blog"
)

// NewShareData builds the share payload for post published at pageURL.
func NewShareData(post blog.Post, pageURL string) ShareData {
	return ShareData{
		Title: post.Title,
		Text:  ShareText(post),
		URL:   pageURL,
	}
}

// ShareText is the plain-text summary sent along with a shared link. Paragraph
// bodies are joined; a markup body is reduced to its readable text.
func ShareText(post blog.Post) string {
	switch {
	case post.BodyShape == blog.BodyMissing:
		return post.Excerpt
	case HasMarkup(post):
		if text := extractText(post.Body[0]); text != "" {
			return text
		}
		return post.Excerpt
	default:
		return strings.Join(post.Body, " ")
	}
}

func extractText(html string) string {
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		slog.Debug("Failed to extract share text", "error", err)
		return ""
	}
	return strings.Join(strings.Fields(article.TextContent), " ")
}
