package present

import (
	"cmp"
	"html/template"
	"regexp"

	"github.com/lysyi3m/blogfront/app/blog"
)

const detailAuthorDefault = "Anonymous"

var markupPattern = regexp.MustCompile(`<[a-zA-Z][^>]*>`)

type Source struct {
	Number int
	URL    string
}

// Detail is the view model of a full article page.
type Detail struct {
	Slug        string
	Title       string
	Excerpt     string
	Gradient    string
	CoverImage  string
	Category    string
	Author      string
	Date        string
	ReadingTime int
	Views       string
	Tags        []string
	Paragraphs  []string
	HTMLBody    template.HTML
	Sources     []Source
}

func NewDetail(post blog.Post, themes Themes) Detail {
	sources := make([]Source, 0, len(post.SourceURLs))
	for i, u := range post.SourceURLs {
		sources = append(sources, Source{Number: i + 1, URL: u})
	}

	tags := make([]string, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, "#"+tag)
	}

	return Detail{
		Slug:        post.Slug,
		Title:       post.Title,
		Excerpt:     post.Excerpt,
		Gradient:    themes.Gradient(post.Theme),
		CoverImage:  post.CoverImage,
		Category:    post.Category,
		Author:      cmp.Or(post.Author, detailAuthorDefault),
		Date:        LongDate(post.GeneratedAt),
		ReadingTime: post.ReadingTimeMinutes,
		Views:       optionalCount(post.Views),
		Tags:        tags,
		Paragraphs:  post.Body,
		Sources:     sources,
	}
}

// NewLegacyDetail builds the simple article layout. A body that arrived as a
// single string of markup is rendered as HTML; everything else stays escaped
// paragraphs.
func NewLegacyDetail(post blog.Post, themes Themes) Detail {
	d := NewDetail(post, themes)
	if HasMarkup(post) {
		d.HTMLBody = template.HTML(post.Body[0])
		d.Paragraphs = nil
	}
	return d
}

// HasMarkup reports whether the post body is a single HTML string.
func HasMarkup(post blog.Post) bool {
	return post.BodyShape == blog.BodyText && len(post.Body) == 1 && markupPattern.MatchString(post.Body[0])
}
