package present

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/lysyi3m/blogfront/app/blog"
	"github.com/lysyi3m/blogfront/app/monitor"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	IndexTemplate      = "index.html"
	BlogListTemplate   = "blog_list.html"
	PostTemplate       = "post.html"
	LegacyPostTemplate = "blog_post.html"
)

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"count": Count,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

type ListPage struct {
	Title      string
	Version    string
	State      blog.ViewState
	Error      string
	Cards      []Card
	Count      int
	Generating bool
	Progress   []string
	Empty      bool
}

// NewListPage builds a collection page from the collection state and the
// current progress session.
func NewListPage(list blog.ListSnapshot, progress monitor.Snapshot, themes Themes) ListPage {
	page := ListPage{
		Title:      "Startup Insights",
		State:      list.State,
		Cards:      NewCards(list.Posts, true, themes),
		Count:      len(list.Posts),
		Generating: progress.State == monitor.Streaming,
		Progress:   progress.Log,
	}
	if list.Err != nil {
		page.Error = list.Err.Error()
	}
	page.Empty = list.State == blog.StateLoaded && page.Count == 0 && !page.Generating
	return page
}

// NewLegacyListPage builds the simple collection layout that links to the
// simple article layout.
func NewLegacyListPage(list blog.ListSnapshot, themes Themes) ListPage {
	page := NewListPage(list, monitor.Snapshot{State: monitor.Idle}, themes)
	page.Title = "Latest Blogs"
	page.Cards = NewCards(list.Posts, false, themes)
	for i := range page.Cards {
		page.Cards[i].Link = LegacyPostPath(page.Cards[i].Slug)
	}
	return page
}

type DetailPage struct {
	Title              string
	Version            string
	State              blog.ViewState
	Error              string
	Detail             Detail
	ScrollTopThreshold int
}

func NewDetailPage(snap blog.PostSnapshot, themes Themes) DetailPage {
	return newDetailPage(snap, themes, NewDetail)
}

func NewLegacyDetailPage(snap blog.PostSnapshot, themes Themes) DetailPage {
	return newDetailPage(snap, themes, NewLegacyDetail)
}

func newDetailPage(snap blog.PostSnapshot, themes Themes, build func(blog.Post, Themes) Detail) DetailPage {
	page := DetailPage{State: snap.State, ScrollTopThreshold: ScrollTopThreshold}

	switch snap.State {
	case blog.StateLoaded:
		page.Detail = build(snap.Post, themes)
		page.Title = snap.Post.Title
	case blog.StateNotFound:
		page.Title = "Article Not Found"
	case blog.StateFailed:
		page.Title = "Error"
		if snap.Err != nil {
			page.Error = snap.Err.Error()
		}
	default:
		page.Title = "Loading"
	}

	return page
}
