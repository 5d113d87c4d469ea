package api

import (
	"context"
	"time"

	"github.com/lysyi3m/blogfront/app/blog"
	"github.com/lysyi3m/blogfront/app/feed"
	"github.com/lysyi3m/blogfront/app/monitor"
	"github.com/lysyi3m/blogfront/app/present"
)

type PostSource interface {
	blog.PostFetcher
	blog.PostsFetcher
}

var _ PostSource = (*blog.Client)(nil)

type GeneratorInterface interface {
	Run(posts []blog.Post) (string, error)
}

var _ GeneratorInterface = (*feed.Generator)(nil)

type MonitorInterface interface {
	Start(ctx context.Context) uint64
	Stop()
	Snapshot() monitor.Snapshot
	Subscribe() (monitor.Snapshot, <-chan monitor.Update, func())
}

var _ MonitorInterface = (*monitor.Monitor)(nil)

// ThemeTable is what handlers need from the theme table.
type ThemeTable interface {
	present.Themes
	Count() int
}

type Handler struct {
	posts     PostSource
	dashboard *blog.ListView
	monitor   MonitorInterface
	generator GeneratorInterface
	themes    ThemeTable
}

// postJSON is the JSON shape of a normalized post.
type postJSON struct {
	Slug               string     `json:"slug"`
	Title              string     `json:"title"`
	Excerpt            string     `json:"excerpt"`
	Body               []string   `json:"body"`
	BodyShape          string     `json:"body_shape"`
	CoverImage         string     `json:"cover_image"`
	Category           string     `json:"category,omitempty"`
	Theme              string     `json:"theme"`
	ReadingTimeMinutes int        `json:"reading_time_minutes"`
	Tags               []string   `json:"tags"`
	SourceURLs         []string   `json:"source_urls"`
	Author             string     `json:"author,omitempty"`
	GeneratedAt        *time.Time `json:"generated_at,omitempty"`
	Views              *int       `json:"views,omitempty"`
	Likes              *int       `json:"likes,omitempty"`
	Comments           *int       `json:"comments,omitempty"`
}

func newPostJSON(post blog.Post) postJSON {
	p := postJSON{
		Slug:               post.Slug,
		Title:              post.Title,
		Excerpt:            post.Excerpt,
		Body:               post.Body,
		BodyShape:          string(post.BodyShape),
		CoverImage:         post.CoverImage,
		Category:           post.Category,
		Theme:              post.Theme,
		ReadingTimeMinutes: post.ReadingTimeMinutes,
		Tags:               post.Tags,
		SourceURLs:         post.SourceURLs,
		Author:             post.Author,
		Views:              post.Views,
		Likes:              post.Likes,
		Comments:           post.Comments,
	}
	if !post.GeneratedAt.IsZero() {
		generatedAt := post.GeneratedAt
		p.GeneratedAt = &generatedAt
	}
	return p
}

// responseSharer answers a share request on behalf of the browser: it records
// which host capability the page script should invoke.
type responseSharer struct {
	native bool
	action string
	data   present.ShareData
	text   string
}

func (s *responseSharer) CanShare() bool {
	return s.native
}

func (s *responseSharer) Share(data present.ShareData) error {
	s.action = "share"
	s.data = data
	return nil
}

func (s *responseSharer) CopyToClipboard(text string) error {
	s.action = "copy"
	s.text = text
	return nil
}
