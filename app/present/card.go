package present

import (
	"cmp"
	"net/url"

	"github.com/lysyi3m/blogfront/app/blog"
)

const (
	cardAuthorDefault = "Startup Blog"
	featuredLabel     = "FEATURED"
)

// Themes resolves gradient classes for theme keys.
type Themes interface {
	Gradient(key string) string
	Featured() string
}

// Card is the view model of a post summary card.
type Card struct {
	Slug        string
	Title       string
	Excerpt     string
	Link        string
	Gradient    string
	Label       string
	Featured    bool
	Date        string
	Views       string
	Likes       string
	Comments    string
	ReadingTime int
	Tags        []string
	MoreTags    int
	Initials    string
	Author      string
}

func NewCard(post blog.Post, featured bool, themes Themes) Card {
	tags, more := CardTags(post.Tags)

	card := Card{
		Slug:        post.Slug,
		Title:       post.Title,
		Excerpt:     post.Excerpt,
		Link:        PostPath(post.Slug),
		Gradient:    themes.Gradient(post.Theme),
		Label:       CategoryLabel(post.Category),
		Featured:    featured,
		Date:        ShortDate(post.GeneratedAt),
		Views:       optionalCount(post.Views),
		Likes:       optionalCount(post.Likes),
		Comments:    optionalCount(post.Comments),
		ReadingTime: post.ReadingTimeMinutes,
		Tags:        tags,
		MoreTags:    more,
		Initials:    Initials(post.Author),
		Author:      cmp.Or(post.Author, cardAuthorDefault),
	}

	if featured {
		card.Gradient = themes.Featured()
		card.Label = featuredLabel
	}

	return card
}

// NewCards builds the cards of a collection page; the first post is
// highlighted when featureFirst is set.
func NewCards(posts []blog.Post, featureFirst bool, themes Themes) []Card {
	cards := make([]Card, 0, len(posts))
	for i, post := range posts {
		cards = append(cards, NewCard(post, featureFirst && i == 0, themes))
	}
	return cards
}

// PostPath is the detail page of a post.
func PostPath(slug string) string {
	return "/posts/" + url.PathEscape(slug)
}

// LegacyPostPath is the detail page of a post in the simple layout.
func LegacyPostPath(slug string) string {
	return "/blog/" + url.PathEscape(slug)
}

func optionalCount(n *int) string {
	if n == nil {
		return ""
	}
	return Count(*n)
}
