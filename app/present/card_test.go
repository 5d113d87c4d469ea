package present

import (
	"html/template"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/lysyi3m/blogfront/app/blog"
	"github.com/lysyi3m/blogfront/app/theme"
)

func intPtr(n int) *int {
	return &n
}

func testPost() blog.Post {
	return blog.Post{
		Slug:               "growth loops",
		Title:              "Growth Loops",
		Excerpt:            "How loops beat funnels",
		Body:               []string{"First.", "Second."},
		BodyShape:          blog.BodyParagraphs,
		CoverImage:         "https://img.example.com/cover.png",
		Category:           "Technology",
		Theme:              "Technology",
		ReadingTimeMinutes: 7,
		Tags:               []string{"saas", "growth", "ai", "seed"},
		SourceURLs:         []string{"https://a.example.com", "https://b.example.com"},
		Author:             "Jane Founder",
		GeneratedAt:        time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
		Views:              intPtr(1500),
		Likes:              intPtr(42),
	}
}

func TestNewCard(t *testing.T) {
	themes := theme.Default()
	card := NewCard(testPost(), false, themes)

	if card.Gradient != themes.Gradient("Technology") {
		t.Errorf("Expected Technology gradient, got '%s'", card.Gradient)
	}
	if card.Label != "TECHNOLOGY" {
		t.Errorf("Expected label 'TECHNOLOGY', got '%s'", card.Label)
	}
	if card.Date != "Mar 5, 2024" {
		t.Errorf("Expected date 'Mar 5, 2024', got '%s'", card.Date)
	}
	if card.Views != "1,500" {
		t.Errorf("Expected views '1,500', got '%s'", card.Views)
	}
	if card.Likes != "42" {
		t.Errorf("Expected likes '42', got '%s'", card.Likes)
	}
	if card.Comments != "" {
		t.Errorf("Expected comments hidden, got '%s'", card.Comments)
	}
	if card.MoreTags != 1 {
		t.Errorf("Expected 1 hidden tag, got %d", card.MoreTags)
	}
	if card.Initials != "JF" {
		t.Errorf("Expected initials 'JF', got '%s'", card.Initials)
	}
	if card.Link != "/posts/growth%20loops" {
		t.Errorf("Expected escaped link, got '%s'", card.Link)
	}
}

func TestNewCardDefaultsAndFeatured(t *testing.T) {
	themes := theme.Default()

	post := blog.Post{Slug: "plain", Title: "Plain", Body: []string{""}, Theme: theme.Uncategorized, ReadingTimeMinutes: blog.DefaultReadingTime}
	card := NewCard(post, false, themes)

	if card.Author != "Startup Blog" {
		t.Errorf("Expected default author 'Startup Blog', got '%s'", card.Author)
	}
	if card.Initials != "A" {
		t.Errorf("Expected default initials 'A', got '%s'", card.Initials)
	}
	if card.Label != "ARTICLE" {
		t.Errorf("Expected default label 'ARTICLE', got '%s'", card.Label)
	}
	if card.Gradient != themes.Gradient(theme.Uncategorized) {
		t.Errorf("Expected uncategorized gradient, got '%s'", card.Gradient)
	}
	if card.Views != "" || card.Date != "" {
		t.Errorf("Expected hidden views and empty date, got '%s' and '%s'", card.Views, card.Date)
	}

	featured := NewCard(post, true, themes)
	if featured.Label != "FEATURED" {
		t.Errorf("Expected label 'FEATURED', got '%s'", featured.Label)
	}
	if featured.Gradient != themes.Featured() {
		t.Errorf("Expected featured gradient, got '%s'", featured.Gradient)
	}
}

func TestNewCards(t *testing.T) {
	posts := []blog.Post{testPost(), testPost()}
	posts[1].Slug = "other"

	cards := NewCards(posts, true, theme.Default())
	if len(cards) != 2 {
		t.Fatalf("Expected 2 cards, got %d", len(cards))
	}
	if !cards[0].Featured || cards[1].Featured {
		t.Errorf("Expected only the first card to be featured")
	}
}

func TestNewDetail(t *testing.T) {
	detail := NewDetail(testPost(), theme.Default())

	if detail.Author != "Jane Founder" {
		t.Errorf("Expected author 'Jane Founder', got '%s'", detail.Author)
	}
	if detail.Date != "March 5, 2024" {
		t.Errorf("Expected date 'March 5, 2024', got '%s'", detail.Date)
	}
	if !reflect.DeepEqual(detail.Tags, []string{"#saas", "#growth", "#ai", "#seed"}) {
		t.Errorf("Expected hash tags, got %v", detail.Tags)
	}
	if len(detail.Sources) != 2 || detail.Sources[1].Number != 2 {
		t.Errorf("Expected numbered sources, got %v", detail.Sources)
	}
	if !reflect.DeepEqual(detail.Paragraphs, []string{"First.", "Second."}) {
		t.Errorf("Expected paragraphs, got %v", detail.Paragraphs)
	}

	anonymous := NewDetail(blog.Post{Slug: "x", Title: "X", Body: []string{"x"}}, theme.Default())
	if anonymous.Author != "Anonymous" {
		t.Errorf("Expected default author 'Anonymous', got '%s'", anonymous.Author)
	}
}

func TestNewLegacyDetail(t *testing.T) {
	themes := theme.Default()

	post := testPost()
	post.Body = []string{"<p>Hello <b>world</b></p>"}
	post.BodyShape = blog.BodyText

	detail := NewLegacyDetail(post, themes)
	if detail.HTMLBody != template.HTML("<p>Hello <b>world</b></p>") {
		t.Errorf("Expected markup body, got '%s'", detail.HTMLBody)
	}
	if detail.Paragraphs != nil {
		t.Errorf("Expected no paragraphs alongside markup body, got %v", detail.Paragraphs)
	}

	plain := testPost()
	plain.Body = []string{"1 < 2 and 3 > 2"}
	plain.BodyShape = blog.BodyText
	if got := NewLegacyDetail(plain, themes); got.HTMLBody != "" {
		t.Errorf("Expected text without tags to stay escaped, got '%s'", got.HTMLBody)
	}

	if got := NewLegacyDetail(testPost(), themes); got.HTMLBody != "" || len(got.Paragraphs) != 2 {
		t.Errorf("Expected paragraph body to stay escaped")
	}
}

func TestShareText(t *testing.T) {
	post := testPost()
	if got := ShareText(post); got != "First. Second." {
		t.Errorf("Expected joined paragraphs, got '%s'", got)
	}

	missing := blog.Post{Excerpt: "Short", Body: []string{"Short"}, BodyShape: blog.BodyMissing}
	if got := ShareText(missing); got != "Short" {
		t.Errorf("Expected excerpt, got '%s'", got)
	}

	html := testPost()
	html.BodyShape = blog.BodyText
	html.Body = []string{"<html><body><article><h1>Growth</h1><p>" +
		strings.Repeat("Loops compound because every new user brings the next one. ", 20) +
		"</p></article></body></html>"}
	got := ShareText(html)
	if got == "" || strings.Contains(got, "<") {
		t.Errorf("Expected plain text from markup body, got '%s'", got)
	}
}

func TestNewShareData(t *testing.T) {
	data := NewShareData(testPost(), "https://blog.example.com/posts/growth-loops")

	if data.Title != "Growth Loops" {
		t.Errorf("Expected title 'Growth Loops', got '%s'", data.Title)
	}
	if data.URL != "https://blog.example.com/posts/growth-loops" {
		t.Errorf("Expected page URL, got '%s'", data.URL)
	}
}
