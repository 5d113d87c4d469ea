package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/lysyi3m/blogfront/app/blog"
	"github.com/lysyi3m/blogfront/app/cfg"
)

const (
	channelTitle       = "Startup Insights"
	channelDescription = "Curated news, deep dives and tips for founders"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders posts as an RSS 2.0 channel. Items keep the order the API
// returned them in.
func (g *Generator) Run(posts []blog.Post) (string, error) {
	var buf bytes.Buffer
	site := SiteURL()

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", channelTitle, 4)
	g.writeElement(&buf, "link", site+"/", 4)
	g.writeElement(&buf, "description", channelDescription, 4)

	buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
		html.EscapeString(site+"/feed.xml")))

	g.writeElement(&buf, "lastBuildDate", lastBuildDate(posts).Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Blogfront/%s", cfg.Get().Version), 4)
	g.writeElement(&buf, "language", "en-us", 4)

	for _, post := range posts {
		g.writeItem(&buf, site, post)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

// SiteURL is the public address of the site, falling back to localhost when
// no base URL is configured.
func SiteURL() string {
	if cfg.Get().BaseUrl != "" {
		return cfg.Get().BaseUrl
	}
	return fmt.Sprintf("http://localhost:%s", cfg.Get().Port)
}

func (g *Generator) writeItem(buf *bytes.Buffer, site string, post blog.Post) {
	link := site + "/posts/" + url.PathEscape(post.Slug)

	buf.WriteString("    <item>\n")

	buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", g.isURL(link)))
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", post.Title, 6)
	g.writeElement(buf, "link", link, 6)

	description := post.Excerpt
	if description == "" {
		description = "No description available"
	}
	g.writeElement(buf, "description", description, 6)

	if content := bodyHTML(post); content != "" {
		buf.WriteString("      <content:encoded><![CDATA[")
		buf.WriteString(strings.ReplaceAll(content, "]]>", "]]]]><![CDATA[>"))
		buf.WriteString("]]></content:encoded>\n")
	}

	if !post.GeneratedAt.IsZero() {
		g.writeElement(buf, "pubDate", post.GeneratedAt.In(time.Local).Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "author", post.Author, 6)
	g.writeElement(buf, "category", post.Category, 6)
	for _, tag := range post.Tags {
		g.writeElement(buf, "category", tag, 6)
	}

	buf.WriteString("    </item>\n")
}

// bodyHTML renders the body for content:encoded. Paragraph bodies are
// escaped and wrapped; a single text body is passed through as-is.
func bodyHTML(post blog.Post) string {
	if post.BodyShape == blog.BodyText {
		return post.Body[0]
	}

	var b strings.Builder
	for _, p := range post.Body {
		if p == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(p))
		b.WriteString("</p>")
	}
	return b.String()
}

func lastBuildDate(posts []blog.Post) time.Time {
	var latest time.Time
	for _, post := range posts {
		if post.GeneratedAt.After(latest) {
			latest = post.GeneratedAt
		}
	}
	if latest.IsZero() {
		return time.Now().In(time.Local)
	}
	return latest.In(time.Local)
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}

func (g *Generator) isURL(s string) bool {
	return (len(s) > 7 && s[:7] == "http://") || (len(s) > 8 && s[:8] == "https://")
}
