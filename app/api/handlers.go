package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/blogfront/app/blog"
	"github.com/lysyi3m/blogfront/app/cfg"
	"github.com/lysyi3m/blogfront/app/feed"
	"github.com/lysyi3m/blogfront/app/monitor"
	"github.com/lysyi3m/blogfront/app/present"
)

// NewHandler wires the page handlers. dashboard is the collection refreshed
// when a generation session completes.
func NewHandler(posts PostSource, dashboard *blog.ListView, progress MonitorInterface, themes ThemeTable) *Handler {
	return &Handler{
		posts:     posts,
		dashboard: dashboard,
		monitor:   progress,
		generator: feed.NewGenerator(),
		themes:    themes,
	}
}

func (h *Handler) GetIndex(c *gin.Context) {
	view := blog.NewListView(h.posts)
	defer view.Close()

	if err := view.Refresh(c.Request.Context()); err != nil {
		slog.Error("Failed to fetch posts", "page", "index", "error", err)
	}

	page := present.NewListPage(view.Snapshot(), h.monitor.Snapshot(), h.themes)
	page.Version = cfg.Get().Version

	c.HTML(listStatus(page), present.IndexTemplate, page)
}

func (h *Handler) GetBlogList(c *gin.Context) {
	view := blog.NewListView(h.posts)
	defer view.Close()

	if err := view.Refresh(c.Request.Context()); err != nil {
		slog.Error("Failed to fetch posts", "page", "blog", "error", err)
	}

	page := present.NewLegacyListPage(view.Snapshot(), h.themes)
	page.Version = cfg.Get().Version

	c.HTML(listStatus(page), present.BlogListTemplate, page)
}

func (h *Handler) GetPost(c *gin.Context) {
	snap := h.loadPost(c)
	page := present.NewDetailPage(snap, h.themes)
	page.Version = cfg.Get().Version

	c.HTML(detailStatus(snap.State), present.PostTemplate, page)
}

func (h *Handler) GetLegacyPost(c *gin.Context) {
	snap := h.loadPost(c)
	page := present.NewLegacyDetailPage(snap, h.themes)
	page.Version = cfg.Get().Version

	c.HTML(detailStatus(snap.State), present.LegacyPostTemplate, page)
}

func (h *Handler) loadPost(c *gin.Context) blog.PostSnapshot {
	slug := c.Param("slug")

	view := blog.NewPostView(h.posts)
	defer view.Close()

	if err := view.Load(c.Request.Context(), slug); err != nil && !blog.IsNotFound(err) {
		slog.Error("Failed to fetch post", "slug", slug, "error", err)
	}

	return view.Snapshot()
}

// PostRefresh sends the browser back to the collection page, which fetches
// the collection anew on every load.
func (h *Handler) PostRefresh(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

// PostGenerate starts a generation session. Any session already running is
// torn down first.
func (h *Handler) PostGenerate(c *gin.Context) {
	session := h.monitor.Start(c.Request.Context())
	slog.Info("Generation requested", "session", session, "client", c.ClientIP())
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) GetGenerateStatus(c *gin.Context) {
	c.JSON(http.StatusOK, statusJSON(h.monitor.Snapshot()))
}

// GetGenerateEvents relays the current session to the browser as server-sent
// events: "reset", one "step" per log entry, then "done" or "error".
func (h *Handler) GetGenerateEvents(c *gin.Context) {
	snap, updates, unsubscribe := h.monitor.Subscribe()
	defer unsubscribe()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("reset", strconv.FormatUint(snap.Session, 10))
	for _, entry := range snap.Log {
		c.SSEvent("step", entry)
	}

	if snap.State != monitor.Streaming {
		h.sendTerminal(c, snap.Err)
		c.Writer.Flush()
		return
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case u, ok := <-updates:
			if !ok {
				return false
			}
			if u.Session != snap.Session {
				// A newer session replaced the one this client follows.
				c.SSEvent("error", "session replaced")
				return false
			}
			if u.Entry != "" {
				c.SSEvent("step", u.Entry)
			}
			switch {
			case u.State == monitor.Errored:
				c.SSEvent("error", u.Err)
				return false
			case u.Refreshed || (u.State == monitor.Idle && u.Err != ""):
				h.sendTerminal(c, "")
				return false
			case u.State == monitor.Idle && !u.Done:
				c.SSEvent("error", "session stopped")
				return false
			}
			return true
		}
	})
}

func (h *Handler) sendTerminal(c *gin.Context, errMsg string) {
	if errMsg != "" {
		c.SSEvent("error", errMsg)
		return
	}
	list := h.dashboard.Snapshot()
	c.SSEvent("done", gin.H{"count": len(list.Posts), "state": list.State})
}

// GetShare resolves what the page script should do when the reader shares a
// post: hand the data to the native share sheet or copy the link.
func (h *Handler) GetShare(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.posts.FetchPost(c.Request.Context(), slug)
	if err != nil {
		if blog.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		slog.Error("Failed to fetch post", "operation", "share", "slug", slug, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	pageURL := c.Query("url")
	if pageURL == "" {
		pageURL = feed.SiteURL() + present.PostPath(post.Slug)
	}

	sharer := &responseSharer{native: c.Query("native") == "1"}
	present.SharePost(sharer, present.NewShareData(post, pageURL))

	switch sharer.action {
	case "share":
		c.JSON(http.StatusOK, gin.H{"action": "share", "data": sharer.data})
	default:
		c.JSON(http.StatusOK, gin.H{"action": "copy", "text": sharer.text})
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	posts, err := h.posts.FetchPosts(c.Request.Context())
	if err != nil {
		slog.Error("Failed to fetch posts", "operation", "feed", "error", err)
		c.Status(http.StatusBadGateway)
		return
	}

	rss, err := h.generator.Run(posts)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(posts)))

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"version":   cfg.Get().Version,
		"themes":    h.themes.Count(),
		"generator": h.monitor.Snapshot().State,
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListPosts(c *gin.Context) {
	posts, err := h.posts.FetchPosts(c.Request.Context())
	if err != nil {
		slog.Error("Failed to fetch posts", "operation", "api_list", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	items := make([]postJSON, 0, len(posts))
	for _, post := range posts {
		items = append(items, newPostJSON(post))
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (h *Handler) APIGetPost(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.posts.FetchPost(c.Request.Context(), slug)
	if err != nil {
		if blog.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		slog.Error("Failed to fetch post", "operation", "api_get", "slug", slug, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"item": newPostJSON(post)})
}

func (h *Handler) APIStartGenerate(c *gin.Context) {
	session := h.monitor.Start(c.Request.Context())
	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"session": session,
		"events":  "/generate/events",
	})
}

func (h *Handler) APIStopGenerate(c *gin.Context) {
	h.monitor.Stop()
	c.JSON(http.StatusOK, statusJSON(h.monitor.Snapshot()))
}

func statusJSON(snap monitor.Snapshot) gin.H {
	status := gin.H{
		"session": snap.Session,
		"state":   snap.State,
		"log":     snap.Log,
	}
	if snap.Err != "" {
		status["error"] = snap.Err
	}
	return status
}

func listStatus(page present.ListPage) int {
	if page.State == blog.StateFailed {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func detailStatus(state blog.ViewState) int {
	switch state {
	case blog.StateNotFound:
		return http.StatusNotFound
	case blog.StateFailed:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}
