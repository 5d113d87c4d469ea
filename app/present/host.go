package present

import (
	"log/slog"
	"math"
)

// ScrollTopThreshold is how far the reader has to scroll before the
// back-to-top control appears. The post page script reads it from the page.
const ScrollTopThreshold = 500

// ScrollProvider exposes the scroll geometry of the page being read.
type ScrollProvider interface {
	ScrollTop() float64
	DocumentHeight() float64
	ViewportHeight() float64
}

// ReadingProgress is the percentage of the article scrolled past, clamped to
// 0..100. A document that fits the viewport reports 0.
func ReadingProgress(p ScrollProvider) float64 {
	scrollable := p.DocumentHeight() - p.ViewportHeight()
	if scrollable <= 0 {
		return 0
	}

	progress := p.ScrollTop() / scrollable * 100
	if math.IsNaN(progress) {
		return 0
	}
	return math.Max(0, math.Min(progress, 100))
}

func ShowScrollTop(p ScrollProvider) bool {
	return p.ScrollTop() > ScrollTopThreshold
}

// ShareData is what gets handed to a native share sheet.
type ShareData struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Sharer is the host's share capability.
type Sharer interface {
	CanShare() bool
	Share(data ShareData) error
	CopyToClipboard(text string) error
}

// SharePost shares data natively when the host supports it and otherwise
// copies the page URL. Failures are logged and not returned.
func SharePost(sharer Sharer, data ShareData) {
	if sharer.CanShare() {
		if err := sharer.Share(data); err != nil {
			slog.Warn("Failed to share post", "url", data.URL, "error", err)
		}
		return
	}

	if err := sharer.CopyToClipboard(data.URL); err != nil {
		slog.Warn("Failed to copy post link", "url", data.URL, "error", err)
	}
}
