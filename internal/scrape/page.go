package scrape

import (
	"net/url"
	"strings"
)

// maxContentLength bounds how much body text the page strategy keeps.
const maxContentLength = 2000

// DOM is the page access seam. The page itself lives in another process;
// implementations carry each primitive across whatever boundary applies.
type DOM interface {
	URL() string
	Title() string
	BodyText() string
	Meta(name string) string
	Exists(selector string) bool
	Click(selector string) error
	// Text returns the trimmed text of every node matching the selector,
	// in document order.
	Text(selector string) []string
}

// PageData is what either strategy hands to enrichment.
type PageData struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsYouTube bool   `json:"isYouTube"`
	VideoID   string `json:"videoId,omitempty"`
}

// Page is the generic strategy: title plus a bounded prefix of the body
// text. Deterministic and synchronous, no waiting.
func Page(dom DOM) PageData {
	title := dom.Title()
	if title == "" {
		title = "Untitled"
	}
	content := dom.BodyText()
	// the bound is in characters, so slice runes to keep multi-byte
	// text intact
	if runes := []rune(content); len(runes) > maxContentLength {
		content = string(runes[:maxContentLength])
	}
	return PageData{
		URL:     dom.URL(),
		Title:   title,
		Content: content,
	}
}

// IsYouTubeURL reports whether the URL is a YouTube watch page.
func IsYouTubeURL(u string) bool {
	return strings.Contains(u, "youtube.com/watch") || strings.Contains(u, "youtu.be/")
}

// VideoIDFromURL extracts the canonical video identifier: the v query
// parameter when present, else the last path segment.
func VideoIDFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if v := parsed.Query().Get("v"); v != "" {
		return v
	}
	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	return segments[len(segments)-1]
}
