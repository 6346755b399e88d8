package scrape

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

type fakeDOM struct {
	url      string
	title    string
	bodyText string
	meta     map[string]string
	nodes    map[string][]string // selector -> text nodes
	clicked  []string
	// selectors that come into existence after a click on a given selector
	appearsAfterClick map[string]string
}

func (f *fakeDOM) URL() string      { return f.url }
func (f *fakeDOM) Title() string    { return f.title }
func (f *fakeDOM) BodyText() string { return f.bodyText }

func (f *fakeDOM) Meta(name string) string { return f.meta[name] }

func (f *fakeDOM) Exists(selector string) bool {
	_, ok := f.nodes[selector]
	return ok
}

func (f *fakeDOM) Click(selector string) error {
	f.clicked = append(f.clicked, selector)
	if appears, ok := f.appearsAfterClick[selector]; ok {
		if f.nodes == nil {
			f.nodes = map[string][]string{}
		}
		f.nodes[appears] = []string{}
	}
	return nil
}

func (f *fakeDOM) Text(selector string) []string { return f.nodes[selector] }

func TestPageTruncatesBody(t *testing.T) {
	dom := &fakeDOM{
		url:      "https://example.com/article",
		title:    "An Article",
		bodyText: strings.Repeat("x", 5000),
	}

	got := Page(dom)
	assert.Equal(t, "An Article", got.Title)
	assert.Len(t, got.Content, 2000)
	assert.False(t, got.IsYouTube)
}

func TestPageTruncatesByCharacterNotByte(t *testing.T) {
	dom := &fakeDOM{
		url:      "https://example.com/artikel",
		title:    "Ein Artikel",
		bodyText: strings.Repeat("ü", 3000),
	}

	got := Page(dom)
	assert.Equal(t, 2000, utf8.RuneCountInString(got.Content))
	assert.True(t, utf8.ValidString(got.Content))
}

func TestPageShortBodyAndMissingTitle(t *testing.T) {
	dom := &fakeDOM{url: "https://example.com", bodyText: "short"}
	got := Page(dom)
	assert.Equal(t, "Untitled", got.Title)
	assert.Equal(t, "short", got.Content)
}

func TestIsYouTubeURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc123", true},
		{"https://youtu.be/abc123", true},
		{"https://example.com/watch?v=abc", false},
		{"https://vimeo.com/12345", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsYouTubeURL(tt.url), tt.url)
	}
}

func TestVideoIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"query parameter wins", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link uses last path segment", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"query parameter with extras", "https://www.youtube.com/watch?v=abc&t=42s", "abc"},
		{"trailing slash", "https://youtu.be/abc/", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VideoIDFromURL(tt.url))
		})
	}
}
