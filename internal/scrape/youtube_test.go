package scrape

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func fastYouTube(dom DOM) *YouTube {
	l, _ := zap.NewDevelopment()
	y := NewYouTube(dom, l.Sugar())
	y.pollInterval = time.Millisecond
	y.waitTimeout = 20 * time.Millisecond
	y.settleDelay = time.Millisecond
	return y
}

func TestMetadataStripsSiteSuffix(t *testing.T) {
	dom := &fakeDOM{
		url:   "https://www.youtube.com/watch?v=abc123",
		title: "Interesting Video - YouTube",
		meta:  map[string]string{"description": "a description"},
	}

	got := fastYouTube(dom).Metadata()
	assert.Equal(t, "Interesting Video", got.Title)
	assert.Equal(t, "a description", got.Content)
	assert.Equal(t, "abc123", got.VideoID)
	assert.True(t, got.IsYouTube)
}

func TestTranscriptPanelAlreadyOpen(t *testing.T) {
	dom := &fakeDOM{
		url: "https://www.youtube.com/watch?v=abc123",
		nodes: map[string][]string{
			selTranscriptPanel:   {},
			selTranscriptSegment: {" hello ", "world", "  "},
		},
	}

	got, err := fastYouTube(dom).Transcript(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, "hello world", got)
	assert.Empty(t, dom.clicked)
}

func TestTranscriptDrivesHiddenUI(t *testing.T) {
	dom := &fakeDOM{
		url: "https://www.youtube.com/watch?v=abc123",
		nodes: map[string][]string{
			selExpandDescription: {},
		},
		appearsAfterClick: map[string]string{
			selExpandDescription: selShowTranscript,
			selShowTranscript:    selTranscriptPanel,
		},
	}
	// segments render once the panel exists
	dom.nodes[selTranscriptSegment] = []string{"first", "second segment"}

	got, err := fastYouTube(dom).Transcript(context.Background())
	assert.Nil(t, err)
	assert.Equal(t, "first second segment", got)
	assert.Equal(t, []string{selExpandDescription, selShowTranscript}, dom.clicked)
}

func TestTranscriptTimesOutDescriptively(t *testing.T) {
	dom := &fakeDOM{url: "https://www.youtube.com/watch?v=abc123"}

	_, err := fastYouTube(dom).Transcript(context.Background())
	assert.NotNil(t, err)
	assert.Equal(t, ErrTranscriptUnavailable, errors.Cause(err))
	assert.Contains(t, err.Error(), selExpandDescription)
}

func TestTranscriptEmptyPanelIsUnavailable(t *testing.T) {
	dom := &fakeDOM{
		url: "https://www.youtube.com/watch?v=abc123",
		nodes: map[string][]string{
			selTranscriptPanel: {},
		},
	}

	_, err := fastYouTube(dom).Transcript(context.Background())
	assert.Equal(t, ErrTranscriptUnavailable, errors.Cause(err))
}
