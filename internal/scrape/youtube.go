package scrape

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// YouTube page selectors. The transcript lives in a collapsible panel that
// only renders after the description is expanded and the "show transcript"
// control clicked.
const (
	selExpandDescription = "tp-yt-paper-button#expand"
	selShowTranscript    = "ytd-video-description-transcript-section-renderer button"
	selTranscriptPanel   = "ytd-transcript-segment-list-renderer"
	selTranscriptSegment = "ytd-transcript-segment-renderer .segment-text"
)

const (
	defaultPollInterval = 100 * time.Millisecond
	defaultWaitTimeout  = 5 * time.Second
	transcriptSettle    = 500 * time.Millisecond
)

// ErrTranscriptUnavailable marks the recoverable case: the video has no
// transcript, or the page UI changed. Callers degrade instead of aborting.
var ErrTranscriptUnavailable = errors.New("transcript unavailable")

// WaitTimeoutError reports which DOM node failed to appear in time.
type WaitTimeoutError struct {
	Selector string
	Timeout  time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("element %q did not appear within %s", e.Selector, e.Timeout)
}

type YouTube struct {
	dom    DOM
	logger *zap.SugaredLogger

	pollInterval time.Duration
	waitTimeout  time.Duration
	settleDelay  time.Duration
}

func NewYouTube(dom DOM, l *zap.SugaredLogger) *YouTube {
	return &YouTube{
		dom:          dom,
		logger:       l,
		pollInterval: defaultPollInterval,
		waitTimeout:  defaultWaitTimeout,
		settleDelay:  transcriptSettle,
	}
}

// Metadata pulls title and description from page metadata. Synchronous.
func (y *YouTube) Metadata() PageData {
	title := strings.TrimSuffix(y.dom.Title(), " - YouTube")
	if title == "" {
		title = "Untitled"
	}
	return PageData{
		URL:       y.dom.URL(),
		Title:     title,
		Content:   y.dom.Meta("description"),
		IsYouTube: true,
		VideoID:   VideoIDFromURL(y.dom.URL()),
	}
}

// Transcript drives the hidden transcript UI open and reads the segment
// text nodes in document order, joined by single spaces. Best-effort: every
// failure comes back as ErrTranscriptUnavailable with the underlying cause
// attached.
func (y *YouTube) Transcript(ctx context.Context) (string, error) {
	if !y.dom.Exists(selTranscriptPanel) {
		if err := y.openTranscriptPanel(ctx); err != nil {
			return "", errors.Wrap(ErrTranscriptUnavailable, err.Error())
		}
	}

	// the panel renders its segments asynchronously
	if err := y.sleep(ctx, y.settleDelay); err != nil {
		return "", err
	}

	segments := y.dom.Text(selTranscriptSegment)
	if len(segments) == 0 {
		return "", errors.Wrap(ErrTranscriptUnavailable, "transcript panel has no segments")
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if trimmed := strings.TrimSpace(seg); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, " "), nil
}

func (y *YouTube) openTranscriptPanel(ctx context.Context) error {
	if err := y.waitFor(ctx, selExpandDescription); err != nil {
		return err
	}
	if err := y.dom.Click(selExpandDescription); err != nil {
		return errors.Wrap(err, "expand description")
	}

	if err := y.waitFor(ctx, selShowTranscript); err != nil {
		return err
	}
	if err := y.dom.Click(selShowTranscript); err != nil {
		return errors.Wrap(err, "click show transcript")
	}

	return y.waitFor(ctx, selTranscriptPanel)
}

// waitFor polls for a DOM node at a fixed interval until it appears or the
// timeout elapses. A descriptive error beats hanging on a page that will
// never render the node.
func (y *YouTube) waitFor(ctx context.Context, selector string) error {
	deadline := time.Now().Add(y.waitTimeout)
	ticker := time.NewTicker(y.pollInterval)
	defer ticker.Stop()

	for {
		if y.dom.Exists(selector) {
			return nil
		}
		if time.Now().After(deadline) {
			return &WaitTimeoutError{Selector: selector, Timeout: y.waitTimeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (y *YouTube) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
