package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/revisit-app/revisit-agent/internal/bridge"
	"github.com/revisit-app/revisit-agent/internal/gateway"
	"github.com/revisit-app/revisit-agent/internal/model"
	"github.com/revisit-app/revisit-agent/internal/scrape"
)

// Store is what the orchestrator needs from persistence.
type Store interface {
	Load() (*model.Data, error)
	Save(data *model.Data) error
	SaveRawTranscript(videoID, raw string, md model.TranscriptMetadata) error
	SetFormattedTranscript(videoID, formatted string) error
	GetTranscript(videoID string) (*model.Transcript, error)
}

// LLM is the chat-completion seam, satisfied by gateway.Client.
type LLM interface {
	Chat(ctx context.Context, provider, mdl string, messages []gateway.Message, opts gateway.Options, apiKey, conversationID string) (*gateway.Result, error)
}

var ErrBookmarkNotFound = errors.New("bookmark not found")

// Bookmarks coordinates the whole add-bookmark flow: persistence, the
// content-script bridge, scraping, and gateway enrichment.
type Bookmarks struct {
	store  Store
	llm    LLM
	bridge *bridge.Bridge
	logger *zap.SugaredLogger
	now    func() time.Time
}

func NewBookmarks(store Store, llm LLM, br *bridge.Bridge, l *zap.SugaredLogger) *Bookmarks {
	return &Bookmarks{
		store:  store,
		llm:    llm,
		bridge: br,
		logger: l,
		now:    time.Now,
	}
}

// AddResult carries the bookmark as it stands when Add returns, plus a
// handle on the formatted-transcript persistence when one is in flight.
type AddResult struct {
	Bookmark model.Bookmark
	// FormattedSave is non-nil when a formatted transcript is being
	// persisted in the background; it receives exactly one error value.
	FormattedSave <-chan error
}

// aiResult is the JSON contract every summary prompt demands.
type aiResult struct {
	Summary  string   `json:"summary"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// Add runs the full pipeline for the page behind dom. The preliminary
// record is persisted before anything slow or fallible happens, so the user
// action is never lost: on any later failure the bookmark stays preliminary
// and the error is surfaced alongside it.
func (s *Bookmarks) Add(ctx context.Context, target string, dom scrape.DOM) (*AddResult, error) {
	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}

	pageURL := dom.URL()
	isYouTube := scrape.IsYouTubeURL(pageURL)

	bm := model.NewPreliminaryBookmark(pageURL, dom.Title(), isYouTube,
		data.Settings.DefaultIntervalDays, s.now())
	data.Bookmarks = append(data.Bookmarks, bm)
	if err := s.store.Save(data); err != nil {
		return nil, errors.Wrap(err, "persist preliminary bookmark")
	}
	out := &AddResult{Bookmark: bm}

	if err := s.bridge.EnsureReady(ctx, target); err != nil {
		return out, err
	}
	s.bridge.Notify(ctx, target, "Gathering Details...", "info")

	gw := data.Settings.LLMGateway
	if !gw.Enabled || gw.APIKey == "" {
		s.bridge.Notify(ctx, target, "AI processing is not configured, bookmark saved without enrichment", "error")
		return out, gateway.ErrAPIKeyMissing
	}

	var enriched *aiResult
	if isYouTube {
		// the editable overlay goes up immediately with the preliminary
		// record; enrichment fills it in afterwards
		prelim := bm
		if _, err := s.bridge.SendWithRetry(ctx, target, bridge.Message{
			Action:       bridge.ActionScrapeAndShowOverlay,
			BookmarkID:   bm.ID,
			BookmarkData: &prelim,
		}, bridge.DefaultMaxAttempts); err != nil {
			return out, err
		}
		enriched, err = s.enrichVideo(ctx, target, dom, gw, data.Categories, out)
	} else {
		page := scrape.Page(dom)
		enriched, err = s.summarizePage(ctx, gw, data.Categories, page.Content)
	}
	if err != nil {
		s.logger.Errorw("ai enrichment failed", "bookmark", bm.ID, "err", err)
		s.bridge.Notify(ctx, target, "AI processing failed, bookmark saved without enrichment", "error")
		return out, err
	}

	final, err := s.finalize(bm.ID, enriched)
	if err != nil {
		return out, err
	}
	out.Bookmark = *final

	if _, err := s.bridge.SendWithRetry(ctx, target, bridge.Message{
		Action:       bridge.ActionInjectOverlayWithResults,
		BookmarkID:   final.ID,
		BookmarkData: final,
	}, bridge.DefaultMaxAttempts); err != nil {
		return out, err
	}
	return out, nil
}

// enrichVideo is the YouTube path: metadata plus a best-effort transcript.
// With a transcript in hand, the raw text is made durable first, then the
// summary and formatting calls run concurrently and are judged separately
// after the join. Formatting failure only costs the pretty transcript;
// summary failure falls back to the generic path on title and description.
func (s *Bookmarks) enrichVideo(ctx context.Context, target string, dom scrape.DOM, gw model.GatewaySettings, categories model.CategoryList, out *AddResult) (*aiResult, error) {
	yt := scrape.NewYouTube(dom, s.logger)
	meta := yt.Metadata()
	fallbackContent := "Title: " + meta.Title + "\nDescription: " + meta.Content

	transcript, err := yt.Transcript(ctx)
	if err != nil {
		s.logger.Infow("transcript unavailable, using standard enrichment",
			"video", meta.VideoID, "err", err)
		return s.summarizePage(ctx, gw, categories, fallbackContent)
	}

	md := model.TranscriptMetadata{
		Title:       meta.Title,
		VideoID:     meta.VideoID,
		RetrievedAt: s.now().UnixNano() / int64(time.Millisecond),
		Source:      "dom-scraping",
	}
	if err := s.store.SaveRawTranscript(meta.VideoID, transcript, md); err != nil {
		s.logger.Errorw("could not persist raw transcript", "video", meta.VideoID, "err", err)
		return s.summarizePage(ctx, gw, categories, fallbackContent)
	}

	names := strings.Join(model.CategoryNames(categories), ", ")

	var (
		wg        sync.WaitGroup
		summary   *aiResult
		formatted string
		sumErr    error
		fmtErr    error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		prompt := fmt.Sprintf(videoSummaryPrompt, names, meta.Title, meta.Content, transcript)
		content, err := s.chat(ctx, gw.Transactions.YoutubeSummary, gw.APIKey, prompt)
		if err != nil {
			sumErr = err
			return
		}
		res := aiResult{}
		if err := gateway.ExtractJSON(content, &res); err != nil {
			sumErr = errors.Wrap(err, "video summary response")
			return
		}
		summary = &res
	}()
	go func() {
		defer wg.Done()
		formatted, fmtErr = s.chat(ctx, gw.Transactions.TranscriptFormatting, gw.APIKey,
			fmt.Sprintf(transcriptFormatPrompt, transcript))
	}()
	wg.Wait()

	if fmtErr != nil {
		s.logger.Warnw("transcript formatting failed, raw transcript kept",
			"video", meta.VideoID, "err", fmtErr)
	} else if formatted != "" {
		out.FormattedSave = s.persistFormatted(ctx, target, meta.VideoID, formatted)
	}

	if sumErr != nil {
		s.logger.Warnw("video summary failed, falling back to standard enrichment",
			"video", meta.VideoID, "err", sumErr)
		return s.summarizePage(ctx, gw, categories, fallbackContent)
	}
	return summary, nil
}

// persistFormatted stores the formatted transcript without blocking the add
// flow. The returned channel receives the outcome once.
func (s *Bookmarks) persistFormatted(ctx context.Context, target, videoID, formatted string) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := s.store.SetFormattedTranscript(videoID, formatted)
		if err != nil {
			s.logger.Errorw("could not persist formatted transcript", "video", videoID, "err", err)
		} else {
			s.bridge.Notify(ctx, target, "Transcript Saved", "success")
		}
		done <- err
	}()
	return done
}

func (s *Bookmarks) summarizePage(ctx context.Context, gw model.GatewaySettings, categories model.CategoryList, content string) (*aiResult, error) {
	names := strings.Join(model.CategoryNames(categories), ", ")
	reply, err := s.chat(ctx, gw.Transactions.PageSummary, gw.APIKey,
		fmt.Sprintf(pageSummaryPrompt, names, content))
	if err != nil {
		return nil, err
	}
	res := aiResult{}
	if err := gateway.ExtractJSON(reply, &res); err != nil {
		return nil, errors.Wrap(err, "page summary response")
	}
	return &res, nil
}

func (s *Bookmarks) chat(ctx context.Context, tx model.Transaction, apiKey, prompt string) (string, error) {
	if tx.Provider == "" || tx.Model == "" {
		return "", gateway.ErrConfigMissing
	}
	res, err := s.llm.Chat(ctx, tx.Provider, tx.Model,
		[]gateway.Message{{Role: gateway.RoleUser, Content: prompt}},
		gateway.Options{Temperature: tx.Options.Temperature, MaxTokens: tx.Options.MaxTokens},
		apiKey, "")
	if err != nil {
		return "", err
	}
	return res.Content, nil
}

// finalize re-reads the record before writing enrichment results so a
// concurrent Cancel wins over a slow enrichment.
func (s *Bookmarks) finalize(id string, res *aiResult) (*model.Bookmark, error) {
	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	i := data.FindBookmark(id)
	if i < 0 {
		return nil, errors.Wrapf(ErrBookmarkNotFound, "bookmark %s removed before enrichment finished", id)
	}

	b := &data.Bookmarks[i]
	b.Summary = res.Summary
	if res.Category != "" {
		b.Category = res.Category
	}
	b.Tags = model.ClampTags(res.Tags)
	b.IsPreliminary = false

	if err := s.store.Save(data); err != nil {
		return nil, err
	}
	out := *b
	return &out, nil
}

// BookmarkUpdate is the user-review payload. Nil pointer fields are left
// untouched; Tags replaces wholesale when non-nil.
type BookmarkUpdate struct {
	Title     *string  `json:"title"`
	Category  *string  `json:"category"`
	Summary   *string  `json:"summary"`
	UserNotes *string  `json:"userNotes"`
	Tags      []string `json:"tags"`
}

// Update applies the user's edits from the overlay and clears the
// preliminary flag. A new category name is reconciled into the category
// list before it is referenced.
func (s *Bookmarks) Update(id string, upd BookmarkUpdate) (*model.Bookmark, error) {
	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	i := data.FindBookmark(id)
	if i < 0 {
		return nil, ErrBookmarkNotFound
	}

	b := &data.Bookmarks[i]
	if upd.Title != nil && *upd.Title != "" {
		b.Title = *upd.Title
	}
	if upd.Category != nil && *upd.Category != "" {
		data.Categories = model.ReconcileCategories(data.Categories, *upd.Category)
		b.Category = *upd.Category
	}
	if upd.Summary != nil {
		b.Summary = *upd.Summary
	}
	if upd.UserNotes != nil {
		b.UserNotes = *upd.UserNotes
	}
	if upd.Tags != nil {
		b.Tags = model.ClampTags(upd.Tags)
	}
	b.IsPreliminary = false

	if err := s.store.Save(data); err != nil {
		return nil, err
	}
	out := *b
	return &out, nil
}

// Cancel removes a bookmark the user declined to keep. Deleting a bookmark
// that is already gone is not an error.
func (s *Bookmarks) Cancel(id string) error {
	data, err := s.store.Load()
	if err != nil {
		return err
	}
	i := data.FindBookmark(id)
	if i < 0 {
		return nil
	}
	data.Bookmarks = append(data.Bookmarks[:i], data.Bookmarks[i+1:]...)
	return s.store.Save(data)
}

// UpdateStatus applies a revisit action from the floating modal.
func (s *Bookmarks) UpdateStatus(id, actionType string) (*model.Bookmark, error) {
	data, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	i := data.FindBookmark(id)
	if i < 0 {
		return nil, ErrBookmarkNotFound
	}

	b := &data.Bookmarks[i]
	if err := b.ApplyRevisitAction(actionType, data.Settings.DefaultIntervalDays, s.now()); err != nil {
		return nil, err
	}

	if err := s.store.Save(data); err != nil {
		return nil, err
	}
	out := *b
	return &out, nil
}

// Transcript returns the stored transcript for a video, or nil.
func (s *Bookmarks) Transcript(videoID string) (*model.Transcript, error) {
	return s.store.GetTranscript(videoID)
}

// Snapshot returns the whole data record for read surfaces.
func (s *Bookmarks) Snapshot() (*model.Data, error) {
	return s.store.Load()
}
