package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Status string

const (
	StatusActive    Status = "Active"
	StatusComplete  Status = "Complete"
	StatusReVisited Status = "ReVisited"
)

// Revisit action types originating from the floating modal.
const (
	ActionComplete  = "Complete"
	ActionReVisited = "ReVisited"
)

type HistoryEntry struct {
	Timestamp int64  `json:"timestamp"`
	Action    string `json:"action"`
}

const MaxTags = 10

type Bookmark struct {
	ID             string         `json:"id"`
	URL            string         `json:"url"`
	Title          string         `json:"title"`
	Category       string         `json:"category"`
	Summary        string         `json:"summary"`
	Tags           []string       `json:"tags"`
	UserNotes      string         `json:"userNotes"`
	AddedTimestamp int64          `json:"addedTimestamp"`
	RevisitBy      time.Time      `json:"revisitBy"`
	Status         Status         `json:"status"`
	History        []HistoryEntry `json:"history"`
	IsPreliminary  bool           `json:"isPreliminary"`
	IsYouTube      bool           `json:"isYouTube"`
}

// NewPreliminaryBookmark builds the minimal record persisted the instant the
// user issues "add bookmark", before any scraping or enrichment happens.
func NewPreliminaryBookmark(url, title string, isYouTube bool, intervalDays int, now time.Time) Bookmark {
	if title == "" {
		title = "Untitled"
	}
	if intervalDays <= 0 {
		intervalDays = DefaultIntervalDays
	}
	return Bookmark{
		ID:             "rv-" + uuid.New().String(),
		URL:            url,
		Title:          title,
		Category:       "Uncategorized",
		Summary:        "",
		Tags:           []string{},
		AddedTimestamp: now.UnixNano() / int64(time.Millisecond),
		RevisitBy:      now.Add(time.Duration(intervalDays) * 24 * time.Hour),
		Status:         StatusActive,
		History:        []HistoryEntry{},
		IsPreliminary:  true,
		IsYouTube:      isYouTube,
	}
}

// ApplyRevisitAction is the two-transition side machine layered on top of a
// finalized bookmark: Complete marks it done, ReVisited pushes the revisit
// date forward and re-activates it. Both append to history.
func (b *Bookmark) ApplyRevisitAction(actionType string, intervalDays int, now time.Time) error {
	if intervalDays <= 0 {
		intervalDays = DefaultIntervalDays
	}
	ts := now.UnixNano() / int64(time.Millisecond)

	switch actionType {
	case ActionComplete:
		b.Status = StatusComplete
		b.History = append(b.History, HistoryEntry{Timestamp: ts, Action: "Marked as Complete"})
	case ActionReVisited:
		b.RevisitBy = now.Add(time.Duration(intervalDays) * 24 * time.Hour)
		b.Status = StatusActive
		b.History = append(b.History, HistoryEntry{Timestamp: ts, Action: "ReVisited - Updated revisit date"})
	default:
		return errors.Errorf("unknown revisit action: %s", actionType)
	}
	return nil
}

// ClampTags enforces the tag count invariant.
func ClampTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	if len(tags) > MaxTags {
		return tags[:MaxTags]
	}
	return tags
}

type Category struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// CategoryList accepts both the current object form and the legacy plain
// string-array form, migrating the latter to priorities 1..n in list order.
type CategoryList []Category

func (l *CategoryList) UnmarshalJSON(b []byte) error {
	cats := []Category{}
	if err := json.Unmarshal(b, &cats); err == nil {
		*l = cats
		return nil
	}
	names := []string{}
	if err := json.Unmarshal(b, &names); err != nil {
		return errors.Wrap(err, "categories are neither objects nor strings")
	}
	out := make([]Category, len(names))
	for i, n := range names {
		out[i] = Category{Name: n, Priority: i + 1}
	}
	*l = out
	return nil
}

type Transcript struct {
	Raw       string             `json:"raw,omitempty"`
	Formatted string             `json:"formatted,omitempty"`
	Metadata  TranscriptMetadata `json:"metadata"`
}

type TranscriptMetadata struct {
	Title       string `json:"title"`
	VideoID     string `json:"videoId"`
	RetrievedAt int64  `json:"retrievedAt"`
	Source      string `json:"source"`
}

// LLMOptions tunes one transaction. A nil Temperature means "provider
// default" and is never sent on the wire.
type LLMOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens"`
}

// Float is a pointer shorthand for optional numeric settings.
func Float(v float64) *float64 { return &v }

// Transaction is one gateway use-case's provider/model/tuning triple. Owned
// by user settings, read-only to the orchestrator.
type Transaction struct {
	Provider string     `json:"provider"`
	Model    string     `json:"model"`
	Options  LLMOptions `json:"options"`
}

type Transactions struct {
	YoutubeSummary       Transaction `json:"youtubeSummary"`
	TranscriptFormatting Transaction `json:"transcriptFormatting"`
	PageSummary          Transaction `json:"pageSummary"`
}

type GatewaySettings struct {
	Enabled      bool         `json:"enabled"`
	APIKey       string       `json:"apiKey"`
	Transactions Transactions `json:"transactions"`
}

type Settings struct {
	UserName              string          `json:"userName"`
	DefaultIntervalDays   int             `json:"defaultIntervalDays"`
	PriorityThresholdDays int             `json:"priorityThresholdDays"`
	OnboardingComplete    bool            `json:"onboardingComplete"`
	LLMGateway            GatewaySettings `json:"llmGateway"`
}

// Data is the whole primary record: the store reads and writes it as one
// value, making the read-modify-write cycle explicit.
type Data struct {
	Bookmarks  []Bookmark   `json:"bookmarks"`
	Categories CategoryList `json:"categories"`
	Settings   Settings     `json:"settings"`
}

const (
	DefaultIntervalDays          = 7
	DefaultPriorityThresholdDays = 3
)

func DefaultData() *Data {
	return &Data{
		Bookmarks: []Bookmark{},
		Categories: CategoryList{
			{Name: "Articles", Priority: 1},
			{Name: "Research", Priority: 2},
			{Name: "Work", Priority: 3},
			{Name: "Personal", Priority: 4},
		},
		Settings: Settings{
			DefaultIntervalDays:   DefaultIntervalDays,
			PriorityThresholdDays: DefaultPriorityThresholdDays,
			LLMGateway: GatewaySettings{
				Enabled: true,
				Transactions: Transactions{
					YoutubeSummary: Transaction{
						Provider: "groq",
						Model:    "openai/gpt-oss-120b",
						Options:  LLMOptions{Temperature: Float(0.7), MaxTokens: 10000},
					},
					TranscriptFormatting: Transaction{
						Provider: "groq",
						Model:    "openai/gpt-oss-120b",
						Options:  LLMOptions{Temperature: Float(0.3), MaxTokens: 64000},
					},
					PageSummary: Transaction{
						Provider: "groq",
						Model:    "openai/gpt-oss-120b",
						Options:  LLMOptions{Temperature: Float(0.7), MaxTokens: 2500},
					},
				},
			},
		},
	}
}

// FindBookmark returns the index of the bookmark with the given id, or -1.
func (d *Data) FindBookmark(id string) int {
	for i := range d.Bookmarks {
		if d.Bookmarks[i].ID == id {
			return i
		}
	}
	return -1
}
