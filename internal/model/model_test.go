package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPreliminaryBookmark(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b := NewPreliminaryBookmark("https://example.com/post", "A Post", false, 7, now)

	assert.NotEmpty(t, b.ID)
	assert.Contains(t, b.ID, "rv-")
	assert.Equal(t, "Uncategorized", b.Category)
	assert.Equal(t, StatusActive, b.Status)
	assert.True(t, b.IsPreliminary)
	assert.False(t, b.IsYouTube)
	assert.Equal(t, now.Add(7*24*time.Hour), b.RevisitBy)
}

func TestNewPreliminaryBookmarkDefaults(t *testing.T) {
	now := time.Now()
	b := NewPreliminaryBookmark("https://example.com", "", true, 0, now)
	assert.Equal(t, "Untitled", b.Title)
	assert.True(t, b.IsYouTube)
	assert.Equal(t, now.Add(DefaultIntervalDays*24*time.Hour), b.RevisitBy)
}

func TestApplyRevisitAction(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("complete", func(t *testing.T) {
		b := NewPreliminaryBookmark("u", "t", false, 7, now)
		b.IsPreliminary = false

		err := b.ApplyRevisitAction(ActionComplete, 7, now)
		assert.Nil(t, err)
		assert.Equal(t, StatusComplete, b.Status)
		assert.Len(t, b.History, 1)
		assert.Equal(t, "Marked as Complete", b.History[0].Action)
	})

	t.Run("revisited recomputes date and reactivates", func(t *testing.T) {
		b := NewPreliminaryBookmark("u", "t", false, 7, now.Add(-10*24*time.Hour))
		b.IsPreliminary = false
		b.Status = StatusComplete

		err := b.ApplyRevisitAction(ActionReVisited, 3, now)
		assert.Nil(t, err)
		assert.Equal(t, StatusActive, b.Status)
		assert.Equal(t, now.Add(3*24*time.Hour), b.RevisitBy)
		assert.Len(t, b.History, 1)
	})

	t.Run("unknown action", func(t *testing.T) {
		b := NewPreliminaryBookmark("u", "t", false, 7, now)
		err := b.ApplyRevisitAction("Snooze", 7, now)
		assert.NotNil(t, err)
	})
}

func TestClampTags(t *testing.T) {
	assert.Equal(t, []string{}, ClampTags(nil))

	tags := make([]string, 14)
	for i := range tags {
		tags[i] = "t"
	}
	assert.Len(t, ClampTags(tags), MaxTags)
	assert.Len(t, ClampTags([]string{"a", "b"}), 2)
}

func TestReconcileCategories(t *testing.T) {
	base := CategoryList{{Name: "Articles", Priority: 1}}

	t.Run("existing name is a no-op", func(t *testing.T) {
		got := ReconcileCategories(base, "Articles")
		assert.Equal(t, base, got)
	})

	t.Run("new name appends with max plus one", func(t *testing.T) {
		got := ReconcileCategories(base, "Videos")
		assert.Equal(t, CategoryList{
			{Name: "Articles", Priority: 1},
			{Name: "Videos", Priority: 2},
		}, got)
	})

	t.Run("idempotent", func(t *testing.T) {
		once := ReconcileCategories(base, "Videos")
		twice := ReconcileCategories(once, "Videos")
		assert.Equal(t, once, twice)
	})

	t.Run("case-sensitive match keeps variants distinct", func(t *testing.T) {
		got := ReconcileCategories(base, "articles")
		assert.Len(t, got, 2)
	})

	t.Run("non-contiguous priorities", func(t *testing.T) {
		got := ReconcileCategories(CategoryList{
			{Name: "Work", Priority: 5},
			{Name: "Articles", Priority: 1},
		}, "Videos")
		assert.Equal(t, CategoryList{
			{Name: "Articles", Priority: 1},
			{Name: "Work", Priority: 5},
			{Name: "Videos", Priority: 6},
		}, got)
	})

	t.Run("empty set starts at one", func(t *testing.T) {
		got := ReconcileCategories(CategoryList{}, "First")
		assert.Equal(t, CategoryList{{Name: "First", Priority: 1}}, got)
	})
}

func TestCategoryNames(t *testing.T) {
	names := CategoryNames(CategoryList{
		{Name: "Work", Priority: 3},
		{Name: "Articles", Priority: 1},
		{Name: "Research", Priority: 2},
	})
	assert.Equal(t, []string{"Articles", "Research", "Work"}, names)
}

func TestCategoryListMigration(t *testing.T) {
	t.Run("legacy string array", func(t *testing.T) {
		got := CategoryList{}
		err := json.Unmarshal([]byte(`["Articles","Work"]`), &got)
		assert.Nil(t, err)
		assert.Equal(t, CategoryList{
			{Name: "Articles", Priority: 1},
			{Name: "Work", Priority: 2},
		}, got)
	})

	t.Run("current object array", func(t *testing.T) {
		got := CategoryList{}
		err := json.Unmarshal([]byte(`[{"name":"Articles","priority":4}]`), &got)
		assert.Nil(t, err)
		assert.Equal(t, CategoryList{{Name: "Articles", Priority: 4}}, got)
	})
}

func TestDefaultData(t *testing.T) {
	d := DefaultData()
	assert.Len(t, d.Categories, 4)
	assert.Equal(t, DefaultIntervalDays, d.Settings.DefaultIntervalDays)
	assert.True(t, d.Settings.LLMGateway.Enabled)
	assert.Equal(t, "groq", d.Settings.LLMGateway.Transactions.PageSummary.Provider)
	assert.Equal(t, 64000, d.Settings.LLMGateway.Transactions.TranscriptFormatting.Options.MaxTokens)
	require.NotNil(t, d.Settings.LLMGateway.Transactions.YoutubeSummary.Options.Temperature)
	assert.Equal(t, 0.7, *d.Settings.LLMGateway.Transactions.YoutubeSummary.Options.Temperature)
}
