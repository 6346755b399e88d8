package db

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/revisit-app/revisit-agent/internal/model"
)

const primaryKey = "rvData"

// Store is the coarse read-modify-write snapshot store. Load returns a
// value the caller owns for the duration of one operation; Save writes the
// whole structure back. Writes are serialized behind a mutex so a torn
// write cannot occur, but two concurrent operations still race
// last-writer-wins, which the single-user deployment accepts.
type Store struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
	mu     sync.Mutex
}

func NewStore(db *gorm.DB, l *zap.SugaredLogger) *Store {
	return &Store{
		db:     db,
		logger: l,
	}
}

// Load reads the primary record, falling back to defaults when none exists
// yet. Legacy string-array categories are migrated on the way in and the
// migrated form written back, so later loads see the current shape.
func (s *Store) Load() (*model.Data, error) {
	rec := Record{}
	res := s.db.Where("key = ?", primaryKey).First(&rec)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return model.DefaultData(), nil
		}
		return nil, errors.Wrap(res.Error, "load record")
	}

	data := model.Data{}
	if err := json.Unmarshal([]byte(rec.Payload), &data); err != nil {
		return nil, errors.Wrap(err, "decode record")
	}

	// CategoryList migrated legacy entries during decode; persist the new
	// shape if the stored payload still carries the old one.
	migrated, err := json.Marshal(&data)
	if err == nil && string(migrated) != rec.Payload {
		if err := s.Save(&data); err != nil {
			s.logger.Warnw("failed to persist migrated record", "err", err)
		}
	}

	return &data, nil
}

func (s *Store) Save(data *model.Data) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
	}).Create(&Record{Key: primaryKey, Payload: string(payload), UpdatedAt: time.Now()})
	if res.Error != nil {
		return errors.Wrap(res.Error, "save record")
	}
	return nil
}

// SaveRawTranscript writes the scraped transcript. Raw is written exactly
// once per video, before any formatting attempt, so it survives LLM
// failures.
func (s *Store) SaveRawTranscript(videoID, raw string, md model.TranscriptMetadata) error {
	metadata, err := json.Marshal(&md)
	if err != nil {
		return errors.Wrap(err, "encode transcript metadata")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "video_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"raw", "metadata", "updated_at"}),
	}).Create(&TranscriptRow{
		VideoID:   videoID,
		Raw:       raw,
		Metadata:  string(metadata),
		UpdatedAt: time.Now(),
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "save raw transcript")
	}
	return nil
}

// SetFormattedTranscript attaches the formatted markdown to an existing
// transcript record. A missing record is an error: formatted may never be
// written before raw.
func (s *Store) SetFormattedTranscript(videoID, formatted string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.Model(&TranscriptRow{}).
		Where("video_id = ?", videoID).
		Updates(map[string]interface{}{"formatted": formatted, "updated_at": time.Now()})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update transcript")
	}
	if res.RowsAffected == 0 {
		return errors.Errorf("no transcript record for video %s", videoID)
	}
	return nil
}

// GetTranscript returns the transcript for a video, or nil when none is
// stored.
func (s *Store) GetTranscript(videoID string) (*model.Transcript, error) {
	sql, args, err := squirrel.
		Select("raw", "formatted", "metadata").From("transcripts").
		Where(squirrel.Eq{"video_id": videoID}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	rows := make([]TranscriptRow, 0, 1)
	res := s.db.Raw(sql, args...).Scan(&rows)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "scan")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	tr := model.Transcript{
		Raw:       rows[0].Raw,
		Formatted: rows[0].Formatted,
	}
	if rows[0].Metadata != "" {
		if err := json.Unmarshal([]byte(rows[0].Metadata), &tr.Metadata); err != nil {
			return nil, errors.Wrap(err, "decode transcript metadata")
		}
	}
	return &tr, nil
}
