package db

import (
	"log"
	"os"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/revisit-app/revisit-agent/internal/config"
)

type (
	// Record holds one JSON snapshot per key. Only the primary record
	// uses it; transcripts get their own table.
	Record struct {
		Key       string `gorm:"primarykey"`
		Payload   string `gorm:"not null"`
		UpdatedAt time.Time
	}

	TranscriptRow struct {
		VideoID   string `gorm:"primarykey;column:video_id"`
		Raw       string
		Formatted string
		Metadata  string
		UpdatedAt time.Time
	}
)

func (TranscriptRow) TableName() string { return "transcripts" }

func NewGormClient(cfg *config.Config) (*gorm.DB, error) {
	newLogger := logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		Colorful:                  true,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(sqlite.Open(cfg.DBPath), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, errors.Wrap(err, "migrate record")
	}
	if err := db.AutoMigrate(&TranscriptRow{}); err != nil {
		return nil, errors.Wrap(err, "migrate transcript")
	}

	return db, nil
}
