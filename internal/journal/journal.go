// Package journal keeps a record of every snapshot that reached the screen,
// so a session can be replayed or inspected later.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/toppan-client/pkg/types"
)

type Entry struct {
	ID        uint64 `gorm:"primaryKey"`
	SessionID string `gorm:"size:32;index:idx_session_gen"`
	Gen       uint64 `gorm:"index:idx_session_gen"`
	RoomID    string `gorm:"size:64;index"`
	Phase     string `gorm:"size:32"`
	MySeat    int
	WallCount int
	Snapshot  datatypes.JSON
	CreatedAt time.Time
}

func (Entry) TableName() string { return "snapshot_journal" }

// NewEntry maps one rendered snapshot to a row.
func NewEntry(session string, gen uint64, mySeat int, snap types.Snapshot) (Entry, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return Entry{}, fmt.Errorf("encode snapshot: %w", err)
	}
	return Entry{
		SessionID: session,
		Gen:       gen,
		RoomID:    snap.RoomID,
		Phase:     string(snap.Phase),
		MySeat:    mySeat,
		WallCount: snap.WallCount,
		Snapshot:  datatypes.JSON(raw),
		CreatedAt: time.Now(),
	}, nil
}

type Journal struct {
	db      *gorm.DB
	session string
}

// Open connects to Postgres and makes sure the table exists.
func Open(dsn string) (*Journal, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("migrate journal: %w", err)
	}
	return New(db), nil
}

// New wraps an existing connection. Each Journal is one session.
func New(db *gorm.DB) *Journal {
	return &Journal{db: db, session: fmt.Sprintf("%x", time.Now().UnixNano())}
}

func (j *Journal) Session() string { return j.session }

func (j *Journal) Record(ctx context.Context, gen uint64, mySeat int, snap types.Snapshot) error {
	e, err := NewEntry(j.session, gen, mySeat, snap)
	if err != nil {
		return err
	}
	return j.db.WithContext(ctx).Create(&e).Error
}

// Entries returns the entries of one session in render order.
func (j *Journal) Entries(ctx context.Context, session string, limit int) ([]Entry, error) {
	var out []Entry
	q := j.db.WithContext(ctx).Where("session_id = ?", session).Order("gen")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (j *Journal) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Nop is used when no journal is configured.
type Nop struct{}

func (Nop) Record(context.Context, uint64, int, types.Snapshot) error { return nil }
func (Nop) Close() error                                              { return nil }
