// Package runlog persists reconciliation verdicts per suite run so later
// runs (and the report server) can inspect what was compared and why it
// failed.
package runlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tradecheck/internal/reconcile"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// VerdictModel is one stored reconciliation result.
type VerdictModel struct {
	ID        uint           `gorm:"primaryKey;autoIncrement"`
	RunID     string         `gorm:"index;size:64"`
	Scenario  string         `gorm:"index;size:128"`
	Attempt   int            `gorm:""`
	Passed    bool           `gorm:"index"`
	Left      string         `gorm:"size:128"`
	Right     string         `gorm:"size:128"`
	Result    datatypes.JSON `gorm:""`
	CreatedAt time.Time      `gorm:""`
}

func (VerdictModel) TableName() string { return "verdicts" }

// Store wraps the verdict database.
type Store struct {
	db *gorm.DB
}

// NewStore opens (and migrates) the verdict database at path.
func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("runlog: database path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&VerdictModel{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save records one verdict. The full result is kept as JSON so the report
// server can render the mismatch table without re-running anything.
func (s *Store) Save(ctx context.Context, runID, scenario string, attemptNumber int, res reconcile.Result) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("runlog: encode result: %w", err)
	}
	model := VerdictModel{
		RunID:    runID,
		Scenario: scenario,
		Attempt:  attemptNumber,
		Passed:   res.Passed,
		Left:     res.LeftSource,
		Right:    res.RightSource,
		Result:   datatypes.JSON(payload),
	}
	return s.db.WithContext(ctx).Create(&model).Error
}

// ListRecent returns the latest verdicts, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]VerdictModel, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []VerdictModel
	err := s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ByRun returns all verdicts for one suite run in insertion order.
func (s *Store) ByRun(ctx context.Context, runID string) ([]VerdictModel, error) {
	var out []VerdictModel
	err := s.db.WithContext(ctx).
		Where("run_id = ?", strings.TrimSpace(runID)).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// Decode unpacks the stored result payload.
func (m VerdictModel) Decode() (reconcile.Result, error) {
	var res reconcile.Result
	if err := json.Unmarshal(m.Result, &res); err != nil {
		return reconcile.Result{}, fmt.Errorf("runlog: decode verdict %d: %w", m.ID, err)
	}
	return res, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
