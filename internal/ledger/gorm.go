package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// entryModel is one ledger line in the sqlite backend. Seq preserves append
// order across connections.
type entryModel struct {
	Seq     uint   `gorm:"primaryKey;autoIncrement"`
	Label   string `gorm:"index;size:255"`
	OrderID string `gorm:"size:64"`
}

func (entryModel) TableName() string { return "ledger_entries" }

// GormStore backs the ledger with SQLite via gorm, for suites whose
// parallel runs share one artifact database. WAL plus the busy timeout
// makes concurrent appends on the same label safe; the plain file backend
// relies on per-run labels instead.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens (and migrates) the ledger database at path.
func NewGormStore(path string) (*GormStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("ledger: database path is required")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &IOError{Op: "init", Label: path, Cause: err}
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, &IOError{Op: "init", Label: path, Cause: err}
	}
	if err := db.AutoMigrate(&entryModel{}); err != nil {
		return nil, &IOError{Op: "init", Label: path, Cause: err}
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Clear(label string) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return errors.New("ledger: label is required")
	}
	if err := s.db.Where("label = ?", label).Delete(&entryModel{}).Error; err != nil {
		return &IOError{Op: "clear", Label: label, Cause: err}
	}
	return nil
}

func (s *GormStore) Append(label, orderID string) error {
	label = strings.TrimSpace(label)
	orderID = strings.TrimSpace(orderID)
	if label == "" || orderID == "" {
		return errors.New("ledger: label and order id are required")
	}
	if err := s.db.Create(&entryModel{Label: label, OrderID: orderID}).Error; err != nil {
		return &IOError{Op: "append", Label: label, Cause: err}
	}
	return nil
}

func (s *GormStore) Read(label string) ([]string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, errors.New("ledger: label is required")
	}
	var entries []entryModel
	if err := s.db.Where("label = ?", label).Order("seq ASC").Find(&entries).Error; err != nil {
		return nil, &IOError{Op: "read", Label: label, Cause: err}
	}
	var ids []string
	for _, e := range entries {
		ids = append(ids, e.OrderID)
	}
	return ids, nil
}

// Close releases the underlying connection.
func (s *GormStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
