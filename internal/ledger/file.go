package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileStore keeps one UTF-8 text file per label under a base directory:
// one order_id per line, no header. The format is deliberately trivial so
// a human can inspect artifacts after a failed suite.
type FileStore struct {
	dir string
}

// NewFileStore creates the base directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("ledger: base directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &IOError{Op: "init", Label: dir, Cause: err}
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(label string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", errors.New("ledger: label is required")
	}
	if label != filepath.Base(label) {
		return "", fmt.Errorf("ledger: label %q must not contain path separators", label)
	}
	return filepath.Join(s.dir, label), nil
}

// Clear truncates the ledger to zero length, creating it if absent.
func (s *FileStore) Clear(label string) error {
	p, err := s.path(label)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return &IOError{Op: "clear", Label: label, Cause: err}
	}
	return f.Close()
}

// Append adds one id at the end. Duplicates are preserved.
func (s *FileStore) Append(label, orderID string) error {
	p, err := s.path(label)
	if err != nil {
		return err
	}
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return errors.New("ledger: order id is required")
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &IOError{Op: "append", Label: label, Cause: err}
	}
	defer f.Close()
	if _, err := f.WriteString(orderID + "\n"); err != nil {
		return &IOError{Op: "append", Label: label, Cause: err}
	}
	return nil
}

// Read returns ids in append order. A missing ledger reads as empty: the
// caller may be checking a run that created no orders.
func (s *FileStore) Read(label string) ([]string, error) {
	p, err := s.path(label)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "read", Label: label, Cause: err}
	}
	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			ids = append(ids, line)
		}
	}
	return ids, nil
}
