// Package jsonfile stores the measurement history as a single JSON document.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"bodymetrics/internal/domain"
)

// Store implements domain.HistoryStorage on a JSON file.
type Store struct {
	path string
}

// New creates a Store for the file at path. The file is created on the
// first write.
func New(path string) *Store {
	return &Store{path: path}
}

// Ensure interface is met.
var _ domain.HistoryStorage = (*Store)(nil)

// Path returns the file location.
func (s *Store) Path() string {
	return s.path
}

// ReadAll decodes the history file. A missing or empty file is an empty log.
func (s *Store) ReadAll(ctx context.Context) ([]domain.Measurement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var log []domain.Measurement
	if err := dec.Decode(&log); err != nil {
		return nil, &domain.CorruptDataWarning{Source: s.path, Err: err}
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, &domain.CorruptDataWarning{Source: s.path, Err: errors.New("trailing data after history")}
	}
	return log, nil
}

// WriteAll replaces the file atomically: the log is written to a temporary
// file in the same directory, synced, then renamed over the old file.
func (s *Store) WriteAll(ctx context.Context, log []domain.Measurement) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if log == nil {
		log = []domain.Measurement{}
	}
	b, err := json.MarshalIndent(log, "", "    ")
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	b = append(b, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmpName, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
