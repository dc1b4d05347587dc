package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lawexam-backend/internal/shared/telemetry"
)

var (
	// ErrTypeNotAllowed is returned when a filename's extension is not on the allow-list.
	ErrTypeNotAllowed = errors.New("file type not allowed")
	// ErrFileTooLarge is returned when a payload exceeds the configured maximum.
	ErrFileTooLarge = errors.New("file size exceeds limit")
)

// Store persists uploaded files under generated names in a local directory.
type Store struct {
	dir      string
	maxBytes int64
	allowed  map[string]struct{}
}

// FileInfo describes a stored file.
type FileInfo struct {
	StoredName string
	Size       int64
	Extension  string
	Path       string
	ModifiedAt time.Time
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string, maxBytes int64, allowedExts []string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	allowed := make(map[string]struct{}, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	telemetry.L().Info().Str("dir", dir).Int64("max_bytes", maxBytes).Msg("file storage initialized")
	return &Store{dir: dir, maxBytes: maxBytes, allowed: allowed}, nil
}

// IsAllowed reports whether the filename's extension is on the allow-list.
func (s *Store) IsAllowed(filename string) bool {
	if filename == "" {
		return false
	}
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := s.allowed[ext]
	return ok
}

// CheckSize reports whether a byte count is within the configured maximum.
func (s *Store) CheckSize(size int64) bool {
	return size <= s.maxBytes
}

// Save copies the reader to durable storage under a generated name that
// preserves the original extension. The size limit is re-checked after the
// write; declared upload sizes are not trusted.
func (s *Store) Save(r io.Reader, originalName string) (string, string, error) {
	if !s.IsAllowed(originalName) {
		return "", "", fmt.Errorf("%w: %s", ErrTypeNotAllowed, filepath.Ext(originalName))
	}

	storedName := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.dir, storedName)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("open file: %w", err)
	}

	written, err := io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		s.removePartial(path)
		return "", "", fmt.Errorf("write file: %w", err)
	}

	if !s.CheckSize(written) {
		s.removePartial(path)
		return "", "", fmt.Errorf("%w: %d bytes", ErrFileTooLarge, written)
	}

	telemetry.L().Info().Str("stored_name", storedName).Int64("size", written).Msg("file saved")
	return storedName, path, nil
}

// Path returns the full path for a stored file and whether it exists.
func (s *Store) Path(storedName string) (string, bool) {
	clean := filepath.Base(storedName)
	path := filepath.Join(s.dir, clean)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Delete removes a stored file. It is idempotent: a missing file returns
// false, and removal errors are logged, never raised.
func (s *Store) Delete(storedName string) bool {
	path := filepath.Join(s.dir, filepath.Base(storedName))
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		telemetry.L().Error().Err(err).Str("stored_name", storedName).Msg("delete file failed")
		return false
	}
	telemetry.L().Info().Str("stored_name", storedName).Msg("file deleted")
	return true
}

// Info returns size and timestamps for a stored file, or nil if absent.
func (s *Store) Info(storedName string) *FileInfo {
	path, ok := s.Path(storedName)
	if !ok {
		return nil
	}
	stat, err := os.Stat(path)
	if err != nil {
		telemetry.L().Error().Err(err).Str("stored_name", storedName).Msg("stat file failed")
		return nil
	}
	return &FileInfo{
		StoredName: storedName,
		Size:       stat.Size(),
		Extension:  filepath.Ext(storedName),
		Path:       path,
		ModifiedAt: stat.ModTime(),
	}
}

func (s *Store) removePartial(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		telemetry.L().Error().Err(err).Str("path", path).Msg("cleanup partial file failed")
	}
}
