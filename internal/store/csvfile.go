package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gofrs/flock"

	"github.com/faizmokh/jurnal/internal/files"
	"github.com/faizmokh/jurnal/internal/logging"
)

// FileStore keeps each resource as a CSV file under the jurnal home directory.
// The change token is the SHA-256 of the file bytes. Writes hold an exclusive
// lock on <sheet>.lock while checking the token and replacing the file, so
// separate processes sharing a home directory cannot both commit against one
// snapshot.
type FileStore struct {
	manager *files.Manager
	logger  *log.Logger

	mu sync.Mutex
}

// NewFileStore wires a FileStore using the shared files.Manager.
func NewFileStore(manager *files.Manager, logger *log.Logger) *FileStore {
	return &FileStore{manager: manager, logger: logging.OrDiscard(logger)}
}

// Path returns the CSV file behind resource.
func (s *FileStore) Path(resource string) (string, error) {
	if s == nil || s.manager == nil {
		return "", errors.New("file store not initialized with file manager")
	}
	return s.manager.SheetPath(resource)
}

func (s *FileStore) Read(ctx context.Context, resource string) (Content, error) {
	path, err := s.Path(resource)
	if err != nil {
		return Content{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Content{}, ErrNotFound
		}
		return Content{}, fmt.Errorf("%w: read %s: %w", ErrUnavailable, path, err)
	}

	records, err := DecodeCSV(data)
	if err != nil {
		return Content{}, decodeFailure(path, err)
	}

	s.logger.Debug("read sheet", "path", path, "rows", len(records))
	return Content{Records: records, Token: fileToken(data)}, nil
}

func (s *FileStore) Write(ctx context.Context, resource string, records [][]string, token string) (string, error) {
	path, err := s.Path(resource)
	if err != nil {
		return "", err
	}

	if err := s.manager.EnsureDir(path); err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := lockSheet(ctx, path)
	if err != nil {
		return "", err
	}
	defer unlock()

	current, err := s.currentToken(path)
	if err != nil {
		return "", err
	}
	if current != token {
		return "", fmt.Errorf("write %s: %w", resource, ErrConflict)
	}

	data, err := EncodeCSV(records)
	if err != nil {
		return "", err
	}
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("%w: write %s: %w", ErrUnavailable, path, err)
	}

	next := fileToken(data)
	s.logger.Debug("wrote sheet", "path", path, "rows", len(records))
	return next, nil
}

// Close is a no-op; files are opened per call.
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) currentToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("%w: read %s: %w", ErrUnavailable, path, err)
	}
	return fileToken(data), nil
}

// lockRetry is how often a blocked writer retries the sheet lock.
const lockRetry = 10 * time.Millisecond

func lockSheet(ctx context.Context, path string) (func(), error) {
	fl := flock.New(path + ".lock")
	locked, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("%w: lock %s: %w", ErrUnavailable, path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: lock %s", ErrUnavailable, path)
	}
	return func() { fl.Unlock() }, nil
}

func fileToken(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, "jurnal-*")
	if err != nil {
		return err
	}
	defer os.Remove(temp.Name())

	if _, err := temp.Write(data); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Sync(); err != nil {
		temp.Close()
		return err
	}
	if err := temp.Close(); err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err == nil {
		if err := os.Chmod(temp.Name(), info.Mode()); err != nil {
			return err
		}
	} else if err := os.Chmod(temp.Name(), 0o644); err != nil {
		return err
	}

	return os.Rename(temp.Name(), path)
}
