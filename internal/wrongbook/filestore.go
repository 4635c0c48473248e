package wrongbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// FileStore keeps each user's ledger in <dir>/<userID>.json.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create ledger dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(userID int64) string {
	return filepath.Join(s.dir, strconv.FormatInt(userID, 10)+".json")
}

// Load returns an empty ledger when the user has no file yet.
func (s *FileStore) Load(ctx context.Context, userID int64) (*Ledger, error) {
	data, err := os.ReadFile(s.path(userID))
	if errors.Is(err, fs.ErrNotExist) {
		return NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	l := NewLedger()
	if err := json.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("decode ledger for user %d: %w", userID, err)
	}
	return l, nil
}

// Save writes a temp file next to the target, syncs it, and renames it over
// the target. Readers see either the old ledger or the new one.
func (s *FileStore) Save(ctx context.Context, userID int64, l *Ledger) (err error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, strconv.FormatInt(userID, 10)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp ledger: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp ledger: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp ledger: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.path(userID)); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
