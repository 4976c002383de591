package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	fileutil "flint/internal/file"
)

// Store abstracts persistence for session records.
type Store interface {
	SaveSession(ctx context.Context, r *Record) error
	LoadSessions(ctx context.Context) ([]*Record, error)
}

// fileStore keeps one status.json per session under dataDir/sessions/<id>.
type fileStore struct {
	dataDir string
}

func NewFileStore(dataDir string) Store { //nolint:ireturn
	if dataDir == "" {
		dataDir = "data"
	}
	return &fileStore{dataDir: dataDir}
}

func (s *fileStore) root() string {
	return filepath.Join(s.dataDir, "sessions")
}

func (s *fileStore) statusPath(id string) string {
	return filepath.Join(s.root(), id, "status.json")
}

func (s *fileStore) SaveSession(_ context.Context, r *Record) error {
	return fileutil.WriteJSONAtomic(s.statusPath(r.ID), r) //nolint:wrapcheck
}

// LoadSessions skips directories whose status file is missing or unreadable.
func (s *fileStore) LoadSessions(_ context.Context) ([]*Record, error) {
	entries, err := os.ReadDir(s.root())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}
	records := make([]*Record, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		b, err := os.ReadFile(s.statusPath(e.Name())) //nolint:gosec // path is controlled by application
		if err != nil {
			continue
		}
		var r Record
		if err := json.Unmarshal(b, &r); err != nil {
			continue
		}
		records = append(records, &r)
	}
	return records, nil
}
