package ledger

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// FileStore keeps the ledger as a newline-delimited list of source
// names, appended in place. Blank lines and surrounding whitespace are
// ignored on read.
type FileStore struct {
	Path string
}

// NewFileStore returns a FileStore backed by the given path. The file
// is created on first Record.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// AlreadyProcessed reads the full ledger. A missing or unreadable file
// reads as empty, by policy: a first run and a lost ledger look the
// same, and re-merging already-seen sources is safe.
func (s *FileStore) AlreadyProcessed() (map[string]struct{}, error) {
	seen := make(map[string]struct{})
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return seen, nil
	}
	for _, line := range strings.Split(string(data), "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		seen[name] = struct{}{}
	}
	return seen, nil
}

// Record appends the names, one per line, and syncs before returning.
func (s *FileStore) Record(names []string) error {
	if len(names) == 0 {
		return nil
	}
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, "opening ledger %s", s.Path)
	}
	defer f.Close()
	for _, name := range names {
		if _, err := fmt.Fprintln(f, name); err != nil {
			return errors.Wrapf(err, "appending %q to ledger", name)
		}
	}
	return errors.Wrap(f.Sync(), "syncing ledger")
}
