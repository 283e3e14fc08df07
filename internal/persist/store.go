package persist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/keyward/keyward/internal/onewire"
)

// ErrTruncatedRecord means the key list file ends in a partial record.
var ErrTruncatedRecord = errors.New("truncated record")

// Store reads and writes the authorized key list at a fixed path.
type Store struct {
	path string
}

// NewStore returns a store backed by the file at path. The file need
// not exist yet; Save creates it and any missing parent directories.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads every record from the key list file. A missing file is an
// error; callers that want to start empty on a fresh install check for
// fs.ErrNotExist themselves.
func (s *Store) Load() ([]onewire.TokenID, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key list: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var ids []onewire.TokenID
	for {
		var id onewire.TokenID
		n, err := io.ReadFull(r, id[:])
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("key list %s ends in a %d-byte fragment: %w", s.path, n, ErrTruncatedRecord)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read key list %s: %w", s.path, err)
		}
		ids = append(ids, id)
	}
}

// Save replaces the key list file with the given records. The new
// contents are staged in a temporary file and renamed into place, so
// concurrent readers and crashes see either the old list or the new
// one in full.
func (s *Store) Save(ids []onewire.TokenID) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create key list directory: %w", err)
		}
	}

	buf := make([]byte, 0, len(ids)*onewire.IDLength)
	for _, id := range ids {
		buf = append(buf, id[:]...)
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, buf, 0600); err != nil {
		return fmt.Errorf("failed to write key list: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace key list: %w", err)
	}
	return nil
}
