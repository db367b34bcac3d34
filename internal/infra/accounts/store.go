package accounts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"pyth_index/internal/domain"
	"pyth_index/internal/layout"
)

// FileExt is the suffix of account dump files. The file name is the base58 key.
const FileExt = ".bin"

// Store hands out one layout.Buffer per account key.
// Buffers are loaded lazily from an optional directory and then kept, so two
// loads of the same key share the same exclusivity flag.
type Store struct {
	mu   sync.Mutex
	dir  string
	bufs map[layout.AccountKey]*layout.Buffer
}

// NewMemoryStore returns a store holding only accounts added with Put.
func NewMemoryStore() *Store {
	return &Store{bufs: make(map[layout.AccountKey]*layout.Buffer)}
}

// NewDirStore returns a store backed by <dir>/<base58 key>.bin files.
func NewDirStore(dir string) *Store {
	s := NewMemoryStore()
	s.dir = dir
	return s
}

// Dir returns the backing directory, or "" for a memory store.
func (s *Store) Dir() string { return s.dir }

// Put registers data as the account at key, replacing any previous buffer.
func (s *Store) Put(key layout.AccountKey, data []byte) *layout.Buffer {
	buf := layout.NewBuffer(key, data)
	s.mu.Lock()
	s.bufs[key] = buf
	s.mu.Unlock()
	return buf
}

// Load returns the buffer for key. A key with no backing data yields an
// *domain.AccountNotFoundError, which matches domain.ErrNotFound.
func (s *Store) Load(key layout.AccountKey) (*layout.Buffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if buf, ok := s.bufs[key]; ok {
		return buf, nil
	}
	if s.dir == "" {
		return nil, &domain.AccountNotFoundError{Key: key.String()}
	}

	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.AccountNotFoundError{Key: key.String()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read account %s: %w", key, err)
	}

	buf := layout.NewBuffer(key, data)
	s.bufs[key] = buf
	return buf, nil
}

// Save writes data for key into the backing directory and registers it.
func (s *Store) Save(key layout.AccountKey, data []byte) error {
	if s.dir == "" {
		s.Put(key, data)
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create accounts directory: %w", err)
	}

	// write to a temp file first so a crash never leaves a half-written account
	tmp, err := os.CreateTemp(s.dir, ".account-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	s.Put(key, data)
	return nil
}

// Keys lists every known key: loaded or put accounts plus dump files in the directory.
// Files whose names are not valid keys are skipped.
func (s *Store) Keys() ([]layout.AccountKey, error) {
	s.mu.Lock()
	seen := make(map[layout.AccountKey]struct{}, len(s.bufs))
	for k := range s.bufs {
		seen[k] = struct{}{}
	}
	s.mu.Unlock()

	if s.dir != "" {
		entries, err := os.ReadDir(s.dir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, FileExt) {
				continue
			}
			k, err := layout.ParseAccountKey(strings.TrimSuffix(name, FileExt))
			if err != nil {
				continue
			}
			seen[k] = struct{}{}
		}
	}

	keys := make([]layout.AccountKey, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	return keys, nil
}

func (s *Store) path(key layout.AccountKey) string {
	return filepath.Join(s.dir, key.String()+FileExt)
}
