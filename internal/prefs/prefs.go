package prefs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Snapshot is the persisted form of the preference cache.
type Snapshot struct {
	DeviceID       string              `toml:"device_id"`
	Followed       []string            `toml:"followed"` // publication slugs
	FollowedOrgs   []string            `toml:"followed_organizations"`
	Saved          map[string][]string `toml:"saved"`
	ItemShoutouts  map[string]int      `toml:"item_shoutouts"`
	OwnerShoutouts map[string]int      `toml:"owner_shoutouts"`
	Shouted        []string            `toml:"shouted"`
	RecentSearches []string            `toml:"recent_searches"`
	Drift          []string            `toml:"drift"`
}

// Persister gives the cache key-value durability across process restarts.
type Persister interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}

// ErrPathEmpty is returned when a blank path is expanded.
var ErrPathEmpty = errors.New("path is empty")

const defaultCachePath = "~/.config/herald/cache.toml"

// DefaultPath returns the default TOML cache file path.
func DefaultPath() string {
	return defaultCachePath
}

// FileStore persists the cache as a TOML file.
type FileStore struct {
	path string
}

var _ Persister = (*FileStore)(nil)

// NewFileStore resolves path (empty uses the default) into a FileStore.
func NewFileStore(path string) (*FileStore, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, fmt.Errorf("resolve cache path: %w", err)
	}
	return &FileStore{path: resolved}, nil
}

// Path returns the resolved file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot; a missing file yields an empty snapshot.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	file, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil
		}
		return Snapshot{}, fmt.Errorf("open cache: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read cache: %w", err)
	}

	var snap Snapshot
	if err := toml.Unmarshal(bytes, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse cache: %w", err)
	}
	return snap, nil
}

// Save writes the snapshot, creating directories as needed. The file is
// replaced atomically so a crash never leaves a truncated cache.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	bytes, err := toml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o600); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultCachePath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", ErrPathEmpty
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
