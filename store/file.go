package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lemon-club-service/models"
)

// FileStore persists the state as users.json and posts.json under a data
// directory, the same layout the service has always used on disk. Each save
// writes a temp file and renames it over the previous snapshot, so readers
// never observe a half-written file.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (f *FileStore) usersPath() string { return filepath.Join(f.dir, "users.json") }
func (f *FileStore) postsPath() string { return filepath.Join(f.dir, "posts.json") }

// Load reads both snapshot files. Missing files mean a fresh install and
// yield an empty state.
func (f *FileStore) Load() (*State, error) {
	state := NewState()

	if err := readJSON(f.usersPath(), &state.Users); err != nil {
		return nil, fmt.Errorf("failed to load users snapshot: %w", err)
	}
	if state.Users == nil {
		state.Users = make(map[string]*models.User)
	}
	if err := readJSON(f.postsPath(), &state.Posts); err != nil {
		return nil, fmt.Errorf("failed to load posts snapshot: %w", err)
	}
	return state, nil
}

func (f *FileStore) Save(state *State) error {
	if err := writeJSONAtomic(f.usersPath(), state.Users); err != nil {
		return fmt.Errorf("failed to save users snapshot: %w", err)
	}
	if err := writeJSONAtomic(f.postsPath(), state.Posts); err != nil {
		return fmt.Errorf("failed to save posts snapshot: %w", err)
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
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
	return os.Rename(tmp.Name(), path)
}
