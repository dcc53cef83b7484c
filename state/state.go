// Package state persists small facts between runs, such as the last results
// bundle a watch reported for each election.
package state

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the state file inside its directory.
const FileName = "state.yml"

// State is a generic map of key-value pairs.
type State map[string]interface{}

// Store reads and writes one state file. Each call rereads the file so that
// separate processes sharing a cache directory see each other's writes.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store kept in dir/state.yml. Nothing is created until
// the first write.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, FileName)}
}

// Path returns the location of the state file.
func (s *Store) Path() string {
	return s.path
}

// Load loads the state from the state file.
// Returns an empty state if the file doesn't exist.
func (s *Store) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(State), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	if st == nil {
		st = make(State)
	}
	return st, nil
}

func (s *Store) save(st State) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// GetString returns the string stored under key.
// Returns empty string if the key doesn't exist or the value is not a string.
func (s *Store) GetString(key string) (string, error) {
	st, err := s.Load()
	if err != nil {
		return "", err
	}
	str, _ := st[key].(string)
	return str, nil
}

// Set stores value under key.
func (s *Store) Set(key string, value interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return err
	}
	st[key] = value
	return s.save(st)
}
