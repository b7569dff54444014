package preset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const (
	DefaultDir = "~/.butterysynth/presets"
	MinSlot    = 1
	MaxSlot    = 99
)

var (
	ErrNotFound = errors.New("preset: slot is empty")
	ErrSlot     = errors.New("preset: slot out of range")
)

// Store keeps one preset per numbered slot as dir/NNN.json.
type Store struct {
	dir string
}

// NewStore expands a leading ~ in dir. An empty dir selects DefaultDir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir
	}
	expanded, err := homedir.Expand(dir)
	if err != nil {
		return nil, fmt.Errorf("preset: expand %q: %w", dir, err)
	}
	return &Store{dir: expanded}, nil
}

func (s *Store) Dir() string { return s.dir }

// Path returns the file for slot.
func (s *Store) Path(slot int) (string, error) {
	if slot < MinSlot || slot > MaxSlot {
		return "", fmt.Errorf("%w: %d", ErrSlot, slot)
	}
	return filepath.Join(s.dir, fmt.Sprintf("%03d.json", slot)), nil
}

func (s *Store) Exists(slot int) bool {
	path, err := s.Path(slot)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Name reads only the name field of a slot.
func (s *Store) Name(slot int) (string, error) {
	b, err := s.read(slot)
	if err != nil {
		return "", err
	}
	var head struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return "", fmt.Errorf("preset: slot %d: %w", slot, err)
	}
	return head.Name, nil
}

// Save writes d to slot, creating the directory if needed.
func (s *Store) Save(slot int, d Document) error {
	path, err := s.Path(slot)
	if err != nil {
		return err
	}
	b, err := Encode(d)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("preset: %w", err)
	}
	return os.Rename(tmp, path)
}

// Load reads and validates slot.
func (s *Store) Load(slot int) (Document, error) {
	b, err := s.read(slot)
	if err != nil {
		return Document{}, err
	}
	d, err := Decode(b)
	if err != nil {
		return Document{}, fmt.Errorf("slot %d: %w", slot, err)
	}
	return d, nil
}

func (s *Store) read(slot int) ([]byte, error) {
	path, err := s.Path(slot)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, slot)
	}
	return b, err
}
