// Package store keeps bank snapshots on disk so saved patterns survive a
// restart.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-turing/turing"
)

const (
	timestampFormat = "2006-01-02_15-04-05"
	autosaveFile    = "autosave.json"
)

// ErrNoSaves is returned by Latest when nothing has been saved yet
var ErrNoSaves = errors.New("store: no saves")

// Snapshot is everything needed to bring the pattern store back
type Snapshot struct {
	ID    string                          `json:"id"`
	Name  string                          `json:"name,omitempty"`
	Saved time.Time                       `json:"saved"`
	Banks [turing.NumBanks]turing.Pattern `json:"banks"`
	Bank  int                             `json:"bank"`

	// Fader positions per bank, 0..1. Older saves have none.
	Faders [][8]float64 `json:"faders,omitempty"`
}

// SaveInfo represents a saved snapshot file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// Store is a directory of snapshot files
type Store struct {
	dir string
}

// DefaultDir returns ~/.config/go-turing/banks
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-turing", "banks"), nil
}

// New returns a store rooted at dir. The directory is created on first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory the store writes to
func (s *Store) Dir() string { return s.dir }

// Save writes a timestamped snapshot. A missing ID is filled in.
func (s *Store) Save(snap *Snapshot) (SaveInfo, error) {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	if snap.Saved.IsZero() {
		snap.Saved = time.Now()
	}

	filename := snap.Saved.Format(timestampFormat)
	if snap.Name != "" {
		filename += "_" + sanitizeFilename(snap.Name)
	}
	filename += ".json"

	if err := s.write(filename, snap); err != nil {
		return SaveInfo{}, err
	}
	return SaveInfo{Filename: filename, Name: snap.Name, Timestamp: snap.Saved.Truncate(time.Second)}, nil
}

// WriteAutosave overwrites the autosave slot
func (s *Store) WriteAutosave(snap *Snapshot) error {
	if snap.ID == "" {
		snap.ID = uuid.New().String()
	}
	snap.Saved = time.Now()
	return s.write(autosaveFile, snap)
}

func (s *Store) write(filename string, snap *Snapshot) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	// Write then rename so a crash never leaves half a file
	path := filepath.Join(s.dir, filename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return os.Rename(tmp, path)
}

// Load reads a snapshot by filename
func (s *Store) Load(filename string) (*Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return &snap, nil
}

// Latest loads the autosave if there is one, otherwise the newest save
func (s *Store) Latest() (*Snapshot, error) {
	snap, err := s.Load(autosaveFile)
	if err == nil {
		return snap, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	saves, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(saves) == 0 {
		return nil, ErrNoSaves
	}
	return s.Load(saves[0].Filename) // saves are sorted newest first
}

// List returns timestamped saves, newest first. The autosave slot is not
// listed.
func (s *Store) List() ([]SaveInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	var saves []SaveInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}

		// 2024-01-15_14-30-00.json or 2024-01-15_14-30-00_name.json
		baseName := strings.TrimSuffix(name, ".json")
		if len(baseName) < len(timestampFormat) {
			continue
		}
		ts, err := time.ParseInLocation(timestampFormat, baseName[:len(timestampFormat)], time.Local)
		if err != nil {
			continue
		}

		saveName := ""
		if len(baseName) > 20 && baseName[19] == '_' {
			saveName = baseName[20:]
		}

		saves = append(saves, SaveInfo{
			Filename:  name,
			Name:      saveName,
			Timestamp: ts,
		})
	}

	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})
	return saves, nil
}

// Delete removes a save file
func (s *Store) Delete(filename string) error {
	return os.Remove(filepath.Join(s.dir, filename))
}

// Rename changes the name part of a save, keeping its timestamp
func (s *Store) Rename(oldFilename, newName string) (string, error) {
	baseName := strings.TrimSuffix(oldFilename, ".json")
	if len(baseName) < len(timestampFormat) {
		return "", fmt.Errorf("invalid save filename %q", oldFilename)
	}
	tsStr := baseName[:len(timestampFormat)]

	newFilename := tsStr + ".json"
	if newName != "" {
		newFilename = tsStr + "_" + sanitizeFilename(newName) + ".json"
	}

	if err := os.Rename(filepath.Join(s.dir, oldFilename), filepath.Join(s.dir, newFilename)); err != nil {
		return "", err
	}
	return newFilename, nil
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	return strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	).Replace(name)
}
