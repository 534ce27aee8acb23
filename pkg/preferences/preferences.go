package preferences

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mpetrov/chatgpt-tui-client/pkg/domain"
)

const fileName = "preferences.json"

type preferences struct {
	Theme domain.Theme `json:"theme"`
}

// Store persists the user's local preferences as a small JSON file in the
// state dir. Currently that is just the theme flag, re-applied on start.
type Store struct {
	path string
}

func NewStore(stateDir string) *Store {
	return &Store{path: filepath.Join(stateDir, fileName)}
}

// Theme returns the persisted theme flag, defaulting to dark.
func (s *Store) Theme() domain.Theme {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.ThemeDark
	}

	var p preferences
	if err := json.Unmarshal(data, &p); err != nil || p.Theme == "" {
		return domain.ThemeDark
	}
	return p.Theme
}

func (s *Store) SetTheme(theme domain.Theme) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}

	data, err := json.Marshal(preferences{Theme: theme})
	if err != nil {
		return fmt.Errorf("marshaling preferences: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing preferences: %w", err)
	}
	return nil
}
