package overrides

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
)

// Action discriminates the two override kinds. The zero value is
// reserved so an absent override can never be confused with one.
type Action int

const (
	// ActionIgnore excludes the title from resolution entirely.
	ActionIgnore Action = iota + 1
	// ActionForceID binds the title to a specific AniList entry,
	// bypassing search and matching.
	ActionForceID
)

// Override is a single manual rule for a library title.
type Override struct {
	Action    Action
	AniListID int64
}

// UnmarshalJSON accepts either the string "ignore" or a numeric AniList ID.
func (o *Override) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		if strings.EqualFold(strings.TrimSpace(text), "ignore") {
			*o = Override{Action: ActionIgnore}
			return nil
		}
		return fmt.Errorf("unknown override value %q", text)
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return errors.New("override must be \"ignore\" or an AniList id")
	}
	if id <= 0 {
		return fmt.Errorf("override id must be positive, got %d", id)
	}
	*o = Override{Action: ActionForceID, AniListID: id}
	return nil
}

// Table maps library titles to overrides. Loaded once per run and
// read-only afterwards.
type Table struct {
	entries map[string]Override
}

// Load reads the override file at path. A missing file yields an empty
// table; a malformed file is an error since a silently dropped override
// could bind a title to the wrong identity.
func Load(path string, logger *slog.Logger) (*Table, error) {
	logger = logging.NewComponentLogger(logger, "overrides")

	table := &Table{entries: make(map[string]Override)}
	path = strings.TrimSpace(path)
	if path == "" {
		return table, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return table, nil
		}
		return nil, fmt.Errorf("read overrides file: %w", err)
	}
	if len(data) == 0 {
		return table, nil
	}

	var raw map[string]Override
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse overrides file %s: %w", path, err)
	}

	for title, override := range raw {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		table.entries[title] = override
	}

	logger.Debug("loaded title overrides",
		logging.String("path", path),
		logging.Int("count", len(table.entries)))
	return table, nil
}

// Lookup returns the override for a library title, if any.
func (t *Table) Lookup(title string) (Override, bool) {
	if t == nil {
		return Override{}, false
	}
	override, ok := t.entries[strings.TrimSpace(title)]
	return override, ok
}

// Len returns the number of overrides in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
