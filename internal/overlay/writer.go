package overlay

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/BulletTrain222/kometa-anilist-overlay/internal/airdate"
	"github.com/BulletTrain222/kometa-anilist-overlay/internal/logging"
)

type document struct {
	Overlays map[string]entry `yaml:"overlays"`
}

type entry struct {
	Overlay    overlayRef `yaml:"overlay"`
	PlexSearch plexSearch `yaml:"plex_search"`
}

type overlayRef struct {
	Name string `yaml:"name"`
}

type plexSearch struct {
	All allFilter `yaml:"all"`
}

type allFilter struct {
	Title string `yaml:"title"`
}

// Writer assembles and persists the two overlay files.
type Writer struct {
	weekdayPath   string
	countdownPath string
	logger        *slog.Logger
}

// NewWriter creates a writer targeting the given output paths.
func NewWriter(weekdayPath, countdownPath string, logger *slog.Logger) *Writer {
	return &Writer{
		weekdayPath:   weekdayPath,
		countdownPath: countdownPath,
		logger:        logging.NewComponentLogger(logger, "overlay"),
	}
}

// Write renders both overlay documents from the run's labels. Labels
// without a weekday are omitted from the weekday file; labels without a
// countdown bucket are omitted from the countdown file. Files are
// replaced atomically so Kometa never reads a half-written document.
func (w *Writer) Write(labels []airdate.Label) error {
	weekday := make(map[string]entry)
	countdown := make(map[string]entry)
	for _, label := range labels {
		if label.Weekday != "" {
			weekday[label.Title] = newEntry(label.Title, label.Weekday)
		}
		if label.Countdown != "" {
			countdown[label.Title] = newEntry(label.Title, label.Countdown)
		}
	}

	if err := w.writeDocument(w.weekdayPath, weekday); err != nil {
		return fmt.Errorf("write weekday overlays: %w", err)
	}
	if err := w.writeDocument(w.countdownPath, countdown); err != nil {
		return fmt.Errorf("write countdown overlays: %w", err)
	}

	w.logger.Info("overlay files written",
		logging.String("weekday_file", w.weekdayPath),
		logging.Int("weekday_count", len(weekday)),
		logging.String("countdown_file", w.countdownPath),
		logging.Int("countdown_count", len(countdown)))
	return nil
}

func newEntry(title, name string) entry {
	return entry{
		Overlay:    overlayRef{Name: name},
		PlexSearch: plexSearch{All: allFilter{Title: title}},
	}
}

func (w *Writer) writeDocument(path string, overlays map[string]entry) error {
	data, err := marshalDocument(overlays)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create overlay directory: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// marshalDocument emits titles in sorted order so successive runs over
// the same library produce byte-identical files.
func marshalDocument(overlays map[string]entry) ([]byte, error) {
	titles := make([]string, 0, len(overlays))
	for title := range overlays {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	root := &yaml.Node{Kind: yaml.MappingNode}
	body := &yaml.Node{Kind: yaml.MappingNode}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "overlays"},
		body,
	)
	for _, title := range titles {
		var value yaml.Node
		if err := value.Encode(overlays[title]); err != nil {
			return nil, fmt.Errorf("encode overlay entry: %w", err)
		}
		body.Content = append(body.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: title},
			&value,
		)
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("marshal overlay document: %w", err)
	}
	return data, nil
}
