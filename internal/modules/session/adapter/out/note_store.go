package out

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"focusreel/internal/modules/session/domain"
	sessionout "focusreel/internal/modules/session/port/out"
	"focusreel/internal/platform/markdown"
	"focusreel/internal/platform/slug"
)

type noteMeta struct {
	SchemaVersion   int    `yaml:"schema_version"`
	ID              string `yaml:"id"`
	Task            string `yaml:"task"`
	StartedAt       string `yaml:"started_at"`
	EndedAt         string `yaml:"ended_at"`
	DurationMinutes int    `yaml:"duration_minutes"`
	Completed       bool   `yaml:"completed"`
	Frames          int    `yaml:"frames"`
	Screenshots     int    `yaml:"screenshots"`
	Montage         string `yaml:"montage,omitempty"`
}

// MarkdownNoteStore writes notes under <dir>/YYYY/MM/DD.
type MarkdownNoteStore struct {
	dir string
}

func NewMarkdownNoteStore(dir string) sessionout.NoteStore {
	return &MarkdownNoteStore{dir: dir}
}

func (s *MarkdownNoteStore) Save(_ context.Context, record domain.Record, montagePath string) (string, error) {
	date := record.StartedAt
	dir := filepath.Join(s.dir, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create note dir: %w", err)
	}
	name := fmt.Sprintf("%s-%s.md", date.Format("150405"), slug.Make(record.TaskName))
	path := filepath.Join(dir, name)

	montage := ""
	if montagePath != "" {
		if rel, err := filepath.Rel(dir, montagePath); err == nil {
			montage = filepath.ToSlash(rel)
		} else {
			montage = montagePath
		}
	}
	meta := noteMeta{
		SchemaVersion:   domain.SchemaVersion,
		ID:              record.ID,
		Task:            record.TaskName,
		StartedAt:       record.StartedAt.Format(time.RFC3339),
		EndedAt:         record.EndedAt.Format(time.RFC3339),
		DurationMinutes: record.DurationMinutes,
		Completed:       record.Completed,
		Frames:          record.Frames(),
		Screenshots:     len(record.Screenshots),
		Montage:         montage,
	}
	status := "completed"
	if !record.Completed {
		status = fmt.Sprintf("stopped after %s", record.EndedAt.Sub(record.StartedAt).Round(time.Second))
	}
	body := fmt.Sprintf("# %s\n\n- Planned: %d minutes\n- Status: %s\n- Frames: %d\n", record.TaskName, record.DurationMinutes, status, record.Frames())
	if montage != "" {
		body += fmt.Sprintf("\n![montage](%s)\n", montage)
	}
	rendered, err := markdown.Render(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write session note: %w", err)
	}
	return path, nil
}

// Scan reads the frontmatter of every note below the store. Notes that do
// not parse or were written by another schema version count as skipped.
func (s *MarkdownNoteStore) Scan(ctx context.Context) ([]domain.Entry, int, error) {
	if _, err := os.Stat(s.dir); errors.Is(err, fs.ErrNotExist) {
		return []domain.Entry{}, 0, nil
	}
	names, err := doublestar.Glob(os.DirFS(s.dir), "**/*.md", doublestar.WithFilesOnly())
	if err != nil {
		return nil, 0, fmt.Errorf("list session notes: %w", err)
	}
	entries := make([]domain.Entry, 0, len(names))
	skipped := 0
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		entry, ok := s.readEntry(filepath.Join(s.dir, filepath.FromSlash(name)))
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}
	return entries, skipped, nil
}

func (s *MarkdownNoteStore) readEntry(path string) (domain.Entry, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Entry{}, false
	}
	var meta noteMeta
	if _, err := markdown.Split(string(raw), &meta); err != nil {
		return domain.Entry{}, false
	}
	if meta.SchemaVersion != domain.SchemaVersion || meta.ID == "" {
		return domain.Entry{}, false
	}
	startedAt, err := time.Parse(time.RFC3339, meta.StartedAt)
	if err != nil {
		return domain.Entry{}, false
	}
	endedAt, err := time.Parse(time.RFC3339, meta.EndedAt)
	if err != nil {
		return domain.Entry{}, false
	}
	montage := meta.Montage
	if montage != "" && !filepath.IsAbs(montage) {
		montage = filepath.Join(filepath.Dir(path), filepath.FromSlash(montage))
	}
	return domain.Entry{
		ID:              meta.ID,
		TaskName:        meta.Task,
		DurationMinutes: meta.DurationMinutes,
		StartedAt:       startedAt,
		EndedAt:         endedAt,
		Completed:       meta.Completed,
		Frames:          meta.Frames,
		MontagePath:     montage,
		NotePath:        path,
	}, true
}
