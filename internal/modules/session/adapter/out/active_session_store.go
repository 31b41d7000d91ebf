package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"focusreel/internal/modules/session/domain"
	sessionout "focusreel/internal/modules/session/port/out"
	apperrors "focusreel/internal/platform/errors"
)

const activeMarkerName = "active-session.json"

// activeMarker is the on-disk envelope. Markers written by another schema
// version are ignored.
type activeMarker struct {
	Version int                  `json:"version"`
	PID     int                  `json:"pid"`
	Session domain.ActiveSession `json:"session"`
}

type FileActiveSessionStore struct {
	path string
}

// NewFileActiveSessionStore keeps the marker at <dataDir>/active-session.json.
func NewFileActiveSessionStore(dataDir string) sessionout.ActiveSessionStore {
	return &FileActiveSessionStore{path: filepath.Join(dataDir, activeMarkerName)}
}

func (s *FileActiveSessionStore) SaveActive(_ context.Context, session domain.ActiveSession) error {
	if session.SessionID == "" {
		return fmt.Errorf("%w: active session needs an id", apperrors.ErrInvalidInput)
	}
	payload, err := json.MarshalIndent(activeMarker{Version: domain.SchemaVersion, PID: os.Getpid(), Session: session}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), activeMarkerName+".*")
	if err != nil {
		return fmt.Errorf("write active session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write active session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write active session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("commit active session: %w", err)
	}
	return nil
}

func (s *FileActiveSessionStore) LoadActive(_ context.Context) (domain.ActiveSession, error) {
	payload, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	case err != nil:
		return domain.ActiveSession{}, fmt.Errorf("read active session: %w", err)
	}
	var marker activeMarker
	if err := json.Unmarshal(payload, &marker); err != nil {
		return domain.ActiveSession{}, fmt.Errorf("decode active session: %w", err)
	}
	if marker.Version != domain.SchemaVersion || marker.Session.SessionID == "" {
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	return marker.Session, nil
}

func (s *FileActiveSessionStore) ClearActive(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear active session: %w", err)
	}
	return nil
}
