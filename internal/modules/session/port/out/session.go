package out

import (
	"context"

	"focusreel/internal/modules/session/domain"
)

// NoteStore writes the markdown note of a finished session.
type NoteStore interface {
	Save(ctx context.Context, record domain.Record, montagePath string) (string, error)
	// Scan rebuilds history entries from the stored notes and reports how
	// many notes it could not read.
	Scan(ctx context.Context) ([]domain.Entry, int, error)
}

type ActiveSessionStore interface {
	SaveActive(ctx context.Context, session domain.ActiveSession) error
	LoadActive(ctx context.Context) (domain.ActiveSession, error)
	ClearActive(ctx context.Context) error
}

type HistoryIndex interface {
	Upsert(ctx context.Context, entry domain.Entry) error
	List(ctx context.Context, limit int) ([]domain.Entry, error)
}
