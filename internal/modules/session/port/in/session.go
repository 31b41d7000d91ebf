package in

import (
	"context"

	"focusreel/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	// Wait blocks until the session ends. Cancelling ctx cancels the session.
	Wait(ctx context.Context) (dto.RecordOutput, error)
	Cancel(ctx context.Context) error
	GetActive(ctx context.Context) (dto.ActiveSessionOutput, error)
	// Finish renders the montage and writes the session note and history row.
	Finish(ctx context.Context, input dto.FinishInput) (dto.FinishOutput, error)
	History(ctx context.Context, limit int) ([]dto.HistoryEntry, error)
	// Reindex rebuilds the history index from the session notes.
	Reindex(ctx context.Context) (dto.ReindexOutput, error)
}
