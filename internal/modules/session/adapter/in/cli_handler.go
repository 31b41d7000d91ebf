package in

import (
	"context"

	sessiondto "focusreel/internal/modules/session/dto"
	sessionin "focusreel/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, task string, minutes int, onDenied func(error), onProgress func(sessiondto.Progress)) (sessiondto.StartOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{TaskName: task, DurationMinutes: minutes, OnDenied: onDenied, OnProgress: onProgress})
}

func (h CLIHandler) Wait(ctx context.Context) (sessiondto.RecordOutput, error) {
	return h.usecase.Wait(ctx)
}

func (h CLIHandler) Cancel(ctx context.Context) error {
	return h.usecase.Cancel(ctx)
}

func (h CLIHandler) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return h.usecase.GetActive(ctx)
}

func (h CLIHandler) Finish(ctx context.Context, input sessiondto.FinishInput) (sessiondto.FinishOutput, error) {
	return h.usecase.Finish(ctx, input)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]sessiondto.HistoryEntry, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) Reindex(ctx context.Context) (sessiondto.ReindexOutput, error) {
	return h.usecase.Reindex(ctx)
}
