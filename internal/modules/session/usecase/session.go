package usecase

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	montagedomain "focusreel/internal/modules/montage/domain"
	montagedto "focusreel/internal/modules/montage/dto"
	montagein "focusreel/internal/modules/montage/port/in"
	palettedomain "focusreel/internal/modules/palette/domain"
	"focusreel/internal/modules/session/domain"
	sessiondto "focusreel/internal/modules/session/dto"
	sessionin "focusreel/internal/modules/session/port/in"
	sessionout "focusreel/internal/modules/session/port/out"
	"focusreel/internal/modules/session/service"
	apperrors "focusreel/internal/platform/errors"
	"focusreel/internal/platform/imaging"
	"focusreel/internal/platform/logging"
)

type Interactor struct {
	controller *service.Controller
	montage    montagein.Usecase
	notes      sessionout.NoteStore
	history    sessionout.HistoryIndex
	logger     hclog.Logger
}

func NewInteractor(controller *service.Controller, montage montagein.Usecase, notes sessionout.NoteStore, history sessionout.HistoryIndex, logger hclog.Logger) sessionin.Usecase {
	return &Interactor{
		controller: controller,
		montage:    montage,
		notes:      notes,
		history:    history,
		logger:     logging.OrDiscard(logger).Named("session"),
	}
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StartOutput, error) {
	return i.controller.Start(ctx, input)
}

func (i *Interactor) Wait(ctx context.Context) (sessiondto.RecordOutput, error) {
	return i.controller.Wait(ctx)
}

func (i *Interactor) Cancel(ctx context.Context) error {
	return i.controller.Cancel(ctx)
}

func (i *Interactor) GetActive(ctx context.Context) (sessiondto.ActiveSessionOutput, error) {
	return i.controller.Active(ctx)
}

// Finish hands the record to the montage, then writes the note and the
// history row. A record without frames gets a note but no montage.
func (i *Interactor) Finish(ctx context.Context, input sessiondto.FinishInput) (sessiondto.FinishOutput, error) {
	record := input.Record
	if record.ID == "" {
		return sessiondto.FinishOutput{}, fmt.Errorf("%w: session record is required", apperrors.ErrInvalidInput)
	}
	out := sessiondto.FinishOutput{SessionID: record.ID}

	if record.Frames() > 0 && i.montage != nil {
		composed, err := i.compose(ctx, input)
		if err != nil {
			return sessiondto.FinishOutput{}, err
		}
		out.MontagePath = composed.Path
		out.Background = composed.Background.ID
		out.Shared = composed.Share.Shared
		out.Opened = composed.Share.Opened
	} else {
		i.logger.Info("no frames captured, skipping montage", "id", record.ID)
	}

	if i.notes != nil {
		path, err := i.notes.Save(ctx, record, out.MontagePath)
		if err != nil {
			return sessiondto.FinishOutput{}, err
		}
		out.NotePath = path
	}
	if i.history != nil {
		entry := domain.Entry{
			ID:              record.ID,
			TaskName:        record.TaskName,
			DurationMinutes: record.DurationMinutes,
			StartedAt:       record.StartedAt,
			EndedAt:         record.EndedAt,
			Completed:       record.Completed,
			Frames:          record.Frames(),
			MontagePath:     out.MontagePath,
			NotePath:        out.NotePath,
		}
		if err := i.history.Upsert(ctx, entry); err != nil {
			return sessiondto.FinishOutput{}, err
		}
	}
	return out, nil
}

func (i *Interactor) compose(ctx context.Context, input sessiondto.FinishInput) (montagedto.ComposeOutput, error) {
	layout, err := montagedomain.ParseLayout(input.Layout)
	if err != nil {
		return montagedto.ComposeOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	format := imaging.FormatPNG
	if input.Format != "" {
		if format, err = imaging.ParseFormat(input.Format); err != nil {
			return montagedto.ComposeOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
	}
	viewport := palettedomain.ViewportNarrow
	if input.Wide {
		viewport = palettedomain.ViewportWide
	}
	record := input.Record
	return i.montage.Compose(ctx, montagedto.ComposeInput{
		Record: montagedto.Record{
			ID:              record.ID,
			TaskName:        record.TaskName,
			DurationMinutes: record.DurationMinutes,
			Screenshots:     record.Screenshots,
			WebcamPhotos:    record.WebcamPhotos,
		},
		Layout:       layout,
		Viewport:     viewport,
		BackgroundID: input.BackgroundID,
		Format:       format,
		PixelRatio:   input.PixelRatio,
		Share:        input.Share,
	})
}

func (i *Interactor) History(ctx context.Context, limit int) ([]sessiondto.HistoryEntry, error) {
	if i.history == nil {
		return []sessiondto.HistoryEntry{}, nil
	}
	entries, err := i.history.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]sessiondto.HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, sessiondto.HistoryEntry{
			ID:              entry.ID,
			TaskName:        entry.TaskName,
			DurationMinutes: entry.DurationMinutes,
			StartedAt:       entry.StartedAt,
			EndedAt:         entry.EndedAt,
			Completed:       entry.Completed,
			Frames:          entry.Frames,
			MontagePath:     entry.MontagePath,
			NotePath:        entry.NotePath,
		})
	}
	return out, nil
}

func (i *Interactor) Reindex(ctx context.Context) (sessiondto.ReindexOutput, error) {
	if i.notes == nil || i.history == nil {
		return sessiondto.ReindexOutput{}, nil
	}
	entries, skipped, err := i.notes.Scan(ctx)
	if err != nil {
		return sessiondto.ReindexOutput{}, err
	}
	for _, entry := range entries {
		if err := i.history.Upsert(ctx, entry); err != nil {
			return sessiondto.ReindexOutput{}, err
		}
	}
	if skipped > 0 {
		i.logger.Warn("skipped unreadable session notes", "count", skipped)
	}
	return sessiondto.ReindexOutput{Indexed: len(entries), Skipped: skipped}, nil
}
