package dto

import (
	"time"

	"focusreel/internal/modules/session/domain"
)

type StartInput struct {
	TaskName        string `validate:"required,max=200"`
	DurationMinutes int    `validate:"gte=1,lte=720"`
	// OnDenied is told about a device that could not be opened. A denied
	// screen does not stop the session.
	OnDenied   func(err error)
	OnProgress func(Progress)
}

type StartOutput struct {
	SessionID  string
	StartedAt  time.Time
	Total      int
	WebcamOnly bool
}

type Progress struct {
	Captured int
	Total    int
	Offset   time.Duration
}

type RecordOutput struct {
	Record domain.Record
}

type ActiveSessionOutput struct {
	SessionID       string
	TaskName        string
	DurationMinutes int
	StartedAt       time.Time
	Captured        int
	Total           int
}

type FinishInput struct {
	Record       domain.Record
	Layout       string
	BackgroundID string
	Format       string
	PixelRatio   float64
	Wide         bool
	Share        bool
}

type FinishOutput struct {
	SessionID   string
	MontagePath string
	NotePath    string
	Background  string
	Shared      bool
	Opened      bool
}

type HistoryEntry struct {
	ID              string
	TaskName        string
	DurationMinutes int
	StartedAt       time.Time
	EndedAt         time.Time
	Completed       bool
	Frames          int
	MontagePath     string
	NotePath        string
}

type ReindexOutput struct {
	Indexed int
	Skipped int
}
