package domain

import (
	"slices"
	"time"

	capturedomain "focusreel/internal/modules/capture/domain"
)

const SchemaVersion = 1

// ActiveSession marks a running session in the workspace.
type ActiveSession struct {
	SessionID       string    `json:"session_id"`
	TaskName        string    `json:"task_name"`
	DurationMinutes int       `json:"duration_minutes"`
	StartedAt       time.Time `json:"started_at"`
}

// Stale reports whether the session should have ended long ago, which means
// its process died without clearing the marker.
func (a ActiveSession) Stale(now time.Time, grace time.Duration) bool {
	end := a.StartedAt.Add(time.Duration(a.DurationMinutes) * time.Minute)
	return now.After(end.Add(grace))
}

// Record is the completed session. It is built once and passed by value.
type Record struct {
	ID              string
	TaskName        string
	DurationMinutes int
	StartedAt       time.Time
	EndedAt         time.Time
	// Completed is false when the session was cancelled early.
	Completed    bool
	Screenshots  []string
	WebcamPhotos []string
}

func (r Record) Frames() int {
	return len(r.WebcamPhotos)
}

// BuildRecord orders samples by tick and splits them into the two frame
// lists. Webcam-only samples contribute no screenshot.
func BuildRecord(active ActiveSession, samples []capturedomain.Sample, endedAt time.Time, completed bool) Record {
	ordered := slices.Clone(samples)
	slices.SortStableFunc(ordered, func(a, b capturedomain.Sample) int { return a.Index - b.Index })
	record := Record{
		ID:              active.SessionID,
		TaskName:        active.TaskName,
		DurationMinutes: active.DurationMinutes,
		StartedAt:       active.StartedAt,
		EndedAt:         endedAt,
		Completed:       completed,
		Screenshots:     make([]string, 0, len(ordered)),
		WebcamPhotos:    make([]string, 0, len(ordered)),
	}
	for _, sample := range ordered {
		if sample.Screenshot != "" {
			record.Screenshots = append(record.Screenshots, sample.Screenshot)
		}
		record.WebcamPhotos = append(record.WebcamPhotos, sample.WebcamPhoto)
	}
	return record
}

// Entry is one row of the session history index. Frames are not kept.
type Entry struct {
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
