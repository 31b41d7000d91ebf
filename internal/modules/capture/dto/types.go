package dto

import (
	"time"

	"focusreel/internal/modules/capture/domain"
)

type PlanOutput struct {
	Total    int
	Interval time.Duration
	Offsets  []time.Duration
}

type ScheduleInput struct {
	Duration time.Duration
	// Webcam stays owned by the caller.
	Webcam domain.Session
	// Screen is handed over: the run closes it on cancel or completion.
	// Nil runs webcam-only.
	Screen    domain.Session
	OnCapture func(domain.Sample)
}

type DeviceInfo struct {
	Name            string
	Version         string
	Binary          string
	Enabled         bool
	Sources         []string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Error           string
}
