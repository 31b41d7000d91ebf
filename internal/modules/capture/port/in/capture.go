package in

import (
	"context"
	"time"

	"focusreel/internal/modules/capture/domain"
	"focusreel/internal/modules/capture/dto"
)

// Run is a scheduled capture session. Cancel is idempotent; Done closes
// once every tick resolved or the run was cancelled.
type Run interface {
	Cancel()
	Done() <-chan struct{}
	Delivered() int
}

type Usecase interface {
	Plan(duration time.Duration) dto.PlanOutput
	OpenWebcam(ctx context.Context) (domain.Session, error)
	OpenScreen(ctx context.Context) (domain.Session, error)
	Schedule(ctx context.Context, input dto.ScheduleInput) (Run, error)
	Devices(ctx context.Context) ([]dto.DeviceInfo, error)
}
