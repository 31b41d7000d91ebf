package in

import (
	"context"
	"time"

	"focusreel/internal/modules/capture/dto"
	capturein "focusreel/internal/modules/capture/port/in"
)

type CLIHandler struct {
	usecase capturein.Usecase
}

func NewCLIHandler(usecase capturein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Plan(minutes int) dto.PlanOutput {
	return h.usecase.Plan(time.Duration(minutes) * time.Minute)
}

func (h CLIHandler) Devices(ctx context.Context) ([]dto.DeviceInfo, error) {
	return h.usecase.Devices(ctx)
}
