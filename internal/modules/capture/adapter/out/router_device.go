package out

import (
	"context"
	"fmt"

	"focusreel/internal/modules/capture/domain"
	captureout "focusreel/internal/modules/capture/port/out"
)

// RouterDevice dispatches each source to its own device.
type RouterDevice struct {
	routes map[domain.Source]captureout.Device
}

func NewRouterDevice(routes map[domain.Source]captureout.Device) *RouterDevice {
	return &RouterDevice{routes: routes}
}

func (r *RouterDevice) Open(ctx context.Context, source domain.Source) (domain.Session, error) {
	device, ok := r.routes[source]
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrNoDevice, source)
	}
	return device.Open(ctx, source)
}
