package out

import (
	"context"

	"focusreel/internal/modules/capture/domain"
)

// Device opens capture sessions for one or more sources.
type Device interface {
	Open(ctx context.Context, source domain.Source) (domain.Session, error)
}

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Prober checks that a plugin binary starts and answers its metadata call.
type Prober interface {
	Probe(ctx context.Context, manifest domain.Manifest) error
}
