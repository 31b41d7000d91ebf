package out

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	capturerpc "focusreel/internal/modules/capture/adapter/out/rpc"
	"focusreel/internal/modules/capture/domain"
	captureout "focusreel/internal/modules/capture/port/out"
	"focusreel/internal/platform/logging"
)

const (
	defaultStartTimeout = 3 * time.Second
	defaultCallTimeout  = 5 * time.Second
)

// PluginDevice opens capture sessions backed by an external go-plugin
// binary. Each session runs its own plugin process.
type PluginDevice struct {
	store  captureout.ManifestStore
	logger hclog.Logger
}

func NewPluginDevice(store captureout.ManifestStore, logger hclog.Logger) *PluginDevice {
	return &PluginDevice{store: store, logger: logging.OrDiscard(logger).Named("device")}
}

func (d *PluginDevice) Open(ctx context.Context, source domain.Source) (domain.Session, error) {
	manifest, err := d.manifestFor(ctx, source)
	if err != nil {
		return nil, err
	}
	client, closeFn, err := d.connect(manifest, defaultStartTimeout)
	if err != nil {
		return nil, err
	}
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	if _, err := client.GetMetadata(callCtx); err != nil {
		closeFn()
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	d.logger.Debug("capture device opened", "device", manifest.Name, "source", source)
	return &pluginSession{source: source, client: client, closeFn: closeFn}, nil
}

// Probe starts the plugin once and asks for its metadata.
func (d *PluginDevice) Probe(ctx context.Context, manifest domain.Manifest) error {
	if err := VerifyChecksum(manifest.Binary, manifest.SHA256); err != nil {
		return err
	}
	client, closeFn, err := d.connect(manifest, defaultStartTimeout)
	if err != nil {
		return err
	}
	defer closeFn()

	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	meta, err := client.GetMetadata(callCtx)
	if err != nil {
		return fmt.Errorf("get metadata: %w", err)
	}
	for _, source := range manifest.Sources {
		found := false
		for _, served := range meta.Sources {
			if served == string(source) {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("device %s does not serve %s", manifest.Name, source)
		}
	}
	return nil
}

func (d *PluginDevice) manifestFor(ctx context.Context, source domain.Source) (domain.Manifest, error) {
	manifests, err := d.store.Load(ctx)
	if err != nil {
		return domain.Manifest{}, err
	}
	for _, m := range manifests {
		if !m.Serves(source) {
			continue
		}
		if err := m.Validate(); err != nil {
			d.logger.Warn("skipping invalid device manifest", "device", m.Name, "error", err)
			continue
		}
		if !m.Enabled {
			continue
		}
		if err := VerifyChecksum(m.Binary, m.SHA256); err != nil {
			return domain.Manifest{}, err
		}
		return m, nil
	}
	return domain.Manifest{}, fmt.Errorf("%w: %s", domain.ErrNoDevice, source)
}

func (d *PluginDevice) connect(manifest domain.Manifest, startTimeout time.Duration) (capturerpc.CaptureDeviceClient, func(), error) {
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig:  capturerpc.HandshakeConfig,
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolGRPC},
		Plugins:          capturerpc.PluginMap(nil),
		Cmd:              exec.Command(manifest.Binary),
		Managed:          true,
		StartTimeout:     startTimeout,
		Logger:           d.logger.Named(manifest.Name),
	})
	closeFn := func() { client.Kill() }

	rpcClient, err := client.Client()
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("start device client: %w", err)
	}
	raw, err := rpcClient.Dispense(capturerpc.PluginMapKey)
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("dispense device: %w", err)
	}
	typed, ok := raw.(capturerpc.CaptureDeviceClient)
	if !ok {
		closeFn()
		return nil, nil, fmt.Errorf("device rpc client type mismatch")
	}
	return typed, closeFn, nil
}

type pluginSession struct {
	source  domain.Source
	client  capturerpc.CaptureDeviceClient
	closeFn func()
	once    sync.Once
}

func (s *pluginSession) Source() domain.Source {
	return s.source
}

func (s *pluginSession) Capture(ctx context.Context) (string, error) {
	callCtx, cancel := callContext(ctx, defaultCallTimeout)
	defer cancel()
	out, err := s.client.Capture(callCtx, &capturerpc.CaptureRequest{Source: string(s.source)})
	if err != nil {
		return "", fmt.Errorf("capture %s: %w", s.source, err)
	}
	if out.DataURI == "" {
		return "", fmt.Errorf("capture %s: empty frame", s.source)
	}
	return out.DataURI, nil
}

func (s *pluginSession) Close() error {
	s.once.Do(s.closeFn)
	return nil
}

// VerifyChecksum compares the sha256 of the binary at path with want.
func VerifyChecksum(path, want string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open device binary: %w", err)
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return fmt.Errorf("hash device binary: %w", err)
	}
	if hex.EncodeToString(h.Sum(nil)) != want {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, path)
	}
	return nil
}

func callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := parent.Deadline(); ok {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
