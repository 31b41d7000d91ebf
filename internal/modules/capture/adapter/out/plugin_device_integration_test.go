package out_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	captureout "focusreel/internal/modules/capture/adapter/out"
	"focusreel/internal/modules/capture/domain"
)

func TestPluginDeviceIntegrationTestPattern(t *testing.T) {
	binPath, checksum := buildTestPatternPlugin(t)
	manifest := domain.Manifest{
		Name:    "testpattern",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
		Sources: []domain.Source{domain.SourceWebcam, domain.SourceScreen},
	}
	storePath := filepath.Join(t.TempDir(), "devices.json")
	raw, err := json.Marshal([]domain.Manifest{manifest})
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	if err := os.WriteFile(storePath, raw, 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	device := captureout.NewPluginDevice(captureout.NewFileManifestStore(storePath), nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := device.Probe(ctx, manifest); err != nil {
		t.Fatalf("probe: %v", err)
	}
	session, err := device.Open(ctx, domain.SourceScreen)
	if err != nil {
		t.Fatalf("open screen: %v", err)
	}
	defer session.Close()
	first, err := session.Capture(ctx)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	second, err := session.Capture(ctx)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !strings.HasPrefix(first, "data:image/png;base64,") {
		t.Fatalf("unexpected frame prefix: %.40s", first)
	}
	if first == second {
		t.Fatalf("expected consecutive frames to differ")
	}
}

func buildTestPatternPlugin(t *testing.T) (string, string) {
	t.Helper()
	tmp := t.TempDir()
	binPath := filepath.Join(tmp, "testpattern")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/testpattern")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build testpattern plugin: %v\n%s", err, string(out))
	}
	payload, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("read built plugin: %v", err)
	}
	hash := sha256.Sum256(payload)
	return binPath, hex.EncodeToString(hash[:])
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}
