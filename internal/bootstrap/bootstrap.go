package bootstrap

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	animationdomain "focusreel/internal/modules/animation/domain"
	animationin "focusreel/internal/modules/animation/port/in"
	animationusecase "focusreel/internal/modules/animation/usecase"
	captureinadapter "focusreel/internal/modules/capture/adapter/in"
	captureoutadapter "focusreel/internal/modules/capture/adapter/out"
	capturedomain "focusreel/internal/modules/capture/domain"
	captureout "focusreel/internal/modules/capture/port/out"
	captureservice "focusreel/internal/modules/capture/service"
	captureusecase "focusreel/internal/modules/capture/usecase"
	exportoutadapter "focusreel/internal/modules/export/adapter/out"
	exportout "focusreel/internal/modules/export/port/out"
	exportservice "focusreel/internal/modules/export/service"
	exportusecase "focusreel/internal/modules/export/usecase"
	montageinadapter "focusreel/internal/modules/montage/adapter/in"
	montageservice "focusreel/internal/modules/montage/service"
	montageusecase "focusreel/internal/modules/montage/usecase"
	paletteoutadapter "focusreel/internal/modules/palette/adapter/out"
	paletteservice "focusreel/internal/modules/palette/service"
	paletteusecase "focusreel/internal/modules/palette/usecase"
	sessioninadapter "focusreel/internal/modules/session/adapter/in"
	sessionoutadapter "focusreel/internal/modules/session/adapter/out"
	sessionservice "focusreel/internal/modules/session/service"
	sessionusecase "focusreel/internal/modules/session/usecase"
	"focusreel/internal/platform/clock"
	"focusreel/internal/platform/config"
	"focusreel/internal/platform/id"
	"focusreel/internal/platform/logging"
	uiapp "focusreel/internal/ui/app"
)

type App struct {
	Config     config.Config
	Logger     hclog.Logger
	CaptureCLI captureinadapter.CLIHandler
	MontageCLI montageinadapter.CLIHandler
	SessionCLI sessioninadapter.CLIHandler
	Animation  animationin.Usecase

	closers []io.Closer
}

// New wires every module from cfg. Logs go to stderr so they never mix
// with command output.
func New(cfg config.Config) (*App, error) {
	return NewWithLog(cfg, os.Stderr)
}

func NewWithLog(cfg config.Config, logOut io.Writer) (*App, error) {
	logger := logging.New(cfg.LogLevel, logOut)
	clk := clock.SystemClock{}
	ids := id.UUID{}
	app := &App{Config: cfg, Logger: logger}

	manifests := captureoutadapter.NewFileManifestStore(cfg.Device.Manifest)
	plugins := captureoutadapter.NewPluginDevice(manifests, logger)
	captureUC := captureusecase.NewInteractor(captureusecase.Options{
		Scheduler: captureservice.NewScheduler(clk, capturedomain.Policy{
			MinCaptures:        cfg.Capture.MinCaptures,
			MaxCapturesPerHour: cfg.Capture.MaxCapturesPerHour,
			GrabTimeout:        cfg.Capture.GrabTimeout,
		}, logger),
		Device:   captureoutadapter.NewRouterDevice(deviceRoutes(cfg.Device, plugins)),
		Store:    manifests,
		Prober:   plugins,
		Checksum: captureoutadapter.VerifyChecksum,
		Logger:   logger,
	})

	paletteUC := paletteusecase.NewInteractor(paletteservice.NewExtractor(paletteoutadapter.NewCandidateSampler(), logger))

	animationUC := animationusecase.NewInteractor(clk, cfg.Animation.Seed, animationdomain.Config{
		BaseRadius:      cfg.Animation.BaseRadius,
		RadiusIncrement: cfg.Animation.RadiusIncrement,
		MaxPhotos:       cfg.Animation.MaxPhotos,
	}, logger)

	rasterizer, err := newRasterizer(cfg.Export.Rasterizer, app)
	if err != nil {
		return nil, err
	}
	var sharer exportout.Sharer
	if cfg.Export.ShareDir != "" {
		sharer = exportoutadapter.NewDirSharer(cfg.Export.ShareDir)
	}
	exportUC := exportusecase.NewInteractor(
		exportservice.NewExporter(rasterizer, exportoutadapter.NewImageLoader(), logger),
		exportservice.NewDeliverer(sharer, exportoutadapter.NewOSExternalLauncher(), logger),
		exportoutadapter.NewDirFileStore(cfg.OutputDir),
	)

	montageUC := montageusecase.NewInteractor(montageservice.NewComposer(paletteUC, animationUC, exportUC, float64(cfg.Export.Width), logger))

	history, err := sessionoutadapter.NewSQLiteHistory(cfg.DBPath)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("open session history: %w", err)
	}
	app.closers = append(app.closers, history)
	sessionUC := sessionusecase.NewInteractor(
		sessionservice.NewController(captureUC, sessionoutadapter.NewFileActiveSessionStore(cfg.DataDir), clk, ids, logger),
		montageUC,
		sessionoutadapter.NewMarkdownNoteStore(filepath.Join(cfg.OutputDir, "notes")),
		history,
		logger,
	)

	app.CaptureCLI = captureinadapter.NewCLIHandler(captureUC)
	app.MontageCLI = montageinadapter.NewCLIHandler(montageUC)
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)
	app.Animation = animationUC
	return app, nil
}

// Close releases the history database and any browser the rasterizer
// started.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// deviceRoutes prefers the configured directories and page for each source
// and falls back to plugin devices.
func deviceRoutes(cfg config.DeviceConfig, plugins captureout.Device) map[capturedomain.Source]captureout.Device {
	routes := map[capturedomain.Source]captureout.Device{
		capturedomain.SourceWebcam: plugins,
		capturedomain.SourceScreen: plugins,
	}
	if cfg.WebcamDir != "" {
		routes[capturedomain.SourceWebcam] = captureoutadapter.NewDirDevice(cfg.WebcamDir)
	}
	switch {
	case cfg.ScreenDir != "":
		routes[capturedomain.SourceScreen] = captureoutadapter.NewDirDevice(cfg.ScreenDir)
	case cfg.ScreenURL != "":
		routes[capturedomain.SourceScreen] = captureoutadapter.NewPageDevice(cfg.ScreenURL)
	}
	return routes
}

func newRasterizer(kind string, app *App) (exportout.Rasterizer, error) {
	switch kind {
	case "", "native":
		return exportoutadapter.NewNativeRasterizer(), nil
	case "browser":
		r := exportoutadapter.NewRodRasterizer()
		app.closers = append(app.closers, r)
		return r, nil
	default:
		return nil, fmt.Errorf("unknown rasterizer: %s", kind)
	}
}

// RunTUI runs one interactive session. opts presets the task and export
// settings; the config fills in what opts leaves empty.
func RunTUI(app *App, opts uiapp.Options) error {
	if opts.Layout == "" {
		opts.Layout = app.Config.Export.Layout
	}
	if opts.Format == "" {
		opts.Format = app.Config.Export.Format
	}
	if opts.PixelRatio == 0 {
		opts.PixelRatio = app.Config.Export.PixelRatio
	}
	newPlayer := func(photos []string) (uiapp.Player, error) {
		player, err := app.Animation.Open(photos)
		if err != nil {
			return nil, err
		}
		return player, nil
	}
	model := uiapp.NewModel(app.SessionCLI, newPlayer, opts)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
