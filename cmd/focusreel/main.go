package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"focusreel/internal/bootstrap"
	montageinadapter "focusreel/internal/modules/montage/adapter/in"
	montagedomain "focusreel/internal/modules/montage/domain"
	montagedto "focusreel/internal/modules/montage/dto"
	palettedomain "focusreel/internal/modules/palette/domain"
	sessiondto "focusreel/internal/modules/session/dto"
	"focusreel/internal/platform/config"
	apperrors "focusreel/internal/platform/errors"
	"focusreel/internal/platform/imaging"
	uiapp "focusreel/internal/ui/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var workspace string

	root := &cobra.Command{
		Use:           "focusreel",
		Short:         "Focus timer that turns a session into a photo montage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&workspace, "workspace", ".", "workspace directory")

	root.AddCommand(newRunCmd(&workspace))
	root.AddCommand(newTUICmd(&workspace))
	root.AddCommand(newPlanCmd(&workspace))
	root.AddCommand(newStatusCmd(&workspace))
	root.AddCommand(newMontageCmd(&workspace))
	root.AddCommand(newHistoryCmd(&workspace))
	root.AddCommand(newReindexCmd(&workspace))
	root.AddCommand(newDevicesCmd(&workspace))
	return root
}

func loadApp(workspace string) (*bootstrap.App, error) {
	cfg, err := config.New(workspace)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

type exportFlags struct {
	layout     string
	background string
	format     string
	pixelRatio float64
	narrow     bool
	share      bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.layout, "layout", "", "montage layout: pile|grid (default from config)")
	cmd.Flags().StringVar(&f.background, "background", "", "background option id (white, hero, light-vibrant, muted, light-muted)")
	cmd.Flags().StringVar(&f.format, "format", "", "image format: png|jpeg (default from config)")
	cmd.Flags().Float64Var(&f.pixelRatio, "pixel-ratio", 0, "export pixel ratio (default from config)")
	cmd.Flags().BoolVar(&f.narrow, "narrow", false, "use the narrow viewport background styles")
	cmd.Flags().BoolVar(&f.share, "share", false, "share the montage after export")
}

func (f exportFlags) finishInput(cfg config.Config, record sessiondto.RecordOutput) sessiondto.FinishInput {
	return sessiondto.FinishInput{
		Record:       record.Record,
		Layout:       firstNonEmpty(f.layout, cfg.Export.Layout),
		BackgroundID: f.background,
		Format:       firstNonEmpty(f.format, cfg.Export.Format),
		PixelRatio:   firstPositive(f.pixelRatio, cfg.Export.PixelRatio),
		Wide:         cfg.Export.Wide && !f.narrow,
		Share:        f.share,
	}
}

func newRunCmd(workspace *string) *cobra.Command {
	var task string
	var minutes int
	var noExport bool
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "run --task <name> --minutes <n>",
		Short: "Run a focus session and export its montage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(task) == "" {
				return fmt.Errorf("--task is required")
			}
			app, err := loadApp(*workspace)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			out := cmd.OutOrStdout()
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// On a terminal the capture count rewrites one line.
			progressEnd := "\n"
			if term.IsTerminal(int(os.Stdout.Fd())) {
				progressEnd = ""
			}
			started, err := app.SessionCLI.Start(ctx, task, minutes,
				func(err error) { _, _ = fmt.Fprintf(out, "%s %v\n", color.YellowString("warning:"), err) },
				func(p sessiondto.Progress) {
					if progressEnd == "" {
						_, _ = fmt.Fprint(out, "\r")
					}
					_, _ = fmt.Fprintf(out, "captured %d/%d at %s%s", p.Captured, p.Total, p.Offset.Round(time.Second), progressEnd)
				},
			)
			if err != nil {
				return err
			}
			mode := "webcam+screen"
			if started.WebcamOnly {
				mode = "webcam only"
			}
			_, _ = fmt.Fprintf(out, "session started: %s task=%q minutes=%d captures=%d mode=%s\n", started.SessionID, task, minutes, started.Total, mode)

			record, err := app.SessionCLI.Wait(ctx)
			if err != nil {
				return err
			}
			if progressEnd == "" {
				_, _ = fmt.Fprintln(out)
			}
			state := color.GreenString("completed")
			if !record.Record.Completed {
				state = color.YellowString("ended early")
			}
			_, _ = fmt.Fprintf(out, "session %s: %d photos\n", state, record.Record.Frames())
			if noExport {
				return nil
			}

			finished, err := app.SessionCLI.Finish(context.Background(), flags.finishInput(app.Config, record))
			if err != nil {
				return err
			}
			printFinish(out, finished)
			return nil
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "task name")
	cmd.Flags().IntVar(&minutes, "minutes", 25, "session length in minutes")
	cmd.Flags().BoolVar(&noExport, "no-export", false, "skip the montage, note and history")
	flags.register(cmd)
	return cmd
}

func printFinish(out io.Writer, finished sessiondto.FinishOutput) {
	if finished.MontagePath != "" {
		_, _ = fmt.Fprintf(out, "montage: %s background=%s\n", finished.MontagePath, finished.Background)
	}
	switch {
	case finished.Shared:
		_, _ = fmt.Fprintln(out, "shared")
	case finished.Opened:
		_, _ = fmt.Fprintln(out, "opened")
	}
	_, _ = fmt.Fprintf(out, "note: %s\n", finished.NotePath)
}

func newTUICmd(workspace *string) *cobra.Command {
	var task string
	var minutes int
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Run a focus session in the terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*workspace)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			return bootstrap.RunTUI(app, uiapp.Options{
				Task:         task,
				Minutes:      minutes,
				Layout:       flags.layout,
				Format:       flags.format,
				BackgroundID: flags.background,
				PixelRatio:   flags.pixelRatio,
				Wide:         app.Config.Export.Wide && !flags.narrow,
			})
		},
	}
	cmd.Flags().StringVar(&task, "task", "", "task name (starts immediately with --minutes)")
	cmd.Flags().IntVar(&minutes, "minutes", 25, "session length in minutes")
	flags.register(cmd)
	return cmd
}

func newPlanCmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <minutes>",
		Short: "Show when a session of the given length captures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var minutes int
			if _, err := fmt.Sscanf(args[0], "%d", &minutes); err != nil || minutes <= 0 {
				return fmt.Errorf("%w: minutes must be a positive integer", apperrors.ErrInvalidInput)
			}
			app, err := loadApp(*workspace)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			plan := app.CaptureCLI.Plan(minutes)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "captures=%d interval=%s\n", plan.Total, plan.Interval.Round(time.Second))
			for i, offset := range plan.Offsets {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%2d  +%s\n", i+1, offset.Round(time.Second))
			}
			return nil
		},
	}
}

func newStatusCmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active session, if any",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspace)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			active, err := app.SessionCLI.GetActive(context.Background())
			if errors.Is(err, apperrors.ErrNoActiveSession) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no active session")
				return nil
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "active: %s task=%q minutes=%d started=%s\n", active.SessionID, active.TaskName, active.DurationMinutes, active.StartedAt.Format(time.RFC3339))
			return nil
		},
	}
}

func newMontageCmd(workspace *string) *cobra.Command {
	var framesDir, screensDir, task string
	var minutes int
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "montage --frames <dir>",
		Short: "Compose a montage from a directory of photos",
		RunE: func(cmd *cobra.Command, _ []string) error {
			frames, err := montageinadapter.LoadFrames(framesDir)
			if err != nil {
				return err
			}
			screens, err := montageinadapter.LoadFrames(screensDir)
			if err != nil {
				return err
			}
			app, err := loadApp(*workspace)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			cfg := app.Config

			layout, err := montagedomain.ParseLayout(firstNonEmpty(flags.layout, cfg.Export.Layout))
			if err != nil {
				return err
			}
			format, err := imaging.ParseFormat(firstNonEmpty(flags.format, cfg.Export.Format))
			if err != nil {
				return err
			}
			viewport := palettedomain.ViewportWide
			if !cfg.Export.Wide || flags.narrow {
				viewport = palettedomain.ViewportNarrow
			}
			out, err := app.MontageCLI.Compose(context.Background(), montagedto.ComposeInput{
				Record: montagedto.Record{
					TaskName:        firstNonEmpty(task, "montage"),
					DurationMinutes: minutes,
					Screenshots:     screens,
					WebcamPhotos:    frames,
				},
				Layout:       layout,
				Viewport:     viewport,
				BackgroundID: flags.background,
				Format:       format,
				PixelRatio:   firstPositive(flags.pixelRatio, cfg.Export.PixelRatio),
				Share:        flags.share,
			})
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(out.Backgrounds.Options))
			for _, option := range out.Backgrounds.Options {
				ids = append(ids, option.ID)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "montage: %s background=%s options=%s\n", out.Path, out.Background.ID, strings.Join(ids, ","))
			return nil
		},
	}
	cmd.Flags().StringVar(&framesDir, "frames", "", "directory of webcam photos")
	cmd.Flags().StringVar(&screensDir, "screens", "", "directory of screenshots used for the palette")
	cmd.Flags().StringVar(&task, "task", "", "task name shown on the montage")
	cmd.Flags().IntVar(&minutes, "minutes", 25, "session length shown on the montage")
	flags.register(cmd)
	return cmd
}

func newHistoryCmd(workspace *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past sessions, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspace)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			entries, err := app.SessionCLI.History(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
				return nil
			}
			for _, e := range entries {
				state := "done"
				if !e.Completed {
					state = "early"
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %-5s  %3dmin  %2d photos  %s  %s\n",
					e.StartedAt.Local().Format("2006-01-02 15:04"), state, e.DurationMinutes, e.Frames, e.TaskName, e.MontagePath)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list (0 lists all)")
	return cmd
}

func newReindexCmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the session history from the session notes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspace)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			out, err := app.SessionCLI.Reindex(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d sessions, skipped %d notes\n", out.Indexed, out.Skipped)
			return nil
		},
	}
}

func newDevicesCmd(workspace *string) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "Check capture device plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*workspace)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			devices, err := app.CaptureCLI.Devices(context.Background())
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no devices")
				return nil
			}
			for _, d := range devices {
				status := color.GreenString("ok")
				if d.Error != "" {
					status = color.RedString("error: " + d.Error)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s sources=%s enabled=%t binary=%t checksum=%t lifecycle=%t %s",
					d.Name, d.Version, strings.Join(d.Sources, ","), d.Enabled, d.BinaryReachable, d.ChecksumValid, d.LifecycleOK, status)
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}
