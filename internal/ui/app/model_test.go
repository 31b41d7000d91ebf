package app

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	animationdomain "focusreel/internal/modules/animation/domain"
	animationdto "focusreel/internal/modules/animation/dto"
	sessiondomain "focusreel/internal/modules/session/domain"
	sessiondto "focusreel/internal/modules/session/dto"
	"focusreel/internal/ui/components"
)

type fakeSession struct {
	finished []sessiondto.FinishInput
}

func (f *fakeSession) Start(context.Context, string, int, func(error), func(sessiondto.Progress)) (sessiondto.StartOutput, error) {
	return sessiondto.StartOutput{SessionID: "s", Total: 5, StartedAt: time.Unix(0, 0)}, nil
}

func (f *fakeSession) Wait(context.Context) (sessiondto.RecordOutput, error) {
	return sessiondto.RecordOutput{}, nil
}

func (f *fakeSession) Cancel(context.Context) error { return nil }

func (f *fakeSession) Finish(_ context.Context, input sessiondto.FinishInput) (sessiondto.FinishOutput, error) {
	f.finished = append(f.finished, input)
	return sessiondto.FinishOutput{MontagePath: "/tmp/m.png"}, nil
}

type fakePlayer struct {
	played   int
	shuffles int
	busy     bool
}

func (p *fakePlayer) Play() error   { p.played++; return nil }
func (p *fakePlayer) Replay() error { return nil }
func (p *fakePlayer) Shuffle() bool {
	if p.busy {
		return false
	}
	p.shuffles++
	return true
}
func (p *fakePlayer) Frame() animationdto.Frame {
	return animationdto.Frame{Phase: animationdomain.PhaseInitial, Cards: []animationdto.CardView{{ID: "card-00", Pos: 0}, {ID: "card-01", Pos: 1}}}
}
func (p *fakePlayer) Subscribe(func(animationdto.Frame)) {}
func (p *fakePlayer) Stop()                              {}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return model, cmd
}

func TestSessionFlow(t *testing.T) {
	t.Parallel()
	session := &fakeSession{}
	player := &fakePlayer{}
	m := NewModel(session, func(photos []string) (Player, error) { return player, nil }, Options{Task: "Write", Minutes: 25})

	m, _ = update(t, m, startedMsg{out: sessiondto.StartOutput{Total: 5, StartedAt: time.Unix(0, 0)}})
	if m.stage != stageRunning || m.total != 5 {
		t.Fatalf("expected running stage, got %v", m.stage)
	}
	m, _ = update(t, m, progressMsg{Captured: 2, Total: 5})
	if m.captured != 2 || m.percent() != 0.4 {
		t.Fatalf("unexpected progress %d", m.captured)
	}
	m, _ = update(t, m, tickMsg(time.Unix(0, 0).Add(90*time.Second)))
	if view := m.runningView(); !strings.Contains(view, "23:30") {
		t.Fatalf("countdown missing from view:\n%s", view)
	}

	record := sessiondomain.Record{ID: "s", Completed: true, WebcamPhotos: []string{"a", "b"}}
	m, _ = update(t, m, endedMsg{record: record})
	if m.stage != stageDone || player.played != 1 || len(m.frame.Cards) != 2 {
		t.Fatalf("pile not opened after the session ended")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if player.shuffles != 1 || m.status != "shuffling" {
		t.Fatalf("space must shuffle, status %q", m.status)
	}
	player.busy = true
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if player.shuffles != 1 || m.status != "pile is busy" {
		t.Fatalf("busy pile must drop the shuffle")
	}

	m, _ = update(t, m, components.PaletteSubmitMsg{Input: "layout grid"})
	m, _ = update(t, m, components.PaletteSubmitMsg{Input: "format jpeg"})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	if cmd == nil {
		t.Fatalf("share must run finish")
	}
	msg := cmd()
	if len(session.finished) != 1 {
		t.Fatalf("finish not called")
	}
	got := session.finished[0]
	if got.Layout != "grid" || got.Format != "jpeg" || !got.Share || got.Record.ID != "s" {
		t.Fatalf("unexpected finish input %+v", got)
	}
	m, _ = update(t, m, msg)
	if m.exported != "/tmp/m.png" {
		t.Fatalf("export path not shown: %q", m.status)
	}
}

func TestExportNeedsFinishedSession(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeSession{}, nil, Options{})
	if _, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}}); cmd != nil {
		t.Fatalf("export before a session ends must be a no-op")
	}
	m, _ = update(t, m, components.PaletteSubmitMsg{Input: "start x"})
	if m.status != "usage: start <minutes> <task>" {
		t.Fatalf("unexpected status %q", m.status)
	}
	m, cmd := update(t, m, components.PaletteSubmitMsg{Input: "start 25 deep work"})
	if cmd == nil || m.opts.Task != "deep work" || m.opts.Minutes != 25 {
		t.Fatalf("start command not parsed: %+v", m.opts)
	}
}
