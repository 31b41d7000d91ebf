package app

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	animationdto "focusreel/internal/modules/animation/dto"
	sessiondomain "focusreel/internal/modules/session/domain"
	sessiondto "focusreel/internal/modules/session/dto"
	apperrors "focusreel/internal/platform/errors"
	"focusreel/internal/ui/components"
	"focusreel/internal/ui/theme"
)

// ─── ports ───────────────────────────────────────────────────────────────────

type sessionPort interface {
	Start(ctx context.Context, task string, minutes int, onDenied func(error), onProgress func(sessiondto.Progress)) (sessiondto.StartOutput, error)
	Wait(ctx context.Context) (sessiondto.RecordOutput, error)
	Cancel(ctx context.Context) error
	Finish(ctx context.Context, input sessiondto.FinishInput) (sessiondto.FinishOutput, error)
}

// Player is the pile animation as the TUI drives it.
type Player interface {
	Play() error
	Replay() error
	Shuffle() bool
	Frame() animationdto.Frame
	Subscribe(fn func(animationdto.Frame))
	Stop()
}

type PlayerFactory func(photos []string) (Player, error)

// Options preset the session and export settings. A task and a positive
// duration start the session as soon as the program runs.
type Options struct {
	Task         string
	Minutes      int
	Layout       string
	Format       string
	BackgroundID string
	PixelRatio   float64
	Wide         bool
}

// ─── stages ──────────────────────────────────────────────────────────────────

type stage int

const (
	stageSetup stage = iota
	stageRunning
	stageDone
)

// ─── async messages ───────────────────────────────────────────────────────────

type startedMsg struct {
	out sessiondto.StartOutput
	err error
}

type progressMsg sessiondto.Progress

type deniedMsg struct{ err error }

type endedMsg struct {
	record sessiondomain.Record
	err    error
}

type frameMsg animationdto.Frame

type finishedMsg struct {
	out sessiondto.FinishOutput
	err error
}

type tickMsg time.Time

type statusMsg string

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Cancel  key.Binding
	Shuffle key.Binding
	Replay  key.Binding
	Layout  key.Binding
	Export  key.Binding
	Share   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Cancel:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "end early")),
		Shuffle: key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "shuffle")),
		Replay:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "replay")),
		Layout:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "pile/grid")),
		Export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Share:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "share")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Cancel, k.Shuffle, k.Replay},
		{k.Layout, k.Export, k.Share},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model runs one focus session: setup, the live countdown, then the pile
// of captured photos with shuffle and export.
type Model struct {
	session   sessionPort
	newPlayer PlayerFactory
	opts      Options
	events    chan tea.Msg

	stage    stage
	started  sessiondto.StartOutput
	captured int
	total    int
	now      time.Time
	record   sessiondomain.Record
	player   Player
	frame    animationdto.Frame
	exported string

	keys     keyMap
	help     help.Model
	showHelp bool
	bar      progress.Model
	palette  components.Palette
	status   string
	width    int
	height   int
}

func NewModel(session sessionPort, newPlayer PlayerFactory, opts Options) Model {
	if opts.Layout == "" {
		opts.Layout = "pile"
	}
	return Model{
		session:   session,
		newPlayer: newPlayer,
		opts:      opts,
		events:    make(chan tea.Msg, 64),
		keys:      defaultKeys(),
		help:      help.New(),
		bar:       progress.New(progress.WithGradient(string(theme.Sapphire), string(theme.Peach))),
		palette:   components.NewPalette(),
		status:    "ready",
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.listen()}
	if m.opts.Task != "" && m.opts.Minutes > 0 {
		cmds = append(cmds, m.startCmd(m.opts.Task, m.opts.Minutes))
	}
	return tea.Batch(cmds...)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.bar.Width = max(min(m.width-8, 60), 10)

	case tickMsg:
		if m.stage != stageRunning {
			return m, nil
		}
		m.now = time.Time(msg)
		return m, tick()

	case startedMsg:
		if msg.err != nil {
			m.status = "could not start: " + msg.err.Error()
			return m, nil
		}
		m.stage = stageRunning
		m.started = msg.out
		m.total = msg.out.Total
		m.captured = 0
		m.now = msg.out.StartedAt
		m.status = fmt.Sprintf("focusing on %s", m.opts.Task)
		if msg.out.WebcamOnly {
			m.status += " (webcam only)"
		}
		return m, tea.Batch(tick(), m.waitCmd())

	case progressMsg:
		m.captured = msg.Captured
		m.total = msg.Total
		return m, tea.Batch(m.bar.SetPercent(m.percent()), m.listen())

	case deniedMsg:
		m.status = theme.Bad.Render(msg.err.Error())
		return m, m.listen()

	case endedMsg:
		return m.onEnded(msg)

	case frameMsg:
		m.frame = animationdto.Frame(msg)
		return m, m.listen()

	case finishedMsg:
		switch {
		case msg.err != nil:
			m.status = "export failed: " + msg.err.Error()
		case msg.out.MontagePath == "":
			m.status = "session saved: " + msg.out.NotePath
		default:
			m.exported = msg.out.MontagePath
			m.status = "montage saved: " + msg.out.MontagePath
			if msg.out.Shared {
				m.status += " (shared)"
			} else if msg.out.Opened {
				m.status += " (opened)"
			}
		}

	case statusMsg:
		m.status = string(msg)

	case progress.FrameMsg:
		updated, cmd := m.bar.Update(msg)
		if bar, ok := updated.(progress.Model); ok {
			m.bar = bar
		}
		return m, cmd

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}
		return m.onKey(msg)
	}
	return m, nil
}

func (m Model) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.player != nil {
			m.player.Stop()
		}
		if m.stage == stageRunning {
			return m, tea.Sequence(m.cancelCmd(), tea.Quit)
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Palette):
		return m, m.palette.Open()
	case key.Matches(msg, m.keys.Cancel):
		if m.stage == stageRunning {
			m.status = "ending session early"
			return m, m.cancelCmd()
		}
	case key.Matches(msg, m.keys.Shuffle):
		m.shuffle()
	case key.Matches(msg, m.keys.Replay):
		m.replay()
	case key.Matches(msg, m.keys.Layout):
		if m.opts.Layout == "grid" {
			m.opts.Layout = "pile"
		} else {
			m.opts.Layout = "grid"
		}
		m.status = "layout: " + m.opts.Layout
	case key.Matches(msg, m.keys.Export):
		return m, m.finishCmd(false)
	case key.Matches(msg, m.keys.Share):
		return m, m.finishCmd(true)
	}
	return m, nil
}

func (m Model) onEnded(msg endedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.stage = stageSetup
		m.status = "session failed: " + msg.err.Error()
		return m, nil
	}
	m.stage = stageDone
	m.record = msg.record
	if msg.record.Completed {
		m.status = theme.Good.Render(fmt.Sprintf("done: %d photos", msg.record.Frames()))
	} else {
		m.status = fmt.Sprintf("ended early: %d photos", msg.record.Frames())
	}
	if msg.record.Frames() == 0 || m.newPlayer == nil {
		return m, nil
	}
	player, err := m.newPlayer(msg.record.WebcamPhotos)
	if err != nil {
		m.status = "pile unavailable: " + err.Error()
		return m, nil
	}
	events := m.events
	player.Subscribe(func(f animationdto.Frame) { offer(events, frameMsg(f)) })
	m.player = player
	m.frame = player.Frame()
	if err := player.Play(); err != nil {
		m.status = "pile: " + err.Error()
	}
	return m, nil
}

func (m *Model) shuffle() {
	if m.player == nil {
		return
	}
	if m.player.Shuffle() {
		m.status = "shuffling"
	} else {
		m.status = "pile is busy"
	}
}

func (m *Model) replay() {
	if m.player == nil {
		return
	}
	if err := m.player.Replay(); err != nil {
		m.status = "replay: " + err.Error()
	}
}

func (m Model) percent() float64 {
	if m.total == 0 {
		return 0
	}
	return float64(m.captured) / float64(m.total)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	header := theme.Title.Render("focusreel")
	if m.opts.Task != "" {
		header += "  " + theme.Hot.Render(m.opts.Task)
	}
	var body string
	switch {
	case m.showHelp:
		body = m.help.View(m.keys)
	case m.palette.Visible():
		body = m.palette.View()
	case m.stage == stageRunning:
		body = m.runningView()
	case m.stage == stageDone:
		body = m.pileView()
	default:
		body = theme.Muted.Render("press : and type start <minutes> <task>")
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, "", theme.Pane.Render(body), m.statusBar())
}

func (m Model) runningView() string {
	end := m.started.StartedAt.Add(time.Duration(m.opts.Minutes) * time.Minute)
	remaining := max(end.Sub(m.now), 0).Round(time.Second)
	clock := fmt.Sprintf("%02d:%02d", int(remaining.Minutes()), int(remaining.Seconds())%60)
	lines := []string{
		theme.Countdown.Render(clock),
		"",
		m.bar.View(),
		theme.Muted.Render(fmt.Sprintf("captured %d/%d", m.captured, m.total)),
	}
	if m.started.WebcamOnly {
		lines = append(lines, theme.Muted.Render("screen capture off"))
	}
	return strings.Join(lines, "\n")
}

// pileView lists the top of the pile, deepest card first.
func (m Model) pileView() string {
	if len(m.frame.Cards) == 0 {
		return theme.Muted.Render("no photos captured")
	}
	cards := slices.Clone(m.frame.Cards)
	slices.SortFunc(cards, func(a, b animationdto.CardView) int { return b.Pos - a.Pos })
	if len(cards) > 6 {
		cards = cards[len(cards)-6:]
	}
	rows := make([]string, 0, len(cards)+2)
	rows = append(rows, theme.Muted.Render(fmt.Sprintf("%s  %d photos  layout %s", m.frame.Phase, len(m.frame.Cards), m.opts.Layout)))
	for _, card := range cards {
		label := fmt.Sprintf("%s  %+5.1f°", card.ID, card.Transform.Rotation)
		if card.ID == m.frame.Moving {
			label += "  " + string(m.frame.Stage)
		}
		style := theme.Card
		if card.Pos == 0 {
			style = theme.CardTop
		}
		indent := strings.Repeat(" ", min(card.Pos, 10)*2)
		rows = append(rows, indent+style.Render(label))
	}
	if m.exported != "" {
		rows = append(rows, theme.Good.Render(m.exported))
	}
	return strings.Join(rows, "\n")
}

func (m Model) statusBar() string {
	right := theme.Muted.Render("?:help  :::palette  q:quit")
	gap := max(m.width-lipgloss.Width(m.status)-lipgloss.Width(right), 1)
	return m.status + strings.Repeat(" ", gap) + right
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return m, nil
	}
	switch parts[0] {
	case "start":
		if len(parts) < 3 {
			m.status = "usage: start <minutes> <task>"
			return m, nil
		}
		minutes, err := strconv.Atoi(parts[1])
		if err != nil {
			m.status = "invalid minutes"
			return m, nil
		}
		if m.stage == stageRunning {
			m.status = apperrors.ErrActiveSessionExists.Error()
			return m, nil
		}
		m.opts.Task = strings.Join(parts[2:], " ")
		m.opts.Minutes = minutes
		return m, m.startCmd(m.opts.Task, minutes)
	case "cancel":
		if m.stage == stageRunning {
			return m, m.cancelCmd()
		}
		m.status = apperrors.ErrNoActiveSession.Error()
	case "layout":
		if len(parts) < 2 || (parts[1] != "pile" && parts[1] != "grid") {
			m.status = "usage: layout <pile|grid>"
			return m, nil
		}
		m.opts.Layout = parts[1]
		m.status = "layout: " + parts[1]
	case "background":
		if len(parts) < 2 {
			m.status = "usage: background <id>"
			return m, nil
		}
		m.opts.BackgroundID = parts[1]
		m.status = "background: " + parts[1]
	case "format":
		if len(parts) < 2 || (parts[1] != "png" && parts[1] != "jpeg") {
			m.status = "usage: format <png|jpeg>"
			return m, nil
		}
		m.opts.Format = parts[1]
		m.status = "format: " + parts[1]
	case "export":
		return m, m.finishCmd(false)
	case "share":
		return m, m.finishCmd(true)
	case "shuffle":
		m.shuffle()
	case "replay":
		m.replay()
	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── async commands ───────────────────────────────────────────────────────────

// listen delivers the next callback event. Exactly one listen is pending at
// any time; every handler of an event message re-arms it.
func (m Model) listen() tea.Cmd {
	events := m.events
	return func() tea.Msg { return <-events }
}

// offer drops the event when the UI is too far behind.
func offer(events chan tea.Msg, msg tea.Msg) {
	select {
	case events <- msg:
	default:
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) startCmd(task string, minutes int) tea.Cmd {
	events := m.events
	return func() tea.Msg {
		out, err := m.session.Start(context.Background(), task, minutes,
			func(err error) { offer(events, deniedMsg{err: err}) },
			func(p sessiondto.Progress) { offer(events, progressMsg(p)) },
		)
		return startedMsg{out: out, err: err}
	}
}

func (m Model) waitCmd() tea.Cmd {
	return func() tea.Msg {
		rec, err := m.session.Wait(context.Background())
		return endedMsg{record: rec.Record, err: err}
	}
}

func (m Model) cancelCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.session.Cancel(context.Background()); err != nil && !errors.Is(err, apperrors.ErrNoActiveSession) {
			return statusMsg("cancel failed: " + err.Error())
		}
		return nil
	}
}

func (m Model) finishCmd(share bool) tea.Cmd {
	if m.stage != stageDone {
		return nil
	}
	input := sessiondto.FinishInput{
		Record:       m.record,
		Layout:       m.opts.Layout,
		BackgroundID: m.opts.BackgroundID,
		Format:       m.opts.Format,
		PixelRatio:   m.opts.PixelRatio,
		Wide:         m.opts.Wide,
		Share:        share,
	}
	return func() tea.Msg {
		out, err := m.session.Finish(context.Background(), input)
		return finishedMsg{out: out, err: err}
	}
}
