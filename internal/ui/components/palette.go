package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"focusreel/internal/ui/theme"
)

// PaletteSubmitMsg is emitted when the user confirms a command.
type PaletteSubmitMsg struct{ Input string }

// PaletteCancelMsg is emitted when the user presses esc.
type PaletteCancelMsg struct{}

// Command is one palette verb. Completions are full inputs offered on tab.
type Command struct {
	Verb        string
	Usage       string
	Completions []string
}

// Commands mirrors executePalette in app/model.go.
var Commands = []Command{
	{Verb: "start", Usage: "start <minutes> <task>", Completions: []string{"start 25 ", "start 50 ", "start 90 "}},
	{Verb: "cancel", Usage: "cancel"},
	{Verb: "layout", Usage: "layout <pile|grid>", Completions: []string{"layout pile", "layout grid"}},
	{Verb: "background", Usage: "background <id>", Completions: []string{
		"background white", "background hero", "background light-vibrant", "background muted", "background light-muted",
	}},
	{Verb: "format", Usage: "format <png|jpeg>", Completions: []string{"format png", "format jpeg"}},
	{Verb: "export", Usage: "export"},
	{Verb: "share", Usage: "share"},
	{Verb: "shuffle", Usage: "shuffle"},
	{Verb: "replay", Usage: "replay"},
}

const maxHints = 5

var (
	paletteStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Background(theme.Mantle).
			Foreground(theme.Text).
			Padding(0, 1)

	usageStyle = lipgloss.NewStyle().Foreground(theme.Subtext0)
)

// Palette is the ":" command overlay.
type Palette struct {
	input   textinput.Model
	visible bool
	width   int
}

func NewPalette() Palette {
	ti := textinput.New()
	ti.Placeholder = "start 25 write the report"
	ti.CharLimit = 256
	ti.ShowSuggestions = true
	ti.SetSuggestions(completions())
	return Palette{input: ti}
}

func completions() []string {
	out := []string{}
	for _, c := range Commands {
		if len(c.Completions) == 0 {
			out = append(out, c.Verb)
			continue
		}
		out = append(out, c.Completions...)
	}
	return out
}

func (p Palette) Visible() bool { return p.visible }

// Open shows an empty palette and focuses the input.
func (p *Palette) Open() tea.Cmd {
	p.visible = true
	p.input.SetValue("")
	return p.input.Focus()
}

func (p *Palette) SetWidth(w int) { p.width = w }

func (p Palette) Update(msg tea.Msg) (Palette, tea.Cmd) {
	if !p.visible {
		return p, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc":
			p.close()
			return p, func() tea.Msg { return PaletteCancelMsg{} }
		case "enter":
			val := strings.TrimSpace(p.input.Value())
			p.close()
			return p, func() tea.Msg { return PaletteSubmitMsg{Input: val} }
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p *Palette) close() {
	p.visible = false
	p.input.Blur()
}

// Matching lists the usages for the verb being typed.
func Matching(input string) []string {
	verb, _, _ := strings.Cut(strings.ToLower(strings.TrimLeft(input, " ")), " ")
	out := []string{}
	for _, c := range Commands {
		if strings.HasPrefix(c.Verb, verb) {
			out = append(out, c.Usage)
		}
		if len(out) == maxHints {
			break
		}
	}
	return out
}

func (p Palette) View() string {
	if !p.visible {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("focusreel") + "\n")
	sb.WriteString(": " + p.input.View() + "\n")
	if hints := Matching(p.input.Value()); len(hints) > 0 {
		sb.WriteString("\n")
		for _, h := range hints {
			sb.WriteString(usageStyle.Render("  "+h) + "\n")
		}
		sb.WriteString(usageStyle.Render("  tab completes") + "\n")
	}
	w := p.width
	if w < 20 {
		w = 64
	}
	return paletteStyle.Width(w - 2).Render(sb.String())
}
