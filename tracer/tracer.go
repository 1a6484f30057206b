// Package tracer implements an interactive, step-through viewer for a
// translated Object tree. It reuses the Charm stack (Bubble Tea, Bubbles,
// Lipgloss) the teacher's repl package used for a language REPL, here
// driving a scrolling viewport and cursor over a flattened list of
// translation Steps instead of evaluating input line by line.
package tracer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dr8co/pybc2ssa/translator"
)

// Options controls tracer presentation.
type Options struct {
	NoColor bool
}

// Kind discriminates what a Step is showing.
type Kind int

const (
	// KindBlockStart marks the first step of a new Node (basic block).
	KindBlockStart Kind = iota
	// KindStmt is one emitted Statement.
	KindStmt
	// KindTerminator is a Node's closing Terminator.
	KindTerminator
)

// Step is one flattened unit of a translated Object tree, in the order
// mkNodes/translateObject produced it.
type Step struct {
	Kind   Kind
	Object string // dotted module/qualname of the enclosing Object
	Label  string // enclosing Node's label
	Loc    string
	Text   string
}

// Flatten walks obj and its nested Objects, producing one Step per block
// header, statement, and terminator, in emission order.
func Flatten(obj *translator.Object) []Step {
	var out []Step
	flattenObject(obj, &out)
	return out
}

func flattenObject(obj *translator.Object, out *[]Step) {
	name := obj.Name.String()
	for _, node := range obj.Toplevel {
		*out = append(*out, Step{Kind: KindBlockStart, Object: name, Label: node.Label, Loc: node.LabelLoc.String(), Text: "block " + node.Label})
		for _, st := range node.Stmts {
			*out = append(*out, Step{Kind: KindStmt, Object: name, Label: node.Label, Loc: st.Loc.String(), Text: st.Stmt.String()})
		}
		if node.Last != nil {
			*out = append(*out, Step{Kind: KindTerminator, Object: name, Label: node.Label, Loc: node.LastLoc.String(), Text: node.Last.String()})
		}
	}
	for _, nested := range obj.Objects {
		flattenObject(nested.Object, out)
	}
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	blockStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	stmtStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8F8F2"))

	termStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#04B575")).
			Bold(true)

	locStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00")).
			Bold(true)
)

// keyMap binds the tracer's navigation keys, in the style of bubbles/key's
// self-documenting bindings.
type keyMap struct {
	Next key.Binding
	Prev key.Binding
	Home key.Binding
	End  key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(key.WithKeys("n", "enter", " ", "down", "j"), key.WithHelp("n/space", "next")),
	Prev: key.NewBinding(key.WithKeys("p", "backspace", "up", "k"), key.WithHelp("p", "previous")),
	Home: key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "first")),
	End:  key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "last")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

func (k keyMap) help() string {
	return fmt.Sprintf("%s next  %s previous  %s/%s first/last  %s quit",
		k.Next.Help().Key, k.Prev.Help().Key, k.Home.Help().Key, k.End.Help().Key, k.Quit.Help().Key)
}

type model struct {
	steps    []Step
	cursor   int
	options  Options
	viewport viewport.Model
	ready    bool
}

func (m model) applyStyle(style lipgloss.Style, text string) string {
	if m.options.NoColor {
		return text
	}
	return style.Render(text)
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 2
		footerHeight := 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.renderSteps())
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			if m.cursor < len(m.steps)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Prev):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Home):
			m.cursor = 0
		case key.Matches(msg, keys.End):
			m.cursor = len(m.steps) - 1
		}
		if m.ready {
			m.viewport.SetContent(m.renderSteps())
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) renderSteps() string {
	var b strings.Builder
	for i, step := range m.steps {
		prefix := "  "
		if i == m.cursor {
			prefix = m.applyStyle(cursorStyle, "> ")
		}
		style := stmtStyle
		switch step.Kind {
		case KindBlockStart:
			style = blockStyle
		case KindTerminator:
			style = termStyle
		}
		loc := m.applyStyle(locStyle, "["+step.Loc+"] ")
		obj := m.applyStyle(locStyle, step.Object+"/"+step.Label+": ")
		b.WriteString(prefix + loc + obj + m.applyStyle(style, step.Text) + "\n")
	}
	return b.String()
}

func (m model) View() string {
	if len(m.steps) == 0 {
		return "nothing to trace\n"
	}
	if !m.ready {
		return "initializing...\n"
	}
	header := m.applyStyle(titleStyle, fmt.Sprintf(" step %d/%d ", m.cursor+1, len(m.steps)))
	footer := m.applyStyle(locStyle, keys.help())
	return header + "\n" + m.viewport.View() + "\n" + footer + "\n"
}

// Run launches the interactive tracer over obj's flattened steps.
func Run(obj *translator.Object, options Options) error {
	steps := Flatten(obj)
	p := tea.NewProgram(model{steps: steps, options: options})
	_, err := p.Run()
	return err
}
