package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andy/kihopunch/internal/recurring"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrCancelled = errors.New("selection cancelled")

// PickerModel selects a recurring task description interactively.
// All menu semantics come from recurring.Session; the model only renders
// the current level and feeds typed keys into it.
type PickerModel struct {
	session *recurring.Session
	input   textinput.Model
	help    help.Model
	keys    KeyMap

	status string
	result string
	err    error
}

// NewPicker creates a picker over tasks
func NewPicker(tasks []string) (*PickerModel, error) {
	s, err := recurring.NewSession(tasks)
	if err != nil {
		return nil, err
	}

	in := textinput.New()
	in.Placeholder = "A or 1"
	in.CharLimit = 8
	in.Width = 10
	in.Prompt = "> "
	in.Focus()

	return &PickerModel{
		session: s,
		input:   in,
		help:    help.New(),
		keys:    DefaultKeyMap,
	}, nil
}

// Result returns the selected description once Done reports true
func (m *PickerModel) Result() string {
	return m.result
}

// Done reports whether a description has been selected
func (m *PickerModel) Done() bool {
	return m.session.Done()
}

// Err returns ErrCancelled when the user backed out
func (m *PickerModel) Err() error {
	return m.err
}

// Init implements tea.Model
func (m *PickerModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m *PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Cancel):
			m.err = ErrCancelled
			return m, tea.Quit

		case key.Matches(msg, m.keys.Select):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *PickerModel) submit() (tea.Model, tea.Cmd) {
	step, err := m.session.Submit(m.input.Value())
	m.input.Reset()
	if err != nil {
		m.err = err
		return m, tea.Quit
	}

	switch step.Outcome {
	case recurring.OutcomeSelected:
		m.result = step.Result
		m.status = ""
		return m, tea.Quit
	case recurring.OutcomeDescended:
		m.status = ""
	default:
		m.status = "Invalid choice!"
	}
	return m, nil
}

// View implements tea.Model
func (m *PickerModel) View() string {
	if m.session.Done() {
		return fmt.Sprintf("%s %s\n", subtitleStyle.Render("Selected:"), m.result)
	}
	if m.err != nil {
		return ""
	}

	var b strings.Builder
	title := "Please choose one from the following recurring ones:"
	if g := m.session.Group(); g != "" {
		title = fmt.Sprintf("Recurring tasks in %s:", g)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n\n")

	for _, e := range m.session.Level().Entries() {
		style := taskKeyStyle
		if e.Kind == recurring.EntryGroup {
			style = groupKeyStyle
		}
		fmt.Fprintf(&b, "%s: %s\n", style.Render(fmt.Sprintf("%4s", e.Key)), e.Label())
	}

	if prompt, err := m.session.Level().Prompt(); err == nil {
		b.WriteString("\n")
		b.WriteString(subtitleStyle.Render(strings.TrimSpace(prompt)))
	}
	b.WriteString("\n")
	b.WriteString(m.input.View())
	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(m.status))
	}

	return frameStyle.Render(b.String()) + "\n" + m.help.View(m.keys) + "\n"
}

// Pick runs the picker on the given terminal streams and returns the chosen
// description
func Pick(ctx context.Context, in io.Reader, out io.Writer, tasks []string) (string, error) {
	m, err := NewPicker(tasks)
	if err != nil {
		return "", err
	}

	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("failed to run picker: %w", err)
	}

	fm := final.(*PickerModel)
	if fm.err != nil {
		return "", fm.err
	}
	if !fm.session.Done() {
		return "", ErrCancelled
	}
	return fm.result, nil
}
