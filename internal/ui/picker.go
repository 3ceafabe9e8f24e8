package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/specforge-labs/forge/internal/agent"
)

type pickerKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Cancel key.Binding
}

var pickerKeys = pickerKeyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c", "q"), key.WithHelp("esc", "cancel")),
}

// pickerModel is the bubbletea model behind Picker.
type pickerModel struct {
	title     string
	choices   []agent.Choice
	cursor    int
	chosen    string
	cancelled bool
}

func newPickerModel(title string, choices []agent.Choice, defaultKey string) pickerModel {
	m := pickerModel{title: title, choices: choices}
	for i, c := range choices {
		if c.Key == defaultKey {
			m.cursor = i
			break
		}
	}
	return m
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(km, pickerKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.choices) - 1
		}
	case key.Matches(km, pickerKeys.Down):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
	case key.Matches(km, pickerKeys.Select):
		m.chosen = m.choices[m.cursor].Key
		return m, tea.Quit
	case key.Matches(km, pickerKeys.Cancel):
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	if m.chosen != "" || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title) + "\n\n")
	for i, c := range m.choices {
		line := fmt.Sprintf("%-14s %s", c.Key, c.Label)
		if i == m.cursor {
			b.WriteString(selectedStyle.Render("  > "+line) + "\n")
		} else {
			b.WriteString(optionStyle.Render("    "+line) + "\n")
		}
	}
	b.WriteString("\n" + hintStyle.Render("  Use ↑/↓ to navigate, Enter to select, Esc to cancel"))
	return b.String()
}

// Picker is an arrow-key list backed by bubbletea. It satisfies
// agent.Chooser.
type Picker struct {
	in  io.Reader
	out io.Writer
}

// NewPicker creates a Picker reading keys from in and drawing on out.
func NewPicker(in io.Reader, out io.Writer) *Picker {
	return &Picker{in: in, out: out}
}

// Choose runs the picker until the user selects or cancels.
func (p *Picker) Choose(ctx context.Context, title string, choices []agent.Choice, defaultKey string) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("%w: nothing to choose from", agent.ErrAmbiguousSelection)
	}

	prog := tea.NewProgram(newPickerModel(title, choices, defaultKey),
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if errors.Is(err, tea.ErrInterrupted) {
			return "", agent.ErrSelectionCancelled
		}
		return "", fmt.Errorf("running picker: %w", err)
	}

	m := final.(pickerModel)
	if m.cancelled || m.chosen == "" {
		return "", agent.ErrSelectionCancelled
	}
	fmt.Fprintf(p.out, "%s %s\n", titleStyle.Render(title), selectedStyle.Render(m.chosen))
	return m.chosen, nil
}
