package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/specforge-labs/forge/internal/agent"
)

var testChoices = []agent.Choice{
	{Key: "copilot", Label: "GitHub Copilot"},
	{Key: "claude", Label: "Claude Code"},
	{Key: "gemini", Label: "Gemini CLI"},
}

func press(m pickerModel, msgs ...tea.KeyMsg) (pickerModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(pickerModel)
	}
	return m, cmd
}

func TestPickerStartsOnDefault(t *testing.T) {
	m := newPickerModel("Choose", testChoices, "claude")
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	m = newPickerModel("Choose", testChoices, "missing")
	if m.cursor != 0 {
		t.Errorf("cursor = %d, want 0 for unknown default", m.cursor)
	}
}

func TestPickerNavigateAndSelect(t *testing.T) {
	m := newPickerModel("Choose", testChoices, "copilot")

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", m.cursor)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want wrap to 0", m.cursor)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.cursor != 2 {
		t.Fatalf("cursor = %d, want wrap to 2", m.cursor)
	}

	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.chosen != "gemini" {
		t.Errorf("chosen = %q, want gemini", m.chosen)
	}
	if cmd == nil {
		t.Error("Enter should quit the program")
	}
}

func TestPickerVimKeys(t *testing.T) {
	m := newPickerModel("Choose", testChoices, "")
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.cursor != 1 {
		t.Errorf("cursor = %d after j, want 1", m.cursor)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	if m.cursor != 0 {
		t.Errorf("cursor = %d after k, want 0", m.cursor)
	}
}

func TestPickerCancel(t *testing.T) {
	m := newPickerModel("Choose", testChoices, "")
	m, cmd := press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.cancelled || m.chosen != "" {
		t.Errorf("model = %+v, want cancelled", m)
	}
	if cmd == nil {
		t.Error("Esc should quit the program")
	}
	if m.View() != "" {
		t.Error("View should be empty once finished")
	}
}

func TestPickerView(t *testing.T) {
	m := newPickerModel("Choose your AI assistant:", testChoices, "claude")
	view := m.View()
	if !strings.Contains(view, "Choose your AI assistant:") {
		t.Errorf("view missing title:\n%s", view)
	}
	if !strings.Contains(view, "> claude") {
		t.Errorf("view missing cursor on claude:\n%s", view)
	}
	if strings.Contains(view, "> copilot") {
		t.Errorf("cursor on wrong row:\n%s", view)
	}
}
