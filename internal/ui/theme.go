package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorCyan   = lipgloss.Color("#06B6D4")
	colorGreen  = lipgloss.Color("#22C55E")
	colorRed    = lipgloss.Color("#EF4444")
	colorYellow = lipgloss.Color("#EAB308")
	colorDim    = lipgloss.Color("#6B7280")
	colorWhite  = lipgloss.Color("#F9FAFB")

	titleStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Bold(true)

	labelStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	detailStyle = lipgloss.NewStyle().Foreground(colorDim)

	doneStyle    = lipgloss.NewStyle().Foreground(colorGreen)
	runningStyle = lipgloss.NewStyle().Foreground(colorCyan)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(colorYellow)
	pendingStyle = lipgloss.NewStyle().Foreground(colorDim)

	selectedStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	optionStyle   = lipgloss.NewStyle().Foreground(colorDim)
	hintStyle     = lipgloss.NewStyle().Foreground(colorDim)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorCyan).
			Padding(0, 1)

	warnPanelStyle = panelStyle.
			BorderForeground(colorYellow)

	errorPanelStyle = panelStyle.
			BorderForeground(colorRed)
)

// Panel boxes body under a title.
func Panel(title, body string) string {
	return panelStyle.Render(titleStyle.Render(title) + "\n\n" + body)
}

// WarnPanel is Panel with a warning border.
func WarnPanel(title, body string) string {
	return warnPanelStyle.Render(warnStyle.Bold(true).Render(title) + "\n\n" + body)
}

// ErrorPanel is Panel with an error border.
func ErrorPanel(title, body string) string {
	return errorPanelStyle.Render(errorStyle.Render(title) + "\n\n" + body)
}

// Warn formats a one-line warning.
func Warn(msg string) string {
	return warnStyle.Render("[WARN]") + " " + msg
}

// Fail formats a one-line failure.
func Fail(msg string) string {
	return errorStyle.Render("[FAIL]") + " " + msg
}

// OK formats a one-line success.
func OK(msg string) string {
	return doneStyle.Render("[ OK ]") + " " + msg
}

// Hint formats a dimmed remedy line.
func Hint(msg string) string {
	return hintStyle.Render("  " + msg)
}

// Title formats a heading.
func Title(msg string) string {
	return titleStyle.Render(msg)
}
