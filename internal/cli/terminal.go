package cli

import (
	"os"

	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// isInteractive reports whether prompts can be shown. It is decided once
// per command and passed down; deeper packages never look at the terminal.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// stdoutIsTerminal gates styled Markdown output.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return 80
	}
	return w
}

var printer = message.NewPrinter(language.English)

// countOf formats "1,234 files" style counts.
func countOf(n int, noun string) string {
	if n != 1 {
		noun += "s"
	}
	return printer.Sprintf("%d %s", n, noun)
}
