package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks yes/no questions on a line-oriented reader. The default
// answer is no.
type Confirmer struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewConfirmer creates a Confirmer.
func NewConfirmer(in io.Reader, out io.Writer) *Confirmer {
	return &Confirmer{scanner: bufio.NewScanner(in), out: out}
}

// Confirm prints question and reads one answer. End of input counts as no.
func (c *Confirmer) Confirm(question string) (bool, error) {
	fmt.Fprintf(c.out, "%s %s ", warnStyle.Render("?"), question)
	fmt.Fprint(c.out, hintStyle.Render("(y/N)")+" ")
	if !c.scanner.Scan() {
		fmt.Fprintln(c.out)
		return false, c.scanner.Err()
	}
	answer := strings.TrimSpace(strings.ToLower(c.scanner.Text()))
	return answer == "y" || answer == "yes", nil
}
