package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const minWrap = 40

// RenderMarkdown renders md for a terminal of the given width. When styled
// is false, or rendering fails, md is returned unchanged.
func RenderMarkdown(md string, width int, styled bool) string {
	if !styled {
		return md
	}
	if width < minWrap {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n") + "\n"
}
