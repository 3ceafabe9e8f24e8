package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/specforge-labs/forge/internal/branding"
)

const banner = `
███████╗██████╗ ███████╗ ██████╗███████╗ ██████╗ ██████╗  ██████╗ ███████╗
██╔════╝██╔══██╗██╔════╝██╔════╝██╔════╝██╔═══██╗██╔══██╗██╔════╝ ██╔════╝
███████╗██████╔╝█████╗  ██║     █████╗  ██║   ██║██████╔╝██║  ███╗█████╗
╚════██║██╔═══╝ ██╔══╝  ██║     ██╔══╝  ██║   ██║██╔══██╗██║   ██║██╔══╝
███████║██║     ███████╗╚██████╗██║     ╚██████╔╝██║  ██║╚██████╔╝███████╗
╚══════╝╚═╝     ╚══════╝ ╚═════╝╚═╝      ╚═════╝ ╚═╝  ╚═╝ ╚═════╝ ╚══════╝`

var (
	bannerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")).Bold(true)
	taglineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EAB308")).Italic(true)
)

func printBanner(w io.Writer) {
	fmt.Fprintln(w, bannerStyle.Render(banner))
	fmt.Fprintln(w, taglineStyle.Render(branding.Tagline()))
	fmt.Fprintln(w)
}
