package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/config"
	"github.com/specforge-labs/forge/internal/probe"
	"github.com/specforge-labs/forge/internal/ui"
)

// newProber is swapped in tests.
var newProber = func() *probe.Prober {
	return probe.New(probe.WithTimeout(config.ProbeTimeout()))
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the tools used by supported agents are installed",
	Long: `Check for git, each supported agent's CLI, and VS Code.

Missing tools are reported, never fatal: check always exits 0.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := agent.Load()
		if err != nil {
			return err
		}
		runCheck(cmd.Context(), cmd.OutOrStdout(), reg, newProber())
		return nil
	},
}

// checkReport is the outcome of a check run.
type checkReport struct {
	Rows     []ui.ToolRow
	HasGit   bool
	HasAgent bool
}

func collectCheck(ctx context.Context, reg *agent.Registry, p *probe.Prober) checkReport {
	var rep checkReport

	git := p.Probe(ctx, "git")
	rep.HasGit = git.Present
	rep.Rows = append(rep.Rows, probeRow(git, "Git version control", "https://git-scm.com/downloads"))

	for _, a := range reg.Agents() {
		if !a.RequiresCLI {
			rep.Rows = append(rep.Rows, ui.ToolRow{Status: ui.StatusSkip, Name: a.Name, Detail: "IDE-based, no CLI check"})
			continue
		}
		res := p.Probe(ctx, a.Executable())
		if res.Present {
			rep.HasAgent = true
		}
		rep.Rows = append(rep.Rows, probeRow(res, a.Name, a.InstallURL))
	}

	editors := p.ProbeAll(ctx, []string{"code", "code-insiders"})
	labels := []string{"Visual Studio Code", "Visual Studio Code Insiders"}
	for i, res := range editors {
		rep.Rows = append(rep.Rows, probeRow(res, labels[i], ""))
	}
	return rep
}

func probeRow(res probe.Result, label, installURL string) ui.ToolRow {
	if res.Present {
		detail := res.Path
		if res.Version != "" {
			detail = res.Version + "  " + res.Path
		}
		return ui.ToolRow{Status: ui.StatusOK, Name: label, Detail: detail}
	}
	detail := res.Name + " not found"
	if installURL != "" {
		detail += " (install: " + installURL + ")"
	}
	return ui.ToolRow{Status: ui.StatusMiss, Name: label, Detail: detail}
}

func runCheck(ctx context.Context, out io.Writer, reg *agent.Registry, p *probe.Prober) checkReport {
	if isInteractive() {
		printBanner(out)
	}
	fmt.Fprintln(out, ui.Title("Checking for installed tools..."))
	fmt.Fprintln(out)

	rep := collectCheck(ctx, reg, p)
	fmt.Fprintln(out, ui.ToolTable(rep.Rows))
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.OK(branding.DisplayName()+" CLI is ready to use!"))

	if !rep.HasGit {
		fmt.Fprintln(out, ui.Hint("Tip: Install git for repository management"))
	}
	if !rep.HasAgent {
		fmt.Fprintln(out, ui.Hint("Tip: Install an AI assistant for the best experience"))
	}
	return rep
}
