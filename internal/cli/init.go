package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/config"
	"github.com/specforge-labs/forge/internal/logger"
	"github.com/specforge-labs/forge/internal/probe"
	"github.com/specforge-labs/forge/internal/release"
	"github.com/specforge-labs/forge/internal/resolver"
	"github.com/specforge-labs/forge/internal/scaffold"
	"github.com/specforge-labs/forge/internal/ui"
	"github.com/specforge-labs/forge/internal/vcs"
)

var (
	initAI               string
	initScript           string
	initIgnoreAgentTools bool
	initNoGit            bool
	initHere             bool
	initForce            bool
	initSkipTLS          bool
	initGitHubToken      string
	initTemplate         string
)

// Seams for tests. Production wiring uses the terminal.
var (
	newChooser = func(in io.Reader, out io.Writer) agent.Chooser {
		return ui.NewPicker(in, out)
	}
	newConfirm = func(in io.Reader, out io.Writer) func(string) (bool, error) {
		return ui.NewConfirmer(in, out).Confirm
	}
	releaseAPIBase = release.DefaultAPIBase
)

func init() {
	f := initCmd.Flags()
	f.StringVar(&initAI, "ai", "", "AI agent to install commands for (e.g. claude, gemini, copilot)")
	f.StringVar(&initScript, "script", "", "Helper script variant: sh or ps")
	f.BoolVar(&initIgnoreAgentTools, "ignore-agent-tools", false, "Skip checking that the agent's CLI is installed")
	f.BoolVar(&initNoGit, "no-git", false, "Do not initialize a git repository")
	f.BoolVar(&initHere, "here", false, "Initialize in the current directory")
	f.BoolVar(&initForce, "force", false, "Merge into a non-empty directory without asking")
	f.BoolVar(&initSkipTLS, "skip-tls", false, "Skip TLS certificate verification (insecure)")
	f.StringVar(&initGitHubToken, "github-token", "", "GitHub token for API requests (defaults to GH_TOKEN or GITHUB_TOKEN)")
	f.StringVar(&initTemplate, "template", "", "Template source: owner/repo[@tag] or a local directory (a prebuilt directory stages only "+branding.HomeDir()+"/ and the selected agent's files)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [project-name]",
	Short: "Create a new project from the latest template",
	Long: `Create a spec-driven development project for an AI coding agent.

The agent's slash commands, helper scripts, and document templates are
fetched from the latest template release (or a local directory given with
--template) and written into the project directory. A git repository is
initialized unless --no-git is given or the directory is already inside one.

Use "." or --here to initialize in the current directory.`,
	Example: `  forge init my-project --ai claude
  forge init . --ai copilot --script ps
  forge init --here --force --ai gemini
  forge init my-project --ai claude --template ./spec-kit`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		err := runInit(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), name)
		if err != nil && debugMode {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.ErrorPanel("Debug Environment", debugEnvironment()))
		}
		return err
	},
}

func runInit(ctx context.Context, in io.Reader, out, errOut io.Writer, name string) error {
	log := logger.ForComponent("init")
	interactive := isInteractive()

	target, err := scaffold.NewTarget(name, initHere)
	if err != nil {
		return err
	}
	target.Force = initForce
	target.SkipGit = initNoGit

	if interactive {
		printBanner(out)
	}
	if initSkipTLS {
		fmt.Fprintln(errOut, ui.Warn("TLS certificate verification is disabled (--skip-tls)."))
	}

	reg, err := agent.Load()
	if err != nil {
		return err
	}

	req := agent.Request{
		Agent:        strings.TrimSpace(initAI),
		Script:       strings.TrimSpace(initScript),
		Interactive:  interactive,
		CheckTools:   !initIgnoreAgentTools,
		DefaultAgent: config.DefaultAgent(),
	}
	var chooser agent.Chooser
	if interactive {
		chooser = newChooser(in, out)
	}
	sel, err := reg.Select(ctx, req, chooser, probe.New(probe.WithTimeout(config.ProbeTimeout())))
	if errors.Is(err, agent.ErrSelectionCancelled) {
		fmt.Fprintln(out, ui.Warn("Operation cancelled"))
		return nil
	}
	if err != nil {
		return err
	}
	for _, w := range sel.Warnings {
		fmt.Fprintln(errOut, ui.Warn(w))
	}

	plan, err := scaffold.Prepare(target, scaffold.Options{
		Interactive: interactive,
		Confirm:     newConfirm(in, out),
	})
	if errors.Is(err, scaffold.ErrCancelled) {
		fmt.Fprintln(out, ui.Warn("Operation cancelled"))
		return nil
	}
	if err != nil {
		return err
	}
	if plan.Merge() {
		fmt.Fprintln(errOut, ui.Warn(fmt.Sprintf("%s is not empty (%s); template files will be merged with existing content.",
			plan.Dir, countOf(plan.Existing, "item"))))
	}

	src, err := templateSource(initTemplate)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.Panel(branding.DisplayName()+" Project Setup", setupSummary(plan, sel, src)))
	fmt.Fprintln(out)

	tracker := newInitTracker(sel)

	res := templateResolver(initGitHubToken, initSkipTLS)

	tracker.Start("fetch", src.String())
	pkg, err := res.Resolve(ctx, resolver.Request{
		Source:   src,
		Agent:    sel.Agent,
		Script:   sel.Script,
		Progress: errOut,
	})
	if err != nil {
		tracker.Error("fetch", err.Error())
		fmt.Fprintln(out, tracker.Render())
		return err
	}
	fetchDetail := countOf(len(pkg.Files()), "file")
	if pkg.Release != nil {
		fetchDetail = release.DisplayVersion(pkg.Release.TagName) + ", " + fetchDetail
	}
	tracker.Complete("fetch", fetchDetail)

	tracker.Start("materialize", plan.State.String())
	result, err := scaffold.Materialize(ctx, plan, pkg)
	if err != nil {
		tracker.Error("materialize", err.Error())
		fmt.Fprintln(out, tracker.Render())
		return err
	}
	tracker.Complete("materialize", materializeDetail(result))

	if len(result.Executable) > 0 {
		tracker.Complete("chmod", countOf(len(result.Executable), "script")+" updated")
	} else {
		tracker.Skip("chmod", "nothing to update")
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(errOut, ui.Warn(w))
	}
	tracker.Complete("cleanup", "staging removed")

	tracker.Start("git", "")
	vres := vcs.Initialize(plan.Dir, target.SkipGit)
	switch vres.Status {
	case vcs.StatusInitialized:
		tracker.Complete("git", "initialized on "+vres.Branch)
	case vcs.StatusExisting:
		tracker.Skip("git", "existing repository detected")
	case vcs.StatusSkipped:
		tracker.Skip("git", "--no-git")
	case vcs.StatusFailed:
		tracker.Error("git", "init failed")
	}
	tracker.Complete("final", "project ready")

	fmt.Fprintln(out, tracker.Render())
	fmt.Fprintln(out)
	if vres.Status == vcs.StatusFailed {
		log.Debug("git stage failed", "error", vres.Err)
		fmt.Fprintln(out, ui.WarnPanel("Git Initialization Failed", gitFailureBody(plan, vres.Err)))
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, ui.OK("Project ready."))
	fmt.Fprintln(out)
	if sel.Agent.Folder != "" {
		fmt.Fprintln(out, ui.WarnPanel("Agent Folder Security", securityNotice(sel.Agent)))
		fmt.Fprintln(out)
	}

	styled := stdoutIsTerminal()
	fmt.Fprint(out, ui.RenderMarkdown(nextSteps(plan, sel, runtime.GOOS), terminalWidth(), styled))
	return nil
}

// templateSource parses the --template flag, falling back to the
// configured default source.
func templateSource(flag string) (resolver.Source, error) {
	if flag == "" {
		flag = config.TemplateSource()
	}
	return resolver.ParseSource(flag)
}

func templateResolver(token string, skipTLS bool) *resolver.Resolver {
	client := release.New(
		release.WithAPIBase(releaseAPIBase),
		release.WithToken(config.GitHubToken(token)),
		release.WithInsecureSkipVerify(skipTLS),
	)
	return resolver.New(
		resolver.WithClient(client),
		resolver.WithFetchTimeout(config.FetchTimeout()),
	)
}

func newInitTracker(sel *agent.Selection) *ui.Tracker {
	t := ui.NewTracker("Initialize " + branding.DisplayName() + " Project")
	t.Add("precheck", "Check required tools")
	t.Add("ai-select", "Select AI agent")
	t.Add("script-select", "Select script type")
	t.Add("fetch", "Fetch template package")
	t.Add("materialize", "Write project files")
	t.Add("chmod", "Ensure scripts are executable")
	t.Add("cleanup", "Clean up")
	t.Add("git", "Initialize git repository")
	t.Add("final", "Finalize")

	switch {
	case sel.Tool == nil:
		t.Skip("precheck", "tool checks skipped")
	case sel.Tool.Present:
		detail := sel.Tool.Name
		if sel.Tool.Version != "" {
			detail += " " + sel.Tool.Version
		}
		t.Complete("precheck", detail)
	default:
		t.Complete("precheck", sel.Tool.Name+" not found")
	}
	t.Complete("ai-select", sel.Agent.Key)
	t.Complete("script-select", sel.Script.Key)
	return t
}

func setupSummary(plan *scaffold.Plan, sel *agent.Selection, src resolver.Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project   %s\n", plan.Name())
	fmt.Fprintf(&b, "Path      %s\n", plan.Dir)
	fmt.Fprintf(&b, "Agent     %s (%s)\n", sel.Agent.Name, sel.Agent.Key)
	fmt.Fprintf(&b, "Script    %s\n", sel.Script.Label)
	fmt.Fprintf(&b, "Template  %s", src)
	return b.String()
}

func materializeDetail(res *scaffold.Result) string {
	parts := []string{countOf(len(res.Written), "file") + " written"}
	if n := len(res.Overwritten); n > 0 {
		parts = append(parts, printer.Sprintf("%d overwritten", n))
	}
	if n := len(res.Merged); n > 0 {
		parts = append(parts, printer.Sprintf("%d merged", n))
	}
	return strings.Join(parts, ", ")
}

func gitFailureBody(plan *scaffold.Plan, err error) string {
	cdTarget := plan.Dir
	if plan.Target.Here {
		cdTarget = "."
	}
	var b strings.Builder
	if err != nil {
		fmt.Fprintf(&b, "%v\n\n", err)
	}
	b.WriteString("The project files were written. Initialize the repository manually:\n\n")
	fmt.Fprintf(&b, "  cd %s\n", cdTarget)
	b.WriteString("  git init\n")
	b.WriteString("  git add .\n")
	b.WriteString(`  git commit -m "Initial commit"`)
	return b.String()
}

func securityNotice(p agent.Profile) string {
	return fmt.Sprintf("Some agents may store credentials, auth tokens, or other identifying and private "+
		"artifacts in the agent folder within your project.\n"+
		"Consider adding %s (or parts of it) to .gitignore to prevent accidental credential leakage.", p.Folder)
}

func nextSteps(plan *scaffold.Plan, sel *agent.Selection, goos string) string {
	prefix := "/" + branding.CommandPrefix() + "."
	var b strings.Builder
	b.WriteString("## Next Steps\n\n")

	step := 1
	if plan.Target.Here {
		fmt.Fprintf(&b, "%d. You're already in the project directory!\n", step)
	} else {
		fmt.Fprintf(&b, "%d. Go to the project folder: `cd %s`\n", step, plan.Target.Path)
	}
	step++

	if sel.Agent.Key == "codex" {
		home := filepath.Join(plan.Dir, strings.TrimSuffix(sel.Agent.Folder, "/"))
		cmd := fmt.Sprintf("export CODEX_HOME=%q", home)
		if goos == "windows" {
			cmd = fmt.Sprintf("setx CODEX_HOME %q", home)
		}
		fmt.Fprintf(&b, "%d. Set `CODEX_HOME` before running Codex: `%s`\n", step, cmd)
		step++
	}

	if sel.Agent.ContextPath != "" {
		fmt.Fprintf(&b, "%d. Record project context for %s in `%s`\n", step, sel.Agent.Name, sel.Agent.ContextPath)
		step++
	}

	fmt.Fprintf(&b, "%d. Start using slash commands with your AI agent:\n", step)
	for _, c := range []struct{ name, desc string }{
		{"constitution", "Establish project principles"},
		{"specify", "Create the baseline specification"},
		{"plan", "Create the implementation plan"},
		{"tasks", "Generate actionable tasks"},
		{"implement", "Execute implementation"},
	} {
		fmt.Fprintf(&b, "   - `%s%s` - %s\n", prefix, c.name, c.desc)
	}

	b.WriteString("\n## Enhancement Commands\n\n")
	b.WriteString("Optional commands that you can use for your specs (improve quality & confidence):\n\n")
	for _, c := range []struct{ name, desc string }{
		{"clarify", "Ask structured questions to de-risk ambiguous areas before planning (run before `" + prefix + "plan` if used)"},
		{"analyze", "Cross-artifact consistency & alignment report (after `" + prefix + "tasks`, before `" + prefix + "implement`)"},
		{"checklist", "Generate quality checklists to validate requirements completeness, clarity, and consistency (after `" + prefix + "plan`)"},
	} {
		fmt.Fprintf(&b, "- `%s%s` (optional) - %s\n", prefix, c.name, c.desc)
	}
	return b.String()
}

func debugEnvironment() string {
	wd, _ := os.Getwd()
	var b strings.Builder
	fmt.Fprintf(&b, "Version       %s\n", buildVersion)
	fmt.Fprintf(&b, "Go            %s\n", runtime.Version())
	fmt.Fprintf(&b, "Platform      %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(&b, "CWD           %s\n", wd)
	fmt.Fprintf(&b, "Config        %s\n", config.FilePath())
	fmt.Fprintf(&b, "Token         %t", config.GitHubToken(initGitHubToken) != "")
	return b.String()
}
