package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/logger"
	"github.com/specforge-labs/forge/internal/project"
	"github.com/specforge-labs/forge/internal/resolver"
	"github.com/specforge-labs/forge/internal/scaffold"
	"github.com/specforge-labs/forge/internal/ui"
)

var (
	updateAdd         []string
	updateScript      string
	updateDryRun      bool
	updateSkipSync    bool
	updateSkipTLS     bool
	updateGitHubToken string
	updateTemplate    string
)

func init() {
	f := updateCmd.Flags()
	f.StringSliceVar(&updateAdd, "add", nil, "Add agent(s) to the project (repeatable, e.g. --add gemini --add roo)")
	f.StringVar(&updateScript, "script", "", "Helper script variant: sh or ps (detected from the project if not set)")
	f.BoolVar(&updateDryRun, "dry-run", false, "Show what would be updated without making changes")
	f.BoolVar(&updateSkipSync, "skip-sync", false, "Skip context file and working folder synchronization")
	f.BoolVar(&updateSkipTLS, "skip-tls", false, "Skip TLS certificate verification (insecure)")
	f.StringVar(&updateGitHubToken, "github-token", "", "GitHub token for API requests (defaults to GH_TOKEN or GITHUB_TOKEN)")
	f.StringVar(&updateTemplate, "template", "", "Template source: owner/repo[@tag] or a local directory")
	rootCmd.AddCommand(updateCmd)
}

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the installed agents' commands and shared templates",
	Long: `Refresh a project created with init.

The agents installed in the current directory are detected from their
command files, and --add installs more. Helper scripts, document
templates, and every agent's slash commands are rewritten from the
template source. Agent context files and the skills/ and agents/ working
folders are then synchronized across agents, newest copy first.

Files under ` + branding.HomeDir() + `/memory/ are never touched.`,
	Example: `  forge update
  forge update --add gemini --add roo
  forge update --skip-sync
  forge update --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runUpdate(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

func runUpdate(ctx context.Context, out, errOut io.Writer) error {
	log := logger.ForComponent("update")

	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving current directory: %w", err)
	}
	if !project.Initialized(dir) {
		return fmt.Errorf("%w: no %s directory in %s", project.ErrNotInitialized, branding.HomeDir(), dir)
	}
	if updateSkipTLS {
		fmt.Fprintln(errOut, ui.Warn("TLS certificate verification is disabled (--skip-tls)."))
	}

	reg, err := agent.Load()
	if err != nil {
		return err
	}

	installed := project.InstalledAgents(dir, reg)
	all := slices.Clone(installed)
	var added []agent.Profile
	for _, key := range updateAdd {
		p, err := reg.LookupAgent(strings.TrimSpace(key))
		if err != nil {
			return err
		}
		if slices.ContainsFunc(all, func(a agent.Profile) bool { return a.Key == p.Key }) {
			fmt.Fprintln(errOut, ui.Warn(fmt.Sprintf("%s is already installed; it will be updated.", p.Key)))
			continue
		}
		added = append(added, p)
		all = append(all, p)
	}
	if len(all) == 0 {
		return project.ErrNoAgents
	}

	scriptKey := strings.TrimSpace(updateScript)
	if scriptKey == "" {
		scriptKey = project.DetectScript(dir, reg)
	}
	script, err := reg.LookupScript(scriptKey)
	if err != nil {
		return err
	}

	src, err := templateSource(updateTemplate)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, ui.Panel(branding.DisplayName()+" Update", updateSummary(dir, installed, added, script, src)))
	fmt.Fprintln(out)

	if updateDryRun {
		fmt.Fprintln(out, ui.Warn("Dry run: no changes will be made."))
		fmt.Fprintln(out, ui.Panel("Planned Actions", updatePlan(dir, all)))
		return nil
	}

	plan, err := scaffold.Prepare(scaffold.Target{Here: true, Force: true, SkipGit: true}, scaffold.Options{})
	if err != nil {
		return err
	}

	tracker := newUpdateTracker(installed, added)
	res := templateResolver(updateGitHubToken, updateSkipTLS)

	shared := make(map[string]bool)
	commands := 0
	executable := 0
	for _, a := range all {
		tracker.Start("fetch", a.Key)
		pkg, err := res.Resolve(ctx, resolver.Request{Source: src, Agent: a, Script: script, Progress: errOut})
		if err != nil {
			tracker.Error("fetch", a.Key+": "+err.Error())
			fmt.Fprintln(out, tracker.Render())
			return err
		}

		tracker.Start("commands", a.Key)
		result, err := scaffold.Materialize(ctx, plan, &updatePayload{Package: pkg, files: updateFiles(dir, pkg.Files(), reg)})
		if err != nil {
			tracker.Error("commands", a.Key+": "+err.Error())
			fmt.Fprintln(out, tracker.Render())
			return err
		}
		for _, rel := range result.Written {
			if strings.HasPrefix(rel, branding.HomeDir()+"/") {
				shared[rel] = true
			} else {
				commands++
			}
		}
		executable += len(result.Executable)
		for _, w := range result.Warnings {
			fmt.Fprintln(errOut, ui.Warn(w))
		}
		log.Debug("agent updated", "agent", a.Key, "written", len(result.Written))
	}
	tracker.Complete("fetch", src.String())
	tracker.Complete("shared", countOf(len(shared), "file")+" updated, memory preserved")
	tracker.Complete("commands", countOf(len(all), "agent")+", "+countOf(commands, "file"))

	if updateSkipSync {
		tracker.Skip("context-sync", "--skip-sync")
		tracker.Skip("working-sync", "--skip-sync")
	} else {
		tracker.Start("context-sync", "")
		cs, err := project.SyncContext(dir, all)
		if err != nil {
			tracker.Error("context-sync", err.Error())
			fmt.Fprintln(out, tracker.Render())
			return err
		}
		tracker.Complete("context-sync", contextSyncDetail(cs))

		tracker.Start("working-sync", "")
		n, err := project.SyncWorking(dir, all)
		if err != nil {
			tracker.Error("working-sync", err.Error())
			fmt.Fprintln(out, tracker.Render())
			return err
		}
		tracker.Complete("working-sync", countOf(n, "file")+" synced")
	}

	if executable > 0 {
		tracker.Complete("chmod", countOf(executable, "script")+" updated")
	} else {
		tracker.Skip("chmod", "nothing to update")
	}
	tracker.Complete("final", "update complete")

	fmt.Fprintln(out, tracker.Render())
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.OK("Update complete."))
	fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Memory preserved: %s/memory/ (%s untouched)",
		branding.HomeDir(), countOf(project.MemoryFiles(dir), "file"))))
	return nil
}

// updatePayload narrows a staged package to the files update may write.
type updatePayload struct {
	*resolver.Package
	files []string
}

func (p *updatePayload) Files() []string { return p.files }

// updateFiles drops memory files and any agent context file the project
// already has. Context files are reconciled by the sync step instead.
func updateFiles(dir string, files []string, reg *agent.Registry) []string {
	memory := branding.HomeDir() + "/memory/"
	existingContext := make(map[string]bool)
	for _, a := range reg.Agents() {
		if a.ContextPath == "" {
			continue
		}
		if _, err := os.Lstat(filepath.Join(dir, filepath.FromSlash(a.ContextPath))); err == nil {
			existingContext[a.ContextPath] = true
		}
	}

	var keep []string
	for _, rel := range files {
		if strings.HasPrefix(rel, memory) || existingContext[rel] {
			continue
		}
		keep = append(keep, rel)
	}
	return keep
}

func newUpdateTracker(installed, added []agent.Profile) *ui.Tracker {
	t := ui.NewTracker("Update " + branding.DisplayName() + " Project")
	t.Add("detect", "Detect installed agents")
	t.Add("fetch", "Fetch template packages")
	t.Add("shared", "Update shared resources")
	t.Add("commands", "Regenerate agent commands")
	t.Add("context-sync", "Sync context files")
	t.Add("working-sync", "Sync skills and sub-agents")
	t.Add("chmod", "Ensure scripts are executable")
	t.Add("final", "Finalize")

	detail := printer.Sprintf("%d found", len(installed))
	if len(added) > 0 {
		detail += printer.Sprintf(", adding %d", len(added))
	}
	t.Complete("detect", detail)
	return t
}

func agentKeys(agents []agent.Profile) string {
	if len(agents) == 0 {
		return "(none)"
	}
	keys := make([]string, len(agents))
	for i, a := range agents {
		keys[i] = a.Key
	}
	return strings.Join(keys, ", ")
}

func updateSummary(dir string, installed, added []agent.Profile, script agent.ScriptVariant, src resolver.Source) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project    %s\n", filepath.Base(dir))
	fmt.Fprintf(&b, "Installed  %s\n", agentKeys(installed))
	if len(added) > 0 {
		fmt.Fprintf(&b, "Adding     %s\n", agentKeys(added))
	}
	fmt.Fprintf(&b, "Script     %s\n", script.Label)
	sync := "enabled"
	if updateSkipSync {
		sync = "skipped"
	}
	fmt.Fprintf(&b, "Sync       %s\n", sync)
	fmt.Fprintf(&b, "Template   %s", src)
	return b.String()
}

func updatePlan(dir string, all []agent.Profile) string {
	home := branding.HomeDir()
	var b strings.Builder
	fmt.Fprintf(&b, "1. Update shared resources (%[1]s/scripts/, %[1]s/templates/)\n", home)
	fmt.Fprintf(&b, "   Memory (%s/memory/) will NOT be touched\n", home)
	fmt.Fprintf(&b, "2. Regenerate commands for %s: %s\n", countOf(len(all), "agent"), agentKeys(all))
	step := 3
	if updateSkipSync {
		fmt.Fprintf(&b, "%d. Sync skipped (--skip-sync)\n", step)
		step++
	} else {
		fmt.Fprintf(&b, "%d. Sync context files (newest wins):\n", step)
		seen := make(map[string]bool)
		for _, a := range all {
			if a.ContextPath == "" || seen[a.ContextPath] {
				continue
			}
			seen[a.ContextPath] = true
			state := "will create"
			if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(a.ContextPath))); err == nil {
				state = "exists"
			}
			fmt.Fprintf(&b, "   - %s: %s (%s)\n", a.Key, a.ContextPath, state)
		}
		fmt.Fprintf(&b, "%d. Sync %s across agent folders\n", step+1, strings.Join(project.WorkingDirs(), " and "))
		step += 2
	}
	fmt.Fprintf(&b, "%d. Ensure scripts are executable", step)
	return b.String()
}

func contextSyncDetail(cs *project.ContextSync) string {
	if cs.Source == "" {
		return "no context files found"
	}
	detail := fmt.Sprintf("from %s to %s", cs.Path, countOf(cs.Synced, "file"))
	if cs.Created > 0 {
		detail += printer.Sprintf(" (%d created)", cs.Created)
	}
	return detail
}
