package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/project"
	"github.com/specforge-labs/forge/internal/scaffold"
	"github.com/specforge-labs/forge/internal/ui"
)

var migrateDryRun bool

func init() {
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Show what would change without making changes")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move a project off the legacy " + branding.LegacyCommandPrefix() + " names",
	Long: `Migrate the project in the current directory from the legacy names.

The ` + branding.LegacyHomeDir() + `/ directory becomes ` + branding.HomeDir() + `/ (merged when both exist,
keeping current memory files), legacy command files are renamed, and
references inside command files and ` + scaffold.SettingsFile + ` are rewritten.`,
	Example: `  forge migrate --dry-run
  forge migrate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMigrate(cmd.OutOrStdout())
	},
}

func runMigrate(out io.Writer) error {
	dir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving current directory: %w", err)
	}
	reg, err := agent.Load()
	if err != nil {
		return err
	}

	m, err := project.PlanMigration(dir, reg)
	if err != nil {
		return err
	}
	if !m.Needed() {
		fmt.Fprintln(out, ui.OK(fmt.Sprintf("No migration needed. This project already uses the %s naming.", branding.CommandPrefix())))
		if project.Initialized(dir) {
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Run %s update to refresh templates and sync agents.", branding.CLIName())))
		}
		return nil
	}

	if migrateDryRun {
		fmt.Fprintln(out, ui.Warn("Dry run: no changes will be made."))
		fmt.Fprintln(out, ui.Panel("Planned Changes", migrationPlan(m)))
		return nil
	}

	tracker := newMigrateTracker(m)
	res, err := m.Apply()
	if err != nil {
		tracker.Error("final", err.Error())
		fmt.Fprintln(out, tracker.Render())
		return err
	}
	completeMigrateTracker(tracker, m, res)

	fmt.Fprintln(out, tracker.Render())
	fmt.Fprintln(out)
	fmt.Fprintln(out, ui.OK("Migration complete."))
	fmt.Fprintln(out, ui.Panel("Next Steps", migrationTips()))
	return nil
}

func newMigrateTracker(m *project.Migration) *ui.Tracker {
	t := ui.NewTracker("Migrate to " + branding.DisplayName())
	if m.Home {
		t.Add("dir-rename", fmt.Sprintf("Rename %s/ to %s/", branding.LegacyHomeDir(), branding.HomeDir()))
	}
	if len(m.Commands) > 0 {
		t.Add("cmd-rename", "Rename "+countOf(len(m.Commands), "command file"))
	}
	if len(m.Commands) > 0 || len(m.Rewrites) > 0 {
		t.Add("content-replace", "Replace legacy references in command files")
	}
	if len(m.AgentDirs) > 0 {
		t.Add("agents-rename", "Rename "+countOf(len(m.AgentDirs), "agents folder"))
	}
	if m.Settings {
		t.Add("vscode", "Update "+scaffold.SettingsFile)
	}
	t.Add("final", "Finalize")
	return t
}

func completeMigrateTracker(t *ui.Tracker, m *project.Migration, res *project.MigrationResult) {
	if m.Home {
		if res.HomeMerged {
			t.Complete("dir-rename", "merged into existing "+branding.HomeDir()+"/")
		} else {
			t.Complete("dir-rename", "renamed")
		}
	}
	if len(m.Commands) > 0 {
		t.Complete("cmd-rename", countOf(res.Renamed, "file")+" renamed")
	}
	if len(m.Commands) > 0 || len(m.Rewrites) > 0 {
		t.Complete("content-replace", countOf(res.Rewritten, "file")+" updated")
	}
	if len(m.AgentDirs) > 0 {
		t.Complete("agents-rename", countOf(res.AgentDirs, "folder")+" renamed")
	}
	if m.Settings {
		if res.Settings {
			t.Complete("vscode", "references updated")
		} else {
			t.Skip("vscode", "nothing to change")
		}
	}
	t.Complete("final", "migration complete")
}

func migrationPlan(m *project.Migration) string {
	var b strings.Builder
	step := 1
	if m.Home {
		if m.MergeHome {
			fmt.Fprintf(&b, "%d. Merge %s/ into existing %s/ (memory kept)\n", step, branding.LegacyHomeDir(), branding.HomeDir())
		} else {
			fmt.Fprintf(&b, "%d. Rename %s/ -> %s/\n", step, branding.LegacyHomeDir(), branding.HomeDir())
		}
		step++
	}
	if len(m.Commands) > 0 {
		fmt.Fprintf(&b, "%d. Rename command files:\n", step)
		for i, mv := range m.Commands {
			if i == 5 {
				fmt.Fprintf(&b, "   ... and %d more\n", len(m.Commands)-5)
				break
			}
			fmt.Fprintf(&b, "   %s -> %s\n", mv.From, mv.To)
		}
		step++
	}
	if n := len(m.Commands) + len(m.Rewrites); n > 0 {
		fmt.Fprintf(&b, "%d. Replace /%s. with /%s. in %s\n", step, branding.LegacyCommandPrefix(), branding.CommandPrefix(), countOf(n, "file"))
		step++
	}
	if len(m.AgentDirs) > 0 {
		fmt.Fprintf(&b, "%d. Rename agents folders:\n", step)
		for _, mv := range m.AgentDirs {
			fmt.Fprintf(&b, "   %s -> %s\n", mv.From, mv.To)
		}
		step++
	}
	if m.Settings {
		fmt.Fprintf(&b, "%d. Update %s references\n", step, scaffold.SettingsFile)
	}
	fmt.Fprintf(&b, "\nSet %s instead of %s in your environment.", branding.EnvVar("FEATURE"), branding.LegacyEnvVar("FEATURE"))
	return b.String()
}

func migrationTips() string {
	return fmt.Sprintf("- Rename the %s environment variable to %s if you use it\n"+
		"- Run %s update to regenerate commands from the latest templates\n"+
		"- Review agent context files (CLAUDE.md, AGENTS.md) for remaining legacy references",
		branding.LegacyEnvVar("FEATURE"), branding.EnvVar("FEATURE"), branding.CLIName())
}
