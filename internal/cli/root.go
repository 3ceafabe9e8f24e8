package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/config"
	"github.com/specforge-labs/forge/internal/logger"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var debugMode bool

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` bootstraps spec-driven development projects: it installs the slash
commands, helper scripts, and document templates for your AI coding agent
into a project directory, and checks which agent tools are installed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		cfg := logger.DefaultConfig()
		if debugMode {
			cfg = logger.DebugConfig()
		}
		cfg.Output = cmd.ErrOrStderr()
		logger.Init(cfg)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Show verbose diagnostic output")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	rootCmd.Version = version

	err := rootCmd.Execute()
	if err != nil {
		printError(os.Stderr, err)
	}
	return err
}
