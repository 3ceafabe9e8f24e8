package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/config"
	"github.com/specforge-labs/forge/internal/release"
	"github.com/specforge-labs/forge/internal/ui"
)

const templateLookupTimeout = 10 * time.Second

var (
	versionShort bool
	versionJSON  bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print version number only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "Print version info as JSON")
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the CLI version, build details, and the latest template release.

--short prints only the CLI version and makes no network request.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if versionShort {
			fmt.Fprintln(out, buildVersion)
			return nil
		}

		info := collectVersion(cmd.Context())
		if versionJSON {
			data, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return fmt.Errorf("marshaling version info: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		printVersion(out, info)
		return nil
	},
}

type versionInfo struct {
	Version         string `json:"version"`
	Commit          string `json:"commit"`
	Date            string `json:"date"`
	TemplateVersion string `json:"template_version"`
	TemplateDate    string `json:"template_released"`
	GoVersion       string `json:"go_version"`
	OS              string `json:"os"`
	Arch            string `json:"arch"`
	UpdateAvailable bool   `json:"update_available"`
	ReleaseURL      string `json:"release_url,omitempty"`
}

func collectVersion(ctx context.Context) versionInfo {
	info := versionInfo{
		Version:         buildVersion,
		Commit:          buildCommit,
		Date:            buildDate,
		TemplateVersion: "unknown",
		TemplateDate:    "unknown",
		GoVersion:       runtime.Version(),
		OS:              runtime.GOOS,
		Arch:            runtime.GOARCH,
	}

	ctx, cancel := context.WithTimeout(ctx, templateLookupTimeout)
	defer cancel()

	client := release.New(
		release.WithAPIBase(releaseAPIBase),
		release.WithToken(config.GitHubToken("")),
	)
	rel, err := client.Latest(ctx, branding.GitHubRepo())
	if err != nil {
		return info
	}
	info.TemplateVersion = release.DisplayVersion(rel.TagName)
	if !rel.Published.IsZero() {
		info.TemplateDate = rel.Published.Format(time.DateOnly)
	}
	info.ReleaseURL = rel.HTMLURL
	// Dev builds carry no semver; no notice for them.
	if newer, err := release.IsNewer(info.Version, rel.TagName); err == nil {
		info.UpdateAvailable = newer
	}
	return info
}

func printVersion(w io.Writer, info versionInfo) {
	body := fmt.Sprintf(
		"CLI Version       %s\nCommit            %s\nBuilt             %s\nTemplate Version  %s\nReleased          %s\n\nGo                %s\nPlatform          %s\nArchitecture      %s",
		info.Version, info.Commit, info.Date, info.TemplateVersion, info.TemplateDate,
		info.GoVersion, info.OS, info.Arch)
	fmt.Fprintln(w, ui.Panel(branding.DisplayName()+" CLI Information", body))
	if info.UpdateAvailable {
		fmt.Fprintln(w)
		fmt.Fprintln(w, ui.Warn(fmt.Sprintf("Update available: %s -> %s", info.Version, info.TemplateVersion)))
		if info.ReleaseURL != "" {
			fmt.Fprintln(w, ui.Hint(info.ReleaseURL))
		}
	}
}
