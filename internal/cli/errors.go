package cli

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/project"
	"github.com/specforge-labs/forge/internal/release"
	"github.com/specforge-labs/forge/internal/resolver"
	"github.com/specforge-labs/forge/internal/scaffold"
	"github.com/specforge-labs/forge/internal/ui"
)

// remedy returns a one-line suggestion for a failed command, or "".
func remedy(err error) string {
	var we *scaffold.WriteError
	var se *release.StatusError

	switch {
	case errors.Is(err, agent.ErrUnknownAgent):
		return "Choose a different agent with --ai."
	case errors.Is(err, agent.ErrUnknownScript):
		return "Pass --script sh or --script ps."
	case errors.Is(err, agent.ErrAmbiguousSelection):
		return "Pass --ai <agent> (and optionally --script) when not running in a terminal."
	case errors.Is(err, scaffold.ErrInvalidTarget):
		return fmt.Sprintf("Usage: %[1]s init <project-name>, %[1]s init ., or %[1]s init --here.", branding.CLIName())
	case errors.Is(err, scaffold.ErrDestinationNotEmpty):
		return "Pass --force to merge into the existing directory, or choose a new project name."
	case errors.Is(err, project.ErrNotInitialized):
		return fmt.Sprintf("Run %s init --here --ai <agent> first, or %s migrate for a project using %s/.", branding.CLIName(), branding.CLIName(), branding.LegacyHomeDir())
	case errors.Is(err, project.ErrNoAgents):
		return "Pass --add <agent> to install one."
	case errors.Is(err, scaffold.ErrOutsideDestination):
		return "Replace the symbolic link with a real directory, or scaffold into a different location."
	case errors.As(err, &we):
		return fmt.Sprintf("%s were written before the failure and left in place; fix the cause and re-run with --force.",
			countOf(len(we.Completed), "file"))
	case errors.Is(err, resolver.ErrInvalidSource):
		return "--template must be owner/repo[@tag] or a directory containing " + branding.HomeDir() + "/ or templates/commands/."
	case errors.Is(err, resolver.ErrPackageNotFound):
		return "Check the release tag, or pick another --ai/--script combination."
	case errors.Is(err, resolver.ErrArchive):
		return "Retry the download, or point --template at a local copy of the templates."
	case errors.As(err, &se) && se.RateLimited():
		return "Set GH_TOKEN or GITHUB_TOKEN, or pass --github-token, to raise the API rate limit."
	case isCertificateError(err):
		return "Pass --skip-tls if a proxy intercepts TLS on this network (insecure)."
	case errors.Is(err, resolver.ErrNetwork):
		return "Check your network connection, or use --template with a local directory to work offline."
	}
	return ""
}

func isCertificateError(err error) bool {
	var unknownAuthority x509.UnknownAuthorityError
	var verification *tls.CertificateVerificationError
	var hostname x509.HostnameError
	return errors.As(err, &unknownAuthority) || errors.As(err, &verification) || errors.As(err, &hostname)
}

// printError writes the cause line, any server detail, and the remedy.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, ui.Fail(err.Error()))

	var se *release.StatusError
	if errors.As(err, &se) {
		// Detail repeats the status line already printed above.
		if detail := strings.TrimSpace(strings.TrimPrefix(se.Detail(), se.Error())); detail != "" {
			for _, line := range strings.Split(detail, "\n") {
				fmt.Fprintln(w, ui.Hint(line))
			}
		}
	}
	if hint := remedy(err); hint != "" {
		fmt.Fprintln(w, ui.Hint(hint))
	}
}
