package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/bundle"
	"github.com/specforge-labs/forge/internal/platform"
	"github.com/specforge-labs/forge/internal/scaffold"
)

// resolveLocal stages a local source. A directory with a home directory
// inside it is a prebuilt tree; only the files a project needs for the
// requested agent are staged from it. A bundle is built for the requested
// agent and script.
func (r *Resolver) resolveLocal(req Request, dest string) error {
	src := req.Source.Path
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInvalidSource, src)
	}

	if isDir(filepath.Join(src, branding.HomeDir())) {
		r.log.Debug("copying prebuilt template tree", "path", src)
		if _, err := platform.CopySelected(src, dest, prebuiltScope(req.Agent), platform.DefaultExcludes); err != nil {
			return fmt.Errorf("staging %s: %w", src, err)
		}
		return nil
	}

	if bundle.IsBundle(src) {
		r.log.Debug("building template bundle", "path", src, "agent", req.Agent.Key)
		if _, err := bundle.Build(src, dest, req.Agent, req.Script); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSource, err)
		}
		return nil
	}

	return fmt.Errorf("%w: %s has neither %s/ nor templates/commands/", ErrInvalidSource, src, branding.HomeDir())
}

// prebuiltScope lists the doublestar patterns staged from a prebuilt tree:
// the home directory, the agent's folder, its command and context files,
// and the editor settings file.
func prebuiltScope(p agent.Profile) []string {
	scope := []string{branding.HomeDir() + "/**", scaffold.SettingsFile}
	if dir := p.Dir(); dir != "" {
		scope = append(scope, dir+"/**")
	}
	if p.CommandDir != "" {
		scope = append(scope, strings.TrimSuffix(p.CommandDir, "/")+"/**")
	}
	if p.ContextPath != "" {
		scope = append(scope, p.ContextPath)
	}
	return scope
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
