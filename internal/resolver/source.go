package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/specforge-labs/forge/internal/branding"
)

// Kind distinguishes remote from local sources.
type Kind int

const (
	KindRemote Kind = iota
	KindLocal
)

const githubScheme = "github:"

var repoRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+(@[A-Za-z0-9_.+/-]+)?$`)

// Source identifies where a template package comes from.
type Source struct {
	Kind Kind
	Repo string // owner/repo, remote only
	Ref  string // release tag, empty for latest
	Path string // absolute directory, local only
}

func (s Source) String() string {
	if s.Kind == KindLocal {
		return s.Path
	}
	if s.Ref == "" {
		return s.Repo + " (latest)"
	}
	return s.Repo + "@" + s.Ref
}

// ParseSource interprets a --template value. The empty string selects the
// latest release of the default repository. An existing directory always
// wins over the owner/repo reading, so "templates/bundle" in the working
// directory is local.
func ParseSource(s string) (Source, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Source{Kind: KindRemote, Repo: branding.GitHubRepo()}, nil
	}

	if rest, ok := strings.CutPrefix(s, githubScheme); ok {
		if !repoRe.MatchString(rest) {
			return Source{}, fmt.Errorf("%w: %q is not owner/repo[@tag]", ErrInvalidSource, s)
		}
		return parseRepo(rest), nil
	}

	if info, err := os.Stat(s); err == nil && info.IsDir() {
		return localSource(s)
	}

	if repoRe.MatchString(s) && !strings.HasPrefix(s, ".") {
		return parseRepo(s), nil
	}
	return localSource(s)
}

func parseRepo(s string) Source {
	repo, ref, _ := strings.Cut(s, "@")
	return Source{Kind: KindRemote, Repo: repo, Ref: ref}
}

func localSource(s string) (Source, error) {
	abs, err := filepath.Abs(s)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %s: %w", ErrInvalidSource, s, err)
	}
	return Source{Kind: KindLocal, Path: abs}, nil
}
