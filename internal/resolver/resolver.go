package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/logger"
	"github.com/specforge-labs/forge/internal/platform"
	"github.com/specforge-labs/forge/internal/release"
)

// DefaultFetchTimeout bounds a whole remote fetch: release lookup,
// download, and checksum.
const DefaultFetchTimeout = 60 * time.Second

// Request describes the package to resolve.
type Request struct {
	Source Source
	Agent  agent.Profile
	Script agent.ScriptVariant

	// Progress receives download progress. Nil discards it.
	Progress io.Writer
}

// Package is a staged template tree. The caller owns it and must Close it.
type Package struct {
	Agent   agent.Profile
	Script  agent.ScriptVariant
	Source  Source
	Release *release.Release // nil for local sources

	staging string
	dir     string
	files   []string

	closeOnce sync.Once
	closeErr  error
}

// Dir returns the root of the staged tree.
func (p *Package) Dir() string { return p.dir }

// Files returns the staged files as sorted, slash-separated relative paths.
func (p *Package) Files() []string {
	out := make([]string, len(p.files))
	copy(out, p.files)
	return out
}

// Close removes the staging directory. It is safe to call more than once.
func (p *Package) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = os.RemoveAll(p.staging)
	})
	return p.closeErr
}

// Resolver resolves sources into staged packages.
type Resolver struct {
	client  *release.Client
	timeout time.Duration
	tempDir string
	log     *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClient sets the release client used for remote sources.
func WithClient(c *release.Client) Option {
	return func(r *Resolver) {
		r.client = c
	}
}

// WithFetchTimeout bounds remote fetches. Non-positive values are ignored.
func WithFetchTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithTempDir sets the parent of staging directories. Empty means the
// system default.
func WithTempDir(dir string) Option {
	return func(r *Resolver) {
		r.tempDir = dir
	}
}

// New creates a Resolver with the given options.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		timeout: DefaultFetchTimeout,
		log:     logger.ForComponent("resolver"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.client == nil {
		r.client = release.New()
	}
	return r
}

// Resolve stages the package described by req. On error nothing is left
// behind on disk.
func (r *Resolver) Resolve(ctx context.Context, req Request) (pkg *Package, err error) {
	staging, err := os.MkdirTemp(r.tempDir, branding.CLIName()+"-template-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(staging)
		}
	}()

	pkg = &Package{
		Agent:   req.Agent,
		Script:  req.Script,
		Source:  req.Source,
		staging: staging,
		dir:     filepath.Join(staging, "tree"),
	}

	switch req.Source.Kind {
	case KindLocal:
		err = r.resolveLocal(req, pkg.dir)
	default:
		pkg.Release, err = r.resolveRemote(ctx, req, staging, pkg.dir)
	}
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	if pkg.files, err = platform.Walk(pkg.dir, nil); err != nil {
		return nil, err
	}
	if len(pkg.files) == 0 {
		return nil, fmt.Errorf("%w: %s produced no files", ErrArchive, req.Source)
	}

	r.log.Debug("package staged", "source", req.Source.String(), "agent", req.Agent.Key,
		"script", req.Script.Key, "files", len(pkg.files), "dir", pkg.dir)
	return pkg, nil
}
