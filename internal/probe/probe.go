package probe

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/specforge-labs/forge/internal/logger"
)

// DefaultTimeout bounds a single --version invocation.
const DefaultTimeout = 3 * time.Second

// Result is the availability of one tool. Version is empty when the tool is
// absent or its version could not be determined.
type Result struct {
	Name    string
	Path    string
	Present bool
	Version string
}

// Prober locates tools and reads their versions.
type Prober struct {
	timeout  time.Duration
	runner   Runner
	lookPath func(string) (string, error)
	homeDir  string
}

// Option configures a Prober.
type Option func(*Prober)

// WithTimeout sets the per-probe timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(p *Prober) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithRunner replaces the command runner (useful for testing).
func WithRunner(r Runner) Option {
	return func(p *Prober) {
		p.runner = r
	}
}

// WithLookPath replaces the PATH lookup (useful for testing).
func WithLookPath(fn func(string) (string, error)) Option {
	return func(p *Prober) {
		p.lookPath = fn
	}
}

// WithHomeDir sets the home directory used for per-user install locations.
func WithHomeDir(dir string) Option {
	return func(p *Prober) {
		p.homeDir = dir
	}
}

// New creates a Prober with the given options.
func New(opts ...Option) *Prober {
	home, _ := os.UserHomeDir()
	p := &Prober{
		timeout:  DefaultTimeout,
		runner:   ExecRunner{},
		lookPath: exec.LookPath,
		homeDir:  home,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Timeout returns the per-probe timeout.
func (p *Prober) Timeout() time.Duration {
	return p.timeout
}

// Probe reports whether name is installed and, best-effort, its version.
func (p *Prober) Probe(ctx context.Context, name string) Result {
	log := logger.ForComponent("probe")
	result := Result{Name: name}

	path, ok := p.locate(name)
	if !ok {
		log.Debug("tool not found", "tool", name)
		return result
	}
	result.Present = true
	result.Path = path

	probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	out, err := p.runner.Run(probeCtx, path, "--version")
	switch {
	case err != nil:
		if errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			log.Debug("version probe timed out", "tool", name, "timeout", p.timeout)
		} else {
			log.Debug("version probe failed", "tool", name, "error", err)
		}
		return result
	case out.ExitCode != 0:
		log.Debug("version probe exited non-zero", "tool", name, "exit_code", out.ExitCode)
		return result
	}

	text := out.Stdout
	if ExtractVersion(text) == "" {
		text = out.Stderr
	}
	result.Version = ExtractVersion(text)
	return result
}

// ProbeAll probes each name in order.
func (p *Prober) ProbeAll(ctx context.Context, names []string) []Result {
	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, p.Probe(ctx, name))
	}
	return results
}

// locate resolves name to an executable path. The claude CLI's
// migrate-installer removes it from PATH and leaves it under
// ~/.claude/local, which takes priority.
func (p *Prober) locate(name string) (string, bool) {
	if name == "claude" && p.homeDir != "" {
		local := filepath.Join(p.homeDir, ".claude", "local", "claude")
		if info, err := os.Stat(local); err == nil && info.Mode().IsRegular() {
			return local, true
		}
	}

	path, err := p.lookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
