package vcs

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/logger"
)

const defaultBranch = "main"

// Status is the outcome of the VCS stage.
type Status string

const (
	StatusInitialized Status = "initialized"
	StatusExisting    Status = "existing"
	StatusSkipped     Status = "skipped"
	StatusFailed      Status = "failed"
)

// Result reports what the VCS stage did. Err is set only with StatusFailed
// and is a warning: the scaffold itself has already succeeded.
type Result struct {
	Status Status
	Branch string
	Commit string
	Err    error
}

// CommitMessage is the message of the initial commit.
func CommitMessage() string {
	return "Initial commit from " + branding.DisplayName() + " template"
}

// IsInsideWorkTree reports whether dir or any parent is a git work tree.
func IsInsideWorkTree(dir string) bool {
	_, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

// Initialize runs the VCS stage for dir. It never returns an error; check
// Result.Err.
func Initialize(dir string, skip bool) Result {
	log := logger.ForComponent("vcs")
	switch {
	case skip:
		return Result{Status: StatusSkipped}
	case IsInsideWorkTree(dir):
		log.Debug("already inside a git work tree", "dir", dir)
		return Result{Status: StatusExisting}
	}

	res, err := Init(dir)
	if err != nil {
		log.Warn("git initialization failed", "dir", dir, "error", err)
		return Result{Status: StatusFailed, Err: err}
	}
	return res
}

// Init creates a repository rooted at dir, stages everything, and makes
// one commit.
func Init(dir string) (Result, error) {
	global, err := config.LoadConfig(config.GlobalScope)
	if err != nil {
		global = config.NewConfig()
	}

	branch := global.Init.DefaultBranch
	if branch == "" {
		branch = defaultBranch
	}

	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.NewBranchReferenceName(branch)},
	})
	if err != nil {
		return Result{}, fmt.Errorf("initializing repository: %w", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return Result{}, fmt.Errorf("opening worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return Result{}, fmt.Errorf("staging files: %w", err)
	}

	hash, err := wt.Commit(CommitMessage(), &git.CommitOptions{Author: signature(global)})
	if err != nil {
		return Result{}, fmt.Errorf("creating initial commit: %w", err)
	}

	return Result{Status: StatusInitialized, Branch: branch, Commit: hash.String()}, nil
}

func signature(cfg *config.Config) *object.Signature {
	name, email := cfg.User.Name, cfg.User.Email
	if cfg.Author.Name != "" {
		name = cfg.Author.Name
	}
	if cfg.Author.Email != "" {
		email = cfg.Author.Email
	}
	if name == "" {
		name = branding.DisplayName()
	}
	if email == "" {
		email = branding.CLIName() + "@localhost"
	}
	return &object.Signature{Name: name, Email: email, When: time.Now()}
}
