package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specforge-labs/forge/internal/branding"
	"github.com/specforge-labs/forge/internal/release"
)

// resolveRemote downloads the release asset for the requested agent and
// script and extracts it into dest. A single attempt is made.
func (r *Resolver) resolveRemote(ctx context.Context, req Request, staging, dest string) (*release.Release, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	src := req.Source
	var (
		rel *release.Release
		err error
	)
	if src.Ref == "" {
		rel, err = r.client.Latest(ctx, src.Repo)
	} else {
		rel, err = r.client.ByTag(ctx, src.Repo, src.Ref)
	}
	if err != nil {
		return nil, fetchError("fetching release for "+src.String(), err)
	}

	pattern := release.AssetPattern(branding.AssetPrefix(), req.Agent.Key, req.Script.Key)
	asset, err := release.SelectAsset(rel.Assets, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: release %s: %w", ErrPackageNotFound, rel.TagName, err)
	}
	r.log.Debug("selected asset", "release", rel.TagName, "asset", asset.Name, "size", asset.Size)

	downloads := filepath.Join(staging, "download")
	if err := os.MkdirAll(downloads, 0755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}
	archive, err := r.client.Download(ctx, *asset, downloads, req.Progress)
	if err != nil {
		return nil, fetchError("downloading "+asset.Name, err)
	}

	switch err := r.client.VerifyChecksum(ctx, rel, archive); {
	case err == nil:
		r.log.Debug("checksum verified", "asset", asset.Name)
	case errors.Is(err, release.ErrNoChecksums):
		r.log.Debug("skipping checksum verification", "reason", err)
	case errors.Is(err, release.ErrChecksumMismatch):
		return nil, fmt.Errorf("%w: %w", ErrArchive, err)
	default:
		return nil, fetchError("verifying "+asset.Name, err)
	}

	files, err := Extract(archive, dest)
	if err != nil {
		return nil, err
	}
	if !hasHomeDir(files) {
		return nil, fmt.Errorf("%w: %s has no %s/ directory", ErrArchive, asset.Name, branding.HomeDir())
	}
	return rel, nil
}

// fetchError classifies a release client failure. A 404 means the package
// does not exist; everything else is a network problem. The client error
// stays in the chain so callers can reach *release.StatusError.
func fetchError(op string, err error) error {
	if errors.Is(err, release.ErrNotFound) {
		return fmt.Errorf("%w: %s: %w", ErrPackageNotFound, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrNetwork, op, err)
}

func hasHomeDir(files []string) bool {
	prefix := branding.HomeDir() + "/"
	for _, f := range files {
		if strings.HasPrefix(f, prefix) {
			return true
		}
	}
	return false
}
