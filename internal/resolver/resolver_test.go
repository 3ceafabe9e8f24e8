package resolver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/specforge-labs/forge/internal/agent"
	"github.com/specforge-labs/forge/internal/release"
)

func selection(t *testing.T, agentKey, scriptKey string) (agent.Profile, agent.ScriptVariant) {
	t.Helper()
	reg, err := agent.Load()
	if err != nil {
		t.Fatalf("agent.Load: %v", err)
	}
	p, err := reg.LookupAgent(agentKey)
	if err != nil {
		t.Fatal(err)
	}
	s, err := reg.LookupScript(scriptKey)
	if err != nil {
		t.Fatal(err)
	}
	return p, s
}

type fakeGitHub struct {
	archive   []byte
	assetName string
	checksum  string // "" omits checksums.txt
	status    int    // non-zero forces this status on the release lookup
}

func (f *fakeGitHub) start(t *testing.T) *httptest.Server {
	t.Helper()
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/templates/releases/latest", func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(f.status)
			fmt.Fprint(w, `{"message":"nope"}`)
			return
		}
		rel := release.Release{
			TagName: "v0.4.0",
			Assets: []release.Asset{
				{Name: f.assetName, DownloadURL: server.URL + "/download/" + f.assetName, Size: int64(len(f.archive))},
			},
		}
		if f.checksum != "" {
			rel.Assets = append(rel.Assets, release.Asset{Name: "checksums.txt", DownloadURL: server.URL + "/download/checksums.txt"})
		}
		json.NewEncoder(w).Encode(rel)
	})
	mux.HandleFunc("/download/checksums.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "%s  %s\n", f.checksum, f.assetName)
	})
	mux.HandleFunc("/download/"+f.assetName, func(w http.ResponseWriter, r *http.Request) {
		w.Write(f.archive)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newTestResolver(server *httptest.Server, tempDir string) *Resolver {
	client := release.New(release.WithHTTPClient(server.Client()), release.WithAPIBase(server.URL))
	return New(WithClient(client), WithTempDir(tempDir))
}

func stagingEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func TestResolveRemote(t *testing.T) {
	archive := buildZip(t, [][2]string{
		{".specforge/memory/constitution.md", "rules"},
		{".claude/commands/specforge.plan.md", "plan"},
	})
	sum := sha256.Sum256(archive)
	gh := &fakeGitHub{
		archive:   archive,
		assetName: "specforge-template-claude-sh-v0.4.0.zip",
		checksum:  hex.EncodeToString(sum[:]),
	}
	server := gh.start(t)
	tmp := t.TempDir()
	claude, sh := selection(t, "claude", "sh")

	r := newTestResolver(server, tmp)
	pkg, err := r.Resolve(context.Background(), Request{
		Source: Source{Kind: KindRemote, Repo: "acme/templates"},
		Agent:  claude,
		Script: sh,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{
		".claude/commands/specforge.plan.md",
		".specforge/memory/constitution.md",
		".vscode/settings.json",
		"CLAUDE.md",
	}
	if !slices.Equal(pkg.Files(), want) {
		t.Errorf("Files = %v, want %v", pkg.Files(), want)
	}
	if pkg.Release == nil || pkg.Release.TagName != "v0.4.0" {
		t.Errorf("Release = %+v", pkg.Release)
	}
	data, err := os.ReadFile(filepath.Join(pkg.Dir(), ".specforge", "memory", "constitution.md"))
	if err != nil || string(data) != "rules" {
		t.Errorf("staged content = %q, %v", data, err)
	}

	if err := pkg.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pkg.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if entries := stagingEntries(t, tmp); len(entries) != 0 {
		t.Errorf("staging not removed: %v", entries)
	}
}

func TestResolveRemoteAssetMissing(t *testing.T) {
	gh := &fakeGitHub{
		archive:   buildZip(t, [][2]string{{".specforge/a.md", "a"}}),
		assetName: "specforge-template-gemini-sh-v0.4.0.zip",
	}
	server := gh.start(t)
	tmp := t.TempDir()
	claude, sh := selection(t, "claude", "sh")

	_, err := newTestResolver(server, tmp).Resolve(context.Background(), Request{
		Source: Source{Kind: KindRemote, Repo: "acme/templates"},
		Agent:  claude,
		Script: sh,
	})
	if !errors.Is(err, ErrPackageNotFound) {
		t.Fatalf("err = %v, want ErrPackageNotFound", err)
	}
	if entries := stagingEntries(t, tmp); len(entries) != 0 {
		t.Errorf("staging not removed on error: %v", entries)
	}
}

func TestResolveRemoteStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrPackageNotFound},
		{http.StatusForbidden, ErrNetwork},
		{http.StatusInternalServerError, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			gh := &fakeGitHub{assetName: "x.zip", status: tt.status}
			server := gh.start(t)
			claude, sh := selection(t, "claude", "sh")

			_, err := newTestResolver(server, t.TempDir()).Resolve(context.Background(), Request{
				Source: Source{Kind: KindRemote, Repo: "acme/templates"},
				Agent:  claude,
				Script: sh,
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			var se *release.StatusError
			if !errors.As(err, &se) || se.StatusCode != tt.status {
				t.Errorf("StatusError not reachable from %v", err)
			}
		})
	}
}

func TestResolveRemoteChecksumMismatch(t *testing.T) {
	gh := &fakeGitHub{
		archive:   buildZip(t, [][2]string{{".specforge/a.md", "a"}}),
		assetName: "specforge-template-claude-sh-v0.4.0.zip",
		checksum:  "0000000000000000000000000000000000000000000000000000000000000000",
	}
	server := gh.start(t)
	claude, sh := selection(t, "claude", "sh")

	_, err := newTestResolver(server, t.TempDir()).Resolve(context.Background(), Request{
		Source: Source{Kind: KindRemote, Repo: "acme/templates"},
		Agent:  claude,
		Script: sh,
	})
	if !errors.Is(err, ErrArchive) {
		t.Fatalf("err = %v, want ErrArchive", err)
	}
}

func TestResolveRemoteUnexpectedLayout(t *testing.T) {
	gh := &fakeGitHub{
		archive:   buildZip(t, [][2]string{{"README.md", "hi"}, {"docs/a.md", "a"}}),
		assetName: "specforge-template-claude-sh-v0.4.0.zip",
	}
	server := gh.start(t)
	claude, sh := selection(t, "claude", "sh")

	_, err := newTestResolver(server, t.TempDir()).Resolve(context.Background(), Request{
		Source: Source{Kind: KindRemote, Repo: "acme/templates"},
		Agent:  claude,
		Script: sh,
	})
	if !errors.Is(err, ErrArchive) {
		t.Fatalf("err = %v, want ErrArchive", err)
	}
}

func TestResolveRemoteConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client := release.New(release.WithAPIBase(base))
	claude, sh := selection(t, "claude", "sh")

	_, err := New(WithClient(client), WithTempDir(t.TempDir())).Resolve(context.Background(), Request{
		Source: Source{Kind: KindRemote, Repo: "acme/templates"},
		Agent:  claude,
		Script: sh,
	})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestResolveCancelled(t *testing.T) {
	gh := &fakeGitHub{
		archive:   buildZip(t, [][2]string{{".specforge/a.md", "a"}}),
		assetName: "specforge-template-claude-sh-v0.4.0.zip",
	}
	server := gh.start(t)
	tmp := t.TempDir()
	claude, sh := selection(t, "claude", "sh")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestResolver(server, tmp).Resolve(ctx, Request{
		Source: Source{Kind: KindRemote, Repo: "acme/templates"},
		Agent:  claude,
		Script: sh,
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if entries := stagingEntries(t, tmp); len(entries) != 0 {
		t.Errorf("staging not removed after cancellation: %v", entries)
	}
}

func TestResolveLocalPrebuilt(t *testing.T) {
	src := t.TempDir()
	for rel, content := range map[string]string{
		".specforge/memory/constitution.md":    "rules",
		".claude/commands/specforge.plan.md":   "plan",
		".git/HEAD":                            "ref: refs/heads/main",
		".gemini/commands/specforge.plan.toml": "plan",
		".vscode/settings.json":                "{}",
		"CLAUDE.md":                            "context",
		".env":                                 "SECRET=1",
		"src/main.go":                          "package main",
	} {
		path := filepath.Join(src, filepath.FromSlash(rel))
		os.MkdirAll(filepath.Dir(path), 0755)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	claude, sh := selection(t, "claude", "sh")

	pkg, err := New(WithTempDir(t.TempDir())).Resolve(context.Background(), Request{
		Source: Source{Kind: KindLocal, Path: src},
		Agent:  claude,
		Script: sh,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer pkg.Close()

	want := []string{".claude/commands/specforge.plan.md", ".specforge/memory/constitution.md"}
	if !slices.Equal(pkg.Files(), want) {
		t.Errorf("Files = %v, want %v", pkg.Files(), want)
	}
	if pkg.Release != nil {
		t.Errorf("Release = %+v, want nil for local source", pkg.Release)
	}
}

func TestResolveLocalBundle(t *testing.T) {
	src := t.TempDir()
	for rel, content := range map[string]string{
		"templates/commands/plan.md": "---\ndescription: Plan\n---\nPlan {ARGS}\n",
		"memory/constitution.md":     "rules",
	} {
		path := filepath.Join(src, filepath.FromSlash(rel))
		os.MkdirAll(filepath.Dir(path), 0755)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	gemini, ps := selection(t, "gemini", "ps")

	pkg, err := New(WithTempDir(t.TempDir())).Resolve(context.Background(), Request{
		Source: Source{Kind: KindLocal, Path: src},
		Agent:  gemini,
		Script: ps,
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer pkg.Close()

	files := pkg.Files()
	if !slices.Contains(files, ".gemini/commands/specforge.plan.toml") {
		t.Errorf("Files = %v, want rendered toml command", files)
	}
	if !slices.Contains(files, ".specforge/memory/constitution.md") {
		t.Errorf("Files = %v, want memory", files)
	}
}

func TestResolveLocalInvalid(t *testing.T) {
	claude, sh := selection(t, "claude", "sh")
	empty := t.TempDir()
	file := filepath.Join(t.TempDir(), "file.txt")
	os.WriteFile(file, []byte("x"), 0644)

	for name, path := range map[string]string{
		"missing":    filepath.Join(empty, "nope"),
		"empty dir":  empty,
		"plain file": file,
	} {
		t.Run(name, func(t *testing.T) {
			tmp := t.TempDir()
			_, err := New(WithTempDir(tmp)).Resolve(context.Background(), Request{
				Source: Source{Kind: KindLocal, Path: path},
				Agent:  claude,
				Script: sh,
			})
			if !errors.Is(err, ErrInvalidSource) {
				t.Fatalf("err = %v, want ErrInvalidSource", err)
			}
			if entries := stagingEntries(t, tmp); len(entries) != 0 {
				t.Errorf("staging not removed: %v", entries)
			}
		})
	}
}
