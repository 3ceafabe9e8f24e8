package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const maxBodyExcerpt = 500

// RateLimit holds the rate-limit headers GitHub returned, where present.
type RateLimit struct {
	Limit      string
	Remaining  string
	Reset      time.Time
	RetryAfter time.Duration
}

// Empty reports whether no rate-limit header was present.
func (r RateLimit) Empty() bool {
	return r.Limit == "" && r.Remaining == "" && r.Reset.IsZero() && r.RetryAfter == 0
}

// StatusError is returned for any non-200 API or download response.
type StatusError struct {
	StatusCode int
	URL        string
	RateLimit  RateLimit
	Body       string // first bytes of the response body, for --debug output
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GitHub API returned status %d for %s", e.StatusCode, e.URL)
}

// Is makes a 404 match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// RateLimited reports whether the response looks like a rate-limit rejection.
func (e *StatusError) RateLimited() bool {
	if e.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return e.StatusCode == http.StatusForbidden && (e.RateLimit.Remaining == "0" || e.RateLimit.RetryAfter > 0)
}

// Detail renders the multi-line explanation shown to the user: rate-limit
// figures when present, then troubleshooting tips.
func (e *StatusError) Detail() string {
	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteString("\n")

	if !e.RateLimit.Empty() {
		b.WriteString("\nRate Limit Information:\n")
		if e.RateLimit.Limit != "" {
			fmt.Fprintf(&b, "  - Rate Limit: %s requests/hour\n", e.RateLimit.Limit)
		}
		if e.RateLimit.Remaining != "" {
			fmt.Fprintf(&b, "  - Remaining: %s\n", e.RateLimit.Remaining)
		}
		if !e.RateLimit.Reset.IsZero() {
			fmt.Fprintf(&b, "  - Resets at: %s\n", e.RateLimit.Reset.Local().Format("2006-01-02 15:04:05 MST"))
		}
		if e.RateLimit.RetryAfter > 0 {
			fmt.Fprintf(&b, "  - Retry after: %d seconds\n", int(e.RateLimit.RetryAfter.Seconds()))
		}
	}

	b.WriteString("\nTroubleshooting Tips:\n")
	b.WriteString("  - If you're on a shared CI or corporate environment, you may be rate-limited.\n")
	b.WriteString("  - Consider using a GitHub token via --github-token or the GH_TOKEN/GITHUB_TOKEN\n")
	b.WriteString("    environment variable to increase rate limits.\n")
	b.WriteString("  - Authenticated requests have a limit of 5,000/hour vs 60/hour for unauthenticated.\n")
	return b.String()
}

func parseRateLimit(h http.Header) RateLimit {
	rl := RateLimit{
		Limit:     h.Get("X-RateLimit-Limit"),
		Remaining: h.Get("X-RateLimit-Remaining"),
	}
	if reset := h.Get("X-RateLimit-Reset"); reset != "" {
		if epoch, err := strconv.ParseInt(reset, 10, 64); err == nil && epoch > 0 {
			rl.Reset = time.Unix(epoch, 0).UTC()
		}
	}
	if retry := h.Get("Retry-After"); retry != "" {
		if secs, err := strconv.Atoi(retry); err == nil {
			rl.RetryAfter = time.Duration(secs) * time.Second
		} else if at, err := http.ParseTime(retry); err == nil {
			rl.RetryAfter = time.Until(at).Round(time.Second)
		}
	}
	return rl
}

func newStatusError(resp *http.Response, rawURL string) *StatusError {
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyExcerpt))
	return &StatusError{
		StatusCode: resp.StatusCode,
		URL:        rawURL,
		RateLimit:  parseRateLimit(resp.Header),
		Body:       string(excerpt),
	}
}

// Latest fetches the latest published release of repo ("owner/name").
func (c *Client) Latest(ctx context.Context, repo string) (*Release, error) {
	u := fmt.Sprintf("%s/repos/%s/releases/latest", strings.TrimRight(c.apiBase, "/"), repo)
	return c.fetchRelease(ctx, u)
}

// ByTag fetches a release by its exact tag.
func (c *Client) ByTag(ctx context.Context, repo, tag string) (*Release, error) {
	u := fmt.Sprintf("%s/repos/%s/releases/tags/%s", strings.TrimRight(c.apiBase, "/"), repo, url.PathEscape(tag))
	return c.fetchRelease(ctx, u)
}

func (c *Client) fetchRelease(ctx context.Context, rawURL string) (*Release, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(resp, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var release Release
	if err := json.Unmarshal(body, &release); err != nil {
		excerpt := string(body)
		if len(excerpt) > 400 {
			excerpt = excerpt[:400]
		}
		return nil, fmt.Errorf("parsing release JSON: %w (body: %s)", err, excerpt)
	}

	return &release, nil
}

// AssetPattern returns the name fragment identifying the template archive
// for one agent/script pair, e.g. "specforge-template-claude-sh".
func AssetPattern(prefix, agent, script string) string {
	return fmt.Sprintf("%s-%s-%s", prefix, agent, script)
}

// SelectAsset returns the first .zip asset whose name contains pattern.
func SelectAsset(assets []Asset, pattern string) (*Asset, error) {
	for i := range assets {
		if strings.Contains(assets[i].Name, pattern) && strings.HasSuffix(assets[i].Name, ".zip") {
			return &assets[i], nil
		}
	}

	names := make([]string, 0, len(assets))
	for _, a := range assets {
		names = append(names, a.Name)
	}
	available := "(no assets)"
	if len(names) > 0 {
		available = strings.Join(names, ", ")
	}
	return nil, fmt.Errorf("%w for pattern %q; available: %s", ErrAssetNotFound, pattern, available)
}
