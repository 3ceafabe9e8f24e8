package probe

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const maxRawVersionLen = 80

var versionPattern = regexp.MustCompile(`v?\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?`)

// ExtractVersion pulls a version out of `--version` output. The first
// semver-looking token is normalized (e.g. "v1.2" becomes "1.2.0"). When no
// such token parses, the first non-empty line is returned as-is, truncated.
// Empty output yields "".
func ExtractVersion(output string) string {
	for _, match := range versionPattern.FindAllString(output, -1) {
		if v, err := semver.NewVersion(strings.TrimPrefix(match, "v")); err == nil {
			return v.String()
		}
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if len(line) > maxRawVersionLen {
			line = line[:maxRawVersionLen]
		}
		return line
	}
	return ""
}
