// Package version holds the firecrown release version and checks it against
// the requirement a configuration document declares.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Build information, overridable with -ldflags "-X".
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const unknown = "unknown"

// Info describes the running build.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`

	semver *semver.Version
}

// GetInfo parses Version and collects the build details.
func GetInfo() (*Info, error) {
	sv, err := current()
	if err != nil {
		return nil, err
	}
	return &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		semver:    sv,
	}, nil
}

func current() (*semver.Version, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}
	return sv, nil
}

// GetFormattedVersion returns "firecrown vX.Y.Z" with the short commit and
// build date when they were injected.
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("firecrown v%s (invalid version)", Version)
	}

	parts := []string{"firecrown v" + info.Version}
	if known(info.GitCommit) {
		commit := info.GitCommit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		parts = append(parts, "commit "+commit)
	}
	if known(info.BuildDate) {
		parts = append(parts, "built "+info.BuildDate)
	}
	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns one build detail per line.
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("firecrown v%s (error: %v)", Version, err)
	}

	lines := []string{
		"firecrown v" + info.Version,
		"Git Commit: " + info.GitCommit,
		"Build Date: " + info.BuildDate,
	}
	if pre := info.semver.Prerelease(); pre != "" {
		lines = append(lines, "Prerelease: "+pre)
	}
	if meta := info.semver.Metadata(); meta != "" {
		lines = append(lines, "Build Metadata: "+meta)
	}
	lines = append(lines, "Go Version: "+info.GoVersion, "Platform: "+info.Platform)
	return strings.Join(lines, "\n")
}

// CheckRequirement verifies the running version satisfies a constraint such
// as ">= 1.0, < 2". An empty constraint always passes.
func CheckRequirement(constraint string) error {
	if strings.TrimSpace(constraint) == "" {
		return nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("invalid version requirement '%s': %w", constraint, err)
	}
	sv, err := current()
	if err != nil {
		return err
	}
	if ok, reasons := c.Validate(sv); !ok {
		msgs := make([]string, 0, len(reasons))
		for _, r := range reasons {
			msgs = append(msgs, r.Error())
		}
		return fmt.Errorf("firecrown v%s does not satisfy '%s': %s", Version, constraint, strings.Join(msgs, "; "))
	}
	return nil
}

func known(s string) bool {
	return s != "" && s != unknown
}
