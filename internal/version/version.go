// Package version holds appcaller build information and checks catalog
// version requirements against it.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Build information that can be set at compile time via -ldflags
var (
	// Version is the semantic version of appcaller
	Version = "0.3.0"

	// GitCommit is the git commit hash when the binary was built
	GitCommit = "unknown"

	// BuildDate is the date when the binary was built
	BuildDate = "unknown"
)

// Info represents comprehensive version information
type Info struct {
	Version   string          `json:"version"`
	GitCommit string          `json:"gitCommit"`
	BuildDate string          `json:"buildDate"`
	GoVersion string          `json:"goVersion"`
	Platform  string          `json:"platform"`
	SemVer    *semver.Version `json:"-"`
}

// GetVersion returns the current version string
func GetVersion() string {
	return Version
}

// GetInfo returns comprehensive version information
func GetInfo() (*Info, error) {
	sv, err := semver.NewVersion(Version)
	if err != nil {
		return nil, fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}

	return &Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		SemVer:    sv,
	}, nil
}

// GetFormattedVersion returns a one line version string
func GetFormattedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("appcaller v%s (invalid version)", Version)
	}

	parts := []string{fmt.Sprintf("appcaller v%s", info.Version)}
	if info.GitCommit != "unknown" && info.GitCommit != "" {
		shortCommit := info.GitCommit
		if len(shortCommit) > 7 {
			shortCommit = shortCommit[:7]
		}
		parts = append(parts, fmt.Sprintf("commit %s", shortCommit))
	}
	if info.BuildDate != "unknown" && info.BuildDate != "" {
		parts = append(parts, fmt.Sprintf("built %s", info.BuildDate))
	}
	return strings.Join(parts, ", ")
}

// GetDetailedVersion returns detailed version information for debugging
func GetDetailedVersion() string {
	info, err := GetInfo()
	if err != nil {
		return fmt.Sprintf("appcaller v%s (error: %v)", Version, err)
	}

	lines := []string{
		fmt.Sprintf("appcaller v%s", info.Version),
		fmt.Sprintf("Git Commit: %s", info.GitCommit),
		fmt.Sprintf("Build Date: %s", info.BuildDate),
	}
	if meta := info.SemVer.Metadata(); meta != "" {
		lines = append(lines, fmt.Sprintf("Build Metadata: %s", meta))
	}
	lines = append(lines,
		fmt.Sprintf("Go Version: %s", info.GoVersion),
		fmt.Sprintf("Platform: %s", info.Platform),
	)
	return strings.Join(lines, "\n")
}

// IsDevelopment returns true if this appears to be a development build
func IsDevelopment() bool {
	return GitCommit == "unknown" || BuildDate == "unknown"
}

// CompareVersions compares two version strings and returns:
// -1 if v1 < v2, 0 if v1 == v2, 1 if v1 > v2
func CompareVersions(v1, v2 string) (int, error) {
	sv1, err := semver.NewVersion(v1)
	if err != nil {
		return 0, fmt.Errorf("invalid version v1 '%s': %w", v1, err)
	}

	sv2, err := semver.NewVersion(v2)
	if err != nil {
		return 0, fmt.Errorf("invalid version v2 '%s': %w", v2, err)
	}

	return sv1.Compare(sv2), nil
}

// RequireAtLeast fails when the running version is older than minVersion.
// An empty minVersion is always satisfied. Prerelease and build metadata of
// the running version are ignored so development builds satisfy their own
// release line.
func RequireAtLeast(minVersion string) error {
	if minVersion == "" {
		return nil
	}
	minimum, err := semver.NewVersion(minVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum version '%s': %w", minVersion, err)
	}
	current, err := semver.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("invalid semantic version '%s': %w", Version, err)
	}
	base := semver.New(current.Major(), current.Minor(), current.Patch(), "", "")
	if base.LessThan(minimum) {
		return fmt.Errorf("requires appcaller %s or newer, running %s", minimum, current)
	}
	return nil
}

// SetBuildInfo sets build information (used for testing)
func SetBuildInfo(version, gitCommit, buildDate string) {
	Version = version
	GitCommit = gitCommit
	BuildDate = buildDate
}
