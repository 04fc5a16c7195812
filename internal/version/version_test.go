package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withBuildInfo(t *testing.T, version, gitCommit, buildDate string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	SetBuildInfo(version, gitCommit, buildDate)
	t.Cleanup(func() { SetBuildInfo(origVersion, origCommit, origDate) })
}

func TestGetInfo(t *testing.T) {
	withBuildInfo(t, "1.2.3+45.abcdef0", "abcdef0123456", "2025-01-02")

	info, err := GetInfo()
	require.NoError(t, err)
	assert.Equal(t, "1.2.3+45.abcdef0", info.Version)
	assert.Equal(t, uint64(2), info.SemVer.Minor())
	assert.Contains(t, info.Platform, "/")
}

func TestGetInfo_Invalid(t *testing.T) {
	withBuildInfo(t, "not-a-version", "unknown", "unknown")

	_, err := GetInfo()
	assert.Error(t, err)
	assert.Contains(t, GetFormattedVersion(), "invalid version")
}

func TestGetFormattedVersion(t *testing.T) {
	tests := []struct {
		name      string
		gitCommit string
		buildDate string
		expected  string
	}{
		{name: "development build", gitCommit: "unknown", buildDate: "unknown", expected: "appcaller v1.0.0"},
		{name: "short commit", gitCommit: "abcdef0123456", buildDate: "unknown", expected: "appcaller v1.0.0, commit abcdef0"},
		{name: "full build info", gitCommit: "abc", buildDate: "2025-01-02", expected: "appcaller v1.0.0, commit abc, built 2025-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, "1.0.0", tt.gitCommit, tt.buildDate)
			assert.Equal(t, tt.expected, GetFormattedVersion())
		})
	}
}

func TestGetDetailedVersion(t *testing.T) {
	withBuildInfo(t, "1.0.0+7.deadbee", "deadbee", "2025-01-02")

	detailed := GetDetailedVersion()
	lines := strings.Split(detailed, "\n")
	assert.Equal(t, "appcaller v1.0.0+7.deadbee", lines[0])
	assert.Contains(t, detailed, "Build Metadata: 7.deadbee")
	assert.Contains(t, detailed, "Go Version: go")
}

func TestIsDevelopment(t *testing.T) {
	withBuildInfo(t, "1.0.0", "unknown", "2025-01-02")
	assert.True(t, IsDevelopment())

	SetBuildInfo("1.0.0", "abc", "2025-01-02")
	assert.False(t, IsDevelopment())
}

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		v1, v2   string
		expected int
		wantErr  bool
	}{
		{"1.0.0", "1.0.0", 0, false},
		{"1.0.0", "1.0.1", -1, false},
		{"2.0.0", "1.9.9", 1, false},
		{"1.0.0-alpha", "1.0.0", -1, false},
		{"bogus", "1.0.0", 0, true},
		{"1.0.0", "bogus", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.v1+"_vs_"+tt.v2, func(t *testing.T) {
			got, err := CompareVersions(tt.v1, tt.v2)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRequireAtLeast(t *testing.T) {
	tests := []struct {
		name       string
		running    string
		minVersion string
		wantErr    string
	}{
		{name: "no requirement", running: "0.1.0", minVersion: ""},
		{name: "same version", running: "0.3.0", minVersion: "0.3.0"},
		{name: "newer running", running: "1.0.0", minVersion: "0.3.0"},
		{name: "prerelease of required release", running: "0.3.0-dev+12", minVersion: "0.3.0"},
		{name: "older running", running: "0.2.9", minVersion: "0.3.0", wantErr: "requires appcaller 0.3.0 or newer"},
		{name: "bad requirement", running: "0.3.0", minVersion: "x", wantErr: "invalid minimum version"},
		{name: "bad running version", running: "dev", minVersion: "0.1.0", wantErr: "invalid semantic version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withBuildInfo(t, tt.running, "unknown", "unknown")
			err := RequireAtLeast(tt.minVersion)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}
