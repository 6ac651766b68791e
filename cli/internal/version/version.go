package version

import (
	"fmt"
	"runtime"

	goversion "github.com/hashicorp/go-version"
)

var (
	// Version is the version of the CLI
	Version = "0.1.0"
	// BuildDate is the build date
	BuildDate = "unknown"
	// GitCommit is the git commit hash
	GitCommit = "unknown"
)

// Info holds version information
type Info struct {
	Version   string
	BuildDate string
	GitCommit string
	GoVersion string
	Platform  string
}

// Get returns version information
func Get() Info {
	return Info{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// String returns a formatted version string
func (i Info) String() string {
	return fmt.Sprintf("neodb version %s (%s %s)", i.Version, i.Platform, i.GoVersion)
}

// Pairs returns the fields as label/value pairs for display
func (i Info) Pairs() [][2]string {
	return [][2]string{
		{"version", i.Version},
		{"build date", i.BuildDate},
		{"git commit", i.GitCommit},
		{"platform", i.Platform},
		{"go", i.GoVersion},
	}
}

// Outdated reports whether latest is newer than the running version
func (i Info) Outdated(latest string) (bool, error) {
	current, err := goversion.NewVersion(i.Version)
	if err != nil {
		return false, fmt.Errorf("invalid version format: %w", err)
	}

	newest, err := goversion.NewVersion(latest)
	if err != nil {
		return false, fmt.Errorf("invalid latest version format: %w", err)
	}

	return current.LessThan(newest), nil
}

// Satisfies reports whether the running version meets constraint, e.g.
// ">= 0.1, < 1.0"
func (i Info) Satisfies(constraint string) (bool, error) {
	current, err := goversion.NewVersion(i.Version)
	if err != nil {
		return false, fmt.Errorf("invalid version format: %w", err)
	}

	c, err := goversion.NewConstraint(constraint)
	if err != nil {
		return false, err
	}
	return c.Check(current), nil
}
