package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
	GoVersion = ""
)

// Info describes the running binary.
type Info struct {
	Version   string    `json:"version"`
	Module    string    `json:"module,omitempty"`
	GitCommit string    `json:"git_commit"`
	GitBranch string    `json:"git_branch"`
	BuildTime string    `json:"build_time"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date"`
	IsRelease bool      `json:"is_release"`
	IsDirty   bool      `json:"is_dirty"`
}

// Get returns version information, filling unset ldflags values from the
// binary's embedded build info.
func Get() *Info {
	info := &Info{
		Version:   Version,
		GitCommit: GitCommit,
		GitBranch: GitBranch,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		IsRelease: Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if buildInfo, ok := debug.ReadBuildInfo(); ok {
		applyBuildInfo(info, buildInfo)
	}

	if info.BuildDate.IsZero() {
		info.BuildDate = time.Now().UTC()
		info.BuildTime = info.BuildDate.Format(time.RFC3339)
	}

	return info
}

func applyBuildInfo(info *Info, buildInfo *debug.BuildInfo) {
	info.Module = buildInfo.Main.Path
	if GoVersion == "" {
		info.GoVersion = buildInfo.GoVersion
	}
	for _, setting := range buildInfo.Settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == "" {
				info.GitCommit = setting.Value
				if len(info.GitCommit) > 7 {
					info.GitCommit = info.GitCommit[:7]
				}
			}
		case "vcs.modified":
			info.IsDirty = setting.Value == "true"
		case "vcs.time":
			if BuildTime == "" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					info.BuildDate = t
					info.BuildTime = setting.Value
				}
			}
		}
	}
}

// Short returns "version-commit", with "-dirty" for modified trees.
func (i *Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	if i.IsDirty {
		return fmt.Sprintf("%s-%s-dirty", i.Version, i.GitCommit)
	}
	return fmt.Sprintf("%s-%s", i.Version, i.GitCommit)
}

// Full returns the short form plus a non-default branch and the build date.
func (i *Info) Full() string {
	parts := []string{i.Version}
	if i.GitCommit != "" {
		parts = append(parts, i.GitCommit)
	}
	if i.GitBranch != "" && i.GitBranch != "main" && i.GitBranch != "master" {
		parts = append(parts, i.GitBranch)
	}
	if i.IsDirty {
		parts = append(parts, "dirty")
	}
	version := strings.Join(parts, "-")
	if !i.BuildDate.IsZero() {
		version += fmt.Sprintf(" (built %s)", i.BuildDate.Format("2006-01-02T15:04:05Z"))
	}
	return version
}

// Fields returns the info as log fields.
func (i *Info) Fields() map[string]interface{} {
	return map[string]interface{}{
		"version":    i.Short(),
		"go_version": i.GoVersion,
		"build_time": i.BuildTime,
	}
}
