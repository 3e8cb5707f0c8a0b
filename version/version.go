package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

var (
	// These variables are set at build time using -ldflags.
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info is the resolved build metadata for the running binary.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty"`
}

// Get resolves build metadata, preferring ldflags values and falling back
// to the VCS stamps Go embeds in module builds.
func Get() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = shorten(setting.Value)
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = setting.Value
				}
			case "vcs.modified":
				info.Dirty = setting.Value == "true"
			}
		}
	}

	if info.BuildTime == "" {
		info.BuildTime = time.Now().UTC().Format(time.RFC3339)
	}

	return info
}

// Short returns a compact version string suitable for --version output,
// e.g. "1.2.3+abc1234" or "dev".
func Short() string {
	info := Get()
	s := info.Version
	if info.Commit != "" {
		s += "+" + shorten(info.Commit)
	}
	if info.Dirty {
		s += "+dirty"
	}
	return s
}

// String renders the full human-readable form.
func (i Info) String() string {
	var b strings.Builder
	b.WriteString(i.Version)
	if i.Commit != "" {
		fmt.Fprintf(&b, " commit=%s", shorten(i.Commit))
	}
	if i.Dirty {
		b.WriteString(" (dirty)")
	}
	if i.GoVersion != "" {
		fmt.Fprintf(&b, " %s", i.GoVersion)
	}
	if i.BuildTime != "" {
		fmt.Fprintf(&b, " built=%s", i.BuildTime)
	}
	return b.String()
}

func shorten(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
