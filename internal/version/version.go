// Package version describes the quotegen build.
//
// Both binaries print it from their version commands, the runtime client
// sends it as the User-Agent, and quotegen-runtime reports it in the Server
// header and its mDNS TXT record. Release builds stamp it with ldflags:
//
//	go build -ldflags="-X github.com/muurk/quotegen/internal/version.Version=v0.3.0 \
//	                   -X github.com/muurk/quotegen/internal/version.Commit=1f2e3d4 \
//	                   -X github.com/muurk/quotegen/internal/version.BuildDate=2026-10-01" ./cmd/quotegen
//
// Unstamped builds fall back to the VCS data recorded by the Go toolchain,
// and finally to a "dev" version.
package version

import (
	"fmt"
	goruntime "runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set via ldflags
var (
	Version   = ""
	Commit    = ""
	BuildDate = ""
)

const unknown = "unknown"

// Info describes one quotegen binary
type Info struct {
	Program   string
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// vcsStamp is the subset of debug.BuildInfo used when ldflags were not set
type vcsStamp struct {
	Revision string
	Time     string
	Modified bool
}

func init() {
	stamp, _ := readVCSStamp()
	Version, Commit, BuildDate = resolve(Version, Commit, BuildDate, stamp, time.Now())
}

func readVCSStamp() (vcsStamp, bool) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return vcsStamp{}, false
	}
	var stamp vcsStamp
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			stamp.Revision = s.Value
		case "vcs.time":
			stamp.Time = s.Value
		case "vcs.modified":
			stamp.Modified = s.Value == "true"
		}
	}
	return stamp, true
}

// resolve fills whatever ldflags left empty from the VCS stamp, then from now
func resolve(version, commit, date string, stamp vcsStamp, now time.Time) (string, string, string) {
	if commit == "" && stamp.Revision != "" {
		commit = stamp.Revision
		if len(commit) > 7 {
			commit = commit[:7]
		}
		if stamp.Modified {
			commit += "-dirty"
		}
	}

	built := now
	if t, err := time.Parse(time.RFC3339, stamp.Time); err == nil {
		built = t
	}
	if date == "" && stamp.Time != "" {
		date = built.UTC().Format("2006-01-02")
	}
	if version == "" {
		version = "dev-" + built.UTC().Format("20060102")
	}

	if commit == "" {
		commit = unknown
	}
	if date == "" {
		date = unknown
	}
	return version, commit, date
}

// Get returns the build description for program
func Get(program string) Info {
	return Info{
		Program:   program,
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: goruntime.Version(),
		Platform:  goruntime.GOOS + "/" + goruntime.GOARCH,
	}
}

// String renders the one-line form printed by the version commands
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (commit: %s", i.Program, i.Version, i.Commit)
	if i.BuildDate != unknown {
		fmt.Fprintf(&b, ", built: %s", i.BuildDate)
	}
	fmt.Fprintf(&b, ", %s %s)", i.GoVersion, i.Platform)
	return b.String()
}

// Product returns "<program>/<version>" for HTTP headers
func Product(program string) string {
	return program + "/" + Version
}

// UserAgent identifies quotegen in requests to the model runtime
func UserAgent() string {
	return fmt.Sprintf("%s (%s/%s)", Product("quotegen"), goruntime.GOOS, goruntime.GOARCH)
}

// TXT returns the build fields quotegen-runtime advertises over mDNS
func TXT() map[string]string {
	return map[string]string{
		"version": Version,
		"commit":  Commit,
	}
}
