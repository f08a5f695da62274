package version

import (
	"strings"
	"testing"
	"time"
)

func TestResolve(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name                    string
		version, commit, date   string
		stamp                   vcsStamp
		wantVersion, wantCommit string
		wantDate                string
	}{
		{
			name:    "ldflags win",
			version: "v0.3.0", commit: "1f2e3d4", date: "2026-10-01",
			stamp:       vcsStamp{Revision: "ffffffffffff", Time: "2026-01-01T00:00:00Z"},
			wantVersion: "v0.3.0", wantCommit: "1f2e3d4", wantDate: "2026-10-01",
		},
		{
			name:        "vcs stamp",
			stamp:       vcsStamp{Revision: "a1b2c3d4e5f6", Time: "2026-09-30T22:15:00Z"},
			wantVersion: "dev-20260930", wantCommit: "a1b2c3d", wantDate: "2026-09-30",
		},
		{
			name:        "dirty tree",
			stamp:       vcsStamp{Revision: "a1b2c3d4e5f6", Modified: true},
			wantVersion: "dev-20261018", wantCommit: "a1b2c3d-dirty", wantDate: unknown,
		},
		{
			name:        "nothing known",
			wantVersion: "dev-20261018", wantCommit: unknown, wantDate: unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, c, d := resolve(tt.version, tt.commit, tt.date, tt.stamp, now)
			if v != tt.wantVersion || c != tt.wantCommit || d != tt.wantDate {
				t.Errorf("resolve() = (%q, %q, %q), want (%q, %q, %q)",
					v, c, d, tt.wantVersion, tt.wantCommit, tt.wantDate)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	info := Info{
		Program:   "quotegen-runtime",
		Version:   "v0.3.0",
		Commit:    "1f2e3d4",
		BuildDate: "2026-10-01",
		GoVersion: "go1.24.10",
		Platform:  "linux/amd64",
	}
	want := "quotegen-runtime v0.3.0 (commit: 1f2e3d4, built: 2026-10-01, go1.24.10 linux/amd64)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	info.BuildDate = unknown
	if got := info.String(); strings.Contains(got, "built") {
		t.Errorf("String() = %q, should omit an unknown build date", got)
	}
}

func TestHeaders(t *testing.T) {
	if Version == "" || Commit == "" || BuildDate == "" {
		t.Fatal("build fields must be populated after init")
	}
	if got := Product("quotegen-runtime"); got != "quotegen-runtime/"+Version {
		t.Errorf("Product() = %q", got)
	}
	if ua := UserAgent(); !strings.HasPrefix(ua, "quotegen/"+Version+" (") {
		t.Errorf("UserAgent() = %q", ua)
	}
	if txt := TXT(); txt["version"] != Version || txt["commit"] != Commit {
		t.Errorf("TXT() = %v", txt)
	}
}
