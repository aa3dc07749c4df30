package version

import (
	"strings"
	"testing"
	"time"
)

func TestBuildNumber(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		expected  int
		wantError bool
	}{
		{name: "epoch date", date: "2025-12-04", expected: 0},
		{name: "next day after epoch", date: "2025-12-05", expected: 1},
		{name: "one year later", date: "2026-12-04", expected: 365},
		{name: "date with leap years included", date: "2032-12-04", expected: 2557},
		{name: "invalid format", date: "invalid", wantError: true},
		{name: "empty date", date: "", wantError: true},
		{name: "before epoch", date: "2025-12-03", wantError: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := buildNumber(tt.date)
			if tt.wantError {
				if err == nil {
					t.Fatalf("expected error, got nil (n=%d)", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("buildNumber() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	stamp := vcsStamp{
		revision: "0123456789abcdef0123",
		time:     time.Date(2025, time.December, 14, 9, 30, 0, 0, time.UTC),
		modified: true,
	}
	withVCS := func() (vcsStamp, bool) { return stamp, true }
	noVCS := func() (vcsStamp, bool) { return vcsStamp{}, false }

	tests := []struct {
		name       string
		date       string
		commit     string
		vcs        func() (vcsStamp, bool)
		wantSource Source
		wantNumber int
		wantCommit string
		wantError  bool
	}{
		{
			name: "ldflags win over vcs", date: "2025-12-06", commit: "abc",
			vcs: withVCS, wantSource: SourceLdflags, wantNumber: 2, wantCommit: "abc",
		},
		{
			name: "vcs stamp fills date and commit",
			vcs:  withVCS, wantSource: SourceVCS, wantNumber: 10, wantCommit: stamp.revision,
		},
		{
			name: "nothing known",
			vcs:  noVCS, wantSource: SourceNone, wantError: true,
		},
		{
			name: "bad ldflags date", date: "06.12.2025",
			vcs: withVCS, wantSource: SourceLdflags, wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := resolve(tt.date, tt.commit, tt.vcs)
			if b.Source != tt.wantSource {
				t.Errorf("source = %s, want %s", b.Source, tt.wantSource)
			}
			if (b.Error != "") != tt.wantError {
				t.Fatalf("error = %q, wantError %v", b.Error, tt.wantError)
			}
			if tt.wantError {
				return
			}
			if b.Number != tt.wantNumber || b.Commit != tt.wantCommit {
				t.Errorf("build = %+v", b)
			}
			if b.Protocol != Protocol || b.GoVersion == "" {
				t.Errorf("protocol/go version missing: %+v", b)
			}
		})
	}
}

func TestBuild_String(t *testing.T) {
	b := resolve("", "", func() (vcsStamp, bool) {
		return vcsStamp{revision: "0123456789abcdef", time: time.Date(2025, time.December, 6, 0, 0, 0, 0, time.UTC), modified: true}, true
	})
	s := b.String()
	for _, want := range []string{"#2", "0123456789ab+dirty", "protocol=" + Protocol} {
		if !strings.Contains(s, want) {
			t.Errorf("String() = %q, missing %q", s, want)
		}
	}

	unknown := resolve("", "", func() (vcsStamp, bool) { return vcsStamp{}, false }).String()
	if !strings.Contains(unknown, "build unknown") {
		t.Errorf("String() = %q", unknown)
	}
}
