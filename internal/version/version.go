package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Заполняются через -ldflags "-X bomberman-client/internal/version.BuildDate=...".
// Без ldflags берутся vcs-метки, которые go build кладет в бинарник.
var (
	BuildDate   string // YYYY-MM-DD (UTC)
	BuildCommit string
)

// Protocol - ревизия протокола событий, на которой говорит клиент.
// Меняется вместе с pkg/api.
const Protocol = "bm-events/1"

var buildEpoch = time.Date(2025, time.December, 4, 0, 0, 0, 0, time.UTC)

// Source - откуда взяты метаданные сборки.
type Source string

const (
	SourceLdflags Source = "ldflags"
	SourceVCS     Source = "vcs"
	SourceNone    Source = "none"
)

// Build - метаданные сборки клиента. Отдается на /version и пишется в лог при старте.
type Build struct {
	Number    int    `json:"number"`
	Date      string `json:"date,omitempty"`
	Commit    string `json:"commit,omitempty"`
	Modified  bool   `json:"modified,omitempty"`
	Source    Source `json:"source"`
	Protocol  string `json:"protocol"`
	GoVersion string `json:"goVersion"`
	Error     string `json:"error,omitempty"`
}

// Info собирает метаданные. ldflags важнее vcs-меток.
func Info() Build {
	return resolve(BuildDate, BuildCommit, readVCS)
}

type vcsStamp struct {
	revision string
	time     time.Time
	modified bool
}

func readVCS() (vcsStamp, bool) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return vcsStamp{}, false
	}
	var st vcsStamp
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			st.revision = s.Value
		case "vcs.time":
			st.time, _ = time.Parse(time.RFC3339, s.Value)
		case "vcs.modified":
			st.modified = s.Value == "true"
		}
	}
	return st, st.revision != ""
}

func resolve(date, commit string, vcs func() (vcsStamp, bool)) Build {
	b := Build{
		Date:      date,
		Commit:    commit,
		Source:    SourceLdflags,
		Protocol:  Protocol,
		GoVersion: runtime.Version(),
	}
	if date == "" {
		st, ok := vcs()
		if !ok {
			b.Source = SourceNone
			b.Error = "no build date"
			return b
		}
		b.Source = SourceVCS
		b.Modified = st.modified
		if b.Commit == "" {
			b.Commit = st.revision
		}
		if !st.time.IsZero() {
			b.Date = st.time.UTC().Format("2006-01-02")
		}
	}

	n, err := buildNumber(b.Date)
	if err != nil {
		b.Error = err.Error()
		return b
	}
	b.Number = n
	return b
}

// buildNumber - число дней от эпохи проекта до даты сборки.
func buildNumber(date string) (int, error) {
	if date == "" {
		return 0, fmt.Errorf("build date is empty")
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("invalid build date %q: %w", date, err)
	}
	if t.Before(buildEpoch) {
		return 0, fmt.Errorf("build date %s is before epoch", date)
	}
	return int(t.Sub(buildEpoch).Hours() / 24), nil
}

// String - строка для лога при старте.
func String() string {
	return Info().String()
}

func (b Build) String() string {
	var sb strings.Builder
	sb.WriteString("bomberman-client")
	if b.Error == "" {
		fmt.Fprintf(&sb, " #%d", b.Number)
	}
	if b.Commit != "" {
		commit := b.Commit
		if len(commit) > 12 {
			commit = commit[:12]
		}
		sb.WriteString(" " + commit)
		if b.Modified {
			sb.WriteString("+dirty")
		}
	}
	if b.Error != "" {
		fmt.Fprintf(&sb, " (build unknown: %s)", b.Error)
	}
	fmt.Fprintf(&sb, " protocol=%s %s", b.Protocol, b.GoVersion)
	return sb.String()
}
