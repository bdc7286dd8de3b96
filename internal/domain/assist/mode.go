// Package assist is the request orchestrator and response analyzer: it builds
// the per-mode chat payload, runs it through an llm.Executor, classifies the
// returned envelope and, for analysis requests, turns the reply prose into a
// sectioned report.
package assist

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects the prompt shape and how the reply is interpreted.
type Mode int

const (
	ModeGenerate Mode = iota
	ModeFix
	ModeAnalyze
)

// ErrUnknownMode is returned by ParseMode for names outside the closed set.
var ErrUnknownMode = errors.New("unknown mode")

func (m Mode) String() string {
	switch m {
	case ModeGenerate:
		return "generate"
	case ModeFix:
		return "fix"
	case ModeAnalyze:
		return "analyze"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Valid reports whether m is one of the declared modes.
func (m Mode) Valid() bool {
	return m == ModeGenerate || m == ModeFix || m == ModeAnalyze
}

// ParseMode accepts the mode names case-insensitively. "analysis" is accepted
// as an alias of "analyze".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "generate":
		return ModeGenerate, nil
	case "fix":
		return ModeFix, nil
	case "analyze", "analysis":
		return ModeAnalyze, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
