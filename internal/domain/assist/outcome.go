package assist

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matiasleandrokruk/seekassist/internal/infra/llm"
)

// FailureKind classifies why a request produced no usable result.
type FailureKind int

const (
	// NotConfigured: no credential; the network was never touched.
	NotConfigured FailureKind = iota + 1
	// Network: transport failure, timeout, abort or a non-2xx status.
	Network
	// InvalidFormat: the body is not the expected JSON shape.
	InvalidFormat
	// EmptyResult: a well-formed envelope without usable content.
	EmptyResult
)

func (k FailureKind) String() string {
	switch k {
	case NotConfigured:
		return "not_configured"
	case Network:
		return "network"
	case InvalidFormat:
		return "invalid_format"
	case EmptyResult:
		return "empty_result"
	default:
		return "unknown"
	}
}

func (k FailureKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Failure is the error carried by a failed Outcome.
type Failure struct {
	Kind    FailureKind         `json:"kind"`
	Message string              `json:"message"`
	Status  llm.TransportStatus `json:"-"`
	Err     error               `json:"-"`
}

func (f *Failure) Error() string { return f.Message }

func (f *Failure) Unwrap() error { return f.Err }

// TimedOut reports whether the failure came from the request deadline.
func (f *Failure) TimedOut() bool { return f.Status == llm.StatusTimeout }

// IsKind reports whether err is a *Failure of kind k.
func IsKind(err error, k FailureKind) bool {
	var f *Failure
	return errors.As(err, &f) && f.Kind == k
}

// OutcomeKind tags which variant an Outcome holds.
type OutcomeKind int

const (
	OutcomeContent OutcomeKind = iota + 1
	OutcomeFix
	OutcomeReport
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeContent:
		return "content"
	case OutcomeFix:
		return "fix"
	case OutcomeReport:
		return "report"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

func (k OutcomeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Outcome is the single classified result of one request. Exactly one of
// Text (content, fix), Report or Failure is meaningful, selected by Kind.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Mode    Mode        `json:"mode"`
	Text    string      `json:"text,omitempty"`
	Report  *Report     `json:"report,omitempty"`
	Failure *Failure    `json:"error,omitempty"`
}

// PlainContent is the Generate result.
func PlainContent(text string) Outcome {
	return Outcome{Kind: OutcomeContent, Mode: ModeGenerate, Text: text}
}

// FixContent is the Fix result.
func FixContent(text string) Outcome {
	return Outcome{Kind: OutcomeFix, Mode: ModeFix, Text: text}
}

// StructuredReport is the Analyze result.
func StructuredReport(r *Report) Outcome {
	return Outcome{Kind: OutcomeReport, Mode: ModeAnalyze, Report: r}
}

// Fail builds a failed outcome for mode.
func Fail(mode Mode, kind FailureKind, message string) Outcome {
	return Outcome{Kind: OutcomeFailure, Mode: mode, Failure: &Failure{Kind: kind, Message: message}}
}

// Err returns the failure as an error, or nil on success.
func (o Outcome) Err() error {
	if o.Failure == nil {
		return nil
	}
	return o.Failure
}

// OK reports whether the outcome is not a failure.
func (o Outcome) OK() bool { return o.Kind != OutcomeFailure }

// Body returns the user-facing text: content, fixed code or the rendered report.
func (o Outcome) Body() string {
	switch o.Kind {
	case OutcomeContent, OutcomeFix:
		return o.Text
	case OutcomeReport:
		if o.Report == nil {
			return ""
		}
		return o.Report.Render()
	case OutcomeFailure:
		return o.Failure.Message
	default:
		return ""
	}
}

// Metrics describes the analyzed reply text.
type Metrics struct {
	Characters int `json:"characters"`
	Lines      int `json:"lines"`
	Sections   int `json:"sections"`
}

// Report is an analysis reply broken into sections.
type Report struct {
	Sections Sections `json:"analysis"`
	Metrics  Metrics  `json:"metrics"`
	// LowConfidence is set when no section carries any key/value pair.
	LowConfidence bool   `json:"lowConfidence"`
	Raw           string `json:"raw"`
}

// Render formats the report for a text panel.
func (r *Report) Render() string {
	var b strings.Builder
	for _, s := range r.Sections {
		b.WriteString("🔹 ")
		b.WriteString(s.Title)
		b.WriteByte('\n')
		for _, p := range s.Pairs {
			fmt.Fprintf(&b, "  • %s: %s\n", p.Key, p.Value)
		}
		b.WriteByte('\n')
	}
	if len(r.Sections) == 0 {
		b.WriteString(r.Raw)
		b.WriteString("\n\n")
	}
	b.WriteString(r.Summary())
	return b.String()
}

// Summary is the one-line status shown after an analysis.
func (r *Report) Summary() string {
	return fmt.Sprintf("Analysis complete: %d sections, %d lines", r.Metrics.Sections, r.Metrics.Lines)
}
