package assist

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/matiasleandrokruk/seekassist/internal/domain/history"
	"github.com/matiasleandrokruk/seekassist/internal/infra/eventbus"
	"github.com/matiasleandrokruk/seekassist/internal/infra/llm"
)

// Bus topics published by the Orchestrator.
const (
	TopicContentReady = "assist.content_ready"
	TopicFixReady     = "assist.fix_ready"
	TopicReportReady  = "assist.report_ready"
	TopicError        = "assist.error"
	TopicProgress     = "assist.progress"
	TopicFixApplied   = "assist.fix_applied"
)

// Progress values.
const (
	ProgressStarted = 10
	ProgressDone    = 100
	ProgressFailed  = 0
)

const maxLoggedBody = 2048

// ErrMissingDependency is returned by Initialize when the executor or the
// credential source is absent.
var ErrMissingDependency = errors.New("assist: executor and credentials are required")

// State of the orchestrator.
type State int

const (
	StateUninitialized State = iota
	StateReady
	StateBusy
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateBusy:
		return "busy"
	default:
		return "unknown"
	}
}

// Progress is the payload of TopicProgress.
type Progress struct {
	Mode    Mode `json:"mode"`
	Percent int  `json:"percent"`
}

// FixApplied is the payload of TopicFixApplied.
type FixApplied struct {
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

// CredentialSource yields the cached API key; empty means not configured.
type CredentialSource interface {
	APIKey() string
}

// Recorder persists one history entry per finished request.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Document is the editor-side target of an applied fix. The Orchestrator
// never holds one; callers pass the document a fix request targeted.
type Document interface {
	HasActiveEditor() bool
	CurrentFilePath() string
	ReplaceContent(content string) error
	Save() error
}

// Config wires an Orchestrator. Bus, History and Logger are optional.
type Config struct {
	Executor    llm.Executor
	Credentials CredentialSource
	Bus         eventbus.EventBus
	History     Recorder
	Logger      *slog.Logger
	Model       string
}

// Orchestrator is the public facade: it validates configuration, runs one
// request through the executor and turns the envelope into an Outcome,
// publishing progress and the mode-specific result signal on the bus.
//
// One outstanding request per instance is the supported usage; concurrent
// calls are not queued here.
type Orchestrator struct {
	exec    llm.Executor
	creds   CredentialSource
	bus     eventbus.EventBus
	history Recorder
	logger  *slog.Logger
	model   string

	initialized atomic.Bool
	inFlight    atomic.Int32

	now func() time.Time
}

// NewOrchestrator returns an uninitialized Orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Orchestrator{
		exec:    cfg.Executor,
		creds:   cfg.Credentials,
		bus:     cfg.Bus,
		history: cfg.History,
		logger:  logger,
		model:   model,
		now:     time.Now,
	}
}

// Initialize moves the orchestrator to Ready. Calling it again is a no-op.
func (o *Orchestrator) Initialize() error {
	if o.exec == nil || o.creds == nil {
		return ErrMissingDependency
	}
	if o.initialized.CompareAndSwap(false, true) {
		o.logger.Debug("assist initialized", "provider", o.exec.Name(), "model", o.model)
	}
	return nil
}

// State reports the current state.
func (o *Orchestrator) State() State {
	switch {
	case !o.initialized.Load():
		return StateUninitialized
	case o.inFlight.Load() > 0:
		return StateBusy
	default:
		return StateReady
	}
}

// Configured reports whether a non-empty credential is cached.
func (o *Orchestrator) Configured() bool {
	return o.creds != nil && o.creds.APIKey() != ""
}

// RequestFix asks for a corrected version of code. No document is touched;
// see ApplyAndAnnounce.
func (o *Orchestrator) RequestFix(ctx context.Context, code, problem string) Outcome {
	return o.SendRequest(ctx, FixPrompt(code, problem), ModeFix)
}

// RequestProjectAnalysis asks for an analysis of the given path → content map.
func (o *Orchestrator) RequestProjectAnalysis(ctx context.Context, files map[string]string) Outcome {
	return o.SendRequest(ctx, AnalysisPrompt(files), ModeAnalyze)
}

// SendRequest runs prompt under mode and blocks until the outcome is known.
// Without a credential no network call is made.
func (o *Orchestrator) SendRequest(ctx context.Context, prompt string, mode Mode) Outcome {
	start := o.now()

	switch {
	case !mode.Valid():
		return o.finish(ctx, Fail(mode, InvalidFormat, "unsupported mode "+mode.String()), nil, start)
	case !o.initialized.Load():
		return o.finish(ctx, Fail(mode, NotConfigured, "assistant not initialized"), nil, start)
	}

	key := o.creds.APIKey()
	if key == "" {
		return o.finish(ctx, Fail(mode, NotConfigured, MsgNotConfigured), nil, start)
	}

	o.inFlight.Add(1)
	defer o.inFlight.Add(-1)

	o.progress(mode, ProgressStarted)
	o.logger.Info("assist request", "mode", mode.String(), "provider", o.exec.Name(),
		"prompt_chars", utf8.RuneCountInString(prompt))

	env := o.exec.Execute(ctx, NewPayload(o.model, prompt, mode), key)
	out := Classify(env, mode)

	if out.OK() {
		o.progress(mode, ProgressDone)
	} else {
		o.progress(mode, ProgressFailed)
	}
	return o.finish(ctx, out, env.Body, start)
}

// finish logs, records and publishes a terminal outcome.
func (o *Orchestrator) finish(ctx context.Context, out Outcome, body []byte, start time.Time) Outcome {
	elapsed := o.now().Sub(start)
	o.log(out, body, elapsed)
	o.record(ctx, out, body, elapsed)
	o.publish(topicFor(out), out)
	return out
}

// ApplyAndAnnounce applies out to doc, the document the fix request was made
// for, and publishes the result on TopicFixApplied. bus and logger may be nil.
// The returned FixApplied carries the apply error, if any.
func ApplyAndAnnounce(doc Document, out Outcome, bus eventbus.EventBus, logger *slog.Logger) FixApplied {
	if logger == nil {
		logger = slog.Default()
	}
	evt := FixApplied{Path: doc.CurrentFilePath()}
	if err := ApplyFix(doc, out); err != nil {
		logger.Error("assist fix apply failed", "path", evt.Path, "error", err)
		evt.Error = err.Error()
	} else {
		logger.Info("assist fix applied", "path", evt.Path)
	}
	if bus != nil {
		bus.Publish(TopicFixApplied, evt)
	}
	return evt
}

// ApplyFix replaces the whole document with the fixed code and saves it. A
// reply holding exactly one fenced code block is reduced to that block first.
func ApplyFix(doc Document, out Outcome) error {
	if out.Kind != OutcomeFix {
		return errors.New("assist: outcome is not a fix")
	}
	if !doc.HasActiveEditor() {
		return errors.New("assist: no active document")
	}
	if err := doc.ReplaceContent(UnwrapCode(out.Text)); err != nil {
		return err
	}
	return doc.Save()
}

func (o *Orchestrator) log(out Outcome, body []byte, elapsed time.Duration) {
	attrs := []any{"mode", out.Mode.String(), "outcome", out.Kind.String(), "duration", elapsed}

	if out.Failure != nil {
		attrs = append(attrs, "kind", out.Failure.Kind.String(), "message", out.Failure.Message)
		switch out.Failure.Kind {
		case InvalidFormat, EmptyResult:
			o.logger.Warn("assist provider anomaly", append(attrs, "body", truncateBytes(body, maxLoggedBody))...)
		default:
			o.logger.Error("assist request failed", attrs...)
		}
		return
	}

	if out.Report != nil {
		attrs = append(attrs, "sections", out.Report.Metrics.Sections)
		if out.Report.LowConfidence {
			o.logger.Warn("assist analysis has no structured data", attrs...)
			return
		}
	}
	o.logger.Info("assist request done", attrs...)
}

func (o *Orchestrator) record(ctx context.Context, out Outcome, body []byte, elapsed time.Duration) {
	if o.history == nil {
		return
	}

	e := history.Entry{
		Mode:       out.Mode.String(),
		Outcome:    out.Kind.String(),
		DurationMs: elapsed.Milliseconds(),
		Characters: utf8.RuneCountInString(out.Body()),
	}
	if f := out.Failure; f != nil {
		e.FailureKind = f.Kind.String()
		e.Message = f.Message
		e.Characters = 0
		if f.Kind == InvalidFormat || f.Kind == EmptyResult {
			e.RawBody = string(body)
		}
	}

	// The request context may already be cancelled (aborted calls).
	if err := o.history.Record(context.WithoutCancel(ctx), e); err != nil {
		o.logger.Warn("assist history record failed", "error", err)
	}
}

func (o *Orchestrator) progress(mode Mode, percent int) {
	o.publish(TopicProgress, Progress{Mode: mode, Percent: percent})
}

func (o *Orchestrator) publish(topic string, payload any) {
	if o.bus != nil {
		o.bus.Publish(topic, payload)
	}
}

func topicFor(out Outcome) string {
	switch out.Kind {
	case OutcomeContent:
		return TopicContentReady
	case OutcomeFix:
		return TopicFixReady
	case OutcomeReport:
		return TopicReportReady
	default:
		return TopicError
	}
}

func truncateBytes(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n])
	}
	return string(b)
}
