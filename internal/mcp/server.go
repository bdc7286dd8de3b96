// Package mcp exposes the assistant operations as Model Context Protocol
// tools (generate_code, fix_code, analyze_project) over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/seekassist/internal/domain/assist"
	"github.com/matiasleandrokruk/seekassist/internal/domain/editor"
	"github.com/matiasleandrokruk/seekassist/internal/domain/project"
	"github.com/matiasleandrokruk/seekassist/internal/infra/eventbus"
	"github.com/matiasleandrokruk/seekassist/internal/version"
)

// Tool names.
const (
	ToolGenerate = "generate_code"
	ToolFix      = "fix_code"
	ToolAnalyze  = "analyze_project"
)

// Assistant is the orchestrator surface the tools drive.
type Assistant interface {
	SendRequest(ctx context.Context, prompt string, mode assist.Mode) assist.Outcome
	RequestFix(ctx context.Context, code, problem string) assist.Outcome
	RequestProjectAnalysis(ctx context.Context, files map[string]string) assist.Outcome
}

// Options configures the server. All fields are optional.
type Options struct {
	Bus    eventbus.EventBus
	Logger *slog.Logger
	// ScanOptions tunes the analyze_project root walk.
	ScanOptions project.Options
}

// GenerateInput is the generate_code argument object.
type GenerateInput struct {
	Prompt string `json:"prompt" jsonschema:"description of the code to generate"`
}

// FixInput is the fix_code argument object.
type FixInput struct {
	Code    string `json:"code,omitempty" jsonschema:"code to fix; defaults to the content of path"`
	Problem string `json:"problem" jsonschema:"what is wrong with the code"`
	Path    string `json:"path,omitempty" jsonschema:"file holding the code"`
	Apply   bool   `json:"apply,omitempty" jsonschema:"write the fixed code back to path"`
}

// AnalyzeInput is the analyze_project argument object.
type AnalyzeInput struct {
	Root  string            `json:"root,omitempty" jsonschema:"project directory to scan"`
	Files map[string]string `json:"files,omitempty" jsonschema:"explicit path to content map; wins over root"`
}

// Result is the structured output of every tool.
type Result struct {
	Kind string `json:"kind"`
	Mode string `json:"mode"`
	Text string `json:"text,omitempty"`
	// Sections holds assist.Sections, which encodes as an object in reply
	// order. It is typed any so the inferred output schema accepts that object.
	Sections      any    `json:"sections,omitempty"`
	Summary       string `json:"summary,omitempty"`
	LowConfidence bool   `json:"lowConfidence,omitempty"`
	Applied       bool   `json:"applied,omitempty"`
}

// Server is the MCP tool server.
type Server struct {
	assistant Assistant
	bus       eventbus.EventBus
	logger    *slog.Logger
	scanOpts  project.Options
	srv       *sdk.Server
}

// NewServer registers the three tools.
func NewServer(a Assistant, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		assistant: a,
		bus:       opts.Bus,
		logger:    logger,
		scanOpts:  opts.ScanOptions,
		srv: sdk.NewServer(&sdk.Implementation{Name: version.Name, Version: version.Version}, &sdk.ServerOptions{
			Logger: logger,
		}),
	}

	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        ToolGenerate,
		Description: "Generate code from a free-text description.",
	}, s.generate)
	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        ToolFix,
		Description: "Return a corrected version of the given code for the described problem, optionally writing it back to the file.",
	}, s.fix)
	sdk.AddTool(s.srv, &sdk.Tool{
		Name:        ToolAnalyze,
		Description: "Analyze a project (directory or file map) and return a sectioned report.",
	}, s.analyze)
	return s
}

// Run serves over stdin/stdout until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	return s.srv.Run(ctx, &sdk.StdioTransport{})
}

// Connect serves one session over t.
func (s *Server) Connect(ctx context.Context, t sdk.Transport) (*sdk.ServerSession, error) {
	return s.srv.Connect(ctx, t, nil)
}

func (s *Server) generate(ctx context.Context, req *sdk.CallToolRequest, in GenerateInput) (*sdk.CallToolResult, Result, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, Result{}, errors.New("prompt is required")
	}
	out := s.withProgress(ctx, req, func() assist.Outcome {
		return s.assistant.SendRequest(ctx, in.Prompt, assist.ModeGenerate)
	})
	return finish(out, false)
}

func (s *Server) fix(ctx context.Context, req *sdk.CallToolRequest, in FixInput) (*sdk.CallToolResult, Result, error) {
	switch {
	case strings.TrimSpace(in.Problem) == "":
		return nil, Result{}, errors.New("problem is required")
	case in.Code == "" && in.Path == "":
		return nil, Result{}, errors.New("code or path is required")
	case in.Apply && in.Path == "":
		return nil, Result{}, errors.New("apply requires path")
	}

	var doc *editor.FileDocument
	if in.Path != "" {
		var err error
		if doc, err = editor.Open(in.Path, s.bus); err != nil {
			return nil, Result{}, err
		}
		if in.Code == "" {
			if in.Code, err = doc.CurrentFileContent(); err != nil {
				return nil, Result{}, err
			}
		}
	}

	out := s.withProgress(ctx, req, func() assist.Outcome {
		return s.assistant.RequestFix(ctx, in.Code, in.Problem)
	})
	if !in.Apply || !out.OK() {
		return finish(out, false)
	}

	if fa := assist.ApplyAndAnnounce(doc, out, s.bus, s.logger); fa.Error != "" {
		return nil, Result{}, fmt.Errorf("fix produced but not applied: %s", fa.Error)
	}
	return finish(out, true)
}

func (s *Server) analyze(ctx context.Context, req *sdk.CallToolRequest, in AnalyzeInput) (*sdk.CallToolResult, Result, error) {
	files := in.Files
	if len(files) == 0 {
		if in.Root == "" {
			return nil, Result{}, errors.New("root or files is required")
		}
		scanned, err := project.Scan(in.Root, s.scanOpts)
		if err != nil {
			return nil, Result{}, err
		}
		files = scanned
	}

	out := s.withProgress(ctx, req, func() assist.Outcome {
		return s.assistant.RequestProjectAnalysis(ctx, files)
	})
	return finish(out, false)
}

// withProgress brackets call with 10% and 100% progress notifications when
// the client asked for them.
func (s *Server) withProgress(ctx context.Context, req *sdk.CallToolRequest, call func() assist.Outcome) assist.Outcome {
	token := req.Params.GetProgressToken()
	notify := func(p float64) {
		if token == nil || req.Session == nil {
			return
		}
		if err := req.Session.NotifyProgress(ctx, &sdk.ProgressNotificationParams{
			ProgressToken: token,
			Progress:      p,
			Total:         assist.ProgressDone,
		}); err != nil {
			s.logger.Debug("mcp progress notification failed", "error", err)
		}
	}

	notify(assist.ProgressStarted)
	out := call()
	if out.OK() {
		notify(assist.ProgressDone)
	}
	return out
}

// finish turns an outcome into a tool result. Failures become tool errors
// so the calling model sees the message.
func finish(out assist.Outcome, applied bool) (*sdk.CallToolResult, Result, error) {
	if f := out.Failure; f != nil {
		return nil, Result{}, fmt.Errorf("%s: %s", f.Kind, f.Message)
	}

	res := Result{
		Kind:    out.Kind.String(),
		Mode:    out.Mode.String(),
		Text:    out.Text,
		Applied: applied,
	}
	if r := out.Report; r != nil {
		res.Summary = r.Summary()
		res.LowConfidence = r.LowConfidence
		if len(r.Sections) > 0 {
			res.Sections = r.Sections
		}
	}
	return &sdk.CallToolResult{
		Content: []sdk.Content{&sdk.TextContent{Text: out.Body()}},
	}, res, nil
}
