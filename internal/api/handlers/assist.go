// HTTP handlers for the three assistant operations.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/matiasleandrokruk/seekassist/internal/domain/assist"
	"github.com/matiasleandrokruk/seekassist/internal/domain/editor"
	"github.com/matiasleandrokruk/seekassist/internal/domain/project"
	"github.com/matiasleandrokruk/seekassist/internal/infra/eventbus"
)

// Assistant is the orchestrator surface the handlers drive.
type Assistant interface {
	SendRequest(ctx context.Context, prompt string, mode assist.Mode) assist.Outcome
	RequestFix(ctx context.Context, code, problem string) assist.Outcome
	RequestProjectAnalysis(ctx context.Context, files map[string]string) assist.Outcome
}

// AssistHandler serves /generate, /fix and /analyze.
type AssistHandler struct {
	assistant Assistant
	bus       eventbus.EventBus
	scan      func(root string) (map[string]string, error)
}

// NewAssistHandler creates an AssistHandler. bus receives editor and
// fix-applied signals for fixes applied to a file; it may be nil.
func NewAssistHandler(a Assistant, bus eventbus.EventBus) *AssistHandler {
	return &AssistHandler{
		assistant: a,
		bus:       bus,
		scan: func(root string) (map[string]string, error) {
			return project.Scan(root, project.Options{})
		},
	}
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Prompt string `json:"prompt"`
}

// FixRequest is the body of POST /fix. Code defaults to the content of Path;
// Apply writes the fixed code back to Path.
type FixRequest struct {
	Code    string `json:"code,omitempty"`
	Problem string `json:"problem"`
	Path    string `json:"path,omitempty"`
	Apply   bool   `json:"apply,omitempty"`
}

// AnalyzeRequest is the body of POST /analyze: a project root to scan or an
// explicit path → content map.
type AnalyzeRequest struct {
	Root  string            `json:"root,omitempty"`
	Files map[string]string `json:"files,omitempty"`
}

// FixResponse is the outcome plus what happened to the target file.
type FixResponse struct {
	assist.Outcome
	Applied    bool   `json:"applied"`
	Path       string `json:"path,omitempty"`
	ApplyError string `json:"applyError,omitempty"`
}

// Generate handles POST /api/v1/generate
func (h *AssistHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "prompt is required")
		return
	}

	out := h.assistant.SendRequest(r.Context(), req.Prompt, assist.ModeGenerate)
	writeData(w, statusForOutcome(out), out)
}

// Fix handles POST /api/v1/fix
func (h *AssistHandler) Fix(w http.ResponseWriter, r *http.Request) {
	var req FixRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if msg := validateFixRequest(req); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var doc *editor.FileDocument
	if req.Path != "" {
		var err error
		if doc, err = editor.Open(req.Path, h.bus); err != nil {
			writeError(w, statusForOpenError(err), "cannot open path")
			return
		}
		if req.Code == "" {
			if req.Code, err = doc.CurrentFileContent(); err != nil {
				writeError(w, http.StatusInternalServerError, "cannot read path")
				return
			}
		}
	}

	out := h.assistant.RequestFix(r.Context(), req.Code, req.Problem)
	resp := FixResponse{Outcome: out}
	if req.Apply && out.OK() {
		fa := assist.ApplyAndAnnounce(doc, out, h.bus, nil)
		resp.Path = fa.Path
		resp.ApplyError = fa.Error
		resp.Applied = fa.Error == ""
	}
	writeData(w, statusForOutcome(out), resp)
}

func validateFixRequest(req FixRequest) string {
	switch {
	case strings.TrimSpace(req.Problem) == "":
		return "problem is required"
	case req.Code == "" && req.Path == "":
		return "code or path is required"
	case req.Apply && req.Path == "":
		return "apply requires path"
	default:
		return ""
	}
}

func statusForOpenError(err error) int {
	if errors.Is(err, os.ErrNotExist) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// Analyze handles POST /api/v1/analyze
func (h *AssistHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	files := req.Files
	if len(files) == 0 {
		if req.Root == "" {
			writeError(w, http.StatusBadRequest, "root or files is required")
			return
		}
		scanned, err := h.scan(req.Root)
		if err != nil {
			writeError(w, statusForScanError(err), "cannot scan root")
			return
		}
		files = scanned
	}

	out := h.assistant.RequestProjectAnalysis(r.Context(), files)
	writeData(w, statusForOutcome(out), out)
}

func statusForScanError(err error) int {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, project.ErrNotDir):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
