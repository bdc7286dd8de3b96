package assist

import "testing"

func TestBuildPayload_GenerateIsSingleUserMessage(t *testing.T) {
	t.Parallel()

	for _, prompt := range []string{"write a lexer", "  keep   spacing\n", "üñí©ødé"} {
		req := BuildPayload(prompt, ModeGenerate)
		if len(req.Messages) != 1 {
			t.Fatalf("expected 1 message, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "user" || req.Messages[0].Content != prompt {
			t.Errorf("prompt altered: %+v", req.Messages[0])
		}
	}
}

func TestBuildPayload_AnalyzeIsSingleUserMessage(t *testing.T) {
	t.Parallel()

	req := BuildPayload("analyze", ModeAnalyze)
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("unexpected messages %+v", req.Messages)
	}
}

func TestBuildPayload_FixPrependsSystemMessage(t *testing.T) {
	t.Parallel()

	req := BuildPayload("Fix the following code", ModeFix)
	if len(req.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[0].Content != FixSystemMessage {
		t.Errorf("expected fixed system message first, got %+v", req.Messages[0])
	}
	if req.Messages[1].Role != "user" || req.Messages[1].Content != "Fix the following code" {
		t.Errorf("unexpected user message %+v", req.Messages[1])
	}
}

func TestBuildPayload_FixedParameters(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeGenerate, ModeFix, ModeAnalyze} {
		req := BuildPayload("p", mode)
		if req.Model != DefaultModel || req.Temperature != 0.7 || req.MaxTokens != 2000 {
			t.Errorf("%s: unexpected parameters %+v", mode, req)
		}
	}
}

func TestNewPayload_CustomModel(t *testing.T) {
	t.Parallel()

	if got := NewPayload("deepseek-coder", "p", ModeGenerate).Model; got != "deepseek-coder" {
		t.Errorf("expected custom model, got %q", got)
	}
	if got := NewPayload("", "p", ModeGenerate).Model; got != DefaultModel {
		t.Errorf("expected default model for empty name, got %q", got)
	}
}

func TestNewPayload_NotShared(t *testing.T) {
	t.Parallel()

	a := BuildPayload("a", ModeFix)
	b := BuildPayload("b", ModeFix)
	a.Messages[0].Content = "changed"
	if b.Messages[0].Content != FixSystemMessage {
		t.Error("payloads must not share message storage")
	}
}
