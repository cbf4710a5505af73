package explain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/ternarybob/accord/pkg/tlc"
)

const defaultModel = "gemini-3-flash-preview"

// GeminiConfig configures a GeminiExplainer, mirroring the teacher's
// pkg/index.LLMConfig field-for-field.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiExplainer narrates counterexamples with the Gemini API, adapting
// the teacher's single-backend pkg/index.LLMClient down to the one
// operation Accord needs: turn a rendered trace into prose.
type GeminiExplainer struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiExplainer returns nil if cfg.APIKey is empty, matching
// pkg/index.NewLLMClient's "no key, no client" contract — callers fall
// back to NoopExplainer in that case.
func NewGeminiExplainer(cfg GeminiConfig) *GeminiExplainer {
	if cfg.APIKey == "" {
		return nil
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil
	}

	return &GeminiExplainer{client: client, model: cfg.Model, timeout: cfg.Timeout}
}

// Explain asks Gemini to narrate a rendered trace in plain English. On any
// API error it falls back to the plain Render output rather than failing
// the `check` invocation over an optional enrichment.
func (e *GeminiExplainer) Explain(ctx context.Context, protocolName string, result *tlc.Result) (string, error) {
	if e == nil || e.client == nil {
		return Render(protocolName, result), nil
	}
	if result == nil || result.Violation == nil {
		return Render(protocolName, result), nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := buildPrompt(protocolName, result)
	genResult, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), nil)
	if err != nil {
		return Render(protocolName, result), nil
	}
	if genResult == nil || len(genResult.Candidates) == 0 || genResult.Candidates[0].Content == nil {
		return Render(protocolName, result), nil
	}

	var text strings.Builder
	for _, part := range genResult.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return Render(protocolName, result), nil
	}
	return text.String(), nil
}

func buildPrompt(protocolName string, result *tlc.Result) string {
	return fmt.Sprintf(`A TLA+ model checker found a counterexample for the protocol contract %q. Explain in plain English, for a reader who knows the protocol's states and messages but not TLA+, what sequence of events leads to the violation and why it breaks the property. Be concise.

Raw trace:
%s`, protocolName, Render(protocolName, result))
}
