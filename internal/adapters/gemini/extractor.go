// Package gemini extracts meeting summaries from transcripts with Gemini
// function calling.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"github.com/okian/staffnote/internal/domain/summary"
	"github.com/okian/staffnote/pkg/metrics"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.0-flash"

const promptTemplate = `Extract the following information from the 1on1 meeting transcript below and summarize it.
Respond by calling the ` + "`%s`" + ` function.

---
Transcript:
%s
---

Fields:
1. meeting_date: the date and time of the meeting taken from the transcript. Use ISO 8601 where possible, e.g. "2025-05-22T17:28:00+09:00".
2. employee_name: the name of the employee the meeting is with. Exclude the manager running the meeting.
3. purpose: a concrete summary of why the meeting was held.
4. decisions: each decision agreed or given direction in the meeting, as objects with "item" (the decision), "discussion_summary" (how the discussion got there) and "source_utterance_indices" (integer indices of related utterances, when known).
5. overall_summary: a short summary of the main points, conclusions and direction of the meeting.
6. action_items: concrete next steps, as objects with "action", "assignee" and "due_date" (YYYY-MM-DD, when one was given).
`

// generator is the part of the SDK the extractor calls.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Extractor turns transcripts into summaries.
type Extractor struct {
	models generator
	model  string
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithModel overrides DefaultModel.
func WithModel(model string) Option {
	return func(e *Extractor) {
		if model != "" {
			e.model = model
		}
	}
}

// New creates a Gemini API client authenticated with apiKey. httpClient may be nil.
func New(ctx context.Context, apiKey string, httpClient *http.Client, opts ...Option) (*Extractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return newExtractor(client.Models, opts...), nil
}

func newExtractor(models generator, opts ...Option) *Extractor {
	e := &Extractor{models: models, model: DefaultModel}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract asks the model to call the summary function for transcript.
func (e *Extractor) Extract(ctx context.Context, transcript string) (*summary.Summary, error) {
	start := time.Now()
	prompt := fmt.Sprintf(promptTemplate, summary.FunctionName, transcript)
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{FunctionDeclarations: []*genai.FunctionDeclaration{SummaryFunction()}}},
		ToolConfig: &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode:                 genai.FunctionCallingConfigModeAny,
				AllowedFunctionNames: []string{summary.FunctionName},
			},
		},
	}

	resp, err := e.models.GenerateContent(ctx, e.model, []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}, config)
	if err != nil {
		metrics.RecordUpstreamCall("genai", "error", msSince(start))
		return nil, fmt.Errorf("gemini: generate content: %w", err)
	}
	metrics.RecordUpstreamCall("genai", "ok", msSince(start))

	return interpret(resp)
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}

// SummaryFunction declares the function whose arguments carry the summary.
func SummaryFunction() *genai.FunctionDeclaration {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.FunctionDeclaration{
		Name:        summary.FunctionName,
		Description: "Extracts the key information from a 1on1 meeting transcript into a structured summary.",
		Parameters: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"meeting_date":  str("Meeting date and time, ISO 8601 where possible."),
				"employee_name": str("Name of the employee the meeting is with."),
				"purpose":       str("Purpose of the meeting."),
				"decisions": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"item":               str("The decision."),
							"discussion_summary": str("Summary of the discussion leading to it."),
							"source_utterance_indices": {
								Type:  genai.TypeArray,
								Items: &genai.Schema{Type: genai.TypeInteger},
							},
						},
						Required: []string{"item", "discussion_summary"},
					},
				},
				"action_items": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"action":   str("What has to be done."),
							"assignee": str("Who does it."),
							"due_date": str("Deadline as YYYY-MM-DD, if any."),
						},
						Required: []string{"action", "assignee"},
					},
				},
				"overall_summary": str("Short summary of the whole meeting."),
			},
			Required: []string{"meeting_date", "employee_name", "purpose", "decisions", "overall_summary", "action_items"},
		},
	}
}
