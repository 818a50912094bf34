package gemini

import (
	"fmt"

	"google.golang.org/genai"

	"github.com/okian/staffnote/internal/domain/summary"
	"github.com/okian/staffnote/pkg/metrics"
)

// Finish reasons that mean the candidate was withheld by a content filter.
var safetyFinishReasons = map[genai.FinishReason]bool{ //nolint:gochecknoglobals // static lookup table
	genai.FinishReasonSafety:            true,
	genai.FinishReasonBlocklist:         true,
	genai.FinishReasonProhibitedContent: true,
	genai.FinishReasonSPII:              true,
	genai.FinishReasonImageSafety:       true,
}

// interpret maps a model response onto a summary or one of the summary
// failure kinds.
func interpret(resp *genai.GenerateContentResponse) (*summary.Summary, error) {
	if resp == nil {
		metrics.RecordSummaryFailure("empty")
		return nil, summary.ErrEmptyResponse
	}

	if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" && pf.BlockReason != genai.BlockedReasonUnspecified {
		metrics.RecordSummaryFailure("prompt_blocked")
		return nil, &summary.SafetyBlockError{Reason: string(pf.BlockReason), Ratings: ratings(pf.SafetyRatings)}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		metrics.RecordSummaryFailure("empty")
		return nil, summary.ErrEmptyResponse
	}
	candidate := resp.Candidates[0]

	if safetyFinishReasons[candidate.FinishReason] {
		metrics.RecordSummaryFailure("safety_blocked")
		return nil, &summary.SafetyBlockError{Reason: string(candidate.FinishReason), Ratings: ratings(candidate.SafetyRatings)}
	}

	if candidate.Content == nil || len(candidate.Content.Parts) == 0 || candidate.Content.Parts[0] == nil {
		metrics.RecordSummaryFailure("malformed")
		return nil, fmt.Errorf("%w: candidate has no content (finish reason %q)", summary.ErrMalformedResponse, candidate.FinishReason)
	}

	part := candidate.Content.Parts[0]
	if part.FunctionCall == nil {
		metrics.RecordSummaryFailure("text_reply")
		return nil, &summary.TextReplyError{Text: part.Text}
	}

	s, err := summary.Decode(part.FunctionCall.Args)
	if err != nil {
		metrics.RecordSummaryFailure("malformed")
		return nil, err
	}
	return s, nil
}

func ratings(rs []*genai.SafetyRating) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		if r == nil {
			continue
		}
		out = append(out, string(r.Category)+": "+string(r.Probability))
	}
	return out
}
