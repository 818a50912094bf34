// Package summary holds the structured 1on1 meeting summary extracted from a
// transcript, its chat rendering and the extraction failure kinds.
package summary

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FunctionName is the function the model is asked to call with the summary fields.
const FunctionName = "create_meeting_summary_tool_function"

// Summary is the structured result of one transcript extraction.
type Summary struct {
	MeetingDate    string       `json:"meeting_date"`
	EmployeeName   string       `json:"employee_name"`
	Purpose        string       `json:"purpose"`
	Decisions      []Decision   `json:"decisions"`
	ActionItems    []ActionItem `json:"action_items"`
	OverallSummary string       `json:"overall_summary"`
}

// Decision is something agreed on during the meeting.
type Decision struct {
	Item                   string `json:"item"`
	DiscussionSummary      string `json:"discussion_summary"`
	SourceUtteranceIndices []int  `json:"source_utterance_indices"`
}

// UnmarshalJSON accepts "content" as an alias for "item"; models use both.
func (d *Decision) UnmarshalJSON(data []byte) error {
	var raw struct {
		Item                   string `json:"item"`
		Content                string `json:"content"`
		DiscussionSummary      string `json:"discussion_summary"`
		SourceUtteranceIndices []int  `json:"source_utterance_indices"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	d.Item = raw.Item
	if d.Item == "" {
		d.Item = raw.Content
	}
	d.DiscussionSummary = raw.DiscussionSummary
	d.SourceUtteranceIndices = raw.SourceUtteranceIndices
	if d.SourceUtteranceIndices == nil {
		d.SourceUtteranceIndices = []int{}
	}
	return nil
}

// ActionItem is a follow-up task with an owner.
type ActionItem struct {
	Action   string  `json:"action"`
	Assignee string  `json:"assignee"`
	DueDate  *string `json:"due_date"`
}

// Decode converts function call arguments into a Summary.
func Decode(args map[string]any) (*Summary, error) {
	if args == nil {
		return nil, fmt.Errorf("%w: function call has no arguments", ErrMalformedResponse)
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	var s Summary
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if s.Decisions == nil {
		s.Decisions = []Decision{}
	}
	if s.ActionItems == nil {
		s.ActionItems = []ActionItem{}
	}
	return &s, nil
}

// Record is a persisted summary.
type Record struct {
	ID        string
	Summary   Summary
	CreatedAt time.Time
}

// NewID derives a record id from t: 1on1_YYYYMMDD_HHMMSS_ffffff.
func NewID(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("1on1_%s_%06d", t.Format("20060102_150405"), t.Nanosecond()/int(time.Microsecond))
}

const (
	placeholderNone    = "none"
	placeholderMissing = "not specified"
)

// Format renders s as chat message text.
func Format(s *Summary) string {
	var b strings.Builder

	b.WriteString(":notebook: *1on1 meeting summary*\n\n")
	fmt.Fprintf(&b, "*Participant*: %s\n", orMissing(s.EmployeeName))
	fmt.Fprintf(&b, "*Date*: %s\n", orMissing(s.MeetingDate))
	fmt.Fprintf(&b, "*Purpose*: %s\n", orMissing(s.Purpose))

	b.WriteString("---\n*Decisions*\n")
	if len(s.Decisions) == 0 {
		b.WriteString(placeholderNone + "\n")
	}
	for _, d := range s.Decisions {
		fmt.Fprintf(&b, "- %s\n", d.Item)
	}

	b.WriteString("---\n*Action items*\n")
	if len(s.ActionItems) == 0 {
		b.WriteString(placeholderNone + "\n")
	}
	for _, a := range s.ActionItems {
		due := placeholderMissing
		if a.DueDate != nil && *a.DueDate != "" {
			due = *a.DueDate
		}
		fmt.Fprintf(&b, "- %s (owner: %s, due: %s)\n", a.Action, orMissing(a.Assignee), due)
	}

	b.WriteString("---\n*Overall summary*\n")
	b.WriteString(s.OverallSummary)

	return strings.TrimSpace(b.String())
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholderMissing
	}
	return s
}
