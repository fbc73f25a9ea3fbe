package annotate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alexanderramin/chronolog/internal/domain"
	"github.com/alexanderramin/chronolog/internal/llm"
)

// batchTokenBudget caps the estimated prompt size per model call. Token
// counts are approximated as one token per four characters of JSON.
const batchTokenBudget = 4000

// LLMAnnotator categorizes intervals with a language model, batching them
// to stay within the model's context window. Synthesized gap intervals
// already carry an annotation and are passed through untouched.
type LLMAnnotator struct {
	client llm.LLMClient
	log    zerolog.Logger
}

// NewLLMAnnotator creates an Annotator backed by the given model client.
func NewLLMAnnotator(client llm.LLMClient, log zerolog.Logger) *LLMAnnotator {
	return &LLMAnnotator{client: client, log: log}
}

// promptActivity is the per-interval payload embedded in the prompt.
type promptActivity struct {
	Index   int     `json:"index"`
	Source  string  `json:"source"`
	Title   string  `json:"title"`
	Start   string  `json:"start_time"`
	End     string  `json:"end_time"`
	Minutes float64 `json:"duration_minutes"`
}

// categorization is one element of the model's JSON array response.
type categorization struct {
	Index       int    `json:"index"`
	TaskType    string `json:"task_type"`
	Ticket      string `json:"jira_issue"`
	Description string `json:"description"`
	Billable    bool   `json:"billable"`
}

func (a *LLMAnnotator) Annotate(ctx context.Context, in []domain.Interval) []domain.Interval {
	out := make([]domain.Interval, len(in))
	copy(out, in)

	// Gap intervals keep their synthesized annotation; only real activity
	// goes to the model.
	var pending []int
	for i, iv := range out {
		if iv.Source != domain.SourceTimeGap {
			pending = append(pending, i)
		}
	}

	for _, batch := range a.splitBatches(out, pending) {
		if err := a.annotateBatch(ctx, out, batch); err != nil {
			a.log.Warn().Err(err).Int("intervals", len(batch)).
				Msg("categorization failed, applying fallback annotations")
			for _, idx := range batch {
				out[idx].Annotation = fallbackAnnotation(out[idx])
			}
		}
	}

	return out
}

// splitBatches partitions the pending indexes so each batch's estimated
// prompt payload stays under the token budget.
func (a *LLMAnnotator) splitBatches(intervals []domain.Interval, pending []int) [][]int {
	var batches [][]int
	var current []int
	budget := 0

	for _, idx := range pending {
		data, _ := json.Marshal(promptPayload(intervals[idx], idx))
		size := len(data) / 4
		if len(current) > 0 && budget+size > batchTokenBudget {
			batches = append(batches, current)
			current = nil
			budget = 0
		}
		current = append(current, idx)
		budget += size
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

func (a *LLMAnnotator) annotateBatch(ctx context.Context, intervals []domain.Interval, batch []int) error {
	prompt, err := buildPrompt(intervals, batch)
	if err != nil {
		return err
	}

	resp, err := a.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskCategorize,
		SystemPrompt: systemPrompt,
		UserPrompt:   prompt,
	})
	if err != nil {
		return err
	}

	results, err := llm.ExtractJSONArray[categorization](resp.Text, nil)
	if err != nil {
		return err
	}

	byIndex := make(map[int]categorization, len(results))
	for _, r := range results {
		byIndex[r.Index] = r
	}

	for pos, idx := range batch {
		result, ok := byIndex[pos]
		if !ok && pos < len(results) {
			// Some models renumber; fall back to positional matching.
			result, ok = results[pos], true
		}
		if !ok {
			intervals[idx].Annotation = fallbackAnnotation(intervals[idx])
			continue
		}
		intervals[idx].Annotation = annotationFrom(result, intervals[idx])
	}
	return nil
}

func annotationFrom(r categorization, iv domain.Interval) *domain.Annotation {
	ann := &domain.Annotation{
		TaskType:    r.TaskType,
		Ticket:      r.Ticket,
		Description: r.Description,
		Billable:    r.Billable,
	}
	if ann.TaskType == "" {
		ann.TaskType = domain.UnknownTaskType
	}
	if ann.Ticket == "" {
		ann.Ticket = domain.UnknownTicket
	}
	if ann.Description == "" {
		ann.Description = iv.Title
	}
	return ann
}

const systemPrompt = `You are an assistant that categorizes work activities for time tracking.
For each activity you receive, determine:
- task_type: the category of the activity (e.g. "Development", "Documentation", "Meeting", "Code Review", "Communication", "Research")
- jira_issue: the most likely Jira issue key based on context clues, or "unknown"
- description: a concise description suitable for a time tracking system
- billable: whether the activity is billable work (true for development, meetings, etc., false for personal activities)

Respond with only a JSON array. Each element must carry the "index" of the
activity it describes plus the four fields above.`

func buildPrompt(intervals []domain.Interval, batch []int) (string, error) {
	payload := make([]promptActivity, len(batch))
	for pos, idx := range batch {
		payload[pos] = promptPayload(intervals[idx], pos)
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling activities: %w", err)
	}

	var b strings.Builder
	b.WriteString("Categorize the following activities:\n\n")
	b.Write(data)
	return b.String(), nil
}

func promptPayload(iv domain.Interval, index int) promptActivity {
	return promptActivity{
		Index:   index,
		Source:  iv.Source,
		Title:   iv.Title,
		Start:   iv.Start.Format("2006-01-02 15:04"),
		End:     iv.End.Format("2006-01-02 15:04"),
		Minutes: iv.Minutes(),
	}
}
