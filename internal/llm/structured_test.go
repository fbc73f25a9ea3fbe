package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type categorization struct {
	Index    int    `json:"index"`
	TaskType string `json:"task_type"`
	Ticket   string `json:"ticket"`
	Billable bool   `json:"billable"`
}

func TestExtractJSON_PlainObject(t *testing.T) {
	got, err := ExtractJSON[categorization](`{"index": 2, "task_type": "Meeting", "billable": true}`, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Index)
	assert.Equal(t, "Meeting", got.TaskType)
	assert.True(t, got.Billable)
}

func TestExtractJSON_SurroundedByProse(t *testing.T) {
	raw := "Sure! Here is the categorization:\n```json\n{\"task_type\": \"Development\"}\n```\nLet me know if you need more."
	got, err := ExtractJSON[categorization](raw, nil)
	require.NoError(t, err)
	assert.Equal(t, "Development", got.TaskType)
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := ExtractJSON[categorization]("I could not categorize anything.", nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_ValidatorRejects(t *testing.T) {
	validator := func(c categorization) error {
		if c.TaskType == "" {
			return errors.New("task_type required")
		}
		return nil
	}
	_, err := ExtractJSON[categorization](`{"index": 1}`, validator)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSONArray_CodeFenced(t *testing.T) {
	raw := "```json\n[\n  {\"index\": 0, \"task_type\": \"Meeting\"},\n  {\"index\": 1, \"task_type\": \"Development\", \"ticket\": \"PROJ-7\"}\n]\n```"
	got, err := ExtractJSONArray[categorization](raw, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "PROJ-7", got[1].Ticket)
}

func TestExtractJSONArray_WithComments(t *testing.T) {
	raw := `[
		{"index": 0, "task_type": "Meeting"}, // standup
		{"index": 1, "task_type": "Development"}
	]`
	got, err := ExtractJSONArray[categorization](raw, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestExtractJSONArray_NestedObjectsAndStrings(t *testing.T) {
	raw := `junk [ {"index": 0, "task_type": "a ] b"} ] trailing`
	got, err := ExtractJSONArray[categorization](raw, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a ] b", got[0].TaskType)
}

func TestExtractJSONArray_NoArray(t *testing.T) {
	_, err := ExtractJSONArray[categorization](`{"index": 0}`, nil)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestExtractJSON_LeadingDecimalNormalized(t *testing.T) {
	type scored struct {
		Confidence float64 `json:"confidence"`
	}
	got, err := ExtractJSON[scored](`{"confidence": .85}`, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.85, got.Confidence, 1e-9)
}
