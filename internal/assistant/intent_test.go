package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/operai/workforce-api/pkg/errors"
)

func TestParseIntentPlainJSON(t *testing.T) {
	intent, err := ParseIntent(`{"thought": "mark wfh", "actions": [{"name": "mark_attendance", "params": {"work_mode": "wfh"}}], "response": "Done"}`)
	require.NoError(t, err)
	assert.Equal(t, "mark wfh", intent.Thought)
	require.Len(t, intent.Actions, 1)
	assert.Equal(t, ActionMarkAttendance, intent.Actions[0].Name)
}

func TestParseIntentFencedBlock(t *testing.T) {
	raw := "Here is what I will do:\n```json\n{\"thought\": \"t\", \"actions\": [], \"response\": \"r\"}\n```\nLet me know!"
	fenced, err := ParseIntent(raw)
	require.NoError(t, err)

	plain, err := ParseIntent(`{"thought": "t", "actions": [], "response": "r"}`)
	require.NoError(t, err)

	assert.Equal(t, plain, fenced)
}

func TestParseIntentBareFence(t *testing.T) {
	raw := "```\n{\"thought\": \"t\", \"actions\": []}\n```"
	intent, err := ParseIntent(raw)
	require.NoError(t, err)
	assert.Equal(t, "t", intent.Thought)
}

func TestParseIntentSurroundingProse(t *testing.T) {
	raw := `Sure! {"thought": "t", "actions": [], "response": "done"} Hope that helps.`
	intent, err := ParseIntent(raw)
	require.NoError(t, err)
	assert.Empty(t, intent.Actions)
	assert.Equal(t, "done", intent.Response)
}

func TestParseIntentEmptyActionsIsValid(t *testing.T) {
	intent, err := ParseIntent(`{"thought": "just chatting", "actions": [], "response": "hello"}`)
	require.NoError(t, err)
	assert.Empty(t, intent.Actions)
}

func TestParseIntentNoJSON(t *testing.T) {
	_, err := ParseIntent("I could not figure out what you want.")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedIntent.Code, appErrors.FromError(err).Code)
}

func TestParseIntentInvalidJSON(t *testing.T) {
	_, err := ParseIntent(`{"thought": "broken", "actions": [`)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedIntent.Code, appErrors.FromError(err).Code)
}

func TestParseIntentEmptyInput(t *testing.T) {
	_, err := ParseIntent("   ")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrMalformedIntent.Code, appErrors.FromError(err).Code)
}
