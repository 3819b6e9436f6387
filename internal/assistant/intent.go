package assistant

import (
	"encoding/json"
	"strings"

	appErrors "github.com/operai/workforce-api/pkg/errors"
)

// ActionRequest is one requested action inside an intent. Params stays raw
// until the handler decodes it into its typed parameter struct.
type ActionRequest struct {
	Name   ActionName      `json:"name"`
	Params json.RawMessage `json:"params"`
}

// Intent is the structured object expected from the language model. An empty
// Actions slice is a valid chat-only reply.
type Intent struct {
	Thought  string          `json:"thought"`
	Actions  []ActionRequest `json:"actions"`
	Response string          `json:"response"`
}

// ParseIntent extracts an Intent from raw model output. The model may wrap
// the JSON in a fenced code block or surround it with prose; both are
// tolerated. A MalformedIntent error means no actions were extracted and the
// caller must treat the request as chat-only failure, never crash.
func ParseIntent(raw string) (*Intent, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, appErrors.Clone(appErrors.ErrMalformedIntent, "model returned empty output")
	}

	text = stripFences(text)

	// Be permissive about surrounding prose: slice from the first '{' to the
	// last '}'.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, appErrors.Clone(appErrors.ErrMalformedIntent, "no JSON object found in model output")
	}
	text = text[start : end+1]

	var intent Intent
	if err := json.Unmarshal([]byte(text), &intent); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrMalformedIntent.Code, appErrors.ErrMalformedIntent.Status, "model output is not a valid intent object")
	}
	return &intent, nil
}

// stripFences unwraps the first fenced code block if its content looks like
// an object. Text without fences is returned unchanged.
func stripFences(text string) string {
	for _, marker := range []string{"```json", "```"} {
		idx := strings.Index(text, marker)
		if idx == -1 {
			continue
		}
		inner := text[idx+len(marker):]
		closing := strings.Index(inner, "```")
		if closing == -1 {
			continue
		}
		candidate := strings.TrimSpace(inner[:closing])
		if strings.HasPrefix(candidate, "{") {
			return candidate
		}
	}
	return text
}
