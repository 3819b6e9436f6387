package assistant

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// BuildSystemPrompt renders the model-facing instruction: the caller's
// context, date anchors for relative expressions, the role-filtered action
// catalog, and the required output shape.
func (e *Engine) BuildSystemPrompt(actor Actor) string {
	now := e.now().UTC()
	tomorrow := now.AddDate(0, 0, 1)
	nextMonday := now.AddDate(0, 0, daysUntil(now, time.Monday))
	nextFriday := now.AddDate(0, 0, daysUntil(now, time.Friday))

	var doc strings.Builder
	for _, entry := range e.catalog.AllowedForRole(actor.Role) {
		names := make([]string, 0, len(entry.Parameters))
		for name := range entry.Parameters {
			names = append(names, name)
		}
		sort.Strings(names)
		params := make([]string, 0, len(names))
		for _, name := range names {
			params = append(params, fmt.Sprintf("%s: %s", name, entry.Parameters[name]))
		}
		fmt.Fprintf(&doc, "  %s(%s)\n", entry.Name, strings.Join(params, ", "))
		fmt.Fprintf(&doc, "    Purpose: %s\n", entry.Description)
	}

	return fmt.Sprintf(`You are OperAI Intelligence - the operational AI for the OperAI workforce platform.
You can EXECUTE ACTIONS in the system through natural language commands.

CURRENT CONTEXT:
User: %s
Role: %s
Today: %s (%s)
Tomorrow: %s
Next Monday: %s
Next Friday: %s

AVAILABLE ACTIONS:
%s
IMPORTANT GUIDELINES:
- When the user mentions an email address for task assignment, use the "assigned_to_email" parameter.
- When the user asks "show my tasks" or "list my tasks", call list_user_tasks WITHOUT any user_id parameter.
- For date-based queries, use the dates provided in CURRENT CONTEXT.

OUTPUT FORMAT (MUST BE VALID JSON):
{
  "thought": "What I understood from the user's request",
  "actions": [
    {
      "name": "action_name",
      "params": {
        "param1": "value1"
      }
    }
  ],
  "response": "Natural language response to user"
}

IMPORTANT:
- Always return valid JSON
- actions array can have multiple actions
- If no action needed, use empty actions array: []
- Be specific and helpful in your response
`,
		actor.Email,
		actor.Role,
		now.Format(dateLayout),
		now.Weekday(),
		tomorrow.Format(dateLayout),
		nextMonday.Format(dateLayout),
		nextFriday.Format(dateLayout),
		doc.String(),
	)
}

// daysUntil returns the number of days from now to the next occurrence of
// the given weekday, counting a full week when today is that weekday.
func daysUntil(now time.Time, day time.Weekday) int {
	diff := int(day) - int(now.Weekday())
	if diff <= 0 {
		diff += 7
	}
	return diff
}
