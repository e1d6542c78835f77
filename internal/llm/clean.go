package llm

import "strings"

// CleanSQL extracts the SQL statement from a model reply that may be wrapped
// in markdown code fences.
func CleanSQL(reply string) string {
	if strings.Contains(reply, "```sql") {
		after := strings.SplitN(reply, "```sql", 2)[1]
		return strings.TrimSpace(strings.SplitN(after, "```", 2)[0])
	}
	if strings.Contains(reply, "```") {
		parts := strings.Split(reply, "```")
		if len(parts) > 1 {
			return strings.TrimSpace(parts[1])
		}
	}
	return strings.TrimSpace(reply)
}
