package insight

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt seeds the system message when configuration leaves it
// blank.
const DefaultSystemPrompt = "You are a senior business intelligence analyst. " +
	"You identify the strategic topics hidden in a question or source material and " +
	"produce concise, decision-ready insights and concrete next actions for each."

// responseContract is appended to every user prompt. It spells out the
// marker grammar Decode understands; drift from it is tolerated but loses
// content.
const responseContract = `Respond in exactly this format:

**Keywords:**
[first keyword, second keyword]

Then one section per keyword, numbered in order:

### 1: **first keyword**
**Insights:**
1. Short insight title
2. Short insight title
3. Short insight title
**Actions:**
1. Concrete recommended action
2. Concrete recommended action
3. Concrete recommended action

List at most 5 keywords. Do not add commentary outside this format.`

// BuildUserPrompt renders the user message for one analysis request. Any of
// question, keywords and source may be empty; empty sections are omitted.
func BuildUserPrompt(question, keywords, source string) string {
	var b strings.Builder
	b.WriteString("Analyze the following for business insights.\n")
	if q := strings.TrimSpace(question); q != "" {
		fmt.Fprintf(&b, "\nQuestion: %s\n", q)
	}
	if k := strings.TrimSpace(keywords); k != "" {
		fmt.Fprintf(&b, "\nFocus keywords: %s\n", k)
	}
	if s := strings.TrimSpace(source); s != "" {
		fmt.Fprintf(&b, "\nSource material:\n\"\"\"\n%s\n\"\"\"\n", s)
	}
	b.WriteString("\n")
	b.WriteString(responseContract)
	return b.String()
}
