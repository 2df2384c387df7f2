package insight

import "strings"

// Marker grammar for model responses. BuildUserPrompt asks for exactly this
// shape, but responses drift, so every rule tolerates absence. Matching is
// exact prefix on the trimmed line, case sensitive.
const (
	keywordsMarker = "**Keywords:**"
	titlesMarker   = "**Insights:**"
	detailsMarker  = "**Actions:**"
	headerPrefix   = "###"
	boldPrefix     = "**"
)

// parseFailedMessage is the only error the decoder ever reports.
const parseFailedMessage = "parse failed"

type decodeMode int

const (
	modeNone decodeMode = iota
	modeKeywords
	modeTitles
	modeDetails
)

// Decode converts one raw model response into an AnalysisResult. It is a
// pure function of its input and never panics: malformed text degrades to
// whatever structure was extractable, and an unexpected fault yields an
// empty result whose Error field is set.
func Decode(raw string) (result AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			msg := parseFailedMessage
			result = AnalysisResult{Keywords: []string{}, Insights: map[string]Insight{}, Error: &msg}
		}
	}()

	keywords := []string{}
	insights := map[string]Insight{}

	var (
		mode           = modeNone
		currentKeyword string
		titles         []string
		details        []string
	)

	closeBlock := func() {
		if currentKeyword == "" || (len(titles) == 0 && len(details) == 0) {
			return
		}
		entry := Insight{Titles: titles, Details: details}
		if entry.Titles == nil {
			entry.Titles = []string{}
		}
		if entry.Details == nil {
			entry.Details = []string{}
		}
		// Later blocks win when a keyword name repeats.
		insights[currentKeyword] = entry
	}

	for _, rawLine := range strings.Split(raw, "\n") {
		line := strings.TrimSpace(rawLine)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, keywordsMarker):
			mode = modeKeywords
			continue
		case strings.HasPrefix(line, headerPrefix) && strings.Contains(line, ":"):
			closeBlock()
			currentKeyword = keywordFromHeader(line)
			titles, details = nil, nil
			continue
		case strings.HasPrefix(line, titlesMarker):
			mode = modeTitles
			continue
		case strings.HasPrefix(line, detailsMarker):
			mode = modeDetails
			continue
		}

		switch mode {
		case modeKeywords:
			if strings.HasPrefix(line, boldPrefix) {
				continue
			}
			keywords = splitKeywordList(line)
			mode = modeNone
		case modeTitles:
			if currentKeyword == "" {
				continue
			}
			if item, ok := bulletContent(line); ok && item != "" {
				titles = append(titles, item)
			}
		case modeDetails:
			if currentKeyword == "" {
				continue
			}
			if item, ok := bulletContent(line); ok {
				if item != "" {
					details = append(details, item)
				}
			} else if !strings.HasPrefix(line, boldPrefix) && len(details) > 0 {
				// Wrapped detail text continues the previous bullet. A
				// continuation with nothing to continue is dropped.
				details[len(details)-1] += " " + line
			}
		}
	}
	closeBlock()

	return AnalysisResult{Keywords: keywords, Insights: insights}
}

// keywordFromHeader extracts the keyword name from a block header such as
// "### 1: **Market Analysis**".
func keywordFromHeader(line string) string {
	_, after, _ := strings.Cut(line, ":")
	return strings.TrimSpace(strings.ReplaceAll(after, "*", ""))
}

// splitKeywordList parses the comma-separated keyword line that follows the
// keywords marker. Enclosing brackets are stripped, tokens are trimmed, and
// empties are dropped. Duplicates are kept as given.
func splitKeywordList(line string) []string {
	line = strings.Trim(line, "[]")
	parts := strings.Split(line, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		keywords = append(keywords, part)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// bulletContent reports whether the line is a numbered or dashed bullet and
// returns the trimmed content after the bullet.
func bulletContent(line string) (string, bool) {
	if strings.HasPrefix(line, "- ") {
		return strings.TrimSpace(line[2:]), true
	}
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i > 0 && i < len(line) && line[i] == '.' {
		return strings.TrimSpace(line[i+1:]), true
	}
	return "", false
}
