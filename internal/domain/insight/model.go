package insight

import (
	"io"

	"github.com/prolexis/analytics/pkg/metrics"
)

// maxKeywords caps how many keywords one analysis tracks. The prompt asks
// the model for at most this many and the decoder enforces it.
const maxKeywords = 5

// Insight carries the generated material for a single keyword.
type Insight struct {
	Titles []string `json:"titles"`
	// Details ships under the "insights" key because the first dashboard
	// release read it there. Renaming the field breaks stored exports.
	Details []string `json:"insights"`
}

// AnalysisResult is the decoded form of one model response.
type AnalysisResult struct {
	Keywords []string           `json:"keywords"`
	Insights map[string]Insight `json:"insights"`
	Error    *string            `json:"error"`
}

// Failed reports whether decoding gave up on the response.
func (r AnalysisResult) Failed() bool {
	return r.Error != nil
}

// Config configures prompt construction and model selection.
type Config struct {
	Model           string
	Temperature     float32
	SystemPrompt    string
	MaxSourceTokens int
}

// QuestionRequest asks for an analysis of a free-form business question.
type QuestionRequest struct {
	Question string `json:"question"`
	Keywords string `json:"keywords,omitempty"`
}

// TextRequest asks for an analysis of caller-supplied source text.
type TextRequest struct {
	Text     string `json:"text"`
	Question string `json:"question,omitempty"`
	Keywords string `json:"keywords,omitempty"`
}

// URLRequest asks for an analysis of a fetched web page.
type URLRequest struct {
	URL      string `json:"url"`
	Question string `json:"question,omitempty"`
	Keywords string `json:"keywords,omitempty"`
}

// FileRequest asks for an analysis of an uploaded document.
type FileRequest struct {
	Filename string
	Reader   io.Reader
	Question string
	Keywords string
}

// Analysis is the orchestration result returned to the HTTP layer. It embeds
// the decoded structure and adds request-level bookkeeping.
type Analysis struct {
	AnalysisResult

	AnalysisID string              `json:"analysisId"`
	Question   string              `json:"question,omitempty"`
	SourceURL  string              `json:"sourceUrl,omitempty"`
	Filename   string              `json:"filename,omitempty"`
	Timestamp  string              `json:"timestamp"`
	Cached     bool                `json:"cached"`
	DurationMs int64               `json:"durationMs,omitempty"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}
