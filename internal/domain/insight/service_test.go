package insight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prolexis/analytics/internal/infra/llm/chatgpt"
	apperrors "github.com/prolexis/analytics/pkg/errors"
)

const structuredContent = `**Keywords:**
[Market Analysis, Growth Strategy]

### 1: **Market Analysis**
**Insights:**
1. Demand concentrates upmarket
**Actions:**
1. Commission a segmentation study

### 2: **Growth Strategy**
**Insights:**
1. Expansion revenue is underweighted
**Actions:**
1. Stand up an expansion sales motion
`

func TestAnalyzeQuestionDecodesResponse(t *testing.T) {
	client := newStubChatClient(structuredContent)
	client.completionResp.Usage = chatgpt.Usage{PromptTokens: 42, CompletionTokens: 80, TotalTokens: 122}
	cache := &stubCache{}

	svc := NewService(testConfig(), client, cache, &stubIngester{}, newTestLogger())

	analysis, err := svc.AnalyzeQuestion(context.Background(), QuestionRequest{
		Question: "How do we grow revenue next quarter?",
		Keywords: "pricing, churn",
	})
	require.NoError(t, err)
	require.Nil(t, analysis.Error)
	require.Equal(t, []string{"Market Analysis", "Growth Strategy"}, analysis.Keywords)
	require.Len(t, analysis.Insights, 2)
	require.Len(t, analysis.AnalysisID, 8)
	require.False(t, analysis.Cached)
	require.NotEmpty(t, analysis.Timestamp)
	require.NotNil(t, analysis.TokenUsage)
	require.Equal(t, 122, analysis.TokenUsage.TotalTokens)

	require.Len(t, client.lastRequest.Messages, 2)
	require.Equal(t, "system", client.lastRequest.Messages[0].Role)
	require.Contains(t, client.lastRequest.Messages[1].Content, "How do we grow revenue next quarter?")
	require.Contains(t, client.lastRequest.Messages[1].Content, "pricing, churn")
	require.Contains(t, client.lastRequest.Messages[1].Content, keywordsMarker)
	require.Equal(t, 1, cache.puts)
}

func TestAnalyzeQuestionServesRepeatFromCache(t *testing.T) {
	client := newStubChatClient(structuredContent)
	cache := &stubCache{}
	svc := NewService(testConfig(), client, cache, &stubIngester{}, newTestLogger())

	req := QuestionRequest{Question: "Same question"}

	first, err := svc.AnalyzeQuestion(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := svc.AnalyzeQuestion(context.Background(), req)
	require.NoError(t, err)
	require.True(t, second.Cached)
	require.Equal(t, first.Keywords, second.Keywords)
	require.Equal(t, first.Insights, second.Insights)
	require.Equal(t, 1, client.calls)
}

func TestAnalyzeQuestionRejectsEmpty(t *testing.T) {
	svc := NewService(testConfig(), newStubChatClient(""), &stubCache{}, &stubIngester{}, newTestLogger())

	_, err := svc.AnalyzeQuestion(context.Background(), QuestionRequest{Question: "   "})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestAnalyzeTextRequiresContent(t *testing.T) {
	svc := NewService(testConfig(), newStubChatClient(""), &stubCache{}, &stubIngester{}, newTestLogger())

	_, err := svc.AnalyzeText(context.Background(), TextRequest{Text: "   "})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestAnalyzeTextFoldsSourceIntoPrompt(t *testing.T) {
	client := newStubChatClient(structuredContent)
	svc := NewService(testConfig(), client, &stubCache{}, &stubIngester{}, newTestLogger())

	_, err := svc.AnalyzeText(context.Background(), TextRequest{
		Text:     "Quarterly churn rose to 4.1%.",
		Question: "What changed?",
	})
	require.NoError(t, err)
	user := client.lastRequest.Messages[1].Content
	require.Contains(t, user, "Quarterly churn rose to 4.1%.")
	require.Contains(t, user, "What changed?")
}

func TestAnalyzeURLWrapsFetchFailure(t *testing.T) {
	ingester := &stubIngester{urlErr: errors.New("boom")}
	svc := NewService(testConfig(), newStubChatClient(""), &stubCache{}, ingester, newTestLogger())

	_, err := svc.AnalyzeURL(context.Background(), URLRequest{URL: "https://example.com/report"})
	require.True(t, apperrors.IsCode(err, "fetch_error"))
}

func TestAnalyzeURLCarriesSource(t *testing.T) {
	ingester := &stubIngester{urlResult: "fetched page text"}
	client := newStubChatClient(structuredContent)
	svc := NewService(testConfig(), client, &stubCache{}, ingester, newTestLogger())

	analysis, err := svc.AnalyzeURL(context.Background(), URLRequest{URL: "https://example.com/report"})
	require.NoError(t, err)
	require.Equal(t, "https://example.com/report", analysis.SourceURL)
	require.Equal(t, "https://example.com/report", ingester.lastURL)
	require.Contains(t, client.lastRequest.Messages[1].Content, "fetched page text")
}

func TestAnalyzeFileRejectsUnreadable(t *testing.T) {
	ingester := &stubIngester{fileErr: errors.New("unsupported file type")}
	svc := NewService(testConfig(), newStubChatClient(""), &stubCache{}, ingester, newTestLogger())

	_, err := svc.AnalyzeFile(context.Background(), FileRequest{
		Filename: "report.exe",
		Reader:   strings.NewReader("MZ"),
	})
	require.True(t, apperrors.IsCode(err, "unsupported_file"))
}

func TestAnalyzeFileCarriesFilename(t *testing.T) {
	ingester := &stubIngester{fileResult: "file body text"}
	client := newStubChatClient(structuredContent)
	svc := NewService(testConfig(), client, &stubCache{}, ingester, newTestLogger())

	analysis, err := svc.AnalyzeFile(context.Background(), FileRequest{
		Filename: "q3-report.txt",
		Reader:   strings.NewReader("ignored, stub extracts"),
	})
	require.NoError(t, err)
	require.Equal(t, "q3-report.txt", analysis.Filename)
	require.Contains(t, client.lastRequest.Messages[1].Content, "file body text")
}

func TestAnalyzeWrapsClientFailure(t *testing.T) {
	client := newStubChatClient("")
	client.completionErr = errors.New("upstream down")
	cache := &stubCache{}
	svc := NewService(testConfig(), client, cache, &stubIngester{}, newTestLogger())

	_, err := svc.AnalyzeQuestion(context.Background(), QuestionRequest{Question: "anything"})
	require.True(t, apperrors.IsCode(err, "llm_error"))
	require.Zero(t, cache.puts)
}

func TestAnalyzeRejectsEmptyChoices(t *testing.T) {
	client := &stubChatClient{}
	svc := NewService(testConfig(), client, &stubCache{}, &stubIngester{}, newTestLogger())

	_, err := svc.AnalyzeQuestion(context.Background(), QuestionRequest{Question: "anything"})
	require.True(t, apperrors.IsCode(err, "llm_error"))
}

func TestAnalyzeSurvivesBrokenCache(t *testing.T) {
	client := newStubChatClient(structuredContent)
	cache := &stubCache{getErr: errors.New("read refused"), putErr: errors.New("write refused")}
	svc := NewService(testConfig(), client, cache, &stubIngester{}, newTestLogger())

	analysis, err := svc.AnalyzeQuestion(context.Background(), QuestionRequest{Question: "anything"})
	require.NoError(t, err)
	require.Equal(t, []string{"Market Analysis", "Growth Strategy"}, analysis.Keywords)
	require.Equal(t, 1, client.calls)
}

func testConfig() Config {
	return Config{
		Model:        "test-model",
		Temperature:  0.2,
		SystemPrompt: "You are a test analyst.",
	}
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

type stubChatClient struct {
	completionResp chatgpt.ChatCompletionResponse
	completionErr  error

	lastRequest chatgpt.ChatCompletionRequest
	calls       int
}

func newStubChatClient(content string) *stubChatClient {
	return &stubChatClient{
		completionResp: chatgpt.ChatCompletionResponse{
			Choices: []struct {
				Message chatgpt.Message `json:"message"`
			}{
				{Message: chatgpt.Message{Role: "assistant", Content: content}},
			},
		},
	}
}

func (s *stubChatClient) CreateChatCompletion(_ context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.lastRequest = req
	s.calls++
	if s.completionErr != nil {
		return chatgpt.ChatCompletionResponse{}, s.completionErr
	}
	return s.completionResp, nil
}

type stubCache struct {
	entries map[string]string
	getErr  error
	putErr  error
	puts    int
}

func (s *stubCache) Get(_ context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	value, ok := s.entries[key]
	return value, ok, nil
}

func (s *stubCache) Put(_ context.Context, key, response string) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.entries == nil {
		s.entries = make(map[string]string)
	}
	s.entries[key] = response
	s.puts++
	return nil
}

type stubIngester struct {
	urlResult  string
	urlErr     error
	fileResult string
	fileErr    error

	lastURL  string
	lastFile string
}

func (s *stubIngester) FromText(text string) string {
	return strings.TrimSpace(text)
}

func (s *stubIngester) FromURL(_ context.Context, rawURL string) (string, error) {
	s.lastURL = rawURL
	return s.urlResult, s.urlErr
}

func (s *stubIngester) FromFile(filename string, _ io.Reader) (string, error) {
	s.lastFile = filename
	return s.fileResult, s.fileErr
}
