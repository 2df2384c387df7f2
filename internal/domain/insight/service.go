package insight

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/prolexis/analytics/internal/infra/llm/chatgpt"
	apperrors "github.com/prolexis/analytics/pkg/errors"
	"github.com/prolexis/analytics/pkg/metrics"
)

// Service exposes the analysis workflows.
type Service interface {
	AnalyzeQuestion(ctx context.Context, req QuestionRequest) (Analysis, error)
	AnalyzeText(ctx context.Context, req TextRequest) (Analysis, error)
	AnalyzeURL(ctx context.Context, req URLRequest) (Analysis, error)
	AnalyzeFile(ctx context.Context, req FileRequest) (Analysis, error)
}

type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

// Ingester prepares source material for prompting: cleaned, extracted from
// its carrier, and truncated to the configured token budget.
type Ingester interface {
	FromText(text string) string
	FromURL(ctx context.Context, rawURL string) (string, error)
	FromFile(filename string, r io.Reader) (string, error)
}

type service struct {
	cfg      Config
	client   ChatClient
	cache    ResponseCache
	ingester Ingester
	logger   *slog.Logger
}

// NewService is a wire provider for the insight domain.
func NewService(cfg Config, client ChatClient, cache ResponseCache, ingester Ingester, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		client:   client,
		cache:    cache,
		ingester: ingester,
		logger:   logger.With("component", "insight.service"),
	}
}

func (s *service) AnalyzeQuestion(ctx context.Context, req QuestionRequest) (Analysis, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Analysis{}, apperrors.Wrap("invalid_input", "question cannot be empty", nil)
	}
	return s.analyze(ctx, analysisInput{question: question, keywords: req.Keywords})
}

func (s *service) AnalyzeText(ctx context.Context, req TextRequest) (Analysis, error) {
	source := s.ingester.FromText(req.Text)
	if source == "" {
		return Analysis{}, apperrors.Wrap("invalid_input", "text cannot be empty", nil)
	}
	return s.analyze(ctx, analysisInput{
		question: strings.TrimSpace(req.Question),
		keywords: req.Keywords,
		source:   source,
	})
}

func (s *service) AnalyzeURL(ctx context.Context, req URLRequest) (Analysis, error) {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return Analysis{}, apperrors.Wrap("invalid_input", "url cannot be empty", nil)
	}
	source, err := s.ingester.FromURL(ctx, rawURL)
	if err != nil {
		return Analysis{}, apperrors.Wrap("fetch_error", "source fetch failed", err)
	}
	if source == "" {
		return Analysis{}, apperrors.Wrap("fetch_error", "source page contained no text", nil)
	}
	return s.analyze(ctx, analysisInput{
		question:  strings.TrimSpace(req.Question),
		keywords:  req.Keywords,
		source:    source,
		sourceURL: rawURL,
	})
}

func (s *service) AnalyzeFile(ctx context.Context, req FileRequest) (Analysis, error) {
	filename := strings.TrimSpace(req.Filename)
	if filename == "" || req.Reader == nil {
		return Analysis{}, apperrors.Wrap("invalid_input", "file is required", nil)
	}
	source, err := s.ingester.FromFile(filename, req.Reader)
	if err != nil {
		return Analysis{}, apperrors.Wrap("unsupported_file", "file cannot be analyzed", err)
	}
	if source == "" {
		return Analysis{}, apperrors.Wrap("invalid_input", "file contained no text", nil)
	}
	return s.analyze(ctx, analysisInput{
		question: strings.TrimSpace(req.Question),
		keywords: req.Keywords,
		source:   source,
		filename: filename,
	})
}

type analysisInput struct {
	question  string
	keywords  string
	source    string
	sourceURL string
	filename  string
}

func (s *service) analyze(ctx context.Context, in analysisInput) (Analysis, error) {
	started := time.Now()

	prompt := BuildUserPrompt(in.question, in.keywords, in.source)
	raw, cached, usage, err := s.generate(ctx, prompt)
	if err != nil {
		return Analysis{}, err
	}

	result := Decode(raw)
	if result.Failed() {
		s.logger.Warn("model response not decodable", "question", in.question)
	}

	return Analysis{
		AnalysisResult: result,
		AnalysisID:     analysisID(in.question, result.Keywords),
		Question:       in.question,
		SourceURL:      in.sourceURL,
		Filename:       in.filename,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		Cached:         cached,
		DurationMs:     time.Since(started).Milliseconds(),
		TokenUsage:     usage,
	}, nil
}

// generate returns the raw model response for the prompt, serving it from
// the response cache when the same prompt was seen before. Cache failures
// are logged and ignored so a degraded cache never blocks analysis.
func (s *service) generate(ctx context.Context, prompt string) (string, bool, *metrics.TokenUsage, error) {
	key := PromptKey(prompt)
	if cached, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("response cache read failed", "error", err)
	} else if ok {
		return cached, true, nil, nil
	}

	system := s.cfg.SystemPrompt
	if system == "" {
		system = DefaultSystemPrompt
	}
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		return "", false, nil, apperrors.Wrap("llm_error", "chatgpt request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", false, nil, apperrors.Wrap("llm_error", "chatgpt returned no choices", nil)
	}

	content := resp.Choices[0].Message.Content
	if err := s.cache.Put(ctx, key, content); err != nil {
		s.logger.Warn("response cache write failed", "error", err)
	}

	var usage *metrics.TokenUsage
	if u := resp.Usage; u.PromptTokens != 0 || u.CompletionTokens != 0 || u.TotalTokens != 0 {
		usage = &metrics.TokenUsage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	return content, false, usage, nil
}

// analysisID gives clients a short stable handle for one analysis outcome.
func analysisID(question string, keywords []string) string {
	sum := md5.Sum([]byte(question + strings.Join(keywords, ",")))
	return hex.EncodeToString(sum[:])[:8]
}
