package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/prolexis/analytics/internal/domain/insight"
)

const tokenEncoding = "cl100k_base"

// Config bounds source preparation.
type Config struct {
	FetchTimeout    time.Duration
	MaxFetchBytes   int64
	MaxUploadBytes  int64
	MaxSourceTokens int
	UserAgent       string
}

// Pipeline turns raw text, web pages and uploaded files into cleaned prompt
// source material within a token budget.
type Pipeline struct {
	cfg        Config
	httpClient *http.Client
	encoder    *tiktoken.Tiktoken
	logger     *slog.Logger
}

// NewPipeline builds the shared ingestion pipeline. Loading the token
// encoding fetches the BPE table on first use unless TIKTOKEN_CACHE_DIR
// points at a primed cache; when the table cannot be loaded the pipeline
// truncates by a rune budget instead.
func NewPipeline(cfg Config, logger *slog.Logger) *Pipeline {
	encoder, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		logger.Warn("token encoding unavailable, truncating by rune budget", "encoding", tokenEncoding, "error", err)
		encoder = nil
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 15 * time.Second
	}
	if cfg.MaxFetchBytes <= 0 {
		cfg.MaxFetchBytes = 2 << 20
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 5 << 20
	}
	if cfg.MaxSourceTokens <= 0 {
		cfg.MaxSourceTokens = 6000
	}
	return &Pipeline{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.FetchTimeout},
		encoder:    encoder,
		logger:     logger.With("component", "ingest.pipeline"),
	}
}

// FromText cleans and truncates caller-supplied text.
func (p *Pipeline) FromText(text string) string {
	return p.truncate(clean(text))
}

// FromURL fetches a page and extracts its readable text.
func (p *Pipeline) FromURL(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("unsupported url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build fetch request: %w", err)
	}
	if p.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", p.cfg.UserAgent)
	}
	req.Header.Set("Accept", "text/html, text/plain, application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("fetch url failed: status=%d body=%s", resp.StatusCode, string(payload))
	}

	text, err := extractByContentType(resp.Header.Get("Content-Type"), io.LimitReader(resp.Body, p.cfg.MaxFetchBytes))
	if err != nil {
		return "", err
	}
	return p.truncate(clean(text)), nil
}

// FromFile extracts readable text from an uploaded document. Only text-like
// files are accepted; binary formats are rejected rather than mangled.
func (p *Pipeline) FromFile(filename string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".html" || ext == ".htm":
		data, err := p.readBounded(r)
		if err != nil {
			return "", err
		}
		text, err := extractHTML(bytes.NewReader(data))
		if err != nil {
			return "", err
		}
		return p.truncate(clean(text)), nil
	case textExtensions[ext]:
		data, err := p.readBounded(r)
		if err != nil {
			return "", err
		}
		if !utf8.Valid(data) {
			return "", fmt.Errorf("file %q is not utf-8 text", filename)
		}
		return p.truncate(clean(string(data))), nil
	default:
		return "", fmt.Errorf("unsupported file type %q", ext)
	}
}

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".json": true,
	".log":  true,
}

func (p *Pipeline) readBounded(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, p.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if int64(len(data)) > p.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", p.cfg.MaxUploadBytes)
	}
	return data, nil
}

// runesPerToken approximates the cl100k_base average for English prose.
const runesPerToken = 4

func (p *Pipeline) truncate(text string) string {
	if p.cfg.MaxSourceTokens <= 0 {
		return text
	}
	if p.encoder == nil {
		runes := []rune(text)
		if limit := p.cfg.MaxSourceTokens * runesPerToken; len(runes) > limit {
			return string(runes[:limit])
		}
		return text
	}
	tokens := p.encoder.Encode(text, nil, nil)
	if len(tokens) <= p.cfg.MaxSourceTokens {
		return text
	}
	p.logger.Debug("source truncated", "tokens", len(tokens), "budget", p.cfg.MaxSourceTokens)
	return p.encoder.Decode(tokens[:p.cfg.MaxSourceTokens])
}

var _ insight.Ingester = (*Pipeline)(nil)
