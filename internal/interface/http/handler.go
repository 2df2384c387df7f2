package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prolexis/analytics/internal/domain/auth"
	"github.com/prolexis/analytics/internal/domain/billing"
	"github.com/prolexis/analytics/internal/domain/insight"
	"github.com/prolexis/analytics/internal/domain/legal"
	"github.com/prolexis/analytics/internal/infra/config"
	apperrors "github.com/prolexis/analytics/pkg/errors"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	insightSvc        insight.Service
	authSvc           auth.Service
	billingSvc        billing.Service
	legalSvc          legal.Service
	postLoginRedirect string
	logger            *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, insightSvc insight.Service, authSvc auth.Service, billingSvc billing.Service, legalSvc legal.Service, logger *slog.Logger) *Handler {
	return &Handler{
		insightSvc:        insightSvc,
		authSvc:           authSvc,
		billingSvc:        billingSvc,
		legalSvc:          legalSvc,
		postLoginRedirect: cfg.Auth.Google.PostLoginRedirectURL,
		logger:            logger.With("component", "http.handler"),
	}
}

// Health reports service liveness for deployment probes.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Prolexis Analytics Platform",
	})
}

// AnalyzeQuestion runs an analysis for a free-form business question.
func (h *Handler) AnalyzeQuestion(c *gin.Context) {
	var req insight.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.runAnalysis(c, func(ctx context.Context) (insight.Analysis, error) {
		return h.insightSvc.AnalyzeQuestion(ctx, req)
	})
}

// AnalyzeText runs an analysis over caller-supplied source text.
func (h *Handler) AnalyzeText(c *gin.Context) {
	var req insight.TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.runAnalysis(c, func(ctx context.Context) (insight.Analysis, error) {
		return h.insightSvc.AnalyzeText(ctx, req)
	})
}

// AnalyzeURL fetches a web page and analyzes its content.
func (h *Handler) AnalyzeURL(c *gin.Context) {
	var req insight.URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	h.runAnalysis(c, func(ctx context.Context) (insight.Analysis, error) {
		return h.insightSvc.AnalyzeURL(ctx, req)
	})
}

// AnalyzeFile accepts a multipart upload and analyzes the extracted text.
func (h *Handler) AnalyzeFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "file is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()
	h.runAnalysis(c, func(ctx context.Context) (insight.Analysis, error) {
		return h.insightSvc.AnalyzeFile(ctx, insight.FileRequest{
			Filename: fileHeader.Filename,
			Reader:   file,
			Question: c.PostForm("question"),
			Keywords: c.PostForm("keywords"),
		})
	})
}

// runAnalysis gates the analysis on the caller's subscription, runs it, and
// consumes quota afterwards. A decoder failure still returns 200 with the
// error field set, and does not consume quota.
func (h *Handler) runAnalysis(c *gin.Context, analyze func(ctx context.Context) (insight.Analysis, error)) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	ctx := c.Request.Context()
	if err := h.billingSvc.Authorize(ctx, claims.Email); err != nil {
		abortWithError(c, subscriptionGateError(err))
		return
	}

	analysis, err := analyze(ctx)
	if err != nil {
		abortWithError(c, analysisError(err))
		return
	}
	if !analysis.Failed() {
		if err := h.billingSvc.RecordUsage(ctx, claims.Email); err != nil {
			h.logger.Warn("record usage failed", "email", claims.Email, "error", err)
		}
	}
	c.JSON(http.StatusOK, analysis)
}

func subscriptionGateError(err error) *HTTPError {
	switch {
	case apperrors.IsCode(err, "no_subscription"):
		return NewHTTPError(http.StatusPaymentRequired, "no_subscription", errMessage(err), err).
			withExtra("upgrade_required", true)
	case apperrors.IsCode(err, "quota_exceeded"):
		return NewHTTPError(http.StatusTooManyRequests, "quota_exceeded", errMessage(err), err).
			withExtra("upgrade_required", true)
	default:
		return NewHTTPError(http.StatusInternalServerError, "subscription_check_failed", errMessage(err), err)
	}
}

func analysisError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "analysis_failed"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "unsupported_file"):
		status = http.StatusBadRequest
		code = "unsupported_file"
	case apperrors.IsCode(err, "fetch_error"):
		status = http.StatusBadRequest
		code = "fetch_failed"
	case apperrors.IsCode(err, "llm_error"):
		status = http.StatusBadGateway
		code = "llm_error"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
