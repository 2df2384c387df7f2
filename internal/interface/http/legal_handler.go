package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prolexis/analytics/internal/domain/legal"
	apperrors "github.com/prolexis/analytics/pkg/errors"
)

// ListDocuments returns the document registry narrowed by dashboard filters.
func (h *Handler) ListDocuments(c *gin.Context) {
	filter := legal.DocumentFilter{
		Client: c.Query("client"),
		Type:   c.Query("type"),
		Search: c.Query("search"),
	}
	docs, err := h.legalSvc.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, legalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "total": len(docs)})
}

// UploadDocument stores a multipart document submission.
func (h *Handler) UploadDocument(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
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
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read file", err))
		return
	}

	doc, err := h.legalSvc.Upload(c.Request.Context(), legal.UploadRequest{
		Filename:   fileHeader.Filename,
		Content:    data,
		Client:     c.PostForm("client"),
		Matter:     c.PostForm("matter"),
		UploadedBy: claims.Email,
	})
	if err != nil {
		abortWithError(c, legalError(err))
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// DownloadDocument streams a stored document back to the caller.
func (h *Handler) DownloadDocument(c *gin.Context) {
	content, err := h.legalSvc.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, legalError(err))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", content.Filename))
	c.Data(http.StatusOK, content.MimeType, content.Content)
}

// DeleteDocument removes a document the caller uploaded.
func (h *Handler) DeleteDocument(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	if err := h.legalSvc.Delete(c.Request.Context(), c.Param("id"), claims.Email); err != nil {
		abortWithError(c, legalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
}

// ListClients returns the firm's client roster.
func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.legalSvc.ListClients(c.Request.Context())
	if err != nil {
		abortWithError(c, legalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": clients})
}

type clientPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// AddClient registers a new client.
func (h *Handler) AddClient(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req clientPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	client, err := h.legalSvc.AddClient(c.Request.Context(), req.Name, req.Type, claims.Email)
	if err != nil {
		abortWithError(c, legalError(err))
		return
	}
	c.JSON(http.StatusCreated, client)
}

// ListTimeEntries returns billable time, optionally filtered by client.
func (h *Handler) ListTimeEntries(c *gin.Context) {
	entries, err := h.legalSvc.ListTimeEntries(c.Request.Context(), c.Query("client"))
	if err != nil {
		abortWithError(c, legalError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AddTimeEntry records billable time.
func (h *Handler) AddTimeEntry(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}
	var req legal.TimeEntryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	entry, err := h.legalSvc.AddTimeEntry(c.Request.Context(), req, claims.Email)
	if err != nil {
		abortWithError(c, legalError(err))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// LegalAnalytics aggregates document and billing statistics.
func (h *Handler) LegalAnalytics(c *gin.Context) {
	analytics, err := h.legalSvc.GetAnalytics(c.Request.Context(), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		abortWithError(c, legalError(err))
		return
	}
	c.JSON(http.StatusOK, analytics)
}

func legalError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "legal_failed"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "not_found"):
		status = http.StatusNotFound
		code = "not_found"
	case apperrors.IsCode(err, "permission_denied"):
		status = http.StatusForbidden
		code = "permission_denied"
	case apperrors.IsCode(err, "storage_error"):
		code = "storage_error"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}
