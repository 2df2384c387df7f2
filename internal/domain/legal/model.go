package legal

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Document is the metadata record for a stored legal document.
type Document struct {
	ID           string `json:"id"`
	OriginalName string `json:"original_name"`
	StoredName   string `json:"stored_name"`
	Client       string `json:"client"`
	Matter       string `json:"matter"`
	Type         string `json:"type"`
	DateUploaded string `json:"date_uploaded"`
	FileSize     string `json:"file_size"`
	Status       string `json:"status"`
	UploadedBy   string `json:"uploaded_by"`

	// StorageKey locates the blob in object storage. Seeded records have
	// none, so downloading them reports a missing file.
	StorageKey string `json:"-"`
}

// Client is a person or business the firm represents.
type Client struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	ActiveMatters int    `json:"active_matters"`
	CreatedBy     string `json:"created_by,omitempty"`
	CreatedDate   string `json:"created_date,omitempty"`
}

// TimeEntry is one billable work record.
type TimeEntry struct {
	ID          int     `json:"id"`
	Date        string  `json:"date"`
	Client      string  `json:"client"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
	Amount      float64 `json:"amount"`
	CreatedBy   string  `json:"created_by,omitempty"`
	CreatedDate string  `json:"created_date,omitempty"`
}

// DocumentStats aggregates document counts.
type DocumentStats struct {
	TotalDocuments int            `json:"total_documents"`
	ByType         map[string]int `json:"by_type"`
	ByClient       map[string]int `json:"by_client"`
}

// TimeStats aggregates billable time.
type TimeStats struct {
	TotalHours   float64 `json:"total_hours"`
	TotalRevenue float64 `json:"total_revenue"`
	AverageRate  float64 `json:"average_rate"`
	EntriesCount int     `json:"entries_count"`
}

// Analytics is the practice-wide report.
type Analytics struct {
	DocumentStats DocumentStats `json:"document_stats"`
	TimeStats     TimeStats     `json:"time_stats"`
}

// DocumentFilter narrows a document listing. "All" means no filter, matching
// the dashboard drop-downs.
type DocumentFilter struct {
	Client string
	Type   string
	Search string
}

// UploadRequest carries a multipart document submission.
type UploadRequest struct {
	Filename   string
	Content    []byte
	Client     string
	Matter     string
	UploadedBy string
}

// DocumentContent is the payload returned for viewing or downloading.
type DocumentContent struct {
	Content  []byte
	Filename string
	MimeType string
}

// TimeEntryInput is the payload for recording billable time.
type TimeEntryInput struct {
	Date        string  `json:"date"`
	Client      string  `json:"client"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
	Rate        float64 `json:"rate"`
}

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".docx": {},
	".txt":  {},
	".png":  {},
	".jpg":  {},
	".jpeg": {},
}

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// AllowedFile reports whether the filename carries a supported extension.
func AllowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	_, ok := allowedExtensions[ext]
	return ok
}

// MimeTypeFor maps a filename to its download content type.
func MimeTypeFor(filename string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mime
	}
	return "application/octet-stream"
}

// ClassifyDocument buckets a document by filename keywords.
func ClassifyDocument(filename string) string {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "contract") || strings.Contains(name, "agreement"):
		return "Contract"
	case strings.Contains(name, "motion") || strings.Contains(name, "complaint"):
		return "Court Motion"
	case strings.Contains(name, "llc") || strings.Contains(name, "incorporation"):
		return "Articles of Incorporation"
	case strings.Contains(name, "lease"):
		return "Lease Agreement"
	case strings.Contains(name, "employment"):
		return "Employment Contract"
	default:
		return "General Document"
	}
}

// FormatFileSize renders a byte count the way the dashboard shows it.
func FormatFileSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	}
}
