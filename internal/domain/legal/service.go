package legal

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/prolexis/analytics/pkg/errors"
	"github.com/prolexis/analytics/pkg/util"
)

// Config drives upload limits for the document manager.
type Config struct {
	MaxUploadBytes int64
}

// Service manages legal documents, clients, and billable time.
type Service interface {
	ListDocuments(ctx context.Context, filter DocumentFilter) ([]Document, error)
	Upload(ctx context.Context, req UploadRequest) (Document, error)
	Download(ctx context.Context, id string) (DocumentContent, error)
	Delete(ctx context.Context, id, userEmail string) error
	ListClients(ctx context.Context) ([]Client, error)
	AddClient(ctx context.Context, name, clientType, createdBy string) (Client, error)
	ListTimeEntries(ctx context.Context, clientFilter string) ([]TimeEntry, error)
	AddTimeEntry(ctx context.Context, input TimeEntryInput, createdBy string) (TimeEntry, error)
	GetAnalytics(ctx context.Context, startDate, endDate string) (Analytics, error)
}

type service struct {
	cfg     Config
	docs    DocumentStore
	clients ClientStore
	entries TimeEntryStore
	storage ObjectStorage
	logger  *slog.Logger
	now     func() time.Time
}

// NewService constructs the legal document service.
func NewService(cfg Config, docs DocumentStore, clients ClientStore, entries TimeEntryStore, storage ObjectStorage, logger *slog.Logger) Service {
	return &service{
		cfg:     cfg,
		docs:    docs,
		clients: clients,
		entries: entries,
		storage: storage,
		logger:  logger.With("component", "legal.service"),
		now:     util.NowUTC,
	}
}

// ListDocuments returns documents narrowed by the dashboard filters.
func (s *service) ListDocuments(ctx context.Context, filter DocumentFilter) ([]Document, error) {
	docs, err := s.docs.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to list documents", err)
	}

	out := make([]Document, 0, len(docs))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, doc := range docs {
		if !matchesFilter(doc.Client, filter.Client) {
			continue
		}
		if !matchesFilter(doc.Type, filter.Type) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(doc.OriginalName), search) &&
			!strings.Contains(strings.ToLower(doc.Client), search) &&
			!strings.Contains(strings.ToLower(doc.Matter), search) {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

// Upload stores the blob and registers the document record.
func (s *service) Upload(ctx context.Context, req UploadRequest) (Document, error) {
	filename := strings.TrimSpace(req.Filename)
	if !AllowedFile(filename) {
		return Document{}, apperrors.Wrap("invalid_input", "file type not allowed", nil)
	}
	if len(req.Content) == 0 {
		return Document{}, apperrors.Wrap("invalid_input", "file content cannot be empty", nil)
	}
	if s.cfg.MaxUploadBytes > 0 && int64(len(req.Content)) > s.cfg.MaxUploadBytes {
		return Document{}, apperrors.Wrap("invalid_input", "file exceeds maximum allowed size", nil)
	}

	now := s.now().UTC()
	id := documentID(filename, now)
	storedName := fmt.Sprintf("%s_%s", id, filename)
	storageKey := "legal/" + storedName

	mime := MimeTypeFor(filename)
	if err := s.storage.Put(ctx, storageKey, req.Content, mime); err != nil {
		return Document{}, apperrors.Wrap("storage_error", "failed to store file", err)
	}

	doc := Document{
		ID:           id,
		OriginalName: filename,
		StoredName:   storedName,
		Client:       strings.TrimSpace(req.Client),
		Matter:       strings.TrimSpace(req.Matter),
		Type:         ClassifyDocument(filename),
		DateUploaded: now.Format(time.RFC3339),
		FileSize:     FormatFileSize(int64(len(req.Content))),
		Status:       "New",
		UploadedBy:   req.UploadedBy,
		StorageKey:   storageKey,
	}
	if err := s.docs.Add(ctx, doc); err != nil {
		return Document{}, apperrors.Wrap("storage_error", "failed to persist document", err)
	}
	s.logger.Info("document uploaded", "document_id", doc.ID, "type", doc.Type, "size", doc.FileSize)
	return doc, nil
}

// Download returns the stored blob for viewing.
func (s *service) Download(ctx context.Context, id string) (DocumentContent, error) {
	doc, found, err := s.docs.Get(ctx, id)
	if err != nil {
		return DocumentContent{}, apperrors.Wrap("storage_error", "failed to load document", err)
	}
	if !found {
		return DocumentContent{}, apperrors.Wrap("not_found", "document not found", nil)
	}
	if doc.StorageKey == "" {
		return DocumentContent{}, apperrors.Wrap("not_found", "document file not found", nil)
	}

	reader, err := s.storage.Get(ctx, doc.StorageKey)
	if err != nil {
		return DocumentContent{}, apperrors.Wrap("not_found", "document file not found", err)
	}
	defer reader.Close()
	content, err := io.ReadAll(reader)
	if err != nil {
		return DocumentContent{}, apperrors.Wrap("storage_error", "failed to read stored file", err)
	}

	return DocumentContent{
		Content:  content,
		Filename: doc.OriginalName,
		MimeType: MimeTypeFor(doc.OriginalName),
	}, nil
}

// Delete removes a document. Only the uploader may delete it.
func (s *service) Delete(ctx context.Context, id, userEmail string) error {
	doc, found, err := s.docs.Get(ctx, id)
	if err != nil {
		return apperrors.Wrap("storage_error", "failed to load document", err)
	}
	if !found {
		return apperrors.Wrap("not_found", "document not found", nil)
	}
	if doc.UploadedBy != userEmail {
		return apperrors.Wrap("permission_denied", "permission denied", nil)
	}

	if doc.StorageKey != "" {
		if err := s.storage.Delete(ctx, doc.StorageKey); err != nil {
			s.logger.Warn("blob delete failed", "document_id", id, "error", err)
		}
	}
	if err := s.docs.Remove(ctx, id); err != nil {
		return apperrors.Wrap("storage_error", "failed to delete document", err)
	}
	return nil
}

// ListClients returns the client roster.
func (s *service) ListClients(ctx context.Context) ([]Client, error) {
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to list clients", err)
	}
	return clients, nil
}

// AddClient registers a new client.
func (s *service) AddClient(ctx context.Context, name, clientType, createdBy string) (Client, error) {
	name = strings.TrimSpace(name)
	clientType = strings.TrimSpace(clientType)
	if name == "" || clientType == "" {
		return Client{}, apperrors.Wrap("invalid_input", "client name and type are required", nil)
	}

	client := Client{
		Name:          name,
		Type:          clientType,
		ActiveMatters: 0,
		CreatedBy:     createdBy,
		CreatedDate:   s.now().UTC().Format(time.RFC3339),
	}
	if err := s.clients.Add(ctx, client); err != nil {
		return Client{}, apperrors.Wrap("storage_error", "failed to add client", err)
	}
	return client, nil
}

// ListTimeEntries returns billable time, optionally narrowed to one client.
func (s *service) ListTimeEntries(ctx context.Context, clientFilter string) ([]TimeEntry, error) {
	entries, err := s.entries.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap("storage_error", "failed to list time entries", err)
	}
	if !hasFilter(clientFilter) {
		return entries, nil
	}
	out := make([]TimeEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Client == clientFilter {
			out = append(out, entry)
		}
	}
	return out, nil
}

// AddTimeEntry records billable time. Amount is derived from hours and rate.
func (s *service) AddTimeEntry(ctx context.Context, input TimeEntryInput, createdBy string) (TimeEntry, error) {
	if err := validateTimeEntry(input); err != nil {
		return TimeEntry{}, err
	}

	entry := TimeEntry{
		Date:        input.Date,
		Client:      input.Client,
		Hours:       input.Hours,
		Description: input.Description,
		Rate:        input.Rate,
		Amount:      input.Hours * input.Rate,
		CreatedBy:   createdBy,
		CreatedDate: s.now().UTC().Format(time.RFC3339),
	}
	saved, err := s.entries.Add(ctx, entry)
	if err != nil {
		return TimeEntry{}, apperrors.Wrap("storage_error", "failed to add time entry", err)
	}
	return saved, nil
}

// GetAnalytics reports document and billing statistics. The optional date
// range narrows time entries only.
func (s *service) GetAnalytics(ctx context.Context, startDate, endDate string) (Analytics, error) {
	start, end, err := parseDateRange(startDate, endDate)
	if err != nil {
		return Analytics{}, err
	}

	docs, err := s.docs.List(ctx)
	if err != nil {
		return Analytics{}, apperrors.Wrap("storage_error", "failed to list documents", err)
	}
	entries, err := s.entries.List(ctx)
	if err != nil {
		return Analytics{}, apperrors.Wrap("storage_error", "failed to list time entries", err)
	}

	docStats := DocumentStats{
		TotalDocuments: len(docs),
		ByType:         map[string]int{},
		ByClient:       map[string]int{},
	}
	for _, doc := range docs {
		docStats.ByType[doc.Type]++
		docStats.ByClient[doc.Client]++
	}

	timeStats := TimeStats{}
	for _, entry := range entries {
		if !inDateRange(entry.Date, start, end) {
			continue
		}
		timeStats.TotalHours += entry.Hours
		timeStats.TotalRevenue += entry.Amount
		timeStats.EntriesCount++
	}
	if timeStats.TotalHours > 0 {
		timeStats.AverageRate = timeStats.TotalRevenue / timeStats.TotalHours
	}

	return Analytics{DocumentStats: docStats, TimeStats: timeStats}, nil
}

func validateTimeEntry(input TimeEntryInput) error {
	required := func(field string) error {
		return apperrors.Wrap("invalid_input", fmt.Sprintf("field %q is required", field), nil)
	}
	if strings.TrimSpace(input.Date) == "" {
		return required("date")
	}
	if strings.TrimSpace(input.Client) == "" {
		return required("client")
	}
	if input.Hours <= 0 {
		return required("hours")
	}
	if strings.TrimSpace(input.Description) == "" {
		return required("description")
	}
	if input.Rate <= 0 {
		return required("rate")
	}
	return nil
}

func matchesFilter(value, filter string) bool {
	if !hasFilter(filter) {
		return true
	}
	return value == filter
}

func hasFilter(filter string) bool {
	return filter != "" && filter != "All"
}

const entryDateLayout = "2006-01-02"

func parseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	var start, end time.Time
	if strings.TrimSpace(startDate) != "" {
		ts, err := time.Parse(entryDateLayout, startDate)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.Wrap("invalid_input", "start_date must be YYYY-MM-DD", err)
		}
		start = ts
	}
	if strings.TrimSpace(endDate) != "" {
		ts, err := time.Parse(entryDateLayout, endDate)
		if err != nil {
			return time.Time{}, time.Time{}, apperrors.Wrap("invalid_input", "end_date must be YYYY-MM-DD", err)
		}
		end = ts
	}
	return start, end, nil
}

// inDateRange keeps entries whose date falls inside the closed range. Entries
// with unparseable dates are kept only when no range is requested.
func inDateRange(date string, start, end time.Time) bool {
	if start.IsZero() && end.IsZero() {
		return true
	}
	ts, err := time.Parse(entryDateLayout, date)
	if err != nil {
		return false
	}
	if !start.IsZero() && ts.Before(start) {
		return false
	}
	if !end.IsZero() && ts.After(end) {
		return false
	}
	return true
}

func documentID(filename string, now time.Time) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%s", filename, now.Format(time.RFC3339Nano))))
	return hex.EncodeToString(sum[:])[:8]
}

var _ Service = (*service)(nil)
