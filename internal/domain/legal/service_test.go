package legal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/prolexis/analytics/pkg/errors"
)

func newTestService(t *testing.T, docs []Document, entries []TimeEntry) (*service, *stubStorage) {
	t.Helper()
	storage := newStubStorage()
	svc := &service{
		cfg:     Config{MaxUploadBytes: 1 << 20},
		docs:    newStubDocs(docs),
		clients: &stubClients{},
		entries: newStubEntries(entries),
		storage: storage,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     func() time.Time { return time.Date(2024, 2, 1, 9, 30, 0, 0, time.UTC) },
	}
	return svc, storage
}

func sampleDocuments() []Document {
	return []Document{
		{ID: "doc001", OriginalName: "Divorce_Settlement_Agreement_Smith.pdf", Client: "John Smith", Matter: "Divorce Proceedings", Type: "Settlement Agreement", DateUploaded: "2024-01-15", UploadedBy: "user@example.com"},
		{ID: "doc002", OriginalName: "LLC_Formation_TechCorp.pdf", Client: "TechCorp LLC", Matter: "Business Formation", Type: "Articles of Incorporation", DateUploaded: "2024-01-20", UploadedBy: "user@example.com"},
	}
}

func TestListDocumentsFilters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		filter  DocumentFilter
		wantIDs []string
	}{
		{name: "no filter", filter: DocumentFilter{}, wantIDs: []string{"doc001", "doc002"}},
		{name: "all is no filter", filter: DocumentFilter{Client: "All", Type: "All"}, wantIDs: []string{"doc001", "doc002"}},
		{name: "by client", filter: DocumentFilter{Client: "John Smith"}, wantIDs: []string{"doc001"}},
		{name: "by type", filter: DocumentFilter{Type: "Articles of Incorporation"}, wantIDs: []string{"doc002"}},
		{name: "search matches name", filter: DocumentFilter{Search: "divorce"}, wantIDs: []string{"doc001"}},
		{name: "search matches matter", filter: DocumentFilter{Search: "formation"}, wantIDs: []string{"doc002"}},
		{name: "search misses", filter: DocumentFilter{Search: "trademark"}, wantIDs: []string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := newTestService(t, sampleDocuments(), nil)

			docs, err := svc.ListDocuments(context.Background(), tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(docs))
			for _, doc := range docs {
				ids = append(ids, doc.ID)
			}
			require.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestUploadStoresDocument(t *testing.T) {
	svc, storage := newTestService(t, nil, nil)

	doc, err := svc.Upload(context.Background(), UploadRequest{
		Filename:   "Consulting_Agreement_Acme.pdf",
		Content:    []byte("hello"),
		Client:     "Acme Inc",
		Matter:     "Consulting engagement",
		UploadedBy: "lawyer@example.com",
	})
	require.NoError(t, err)
	require.Len(t, doc.ID, 8)
	require.Equal(t, doc.ID+"_Consulting_Agreement_Acme.pdf", doc.StoredName)
	require.Equal(t, "Contract", doc.Type)
	require.Equal(t, "5 B", doc.FileSize)
	require.Equal(t, "New", doc.Status)
	require.Equal(t, "lawyer@example.com", doc.UploadedBy)
	require.Equal(t, "legal/"+doc.StoredName, doc.StorageKey)

	reader, err := storage.Get(context.Background(), doc.StorageKey)
	require.NoError(t, err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), content)

	listed, err := svc.ListDocuments(context.Background(), DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestUploadRejectsBadInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  UploadRequest
	}{
		{name: "unsupported extension", req: UploadRequest{Filename: "malware.exe", Content: []byte("x")}},
		{name: "no extension", req: UploadRequest{Filename: "notes", Content: []byte("x")}},
		{name: "empty content", req: UploadRequest{Filename: "notes.txt"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := newTestService(t, nil, nil)

			_, err := svc.Upload(context.Background(), tt.req)
			require.True(t, apperrors.IsCode(err, "invalid_input"), "got %v", err)
		})
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	svc.cfg.MaxUploadBytes = 4

	_, err := svc.Upload(context.Background(), UploadRequest{
		Filename: "notes.txt",
		Content:  []byte("hello"),
	})
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestDownloadReturnsContent(t *testing.T) {
	svc, storage := newTestService(t, nil, nil)
	require.NoError(t, storage.Put(context.Background(), "legal/abc_brief.pdf", []byte("pdf bytes"), "application/pdf"))
	require.NoError(t, svc.docs.Add(context.Background(), Document{
		ID:           "abc",
		OriginalName: "brief.pdf",
		StorageKey:   "legal/abc_brief.pdf",
	}))

	content, err := svc.Download(context.Background(), "abc")
	require.NoError(t, err)
	require.Equal(t, []byte("pdf bytes"), content.Content)
	require.Equal(t, "brief.pdf", content.Filename)
	require.Equal(t, "application/pdf", content.MimeType)
}

func TestDownloadUnknownDocument(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	_, err := svc.Download(context.Background(), "nope")
	require.True(t, apperrors.IsCode(err, "not_found"))
}

func TestDownloadSeededDocumentHasNoFile(t *testing.T) {
	svc, _ := newTestService(t, sampleDocuments(), nil)

	_, err := svc.Download(context.Background(), "doc001")
	require.True(t, apperrors.IsCode(err, "not_found"))
	require.Contains(t, err.Error(), "document file not found")
}

func TestDeleteRequiresUploader(t *testing.T) {
	svc, _ := newTestService(t, sampleDocuments(), nil)

	err := svc.Delete(context.Background(), "doc001", "intruder@example.com")
	require.True(t, apperrors.IsCode(err, "permission_denied"))

	require.NoError(t, svc.Delete(context.Background(), "doc001", "user@example.com"))

	_, found, err := svc.docs.Get(context.Background(), "doc001")
	require.NoError(t, err)
	require.False(t, found)
}

func TestDeleteRemovesBlob(t *testing.T) {
	svc, storage := newTestService(t, nil, nil)
	require.NoError(t, storage.Put(context.Background(), "legal/abc_brief.pdf", []byte("pdf"), "application/pdf"))
	require.NoError(t, svc.docs.Add(context.Background(), Document{
		ID:         "abc",
		UploadedBy: "lawyer@example.com",
		StorageKey: "legal/abc_brief.pdf",
	}))

	require.NoError(t, svc.Delete(context.Background(), "abc", "lawyer@example.com"))

	_, err := storage.Get(context.Background(), "legal/abc_brief.pdf")
	require.Error(t, err)
}

func TestAddClientValidatesInput(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)

	_, err := svc.AddClient(context.Background(), "", "Business", "lawyer@example.com")
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	_, err = svc.AddClient(context.Background(), "Acme Inc", "  ", "lawyer@example.com")
	require.True(t, apperrors.IsCode(err, "invalid_input"))

	client, err := svc.AddClient(context.Background(), "Acme Inc", "Business", "lawyer@example.com")
	require.NoError(t, err)
	require.Equal(t, "Acme Inc", client.Name)
	require.Zero(t, client.ActiveMatters)
	require.Equal(t, "lawyer@example.com", client.CreatedBy)

	clients, err := svc.ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 1)
}

func sampleEntries() []TimeEntry {
	return []TimeEntry{
		{ID: 1, Date: "2024-01-15", Client: "John Smith", Hours: 2.5, Description: "Document review and client consultation", Rate: 250.0, Amount: 625.0},
		{ID: 2, Date: "2024-01-16", Client: "TechCorp LLC", Hours: 1.0, Description: "Contract drafting", Rate: 275.0, Amount: 275.0},
	}
}

func TestListTimeEntriesByClient(t *testing.T) {
	svc, _ := newTestService(t, nil, sampleEntries())

	entries, err := svc.ListTimeEntries(context.Background(), "John Smith")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1, entries[0].ID)

	entries, err = svc.ListTimeEntries(context.Background(), "All")
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestAddTimeEntryComputesAmount(t *testing.T) {
	svc, _ := newTestService(t, nil, sampleEntries())

	entry, err := svc.AddTimeEntry(context.Background(), TimeEntryInput{
		Date:        "2024-02-01",
		Client:      "Acme Inc",
		Hours:       3,
		Description: "Deposition prep",
		Rate:        300,
	}, "lawyer@example.com")
	require.NoError(t, err)
	require.Equal(t, 3, entry.ID)
	require.InDelta(t, 900.0, entry.Amount, 1e-9)
}

func TestAddTimeEntryRequiresFields(t *testing.T) {
	t.Parallel()

	valid := TimeEntryInput{Date: "2024-02-01", Client: "Acme Inc", Hours: 1, Description: "Call", Rate: 200}

	tests := []struct {
		name   string
		mutate func(*TimeEntryInput)
		field  string
	}{
		{name: "date", mutate: func(in *TimeEntryInput) { in.Date = " " }, field: "date"},
		{name: "client", mutate: func(in *TimeEntryInput) { in.Client = "" }, field: "client"},
		{name: "hours", mutate: func(in *TimeEntryInput) { in.Hours = 0 }, field: "hours"},
		{name: "description", mutate: func(in *TimeEntryInput) { in.Description = "" }, field: "description"},
		{name: "rate", mutate: func(in *TimeEntryInput) { in.Rate = 0 }, field: "rate"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, _ := newTestService(t, nil, nil)

			input := valid
			tt.mutate(&input)
			_, err := svc.AddTimeEntry(context.Background(), input, "lawyer@example.com")
			require.True(t, apperrors.IsCode(err, "invalid_input"))
			require.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestGetAnalyticsAggregates(t *testing.T) {
	svc, _ := newTestService(t, sampleDocuments(), sampleEntries())

	report, err := svc.GetAnalytics(context.Background(), "", "")
	require.NoError(t, err)
	require.Equal(t, 2, report.DocumentStats.TotalDocuments)
	require.Equal(t, 1, report.DocumentStats.ByType["Settlement Agreement"])
	require.Equal(t, 1, report.DocumentStats.ByClient["TechCorp LLC"])
	require.InDelta(t, 3.5, report.TimeStats.TotalHours, 1e-9)
	require.InDelta(t, 900.0, report.TimeStats.TotalRevenue, 1e-9)
	require.InDelta(t, 900.0/3.5, report.TimeStats.AverageRate, 1e-9)
	require.Equal(t, 2, report.TimeStats.EntriesCount)
}

func TestGetAnalyticsDateRange(t *testing.T) {
	svc, _ := newTestService(t, nil, sampleEntries())

	report, err := svc.GetAnalytics(context.Background(), "2024-01-16", "")
	require.NoError(t, err)
	require.Equal(t, 1, report.TimeStats.EntriesCount)
	require.InDelta(t, 275.0, report.TimeStats.TotalRevenue, 1e-9)

	report, err = svc.GetAnalytics(context.Background(), "2024-01-01", "2024-01-15")
	require.NoError(t, err)
	require.Equal(t, 1, report.TimeStats.EntriesCount)
	require.InDelta(t, 625.0, report.TimeStats.TotalRevenue, 1e-9)

	_, err = svc.GetAnalytics(context.Background(), "yesterday", "")
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

type stubDocs struct {
	docs  map[string]Document
	order []string
}

func newStubDocs(seed []Document) *stubDocs {
	s := &stubDocs{docs: make(map[string]Document)}
	for _, doc := range seed {
		s.docs[doc.ID] = doc
		s.order = append(s.order, doc.ID)
	}
	return s
}

func (s *stubDocs) List(_ context.Context) ([]Document, error) {
	out := make([]Document, 0, len(s.order))
	for _, id := range s.order {
		if doc, ok := s.docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *stubDocs) Get(_ context.Context, id string) (Document, bool, error) {
	doc, ok := s.docs[id]
	return doc, ok, nil
}

func (s *stubDocs) Add(_ context.Context, doc Document) error {
	if _, ok := s.docs[doc.ID]; !ok {
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc
	return nil
}

func (s *stubDocs) Remove(_ context.Context, id string) error {
	delete(s.docs, id)
	return nil
}

type stubClients struct {
	clients []Client
}

func (s *stubClients) List(_ context.Context) ([]Client, error) {
	return append([]Client(nil), s.clients...), nil
}

func (s *stubClients) Add(_ context.Context, client Client) error {
	s.clients = append(s.clients, client)
	return nil
}

type stubEntries struct {
	entries []TimeEntry
	nextID  int
}

func newStubEntries(seed []TimeEntry) *stubEntries {
	return &stubEntries{entries: seed, nextID: len(seed) + 1}
}

func (s *stubEntries) List(_ context.Context) ([]TimeEntry, error) {
	return append([]TimeEntry(nil), s.entries...), nil
}

func (s *stubEntries) Add(_ context.Context, entry TimeEntry) (TimeEntry, error) {
	entry.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, entry)
	return entry, nil
}

type stubStorage struct {
	blobs map[string][]byte
}

func newStubStorage() *stubStorage {
	return &stubStorage{blobs: make(map[string][]byte)}
}

func (s *stubStorage) Put(_ context.Context, key string, data []byte, _ string) error {
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *stubStorage) Get(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("blob not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	delete(s.blobs, key)
	return nil
}
