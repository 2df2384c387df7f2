package legalstore

import (
	"context"
	"sort"
	"sync"

	"github.com/prolexis/analytics/internal/domain/legal"
)

// MemoryDocumentStore keeps document records in process memory. It starts
// seeded with the demo practice data the dashboard ships with.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]legal.Document
}

// NewMemoryDocumentStore constructs a seeded document store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	s := &MemoryDocumentStore{docs: make(map[string]legal.Document)}
	for _, doc := range seedDocuments() {
		s.docs[doc.ID] = doc
	}
	return s
}

func seedDocuments() []legal.Document {
	return []legal.Document{
		{
			ID:           "doc001",
			OriginalName: "Divorce_Settlement_Agreement_Smith.pdf",
			StoredName:   "doc001_Divorce_Settlement_Agreement_Smith.pdf",
			Client:       "John Smith",
			Matter:       "Divorce Proceedings",
			Type:         "Settlement Agreement",
			DateUploaded: "2024-01-15",
			FileSize:     "2.1 MB",
			Status:       "Final",
			UploadedBy:   "user@example.com",
		},
		{
			ID:           "doc002",
			OriginalName: "LLC_Formation_TechCorp.pdf",
			StoredName:   "doc002_LLC_Formation_TechCorp.pdf",
			Client:       "TechCorp LLC",
			Matter:       "Business Formation",
			Type:         "Articles of Incorporation",
			DateUploaded: "2024-01-20",
			FileSize:     "1.8 MB",
			Status:       "Draft",
			UploadedBy:   "user@example.com",
		},
	}
}

// List returns documents ordered by upload date.
func (s *MemoryDocumentStore) List(_ context.Context) ([]legal.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]legal.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DateUploaded == out[j].DateUploaded {
			return out[i].ID < out[j].ID
		}
		return out[i].DateUploaded < out[j].DateUploaded
	})
	return out, nil
}

// Get implements legal.DocumentStore.
func (s *MemoryDocumentStore) Get(_ context.Context, id string) (legal.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok, nil
}

// Add implements legal.DocumentStore.
func (s *MemoryDocumentStore) Add(_ context.Context, doc legal.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

// Remove implements legal.DocumentStore.
func (s *MemoryDocumentStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// MemoryClientStore keeps the client roster in process memory.
type MemoryClientStore struct {
	mu      sync.RWMutex
	clients []legal.Client
}

// NewMemoryClientStore constructs a seeded client store.
func NewMemoryClientStore() *MemoryClientStore {
	return &MemoryClientStore{
		clients: []legal.Client{
			{Name: "John Smith", Type: "Individual", ActiveMatters: 1},
			{Name: "TechCorp LLC", Type: "Business", ActiveMatters: 2},
			{Name: "Mary Johnson", Type: "Individual", ActiveMatters: 1},
			{Name: "Sarah Williams", Type: "Individual", ActiveMatters: 1},
			{Name: "ABC Partners", Type: "Business", ActiveMatters: 1},
		},
	}
}

func (s *MemoryClientStore) List(_ context.Context) ([]legal.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]legal.Client, len(s.clients))
	copy(out, s.clients)
	return out, nil
}

func (s *MemoryClientStore) Add(_ context.Context, client legal.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients = append(s.clients, client)
	return nil
}

// MemoryTimeEntryStore keeps billable time in process memory.
type MemoryTimeEntryStore struct {
	mu      sync.RWMutex
	entries []legal.TimeEntry
	nextID  int
}

// NewMemoryTimeEntryStore constructs a seeded time entry store.
func NewMemoryTimeEntryStore() *MemoryTimeEntryStore {
	entries := []legal.TimeEntry{
		{ID: 1, Date: "2024-01-15", Client: "John Smith", Hours: 2.5, Description: "Document review and client consultation", Rate: 250.0, Amount: 625.0},
		{ID: 2, Date: "2024-01-16", Client: "TechCorp LLC", Hours: 1.0, Description: "Contract drafting", Rate: 275.0, Amount: 275.0},
	}
	return &MemoryTimeEntryStore{entries: entries, nextID: len(entries) + 1}
}

func (s *MemoryTimeEntryStore) List(_ context.Context) ([]legal.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]legal.TimeEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Add assigns the next sequential ID and stores the entry.
func (s *MemoryTimeEntryStore) Add(_ context.Context, entry legal.TimeEntry) (legal.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID
	s.nextID++
	s.entries = append(s.entries, entry)
	return entry, nil
}

var (
	_ legal.DocumentStore  = (*MemoryDocumentStore)(nil)
	_ legal.ClientStore    = (*MemoryClientStore)(nil)
	_ legal.TimeEntryStore = (*MemoryTimeEntryStore)(nil)
)
