package legal

import (
	"context"
	"io"
)

// DocumentStore keeps document metadata records.
type DocumentStore interface {
	List(ctx context.Context) ([]Document, error)
	Get(ctx context.Context, id string) (Document, bool, error)
	Add(ctx context.Context, doc Document) error
	Remove(ctx context.Context, id string) error
}

// ClientStore keeps the client roster.
type ClientStore interface {
	List(ctx context.Context) ([]Client, error)
	Add(ctx context.Context, client Client) error
}

// TimeEntryStore keeps billable time records. Add assigns the entry ID.
type TimeEntryStore interface {
	List(ctx context.Context) ([]TimeEntry, error)
	Add(ctx context.Context, entry TimeEntry) (TimeEntry, error)
}

// ObjectStorage stores document blobs.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, mimeType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
