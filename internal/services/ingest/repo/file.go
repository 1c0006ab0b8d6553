package repo

import (
	"context"
	"sort"
	"time"

	"micdrop/internal/platform/store/file"
	"micdrop/internal/services/ingest/domain"
	listingsrepo "micdrop/internal/services/listings/repo"
)

type fileStore struct{ db *file.DB }

// NewFile constructs a Storage over the flat-file document backend.
// The document schema is owned by the listings repo; both repos mutate the
// same JSON file so a write here must never drop the listing sections
func NewFile(db *file.DB) Storage { return &fileStore{db: db} }

// Append implements Storage
func (s *fileStore) Append(_ context.Context, e domain.LogEntry) error {
	var doc listingsrepo.Document
	return s.db.Update(&doc, func() error {
		var next int64 = 1
		if n := len(doc.IngestLog); n > 0 {
			next = doc.IngestLog[n-1].ID + 1
		}
		doc.IngestLog = append(doc.IngestLog, listingsrepo.IngestEntry{
			ID:        next,
			Source:    e.Source,
			Succeeded: e.Succeeded,
			Message:   e.Message,
			Timestamp: time.Now().UTC(),
		})
		return nil
	})
}

// List implements Storage
func (s *fileStore) List(_ context.Context, q domain.LogQuery) ([]domain.LogEntry, error) {
	var doc listingsrepo.Document
	if err := s.db.View(&doc); err != nil {
		return nil, err
	}

	out := make([]domain.LogEntry, 0, len(doc.IngestLog))
	for _, e := range doc.IngestLog {
		if q.Source != "" && e.Source != q.Source {
			continue
		}
		out = append(out, domain.LogEntry{
			ID:        e.ID,
			Source:    e.Source,
			Succeeded: e.Succeeded,
			Message:   e.Message,
			Timestamp: e.Timestamp,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Timestamp.After(out[j].Timestamp)
		}
		return out[i].ID > out[j].ID
	})
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
