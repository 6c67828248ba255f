package store

import (
	"context"
	"sort"
	"sync"
	"time"

	berrors "github.com/adenisov/bookstock/internal/errors"
	"github.com/google/uuid"
)

// MemoryStore implements BookStore using an in-memory map. It is used
// by unit tests and as a zero-infrastructure fallback.
type MemoryStore struct {
	mu      sync.RWMutex
	books   map[string]Book
	uploads []UploadRecord
}

// NewMemoryStore creates a new in-memory instance of BookStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		books: make(map[string]Book),
	}
}

// FindByName retrieves a book by its unique name.
func (s *MemoryStore) FindByName(_ context.Context, name string) (*Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.books[name]
	if !ok {
		return nil, berrors.ErrBookNotFound
	}
	return &b, nil
}

// Upsert writes the full record keyed by name, preserving the ID
// assigned on creation.
func (s *MemoryStore) Upsert(_ context.Context, book Book) (*Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.books[book.Name]; ok {
		book.ID = existing.ID
	} else if book.ID == uuid.Nil {
		book.ID = uuid.New()
	}
	s.books[book.Name] = book
	return &book, nil
}

// List retrieves all books ordered by name.
func (s *MemoryStore) List(_ context.Context) ([]Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Book, 0, len(s.books))
	for _, b := range s.books {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}

// SaveUploadRecord persists the URL of an uploaded binary asset.
func (s *MemoryStore) SaveUploadRecord(_ context.Context, fileURL string) (*UploadRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := UploadRecord{
		ID:        uuid.New(),
		FileURL:   fileURL,
		CreatedAt: time.Now().UTC(),
	}
	s.uploads = append(s.uploads, record)
	return &record, nil
}

// UploadCount reports how many upload records have been saved.
func (s *MemoryStore) UploadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.uploads)
}
