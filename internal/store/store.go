// Package store provides an interface for book storage operations.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Book represents a single catalog entry. Name is the unique business
// key; Price is held in minor currency units.
type Book struct {
	ID          uuid.UUID
	Name        string
	Price       int64
	Quantity    int64
	Description string
	ImageURL    string
}

// UploadRecord keeps the URL returned by the media host after a
// successful binary upload.
type UploadRecord struct {
	ID        uuid.UUID
	FileURL   string
	CreatedAt time.Time
}

// BookStore is an interface for book storage operations.
// It abstracts the underlying data store, allowing for different implementations (e.g., in-memory, database).
type BookStore interface {
	// FindByName retrieves a single book by its unique name.
	// Returns ErrBookNotFound if no book exists with the given name.
	FindByName(ctx context.Context, name string) (*Book, error)

	// Upsert writes the full record keyed by name: it creates the book
	// if the name is unknown and replaces all mutable fields otherwise.
	// The ID assigned on creation is preserved across upserts.
	Upsert(ctx context.Context, book Book) (*Book, error)

	// List returns all books. The order is stable for a given snapshot.
	// Returns an empty slice if no books exist.
	List(ctx context.Context) ([]Book, error)

	// SaveUploadRecord persists the URL of an uploaded binary asset.
	SaveUploadRecord(ctx context.Context, fileURL string) (*UploadRecord, error)
}
