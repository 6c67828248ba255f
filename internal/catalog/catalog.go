// Package catalog provides the read-only query facade over the book store.
package catalog

import (
	"context"
	"fmt"

	"github.com/adenisov/bookstock/internal/store"
)

// Browser defines the read operations exposed to transports.
type Browser interface {
	// FindByName retrieves a single book by its unique name.
	// Returns ErrBookNotFound if no book exists with the given name.
	FindByName(ctx context.Context, name string) (*store.Book, error)

	// List returns all books.
	// Returns an empty slice if no books exist.
	List(ctx context.Context) ([]store.Book, error)
}

// Catalog implements Browser with pure reads through the store.
type Catalog struct {
	store store.BookStore
}

// NewCatalog creates a new Catalog over the given store.
func NewCatalog(bookStore store.BookStore) *Catalog {
	return &Catalog{store: bookStore}
}

var _ Browser = (*Catalog)(nil)

// FindByName retrieves a book by its name.
func (c *Catalog) FindByName(ctx context.Context, name string) (*store.Book, error) {
	book, err := c.store.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch book by name %q: %w", name, err)
	}
	return book, nil
}

// List retrieves all books.
func (c *Catalog) List(ctx context.Context) ([]store.Book, error) {
	books, err := c.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}
	return books, nil
}
