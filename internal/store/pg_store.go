package store

import (
	"context"
	"errors"
	"fmt"

	berrors "github.com/adenisov/bookstock/internal/errors"
	"github.com/adenisov/bookstock/internal/store/db"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements BookStore using PostgreSQL as the data store.
type PgStore struct {
	db *pgxpool.Pool
	q  *db.Queries
}

// NewPgStore creates a new instance of BookStore using a PostgreSQL connection pool.
func NewPgStore(dbp *pgxpool.Pool) *PgStore {
	return &PgStore{
		db: dbp,
		q:  db.New(dbp),
	}
}

// FindByName retrieves a book by its unique name.
// Returns ErrBookNotFound if no book exists with the given name.
func (p *PgStore) FindByName(ctx context.Context, name string) (*Book, error) {
	book, err := p.q.FindBookByName(ctx, name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, berrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to find book by name: %w", err)
	}
	return fromRow(book), nil
}

// Upsert writes the full record keyed by name. The row id assigned on
// creation survives subsequent upserts (ON CONFLICT does not touch it).
func (p *PgStore) Upsert(ctx context.Context, book Book) (*Book, error) {
	id := book.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	row, err := p.q.UpsertBook(ctx, db.UpsertBookParams{
		ID:          id,
		Name:        book.Name,
		Price:       book.Price,
		Quantity:    book.Quantity,
		Description: toText(book.Description),
		ImageUrl:    toText(book.ImageURL),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert book: %w", err)
	}
	return fromRow(row), nil
}

// List retrieves all books ordered by name.
// It returns a slice of books, which may be empty if no books exist.
func (p *PgStore) List(ctx context.Context) ([]Book, error) {
	rows, err := p.q.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	books := make([]Book, len(rows))
	for i, row := range rows {
		books[i] = *fromRow(row)
	}
	return books, nil
}

// SaveUploadRecord persists the URL returned by the media host.
func (p *PgStore) SaveUploadRecord(ctx context.Context, fileURL string) (*UploadRecord, error) {
	row, err := p.q.CreateUploadRecord(ctx, db.CreateUploadRecordParams{
		ID:      uuid.New(),
		FileUrl: fileURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save upload record: %w", err)
	}
	return &UploadRecord{
		ID:        row.ID,
		FileURL:   row.FileUrl,
		CreatedAt: row.CreatedAt.Time,
	}, nil
}

// fromRow converts a db.Book row to the domain Book.
func fromRow(row db.Book) *Book {
	return &Book{
		ID:          row.ID,
		Name:        row.Name,
		Price:       row.Price,
		Quantity:    row.Quantity,
		Description: row.Description.String,
		ImageURL:    row.ImageUrl.String,
	}
}

// toText maps an optional string to a nullable column value.
func toText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
