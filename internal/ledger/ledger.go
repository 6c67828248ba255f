// Package ledger implements the inventory ledger: the only writer of
// book quantities. It serializes mutations per book name and enforces
// that a quantity is never negative, even transiently.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	berrors "github.com/adenisov/bookstock/internal/errors"
	"github.com/adenisov/bookstock/internal/store"
	"github.com/adenisov/bookstock/pkg/messaging"
	"github.com/adenisov/bookstock/pkg/messaging/events"
)

// Service defines the inventory mutations exposed to transports.
type Service interface {
	// Restock creates a book on first use of a name and otherwise adds
	// quantity to the existing record. Price, description and image are
	// only honored on creation; a restock of an existing book never
	// overwrites them.
	Restock(ctx context.Context, params RestockParams) (*store.Book, error)

	// Sell decrements a book's quantity, bounded by availability.
	// Returns ErrBookNotFound for an unknown name and
	// *InsufficientStockError when the request exceeds stock.
	Sell(ctx context.Context, name string, quantity int64) (*store.Book, error)

	// GetAll returns all books. No mutation.
	GetAll(ctx context.Context) ([]store.Book, error)
}

// RestockParams carries the arguments of a Restock call. Description
// and ImageURL are optional; ImageURL is the URL obtained from the
// media host before the ledger is ever involved.
type RestockParams struct {
	Name        string
	Quantity    int64
	Price       int64
	Description string
	ImageURL    string
}

// Ledger implements Service on top of a BookStore. A fixed shard table
// of mutexes gives every name an exclusive read-modify-write section;
// operations on different names proceed in parallel.
type Ledger struct {
	store     store.BookStore
	locks     *keyLocks
	publisher messaging.Publisher
	logger    *slog.Logger
}

// NewLedger creates a Ledger over the given store. publisher may be nil,
// in which case stock events are not emitted.
func NewLedger(bookStore store.BookStore, publisher messaging.Publisher, logger *slog.Logger) *Ledger {
	return &Ledger{
		store:     bookStore,
		locks:     newKeyLocks(defaultShardCount),
		publisher: publisher,
		logger:    logger.With("component", "ledger"),
	}
}

var _ Service = (*Ledger)(nil)

// Restock creates or replenishes a book under the name's critical section.
func (l *Ledger) Restock(ctx context.Context, params RestockParams) (*store.Book, error) {
	if params.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if params.Quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	mu := l.locks.shard(params.Name)
	mu.Lock()
	defer mu.Unlock()

	existing, err := l.store.FindByName(ctx, params.Name)
	switch {
	case err == nil:
		// Only quantity accumulates; the rest of the record is kept as is.
		updated := *existing
		updated.Quantity += params.Quantity
		committed, err := l.store.Upsert(ctx, updated)
		if err != nil {
			return nil, fmt.Errorf("failed to restock %q: %w", params.Name, err)
		}
		l.publishStockChanged(ctx, committed, params.Quantity, events.ReasonRestock)
		return committed, nil

	case errors.Is(err, berrors.ErrBookNotFound):
		if params.Price < 0 {
			return nil, &ValidationError{Field: "price", Reason: "must not be negative"}
		}
		created, err := l.store.Upsert(ctx, store.Book{
			Name:        params.Name,
			Price:       params.Price,
			Quantity:    params.Quantity,
			Description: params.Description,
			ImageURL:    params.ImageURL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create %q: %w", params.Name, err)
		}
		l.publishStockChanged(ctx, created, params.Quantity, events.ReasonRestock)
		return created, nil

	default:
		return nil, fmt.Errorf("failed to read %q: %w", params.Name, err)
	}
}

// Sell decrements a book's quantity under the name's critical section.
func (l *Ledger) Sell(ctx context.Context, name string, quantity int64) (*store.Book, error) {
	if name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if quantity <= 0 {
		return nil, &ValidationError{Field: "quantity", Reason: "must be positive"}
	}

	mu := l.locks.shard(name)
	mu.Lock()
	defer mu.Unlock()

	existing, err := l.store.FindByName(ctx, name)
	if err != nil {
		if errors.Is(err, berrors.ErrBookNotFound) {
			return nil, berrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	if existing.Quantity < quantity {
		return nil, &InsufficientStockError{
			Name:      name,
			Available: existing.Quantity,
			Requested: quantity,
		}
	}

	updated := *existing
	updated.Quantity -= quantity
	committed, err := l.store.Upsert(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to sell %q: %w", name, err)
	}
	l.publishStockChanged(ctx, committed, -quantity, events.ReasonSell)
	return committed, nil
}

// GetAll returns all books. Delegates to the store; no mutation.
func (l *Ledger) GetAll(ctx context.Context) ([]store.Book, error) {
	books, err := l.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// publishStockChanged emits a stock event after a committed mutation.
// Publish failures are logged and never fail the operation itself.
func (l *Ledger) publishStockChanged(ctx context.Context, book *store.Book, delta int64, reason string) {
	if l.publisher == nil {
		return
	}
	event := events.BookStockChangedEvent{
		Name:       book.Name,
		Quantity:   book.Quantity,
		Delta:      delta,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	}
	if err := l.publisher.Publish(ctx, event); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish stock event",
			"name", book.Name, "reason", reason, "error", err)
	}
}
