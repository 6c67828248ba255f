package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	berrors "github.com/adenisov/bookstock/internal/errors"
	"github.com/adenisov/bookstock/internal/store"
	"github.com/adenisov/bookstock/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// failingStore simulates storage-layer failures.
type failingStore struct {
	book      *store.Book
	findErr   error
	upsertErr error
	listErr   error
}

func (f *failingStore) FindByName(_ context.Context, _ string) (*store.Book, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.book, nil
}

func (f *failingStore) Upsert(_ context.Context, _ store.Book) (*store.Book, error) {
	return nil, f.upsertErr
}

func (f *failingStore) List(_ context.Context) ([]store.Book, error) {
	return nil, f.listErr
}

func (f *failingStore) SaveUploadRecord(_ context.Context, _ string) (*store.UploadRecord, error) {
	return nil, errors.New("not implemented")
}

// capturingPublisher records published events.
type capturingPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
	err    error
}

func (p *capturingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *capturingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func Test_Ledger_Restock_Validation(t *testing.T) {
	testCases := []struct {
		name          string
		params        RestockParams
		expectedField string
	}{
		{
			name:          "Error - empty name",
			params:        RestockParams{Name: "", Quantity: 5, Price: 100},
			expectedField: "name",
		},
		{
			name:          "Error - zero quantity",
			params:        RestockParams{Name: "Atlas", Quantity: 0, Price: 100},
			expectedField: "quantity",
		},
		{
			name:          "Error - negative quantity",
			params:        RestockParams{Name: "Atlas", Quantity: -3, Price: 100},
			expectedField: "quantity",
		},
		{
			name:          "Error - negative price on creation",
			params:        RestockParams{Name: "Atlas", Quantity: 5, Price: -1},
			expectedField: "price",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			ledger := NewLedger(store.NewMemoryStore(), nil, testLogger())
			// when
			book, err := ledger.Restock(context.Background(), tc.params)
			// then
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.expectedField, validationErr.Field)
			assert.Nil(t, book)
		})
	}
}

func Test_Ledger_Restock_CreatesOnFirstUse(t *testing.T) {
	// given
	ledger := NewLedger(store.NewMemoryStore(), nil, testLogger())
	// when
	book, err := ledger.Restock(context.Background(), RestockParams{
		Name:        "Atlas",
		Quantity:    5,
		Price:       1000,
		Description: "world atlas",
		ImageURL:    "https://media.example.com/atlas.png",
	})
	// then
	require.NoError(t, err)
	assert.Equal(t, "Atlas", book.Name)
	assert.Equal(t, int64(5), book.Quantity)
	assert.Equal(t, int64(1000), book.Price)
	assert.Equal(t, "world atlas", book.Description)
	assert.Equal(t, "https://media.example.com/atlas.png", book.ImageURL)
}

func Test_Ledger_Restock_AccumulatesQuantityOnly(t *testing.T) {
	// given
	memStore := store.NewMemoryStore()
	ledger := NewLedger(memStore, nil, testLogger())
	_, err := ledger.Restock(context.Background(), RestockParams{
		Name: "X", Quantity: 5, Price: 10, Description: "first",
	})
	require.NoError(t, err)
	// when: a later restock supplies different price, description and image
	book, err := ledger.Restock(context.Background(), RestockParams{
		Name: "X", Quantity: 3, Price: 999, Description: "second", ImageURL: "https://other",
	})
	// then: only quantity accumulates
	require.NoError(t, err)
	assert.Equal(t, int64(8), book.Quantity)
	assert.Equal(t, int64(10), book.Price)
	assert.Equal(t, "first", book.Description)
	assert.Empty(t, book.ImageURL)
}

func Test_Ledger_Restock_PreservesID(t *testing.T) {
	// given
	ledger := NewLedger(store.NewMemoryStore(), nil, testLogger())
	first, err := ledger.Restock(context.Background(), RestockParams{Name: "X", Quantity: 1, Price: 10})
	require.NoError(t, err)
	// when
	second, err := ledger.Restock(context.Background(), RestockParams{Name: "X", Quantity: 1, Price: 10})
	// then
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func Test_Ledger_Restock_StorageError(t *testing.T) {
	ErrStore := errors.New("store is down")
	testCases := []struct {
		name      string
		mockStore *failingStore
	}{
		{
			name:      "Error - read fails",
			mockStore: &failingStore{findErr: ErrStore},
		},
		{
			name:      "Error - write fails",
			mockStore: &failingStore{findErr: berrors.ErrBookNotFound, upsertErr: ErrStore},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			ledger := NewLedger(tc.mockStore, nil, testLogger())
			// when
			book, err := ledger.Restock(context.Background(), RestockParams{Name: "X", Quantity: 1, Price: 10})
			// then
			assert.ErrorIs(t, err, ErrStore)
			assert.Nil(t, book)
		})
	}
}

func Test_Ledger_Sell(t *testing.T) {
	testCases := []struct {
		name             string
		initialQuantity  int64
		sellQuantity     int64
		seed             bool
		expectedQuantity int64
		expectNotFound   bool
		expectShortStock bool
	}{
		{
			name:             "Success - partial sale",
			seed:             true,
			initialQuantity:  10,
			sellQuantity:     4,
			expectedQuantity: 6,
		},
		{
			name:             "Success - sell everything",
			seed:             true,
			initialQuantity:  10,
			sellQuantity:     10,
			expectedQuantity: 0,
		},
		{
			name:           "Error - unknown book",
			seed:           false,
			sellQuantity:   1,
			expectNotFound: true,
		},
		{
			name:             "Error - insufficient stock",
			seed:             true,
			initialQuantity:  6,
			sellQuantity:     10,
			expectShortStock: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			memStore := store.NewMemoryStore()
			ledger := NewLedger(memStore, nil, testLogger())
			if tc.seed {
				_, err := ledger.Restock(context.Background(), RestockParams{Name: "X", Quantity: tc.initialQuantity, Price: 10})
				require.NoError(t, err)
			}
			// when
			book, err := ledger.Sell(context.Background(), "X", tc.sellQuantity)
			// then
			if tc.expectNotFound {
				assert.ErrorIs(t, err, berrors.ErrBookNotFound)
				return
			}
			if tc.expectShortStock {
				var stockErr *InsufficientStockError
				require.ErrorAs(t, err, &stockErr)
				assert.Equal(t, tc.initialQuantity, stockErr.Available)
				assert.Equal(t, tc.sellQuantity, stockErr.Requested)
				// a rejected sale leaves the quantity unchanged
				unchanged, err := memStore.FindByName(context.Background(), "X")
				require.NoError(t, err)
				assert.Equal(t, tc.initialQuantity, unchanged.Quantity)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedQuantity, book.Quantity)
		})
	}
}

func Test_Ledger_EndToEnd(t *testing.T) {
	// given
	ledger := NewLedger(store.NewMemoryStore(), nil, testLogger())
	ctx := context.Background()

	// when: create "Atlas" with 10 copies at 25.00
	created, err := ledger.Restock(ctx, RestockParams{Name: "Atlas", Quantity: 10, Price: 2500})
	// then
	require.NoError(t, err)
	assert.Equal(t, "Atlas", created.Name)
	assert.Equal(t, int64(10), created.Quantity)
	assert.Equal(t, int64(2500), created.Price)

	// when: sell 4
	sold, err := ledger.Sell(ctx, "Atlas", 4)
	// then
	require.NoError(t, err)
	assert.Equal(t, int64(6), sold.Quantity)

	// when: oversell
	_, err = ledger.Sell(ctx, "Atlas", 10)
	// then
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(6), stockErr.Available)
	assert.Equal(t, int64(10), stockErr.Requested)

	// and: quantity is untouched by the failed sale
	remaining, err := ledger.Sell(ctx, "Atlas", 6)
	require.NoError(t, err)
	assert.Equal(t, int64(0), remaining.Quantity)
}

func Test_Ledger_ConcurrentSells(t *testing.T) {
	for _, n := range []int{10, 100, 1000} {
		t.Run(fmt.Sprintf("N=%d", n), func(t *testing.T) {
			// given: a book with exactly n copies
			memStore := store.NewMemoryStore()
			ledger := NewLedger(memStore, nil, testLogger())
			_, err := ledger.Restock(context.Background(), RestockParams{Name: "X", Quantity: int64(n), Price: 10})
			require.NoError(t, err)

			// when: n concurrent unit sells
			var wg sync.WaitGroup
			errs := make(chan error, n)
			for range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := ledger.Sell(context.Background(), "X", 1)
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)

			// then: every sale succeeded and the final quantity is 0
			for err := range errs {
				require.NoError(t, err)
			}
			book, err := memStore.FindByName(context.Background(), "X")
			require.NoError(t, err)
			assert.Equal(t, int64(0), book.Quantity)
		})
	}
}

func Test_Ledger_ConcurrentSellAndRestock(t *testing.T) {
	// given
	memStore := store.NewMemoryStore()
	ledger := NewLedger(memStore, nil, testLogger())
	_, err := ledger.Restock(context.Background(), RestockParams{Name: "X", Quantity: 100, Price: 10})
	require.NoError(t, err)

	// when: 100 unit sells race with 50 unit restocks
	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = ledger.Sell(context.Background(), "X", 1)
		}()
	}
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Restock(context.Background(), RestockParams{Name: "X", Quantity: 1, Price: 10})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// then: no update was lost
	book, err := memStore.FindByName(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, int64(50), book.Quantity)
}

// gatedStore delays reads of a single name until released, so tests can
// hold one book's critical section open.
type gatedStore struct {
	store.BookStore
	gatedName string
	release   chan struct{}
}

func (g *gatedStore) FindByName(ctx context.Context, name string) (*store.Book, error) {
	if name == g.gatedName {
		<-g.release
	}
	return g.BookStore.FindByName(ctx, name)
}

func Test_Ledger_KeyIndependence(t *testing.T) {
	// given: two names mapped to different lock shards
	memStore := store.NewMemoryStore()
	names := []string{"Atlas", "Odyssey", "Ulysses", "Dune", "Solaris"}
	locks := newKeyLocks(defaultShardCount)
	slow, fast := names[0], ""
	for _, candidate := range names[1:] {
		if locks.shard(candidate) != locks.shard(slow) {
			fast = candidate
			break
		}
	}
	require.NotEmpty(t, fast, "no candidate name hashed to a different shard")

	gated := &gatedStore{BookStore: memStore, gatedName: slow, release: make(chan struct{})}
	ledger := NewLedger(gated, nil, testLogger())
	_, err := ledger.Restock(context.Background(), RestockParams{Name: fast, Quantity: 5, Price: 10})
	require.NoError(t, err)

	// when: a sell on the slow name is stuck inside its critical section
	slowDone := make(chan struct{})
	go func() {
		defer close(slowDone)
		_, _ = ledger.Sell(context.Background(), slow, 1)
	}()

	// then: a sell on the other name completes while the first is blocked
	fastDone := make(chan struct{})
	go func() {
		defer close(fastDone)
		_, err := ledger.Sell(context.Background(), fast, 1)
		assert.NoError(t, err)
	}()

	select {
	case <-fastDone:
	case <-time.After(2 * time.Second):
		t.Fatal("sell on an unrelated name blocked behind another key's critical section")
	}

	close(gated.release)
	<-slowDone
}

func Test_Ledger_GetAll(t *testing.T) {
	// given
	memStore := store.NewMemoryStore()
	ledger := NewLedger(memStore, nil, testLogger())
	for _, name := range []string{"B", "A"} {
		_, err := ledger.Restock(context.Background(), RestockParams{Name: name, Quantity: 1, Price: 10})
		require.NoError(t, err)
	}
	// when
	books, err := ledger.GetAll(context.Background())
	// then
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "A", books[0].Name)
	assert.Equal(t, "B", books[1].Name)
}

func Test_Ledger_PublishesStockEvents(t *testing.T) {
	// given
	publisher := &capturingPublisher{}
	ledger := NewLedger(store.NewMemoryStore(), publisher, testLogger())
	// when
	_, err := ledger.Restock(context.Background(), RestockParams{Name: "X", Quantity: 5, Price: 10})
	require.NoError(t, err)
	_, err = ledger.Sell(context.Background(), "X", 2)
	require.NoError(t, err)
	// then
	assert.Equal(t, 2, publisher.count())
}

func Test_Ledger_PublishFailureDoesNotFailOperation(t *testing.T) {
	// given
	publisher := &capturingPublisher{err: errors.New("broker unavailable")}
	ledger := NewLedger(store.NewMemoryStore(), publisher, testLogger())
	// when
	book, err := ledger.Restock(context.Background(), RestockParams{Name: "X", Quantity: 5, Price: 10})
	// then
	require.NoError(t, err)
	assert.Equal(t, int64(5), book.Quantity)
}
