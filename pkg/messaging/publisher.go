package messaging

import (
	"context"
)

const BookStockChangedSubject = "books.stock.changed"

type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
