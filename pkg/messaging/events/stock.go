package events

import (
	"encoding/json"
	"time"

	"github.com/adenisov/bookstock/pkg/messaging"
)

// Stock change reasons.
const (
	ReasonRestock = "restock"
	ReasonSell    = "sell"
)

// BookStockChangedEvent is emitted after a committed quantity mutation.
type BookStockChangedEvent struct {
	Name       string    `json:"name"`
	Quantity   int64     `json:"quantity"`
	Delta      int64     `json:"delta"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e BookStockChangedEvent) Subject() string {
	return messaging.BookStockChangedSubject
}

func (e BookStockChangedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
