// Package session tracks each user's conversational position between
// webhook calls. State is keyed by phone number, overwritten wholesale on
// every menu transition, and expires after a configured TTL.
package session

import "context"

// Menu identifies the conversational position of a user.
type Menu string

const (
	MenuMain             Menu = "main"
	MenuOrderQuery       Menu = "order_query"
	MenuOrderNumberInput Menu = "order_number_input"
	MenuStockQuery       Menu = "stock_query"
	MenuStoreSelection   Menu = "multiple_order_selection"
	MenuCompleted        Menu = "completed"
)

// State is one user's conversation state. Only the fields the current
// menu declares are meaningful; transitions always write a freshly
// constructed State so no field leaks across flows.
type State struct {
	Menu Menu `json:"menu"`

	// Category is set while collecting order numbers.
	Category string `json:"category,omitempty"`

	// Stores and Qualities are carried through multi-store selection.
	Stores    []string `json:"stores,omitempty"`
	Qualities []string `json:"qualities,omitempty"`
}

// Store persists conversation state per user key.
type Store interface {
	Get(ctx context.Context, key string) (State, bool, error)
	Set(ctx context.Context, key string, state State) error
	Delete(ctx context.Context, key string) error
}
