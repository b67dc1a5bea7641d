// Package ports defines the interfaces (contracts) that adapters must implement.
// These are the boundaries of the hexagonal architecture. Domain logic depends
// only on these interfaces and types, never on concrete implementations.
package ports

import (
	"context"
	"errors"
)

// ErrEmptyQuery is returned for queries that are blank after trimming.
// Every transport maps it to a client error rather than resolving it.
var ErrEmptyQuery = errors.New("empty query")

// QAPair is one canned question/response record.
// Question is trimmed and lower-cased; Response is trimmed with case preserved.
// Neither is ever empty once a pair is in a Table.
type QAPair struct {
	Question string `json:"question"`
	Response string `json:"response"`
}

// Table is the ordered, read-only sequence of pairs built by one dataset load.
// Order is observable: exact and prefix lookups return the first match.
// Callers that need a fresh dataset build a new Table and swap the reference;
// a Table is never mutated after construction.
type Table []QAPair

// Len returns the number of pairs.
func (t Table) Len() int {
	return len(t)
}

// DatasetSource supplies the raw dataset text.
// Fetch is the only blocking step of a load and honors ctx cancellation.
type DatasetSource interface {
	// Fetch returns the full dataset text. Any error means the dataset is
	// unavailable and the loader substitutes its built-in table.
	Fetch(ctx context.Context) (string, error)

	// Name identifies the source in logs and load reports
	// (file path, URL, or "embedded").
	Name() string
}
