package database

import "context"

// Transactor runs fn as a single unit of work. Repositories invoked with the
// context handed to fn join the same transaction; if fn returns an error (or
// panics) every write made through that context is rolled back.
//
// Calling WithinTransaction with a context that already carries a transaction
// joins the outer one instead of opening a nested transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
