package core

import "context"

// Transactor runs fn inside a single store transaction.
// The transaction travels in the context handed to fn; repositories called with
// that context take part in it. Nested calls join the outer transaction.
// fn returning an error rolls everything back.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
