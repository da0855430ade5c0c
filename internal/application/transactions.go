package application

import "context"

// TxRunner executes a function inside a storage transaction. Repositories
// called with the context passed to fn participate in the same transaction.
type TxRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
