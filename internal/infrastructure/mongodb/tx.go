package mongodb

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Hiuhuedd/migingo-backend/pkg/mongodb"
)

// TxRunner runs functions inside a MongoDB multi-document transaction.
// Repository calls made with the session context participate in it.
type TxRunner struct {
	client *mongodb.CircuitBreakerClient
}

// NewTxRunner creates a new TxRunner
func NewTxRunner(client *mongodb.CircuitBreakerClient) *TxRunner {
	return &TxRunner{client: client}
}

// RunInTransaction executes fn inside a transaction, committing on nil and
// aborting on error
func (t *TxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		return fn(sessCtx)
	})
}
