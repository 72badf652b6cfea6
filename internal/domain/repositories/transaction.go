package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager runs a function inside a single storage transaction.
// The counter reconcile pass and project updates use it; the folder and
// project delete cascades are two separate steps.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
