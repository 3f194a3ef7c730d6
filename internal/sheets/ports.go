// Package sheets defines the outbound spreadsheet export port.
package sheets

import (
	"context"

	"gofinances/internal/core"
)

// TransactionExporter appends a stored transaction to an external
// spreadsheet and returns a reference to the written row.
type TransactionExporter interface {
	AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (rowRef string, err error)
}
