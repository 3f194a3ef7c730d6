package memory

import (
	"context"
	"fmt"
	"sync"

	"gofinances/internal/core"
	ports "gofinances/internal/sheets"
)

// Row is one exported transaction.
type Row struct {
	UserID      string
	Transaction core.Transaction
}

// Exporter keeps exported rows in memory. Used for local runs without a
// spreadsheet and in tests.
type Exporter struct {
	mu   sync.Mutex
	rows []Row
	// Err, when set, is returned by every append.
	Err error
}

var _ ports.TransactionExporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// AppendTransaction stores the row and returns a synthetic row reference.
func (e *Exporter) AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return "", e.Err
	}
	e.rows = append(e.rows, Row{UserID: userID, Transaction: tx})
	return fmt.Sprintf("mem:%d", len(e.rows)), nil
}

// Rows returns a copy of the exported rows in append order.
func (e *Exporter) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Row(nil), e.rows...)
}
