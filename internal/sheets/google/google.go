package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"gofinances/internal/core"
	ports "gofinances/internal/sheets"
)

// Config selects the target spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID      string
	SheetName          string
	ServiceAccountFile string
	ServiceAccountJSON string
	Catalog            core.Catalog
	Location           *time.Location
}

// Exporter writes one row per transaction into a year-prefixed sheet,
// e.g. "2024 Transactions".
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	catalog       core.Catalog
	loc           *time.Location
}

var _ ports.TransactionExporter = (*Exporter)(nil)

// NewExporter builds a Sheets client from service account credentials.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	credentialsJSON, err := readCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets exporter ready",
		"component", "sheets",
		"spreadsheet_id", cfg.SpreadsheetID,
		"sheet", cfg.SheetName)

	return NewExporterWithService(svc, cfg)
}

// NewExporterWithService wraps an existing service.
func NewExporterWithService(svc *gsheet.Service, cfg Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = "Transactions"
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = core.DefaultCatalog()
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Exporter{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     name,
		catalog:       catalog,
		loc:           loc,
	}, nil
}

func readCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

// AppendTransaction appends tx below the last row of the sheet for its year.
func (e *Exporter) AppendTransaction(ctx context.Context, userID string, tx core.Transaction) (string, error) {
	if e.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, err := transactionRow(userID, tx, e.catalog, e.loc)
	if err != nil {
		return "", err
	}

	sheet := yearPrefixedName(e.sheetName, tx.Date.In(e.loc).Year())
	rng := fmt.Sprintf("'%s'!A:F", sheet)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	resp, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", sheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	slog.InfoContext(ctx, "Exported transaction to sheet",
		"component", "sheets",
		"user_id", userID,
		"transaction_id", tx.ID,
		"sheets_ref", ref)

	return ref, nil
}
