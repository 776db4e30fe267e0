package sheets

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/mtrella/outlay/internal/model"
)

// header is the first row written when the target sheet is empty.
var header = []any{"Date", "Description", "Category", "Amount", "Currency", "Provenance", "Confidence", "Comment"}

// Exporter appends finalized expenses to a Google spreadsheet.
type Exporter struct {
	svc    *sheets.Service
	config Config
}

// NewExporter creates an exporter authenticated per the config.
func NewExporter(ctx context.Context, config Config) (*Exporter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid sheets config: %w", err)
	}

	svc, err := newSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Exporter{svc: svc, config: config}, nil
}

func newSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	if config.ServiceAccountPath != "" {
		return sheets.NewService(ctx,
			option.WithCredentialsFile(config.ServiceAccountPath),
			option.WithScopes(sheets.SpreadsheetsScope))
	}

	oauthConfig := &oauth2.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
	token := &oauth2.Token{RefreshToken: config.RefreshToken}
	return sheets.NewService(ctx,
		option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
}

// Export appends the expenses to the configured sheet, writing the header
// row first when the sheet is empty.
func (e *Exporter) Export(ctx context.Context, expenses []model.Expense) error {
	if len(expenses) == 0 {
		return nil
	}

	readRange := fmt.Sprintf("%s!A1:A1", e.config.SheetName)
	existing, err := e.svc.Spreadsheets.Values.Get(e.config.SpreadsheetID, readRange).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", e.config.SheetName, err)
	}

	values := buildRows(expenses)
	if len(existing.Values) == 0 {
		values = append([][]any{header}, values...)
	}

	_, err = e.svc.Spreadsheets.Values.Append(
		e.config.SpreadsheetID,
		fmt.Sprintf("%s!A:H", e.config.SheetName),
		&sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append expenses: %w", err)
	}

	slog.Info("exported expenses to spreadsheet",
		"count", len(expenses),
		"spreadsheet_id", e.config.SpreadsheetID,
		"sheet", e.config.SheetName)
	return nil
}

// buildRows converts expenses to spreadsheet rows in header order.
func buildRows(expenses []model.Expense) [][]any {
	rows := make([][]any, 0, len(expenses))
	for _, expense := range expenses {
		rows = append(rows, []any{
			expense.CreatedAt.Format("2006-01-02"),
			expense.Description,
			expense.Category,
			expense.Amount,
			expense.CurrencyCode,
			string(expense.Provenance),
			expense.Confidence,
			expense.Comment,
		})
	}
	return rows
}
