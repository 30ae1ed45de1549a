package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"debiti/internal/core"

	ports "debiti/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	paymentsSheet     string
}

var _ ports.LedgerAppender = (*Client)(nil)

// New creates a Sheets client for the given spreadsheet. Credentials come
// from the environment: GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func New(ctx context.Context, spreadsheetID, transactionsSheet, paymentsSheet string) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if transactionsSheet == "" {
		transactionsSheet = "Transactions"
	}
	if paymentsSheet == "" {
		paymentsSheet = "Payments"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:               svc,
		spreadsheetID:     spreadsheetID,
		transactionsSheet: transactionsSheet,
		paymentsSheet:     paymentsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// AppendTransaction writes one loan transaction row:
// Date, Bank, Category, Description, Amount, Installment.
func (c *Client) AppendTransaction(ctx context.Context, bank core.Bank, t core.LoanTransaction) error {
	row := []any{
		t.Date.Time.Format("2006-01-02"),
		bank.Name,
		string(bank.Category),
		t.Description,
		float64(t.Amount.Cents) / 100.0,
		t.Installment,
	}
	if err := c.appendRow(ctx, c.transactionsSheet, row); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Transaction mirrored to sheet",
		"transaction_id", t.ID,
		"bank", bank.Name,
		"sheet", c.transactionsSheet)
	return nil
}

// AppendPayment writes one payment row: Date, Bank, Category, Amount.
func (c *Client) AppendPayment(ctx context.Context, bank core.Bank, p core.Payment) error {
	row := []any{
		p.Date.Time.Format("2006-01-02"),
		bank.Name,
		string(bank.Category),
		float64(p.Amount.Cents) / 100.0,
	}
	if err := c.appendRow(ctx, c.paymentsSheet, row); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Payment mirrored to sheet",
		"payment_id", p.ID,
		"bank", bank.Name,
		"sheet", c.paymentsSheet)
	return nil
}

func (c *Client) appendRow(ctx context.Context, sheetName string, row []any) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	// Find the next empty row from the sheet's current length.
	rng := fmt.Sprintf("%s!A:A", sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get sheet dimensions for %s: %w", sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	endCol := rune('A' + len(row) - 1)
	dataRange := fmt.Sprintf("%s!A%d:%c%d", sheetName, nextRow, endCol, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{row}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update range %s: %w", dataRange, err)
	}
	return nil
}
