package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"custos/internal/config"
	"custos/internal/core"
	ports "custos/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client mirrors cost entries to one sheet of a backup spreadsheet. Column A
// holds the entry ID, which makes writes idempotent: syncing an entry that is
// already mirrored rewrites its row in place.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.EntryWriter  = (*Client)(nil)
	_ ports.EntryDeleter = (*Client)(nil)
)

// NewFromConfig creates a Sheets client from the service configuration,
// using service-account credentials from a file or inline JSON.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	if cfg.GoogleSpreadsheetID == "" {
		return nil, errors.New("missing Google spreadsheet ID")
	}

	var credentialsJSON []byte
	switch {
	case cfg.GoogleCredentialsJSON != "":
		credentialsJSON = []byte(cfg.GoogleCredentialsJSON)
	case cfg.GoogleCredentialsFile != "":
		data, err := os.ReadFile(cfg.GoogleCredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read credentials file: %w", err)
		}
		credentialsJSON = data
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_CREDENTIALS_FILE or GOOGLE_CREDENTIALS_JSON)")
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets backup client created",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.GoogleSpreadsheetID,
		sheetName:     cfg.GoogleSheetName,
	}, nil
}

// Append writes an entry row, replacing any existing row with the same ID.
func (c *Client) Append(ctx context.Context, e core.CostEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	row, found, err := c.findRowByID(ctx, e.ID)
	if err != nil {
		return "", err
	}
	if !found {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID,
			fmt.Sprintf("%s!A:A", c.sheetName)).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
		}
		row = len(resp.Values) + 1
	}

	dataRange := fmt.Sprintf("%s!A%d:J%d", c.sheetName, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{{
		e.ID,
		e.Date.ISO(),
		e.Description,
		string(e.Category),
		e.Amount.Reais(),
		e.Season,
		e.AreaHectares,
		e.CultureOrDefault(),
		e.Supplier,
		e.Notes,
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("update row in sheet %s: %w", c.sheetName, err)
	}

	return dataRange, nil
}

// DeleteEntry clears the row holding the given ID. Unknown IDs are a no-op.
func (c *Client) DeleteEntry(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, found, err := c.findRowByID(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		slog.InfoContext(ctx, "Entry not present in backup sheet, nothing to delete", "id", id)
		return nil
	}

	rng := fmt.Sprintf("%s!A%d:J%d", c.sheetName, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row in sheet %s: %w", c.sheetName, err)
	}

	return nil
}

// findRowByID scans column A for the entry ID and returns its 1-based row.
func (c *Client) findRowByID(ctx context.Context, id int64) (int, bool, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read ID column of sheet %s: %w", c.sheetName, err)
	}

	want := strconv.FormatInt(id, 10)
	for i, cells := range resp.Values {
		if len(cells) == 0 {
			continue
		}
		if fmt.Sprint(cells[0]) == want {
			return i + 1, true, nil
		}
	}
	return 0, false, nil
}
