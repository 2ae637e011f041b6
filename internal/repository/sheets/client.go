package sheets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"frontdesk-rental-backend/internal/logger"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Client is the subset of the spreadsheet API the store relies on. Ranges use
// A1 notation including the sheet title, e.g. "Rentals!AE12".
type Client interface {
	GetValues(ctx context.Context, rng string) ([][]string, error)
	BatchUpdate(ctx context.Context, updates []CellUpdate) error
	AppendRow(ctx context.Context, rng string, row []string) error
	UpdateRange(ctx context.Context, rng string, rows [][]string) error
	ClearRange(ctx context.Context, rng string) error
	SheetID(ctx context.Context, title string) (int64, error)
	// DeleteRows removes rows [start, end) using zero-based indices.
	DeleteRows(ctx context.Context, sheetID int64, start, end int64) error
}

// CellUpdate is one range of a batched values update.
type CellUpdate struct {
	Range  string
	Values [][]string
}

// ErrMissingCredentials is returned when the service account key or the
// spreadsheet id is not configured.
var ErrMissingCredentials = errors.New("GOOGLE_SERVICE_ACCOUNT_KEY_BASE64 or GOOGLE_SPREADSHEET_ID not configured")

type googleClient struct {
	svc           *sheetsapi.Service
	spreadsheetID string
}

// NewGoogleClient builds a Sheets v4 client from a base64-encoded service
// account key.
func NewGoogleClient(ctx context.Context, keyBase64, spreadsheetID string, opts ...option.ClientOption) (Client, error) {
	if spreadsheetID == "" {
		return nil, ErrMissingCredentials
	}
	if keyBase64 != "" {
		keyJSON, err := base64.StdEncoding.DecodeString(keyBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode service account key: %w", err)
		}
		opts = append(opts,
			option.WithCredentialsJSON(keyJSON),
			option.WithScopes(sheetsapi.SpreadsheetsScope),
		)
	} else if len(opts) == 0 {
		return nil, ErrMissingCredentials
	}

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &googleClient{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (c *googleClient) GetValues(ctx context.Context, rng string) ([][]string, error) {
	logger.SheetsCall("values.get", rng)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		logger.SheetsResult("values.get", 0, err, "range", rng)
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, r := range resp.Values {
		rows[i] = make([]string, len(r))
		for j, cell := range r {
			rows[i][j] = fmt.Sprint(cell)
		}
	}
	logger.SheetsResult("values.get", int64(len(rows)), nil, "range", rng)
	return rows, nil
}

func (c *googleClient) BatchUpdate(ctx context.Context, updates []CellUpdate) error {
	data := make([]*sheetsapi.ValueRange, 0, len(updates))
	for _, u := range updates {
		data = append(data, &sheetsapi.ValueRange{Range: u.Range, Values: toInterfaces(u.Values)})
	}
	req := &sheetsapi.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	logger.SheetsCall("values.batchUpdate", fmt.Sprintf("%d ranges", len(updates)))
	_, err := c.svc.Spreadsheets.Values.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	logger.SheetsResult("values.batchUpdate", int64(len(updates)), err)
	return err
}

func (c *googleClient) AppendRow(ctx context.Context, rng string, row []string) error {
	vr := &sheetsapi.ValueRange{Values: toInterfaces([][]string{row})}
	logger.SheetsCall("values.append", rng)
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	logger.SheetsResult("values.append", 1, err, "range", rng)
	return err
}

func (c *googleClient) UpdateRange(ctx context.Context, rng string, rows [][]string) error {
	vr := &sheetsapi.ValueRange{Values: toInterfaces(rows)}
	logger.SheetsCall("values.update", rng)
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	logger.SheetsResult("values.update", int64(len(rows)), err, "range", rng)
	return err
}

func (c *googleClient) ClearRange(ctx context.Context, rng string) error {
	logger.SheetsCall("values.clear", rng)
	_, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do()
	logger.SheetsResult("values.clear", 0, err, "range", rng)
	return err
}

func (c *googleClient) SheetID(ctx context.Context, title string) (int64, error) {
	logger.SheetsCall("spreadsheets.get", title)
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		logger.SheetsResult("spreadsheets.get", 0, err)
		return 0, err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			logger.SheetsResult("spreadsheets.get", 1, nil, "sheet_id", sh.Properties.SheetId)
			return sh.Properties.SheetId, nil
		}
	}
	return 0, fmt.Errorf("%s sheet not found in spreadsheet", title)
}

func (c *googleClient) DeleteRows(ctx context.Context, sheetID int64, start, end int64) error {
	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			DeleteDimension: &sheetsapi.DeleteDimensionRequest{
				Range: &sheetsapi.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: start,
					EndIndex:   end,
				},
			},
		}},
	}
	logger.SheetsCall("spreadsheets.batchUpdate", "deleteDimension", "sheet_id", sheetID, "start", start, "end", end)
	_, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do()
	logger.SheetsResult("spreadsheets.batchUpdate", end-start, err)
	return err
}

func toInterfaces(rows [][]string) [][]interface{} {
	out := make([][]interface{}, len(rows))
	for i, r := range rows {
		out[i] = make([]interface{}, len(r))
		for j, v := range r {
			out[i][j] = v
		}
	}
	return out
}
