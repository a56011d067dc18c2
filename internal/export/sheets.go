package export

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

// SheetRange is the A1 range rewritten by a mirror run.
const SheetRange = SheetName + "!A:H"

// Mirror replaces the contents of a remote sheet with rows.
type Mirror interface {
	Replace(ctx context.Context, rows [][]string) error
}

// SheetsMirror writes export rows to a Google spreadsheet.
type SheetsMirror struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

// NewSheetsMirror authenticates with a service account. credentials is either
// the JSON key itself or a path to it.
func NewSheetsMirror(ctx context.Context, credentials, spreadsheetID string) (*SheetsMirror, error) {
	var credOpt option.ClientOption
	if strings.HasPrefix(strings.TrimSpace(credentials), "{") {
		credOpt = option.WithCredentialsJSON([]byte(credentials))
	} else {
		credOpt = option.WithCredentialsFile(credentials)
	}

	srv, err := sheetsv4.NewService(ctx, credOpt, option.WithScopes(sheetsv4.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return &SheetsMirror{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// Replace clears SheetRange and writes rows starting at A1.
func (m *SheetsMirror) Replace(ctx context.Context, rows [][]string) error {
	_, err := m.srv.Spreadsheets.Values.Clear(m.spreadsheetID, SheetRange, &sheetsv4.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("clearing %s: %w", SheetRange, err)
	}

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		values[i] = make([]interface{}, len(row))
		for j, v := range row {
			values[i][j] = v
		}
	}

	vr := &sheetsv4.ValueRange{Values: values}
	_, err = m.srv.Spreadsheets.Values.Update(m.spreadsheetID, SheetName+"!A1", vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing %s: %w", SheetRange, err)
	}
	return nil
}
