// Package google appends ledger rows to a Google Sheets spreadsheet, one tab
// per tax year.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"rentbook/internal/core"
	"rentbook/internal/fiscal"
	ports "rentbook/internal/sheets"
)

// Options carries the spreadsheet and OAuth settings. Inline JSON wins over
// files when both are set.
type Options struct {
	SpreadsheetID   string
	LedgerSheet     string
	OAuthClientFile string
	OAuthTokenFile  string
	OAuthClientJSON string
	OAuthTokenJSON  string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	ledgerBase    string

	mu        sync.Mutex
	knownTabs map[string]bool
}

var _ ports.LedgerWriter = (*Client)(nil)

// New creates a Sheets client authorised with a user OAuth token produced
// by cmd/oauth-init.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	base := strings.TrimSpace(opts.LedgerSheet)
	if base == "" {
		base = "Ledger"
	}

	ts, err := tokenSource(ctx, opts)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx, goption.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets ledger client ready", "spreadsheet_id", opts.SpreadsheetID, "ledger", base)
	return &Client{
		svc:           svc,
		spreadsheetID: opts.SpreadsheetID,
		ledgerBase:    base,
		knownTabs:     make(map[string]bool),
	}, nil
}

// OAuthConfig builds the OAuth client configuration for the spreadsheets
// scope from the client secret in opts.
func OAuthConfig(opts Options) (*oauth2.Config, error) {
	clientJSON, err := readSecret(opts.OAuthClientJSON, opts.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client: %w", err)
	}
	cfg, err := googleoauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("oauth config: %w", err)
	}
	return cfg, nil
}

// SaveToken writes tok as JSON to path, readable by the owner only.
func SaveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open token file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(tok); err != nil {
		f.Close()
		return fmt.Errorf("write token: %w", err)
	}
	return f.Close()
}

func tokenSource(ctx context.Context, opts Options) (oauth2.TokenSource, error) {
	cfg, err := OAuthConfig(opts)
	if err != nil {
		return nil, err
	}

	tokenJSON, err := readSecret(opts.OAuthTokenJSON, opts.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(tokenJSON, &tok); err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	return cfg.TokenSource(ctx, &tok), nil
}

func readSecret(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return b, nil
	default:
		return nil, errors.New("neither inline JSON nor file provided")
	}
}

// AppendEntry appends e to its tax year tab, creating the tab with a header
// row the first time a year is seen.
func (c *Client) AppendEntry(ctx context.Context, e core.MoneyEntry, propertyName string) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	tab := ports.TabName(fiscal.TaxYearOf(e.Date), c.ledgerBase)
	if err := c.ensureTab(ctx, tab); err != nil {
		return "", err
	}

	vr := &gsheet.ValueRange{Values: [][]any{ledgerValues(e, propertyName)}}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, quoteRange(tab, "A:G"), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to %s: %w", tab, err)
	}
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		return resp.Updates.UpdatedRange, nil
	}
	return tab, nil
}

func (c *Client) ensureTab(ctx context.Context, tab string) error {
	c.mu.Lock()
	known := c.knownTabs[tab]
	c.mu.Unlock()
	if known {
		return nil
	}

	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read spreadsheet: %w", err)
	}
	for _, s := range ss.Sheets {
		if s.Properties != nil && s.Properties.Title == tab {
			c.markKnown(tab)
			return nil
		}
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("create tab %s: %w", tab, err)
	}

	header := &gsheet.ValueRange{Values: [][]any{toAny(fiscal.CSVHeader)}}
	if _, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, quoteRange(tab, "A1:G1"), header).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("write header to %s: %w", tab, err)
	}

	slog.InfoContext(ctx, "Created ledger tab", "tab", tab)
	c.markKnown(tab)
	return nil
}

func (c *Client) markKnown(tab string) {
	c.mu.Lock()
	c.knownTabs[tab] = true
	c.mu.Unlock()
}

// ledgerValues renders e in export column order.
func ledgerValues(e core.MoneyEntry, propertyName string) []any {
	names := map[string]string{}
	if e.PropertyID != "" && propertyName != "" {
		names[e.PropertyID] = propertyName
	}
	return toAny(fiscal.Row(e, names))
}

func toAny(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// quoteRange builds an A1 range for a tab name containing spaces.
func quoteRange(tab, cells string) string {
	return "'" + strings.ReplaceAll(tab, "'", "''") + "'!" + cells
}
