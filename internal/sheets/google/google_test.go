package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"

	"rentbook/internal/core"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{})
	if err == nil || err.Error() != "missing spreadsheet ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_InvalidClientJSON(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:   "test-id",
		OAuthClientJSON: "invalid-json",
		OAuthTokenJSON:  `{"access_token":"test"}`,
	})
	if err == nil || !strings.Contains(err.Error(), "oauth config") {
		t.Fatalf("expected oauth config error, got: %v", err)
	}
}

func TestNew_MissingToken(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:   "test-id",
		OAuthClientJSON: `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`,
	})
	if err == nil || !strings.Contains(err.Error(), "oauth token") {
		t.Fatalf("expected oauth token error, got: %v", err)
	}
}

func TestClient_AppendEntryValidates(t *testing.T) {
	c := &Client{spreadsheetID: "test"}

	_, err := c.AppendEntry(context.Background(), core.MoneyEntry{Type: "gift"}, "")
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("expected validation error, got %v", err)
	}

	valid := core.MoneyEntry{Type: core.Expense, Category: core.Travel, Amount: decimal.NewFromInt(5), Date: core.NewDate(2024, time.June, 1)}
	_, err = c.AppendEntry(context.Background(), valid, "")
	if err == nil || err.Error() != "sheets service not initialized" {
		t.Fatalf("expected uninitialised service error, got %v", err)
	}
}

func TestLedgerValues(t *testing.T) {
	e := core.MoneyEntry{
		PropertyID:  "p1",
		Type:        core.Expense,
		Category:    core.BusinessRates,
		Amount:      decimal.RequireFromString("1234.5"),
		Date:        core.NewDate(2025, time.March, 1),
		Description: "annual",
	}
	got := ledgerValues(e, "Shop")
	want := []string{"2025-03-01", "expense", "Business Rates", "Shop", "1234.50", "annual", "Q4"}
	if len(got) != len(want) {
		t.Fatalf("got %d columns, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %v, want %q", i, got[i], want[i])
		}
	}

	e.PropertyID = ""
	if got := ledgerValues(e, "ignored")[3]; got != "General" {
		t.Errorf("general entry property = %v", got)
	}
}

func TestQuoteRange(t *testing.T) {
	if got := quoteRange("2024-25 Ledger", "A:G"); got != "'2024-25 Ledger'!A:G" {
		t.Fatalf("quoteRange = %q", got)
	}
	if got := quoteRange("Owner's Ledger", "A1"); got != "'Owner''s Ledger'!A1" {
		t.Fatalf("quoteRange = %q", got)
	}
}

func TestOAuthConfig(t *testing.T) {
	cfg, err := OAuthConfig(Options{
		OAuthClientJSON: `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`,
	})
	if err != nil {
		t.Fatalf("OAuthConfig() error = %v", err)
	}
	if cfg.ClientID != "id" || len(cfg.Scopes) != 1 {
		t.Errorf("OAuthConfig() = %+v", cfg)
	}

	if _, err := OAuthConfig(Options{}); err == nil || !strings.Contains(err.Error(), "oauth client") {
		t.Errorf("OAuthConfig() without secret error = %v", err)
	}
}

func TestSaveToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := SaveToken(path, &oauth2.Token{AccessToken: "abc", RefreshToken: "def"}); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %v, want 0600", perm)
	}

	// the saved token must be readable by New's token loader
	_, err = tokenSource(context.Background(), Options{
		OAuthClientJSON: `{"installed":{"client_id":"id","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`,
		OAuthTokenFile:  path,
	})
	if err != nil {
		t.Errorf("tokenSource() error = %v", err)
	}
}
