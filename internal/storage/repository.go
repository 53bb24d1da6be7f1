package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentbook/internal/core"
	"rentbook/internal/records"

	_ "modernc.org/sqlite"
)

const (
	syncPending = "pending"
	syncSynced  = "synced"
	syncError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

var _ records.Store = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Run migrations before the main connection so it sees the final schema.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateProperty implements records.PropertyStore
func (r *SQLiteRepository) CreateProperty(ctx context.Context, p core.Property) (core.Property, error) {
	if err := p.Validate(); err != nil {
		return core.Property{}, err
	}
	p.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO properties (id, nickname, property_type, enabled_compliance_types, active)
		 VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Nickname, string(p.Type), joinTypes(p.EnabledComplianceTypes), p.Active)
	if err != nil {
		return core.Property{}, fmt.Errorf("create property: %w", err)
	}

	slog.InfoContext(ctx, "Property saved to SQLite", "id", p.ID, "nickname", p.Nickname, "type", p.Type)
	return p, nil
}

func (r *SQLiteRepository) GetProperty(ctx context.Context, id string) (core.Property, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, nickname, property_type, enabled_compliance_types, active
		 FROM properties WHERE id = ?`, id)
	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Property{}, fmt.Errorf("property %s: %w", id, records.ErrNotFound)
	}
	if err != nil {
		return core.Property{}, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) ListProperties(ctx context.Context) ([]core.Property, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, nickname, property_type, enabled_compliance_types, active
		 FROM properties ORDER BY nickname, id`)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var out []core.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateProperty(ctx context.Context, p core.Property) error {
	if err := p.Validate(); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE properties SET nickname = ?, property_type = ?, enabled_compliance_types = ?, active = ?
		 WHERE id = ?`,
		p.Nickname, string(p.Type), joinTypes(p.EnabledComplianceTypes), p.Active, p.ID)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	return expectOne(res, "property", p.ID)
}

// CreateCompliance implements records.ComplianceStore
func (r *SQLiteRepository) CreateCompliance(ctx context.Context, c core.ComplianceRecord) (core.ComplianceRecord, error) {
	if err := c.Validate(); err != nil {
		return core.ComplianceRecord{}, err
	}
	if _, err := r.GetProperty(ctx, c.PropertyID); err != nil {
		return core.ComplianceRecord{}, err
	}
	if c.Status == "" {
		c.Status = core.StatusNotSet
	}
	c.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO compliance_records
		 (id, property_id, compliance_type, due_date, last_completed, status, reminder_days, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.PropertyID, string(c.Type), nullDate(c.DueDate), nullDate(c.LastCompleted),
		string(c.Status), c.ReminderDays, c.Notes)
	if err != nil {
		return core.ComplianceRecord{}, fmt.Errorf("create compliance record: %w", err)
	}

	slog.InfoContext(ctx, "Compliance record saved to SQLite",
		"id", c.ID,
		"property_id", c.PropertyID,
		"type", c.Type,
		"status", c.Status)
	return c, nil
}

func (r *SQLiteRepository) ListCompliance(ctx context.Context, propertyID string) ([]core.ComplianceRecord, error) {
	q := `SELECT id, property_id, compliance_type, due_date, last_completed, status, reminder_days, notes
	      FROM compliance_records`
	var args []any
	if propertyID != "" {
		q += ` WHERE property_id = ?`
		args = append(args, propertyID)
	}
	q += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list compliance records: %w", err)
	}
	defer rows.Close()

	var out []core.ComplianceRecord
	for rows.Next() {
		var (
			c             core.ComplianceRecord
			typ, status   string
			due, lastDone sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.PropertyID, &typ, &due, &lastDone, &status, &c.ReminderDays, &c.Notes); err != nil {
			return nil, fmt.Errorf("scan compliance record: %w", err)
		}
		c.Type = core.ComplianceType(typ)
		c.Status = core.ComplianceStatus(status)
		if c.DueDate, err = parseNullDate(due); err != nil {
			return nil, fmt.Errorf("compliance record %s due date: %w", c.ID, err)
		}
		if c.LastCompleted, err = parseNullDate(lastDone); err != nil {
			return nil, fmt.Errorf("compliance record %s last completed: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpdateComplianceStatus(ctx context.Context, id string, status core.ComplianceStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE compliance_records SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update compliance status: %w", err)
	}
	return expectOne(res, "compliance record", id)
}

// CreateEntry implements records.MoneyStore
func (r *SQLiteRepository) CreateEntry(ctx context.Context, e core.MoneyEntry) (core.MoneyEntry, error) {
	if err := e.Validate(); err != nil {
		return core.MoneyEntry{}, err
	}
	e.ID = uuid.NewString()
	e.Amount = e.Amount.Round(2)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO money_entries
		 (id, property_id, entry_type, category, amount, entry_date, description, tax_year, quarter, sync_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, nullString(e.PropertyID), string(e.Type), string(e.Category), e.Amount.StringFixed(2),
		e.Date.String(), e.Description, e.TaxYear, e.Quarter, syncPending)
	if err != nil {
		return core.MoneyEntry{}, fmt.Errorf("create money entry: %w", err)
	}

	slog.InfoContext(ctx, "Money entry saved to SQLite",
		"id", e.ID,
		"type", e.Type,
		"category", e.Category,
		"amount", e.Amount.StringFixed(2),
		"date", e.Date.String(),
		"tax_year", e.TaxYear)
	return e, nil
}

const entryColumns = `id, property_id, entry_type, category, amount, entry_date, description, tax_year, quarter`

func (r *SQLiteRepository) GetEntry(ctx context.Context, id string) (core.MoneyEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM money_entries WHERE id = ?`, id)
	if err != nil {
		return core.MoneyEntry{}, fmt.Errorf("get money entry: %w", err)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return core.MoneyEntry{}, err
	}
	if len(entries) == 0 {
		return core.MoneyEntry{}, fmt.Errorf("money entry %s: %w", id, records.ErrNotFound)
	}
	return entries[0], nil
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, f records.EntryFilter) ([]core.MoneyEntry, error) {
	q := `SELECT ` + entryColumns + ` FROM money_entries`
	var (
		where []string
		args  []any
	)
	if f.TaxYear != "" {
		where = append(where, "tax_year = ?")
		args = append(args, f.TaxYear)
	}
	if f.PropertyID != "" {
		where = append(where, "property_id = ?")
		args = append(args, f.PropertyID)
	}
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY entry_date, created_at, id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list money entries: %w", err)
	}
	return scanEntries(rows)
}

// PendingSync returns entries that still need to be appended to Google Sheets.
// Rows that failed before are retried.
func (r *SQLiteRepository) PendingSync(ctx context.Context, limit int) ([]core.MoneyEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM money_entries
		 WHERE sync_status IN (?, ?) ORDER BY created_at, id LIMIT ?`,
		syncPending, syncError, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync entries: %w", err)
	}
	return scanEntries(rows)
}

// MarkSynced marks an entry as successfully synced
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string) error {
	if err := r.setSyncStatus(ctx, id, syncSynced); err != nil {
		return fmt.Errorf("mark entry synced: %w", err)
	}
	slog.InfoContext(ctx, "Money entry marked as synced", "id", id)
	return nil
}

// MarkSyncError marks an entry as having sync errors
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id string) error {
	if err := r.setSyncStatus(ctx, id, syncError); err != nil {
		return fmt.Errorf("mark entry sync error: %w", err)
	}
	slog.WarnContext(ctx, "Money entry marked with sync error", "id", id)
	return nil
}

func (r *SQLiteRepository) setSyncStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE money_entries SET sync_status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return expectOne(res, "money entry", id)
}

// CreateTenancy implements records.TenancyStore
func (r *SQLiteRepository) CreateTenancy(ctx context.Context, t core.Tenancy) (core.Tenancy, error) {
	if err := t.Validate(); err != nil {
		return core.Tenancy{}, err
	}
	if _, err := r.GetProperty(ctx, t.PropertyID); err != nil {
		return core.Tenancy{}, err
	}
	t.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tenancies (id, property_id, tenant_name, rent_amount, frequency, active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.PropertyID, t.TenantName, t.RentAmount.StringFixed(2), string(t.Frequency), t.Active)
	if err != nil {
		return core.Tenancy{}, fmt.Errorf("create tenancy: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTenancies(ctx context.Context) ([]core.Tenancy, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, property_id, tenant_name, rent_amount, frequency, active
		 FROM tenancies ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list tenancies: %w", err)
	}
	defer rows.Close()

	var out []core.Tenancy
	for rows.Next() {
		var (
			t          core.Tenancy
			rent, freq string
		)
		if err := rows.Scan(&t.ID, &t.PropertyID, &t.TenantName, &rent, &freq, &t.Active); err != nil {
			return nil, fmt.Errorf("scan tenancy: %w", err)
		}
		if t.RentAmount, err = decimal.NewFromString(rent); err != nil {
			return nil, fmt.Errorf("tenancy %s rent: %w", t.ID, err)
		}
		t.Frequency = core.RentFrequency(freq)
		out = append(out, t)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProperty(s scanner) (core.Property, error) {
	var (
		p            core.Property
		typ, enabled string
	)
	if err := s.Scan(&p.ID, &p.Nickname, &typ, &enabled, &p.Active); err != nil {
		return core.Property{}, err
	}
	p.Type = core.PropertyType(typ)
	p.EnabledComplianceTypes = splitTypes(enabled)
	return p, nil
}

func scanEntries(rows *sql.Rows) ([]core.MoneyEntry, error) {
	defer rows.Close()
	var out []core.MoneyEntry
	for rows.Next() {
		var (
			e                   core.MoneyEntry
			propertyID          sql.NullString
			typ, cat, amt, date string
		)
		if err := rows.Scan(&e.ID, &propertyID, &typ, &cat, &amt, &date, &e.Description, &e.TaxYear, &e.Quarter); err != nil {
			return nil, fmt.Errorf("scan money entry: %w", err)
		}
		e.PropertyID = propertyID.String
		e.Type = core.EntryType(typ)
		e.Category = core.MoneyCategory(cat)
		var err error
		if e.Amount, err = decimal.NewFromString(amt); err != nil {
			return nil, fmt.Errorf("money entry %s amount: %w", e.ID, err)
		}
		if e.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("money entry %s date: %w", e.ID, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func expectOne(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, records.ErrNotFound)
	}
	return nil
}

func joinTypes(types []core.ComplianceType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, ",")
}

func splitTypes(s string) []core.ComplianceType {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]core.ComplianceType, len(parts))
	for i, p := range parts {
		out[i] = core.ComplianceType(p)
	}
	return out
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullDate(d *core.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(s sql.NullString) (*core.Date, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	d, err := core.ParseDate(s.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
