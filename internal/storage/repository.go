// Package storage persists the financial domain in SQLite.
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

	"financeiro/internal/core"

	_ "modernc.org/sqlite"
)

// Export lifecycle values for ledger_entries.export_status.
const (
	ExportPending = "pending"
	ExportDone    = "done"
	ExportError   = "error"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateRecurringExpense(ctx context.Context, re core.RecurringExpense) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_expenses (name, description, amount_cents, frequency, due_day, category, next_due_date, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		re.Name, re.Description, re.Amount.Cents, string(re.Frequency),
		nullableInt(re.DueDay), re.Category, re.NextDueDate.String(), boolToInt(re.Active))
	if err != nil {
		return 0, fmt.Errorf("insert recurring expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("recurring expense id: %w", err)
	}

	slog.InfoContext(ctx, "Recurring expense saved",
		"id", id,
		"name", re.Name,
		"frequency", re.Frequency,
		"next_due_date", re.NextDueDate.String())

	return id, nil
}

func (r *SQLiteRepository) GetRecurringExpense(ctx context.Context, id int64) (core.RecurringExpense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, amount_cents, frequency, due_day, category, next_due_date, active
		FROM recurring_expenses WHERE id = ?`, id)
	re, err := scanRecurring(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.RecurringExpense{}, core.NewError(core.KindNotFound, fmt.Errorf("recurring expense %d: %w", id, err))
		}
		return core.RecurringExpense{}, fmt.Errorf("get recurring expense %d: %w", id, err)
	}
	return re, nil
}

// UpdateRecurringExpense writes the full merged row in a single statement,
// keeping per-entity updates atomic.
func (r *SQLiteRepository) UpdateRecurringExpense(ctx context.Context, re core.RecurringExpense) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_expenses
		SET name = ?, description = ?, amount_cents = ?, frequency = ?, due_day = ?,
		    category = ?, next_due_date = ?, active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		re.Name, re.Description, re.Amount.Cents, string(re.Frequency),
		nullableInt(re.DueDay), re.Category, re.NextDueDate.String(), boolToInt(re.Active), re.ID)
	if err != nil {
		return fmt.Errorf("update recurring expense %d: %w", re.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewError(core.KindNotFound, fmt.Errorf("recurring expense %d not found", re.ID))
	}
	return nil
}

func (r *SQLiteRepository) DeleteRecurringExpense(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM recurring_expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recurring expense %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewError(core.KindNotFound, fmt.Errorf("recurring expense %d not found", id))
	}
	slog.InfoContext(ctx, "Recurring expense deleted", "id", id)
	return nil
}

func (r *SQLiteRepository) ListRecurringExpenses(ctx context.Context) ([]core.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, amount_cents, frequency, due_day, category, next_due_date, active
		FROM recurring_expenses`)
	if err != nil {
		return nil, fmt.Errorf("list recurring expenses: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringExpense
	for rows.Next() {
		re, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recurring expense: %w", err)
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

// ListDueRecurringExpenses returns active templates whose next due date has
// arrived as of the given calendar date.
func (r *SQLiteRepository) ListDueRecurringExpenses(ctx context.Context, asOf core.Date) ([]core.RecurringExpense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, description, amount_cents, frequency, due_day, category, next_due_date, active
		FROM recurring_expenses WHERE active = 1 AND next_due_date <= ?`, asOf.String())
	if err != nil {
		return nil, fmt.Errorf("list due recurring expenses: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringExpense
	for rows.Next() {
		re, err := scanRecurring(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due recurring expense: %w", err)
		}
		out = append(out, re)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateLedgerEntry(ctx context.Context, e core.LedgerEntry) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO ledger_entries (entry_type, status, description, category, notes, amount_cents, due_date, paid_date, paid_amount_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.Type), string(e.Status), e.Description, e.Category, e.Notes,
		e.Amount.Cents, e.DueDate.String(), nullableDate(e.PaidDate), nullableMoney(e.PaidAmount))
	if err != nil {
		return 0, fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ledger entry id: %w", err)
	}

	slog.InfoContext(ctx, "Ledger entry saved",
		"id", id,
		"type", e.Type,
		"status", e.Status,
		"amount_cents", e.Amount.Cents,
		"due_date", e.DueDate.String())

	return id, nil
}

func (r *SQLiteRepository) GetLedgerEntry(ctx context.Context, id int64) (core.LedgerEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, entry_type, status, description, category, notes, amount_cents, due_date, paid_date, paid_amount_cents
		FROM ledger_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.LedgerEntry{}, core.NewError(core.KindNotFound, fmt.Errorf("ledger entry %d: %w", id, err))
		}
		return core.LedgerEntry{}, fmt.Errorf("get ledger entry %d: %w", id, err)
	}
	return e, nil
}

func (r *SQLiteRepository) ListLedgerEntries(ctx context.Context, f core.EntryFilter) ([]core.LedgerEntry, error) {
	query := `SELECT id, entry_type, status, description, category, notes, amount_cents, due_date, paid_date, paid_amount_cents
		FROM ledger_entries`
	var conds []string
	var args []any
	if f.Type != nil {
		conds = append(conds, "entry_type = ?")
		args = append(args, string(*f.Type))
	}
	if f.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*f.Status))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var out []core.LedgerEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// SettleLedgerEntry updates the payment state of one entry in a single
// statement.
func (r *SQLiteRepository) SettleLedgerEntry(ctx context.Context, e core.LedgerEntry) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE ledger_entries
		SET status = ?, paid_date = ?, paid_amount_cents = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		string(e.Status), nullableDate(e.PaidDate), nullableMoney(e.PaidAmount), e.ID)
	if err != nil {
		return fmt.Errorf("settle ledger entry %d: %w", e.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.NewError(core.KindNotFound, fmt.Errorf("ledger entry %d not found", e.ID))
	}
	return nil
}

// ReadSummary aggregates entry totals. year 0 means all time; month 0 with
// a year means the whole year.
func (r *SQLiteRepository) ReadSummary(ctx context.Context, year, month int) (core.Summary, error) {
	s := core.Summary{Year: year, Month: month}

	query := `
		SELECT entry_type, COALESCE(SUM(amount_cents), 0)
		FROM ledger_entries WHERE status != 'cancelled'`
	var args []any
	switch {
	case year > 0 && month > 0:
		query += ` AND strftime('%Y', due_date) = ? AND strftime('%m', due_date) = ?`
		args = append(args, fmt.Sprintf("%04d", year), fmt.Sprintf("%02d", month))
	case year > 0:
		query += ` AND strftime('%Y', due_date) = ?`
		args = append(args, fmt.Sprintf("%04d", year))
	}
	query += ` GROUP BY entry_type`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return s, fmt.Errorf("read summary: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entryType string
		var cents int64
		if err := rows.Scan(&entryType, &cents); err != nil {
			return s, fmt.Errorf("scan summary row: %w", err)
		}
		switch core.EntryType(entryType) {
		case core.Income:
			s.TotalIncome = core.Money{Cents: cents}
		case core.Expense:
			s.TotalExpense = core.Money{Cents: cents}
		}
	}
	if err := rows.Err(); err != nil {
		return s, fmt.Errorf("read summary rows: %w", err)
	}
	s.Balance = core.Money{Cents: s.TotalIncome.Cents - s.TotalExpense.Cents}
	return s, nil
}

// ListUnexportedEntryIDs returns ids of entries still waiting for the
// bookkeeping export, oldest first.
func (r *SQLiteRepository) ListUnexportedEntryIDs(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id FROM ledger_entries WHERE export_status = ? ORDER BY id LIMIT ?`,
		ExportPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list unexported entries: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan unexported id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *SQLiteRepository) MarkEntryExported(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE ledger_entries SET export_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		ExportDone, id); err != nil {
		return fmt.Errorf("mark entry exported: %w", err)
	}
	slog.InfoContext(ctx, "Ledger entry marked as exported", "id", id)
	return nil
}

func (r *SQLiteRepository) MarkEntryExportError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE ledger_entries SET export_status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		ExportError, id); err != nil {
		return fmt.Errorf("mark entry export error: %w", err)
	}
	slog.WarnContext(ctx, "Ledger entry marked with export error", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecurring(row scanner) (core.RecurringExpense, error) {
	var re core.RecurringExpense
	var freq, nextDue string
	var dueDay sql.NullInt64
	var active int
	if err := row.Scan(&re.ID, &re.Name, &re.Description, &re.Amount.Cents,
		&freq, &dueDay, &re.Category, &nextDue, &active); err != nil {
		return re, err
	}
	re.Frequency = core.Frequency(freq)
	if dueDay.Valid {
		d := int(dueDay.Int64)
		re.DueDay = &d
	}
	date, err := core.ParseDate(nextDue)
	if err != nil {
		return re, fmt.Errorf("parse next_due_date %q: %w", nextDue, err)
	}
	re.NextDueDate = date
	re.Active = active != 0
	return re, nil
}

func scanEntry(row scanner) (core.LedgerEntry, error) {
	var e core.LedgerEntry
	var entryType, status, dueDate string
	var paidDate sql.NullString
	var paidCents sql.NullInt64
	if err := row.Scan(&e.ID, &entryType, &status, &e.Description, &e.Category, &e.Notes,
		&e.Amount.Cents, &dueDate, &paidDate, &paidCents); err != nil {
		return e, err
	}
	e.Type = core.EntryType(entryType)
	e.Status = core.EntryStatus(status)
	date, err := core.ParseDate(dueDate)
	if err != nil {
		return e, fmt.Errorf("parse due_date %q: %w", dueDate, err)
	}
	e.DueDate = date
	if paidDate.Valid {
		pd, err := core.ParseDate(paidDate.String)
		if err != nil {
			return e, fmt.Errorf("parse paid_date %q: %w", paidDate.String, err)
		}
		e.PaidDate = &pd
	}
	if paidCents.Valid {
		e.PaidAmount = &core.Money{Cents: paidCents.Int64}
	}
	return e, nil
}

func nullableInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableDate(p *core.Date) any {
	if p == nil {
		return nil
	}
	return p.String()
}

func nullableMoney(p *core.Money) any {
	if p == nil {
		return nil
	}
	return p.Cents
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
