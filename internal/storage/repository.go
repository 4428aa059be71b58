package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/store"

	_ "modernc.org/sqlite"
)

// Ensure interface conformance
var (
	_ store.TransactionStore       = (*SQLiteRepository)(nil)
	_ store.FixedExpenseRepository = (*SQLiteRepository)(nil)
	_ store.ErrorReportWriter      = (*SQLiteRepository)(nil)
)

// SQLiteRepository is the durable adapter behind the store ports.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps appends in one serialized order.
	db.SetMaxOpenConns(1)

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

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) Append(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (entry_date, income, expense, memo, category, kind, payment_method, transfer_target)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Date.String(), t.Income.Int64(), t.Expense.Int64(), t.Memo,
		string(t.Category), string(t.Kind), t.PaymentMethod, t.TransferTarget)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_date, income, expense, memo, category, kind, payment_method, transfer_target
		FROM transactions
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t                    core.Transaction
			date, category, kind string
			income, expense      int64
		)
		if err := rows.Scan(&date, &income, &expense, &t.Memo, &category, &kind, &t.PaymentMethod, &t.TransferTarget); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if t.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("stored transaction: %w", err)
		}
		t.Income, t.Expense = core.Money(income), core.Money(expense)
		t.Category, t.Kind = core.Category(category), core.Kind(kind)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

// Revision is the highest transaction id. Rows are never deleted, so it
// grows by one with every append.
func (r *SQLiteRepository) Revision(ctx context.Context) (uint64, error) {
	var rev int64
	if err := r.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(id), 0) FROM transactions`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return uint64(rev), nil
}

func (r *SQLiteRepository) CreateFixedExpense(ctx context.Context, fe core.FixedExpense) (int64, error) {
	if err := fe.Validate(); err != nil {
		return 0, err
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO fixed_expenses (description, amount, payment_method, category, every, start_date, end_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fe.Description, fe.Amount.Int64(), fe.PaymentMethod, string(fe.Category),
		string(fe.Every), fe.StartDate.String(), nullableDate(fe.EndDate))
	if err != nil {
		return 0, fmt.Errorf("insert fixed expense: %w", err)
	}
	return res.LastInsertId()
}

const fixedExpenseColumns = `id, description, amount, payment_method, category, every, start_date, end_date, last_execution`

func (r *SQLiteRepository) ListFixedExpenses(ctx context.Context) ([]core.FixedExpense, error) {
	return r.queryFixedExpenses(ctx, `SELECT `+fixedExpenseColumns+` FROM fixed_expenses ORDER BY id`)
}

// ActiveFixedExpenses compares zero-padded date keys, which sort the same
// way as the dates themselves.
func (r *SQLiteRepository) ActiveFixedExpenses(ctx context.Context, now time.Time) ([]core.FixedExpense, error) {
	today := core.DateOf(now).String()
	return r.queryFixedExpenses(ctx, `
		SELECT `+fixedExpenseColumns+`
		FROM fixed_expenses
		WHERE start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY id`, today, today)
}

func (r *SQLiteRepository) MarkExecuted(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE fixed_expenses SET last_execution = ? WHERE id = ?`,
		at.Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("update last execution: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("fixed expense %d not found", id)
	}
	return nil
}

func (r *SQLiteRepository) queryFixedExpenses(ctx context.Context, query string, args ...any) ([]core.FixedExpense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query fixed expenses: %w", err)
	}
	defer rows.Close()

	var out []core.FixedExpense
	for rows.Next() {
		var (
			fe                     core.FixedExpense
			amount                 int64
			category, every, start string
			end, lastExec          sql.NullString
		)
		if err := rows.Scan(&fe.ID, &fe.Description, &amount, &fe.PaymentMethod, &category, &every, &start, &end, &lastExec); err != nil {
			return nil, fmt.Errorf("scan fixed expense: %w", err)
		}
		fe.Amount, fe.Category, fe.Every = core.Money(amount), core.Category(category), core.Cycle(every)
		if fe.StartDate, err = core.ParseDate(start); err != nil {
			return nil, fmt.Errorf("fixed expense %d start date: %w", fe.ID, err)
		}
		if end.Valid {
			if fe.EndDate, err = core.ParseDate(end.String); err != nil {
				return nil, fmt.Errorf("fixed expense %d end date: %w", fe.ID, err)
			}
		}
		if lastExec.Valid && lastExec.String != "" {
			if fe.LastExecution, err = time.Parse(time.RFC3339Nano, lastExec.String); err != nil {
				return nil, fmt.Errorf("fixed expense %d last execution: %w", fe.ID, err)
			}
		}
		out = append(out, fe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fixed expenses: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveErrorReport(ctx context.Context, rep core.ErrorReport) (int64, error) {
	if err := rep.Validate(); err != nil {
		return 0, err
	}
	created := rep.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, `INSERT INTO error_reports (content, created_at) VALUES (?, ?)`,
		rep.Content, created.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("insert error report: %w", err)
	}
	return res.LastInsertId()
}

// CountErrorReports returns the number of stored reports.
func (r *SQLiteRepository) CountErrorReports(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM error_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count error reports: %w", err)
	}
	return n, nil
}

func nullableDate(d core.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
