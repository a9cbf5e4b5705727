package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"optionTracker/internal/domain"
	"optionTracker/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

var hundred = decimal.NewFromInt(100)

// Repository implements ports.TradeStore using SQLite.
//
// The pool is capped at a single connection, so every statement is
// serialized through it. Status transitions are single UPDATE statements and
// the schema CHECK constraint rejects any row whose status and closed_at
// disagree.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
	now    func() time.Time
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
	// Now is the reference clock. Defaults to domain.NowEastern.
	Now func() time.Time
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository: %w", ports.ErrConfigurationError)
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./trade_history/trades.db"
	}
	if cfg.Now == nil {
		cfg.Now = domain.NowEastern
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// One connection: all access to the store is serialized through it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger, now: cfg.Now}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		time TEXT NOT NULL,
		strike TEXT NOT NULL,
		side TEXT NOT NULL,
		price TEXT NOT NULL,
		position INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'open',
		closed_at TEXT DEFAULT NULL,
		closed_at_ns INTEGER DEFAULT NULL,
		contract TEXT DEFAULT NULL,
		CHECK (
			(status = 'open' AND closed_at IS NULL AND closed_at_ns IS NULL) OR
			(status = 'closed' AND closed_at IS NOT NULL AND closed_at_ns IS NOT NULL)
		)
	);
	CREATE INDEX IF NOT EXISTS idx_trades_status ON trades (status);
	CREATE INDEX IF NOT EXISTS idx_trades_closed_at_ns ON trades (closed_at_ns);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w: %w", ports.ErrQueryFailed, err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// Create saves a new trade and returns its assigned ID.
// trade.Price is read as minor units; on success trade.ID, trade.Price,
// trade.Status and trade.ClosedAt hold the stored values.
func (r *Repository) Create(ctx context.Context, trade *domain.Trade) (int64, error) {
	const query = `
	INSERT INTO trades (date, time, strike, side, price, position, status, closed_at, closed_at_ns, contract)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	status := trade.Status
	if status == "" {
		status = domain.StatusOpen
	}
	if status != domain.StatusOpen && status != domain.StatusClosed {
		return 0, fmt.Errorf("unknown status %q for new trade: %w", status, ports.ErrInvalidRequest)
	}

	var closedAt *time.Time
	if status == domain.StatusClosed {
		ts := r.now()
		if trade.ClosedAt != nil {
			ts = *trade.ClosedAt
		}
		ts = ts.In(domain.Eastern)
		closedAt = &ts
	}
	closedText, closedNs := closedAtColumns(closedAt)

	price := trade.Price.Div(hundred)

	var contract sql.NullString
	if trade.Contract != nil {
		contract = sql.NullString{String: *trade.Contract, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		trade.Date, trade.Time, trade.Strike, trade.Side, price.String(), trade.Position,
		string(status), closedText, closedNs, contract)
	if err != nil {
		return 0, fmt.Errorf("failed to insert trade for strike %s: %w: %w", trade.Strike, ports.ErrUpdateFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for trade %s: %w: %w", trade.Strike, ports.ErrQueryFailed, err)
	}
	trade.ID = id
	trade.Price = price
	trade.Status = status
	trade.ClosedAt = closedAt
	r.logger.Debug(ctx, "Trade created", map[string]interface{}{"tradeID": id, "status": status, "contract": trade.ContractLabel()})
	return id, nil
}

const selectColumns = `SELECT id, date, time, strike, side, price, position, status, closed_at, contract FROM trades`

// FindByID retrieves a trade by its unique ID.
func (r *Repository) FindByID(ctx context.Context, id int64) (*domain.Trade, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	trade, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("trade ID %d: %w", id, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query trade by ID %d: %w: %w", id, ports.ErrQueryFailed, err)
	}
	return trade, nil
}

// List retrieves trades matching filter.
func (r *Repository) List(ctx context.Context, filter domain.TradeFilter) ([]*domain.Trade, error) {
	var (
		query string
		args  []interface{}
	)
	switch filter.Kind {
	case domain.FilterAll:
		query = selectColumns + ` ORDER BY id DESC`
	case domain.FilterOpen:
		query = selectColumns + ` WHERE status = ? ORDER BY id DESC`
		args = append(args, string(domain.StatusOpen))
	case domain.FilterClosed:
		query = selectColumns + ` WHERE status = ? ORDER BY id DESC`
		args = append(args, string(domain.StatusClosed))
	case domain.FilterClosedWithin:
		if filter.Within <= 0 {
			return nil, fmt.Errorf("closed-within window must be positive, got %s: %w", filter.Within, ports.ErrInvalidRequest)
		}
		cutoff := r.now().Add(-filter.Within).UnixNano()
		query = selectColumns + ` WHERE status = ? AND closed_at_ns >= ? ORDER BY closed_at_ns DESC`
		args = append(args, string(domain.StatusClosed), cutoff)
	default:
		return nil, fmt.Errorf("unknown trade filter %d: %w", filter.Kind, ports.ErrInvalidRequest)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s trades: %w: %w", filter.Kind, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	trades := make([]*domain.Trade, 0)
	for rows.Next() {
		trade, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade during List: %w: %w", ports.ErrQueryFailed, err)
		}
		trades = append(trades, trade)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade rows: %w: %w", ports.ErrQueryFailed, err)
	}
	return trades, nil
}

// SetStatus transitions a trade's status.
//
// Closing writes status and closed_at in one UPDATE. Closing an already
// closed trade re-stamps closed_at. "Open" never writes: it succeeds for an
// open trade and fails with ErrInvalidTransition for a closed one.
func (r *Repository) SetStatus(ctx context.Context, id int64, status domain.TradeStatus, closedAt *time.Time) error {
	switch status {
	case domain.StatusClosed:
		return r.close(ctx, id, closedAt)
	case domain.StatusOpen:
		current, err := r.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == domain.StatusClosed {
			return fmt.Errorf("trade ID %d is closed and cannot be reopened: %w", id, ports.ErrInvalidTransition)
		}
		return nil
	default:
		return fmt.Errorf("unknown status %q for trade ID %d: %w", status, id, ports.ErrInvalidRequest)
	}
}

func (r *Repository) close(ctx context.Context, id int64, closedAt *time.Time) error {
	const query = `UPDATE trades SET status = ?, closed_at = ?, closed_at_ns = ? WHERE id = ?`

	ts := r.now()
	if closedAt != nil {
		ts = *closedAt
	}
	ts = ts.In(domain.Eastern)
	closedText, closedNs := closedAtColumns(&ts)

	result, err := r.db.ExecContext(ctx, query, string(domain.StatusClosed), closedText, closedNs, id)
	if err != nil {
		return fmt.Errorf("failed to close trade ID %d: %w: %w", id, ports.ErrUpdateFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for close trade ID %d: %w: %w", id, ports.ErrUpdateFailed, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("trade ID %d not found for close: %w", id, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Trade closed", map[string]interface{}{"tradeID": id, "closedAt": closedText.String})
	return nil
}

// CloseIfOpen closes an open trade at the current instant. A trade that is
// already closed keeps its closed_at and false is returned.
func (r *Repository) CloseIfOpen(ctx context.Context, id int64) (bool, error) {
	const query = `UPDATE trades SET status = ?, closed_at = ?, closed_at_ns = ? WHERE id = ? AND status = ?`

	ts := r.now().In(domain.Eastern)
	closedText, closedNs := closedAtColumns(&ts)

	result, err := r.db.ExecContext(ctx, query, string(domain.StatusClosed), closedText, closedNs, id, string(domain.StatusOpen))
	if err != nil {
		return false, fmt.Errorf("failed to close trade ID %d: %w: %w", id, ports.ErrUpdateFailed, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for close trade ID %d: %w: %w", id, ports.ErrUpdateFailed, err)
	}
	if rowsAffected == 1 {
		r.logger.Debug(ctx, "Trade closed", map[string]interface{}{"tradeID": id, "closedAt": closedText.String})
		return true, nil
	}

	// Nothing changed: either the trade is gone or someone closed it first.
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

// Delete removes a trade permanently. Missing IDs are ignored.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade ID %d: %w: %w", id, ports.ErrDeleteFailed, err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		r.logger.Debug(ctx, "Delete of unknown trade ignored", map[string]interface{}{"tradeID": id})
		return nil
	}
	r.logger.Debug(ctx, "Trade deleted", map[string]interface{}{"tradeID": id})
	return nil
}

// --- Helper Scan Functions ---

// scanner defines an interface compatible with *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanTrade scans a row into a domain.Trade struct.
func scanTrade(s scanner) (*domain.Trade, error) {
	t := &domain.Trade{}
	var (
		price    string
		status   string
		closedAt sql.NullString
		contract sql.NullString
	)
	err := s.Scan(&t.ID, &t.Date, &t.Time, &t.Strike, &t.Side, &price, &t.Position, &status, &closedAt, &contract)
	if err != nil {
		return nil, err // Handle sql.ErrNoRows in the caller
	}
	t.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid stored price %q for trade ID %d: %w", price, t.ID, err)
	}
	t.Status = domain.TradeStatus(status)
	if closedAt.Valid {
		ts, err := time.Parse(time.RFC3339Nano, closedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid stored closed_at %q for trade ID %d: %w", closedAt.String, t.ID, err)
		}
		ts = ts.In(domain.Eastern)
		t.ClosedAt = &ts
	}
	if contract.Valid {
		c := contract.String
		t.Contract = &c
	}
	return t, nil
}

// closedAtColumns renders closed_at as Eastern RFC3339 text plus a
// nanosecond epoch used for window queries and ordering.
func closedAtColumns(ts *time.Time) (sql.NullString, sql.NullInt64) {
	if ts == nil {
		return sql.NullString{}, sql.NullInt64{}
	}
	return sql.NullString{String: ts.In(domain.Eastern).Format(time.RFC3339Nano), Valid: true},
		sql.NullInt64{Int64: ts.UnixNano(), Valid: true}
}
