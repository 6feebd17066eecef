// Package storage persists whole-ledger snapshots to SQLite. The persisted
// unit is always the entire ledger object graph: Save replaces every row
// for the account inside one transaction, so a failed save leaves the
// previous snapshot intact and no partial state behind.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"flussi/internal/core"

	_ "modernc.org/sqlite"
)

// ErrLedgerNotFound reports that no snapshot exists for the account.
var ErrLedgerNotFound = errors.New("no ledger snapshot for account")

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

// Save writes the ledger as a whole-object snapshot. The previous snapshot
// for the account is replaced atomically; there is no incremental log.
func (r *SQLiteRepository) Save(ctx context.Context, l *core.Ledger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ledgers (account_name, last_assigned_id, saved_at) VALUES (?, ?, ?)
		 ON CONFLICT(account_name) DO UPDATE SET last_assigned_id = excluded.last_assigned_id, saved_at = excluded.saved_at`,
		l.AccountName(), l.LastAssignedID(), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert ledger row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM flows WHERE account_name = ?`, l.AccountName()); err != nil {
		return fmt.Errorf("clear previous snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO flows (account_name, flow_id, amount_cents, category, executed_at, every_days, note, state, commitment_id, position)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare flow insert: %w", err)
	}
	defer stmt.Close()

	for pos, f := range l.Flows() {
		_, err := stmt.ExecContext(ctx,
			l.AccountName(), f.ID, f.Amount.Cents, f.Category,
			f.ExecutedAt.UTC().Format(time.RFC3339Nano),
			f.EveryDays, f.Note, string(f.State), f.CommitmentID, pos)
		if err != nil {
			return fmt.Errorf("insert flow %d: %w", f.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Ledger snapshot saved",
		"account", l.AccountName(),
		"flows", len(l.Flows()),
		"last_id", l.LastAssignedID())

	return nil
}

// Load rebuilds the most recent snapshot for the account, flows in their
// original insertion order. Returns ErrLedgerNotFound when the account has
// never been saved; callers are expected to fall back to a fresh empty
// ledger rather than fail.
func (r *SQLiteRepository) Load(ctx context.Context, accountName string) (*core.Ledger, error) {
	var lastID int64
	err := r.db.QueryRowContext(ctx,
		`SELECT last_assigned_id FROM ledgers WHERE account_name = ?`, accountName).Scan(&lastID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLedgerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger row: %w", err)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT flow_id, amount_cents, category, executed_at, every_days, note, state, commitment_id
		 FROM flows WHERE account_name = ? ORDER BY position`, accountName)
	if err != nil {
		return nil, fmt.Errorf("read flows: %w", err)
	}
	defer rows.Close()

	var flows []core.Flow
	for rows.Next() {
		var (
			f          core.Flow
			executedAt string
			state      string
		)
		if err := rows.Scan(&f.ID, &f.Amount.Cents, &f.Category, &executedAt, &f.EveryDays, &f.Note, &state, &f.CommitmentID); err != nil {
			return nil, fmt.Errorf("scan flow: %w", err)
		}
		f.ExecutedAt, err = time.Parse(time.RFC3339Nano, executedAt)
		if err != nil {
			return nil, fmt.Errorf("parse executed_at for flow %d: %w", f.ID, err)
		}
		f.State = core.FlowState(state)
		flows = append(flows, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate flows: %w", err)
	}

	ledger, err := core.Restore(accountName, flows, lastID)
	if err != nil {
		return nil, fmt.Errorf("restore ledger: %w", err)
	}

	slog.InfoContext(ctx, "Ledger snapshot loaded",
		"account", accountName,
		"flows", len(flows),
		"last_id", lastID)

	return ledger, nil
}
