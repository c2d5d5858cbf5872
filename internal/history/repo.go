// Package history records repair runs in SQLite so past reports can be
// listed and inspected after the catalog has been overwritten.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"productcatalog/pkg/models"
)

type Run struct {
	ID          string               `json:"id"`
	CatalogPath string               `json:"catalog_path"`
	BackupPath  string               `json:"backup_path,omitempty"`
	StartedAt   time.Time            `json:"started_at"`
	Products    int                  `json:"products"`
	Fallbacks   int                  `json:"fallbacks"`
	DryRun      bool                 `json:"dry_run"`
	Entries     []models.ReportEntry `json:"entries,omitempty"`
}

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// Record stores run and its entries in one transaction. An empty ID or
// zero StartedAt is filled in; the stored run is returned.
func (r *Repo) Record(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO repair_runs (id, catalog_path, backup_path, started_at, products, fallbacks, dry_run)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.CatalogPath, run.BackupPath, run.StartedAt, run.Products, run.Fallbacks, run.DryRun); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO repair_entries (run_id, seq, product_id, name, before_image, after_image, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return Run{}, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	for i, e := range run.Entries {
		if _, err := stmt.ExecContext(ctx, run.ID, i, e.ID, e.Name, e.Before, e.After, e.Note); err != nil {
			return Run{}, fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit tx: %w", err)
	}
	return run, nil
}

// List returns the most recent runs without their entries.
func (r *Repo) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, catalog_path, backup_path, started_at, products, fallbacks, dry_run
		FROM repair_runs
		ORDER BY started_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := []Run{}
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.CatalogPath, &run.BackupPath, &run.StartedAt, &run.Products, &run.Fallbacks, &run.DryRun); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// GetByID returns the run with its entries in catalog order, or nil when
// no such run exists.
func (r *Repo) GetByID(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, catalog_path, backup_path, started_at, products, fallbacks, dry_run
		FROM repair_runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.CatalogPath, &run.BackupPath, &run.StartedAt, &run.Products, &run.Fallbacks, &run.DryRun)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT product_id, name, before_image, after_image, note
		FROM repair_entries
		WHERE run_id = ?
		ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.ReportEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Before, &e.After, &e.Note); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		run.Entries = append(run.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return &run, nil
}
