package database

import (
	"context"
	"fmt"
	"time"

	"github.com/lib/pq"
)

const backupTablePrefix = "products_backup_"

var _ BackupRepository = (*BackupRepo)(nil)

// BackupRepo manages dated snapshot tables of the products table
type BackupRepo struct {
	db *DB
}

func NewBackupRepository(db *DB) *BackupRepo {
	return &BackupRepo{db: db}
}

// BackupProducts snapshots the products table into a table named after the
// current UTC date. Re-running on the same day is a no-op.
func (r *BackupRepo) BackupProducts(ctx context.Context) (string, error) {
	tableName := backupTablePrefix + time.Now().UTC().Format("2006-01-02")

	query := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s AS SELECT * FROM products", pq.QuoteIdentifier(tableName))
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return "", &StoreError{Op: "backup_products", Err: err}
	}

	return tableName, nil
}

// PruneBackups drops all but the newest keep snapshot tables and returns the
// names of the dropped tables. The date suffix sorts chronologically, so
// ordering by name is ordering by age.
func (r *BackupRepo) PruneBackups(ctx context.Context, keep int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name LIKE $1
		ORDER BY table_name DESC
		OFFSET $2
	`, backupTablePrefix+"%", keep)
	if err != nil {
		return nil, &StoreError{Op: "prune_backups", Err: err}
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, &StoreError{Op: "scan_backup_table", Err: err}
		}
		stale = append(stale, tableName)
	}

	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "iterate_backup_tables", Err: err}
	}

	var dropped []string
	for _, tableName := range stale {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", pq.QuoteIdentifier(tableName))
		if _, err := r.db.ExecContext(ctx, query); err != nil {
			return dropped, &StoreError{Op: "drop_backup_table", Err: err}
		}
		dropped = append(dropped, tableName)
	}

	return dropped, nil
}
