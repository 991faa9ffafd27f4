package db

import (
	"context"
	"fmt"
)

// migrate brings an existing cache up to schemaVersion. Caches written by
// older builds hold nothing that cannot be fetched again, so incompatible
// versions are dropped and recreated.
func (db *DB) migrate() error {
	ctx := context.Background()

	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	if version == schemaVersion {
		return nil
	}
	if version > schemaVersion {
		return fmt.Errorf("cache schema version %d is newer than supported version %d", version, schemaVersion)
	}

	if version > 0 && version < schemaVersion {
		for _, table := range []string{"usage_records", "fetch_log"} {
			if _, err := db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
				return fmt.Errorf("failed to drop %s: %w", table, err)
			}
		}
		if err := db.createSchema(); err != nil {
			return err
		}
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to set schema version: %w", err)
	}
	return nil
}

// SchemaVersion returns the stored schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRowContext(context.Background(), "PRAGMA user_version").Scan(&version)
	return version, err
}
