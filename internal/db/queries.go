package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/billing-dashboard-tui/internal/logger"
	"github.com/j-veylop/billing-dashboard-tui/internal/models"
)

// ReplaceUsageRecords stores records as the complete cached set for userID.
// The previous set is removed in the same transaction, so readers never see
// a mix of two fetches.
func (db *DB) ReplaceUsageRecords(userID string, records []models.UsageRecord) error {
	ctx := context.Background()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM usage_records WHERE user_id = ?", userID); err != nil {
		return fmt.Errorf("failed to clear usage records: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO usage_records (
			user_id, seq, date, model_id, provider,
			total_tokens, total_cost, request_count, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	fetchedAt := time.Now().UTC().Format(timeLayout)
	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx,
			userID,
			i,
			rec.Date,
			rec.ModelID,
			rec.Provider,
			rec.TotalTokens,
			rec.TotalCost,
			rec.RequestCount,
			fetchedAt,
		); err != nil {
			return fmt.Errorf("failed to insert usage record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit usage records: %w", err)
	}

	logger.Debug("cached usage records", "user", userID, "count", len(records))
	return nil
}

// GetUsageRecords returns the cached records for userID in their original order.
func (db *DB) GetUsageRecords(userID string) ([]models.UsageRecord, error) {
	query := `
		SELECT date, model_id, provider, total_tokens, total_cost, request_count
		FROM usage_records
		WHERE user_id = ?
		ORDER BY seq ASC
	`

	rows, err := db.QueryContext(context.Background(), query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := make([]models.UsageRecord, 0)
	for rows.Next() {
		var rec models.UsageRecord
		if err := rows.Scan(
			&rec.Date,
			&rec.ModelID,
			&rec.Provider,
			&rec.TotalTokens,
			&rec.TotalCost,
			&rec.RequestCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// CountUsageRecords returns how many records are cached for userID.
func (db *DB) CountUsageRecords(userID string) (int, error) {
	var n int
	err := db.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM usage_records WHERE user_id = ?", userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count usage records: %w", err)
	}
	return n, nil
}

// CachedUsers returns the user ids with cached records.
func (db *DB) CachedUsers() ([]string, error) {
	rows, err := db.QueryContext(context.Background(),
		"SELECT DISTINCT user_id FROM usage_records ORDER BY user_id")
	if err != nil {
		return nil, fmt.Errorf("failed to query cached users: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// RecordFetch appends an entry to the fetch log and trims old entries.
func (db *DB) RecordFetch(entry *models.FetchLog) error {
	fetchedAt := entry.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	result, err := db.ExecContext(context.Background(), `
		INSERT INTO fetch_log (user_id, source, fetched_at, record_count, error)
		VALUES (?, ?, ?, ?, ?)
	`,
		entry.UserID,
		entry.Source,
		fetchedAt.UTC().Format(timeLayout),
		entry.RecordCount,
		nullString(entry.Error),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch log: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}

	_, err = db.ExecContext(context.Background(), `
		DELETE FROM fetch_log
		WHERE user_id = ? AND id NOT IN (
			SELECT id FROM fetch_log WHERE user_id = ? ORDER BY id DESC LIMIT ?
		)
	`, entry.UserID, entry.UserID, defaultFetchLogRetention)
	if err != nil {
		return fmt.Errorf("failed to trim fetch log: %w", err)
	}

	return nil
}

// GetRecentFetches returns the most recent fetch log entries for userID.
func (db *DB) GetRecentFetches(userID string, limit int) ([]models.FetchLog, error) {
	query := `
		SELECT id, user_id, source, fetched_at, record_count, error
		FROM fetch_log
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.FetchLog
	for rows.Next() {
		entry, err := scanFetchLog(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// LastSuccessfulFetch returns the newest fetch without an error, or nil.
func (db *DB) LastSuccessfulFetch(userID string) (*models.FetchLog, error) {
	row := db.QueryRowContext(context.Background(), `
		SELECT id, user_id, source, fetched_at, record_count, error
		FROM fetch_log
		WHERE user_id = ? AND (error IS NULL OR error = '')
		ORDER BY id DESC
		LIMIT 1
	`, userID)

	entry, err := scanFetchLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFetchLog(s scanner) (models.FetchLog, error) {
	var (
		entry     models.FetchLog
		fetchedAt string
		errStr    sql.NullString
	)
	if err := s.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Source,
		&fetchedAt,
		&entry.RecordCount,
		&errStr,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry, err
		}
		return entry, fmt.Errorf("failed to scan fetch log: %w", err)
	}

	if t, err := time.ParseInLocation(timeLayout, fetchedAt, time.UTC); err == nil {
		entry.FetchedAt = t
	}
	if errStr.Valid {
		entry.Error = errStr.String
	}
	return entry, nil
}

// nullString converts a string to sql.NullString.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
