package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/scanlink/scanlink/internal/model"
)

// RecordScan appends a scan event and bumps the owning entry's counters
// in one transaction: either both changes land or neither does.
func (r *Repository) RecordScan(ctx context.Context, linkID string, event *model.ScanEvent) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin scan transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO scan_events (
			id, short_link_id, user_agent, source_address,
			is_restrictive_context, scanned_at
		)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := tx.Exec(ctx, insertQuery,
		event.ID,
		linkID,
		event.UserAgent,
		event.SourceAddress,
		event.IsRestrictiveContext,
		event.ScannedAt,
	); err != nil {
		return fmt.Errorf("failed to insert scan event: %w", err)
	}

	updateQuery := `
		UPDATE short_links
		SET scan_count = scan_count + 1, last_scanned_at = $2
		WHERE id = $1
	`

	if _, err := tx.Exec(ctx, updateQuery, linkID, event.ScannedAt); err != nil {
		return fmt.Errorf("failed to update scan counters: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit scan transaction: %w", err)
	}

	return nil
}

// ScansForLink returns the scan history for a link, oldest first.
func (r *Repository) ScansForLink(ctx context.Context, linkID string) ([]*model.ScanEvent, error) {
	query := `
		SELECT id, short_link_id, user_agent, source_address,
		       is_restrictive_context, scanned_at
		FROM scan_events
		WHERE short_link_id = $1
		ORDER BY scanned_at ASC
	`

	rows, err := r.pool.Query(ctx, query, linkID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan events: %w", err)
	}
	defer rows.Close()

	var events []*model.ScanEvent
	for rows.Next() {
		var event model.ScanEvent
		if err := rows.Scan(
			&event.ID,
			&event.ShortLinkID,
			&event.UserAgent,
			&event.SourceAddress,
			&event.IsRestrictiveContext,
			&event.ScannedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, &event)
	}

	return events, rows.Err()
}
