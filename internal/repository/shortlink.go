package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/scanlink/scanlink/internal/model"
	"github.com/scanlink/scanlink/internal/registry"
)

var _ registry.Store = (*Repository)(nil)

// InsertLink persists a fully-populated new entry. The unique index on
// code is the uniqueness signal: a conflicting insert returns
// registry.ErrCodeExists so the registry can retry with a new candidate.
func (r *Repository) InsertLink(ctx context.Context, link *model.ShortLink) error {
	query := `
		INSERT INTO short_links (
			id, code, display_name, content_kind, payload, route_hint,
			compact_mode, is_active, scan_count, last_scanned_at, created_at, expires_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		link.ID,
		link.Code,
		link.DisplayName,
		link.ContentKind,
		link.Payload,
		link.RouteHint,
		link.CompactMode,
		link.IsActive,
		link.ScanCount,
		link.LastScannedAt,
		link.CreatedAt,
		link.ExpiresAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return registry.ErrCodeExists
		}
		return fmt.Errorf("failed to insert short link: %w", err)
	}

	return nil
}

// GetLinkByCode retrieves an entry by exact code match.
// This is the hot path for resolution.
func (r *Repository) GetLinkByCode(ctx context.Context, code string) (*model.ShortLink, error) {
	query := `
		SELECT id, code, display_name, content_kind, payload, route_hint,
		       compact_mode, is_active, scan_count, last_scanned_at, created_at, expires_at
		FROM short_links
		WHERE code = $1
	`

	link, err := scanShortLink(r.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, registry.ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get short link by code: %w", err)
	}

	return link, nil
}

// ListActiveLinks returns all active entries whose expiry has not elapsed,
// newest first.
func (r *Repository) ListActiveLinks(ctx context.Context, now time.Time) ([]*model.ShortLink, error) {
	query := `
		SELECT id, code, display_name, content_kind, payload, route_hint,
		       compact_mode, is_active, scan_count, last_scanned_at, created_at, expires_at
		FROM short_links
		WHERE is_active = TRUE AND expires_at >= $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list active links: %w", err)
	}
	defer rows.Close()

	var links []*model.ShortLink
	for rows.Next() {
		link, err := scanShortLink(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan short link: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating short links: %w", err)
	}

	return links, nil
}

// LatestDisplayName returns the display name of the most recently created
// entry, or "" when the table is empty.
func (r *Repository) LatestDisplayName(ctx context.Context) (string, error) {
	query := `
		SELECT display_name
		FROM short_links
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var name string
	err := r.pool.QueryRow(ctx, query).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get latest display name: %w", err)
	}

	return name, nil
}

// DeactivateLink idempotently sets is_active to false. Unknown codes are
// not an error.
func (r *Repository) DeactivateLink(ctx context.Context, code string) error {
	query := `
		UPDATE short_links
		SET is_active = FALSE
		WHERE code = $1
	`

	if _, err := r.pool.Exec(ctx, query, code); err != nil {
		return fmt.Errorf("failed to deactivate link: %w", err)
	}

	return nil
}

// DeactivateExpired flips is_active on every entry whose expiry has
// elapsed and that is still marked active. Returns the number of rows
// changed.
func (r *Repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE short_links
		SET is_active = FALSE
		WHERE is_active = TRUE AND expires_at < $1
	`

	result, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired links: %w", err)
	}

	return result.RowsAffected(), nil
}

// scanShortLink scans a single row into a ShortLink model.
func scanShortLink(row pgx.Row) (*model.ShortLink, error) {
	var link model.ShortLink
	err := row.Scan(
		&link.ID,
		&link.Code,
		&link.DisplayName,
		&link.ContentKind,
		&link.Payload,
		&link.RouteHint,
		&link.CompactMode,
		&link.IsActive,
		&link.ScanCount,
		&link.LastScannedAt,
		&link.CreatedAt,
		&link.ExpiresAt,
	)
	return &link, err
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (error code 23505).
func isUniqueViolation(err error) bool {
	return err != nil && (strings.Contains(err.Error(), "23505") || strings.Contains(err.Error(), "unique"))
}
