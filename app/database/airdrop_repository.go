package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var _ AirdropRepository = (*SQLAirdropRepository)(nil)

// SQLAirdropRepository implements AirdropRepository on top of SQLite.
type SQLAirdropRepository struct {
	db *DB
}

func NewAirdropRepository(db *DB) *SQLAirdropRepository {
	return &SQLAirdropRepository{db: db}
}

const airdropColumns = `fingerprint, platform, url, title, description, reward_hint,
	       deadline, raw_payload, score, rationale, status,
	       first_seen_at, last_notified_at, created_at, updated_at`

// GetByFingerprint returns the record for a fingerprint, or nil when the
// fingerprint has never been accepted or rejected.
func (r *SQLAirdropRepository) GetByFingerprint(fingerprint string) (*Airdrop, error) {
	row := r.db.QueryRow(`
		SELECT `+airdropColumns+`
		FROM airdrops
		WHERE fingerprint = ?
	`, fingerprint)

	record, err := scanAirdrop(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get airdrop by fingerprint: %w", err)
	}

	return record, nil
}

// Upsert inserts or updates the record keyed by its fingerprint. Re-upserting
// the same fingerprint refreshes the candidate snapshot, score and status but
// preserves first_seen_at and last_notified_at; those only ever advance
// through their dedicated paths.
func (r *SQLAirdropRepository) Upsert(record Airdrop) error {
	firstSeen := record.FirstSeenAt.UTC()
	if record.FirstSeenAt.IsZero() {
		firstSeen = time.Now().UTC()
	}

	_, err := r.db.Exec(`
		INSERT INTO airdrops (
			fingerprint, platform, url, title, description, reward_hint,
			deadline, raw_payload, score, rationale, status, first_seen_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (fingerprint) DO UPDATE SET
			platform = excluded.platform,
			url = excluded.url,
			title = excluded.title,
			description = excluded.description,
			reward_hint = excluded.reward_hint,
			deadline = excluded.deadline,
			raw_payload = excluded.raw_payload,
			score = excluded.score,
			rationale = excluded.rationale,
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP
	`, record.Fingerprint, record.Platform, record.URL, record.Title,
		record.Description, record.RewardHint, nullableTime(record.Deadline),
		record.RawPayload, record.Score, record.Rationale, string(record.Status),
		firstSeen)

	if err != nil {
		return fmt.Errorf("failed to upsert airdrop: %w", err)
	}

	return nil
}

// ListDueForNotification returns approved records whose last notification is
// missing or predates the given window instant, best scored first.
// Timestamps live in sqlite as TEXT, so every bound instant goes in as UTC;
// mixed offsets would make the comparison lexicographically wrong.
func (r *SQLAirdropRepository) ListDueForNotification(since time.Time, limit int) ([]Airdrop, error) {
	rows, err := r.db.Query(`
		SELECT `+airdropColumns+`
		FROM airdrops
		WHERE status = ?
		  AND (last_notified_at IS NULL OR last_notified_at < ?)
		ORDER BY score DESC, first_seen_at ASC
		LIMIT ?
	`, string(StatusApproved), since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list airdrops due for notification: %w", err)
	}
	defer rows.Close()

	return collectAirdrops(rows)
}

// MarkNotified advances last_notified_at for every fingerprint in the batch.
// Called only after the notification channel confirmed acceptance.
func (r *SQLAirdropRepository) MarkNotified(fingerprints []string, notifiedAt time.Time) error {
	if len(fingerprints) == 0 {
		return nil
	}

	placeholders := strings.Repeat("?, ", len(fingerprints)-1) + "?"
	args := make([]interface{}, 0, len(fingerprints)+1)
	args = append(args, notifiedAt.UTC())
	for _, fp := range fingerprints {
		args = append(args, fp)
	}

	_, err := r.db.Exec(`
		UPDATE airdrops
		SET last_notified_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE fingerprint IN (`+placeholders+`)
	`, args...)

	if err != nil {
		return fmt.Errorf("failed to mark airdrops notified: %w", err)
	}

	return nil
}

// ExpireOverdue transitions approved records whose deadline has passed to
// expired and returns how many were affected.
func (r *SQLAirdropRepository) ExpireOverdue(now time.Time) (int, error) {
	result, err := r.db.Exec(`
		UPDATE airdrops
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE status = ?
		  AND deadline IS NOT NULL
		  AND deadline < ?
	`, string(StatusExpired), string(StatusApproved), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire overdue airdrops: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return int(affected), nil
}

func (r *SQLAirdropRepository) ListRecent(limit int) ([]Airdrop, error) {
	rows, err := r.db.Query(`
		SELECT `+airdropColumns+`
		FROM airdrops
		ORDER BY first_seen_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent airdrops: %w", err)
	}
	defer rows.Close()

	return collectAirdrops(rows)
}

func (r *SQLAirdropRepository) GetStats() (*Stats, error) {
	var stats Stats
	err := r.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = 'expired' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN last_notified_at IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(CASE WHEN status = 'approved' THEN score END), 0)
		FROM airdrops
	`).Scan(&stats.Total, &stats.Approved, &stats.Rejected, &stats.Expired,
		&stats.Notified, &stats.AverageScore)

	if err != nil {
		return nil, fmt.Errorf("failed to get airdrop stats: %w", err)
	}

	return &stats, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAirdrop(row rowScanner) (*Airdrop, error) {
	var record Airdrop
	var status string
	var deadline, lastNotified sql.NullTime

	err := row.Scan(
		&record.Fingerprint, &record.Platform, &record.URL, &record.Title,
		&record.Description, &record.RewardHint, &deadline, &record.RawPayload,
		&record.Score, &record.Rationale, &status,
		&record.FirstSeenAt, &lastNotified, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Status = Status(status)
	if deadline.Valid {
		t := deadline.Time
		record.Deadline = &t
	}
	if lastNotified.Valid {
		t := lastNotified.Time
		record.LastNotifiedAt = &t
	}

	return &record, nil
}

func collectAirdrops(rows *sql.Rows) ([]Airdrop, error) {
	var records []Airdrop
	for rows.Next() {
		record, err := scanAirdrop(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan airdrop row: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating airdrop rows: %w", err)
	}

	return records, nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
