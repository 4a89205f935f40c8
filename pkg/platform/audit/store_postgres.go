package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	id "coinguard/pkg/domain"
)

// PostgresStore persists security log entries in the security_log table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("marshal log metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO security_log
			(id, user_id, action, outcome, reason, suspicious, ip_address, user_agent, request_id, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, entry.ID, uuid.UUID(entry.UserID), entry.Action.String(), string(entry.Outcome), entry.Reason,
		entry.Suspicious, entry.IPAddress, entry.UserAgent, entry.RequestID, entry.Timestamp, metadata)
	if err != nil {
		return fmt.Errorf("insert security log entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, outcome, reason, suspicious, ip_address, user_agent, request_id, created_at, metadata
		FROM security_log
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query security log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			entry    Entry
			user     uuid.UUID
			action   string
			outcome  string
			metadata []byte
		)
		err := rows.Scan(&entry.ID, &user, &action, &outcome, &entry.Reason, &entry.Suspicious,
			&entry.IPAddress, &entry.UserAgent, &entry.RequestID, &entry.Timestamp, &metadata)
		if err != nil {
			return nil, fmt.Errorf("scan security log entry: %w", err)
		}
		entry.UserID = id.UserID(user)
		entry.Action = id.Action(action)
		entry.Outcome = Outcome(outcome)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal log metadata: %w", err)
			}
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate security log: %w", err)
	}
	return out, nil
}
