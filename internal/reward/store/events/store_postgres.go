package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
	"coinguard/pkg/platform/sentinel"
)

// PostgresStore persists action events in the reward_events table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed event store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event *models.ActionEvent) error {
	metadata, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reward_events (id, user_id, action, amount, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, uuid.UUID(event.UserID), event.Action.String(), event.Amount, event.CreatedAt, metadata)
	if err != nil {
		return fmt.Errorf("insert reward event: %w", err)
	}
	return nil
}

func (s *PostgresStore) MostRecent(ctx context.Context, userID id.UserID, action id.Action) (*models.ActionEvent, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, action, amount, created_at, metadata
		FROM reward_events
		WHERE user_id = $1 AND action = $2
		ORDER BY created_at DESC
		LIMIT 1
	`, uuid.UUID(userID), action.String())

	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query most recent event: %w", err)
	}
	return event, nil
}

func (s *PostgresStore) CountInWindow(ctx context.Context, userID id.UserID, action id.Action, start, end time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM reward_events
		WHERE user_id = $1 AND action = $2 AND created_at >= $3 AND created_at < $4
	`, uuid.UUID(userID), action.String(), start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count events in window: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListSince(ctx context.Context, userID id.UserID, action id.Action, since time.Time) ([]*models.ActionEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, amount, created_at, metadata
		FROM reward_events
		WHERE user_id = $1 AND action = $2 AND created_at >= $3
		ORDER BY created_at DESC
	`, uuid.UUID(userID), action.String(), since)
	if err != nil {
		return nil, fmt.Errorf("query recent events: %w", err)
	}
	defer rows.Close()

	var out []*models.ActionEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward event: %w", err)
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reward events: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*models.ActionEvent, error) {
	var (
		event    models.ActionEvent
		userID   uuid.UUID
		action   string
		metadata []byte
	)
	if err := row.Scan(&event.ID, &userID, &action, &event.Amount, &event.CreatedAt, &metadata); err != nil {
		return nil, err
	}
	event.UserID = id.UserID(userID)
	event.Action = id.Action(action)
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal event metadata: %w", err)
		}
	}
	return &event, nil
}
