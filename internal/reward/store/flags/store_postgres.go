package flags

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// PostgresStore persists suspicion flags in the reward_flags table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed flag store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, flag *models.SuspicionFlag) error {
	evidence, err := json.Marshal(flag.Evidence)
	if err != nil {
		return fmt.Errorf("marshal flag evidence: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reward_flags (id, user_id, action, flag_type, evidence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, flag.ID, uuid.UUID(flag.UserID), flag.Action.String(), string(flag.FlagType), evidence, flag.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert suspicion flag: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.SuspicionFlag, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, action, flag_type, evidence, created_at
		FROM reward_flags
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query suspicion flags: %w", err)
	}
	defer rows.Close()

	var out []*models.SuspicionFlag
	for rows.Next() {
		var (
			flag     models.SuspicionFlag
			user     uuid.UUID
			action   string
			flagType string
			evidence []byte
		)
		if err := rows.Scan(&flag.ID, &user, &action, &flagType, &evidence, &flag.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan suspicion flag: %w", err)
		}
		flag.UserID = id.UserID(user)
		flag.Action = id.Action(action)
		flag.FlagType = models.FlagType(flagType)
		if len(evidence) > 0 {
			if err := json.Unmarshal(evidence, &flag.Evidence); err != nil {
				return nil, fmt.Errorf("unmarshal flag evidence: %w", err)
			}
		}
		out = append(out, &flag)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suspicion flags: %w", err)
	}
	return out, nil
}
