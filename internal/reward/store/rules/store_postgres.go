package rules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
	"coinguard/pkg/platform/sentinel"
)

// PostgresStore reads rules from the reward_rules table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed rule store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, action id.Action) (*models.ActionRule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT action, cooldown_seconds, once_per_day, max_per_day, amount, is_active, created_at, updated_at
		FROM reward_rules
		WHERE action = $1
	`, action.String())

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query reward rule: %w", err)
	}
	return rule, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.ActionRule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT action, cooldown_seconds, once_per_day, max_per_day, amount, is_active, created_at, updated_at
		FROM reward_rules
		ORDER BY action
	`)
	if err != nil {
		return nil, fmt.Errorf("query reward rules: %w", err)
	}
	defer rows.Close()

	var out []*models.ActionRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reward rule: %w", err)
		}
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reward rules: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRule(row rowScanner) (*models.ActionRule, error) {
	var (
		rule      models.ActionRule
		action    string
		maxPerDay sql.NullInt64
	)
	err := row.Scan(
		&action,
		&rule.CooldownSeconds,
		&rule.OncePerDay,
		&maxPerDay,
		&rule.Amount,
		&rule.IsActive,
		&rule.CreatedAt,
		&rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rule.Action = id.Action(action)
	if maxPerDay.Valid {
		v := int(maxPerDay.Int64)
		rule.MaxPerDay = &v
	}
	return &rule, nil
}
