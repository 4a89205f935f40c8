package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"coinguard/internal/reward/config"
	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
	dErrors "coinguard/pkg/domain-errors"
)

// Postgres is a transactional Awarder. It serializes awards for the same
// (user, action) pair with an advisory lock and re-checks the cooldown
// inside the transaction, so two instances of the service cannot double
// credit even without the in-process mutex.
type Postgres struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed awarder.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Award(ctx context.Context, userID id.UserID, rule *models.ActionRule, meta models.ClientMetadata, now time.Time) (*models.ActionEvent, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin award tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	lockKey := fmt.Sprintf("reward:%s:%s", uuid.UUID(userID), rule.Action)
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1)::bigint)`, lockKey); err != nil {
		return nil, fmt.Errorf("acquire award lock: %w", err)
	}

	if err := p.recheckCooldown(ctx, tx, userID, rule, now); err != nil {
		return nil, err
	}

	event := &models.ActionEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Action:    rule.Action,
		Amount:    rule.Amount,
		CreatedAt: now,
		Metadata:  meta,
	}
	metadata, err := marshalMetadata(meta)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO reward_events (id, user_id, action, amount, created_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, uuid.UUID(userID), rule.Action.String(), rule.Amount, now, metadata)
	if err != nil {
		return nil, fmt.Errorf("insert award event: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO coin_balances (user_id, balance, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = coin_balances.balance + EXCLUDED.balance, updated_at = EXCLUDED.updated_at
	`, uuid.UUID(userID), rule.Amount, now)
	if err != nil {
		return nil, fmt.Errorf("credit balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit award tx: %w", err)
	}
	return event, nil
}

func marshalMetadata(meta models.ClientMetadata) ([]byte, error) {
	out, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal award metadata: %w", err)
	}
	return out, nil
}

// recheckCooldown re-runs the cooldown decision against the most recent
// committed event while holding the advisory lock. A concurrent award that
// committed between the orchestrator's read and this transaction shows up
// here and loses the race.
func (p *Postgres) recheckCooldown(ctx context.Context, tx *sql.Tx, userID id.UserID, rule *models.ActionRule, now time.Time) error {
	var last sql.NullTime
	err := tx.QueryRowContext(ctx, `
		SELECT MAX(created_at) FROM reward_events WHERE user_id = $1 AND action = $2
	`, uuid.UUID(userID), rule.Action.String()).Scan(&last)
	if err != nil {
		return fmt.Errorf("read last award: %w", err)
	}
	if !last.Valid {
		return nil
	}

	if rule.OncePerDay {
		if config.SameCalendarDay(last.Time, now) {
			return dErrors.New(dErrors.CodeConflict, "award already granted today")
		}
		return nil
	}
	if rule.CooldownSeconds > 0 && now.Sub(last.Time) < time.Duration(rule.CooldownSeconds)*time.Second {
		return dErrors.New(dErrors.CodeConflict, "award still in cooldown")
	}
	return nil
}
