// Package seed populates the rule store with demo policies for local
// development. Production deployments manage rules through the admin
// surface and never call this.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"coinguard/internal/reward/models"
)

// RuleWriter is the write-side of the rule store the seeder needs.
type RuleWriter interface {
	Put(ctx context.Context, rule *models.ActionRule) error
}

// Seeder populates in-memory stores with demo data.
type Seeder struct {
	rules  RuleWriter
	logger *slog.Logger
}

func New(rules RuleWriter, logger *slog.Logger) *Seeder {
	return &Seeder{rules: rules, logger: logger}
}

func intPtr(v int) *int { return &v }

// SeedRules installs a representative rule set: a once-per-day action,
// short-cooldown capped actions, and one inactive rule.
func (s *Seeder) SeedRules(ctx context.Context) error {
	now := time.Now().UTC()

	demoRules := []*models.ActionRule{
		{
			Action:     "daily_login",
			OncePerDay: true,
			Amount:     10,
			IsActive:   true,
		},
		{
			Action:          "scroll_page",
			CooldownSeconds: 30,
			MaxPerDay:       intPtr(20),
			Amount:          1,
			IsActive:        true,
		},
		{
			Action:          "share_article",
			CooldownSeconds: 300,
			MaxPerDay:       intPtr(5),
			Amount:          5,
			IsActive:        true,
		},
		{
			Action:          "watch_video",
			CooldownSeconds: 60,
			MaxPerDay:       intPtr(10),
			Amount:          2,
			IsActive:        true,
		},
		{
			Action:          "invite_friend",
			CooldownSeconds: 3600,
			Amount:          50,
			IsActive:        false,
		},
	}

	for _, rule := range demoRules {
		rule.CreatedAt = now
		rule.UpdatedAt = now
		if err := s.rules.Put(ctx, rule); err != nil {
			return fmt.Errorf("seed rule %s: %w", rule.Action, err)
		}
	}

	s.logger.Info("demo rules seeded", "count", len(demoRules))
	return nil
}
