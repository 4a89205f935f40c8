package testutil

import (
	"time"

	"github.com/google/uuid"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
)

// TestIDs provides pre-generated IDs for deterministic test data.
var TestIDs = struct {
	UserID1 id.UserID
	UserID2 id.UserID
}{
	UserID1: id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2: id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
}

// RuleBuilder provides a fluent interface for building test action rules.
type RuleBuilder struct {
	rule *models.ActionRule
}

// NewRuleBuilder creates a RuleBuilder with sensible defaults: an active
// fixed-interval rule with a 30 second cooldown worth one coin.
func NewRuleBuilder() *RuleBuilder {
	return &RuleBuilder{
		rule: &models.ActionRule{
			Action:          "scroll_page",
			CooldownSeconds: 30,
			Amount:          1,
			IsActive:        true,
		},
	}
}

func (b *RuleBuilder) WithAction(action id.Action) *RuleBuilder {
	b.rule.Action = action
	return b
}

func (b *RuleBuilder) WithCooldown(seconds int) *RuleBuilder {
	b.rule.CooldownSeconds = seconds
	return b
}

func (b *RuleBuilder) OncePerDay() *RuleBuilder {
	b.rule.OncePerDay = true
	b.rule.CooldownSeconds = 0
	return b
}

func (b *RuleBuilder) WithMaxPerDay(limit int) *RuleBuilder {
	b.rule.MaxPerDay = &limit
	return b
}

func (b *RuleBuilder) WithAmount(amount int) *RuleBuilder {
	b.rule.Amount = amount
	return b
}

func (b *RuleBuilder) Inactive() *RuleBuilder {
	b.rule.IsActive = false
	return b
}

func (b *RuleBuilder) Build() *models.ActionRule {
	rule := *b.rule
	return &rule
}

// EventBuilder provides a fluent interface for building test action events.
type EventBuilder struct {
	event *models.ActionEvent
}

func NewEventBuilder() *EventBuilder {
	return &EventBuilder{
		event: &models.ActionEvent{
			ID:        uuid.New(),
			UserID:    TestIDs.UserID1,
			Action:    "scroll_page",
			Amount:    1,
			CreatedAt: time.Now(),
		},
	}
}

func (b *EventBuilder) WithUser(userID id.UserID) *EventBuilder {
	b.event.UserID = userID
	return b
}

func (b *EventBuilder) WithAction(action id.Action) *EventBuilder {
	b.event.Action = action
	return b
}

func (b *EventBuilder) WithAmount(amount int) *EventBuilder {
	b.event.Amount = amount
	return b
}

func (b *EventBuilder) At(t time.Time) *EventBuilder {
	b.event.CreatedAt = t
	return b
}

func (b *EventBuilder) Build() *models.ActionEvent {
	event := *b.event
	return &event
}
