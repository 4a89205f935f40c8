package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	id "coinguard/pkg/domain"
)

// Publisher writes security log entries through the store. Synchronous by
// default; WithAsyncBuffer moves persistence onto a background goroutine so
// the validation hot path never waits on the log sink.
type Publisher struct {
	store   Store
	entries chan Entry
	wg      sync.WaitGroup
	logger  *slog.Logger
	metrics *Metrics
	async   bool
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithAsyncBuffer enables async persistence with the given buffer size.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.entries = make(chan Entry, size)
			p.async = true
		}
	}
}

// WithPublisherLogger sets a logger for async error reporting.
func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithPublisherMetrics wires queue and failure metrics.
func WithPublisherMetrics(m *Metrics) PublisherOption {
	return func(p *Publisher) {
		p.metrics = m
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEntries()
	}
	return p
}

func (p *Publisher) processEntries() {
	defer p.wg.Done()
	for entry := range p.entries {
		if p.metrics != nil {
			p.metrics.QueueDepth.Dec()
		}
		p.persist(entry)
	}
}

func (p *Publisher) persist(entry Entry) {
	if err := p.store.Append(context.Background(), entry); err != nil {
		if p.metrics != nil {
			p.metrics.PersistFailures.Inc()
		}
		if p.logger != nil {
			p.logger.Error("failed to persist security log entry",
				"error", err,
				"action", entry.Action,
				"user_id", entry.UserID,
				"outcome", entry.Outcome,
			)
		}
		return
	}
	if p.metrics != nil {
		p.metrics.EntriesPersisted.Inc()
	}
}

// Close shuts down the async publisher and drains pending entries.
func (p *Publisher) Close() {
	if p.async && p.entries != nil {
		close(p.entries)
		p.wg.Wait()
	}
}

// Emit records one entry. In async mode the send never blocks; a full
// buffer drops the entry and counts the drop.
func (p *Publisher) Emit(ctx context.Context, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if p.async {
		select {
		case p.entries <- entry:
			if p.metrics != nil {
				p.metrics.QueueDepth.Inc()
				p.metrics.EntriesEnqueued.Inc()
			}
		default:
			if p.metrics != nil {
				p.metrics.EntriesDropped.Inc()
			}
			if p.logger != nil {
				p.logger.Warn("security log buffer full, entry dropped",
					"action", entry.Action,
					"user_id", entry.UserID,
				)
			}
		}
		return nil
	}
	if err := p.store.Append(ctx, entry); err != nil {
		if p.metrics != nil {
			p.metrics.PersistFailures.Inc()
		}
		return err
	}
	if p.metrics != nil {
		p.metrics.EntriesPersisted.Inc()
	}
	return nil
}

// List exposes the underlying store for admin views.
func (p *Publisher) List(ctx context.Context, userID id.UserID) ([]Entry, error) {
	return p.store.ListByUser(ctx, userID)
}
