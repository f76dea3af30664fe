package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Publisher captures consent decisions. It is append-only and persists
// through a Store so tests can swap sinks.
type Publisher struct {
	store  Store
	events chan Event
	wg     sync.WaitGroup
	logger *slog.Logger
	async  bool
	now    func() time.Time
}

type PublisherOption func(*Publisher)

// WithAsyncBuffer queues events in a buffer of the given size and persists
// them from a background goroutine.
func WithAsyncBuffer(size int) PublisherOption {
	return func(p *Publisher) {
		if size > 0 {
			p.events = make(chan Event, size)
			p.async = true
		}
	}
}

func WithPublisherLogger(logger *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...PublisherOption) *Publisher {
	p := &Publisher{store: store, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.async {
		p.wg.Add(1)
		go p.processEvents()
	}
	return p
}

func (p *Publisher) processEvents() {
	defer p.wg.Done()
	for event := range p.events {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("failed to persist audit event",
				"error", err,
				"action", event.Action,
				"visitor_id", event.VisitorID,
			)
		}
	}
}

// Close stops the async worker after draining queued events.
func (p *Publisher) Close() {
	if p.async && p.events != nil {
		close(p.events)
		p.wg.Wait()
	}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = p.now()
	}
	if !p.async {
		return p.store.Append(ctx, event)
	}
	// Never block a consent commit on a slow sink.
	select {
	case p.events <- event:
	default:
		if p.logger != nil {
			p.logger.Warn("audit buffer full, event dropped",
				"action", event.Action,
				"visitor_id", event.VisitorID,
			)
		}
	}
	return nil
}

func (p *Publisher) List(ctx context.Context, visitorID string) ([]Event, error) {
	return p.store.ListByVisitor(ctx, visitorID)
}
