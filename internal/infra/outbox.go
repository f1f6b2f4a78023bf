package infra

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/greenfelt/cardroom/internal/domain"
	"github.com/greenfelt/cardroom/internal/repository"
)

// OutboxPoller drains the event_outbox table and publishes events to Kafka.
// Fetch and delete run in one store transaction per batch: an event is
// removed only after the producer accepted it, so a crash re-delivers
// rather than drops (at-least-once).
type OutboxPoller struct {
	store     repository.Store
	producer  *KafkaProducer
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
}

// NewOutboxPoller creates a new outbox poller.
func NewOutboxPoller(store repository.Store, producer *KafkaProducer, logger *slog.Logger, interval time.Duration, batchSize int) *OutboxPoller {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxPoller{
		store:     store,
		producer:  producer,
		logger:    logger,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start begins polling in a goroutine. Stops when ctx is cancelled.
func (p *OutboxPoller) Start(ctx context.Context) {
	p.logger.Info("outbox poller started", "interval", p.interval, "batch_size", p.batchSize)

	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				p.logger.Info("outbox poller stopped")
				return
			case <-ticker.C:
				if err := p.poll(ctx); err != nil {
					p.logger.Error("outbox poll error", "error", err)
				}
			}
		}
	}()
}

func (p *OutboxPoller) poll(ctx context.Context) error {
	return p.store.WithinTx(ctx, func(tx repository.Tx) error {
		events, err := tx.Outbox().FetchUnpublished(ctx, p.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}

		published := make([]int64, 0, len(events))
		for _, e := range events {
			msg, _ := json.Marshal(map[string]interface{}{
				"event_id":       e.EventID,
				"aggregate_type": e.AggregateType,
				"aggregate_id":   e.AggregateID,
				"event_type":     e.EventType,
				"payload":        e.Payload,
				"occurred_at":    e.OccurredAt,
			})

			if err := p.producer.Publish(ctx, TopicFor(e.EventType), []byte(e.PartitionKey), msg); err != nil {
				p.logger.Error("kafka publish failed", "event_id", e.EventID, "error", err)
				break
			}
			published = append(published, e.SeqID)
		}

		if len(published) > 0 {
			if err := tx.Outbox().MarkPublished(ctx, published); err != nil {
				return err
			}
			p.logger.Debug("outbox poll complete", "published", len(published))
		}
		return nil
	})
}

// TopicFor maps an event type to its Kafka topic: the first two dot-separated
// segments, e.g. club.ledger.buyin.recorded -> club.ledger.
func TopicFor(eventType domain.EventType) string {
	parts := strings.SplitN(string(eventType), ".", 3)
	if len(parts) < 2 {
		return string(eventType)
	}
	return parts[0] + "." + parts[1]
}
