package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

// MessageHandler processes video job messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg *VideoJobMessage) error
}

// Consumer wraps a Kafka consumer
type Consumer struct {
	reader  *kafka.Reader
	handler MessageHandler
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(brokers []string, topic, groupID string, handler MessageHandler) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		CommitInterval: 0,    // manual commits only
		// Start from earliest message when no committed offset exists, so jobs
		// published before the first worker startup are not lost.
		StartOffset: kafka.FirstOffset,
	})

	log.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Str("group_id", groupID).
		Msg("Kafka consumer initialized")

	return &Consumer{
		reader:  reader,
		handler: handler,
	}
}

// Start consumes messages until the context is cancelled. Failed messages are
// retried with backoff; after maxRetries the message is committed and skipped
// so one poisoned job cannot block the partition.
func (c *Consumer) Start(ctx context.Context) error {
	log.Info().Msg("Starting Kafka consumer")

	const (
		maxRetries = 5
		baseDelay  = 1 * time.Second
		maxDelay   = 1 * time.Minute
	)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Consumer context cancelled, stopping")
			return ctx.Err()
		default:
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.Error().Err(err).Msg("Failed to fetch message")
				continue
			}

			lastErr := withRetries(ctx, maxRetries, baseDelay, maxDelay, func() error {
				return c.processMessage(ctx, msg)
			})
			if lastErr != nil && ctx.Err() != nil {
				return ctx.Err()
			}

			if lastErr != nil {
				log.Error().Err(lastErr).
					Int("max_retries", maxRetries).
					Msg("Giving up on message after retries")
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				log.Error().Err(err).Msg("Failed to commit message")
			}
		}
	}
}

// withRetries runs fn until it succeeds or attempts are exhausted, sleeping an
// exponentially growing delay (capped at maxDelay) between attempts. The final
// failure returns immediately, without a trailing sleep. Context cancellation
// during a sleep aborts with ctx.Err().
func withRetries(ctx context.Context, attempts int, baseDelay, maxDelay time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		delay := baseDelay << uint(attempt)
		if delay > maxDelay {
			delay = maxDelay
		}
		log.Warn().Err(err).
			Int("attempt", attempt+1).
			Dur("retry_in", delay).
			Msg("Message processing failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var jobMsg VideoJobMessage
	if err := json.Unmarshal(msg.Value, &jobMsg); err != nil {
		// Malformed payloads are dropped, not retried.
		log.Error().Err(err).Str("key", string(msg.Key)).Msg("Invalid job message, skipping")
		return nil
	}

	log.Info().
		Str("job_id", jobMsg.JobID.String()).
		Str("trace_id", jobMsg.TraceID).
		Msg("Processing job message")

	return c.handler.HandleMessage(ctx, &jobMsg)
}

// Close closes the consumer
func (c *Consumer) Close() error {
	log.Info().Msg("Closing Kafka consumer")
	return c.reader.Close()
}
