// Package eventbridge implements the event dispatcher on AWS EventBridge.
//
// This is the only component in the data-access layer with built-in retry:
// event delivery is fire-and-forget from the caller's perspective, so a
// dropped event would otherwise be silent.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	appErrors "tablescout-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxRetries is the attempt budget used when SendEvent is called
// with a non-positive maxRetries.
const DefaultMaxRetries = 3

// baseBackoff is the wait before the second attempt; each later wait doubles.
const baseBackoff = 100 * time.Millisecond

// API is the subset of the EventBridge client the dispatcher uses.
type API interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// Event is a domain fact to publish. Type is required; ID and Timestamp are
// filled in by the dispatcher when zero, and RequestID is carried into the
// detail payload when set.
type Event struct {
	ID        string
	Type      string
	Source    string
	Detail    map[string]any
	Timestamp time.Time
	RequestID string
}

// Dispatcher publishes domain events to an EventBridge bus. It holds no
// state between calls and is safe for concurrent use.
type Dispatcher struct {
	client API
	source string
	logger *zap.Logger
	now    func() time.Time
}

// NewDispatcher creates an event dispatcher. source is used for events that
// do not carry their own.
func NewDispatcher(client API, source string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		client: client,
		source: source,
		logger: logger,
		now:    time.Now,
	}
}

// SendEvent publishes event to busName, retrying failed attempts with
// exponential backoff (100ms, 200ms, 400ms, ...) until maxRetries attempts
// are exhausted, then returns an EventDispatchError wrapping the last
// failure. The backoff wait respects context cancellation.
func (d *Dispatcher) SendEvent(ctx context.Context, event Event, busName string, maxRetries int) error {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}

	entry, err := d.buildEntry(event, busName)
	if err != nil {
		return appErrors.NewEventDispatch(event.Type, 0, err)
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		lastErr = d.publish(ctx, entry)
		if lastErr == nil {
			if attempt > 0 {
				d.logger.Info("event published after retry",
					zap.String("detailType", event.Type),
					zap.Int("attempt", attempt+1),
				)
			}
			return nil
		}

		if attempt < maxRetries-1 {
			backoff := baseBackoff << attempt
			d.logger.Warn("event publish failed, retrying",
				zap.String("detailType", event.Type),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return appErrors.NewEventDispatch(event.Type, attempt+1, ctx.Err())
			}
		}
	}

	d.logger.Error("event publish exhausted retries",
		zap.String("detailType", event.Type),
		zap.String("eventBus", busName),
		zap.Int("attempts", maxRetries),
		zap.Error(lastErr),
	)
	return appErrors.NewEventDispatch(event.Type, maxRetries, lastErr)
}

// buildEntry constructs the wire entry: the caller's detail merged with the
// event id, timestamp (caller-supplied or current time), and optional
// request id.
func (d *Dispatcher) buildEntry(event Event, busName string) (types.PutEventsRequestEntry, error) {
	eventID := event.ID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = d.now()
	}
	source := event.Source
	if source == "" {
		source = d.source
	}

	detail := make(map[string]any, len(event.Detail)+3)
	for key, value := range event.Detail {
		detail[key] = value
	}
	detail["eventId"] = eventID
	detail["timestamp"] = timestamp.UTC().Format(time.RFC3339Nano)
	if event.RequestID != "" {
		detail["requestId"] = event.RequestID
	}

	encoded, err := json.Marshal(detail)
	if err != nil {
		return types.PutEventsRequestEntry{}, fmt.Errorf("marshaling event detail: %w", err)
	}

	return types.PutEventsRequestEntry{
		EventBusName: aws.String(busName),
		Source:       aws.String(source),
		DetailType:   aws.String(event.Type),
		Detail:       aws.String(string(encoded)),
		Time:         aws.Time(d.now()),
	}, nil
}

// publish makes one PutEvents attempt. An entry the bus accepted but
// reported as failed counts as a failed attempt.
func (d *Dispatcher) publish(ctx context.Context, entry types.PutEventsRequestEntry) error {
	result, err := d.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		return err
	}

	if result.FailedEntryCount > 0 {
		for _, failed := range result.Entries {
			if failed.ErrorCode != nil {
				return fmt.Errorf("event bus rejected entry: %s: %s",
					aws.ToString(failed.ErrorCode), aws.ToString(failed.ErrorMessage))
			}
		}
		return fmt.Errorf("event bus rejected %d entries", result.FailedEntryCount)
	}
	return nil
}
