package eventbridge

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	appErrors "tablescout-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBus struct {
	inputs  []*awseventbridge.PutEventsInput
	outputs []*awseventbridge.PutEventsOutput
	errs    []error
}

func (f *fakeBus) PutEvents(ctx context.Context, params *awseventbridge.PutEventsInput, optFns ...func(*awseventbridge.Options)) (*awseventbridge.PutEventsOutput, error) {
	call := len(f.inputs)
	f.inputs = append(f.inputs, params)
	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if call < len(f.outputs) && f.outputs[call] != nil {
		return f.outputs[call], nil
	}
	return &awseventbridge.PutEventsOutput{FailedEntryCount: 0}, nil
}

func newTestDispatcher(client API) *Dispatcher {
	d := NewDispatcher(client, "tablescout.discovery", zap.NewNop())
	d.now = func() time.Time { return time.Date(2024, 5, 17, 12, 30, 0, 0, time.UTC) }
	return d
}

func TestSendEvent_Success(t *testing.T) {
	// Arrange
	bus := &fakeBus{}
	dispatcher := newTestDispatcher(bus)

	// Act
	err := dispatcher.SendEvent(context.Background(), Event{
		Type:      "restaurant.created",
		Detail:    map[string]any{"restaurantId": "r-123", "city": "lisbon"},
		RequestID: "req-9",
	}, "tablescout-events", DefaultMaxRetries)

	// Assert
	require.NoError(t, err)
	require.Len(t, bus.inputs, 1, "a successful first attempt must not retry")

	require.Len(t, bus.inputs[0].Entries, 1)
	entry := bus.inputs[0].Entries[0]
	assert.Equal(t, "tablescout-events", aws.ToString(entry.EventBusName))
	assert.Equal(t, "tablescout.discovery", aws.ToString(entry.Source))
	assert.Equal(t, "restaurant.created", aws.ToString(entry.DetailType))

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "r-123", detail["restaurantId"])
	assert.Equal(t, "lisbon", detail["city"])
	assert.Equal(t, "req-9", detail["requestId"])
	assert.Equal(t, "2024-05-17T12:30:00Z", detail["timestamp"])
	assert.NotEmpty(t, detail["eventId"])
}

func TestSendEvent_ExhaustsRetriesWithBackoff(t *testing.T) {
	// Arrange
	cause := errors.New("throttled")
	bus := &fakeBus{errs: []error{cause, cause, cause, cause, cause}}
	dispatcher := newTestDispatcher(bus)

	// Act
	start := time.Now()
	err := dispatcher.SendEvent(context.Background(), Event{Type: "review.added"}, "tablescout-events", 3)
	elapsed := time.Since(start)

	// Assert
	require.Error(t, err)
	assert.Len(t, bus.inputs, 3, "exactly maxRetries attempts")
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond, "waits of 100ms and 200ms between attempts")

	assert.True(t, appErrors.IsEventDispatch(err))
	var dispatchErr *appErrors.EventDispatchError
	require.ErrorAs(t, err, &dispatchErr)
	assert.Equal(t, "review.added", dispatchErr.DetailType)
	assert.Equal(t, 3, dispatchErr.Attempts)
	assert.ErrorIs(t, err, cause)
}

func TestSendEvent_RecoversOnRetry(t *testing.T) {
	// Arrange
	bus := &fakeBus{errs: []error{errors.New("transient"), nil}}
	dispatcher := newTestDispatcher(bus)

	// Act
	err := dispatcher.SendEvent(context.Background(), Event{Type: "review.added"}, "tablescout-events", 3)

	// Assert
	require.NoError(t, err)
	assert.Len(t, bus.inputs, 2)
}

func TestSendEvent_FailedEntryCountsAsFailure(t *testing.T) {
	// Arrange
	rejected := &awseventbridge.PutEventsOutput{
		FailedEntryCount: 1,
		Entries: []types.PutEventsResultEntry{{
			ErrorCode:    aws.String("ThrottlingException"),
			ErrorMessage: aws.String("rate exceeded"),
		}},
	}
	bus := &fakeBus{outputs: []*awseventbridge.PutEventsOutput{rejected, rejected, rejected}}
	dispatcher := newTestDispatcher(bus)

	// Act
	err := dispatcher.SendEvent(context.Background(), Event{Type: "restaurant.archived"}, "tablescout-events", 3)

	// Assert
	require.Error(t, err)
	assert.Len(t, bus.inputs, 3)
	assert.True(t, appErrors.IsEventDispatch(err))
	assert.Contains(t, err.Error(), "ThrottlingException")
}

func TestSendEvent_ContextCancelledDuringBackoff(t *testing.T) {
	// Arrange
	bus := &fakeBus{errs: []error{errors.New("transient")}}
	dispatcher := newTestDispatcher(bus)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Act
	err := dispatcher.SendEvent(ctx, Event{Type: "review.added"}, "tablescout-events", 3)

	// Assert
	require.Error(t, err)
	assert.Len(t, bus.inputs, 1, "no further attempts after cancellation")
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, appErrors.IsEventDispatch(err))
}

func TestSendEvent_CallerSuppliedIdentityPreserved(t *testing.T) {
	// Arrange
	bus := &fakeBus{}
	dispatcher := newTestDispatcher(bus)

	// Act
	err := dispatcher.SendEvent(context.Background(), Event{
		ID:        "evt-42",
		Type:      "restaurant.created",
		Source:    "tablescout.import",
		Timestamp: time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC),
	}, "tablescout-events", 0)

	// Assert
	require.NoError(t, err)
	entry := bus.inputs[0].Entries[0]
	assert.Equal(t, "tablescout.import", aws.ToString(entry.Source))

	var detail map[string]any
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
	assert.Equal(t, "evt-42", detail["eventId"])
	assert.Equal(t, "2023-01-02T03:04:05Z", detail["timestamp"])
	_, hasRequestID := detail["requestId"]
	assert.False(t, hasRequestID, "requestId omitted when not set")
}
