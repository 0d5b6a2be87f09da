package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// Metadata keys stamped on every event message.
const (
	MetaEventID      = "event_id"
	MetaEventVersion = "event_version"
)

// NewEventMessage encodes payload as JSON and stamps the event id, the
// payload version and the trace context of ctx into the metadata.
func NewEventMessage(ctx context.Context, eventID string, version int, payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("events: marshal %s: %w", eventID, err)
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetaEventID, eventID)
	msg.Metadata.Set(MetaEventVersion, strconv.Itoa(version))
	InjectTrace(ctx, msg)
	return msg, nil
}

// Decode unmarshals the payload of msg into T.
func Decode[T any](msg *message.Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("events: decode %s: %w", EventID(msg), err)
	}
	return v, nil
}

// EventID returns the domain event id of msg, falling back to the
// transport UUID for messages published without one.
func EventID(msg *message.Message) string {
	if id := msg.Metadata.Get(MetaEventID); id != "" {
		return id
	}
	return msg.UUID
}

// Version returns the payload version of msg. Messages without one are
// version 0.
func Version(msg *message.Message) (int, error) {
	s := msg.Metadata.Get(MetaEventVersion)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("events: bad %s %q on %s", MetaEventVersion, s, EventID(msg))
	}
	return v, nil
}

// InjectTrace copies the trace context of ctx into msg metadata.
func InjectTrace(ctx context.Context, msg *message.Message) {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}
}

// ExtractTrace returns ctx carrying the trace context stored on msg.
func ExtractTrace(ctx context.Context, msg *message.Message) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(msg.Metadata))
}
