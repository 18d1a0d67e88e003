package pubsub

import (
	"context"
	"log/slog"

	"cloud.google.com/go/pubsub"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/cloudevents/sdk-go/v2/event"
	"github.com/google/uuid"
)

// PubSubAdapter provides message publishing using Google Cloud Pub/Sub
type PubSubAdapter struct {
	Client *pubsub.Client
}

func (a *PubSubAdapter) PublishCloudEvent(ctx context.Context, topicID string, e event.Event) (string, error) {
	data, err := e.MarshalJSON()
	if err != nil {
		return "", err
	}
	topic := a.Client.Topic(topicID)
	res := topic.Publish(ctx, &pubsub.Message{Data: data})
	return res.Get(ctx)
}

// LogPublisher is a mock publisher for local development
type LogPublisher struct{}

func (p *LogPublisher) PublishCloudEvent(ctx context.Context, topicID string, e event.Event) (string, error) {
	data, err := e.MarshalJSON()
	if err != nil {
		return "", err
	}
	slog.Info("MOCK PUBLISH", "component", "LogPublisher", "topic", topicID, "event", string(data))
	return "mock-msg-id", nil
}

// NewCloudEvent creates a standardized CloudEvent v1.0
func NewCloudEvent(source, eventType string, data interface{}) (cloudevents.Event, error) {
	e := cloudevents.NewEvent()
	e.SetSpecVersion("1.0")
	e.SetID(uuid.NewString())
	e.SetType(eventType)
	e.SetSource(source)

	if err := e.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return e, err
	}

	return e, nil
}
