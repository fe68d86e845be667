package events

import (
	"context"
	"fmt"

	"github.com/nerrad567/jobtrack-core/internal/infrastructure/mqtt"
)

// JSONPublisher is the subset of *mqtt.Client used for events.
type JSONPublisher interface {
	PublishJSON(topic string, v any) error
}

// MQTTPublisher publishes events as JSON to jobtrack/events/jobs/{type}.
type MQTTPublisher struct {
	client JSONPublisher
}

// NewMQTTPublisher wraps an MQTT client.
func NewMQTTPublisher(client JSONPublisher) *MQTTPublisher {
	return &MQTTPublisher{client: client}
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.client.PublishJSON(mqtt.Topics{}.JobEvent(string(e.Type)), e); err != nil {
		return fmt.Errorf("publishing %s event for %s: %w", e.Type, e.ApplicationID, err)
	}
	return nil
}
