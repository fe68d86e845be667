package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeMQTT struct {
	mu       sync.Mutex
	topics   []string
	payloads [][]byte
	err      error
}

func (f *fakeMQTT) PublishJSON(topic string, v any) error {
	if f.err != nil {
		return f.err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topics = append(f.topics, topic)
	f.payloads = append(f.payloads, b)
	return nil
}

type fakeWriter struct {
	events []string
}

func (f *fakeWriter) WriteJobEvent(event, status string) {
	f.events = append(f.events, event+":"+status)
}

func testEvent(typ Type) Event {
	return Event{
		Type:          typ,
		ApplicationID: "job-1",
		OwnerID:       "usr-1",
		ActorID:       "usr-1",
		Status:        "APPLIED",
		OccurredAt:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMQTTPublisher_Topics(t *testing.T) {
	tests := []struct {
		typ   Type
		topic string
	}{
		{TypeCreated, "jobtrack/events/jobs/created"},
		{TypeUpdated, "jobtrack/events/jobs/updated"},
		{TypeStatusChanged, "jobtrack/events/jobs/status_changed"},
		{TypeDeleted, "jobtrack/events/jobs/deleted"},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			client := &fakeMQTT{}
			p := NewMQTTPublisher(client)

			if err := p.Publish(context.Background(), testEvent(tt.typ)); err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
			if len(client.topics) != 1 || client.topics[0] != tt.topic {
				t.Errorf("topics = %v, want [%s]", client.topics, tt.topic)
			}
		})
	}
}

func TestMQTTPublisher_Payload(t *testing.T) {
	client := &fakeMQTT{}
	p := NewMQTTPublisher(client)

	if err := p.Publish(context.Background(), testEvent(TypeCreated)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(client.payloads[0], &got); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	want := map[string]any{
		"type":           "created",
		"application_id": "job-1",
		"owner_id":       "usr-1",
		"actor_id":       "usr-1",
		"status":         "APPLIED",
		"occurred_at":    "2026-03-01T12:00:00Z",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("payload[%q] = %v, want %v", k, got[k], v)
		}
	}
}

func TestMQTTPublisher_Errors(t *testing.T) {
	brokerErr := errors.New("not connected")
	p := NewMQTTPublisher(&fakeMQTT{err: brokerErr})

	if err := p.Publish(context.Background(), testEvent(TypeDeleted)); !errors.Is(err, brokerErr) {
		t.Errorf("Publish() error = %v, want wrapped broker error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMQTTPublisher(&fakeMQTT{}).Publish(ctx, testEvent(TypeCreated)); !errors.Is(err, context.Canceled) {
		t.Errorf("Publish() error = %v, want context.Canceled", err)
	}
}

func TestMetricsPublisher(t *testing.T) {
	w := &fakeWriter{}
	p := NewMetricsPublisher(w)

	_ = p.Publish(context.Background(), testEvent(TypeStatusChanged))
	e := testEvent(TypeDeleted)
	e.Status = ""
	_ = p.Publish(context.Background(), e)

	want := []string{"status_changed:APPLIED", "deleted:"}
	if len(w.events) != len(want) {
		t.Fatalf("events = %v, want %v", w.events, want)
	}
	for i := range want {
		if w.events[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, w.events[i], want[i])
		}
	}
}

func TestMulti(t *testing.T) {
	ok := &fakeMQTT{}
	failing := &fakeMQTT{err: errors.New("boom")}
	w := &fakeWriter{}

	m := Multi{NewMQTTPublisher(ok), nil, NewMQTTPublisher(failing), NewMetricsPublisher(w), Nop{}}

	err := m.Publish(context.Background(), testEvent(TypeCreated))
	if err == nil {
		t.Fatal("Publish() error = nil, want joined error")
	}
	if len(ok.topics) != 1 {
		t.Error("healthy publisher skipped after a failing one")
	}
	if len(w.events) != 1 {
		t.Error("metrics publisher skipped after a failing one")
	}

	if err := (Multi{}).Publish(context.Background(), testEvent(TypeCreated)); err != nil {
		t.Errorf("empty Multi error = %v", err)
	}
}
