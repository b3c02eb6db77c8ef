package websocket

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestHub() *Hub {
	return NewHub(zerolog.New(os.Stderr))
}

func newTestClient(id string, topics ...string) *Client {
	return &Client{
		ID:     id,
		Topics: topics,
		Send:   make(chan []byte, 256),
	}
}

func TestHub_RegisterClient(t *testing.T) {
	hub := newTestHub()
	client := newTestClient("client-1", QueueTopic("Cardiology"))

	hub.Register(client)

	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 client, got %d", hub.ClientCount())
	}
	if hub.TopicCount(QueueTopic("Cardiology")) != 1 {
		t.Fatalf("expected 1 subscriber on queue:Cardiology, got %d", hub.TopicCount(QueueTopic("Cardiology")))
	}
}

func TestHub_UnregisterClient(t *testing.T) {
	hub := newTestHub()
	client := newTestClient("client-2", QueueTopic("Dermatology"))

	hub.Register(client)
	hub.Unregister(client)

	if hub.ClientCount() != 0 {
		t.Fatalf("expected 0 clients, got %d", hub.ClientCount())
	}
	if hub.TopicCount(QueueTopic("Dermatology")) != 0 {
		t.Fatalf("expected 0 subscribers, got %d", hub.TopicCount(QueueTopic("Dermatology")))
	}

	// Unregistering twice is a no-op, not a double close.
	hub.Unregister(client)
}

func TestHub_BroadcastToMatchingTopicOnly(t *testing.T) {
	hub := newTestHub()

	subscriber := newTestClient("sub-1", QueueTopic("Cardiology"))
	other := newTestClient("other-1", QueueTopic("Neurology"))
	hub.Register(subscriber)
	hub.Register(other)

	event := Event{
		Type:        EventTokenBooked,
		Topic:       QueueTopic("Cardiology"),
		Department:  "Cardiology",
		TokenNumber: 7,
		Timestamp:   time.Now(),
	}
	hub.Broadcast(event.Topic, event)

	select {
	case data := <-subscriber.Send:
		var got Event
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("unmarshal broadcast: %v", err)
		}
		if got.Type != EventTokenBooked || got.TokenNumber != 7 {
			t.Errorf("unexpected event: %+v", got)
		}
	default:
		t.Fatal("subscriber did not receive event")
	}

	select {
	case <-other.Send:
		t.Fatal("non-subscriber received event for another department")
	default:
	}
}

func TestHub_SubscribeUnsubscribe(t *testing.T) {
	hub := newTestHub()
	client := newTestClient("client-3")
	hub.Register(client)

	hub.ProcessMessage(client, ClientMessage{Action: "subscribe", Topics: []string{QueueTopic("ENT")}})
	if hub.TopicCount(QueueTopic("ENT")) != 1 {
		t.Fatalf("expected subscription after subscribe message")
	}

	hub.ProcessMessage(client, ClientMessage{Action: "unsubscribe", Topics: []string{QueueTopic("ENT")}})
	if hub.TopicCount(QueueTopic("ENT")) != 0 {
		t.Fatalf("expected no subscription after unsubscribe message")
	}
}

func TestHub_PublishSetsTimestamp(t *testing.T) {
	hub := newTestHub()
	client := newTestClient("client-4", QueueTopic("Cardiology"))
	hub.Register(client)

	err := hub.Publish(context.Background(), Event{
		Type:       EventNowServing,
		Topic:      QueueTopic("Cardiology"),
		Department: "Cardiology",
	})
	if err != nil {
		t.Fatalf("Publish() error: %v", err)
	}

	data := <-client.Send
	var got Event
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Timestamp.IsZero() {
		t.Error("expected Publish to stamp the event")
	}
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := newTestHub()
	slow := &Client{ID: "slow", Topics: []string{QueueTopic("Cardiology")}, Send: make(chan []byte)}
	hub.Register(slow)

	done := make(chan struct{})
	go func() {
		hub.Broadcast(QueueTopic("Cardiology"), Event{Type: EventTokenBooked, Topic: QueueTopic("Cardiology")})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on a full client buffer")
	}
}
