package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/cityhelper/cityhelper/internal/model"
)

func TestHubNotifyPerUser(t *testing.T) {
	hub := NewHub(slog.Default())

	alice := &Client{hub: hub, userID: 1, send: make(chan []byte, 1)}
	bob := &Client{hub: hub, userID: 2, send: make(chan []byte, 1)}
	hub.Register(alice)
	hub.Register(bob)

	hub.Notify(1, model.Notification{ID: 7, UserID: 1, Title: "⏰ Visa: due TODAY"})

	select {
	case data := <-alice.send:
		var msg struct {
			Type string             `json:"type"`
			Data model.Notification `json:"data"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if msg.Type != "notification" || msg.Data.ID != 7 {
			t.Errorf("message = %+v, want notification 7", msg)
		}
	default:
		t.Fatal("alice should have received the notification")
	}

	select {
	case <-bob.send:
		t.Fatal("bob must not receive alice's notification")
	default:
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c := &Client{hub: hub, userID: 1, send: make(chan []byte, 1)}
	hub.Register(c)
	if hub.Connections(1) != 1 {
		t.Fatalf("connections = %d, want 1", hub.Connections(1))
	}

	hub.Unregister(c)
	if hub.Connections(1) != 0 {
		t.Errorf("connections = %d, want 0", hub.Connections(1))
	}

	// Double unregister must not panic or double-close.
	hub.Unregister(c)
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(slog.Default())

	c := &Client{hub: hub, userID: 1, send: make(chan []byte)} // no buffer
	hub.Register(c)

	// Nothing is reading; Notify must not block.
	hub.Notify(1, model.Notification{ID: 1, UserID: 1, Title: "x"})
}
