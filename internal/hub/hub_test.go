package hub

import (
	"strings"
	"testing"
)

func TestBroadcastReachesOnlySubscribedThread(t *testing.T) {
	h := NewHub()

	subscribed := make(Client, 1)
	other := make(Client, 1)
	h.Subscribe(1, subscribed)
	h.Subscribe(2, other)

	h.Broadcast(1, Event{Type: "new_message", Payload: "hello"})

	select {
	case msg := <-subscribed:
		if !strings.Contains(string(msg), "new_message") {
			t.Errorf("payload = %s", msg)
		}
	default:
		t.Fatal("subscribed client received nothing")
	}

	select {
	case msg := <-other:
		t.Fatalf("client on another thread received %s", msg)
	default:
	}
}

func TestUnsubscribeClosesClient(t *testing.T) {
	h := NewHub()

	client := make(Client, 1)
	h.Subscribe(7, client)
	h.Unsubscribe(7, client)

	if _, ok := <-client; ok {
		t.Error("client channel still open after unsubscribe")
	}

	// Broadcasting to an empty thread is a no-op.
	h.Broadcast(7, Event{Type: "new_message"})
}

func TestBroadcastSkipsFullClients(t *testing.T) {
	h := NewHub()

	full := make(Client) // unbuffered and never drained
	h.Subscribe(3, full)

	done := make(chan struct{})
	go func() {
		h.Broadcast(3, Event{Type: "new_message"})
		close(done)
	}()

	select {
	case <-done:
	case <-full:
		t.Fatal("unexpected delivery to undrained client")
	}
}
