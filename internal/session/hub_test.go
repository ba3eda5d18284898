package session_test

import (
	"sync"
	"testing"
	"time"

	"github.com/msomdec/maallem/internal/domain"
	"github.com/msomdec/maallem/internal/session"
)

type recorder struct {
	mu     sync.Mutex
	events []domain.SessionEvent
}

func (r *recorder) listen(evt domain.SessionEvent) {
	r.mu.Lock()
	r.events = append(r.events, evt)
	r.mu.Unlock()
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestHub_DeliversToSubscribers(t *testing.T) {
	hub := session.NewHub(8)
	var a, b recorder
	hub.Subscribe(a.listen)
	hub.Subscribe(b.listen)

	hub.Publish(domain.SessionEvent{Kind: domain.SessionSignedIn, UserID: "u1"})
	hub.Publish(domain.SessionEvent{Kind: domain.SessionSignedOut, UserID: "u1"})

	// Close drains the queue before returning.
	hub.Close()

	if a.len() != 2 || b.len() != 2 {
		t.Fatalf("expected 2 events per subscriber, got %d and %d", a.len(), b.len())
	}
	if a.events[0].Kind != domain.SessionSignedIn {
		t.Fatalf("expected events in publish order, got %v first", a.events[0].Kind)
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	hub := session.NewHub(8)
	defer hub.Close()

	var rec recorder
	unsubscribe := hub.Subscribe(rec.listen)
	unsubscribe()
	unsubscribe() // idempotent

	hub.Publish(domain.SessionEvent{Kind: domain.SessionSignedUp, UserID: "u2"})

	// Give the dispatcher a moment; nothing should arrive.
	time.Sleep(20 * time.Millisecond)
	if rec.len() != 0 {
		t.Fatalf("expected no events after unsubscribe, got %d", rec.len())
	}
}

func TestHub_PublishAfterCloseIsNoop(t *testing.T) {
	hub := session.NewHub(1)
	var rec recorder
	hub.Subscribe(rec.listen)
	hub.Close()
	hub.Close()

	hub.Publish(domain.SessionEvent{Kind: domain.SessionSignedIn})
	if rec.len() != 0 {
		t.Fatalf("expected no delivery after close, got %d", rec.len())
	}
}

func TestHub_ConcurrentPublish(t *testing.T) {
	hub := session.NewHub(256)
	var rec recorder
	hub.Subscribe(rec.listen)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				hub.Publish(domain.SessionEvent{Kind: domain.SessionSignedIn})
			}
		}()
	}
	wg.Wait()
	hub.Close()

	if rec.len() != 100 {
		t.Fatalf("expected 100 events, got %d", rec.len())
	}
}

func TestHub_ListenerCanUnsubscribeItself(t *testing.T) {
	hub := session.NewHub(8)

	done := make(chan struct{})
	var unsubscribe func()
	unsubscribe = hub.Subscribe(func(domain.SessionEvent) {
		unsubscribe()
		close(done)
	})

	hub.Publish(domain.SessionEvent{Kind: domain.SessionSignedIn, UserID: "u3"})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener unsubscribing itself deadlocked the hub")
	}

	closed := make(chan struct{})
	go func() {
		hub.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("Close did not return after a listener unsubscribed itself")
	}
}
