package store

import (
	"testing"
	"time"
)

func TestMemoryStoreSetGet(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	got, err := s.Get("k")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, expected %q", got, "v")
	}

	if _, err := s.Get("missing"); err != ErrNotFound {
		t.Errorf("Get(missing) error = %v, expected ErrNotFound", err)
	}
}

func TestMemoryStoreTTL(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	if err := s.Set("k", []byte("v"), 10*time.Millisecond); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	time.Sleep(20 * time.Millisecond)

	if _, err := s.Get("k"); err != ErrNotFound {
		t.Errorf("expired Get error = %v, expected ErrNotFound", err)
	}
}

func TestMemoryStoreSetNX(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	ok, err := s.SetNX("k", []byte("first"), 0)
	if err != nil || !ok {
		t.Fatalf("first SetNX = (%v, %v), expected (true, nil)", ok, err)
	}

	ok, err = s.SetNX("k", []byte("second"), 0)
	if err != nil {
		t.Fatalf("second SetNX returned error: %v", err)
	}
	if ok {
		t.Error("second SetNX succeeded, expected refusal while key exists")
	}
}

func TestMemoryStorePubSub(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	sub, err := s.Subscribe("events")
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer sub.Close()

	if err := s.Publish("events", []byte("ping")); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	select {
	case msg := <-sub.Channel():
		if string(msg.Payload) != "ping" {
			t.Errorf("received payload %q, expected %q", msg.Payload, "ping")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestMemoryStorePublishAfterClose(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	sub, err := s.Subscribe("events")
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	// A closed subscription must no longer receive; publishing must not
	// panic on its closed channel.
	for i := 0; i < 3; i++ {
		if err := s.Publish("events", []byte("ping")); err != nil {
			t.Fatalf("Publish after Close returned error: %v", err)
		}
	}
}

func TestMemoryStorePublishDropsWhenSubscriberFull(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()

	sub, err := s.Subscribe("events")
	if err != nil {
		t.Fatalf("Subscribe returned error: %v", err)
	}
	defer sub.Close()

	// Nobody drains the channel; once its buffer is full, Publish must
	// drop instead of blocking.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			s.Publish("events", []byte("ping"))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber channel")
	}
}
