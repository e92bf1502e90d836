package sender

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestEnqueueSameKeyRunsInOrder(t *testing.T) {
	d := NewDispatcher(Options{Workers: 4, QueueSize: 64})
	defer d.Close()

	var (
		mu    sync.Mutex
		order []int
	)
	record := func(n int, delay time.Duration) func() error {
		return func() error {
			time.Sleep(delay)
			mu.Lock()
			order = append(order, n)
			mu.Unlock()
			return nil
		}
	}

	// A slow first message must still be delivered before a fast second one.
	if err := d.Enqueue(context.Background(), 7, "send.html", "sendMessage", record(1, 50*time.Millisecond)); err != nil {
		t.Fatalf("enqueue 1: %v", err)
	}
	if err := d.Enqueue(context.Background(), 7, "send.html", "sendMessage", record(2, 0)); err != nil {
		t.Fatalf("enqueue 2: %v", err)
	}

	d.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("messages delivered out of order: %v", order)
	}
}

func TestEnqueueNegativeKey(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, QueueSize: 8})
	defer d.Close()

	done := make(chan struct{})
	err := d.Enqueue(context.Background(), -100123, "send.text", "sendMessage", func() error {
		close(done)
		return nil
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job for a group chat id never ran")
	}
}
