package store

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	recorderBuffer = 512
	appendTimeout  = 5 * time.Second
)

// Recorder is a Journal that writes to an EventStore from a single
// background goroutine, so callers on the hub loop never wait on I/O.
type Recorder struct {
	store EventStore
	ch    chan RoomEvent
	once  sync.Once
	wg    sync.WaitGroup
}

// NewRecorder starts a recorder writing to store.
func NewRecorder(store EventStore) *Recorder {
	r := &Recorder{
		store: store,
		ch:    make(chan RoomEvent, recorderBuffer),
	}
	r.wg.Add(1)
	go r.run()
	return r
}

// Record queues ev. It drops the event when the buffer is full.
func (r *Recorder) Record(ev RoomEvent) {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	select {
	case r.ch <- ev:
	default:
		slog.Warn("journal buffer full, dropping event", "room", ev.RoomCode, "kind", ev.Kind)
	}
}

// Close flushes queued events and closes the underlying store. Record must
// not be called after Close.
func (r *Recorder) Close() error {
	var err error
	r.once.Do(func() {
		close(r.ch)
		r.wg.Wait()
		err = r.store.Close()
	})
	return err
}

func (r *Recorder) run() {
	defer r.wg.Done()
	for ev := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
		if err := r.store.Append(ctx, ev); err != nil {
			slog.Error("failed to append room event", "room", ev.RoomCode, "kind", ev.Kind, "error", err)
		}
		cancel()
	}
}
