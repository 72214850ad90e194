package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, ch <-chan []FileEvent) []FileEvent {
	t.Helper()
	select {
	case batch := <-ch:
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("no batch flushed")
		return nil
	}
}

func TestDebouncerCoalescesPerPath(t *testing.T) {
	ch := make(chan []FileEvent, 4)
	d := NewDebouncer(20*time.Millisecond, 100, func(events []FileEvent) { ch <- events })
	defer d.Stop()

	d.Add(FileEvent{Path: "/p/b.js", Type: EventCreate})
	d.Add(FileEvent{Path: "/p/a.js", Type: EventCreate})
	d.Add(FileEvent{Path: "/p/b.js", Type: EventModify})

	batch := collect(t, ch)
	require.Len(t, batch, 2)
	assert.Equal(t, "/p/a.js", batch[0].Path)
	assert.Equal(t, "/p/b.js", batch[1].Path)
	assert.Equal(t, EventModify, batch[1].Type)
}

func TestDebouncerFlushesAtMaxBatch(t *testing.T) {
	ch := make(chan []FileEvent, 4)
	d := NewDebouncer(time.Hour, 2, func(events []FileEvent) { ch <- events })
	defer d.Stop()

	d.Add(FileEvent{Path: "/1"})
	d.Add(FileEvent{Path: "/2"})

	assert.Len(t, collect(t, ch), 2)
}

func TestDebouncerStopFlushesPending(t *testing.T) {
	ch := make(chan []FileEvent, 4)
	d := NewDebouncer(time.Hour, 100, func(events []FileEvent) { ch <- events })

	d.Add(FileEvent{Path: "/pending"})
	d.Stop()

	assert.Len(t, collect(t, ch), 1)

	d.Add(FileEvent{Path: "/after-stop"})
	select {
	case b := <-ch:
		t.Fatalf("unexpected batch after stop: %v", b)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEventTypeJSON(t *testing.T) {
	b, err := EventRename.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"rename"`, string(b))
	assert.Equal(t, "unknown", EventType(42).String())
}
