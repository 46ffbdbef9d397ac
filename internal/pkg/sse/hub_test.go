package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesEveryStreamOfUser(t *testing.T) {
	h := NewHub()
	a, cleanupA := h.Subscribe("emp-1")
	b, cleanupB := h.Subscribe("emp-1")
	other, cleanupOther := h.Subscribe("emp-2")
	defer cleanupA()
	defer cleanupB()
	defer cleanupOther()

	n := h.Publish("emp-1", Event{Event: EventNotification, Data: "hello"})
	assert.Equal(t, 2, n)

	for _, ch := range []<-chan Event{a, b} {
		ev := <-ch
		assert.Equal(t, "emp-1", ev.UserID)
		assert.Equal(t, "hello", ev.Data)
	}
	assert.Len(t, other, 0)
}

func TestHub_FullStreamDropsEvent(t *testing.T) {
	h := NewHub()
	_, cleanup := h.Subscribe("emp-1")
	defer cleanup()

	for i := 0; i < h.bufferSize; i++ {
		require.Equal(t, 1, h.Publish("emp-1", Event{Event: EventNotification}))
	}
	assert.Equal(t, 0, h.Publish("emp-1", Event{Event: EventNotification}))
}

func TestHub_CleanupAndClose(t *testing.T) {
	h := NewHub()
	ch, cleanup := h.Subscribe("emp-1")
	assert.Equal(t, 1, h.SubscriberCount("emp-1"))

	cleanup()
	cleanup()
	assert.Equal(t, 0, h.SubscriberCount("emp-1"))
	_, open := <-ch
	assert.False(t, open)

	ch2, cleanup2 := h.Subscribe("emp-1")
	h.Close()
	_, open = <-ch2
	assert.False(t, open)
	cleanup2()

	ch3, _ := h.Subscribe("emp-1")
	_, open = <-ch3
	assert.False(t, open)
}
