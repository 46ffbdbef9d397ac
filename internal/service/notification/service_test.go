package notification

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, cfg Config) (notification.Service, *memory.Store, *sse.Hub) {
	t.Helper()
	store := memory.NewStore()
	hub := sse.NewHub()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewNotificationService(memory.NewNotificationRepository(store), hub, cfg, logger)
	t.Cleanup(svc.Stop)
	return svc, store, hub
}

func request(recipient string) notification.CreateNotificationRequest {
	return notification.CreateNotificationRequest{
		RecipientID: recipient,
		Type:        notification.TypeLeaveDecided,
		Title:       "Leave approved",
		Message:     "HOD approved your leave",
	}
}

func TestNotify_StopFlushesQueue(t *testing.T) {
	svc, _, _ := newTestService(t, Config{FlushInterval: time.Hour, WorkerCount: 1})
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, request("emp-1")))
	require.NoError(t, svc.Notify(ctx, request("emp-1")))
	svc.Stop()

	count, err := svc.GetUnreadCount(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.ErrorIs(t, svc.Notify(ctx, request("emp-1")), notification.ErrStopped)
}

func TestNotify_PushesToSubscriber(t *testing.T) {
	svc, _, _ := newTestService(t, Config{BatchSize: 1, FlushInterval: time.Hour, WorkerCount: 1})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, cleanup := svc.Subscribe(ctx, "emp-1")
	defer cleanup()

	require.NoError(t, svc.Notify(ctx, request("emp-1")))

	select {
	case ev := <-events:
		assert.Equal(t, sse.EventNotification, ev.Event)
		assert.Equal(t, "Leave approved", ev.Data.Title)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestNotify_FullQueueStoresDirectly(t *testing.T) {
	svc, _, _ := newTestService(t, Config{QueueSize: 1, FlushInterval: time.Hour, WorkerCount: 1, BatchSize: 100})
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Notify(ctx, request("emp-1")))
	}
	svc.Stop()

	count, err := svc.GetUnreadCount(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestMarkAsRead(t *testing.T) {
	svc, _, _ := newTestService(t, Config{FlushInterval: time.Hour, WorkerCount: 1})
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, request("emp-1")))
	require.NoError(t, svc.Notify(ctx, request("emp-1")))
	svc.Stop()

	list, err := svc.GetNotifications(ctx, "emp-1", 1, 10, false)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 2)
	assert.Equal(t, 2, list.UnreadCount)

	err = svc.MarkAsRead(ctx, "emp-1", notification.MarkAsReadRequest{})
	assert.Error(t, err)

	require.NoError(t, svc.MarkAsRead(ctx, "emp-1", notification.MarkAsReadRequest{
		NotificationIDs: []string{list.Notifications[0].ID},
	}))
	count, err := svc.GetUnreadCount(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, svc.MarkAllAsRead(ctx, "emp-1"))
	count, err = svc.GetUnreadCount(ctx, "emp-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
