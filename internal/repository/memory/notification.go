package memory

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
)

type NotificationRepository struct {
	s *Store
}

func NewNotificationRepository(s *Store) *NotificationRepository {
	return &NotificationRepository{s: s}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

func (r *NotificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if err := r.s.check("notification.CreateBatch", ""); err != nil {
		return err
	}
	return r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		for _, n := range notifications {
			if n.ID == "" {
				n.ID = newID()
			}
			if n.CreatedAt.IsZero() {
				n.CreatedAt = now
			}
			d.notifications[n.ID] = *n
		}
		return nil
	})
}

func (r *NotificationRepository) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	var all []notification.Notification
	err := r.s.read(func(d *data) error {
		for _, n := range d.notifications {
			if n.RecipientID != userID || (unreadOnly && n.IsRead) {
				continue
			}
			all = append(all, n)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sortBy(all, func(a, b notification.Notification) bool { return a.CreatedAt.After(b.CreatedAt) })

	pageItems := paginate(all, page, pageSize)
	out := make([]*notification.Notification, len(pageItems))
	for i := range pageItems {
		n := pageItems[i]
		out[i] = &n
	}
	return out, len(all), nil
}

func (r *NotificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	count := 0
	err := r.s.read(func(d *data) error {
		for _, n := range d.notifications {
			if n.RecipientID == userID && !n.IsRead {
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, ids []string, userID string) error {
	return r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		for _, id := range ids {
			n, ok := d.notifications[id]
			if !ok || n.RecipientID != userID || n.IsRead {
				continue
			}
			n.IsRead = true
			n.ReadAt = &now
			d.notifications[id] = n
		}
		return nil
	})
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID string) error {
	return r.s.write(ctx, func(d *data) error {
		now := r.s.now()
		for id, n := range d.notifications {
			if n.RecipientID == userID && !n.IsRead {
				n.IsRead = true
				n.ReadAt = &now
				d.notifications[id] = n
			}
		}
		return nil
	})
}

var _ notification.Repository = (*NotificationRepository)(nil)
