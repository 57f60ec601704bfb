package repository

import (
	"context"
	"sync"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
)

const notificationsFile = "notifications.json"

// NotificationRepository persists in-app notifications.
type NotificationRepository struct {
	mu    sync.Mutex
	store *store.Store
}

// NewNotificationRepository constructs a NotificationRepository.
func NewNotificationRepository(st *store.Store) *NotificationRepository {
	return &NotificationRepository{store: st}
}

// List returns all notifications, newest last.
func (r *NotificationRepository) List(ctx context.Context) ([]models.Notification, error) {
	var notes []models.Notification
	if _, err := r.store.LoadJSON(notificationsFile, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// Add appends a notification, assigning the next sequential ID.
func (r *NotificationRepository) Add(ctx context.Context, note models.Notification) (models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var notes []models.Notification
	if _, err := r.store.LoadJSON(notificationsFile, &notes); err != nil {
		return models.Notification{}, err
	}
	maxID := 0
	for _, n := range notes {
		if n.ID > maxID {
			maxID = n.ID
		}
	}
	note.ID = maxID + 1
	notes = append(notes, note)
	if err := r.store.SaveJSON(notificationsFile, notes); err != nil {
		return models.Notification{}, err
	}
	return note, nil
}

// MarkRead flags one notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var notes []models.Notification
	if _, err := r.store.LoadJSON(notificationsFile, &notes); err != nil {
		return false, err
	}
	found := false
	for i := range notes {
		if notes[i].ID == id {
			notes[i].Read = true
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}
	return true, r.store.SaveJSON(notificationsFile, notes)
}
