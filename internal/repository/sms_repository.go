package repository

import (
	"context"
	"sync"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
)

const smsHistoryFile = "sms_history.json"

// SMSRepository persists the append-only SMS history blob.
type SMSRepository struct {
	mu    sync.Mutex
	store *store.Store
}

// NewSMSRepository constructs an SMSRepository.
func NewSMSRepository(st *store.Store) *SMSRepository {
	return &SMSRepository{store: st}
}

// History returns all history entries in append order.
func (r *SMSRepository) History(ctx context.Context) ([]models.SMSHistoryEntry, error) {
	var entries []models.SMSHistoryEntry
	if _, err := r.store.LoadJSON(smsHistoryFile, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Append adds entries to the history. Existing entries are never modified.
func (r *SMSRepository) Append(ctx context.Context, entries ...models.SMSHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.SMSHistoryEntry
	if _, err := r.store.LoadJSON(smsHistoryFile, &all); err != nil {
		return err
	}
	all = append(all, entries...)
	return r.store.SaveJSON(smsHistoryFile, all)
}

// UpdateStatus sets the status of one entry by ID. Used to settle pending
// entries after a send attempt resolves.
func (r *SMSRepository) UpdateStatus(ctx context.Context, id string, status models.SMSStatus, failureReason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []models.SMSHistoryEntry
	if _, err := r.store.LoadJSON(smsHistoryFile, &all); err != nil {
		return err
	}
	for i := range all {
		if all[i].ID == id {
			all[i].Status = status
			all[i].FailureReason = failureReason
			break
		}
	}
	return r.store.SaveJSON(smsHistoryFile, all)
}
