package repository

import (
	"context"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
)

const periodConfigFile = "period_config.json"

// PeriodRepository persists the period time configuration.
type PeriodRepository struct {
	store *store.Store
}

// NewPeriodRepository constructs a PeriodRepository.
func NewPeriodRepository(st *store.Store) *PeriodRepository {
	return &PeriodRepository{store: st}
}

// Load returns the stored configuration. When none exists the stock
// eight-period day is written and returned.
func (r *PeriodRepository) Load(ctx context.Context) ([]models.PeriodConfig, error) {
	var periods []models.PeriodConfig
	found, err := r.store.LoadJSON(periodConfigFile, &periods)
	if err != nil {
		return nil, err
	}
	if !found || len(periods) == 0 {
		periods = models.DefaultPeriodConfig()
		if err := r.store.SaveJSON(periodConfigFile, periods); err != nil {
			return nil, err
		}
	}
	return periods, nil
}

// Save replaces the configuration.
func (r *PeriodRepository) Save(ctx context.Context, periods []models.PeriodConfig) error {
	return r.store.SaveJSON(periodConfigFile, periods)
}
