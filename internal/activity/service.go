package activity

import (
	"fmt"

	"github.com/dukerupert/bramble/internal/model"
	"github.com/dukerupert/bramble/internal/store"
)

// Service records household activity entries (awards, zero-point weeks,
// generated tasks) for the activity feed.
type Service struct {
	store *store.ActivityStore
}

func New(activityStore *store.ActivityStore) *Service {
	return &Service{store: activityStore}
}

// Record appends one entry to the activity log.
func (s *Service) Record(kind string, memberID *int64, pts int, detail string) error {
	if _, err := s.store.Create(kind, memberID, pts, detail); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Service) Recent(limit int) ([]model.ActivityEntry, error) {
	return s.store.ListRecent(limit)
}
