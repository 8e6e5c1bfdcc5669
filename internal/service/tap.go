package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"jjplan/internal/domain"
	"jjplan/internal/metrics"
	"jjplan/internal/repository"
)

// RosterSource supplies the Tap List roster of the active plan
type RosterSource interface {
	Roster() []domain.RosterEntry
}

// TapService manages the Tap List log
type TapService struct {
	mu       sync.Mutex
	store    repository.Store
	roster   RosterSource
	eventBus *EventBus
	logger   *zap.Logger
	now      func() time.Time
}

// NewTapService creates a tap service over a store
func NewTapService(store repository.Store, roster RosterSource, eventBus *EventBus, logger *zap.Logger) *TapService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TapService{
		store:    store,
		roster:   roster,
		eventBus: eventBus,
		logger:   logger,
		now:      time.Now,
	}
}

// Log returns the whole tap log; an empty store yields an empty log
func (s *TapService) Log(ctx context.Context) (domain.TapLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Entries returns the entries for one submission
func (s *TapService) Entries(ctx context.Context, name string) ([]domain.TapEntry, error) {
	log, err := s.Log(ctx)
	if err != nil {
		return nil, err
	}
	return log.Entries(name), nil
}

// Append logs a tap. An empty date means today.
func (s *TapService) Append(ctx context.Context, name, date, note string) (domain.TapEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.TapEntry{}, ErrEmptyName
	}
	entry, err := domain.NewTapEntry(date, note, s.now())
	if err != nil {
		return domain.TapEntry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.load(ctx)
	if err != nil {
		return domain.TapEntry{}, err
	}
	log.Append(name, entry)
	if err := s.save(ctx, log); err != nil {
		return domain.TapEntry{}, err
	}

	metrics.TapsLogged.WithLabelValues(s.category(name)).Inc()
	s.logger.Info("tap logged", zap.String("submission", name), zap.String("date", entry.Date))
	s.eventBus.Publish(Event{
		Type:    EventTapLogged,
		Payload: map[string]interface{}{"submission": name, "date": entry.Date, "count": log.Count(name)},
	})
	return entry, nil
}

// Delete removes one entry of a submission by index
func (s *TapService) Delete(ctx context.Context, name string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.load(ctx)
	if err != nil {
		return err
	}
	if err := log.Delete(name, index); err != nil {
		return err
	}
	if err := s.save(ctx, log); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventTapDeleted,
		Payload: map[string]interface{}{"submission": name, "index": index, "count": log.Count(name)},
	})
	return nil
}

// Clear removes every entry of a submission
func (s *TapService) Clear(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.load(ctx)
	if err != nil {
		return err
	}
	if log.Count(name) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTapNotFound, name)
	}
	log.Clear(name)
	if err := s.save(ctx, log); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventTapDeleted,
		Payload: map[string]interface{}{"submission": name, "count": 0},
	})
	return nil
}

// Stats summarises the log against the active roster
func (s *TapService) Stats(ctx context.Context) (domain.TapStats, error) {
	log, err := s.Log(ctx)
	if err != nil {
		return domain.TapStats{}, err
	}
	return domain.ComputeStats(log, s.roster.Roster(), s.now()), nil
}

// Raw returns the stored bytes for a key, nil when absent
func (s *TapService) Raw(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, key)
}

// SetRaw stores bytes under a key. The tap log key only accepts a
// well-formed log.
func (s *TapService) SetRaw(ctx context.Context, key string, value []byte) error {
	if key == domain.TapListKey {
		var log domain.TapLog
		if err := json.Unmarshal(value, &log); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidTapLog, err)
		}
		for name, entries := range log {
			for i, e := range entries {
				if err := domain.ValidateTapDate(e.Date); err != nil {
					return fmt.Errorf("%w: %s #%d: %w", ErrInvalidTapLog, name, i, err)
				}
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Set(ctx, key, value)
}

func (s *TapService) category(name string) string {
	for _, r := range s.roster.Roster() {
		if r.Name == name {
			return r.Category
		}
	}
	return "other"
}

// load reads the log. Callers hold s.mu.
func (s *TapService) load(ctx context.Context) (domain.TapLog, error) {
	data, err := s.store.Get(ctx, domain.TapListKey)
	if err != nil {
		return nil, fmt.Errorf("load tap log: %w", err)
	}
	log := domain.TapLog{}
	if len(data) == 0 {
		return log, nil
	}
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("decode tap log: %w", err)
	}
	if log == nil {
		log = domain.TapLog{}
	}
	return log, nil
}

// save writes the log. Callers hold s.mu.
func (s *TapService) save(ctx context.Context, log domain.TapLog) error {
	data, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode tap log: %w", err)
	}
	if err := s.store.Set(ctx, domain.TapListKey, data); err != nil {
		return fmt.Errorf("save tap log: %w", err)
	}
	return nil
}
