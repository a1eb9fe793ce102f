package webhooks

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-memory Storage implementation for tests and
// single-process deployments.
type MemoryStorage struct {
	mu       sync.RWMutex
	webhooks map[string]*Webhook
}

// NewMemoryStorage creates an empty in-memory webhook store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{webhooks: make(map[string]*Webhook)}
}

func (s *MemoryStorage) Create(_ context.Context, w *Webhook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhooks[w.ID] = cloneWebhook(w)
	return nil
}

func (s *MemoryStorage) GetByID(_ context.Context, id string) (*Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.webhooks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneWebhook(w), nil
}

func (s *MemoryStorage) ListByUser(_ context.Context, userID string) ([]*Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Webhook
	for _, w := range s.webhooks {
		if w.UserID == userID {
			out = append(out, cloneWebhook(w))
		}
	}
	return out, nil
}

func (s *MemoryStorage) ListActive(_ context.Context, userID string, event Event) ([]*Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Webhook
	for _, w := range s.webhooks {
		if w.UserID == userID && w.IsActive && w.Subscribed(event) {
			out = append(out, cloneWebhook(w))
		}
	}
	return out, nil
}

func (s *MemoryStorage) Update(_ context.Context, w *Webhook) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.webhooks[w.ID]; !ok {
		return ErrNotFound
	}
	s.webhooks[w.ID] = cloneWebhook(w)
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.webhooks[id]
	if !ok || w.UserID != userID {
		return false, nil
	}
	delete(s.webhooks, id)
	return true, nil
}

func (s *MemoryStorage) RecordSuccess(_ context.Context, id string, status int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.webhooks[id]
	if !ok {
		return ErrNotFound
	}
	w.FailureCount = 0
	w.LastTriggeredAt = &at
	w.LastStatus = &status
	w.UpdatedAt = at
	return nil
}

func (s *MemoryStorage) RecordFailure(_ context.Context, id string, status int, at time.Time, disableAt int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.webhooks[id]
	if !ok {
		return 0, ErrNotFound
	}
	w.FailureCount++
	w.LastTriggeredAt = &at
	w.LastStatus = &status
	w.UpdatedAt = at
	if disableAt > 0 && w.FailureCount >= disableAt {
		w.IsActive = false
	}
	return w.FailureCount, nil
}

func cloneWebhook(w *Webhook) *Webhook {
	c := *w
	c.Events = append([]Event(nil), w.Events...)
	if w.LastTriggeredAt != nil {
		t := *w.LastTriggeredAt
		c.LastTriggeredAt = &t
	}
	if w.LastStatus != nil {
		st := *w.LastStatus
		c.LastStatus = &st
	}
	return &c
}
