// Package store holds live sessions for the posture service.
package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/hmzi67/cervical-posture-detection/internal/domain"
)

// InMemoryRepository stores sessions in process memory.
type InMemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewInMemoryRepository constructs an empty repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{sessions: make(map[string]*domain.Session)}
}

// Create implements domain.SessionRepository.
func (r *InMemoryRepository) Create(ctx context.Context, s *domain.Session) error {
	if s == nil {
		return errors.New("session is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(s.ID) == "" {
		s.ID = uuid.NewString()
	}
	if _, exists := r.sessions[s.ID]; exists {
		return errors.New("session already exists")
	}
	r.sessions[s.ID] = s
	return nil
}

// Get implements domain.SessionRepository. A missing session yields nil, nil.
func (r *InMemoryRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id], nil
}

// Delete implements domain.SessionRepository.
func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

// Count implements domain.SessionRepository.
func (r *InMemoryRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions), nil
}
