package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/proposal-backend/internal/domain/entity"
	"github.com/ignatzorin/proposal-backend/internal/pkg/apperror"
)

// MemoryStore хранилище в памяти процесса: записи и webhook URL.
// Записи неизменяемы, поэтому указатели можно отдавать без копирования.
type MemoryStore struct {
	mu         sync.RWMutex
	proposals  map[uuid.UUID]*entity.Proposal
	webhookURL string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{proposals: make(map[uuid.UUID]*entity.Proposal)}
}

func (s *MemoryStore) Save(_ context.Context, proposal *entity.Proposal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.proposals[proposal.ID()] = proposal
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*entity.Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.proposals[id]
	if !ok {
		return nil, apperror.ErrProposalNotFound
	}
	return p, nil
}

func (s *MemoryStore) List(_ context.Context) ([]*entity.Proposal, error) {
	s.mu.RLock()
	result := make([]*entity.Proposal, 0, len(s.proposals))
	for _, p := range s.proposals {
		result = append(result, p)
	}
	s.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt().After(result[j].CreatedAt())
	})
	return result, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.proposals[id]; !ok {
		return apperror.ErrProposalNotFound
	}
	delete(s.proposals, id)
	return nil
}

func (s *MemoryStore) GetWebhookURL(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.webhookURL, nil
}

func (s *MemoryStore) SetWebhookURL(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.webhookURL = url
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
