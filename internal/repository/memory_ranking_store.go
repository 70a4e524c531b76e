package repository

import (
	"context"
	"sync"

	"SwingRank/internal/domain/models"
	domrepo "SwingRank/internal/domain/repository"
)

// MemoryRankingStore keeps only the latest run. It backs the API when no
// database is configured.
type MemoryRankingStore struct {
	mu   sync.RWMutex
	last *models.RankingRun
}

func NewMemoryRankingStore() *MemoryRankingStore { return &MemoryRankingStore{} }

func (s *MemoryRankingStore) Name() string { return "memory" }

func (s *MemoryRankingStore) Init(context.Context) error { return nil }

func (s *MemoryRankingStore) Publish(_ context.Context, run *models.RankingRun) error {
	if run == nil {
		return nil
	}
	s.mu.Lock()
	s.last = run
	s.mu.Unlock()
	return nil
}

func (s *MemoryRankingStore) Latest(context.Context) (*models.RankingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return nil, ErrNoRun
	}
	return s.last, nil
}

func (s *MemoryRankingStore) Health(context.Context) error { return nil }

func (s *MemoryRankingStore) Close() error { return nil }

var _ domrepo.RankingStore = (*MemoryRankingStore)(nil)
