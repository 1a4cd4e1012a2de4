package tasks

import (
	"sync"

	"github.com/lysyi3m/zot-comb/app/database"
)

// Stats accumulates run counters across workers.
type Stats struct {
	mu       sync.Mutex
	counters database.RunStats
}

func NewStats() *Stats {
	return &Stats{}
}

func (s *Stats) AddProcessed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Processed++
}

func (s *Stats) AddSubstackFound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.SubstackFound++
}

func (s *Stats) AddLinkedInFound() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.LinkedInFound++
}

func (s *Stats) AddURLCleaned() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.URLsCleaned++
}

func (s *Stats) AddUpdated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Updated++
}

func (s *Stats) AddError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters.Errors++
}

func (s *Stats) Snapshot() database.RunStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters
}
