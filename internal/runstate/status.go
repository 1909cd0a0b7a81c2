package runstate

import (
	"sync"
	"time"

	"BlogEngine/internal/domain"
)

// Snapshot is a copy of the run slot safe to serialise.
type Snapshot struct {
	IsRunning     bool                              `json:"isRunning"`
	CurrentJob    string                            `json:"currentJob,omitempty"`
	StartedAt     *time.Time                        `json:"startedAt,omitempty"`
	LastRunTime   *time.Time                        `json:"lastRunTime"`
	LastRunResult *domain.RunSummary                `json:"lastRunResult"`
	LastSweeps    map[string]domain.MigrationResult `json:"lastSweeps,omitempty"`
}

// Status is the single run slot shared by generation and sweeps. The zero
// value is ready to use.
type Status struct {
	mu            sync.Mutex
	running       bool
	job           string
	startedAt     time.Time
	lastRunTime   time.Time
	lastRunResult *domain.RunSummary
	lastSweeps    map[string]domain.MigrationResult
	now           func() time.Time
}

// New returns an idle Status.
func New() *Status {
	return &Status{now: time.Now}
}

// TryStart claims the slot for job or returns domain.ErrBusy.
func (s *Status) TryStart(job string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrBusy
	}
	s.running = true
	s.job = job
	s.startedAt = s.clock()
	return nil
}

// FinishRun releases the slot and records a generation summary.
func (s *Status) FinishRun(summary domain.RunSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRunResult = &summary
	s.lastRunTime = s.clock()
	s.release()
}

// FinishSweep releases the slot and records a sweep result.
func (s *Status) FinishSweep(result domain.MigrationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordSweep(result)
	s.release()
}

// RecordSweep stores a sweep result without touching the slot. Sweeps run
// inside a generation job report through it.
func (s *Status) RecordSweep(result domain.MigrationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordSweep(result)
}

// Release frees the slot without recording anything.
func (s *Status) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
}

// IsRunning reports whether the slot is held.
func (s *Status) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Snapshot copies the current state.
func (s *Status) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{IsRunning: s.running, CurrentJob: s.job}
	if s.running {
		started := s.startedAt
		snap.StartedAt = &started
	}
	if !s.lastRunTime.IsZero() {
		last := s.lastRunTime
		snap.LastRunTime = &last
	}
	if s.lastRunResult != nil {
		res := *s.lastRunResult
		snap.LastRunResult = &res
	}
	if len(s.lastSweeps) > 0 {
		snap.LastSweeps = make(map[string]domain.MigrationResult, len(s.lastSweeps))
		for k, v := range s.lastSweeps {
			snap.LastSweeps[k] = v
		}
	}
	return snap
}

func (s *Status) recordSweep(result domain.MigrationResult) {
	if s.lastSweeps == nil {
		s.lastSweeps = map[string]domain.MigrationResult{}
	}
	s.lastSweeps[result.Sweep] = result
}

func (s *Status) release() {
	s.running = false
	s.job = ""
	s.startedAt = time.Time{}
}

func (s *Status) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}
