// Package services – ProcessService
//
// This file implements the in-memory registry of background sync processes.
// Each triggered sync gets a uuid, a cancellable context, and a status record
// that moves Running → Completed/Failed/Cancelled exactly once. Terminal
// records linger for a short grace period so a client that just triggered the
// run can still observe the outcome, then the registry forgets them.
//
// The registry is process-local state on purpose: a sync run cannot outlive
// the process that started it, so there is nothing durable to track.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Process status values as reported by GetStatus.
const (
	ProcessRunning   = "Running"
	ProcessCompleted = "Completed"
	ProcessFailed    = "Failed"
	ProcessCancelled = "Cancelled"
)

// defaultCleanupDelay keeps a terminal status visible before the registry
// entry is dropped.
const defaultCleanupDelay = 5 * time.Minute

// ProcessStatus is a point-in-time snapshot of one background sync process.
type ProcessStatus struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// SyncRunner is the unit of work a process executes. *SyncService satisfies
// it via SyncAll.
type SyncRunner interface {
	SyncAll(ctx context.Context) (*SyncResult, error)
}

type processEntry struct {
	status ProcessStatus
	cancel context.CancelFunc
}

// ProcessService starts, tracks, and cancels background sync runs.
type ProcessService struct {
	Runner SyncRunner
	Logger zerolog.Logger

	// CleanupDelay overrides how long terminal entries stay visible; zero
	// means defaultCleanupDelay. Tests shorten it.
	CleanupDelay time.Duration

	mu        sync.RWMutex
	processes map[string]*processEntry
}

// NewProcessService constructs a ProcessService around the given runner.
func NewProcessService(runner SyncRunner, log zerolog.Logger) *ProcessService {
	return &ProcessService{
		Runner:    runner,
		Logger:    log,
		processes: make(map[string]*processEntry),
	}
}

// Start registers a new process and launches the sync in a goroutine detached
// from the caller's request context. It returns the process id immediately.
func (s *ProcessService) Start() string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	s.processes[id] = &processEntry{
		status: ProcessStatus{
			ID:        id,
			Status:    ProcessRunning,
			StartedAt: time.Now().UTC(),
		},
		cancel: cancel,
	}
	s.mu.Unlock()

	go s.run(ctx, id)
	return id
}

// run executes the sync, records the terminal status, and eventually removes
// the registry entry.
func (s *ProcessService) run(ctx context.Context, id string) {
	res, err := s.Runner.SyncAll(ctx)

	status := ProcessCompleted
	switch {
	case ctx.Err() != nil:
		status = ProcessCancelled
	case err != nil || (res != nil && !res.IsSuccess):
		status = ProcessFailed
	}

	now := time.Now().UTC()
	s.mu.Lock()
	if e, ok := s.processes[id]; ok {
		e.status.Status = status
		e.status.CompletedAt = &now
	}
	s.mu.Unlock()

	s.Logger.Info().Str("process_id", id).Str("status", status).Msg("sync process finished")

	delay := s.CleanupDelay
	if delay <= 0 {
		delay = defaultCleanupDelay
	}
	time.Sleep(delay)

	s.mu.Lock()
	delete(s.processes, id)
	s.mu.Unlock()
}

// GetStatus returns a copy of the status for id, or ErrProcessNotFound when
// the id is unknown or already cleaned up.
func (s *ProcessService) GetStatus(id string) (ProcessStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.processes[id]
	if !ok {
		return ProcessStatus{}, ErrProcessNotFound
	}
	return e.status, nil
}

// Cancel requests cancellation of a running process. It reports false when the
// id is unknown or the process already reached a terminal state; the status
// flips to Cancelled only once the goroutine observes the cancelled context.
func (s *ProcessService) Cancel(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.processes[id]
	if !ok || e.status.Status != ProcessRunning {
		return false
	}
	e.cancel()
	return true
}

// IsAnyProcessRunning reports whether at least one process is still running.
// The trigger endpoint uses it to refuse overlapping runs; the registry itself
// never enforces exclusivity.
func (s *ProcessService) IsAnyProcessRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.processes {
		if e.status.Status == ProcessRunning {
			return true
		}
	}
	return false
}
