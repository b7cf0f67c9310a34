/*
sweeper.go - Background expiry sweep

PURPOSE:
  Periodically runs the expiry sweep for every employee with leave requests
  on file, so overdue pending requests get retired even when nobody loads
  that employee's data.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Each pass loads every employee's leave data; Snapshot performs the
    sweep and persists relocations in its own transaction
  - The sweep is idempotent, so overlapping with request-time sweeps is
    harmless

USAGE:
  sweeper := NewSweeper(st, engine, time.Hour)
  sweeper.Start()
  // ... later
  sweeper.Stop()

SEE ALSO:
  - leave/sweep.go: the sweep rules
  - leave/engine.go: Snapshot, which applies the sweep transactionally
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/TechTreck-2/petruzdroba/leave"
	"github.com/TechTreck-2/petruzdroba/store"
)

// Sweeper periodically retires overdue pending leave requests.
type Sweeper struct {
	Store    store.Store
	Engine   *leave.Engine
	Interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

func NewSweeper(st store.Store, engine *leave.Engine, interval time.Duration) *Sweeper {
	return &Sweeper{
		Store:    st,
		Engine:   engine,
		Interval: interval,
		stop:     make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (s *Sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticker = time.NewTicker(s.Interval)
	s.wg.Add(1)
	go s.run()

	log.Printf("[Sweeper] Started with interval: %v", s.Interval)
}

// Stop stops the sweep loop and waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[Sweeper] Stopped")
	}
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.sweepAll()

	for {
		select {
		case <-s.ticker.C:
			s.sweepAll()
		case <-s.stop:
			return
		}
	}
}

func (s *Sweeper) sweepAll() {
	ctx := context.Background()

	requests, err := s.Store.AllRequests(ctx)
	if err != nil {
		log.Printf("[Sweeper] Failed to list requests: %v", err)
		return
	}

	seen := make(map[int64]bool)
	for _, r := range requests {
		if seen[r.EmployeeID] {
			continue
		}
		seen[r.EmployeeID] = true

		if _, err := s.Engine.Snapshot(ctx, r.EmployeeID); err != nil {
			log.Printf("[Sweeper] Sweep failed for employee %d: %v", r.EmployeeID, err)
		}
	}
}
