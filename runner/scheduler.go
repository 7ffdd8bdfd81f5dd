package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"devopsctl/events"
	"devopsctl/runner/storage"
)

// Scheduler triggers automatic pipeline runs based on the schedules in
// the pipeline config. It shares the serve-mode pipeline instance, so
// a trigger that lands while a run is in flight is skipped rather than
// queued.
type Scheduler struct {
	cfg      *Config
	pipeline *Pipeline
	storage  *storage.Storage
	stopChan chan struct{}
	mu       sync.RWMutex
	lastRuns map[int]time.Time // last trigger per schedule index
}

// NewScheduler creates a scheduler driving the given pipeline.
func NewScheduler(cfg *Config, pipeline *Pipeline, storage *storage.Storage) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		pipeline: pipeline,
		storage:  storage,
		stopChan: make(chan struct{}),
		lastRuns: make(map[int]time.Time),
	}
}

// Start begins the scheduler loop. It blocks until Stop is called.
func (s *Scheduler) Start() {
	log.Println("scheduler started")
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	s.tick()

	for {
		select {
		case <-ticker.C:
			s.tick()
		case <-s.stopChan:
			log.Println("scheduler stopped")
			return
		}
	}
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
}

// tick checks all schedules and triggers runs that are due.
func (s *Scheduler) tick() {
	for i, schedule := range s.cfg.Schedules {
		s.mu.RLock()
		lastRun := s.lastRuns[i]
		s.mu.RUnlock()

		if !s.shouldRun(schedule, lastRun) {
			continue
		}

		s.mu.Lock()
		s.lastRuns[i] = time.Now()
		s.mu.Unlock()

		go s.executeSchedule(schedule)
	}
}

// shouldRun determines if a schedule should be triggered now.
func (s *Scheduler) shouldRun(schedule Schedule, lastRun time.Time) bool {
	now := time.Now()

	// Time-based schedule (at: "HH:MM"), at most once per day.
	if schedule.At != "" {
		hour, minute, err := parseAtTime(schedule.At)
		if err != nil {
			log.Printf("scheduler: invalid time format %q: %v", schedule.At, err)
			return false
		}

		if now.Hour() == hour && now.Minute() == minute {
			if lastRun.IsZero() || now.Sub(lastRun) >= 23*time.Hour {
				return true
			}
		}
		return false
	}

	// Interval-based schedule (every: "1h", "30m", ...).
	if schedule.Every != "" {
		interval, err := time.ParseDuration(schedule.Every)
		if err != nil {
			log.Printf("scheduler: invalid interval %q: %v", schedule.Every, err)
			return false
		}

		return lastRun.IsZero() || now.Sub(lastRun) >= interval
	}

	return false
}

// executeSchedule runs the full pipeline for a triggered schedule.
func (s *Scheduler) executeSchedule(schedule Schedule) {
	trigger := schedule.At
	if trigger == "" {
		trigger = schedule.Every
	}
	log.Printf("schedule triggered: %s (%s)", s.cfg.Package, trigger)

	rc, err := s.cfg.BuildContext("")
	if err != nil {
		log.Printf("scheduled run failed to build context: %v", err)
		return
	}

	broker := events.GetBroker()
	broker.Broadcast("run_started", map[string]any{
		"package": s.cfg.Package,
		"trigger": "scheduled",
	})

	report, err := s.pipeline.Run(context.Background(), rc, RunOptions{Store: s.storage})
	if errors.Is(err, ErrRunInProgress) {
		log.Printf("scheduled run skipped: %s already running", s.cfg.Package)
		return
	}
	if err != nil {
		log.Printf("scheduled run failed for %s: %v", s.cfg.Package, err)
		return
	}

	broker.Broadcast("run_finished", map[string]any{
		"package": s.cfg.Package,
		"run_id":  report.RunID,
		"overall": report.Overall,
	})

	log.Printf("scheduled run completed: %s (%s)", s.cfg.Package, report.Overall)
}

// parseAtTime parses "HH:MM" format.
func parseAtTime(at string) (hour, minute int, err error) {
	parts := strings.Split(at, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time format, expected HH:MM")
	}

	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour")
	}

	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute")
	}

	return hour, minute, nil
}
