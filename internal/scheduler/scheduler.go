// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic background jobs and single-slot deferred
// tasks used for interaction debouncing.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a named periodic function.
type Job struct {
	Name     string
	Schedule string // cron spec, e.g. "@every 5m"
	Run      func(ctx context.Context) error
}

// JobInfo is the public view of a registered job.
type JobInfo struct {
	Name     string
	Schedule string
	LastRun  time.Time
	LastErr  string
	NextRun  time.Time
}

// Scheduler handles periodic tasks such as refreshing menus and evicting
// idle visitor sessions.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	entries map[string]cron.EntryID
	lastRun map[string]time.Time
	lastErr map[string]string
	specs   map[string]string
}

// New creates a new scheduler instance.
func New(logger *slog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[string]cron.EntryID),
		lastRun: make(map[string]time.Time),
		lastErr: make(map[string]string),
		specs:   make(map[string]string),
	}
}

// Add registers a job. Jobs may be added before or after Start.
func (s *Scheduler) Add(job Job) error {
	if job.Name == "" || job.Run == nil {
		return fmt.Errorf("invalid job %q", job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[job.Name]; exists {
		return fmt.Errorf("job %q already registered", job.Name)
	}

	id, err := s.cron.AddFunc(job.Schedule, func() { s.runJob(job) })
	if err != nil {
		return fmt.Errorf("adding job %q: %w", job.Name, err)
	}
	s.entries[job.Name] = id
	s.specs[job.Name] = job.Schedule
	return nil
}

// runJob executes a job and records its outcome.
func (s *Scheduler) runJob(job Job) {
	err := job.Run(s.ctx)

	s.mu.Lock()
	s.lastRun[job.Name] = time.Now()
	if err != nil {
		s.lastErr[job.Name] = err.Error()
	} else {
		delete(s.lastErr, job.Name)
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("scheduled job failed", "job", job.Name, "error", err)
		return
	}
	s.logger.Debug("scheduled job finished", "job", job.Name)
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop gracefully stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// Jobs returns information about every registered job.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]JobInfo, 0, len(s.entries))
	for name, id := range s.entries {
		entry := s.cron.Entry(id)
		jobs = append(jobs, JobInfo{
			Name:     name,
			Schedule: s.specs[name],
			LastRun:  s.lastRun[name],
			LastErr:  s.lastErr[name],
			NextRun:  entry.Next,
		})
	}
	return jobs
}
