// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scheduler

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/blinklabs-io/tally/database"
	"github.com/blinklabs-io/tally/database/models"
	"github.com/blinklabs-io/tally/event"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultPollInterval = time.Minute

// SchedulerConfig holds the dependencies for a Scheduler
type SchedulerConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	EventBus     *event.EventBus
	PromRegistry prometheus.Registerer
	PollInterval time.Duration
}

// Scheduler drives time-based election status transitions. Each tick moves
// elections along scheduled -> upcoming -> ongoing -> completed based on
// their configured windows. Transitions are datastore-local; ledger state is
// updated by its own clock inside the contract.
type Scheduler struct {
	logger       *slog.Logger
	db           *database.Database
	eventBus     *event.EventBus
	pollInterval time.Duration
	metrics      schedulerMetrics
	stopChan     chan struct{}
	stopOnce     sync.Once
	doneChan     chan struct{}
}

type schedulerMetrics struct {
	transitions *prometheus.CounterVec
	tickErrors  prometheus.Counter
}

// NewScheduler creates a new Scheduler
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s := &Scheduler{
		logger:       logger.With("component", "scheduler"),
		db:           cfg.Database,
		eventBus:     cfg.EventBus,
		pollInterval: cfg.PollInterval,
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	if s.pollInterval <= 0 {
		s.pollInterval = defaultPollInterval
	}
	s.initMetrics(cfg.PromRegistry)
	return s
}

func (s *Scheduler) initMetrics(promRegistry prometheus.Registerer) {
	if promRegistry == nil {
		promRegistry = prometheus.NewRegistry()
	}
	promautoFactory := promauto.With(promRegistry)
	s.metrics.transitions = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_election_transitions_total",
			Help: "total election status transitions by target status",
		},
		[]string{"status"},
	)
	s.metrics.tickErrors = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "tally_scheduler_tick_errors_total",
			Help: "total scheduler ticks that encountered an error",
		},
	)
}

// Start begins the scheduler loop in a background goroutine. An immediate
// tick runs before the first interval so restarts don't delay overdue
// transitions.
func (s *Scheduler) Start() {
	go func() {
		defer close(s.doneChan)
		s.tick()
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop halts the scheduler loop and waits for any in-flight tick to finish
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	<-s.doneChan
}

// Tick runs a single pass of status transitions. Exposed for testing and
// for forcing a pass outside the timer.
func (s *Scheduler) Tick() {
	s.tick()
}

func (s *Scheduler) tick() {
	now := time.Now()
	if err := s.activatePending(now); err != nil {
		s.logger.Error("scheduler: activate pending", "error", err)
		s.metrics.tickErrors.Inc()
	}
	if err := s.startUpcoming(now); err != nil {
		s.logger.Error("scheduler: start upcoming", "error", err)
		s.metrics.tickErrors.Inc()
	}
	if err := s.completeEnded(now); err != nil {
		s.logger.Error("scheduler: complete ended", "error", err)
		s.metrics.tickErrors.Inc()
	}
}

// activatePending moves scheduled elections whose candidate registration
// deadline has passed into upcoming (or straight to ongoing when the voting
// window has already opened). An election with no verified active candidates
// stays scheduled; there is nothing to vote for.
func (s *Scheduler) activatePending(now time.Time) error {
	elections, err := s.db.ElectionsPendingActivation(now, nil)
	if err != nil {
		return err
	}
	for _, election := range elections {
		candidates, err := s.db.CountActiveCandidates(election.ID, nil)
		if err != nil {
			return err
		}
		if candidates == 0 {
			s.logger.Warn(
				"election has no active candidates, holding in scheduled",
				"election", election.ID,
				"title", election.Title,
			)
			continue
		}
		newStatus := models.ElectionStatusUpcoming
		if !now.Before(election.StartTime) {
			newStatus = models.ElectionStatusOngoing
		}
		if err := s.transition(&election, newStatus); err != nil {
			return err
		}
	}
	return nil
}

// startUpcoming moves upcoming elections into ongoing once their voting
// window opens
func (s *Scheduler) startUpcoming(now time.Time) error {
	elections, err := s.db.ElectionsToStart(now, nil)
	if err != nil {
		return err
	}
	for _, election := range elections {
		if err := s.transition(&election, models.ElectionStatusOngoing); err != nil {
			return err
		}
	}
	return nil
}

// completeEnded moves ongoing elections into completed once their voting
// window closes
func (s *Scheduler) completeEnded(now time.Time) error {
	elections, err := s.db.ElectionsToComplete(now, nil)
	if err != nil {
		return err
	}
	for _, election := range elections {
		if err := s.transition(&election, models.ElectionStatusCompleted); err != nil {
			return err
		}
	}
	return nil
}

func (s *Scheduler) transition(
	election *models.Election,
	newStatus string,
) error {
	oldStatus := election.Status
	if err := s.db.SetElectionStatus(election.ID, newStatus, nil); err != nil {
		return err
	}
	s.metrics.transitions.WithLabelValues(newStatus).Inc()
	s.logger.Info(
		"election status transition",
		"election", election.ID,
		"title", election.Title,
		"oldStatus", oldStatus,
		"newStatus", newStatus,
	)
	if s.eventBus != nil {
		s.eventBus.Publish(
			event.ElectionStatusEventType,
			event.NewEvent(
				event.ElectionStatusEventType,
				event.ElectionStatusEvent{
					ElectionID: election.ID,
					Title:      election.Title,
					OldStatus:  oldStatus,
					NewStatus:  newStatus,
					Timestamp:  time.Now(),
				},
			),
		)
	}
	return nil
}
