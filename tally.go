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

package tally

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blinklabs-io/tally/api"
	"github.com/blinklabs-io/tally/audit"
	"github.com/blinklabs-io/tally/database"
	"github.com/blinklabs-io/tally/event"
	"github.com/blinklabs-io/tally/scheduler"
	"github.com/blinklabs-io/tally/voting"
)

// Tally is the vote reconciliation service. It owns the datastore, the
// voting engine, the election scheduler, the auditor, and the REST API, and
// coordinates their lifecycle.
type Tally struct {
	config        Config
	db            *database.Database
	eventBus      *event.EventBus
	votingEngine  *voting.Voting
	auditor       *audit.Auditor
	scheduler     *scheduler.Scheduler
	apiServer     *api.Api
	shutdownFuncs []func(context.Context) error
	done          chan struct{}
	shutdownOnce  sync.Once
}

// New creates a new Tally service from the given config
func New(cfg Config) (*Tally, error) {
	eventBus := event.NewEventBus(cfg.promRegistry, cfg.logger)
	t := &Tally{
		config:   cfg,
		eventBus: eventBus,
		done:     make(chan struct{}),
	}
	if err := t.configValidate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return t, nil
}

// Run starts all components and blocks until Stop is called or the context
// is cancelled
func (t *Tally) Run(ctx context.Context) error {
	// Configure tracing
	if t.config.tracing {
		if err := t.setupTracing(); err != nil {
			return err
		}
	}
	// Load database
	db, err := database.New(&database.Config{
		DataDir:      t.config.dataDir,
		Logger:       t.config.logger,
		PromRegistry: t.config.promRegistry,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	t.db = db
	// Auditor
	t.auditor = audit.NewAuditor(audit.AuditorConfig{
		Logger:       t.config.logger,
		Database:     t.db,
		LedgerClient: t.config.ledgerClient,
		EventBus:     t.eventBus,
	})
	// Voting engine
	t.votingEngine = voting.NewVoting(voting.VotingConfig{
		Logger:            t.config.logger,
		Database:          t.db,
		LedgerClient:      t.config.ledgerClient,
		EventBus:          t.eventBus,
		Auditor:           t.auditor,
		PromRegistry:      t.config.promRegistry,
		LedgerCallTimeout: t.config.ledgerCallTimeout,
	})
	// Election scheduler
	t.scheduler = scheduler.NewScheduler(scheduler.SchedulerConfig{
		Logger:       t.config.logger,
		Database:     t.db,
		EventBus:     t.eventBus,
		PromRegistry: t.config.promRegistry,
		PollInterval: t.config.electionPollInterval,
	})
	t.scheduler.Start()
	// Voting API
	if t.config.listenAddress != "" {
		t.apiServer = api.New(
			api.ApiConfig{
				ListenAddress: t.config.listenAddress,
			},
			t.votingEngine,
			t.config.logger,
		)
		//nolint:contextcheck
		if err := t.apiServer.Start(context.Background()); err != nil {
			return err
		}
	}
	// Shut down on context cancellation
	go func() {
		select {
		case <-ctx.Done():
			_ = t.Stop()
		case <-t.done:
		}
	}()

	// Wait for shutdown
	<-t.done
	return nil
}

// Database returns the underlying datastore
func (t *Tally) Database() *database.Database {
	return t.db
}

// VotingEngine returns the vote casting engine
func (t *Tally) VotingEngine() *voting.Voting {
	return t.votingEngine
}

// Auditor returns the integrity auditor
func (t *Tally) Auditor() *audit.Auditor {
	return t.auditor
}

// EventBus returns the service event bus
func (t *Tally) EventBus() *event.EventBus {
	return t.eventBus
}

// Stop shuts the service down gracefully. It is safe to call more than once.
func (t *Tally) Stop() error {
	var err error
	t.shutdownOnce.Do(func() {
		err = t.shutdown()
	})
	return err
}

func (t *Tally) shutdown() error {
	// Create shutdown context with timeout (default 30s if not configured)
	shutdownTimeout := 30 * time.Second
	if t.config.shutdownTimeout > 0 {
		shutdownTimeout = t.config.shutdownTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var err error

	t.config.logger.Debug("starting graceful shutdown")

	// Phase 1: Stop accepting new work
	t.config.logger.Debug("shutdown phase 1: stopping new work")

	if t.apiServer != nil {
		if stopErr := t.apiServer.Stop(ctx); stopErr != nil {
			err = errors.Join(err, fmt.Errorf("api shutdown: %w", stopErr))
		}
	}

	if t.scheduler != nil {
		t.scheduler.Stop()
	}

	// Phase 2: Release the ledger connection
	t.config.logger.Debug("shutdown phase 2: closing ledger client")

	if t.config.ledgerClient != nil {
		t.config.ledgerClient.Close()
	}

	// Phase 3: Flush state and close database
	t.config.logger.Debug("shutdown phase 3: flushing state")

	if t.db != nil {
		if closeErr := t.db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("database close: %w", closeErr))
		}
	}

	// Phase 4: Cleanup resources
	t.config.logger.Debug("shutdown phase 4: cleanup resources")

	// Call registered shutdown functions
	for _, fn := range t.shutdownFuncs {
		if fnErr := fn(ctx); fnErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown function: %w", fnErr))
		}
	}
	t.shutdownFuncs = nil

	if t.eventBus != nil {
		t.eventBus.Stop()
	}

	t.config.logger.Debug("graceful shutdown complete")
	close(t.done)
	return err
}
