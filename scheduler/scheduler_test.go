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

package scheduler_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/tally/database"
	"github.com/blinklabs-io/tally/database/models"
	"github.com/blinklabs-io/tally/event"
	"github.com/blinklabs-io/tally/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testDatabase(t *testing.T) *database.Database {
	db, err := database.New(&database.Config{})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func createElection(
	t *testing.T,
	db *database.Database,
	status string,
	regDeadline time.Time,
	startTime time.Time,
	endTime time.Time,
	withCandidate bool,
) *models.Election {
	election := &models.Election{
		Title:                "Scheduler Test " + status,
		LedgerRef:            "sched-" + status + startTime.String(),
		Status:               status,
		IsPublic:             true,
		CandidateRegDeadline: regDeadline,
		StartTime:            startTime,
		EndTime:              endTime,
	}
	require.NoError(t, db.CreateElection(election, nil))
	if withCandidate {
		require.NoError(t, db.CreateCandidate(&models.Candidate{
			ElectionID:  election.ID,
			CandidateID: 1,
			Name:        "Candidate One",
			Status:      models.CandidateStatusActive,
			IsVerified:  true,
			IsActive:    true,
		}, nil))
	}
	return election
}

func electionStatus(
	t *testing.T,
	db *database.Database,
	electionId uint,
) string {
	election, err := db.ElectionByID(electionId, nil)
	require.NoError(t, err)
	require.NotNil(t, election)
	return election.Status
}

func TestSchedulerActivatesElections(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })
	db := testDatabase(t)
	now := time.Now()
	election := createElection(
		t,
		db,
		models.ElectionStatusScheduled,
		now.Add(-time.Hour),
		now.Add(time.Hour),
		now.Add(2*time.Hour),
		true,
	)
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Database:     db,
		PollInterval: time.Hour,
	})
	sched.Tick()
	assert.Equal(
		t,
		models.ElectionStatusUpcoming,
		electionStatus(t, db, election.ID),
	)
}

func TestSchedulerHoldsElectionWithoutCandidates(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })
	db := testDatabase(t)
	now := time.Now()
	election := createElection(
		t,
		db,
		models.ElectionStatusScheduled,
		now.Add(-time.Hour),
		now.Add(time.Hour),
		now.Add(2*time.Hour),
		false,
	)
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Database:     db,
		PollInterval: time.Hour,
	})
	sched.Tick()
	assert.Equal(
		t,
		models.ElectionStatusScheduled,
		electionStatus(t, db, election.ID),
	)
}

func TestSchedulerStartsUpcomingElections(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })
	db := testDatabase(t)
	now := time.Now()
	election := createElection(
		t,
		db,
		models.ElectionStatusUpcoming,
		now.Add(-2*time.Hour),
		now.Add(-time.Minute),
		now.Add(time.Hour),
		true,
	)
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Database:     db,
		PollInterval: time.Hour,
	})
	sched.Tick()
	assert.Equal(
		t,
		models.ElectionStatusOngoing,
		electionStatus(t, db, election.ID),
	)
}

func TestSchedulerCompletesEndedElections(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })
	db := testDatabase(t)
	now := time.Now()
	election := createElection(
		t,
		db,
		models.ElectionStatusOngoing,
		now.Add(-3*time.Hour),
		now.Add(-2*time.Hour),
		now.Add(-time.Minute),
		true,
	)
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Database:     db,
		PollInterval: time.Hour,
	})
	sched.Tick()
	assert.Equal(
		t,
		models.ElectionStatusCompleted,
		electionStatus(t, db, election.ID),
	)
}

func TestSchedulerPublishesStatusEvents(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })
	db := testDatabase(t)
	eventBus := event.NewEventBus(nil, nil)
	defer eventBus.Stop()
	_, eventChan := eventBus.Subscribe(event.ElectionStatusEventType)
	now := time.Now()
	election := createElection(
		t,
		db,
		models.ElectionStatusOngoing,
		now.Add(-3*time.Hour),
		now.Add(-2*time.Hour),
		now.Add(-time.Minute),
		true,
	)
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Database:     db,
		EventBus:     eventBus,
		PollInterval: time.Hour,
	})
	sched.Tick()
	select {
	case evt := <-eventChan:
		statusEvent, ok := evt.Data.(event.ElectionStatusEvent)
		require.True(t, ok)
		assert.Equal(t, election.ID, statusEvent.ElectionID)
		assert.Equal(t, models.ElectionStatusOngoing, statusEvent.OldStatus)
		assert.Equal(t, models.ElectionStatusCompleted, statusEvent.NewStatus)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for status event")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	t.Cleanup(func() { goleak.VerifyNone(t) })
	db := testDatabase(t)
	sched := scheduler.NewScheduler(scheduler.SchedulerConfig{
		Database:     db,
		PollInterval: 10 * time.Millisecond,
	})
	sched.Start()
	time.Sleep(50 * time.Millisecond)
	sched.Stop()
}
