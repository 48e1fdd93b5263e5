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

package database_test

import (
	"testing"
	"time"

	"github.com/blinklabs-io/tally/database"
	"github.com/blinklabs-io/tally/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func testElection(t *testing.T, db *database.Database) *models.Election {
	t.Helper()
	now := time.Now()
	election := &models.Election{
		Title:                "Test Election",
		Description:          "test",
		LedgerID:             7,
		LedgerRef:            "test-election-7",
		CandidateRegDeadline: now.Add(-2 * time.Hour),
		StartTime:            now.Add(-1 * time.Hour),
		EndTime:              now.Add(1 * time.Hour),
		Status:               models.ElectionStatusOngoing,
		IsPublic:             true,
	}
	require.NoError(t, db.CreateElection(election, nil))
	return election
}

func TestNewMigratesFreshDatabase(t *testing.T) {
	// All model indexes share one sqlite namespace, so migration of the
	// full model set on an empty database must succeed
	db, err := database.New(&database.Config{
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestVoteUniqueConstraint(t *testing.T) {
	db := testDatabase(t)
	election := testElection(t, db)

	vote := &models.Vote{
		ElectionID:  election.ID,
		VoterID:     42,
		CandidateID: 1,
		VoteHash:    "aaaa",
		Status:      models.VoteStatusLocalOnly,
		Timestamp:   time.Now(),
	}
	require.NoError(t, db.CreateVote(vote, nil))

	// Second insert for the same (election, voter) must be rejected by the
	// unique constraint regardless of candidate
	dup := &models.Vote{
		ElectionID:  election.ID,
		VoterID:     42,
		CandidateID: 2,
		VoteHash:    "bbbb",
		Status:      models.VoteStatusLocalOnly,
		Timestamp:   time.Now(),
	}
	err := db.CreateVote(dup, nil)
	require.ErrorIs(t, err, database.ErrVoteExists)

	// A different voter can still vote
	other := &models.Vote{
		ElectionID:  election.ID,
		VoterID:     43,
		CandidateID: 1,
		VoteHash:    "cccc",
		Status:      models.VoteStatusLocalOnly,
		Timestamp:   time.Now(),
	}
	require.NoError(t, db.CreateVote(other, nil))

	count, err := db.CountVotes(election.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCandidateUniqueConstraint(t *testing.T) {
	db := testDatabase(t)
	election := testElection(t, db)

	candidate := &models.Candidate{
		ElectionID:  election.ID,
		CandidateID: 1,
		Name:        "Alice",
		Party:       "Independent",
		Status:      models.CandidateStatusActive,
		IsVerified:  true,
		IsActive:    true,
	}
	require.NoError(t, db.CreateCandidate(candidate, nil))

	dup := &models.Candidate{
		ElectionID:  election.ID,
		CandidateID: 1,
		Name:        "Mallory",
		Party:       "Independent",
		Status:      models.CandidateStatusActive,
	}
	require.Error(t, db.CreateCandidate(dup, nil))
}

func TestAtomicCounters(t *testing.T) {
	db := testDatabase(t)
	election := testElection(t, db)
	candidate := &models.Candidate{
		ElectionID:  election.ID,
		CandidateID: 1,
		Name:        "Alice",
		Party:       "Independent",
		Status:      models.CandidateStatusActive,
		IsVerified:  true,
		IsActive:    true,
	}
	require.NoError(t, db.CreateCandidate(candidate, nil))

	for range 3 {
		require.NoError(t, db.IncElectionTotalVotes(election.ID, nil))
		require.NoError(t, db.IncCandidateVoteCount(election.ID, 1, nil))
	}

	updated, err := db.ElectionByID(election.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, int64(3), updated.TotalVotes)

	updatedCandidate, err := db.CandidateByElectionAndID(election.ID, 1, nil)
	require.NoError(t, err)
	require.NotNil(t, updatedCandidate)
	assert.Equal(t, int64(3), updatedCandidate.VoteCount)
}

func TestDeleteVoteResetsCounters(t *testing.T) {
	db := testDatabase(t)
	election := testElection(t, db)
	candidate := &models.Candidate{
		ElectionID:  election.ID,
		CandidateID: 1,
		Name:        "Alice",
		Party:       "Independent",
		Status:      models.CandidateStatusActive,
		IsVerified:  true,
		IsActive:    true,
	}
	require.NoError(t, db.CreateCandidate(candidate, nil))
	vote := &models.Vote{
		ElectionID:  election.ID,
		VoterID:     42,
		CandidateID: 1,
		VoteHash:    "aaaa",
		Status:      models.VoteStatusLocalOnly,
		Timestamp:   time.Now(),
	}
	require.NoError(t, db.CreateVote(vote, nil))
	require.NoError(t, db.IncElectionTotalVotes(election.ID, nil))
	require.NoError(t, db.IncCandidateVoteCount(election.ID, 1, nil))

	require.NoError(t, db.DeleteVote(election.ID, 42))

	count, err := db.CountVotes(election.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	updated, err := db.ElectionByID(election.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.TotalVotes)

	// Resetting a missing vote reports not found
	require.ErrorIs(
		t,
		db.DeleteVote(election.ID, 42),
		database.ErrNotFound,
	)
}

func TestTallyByCandidate(t *testing.T) {
	db := testDatabase(t)
	election := testElection(t, db)

	for i, candidateId := range []uint64{1, 1, 2} {
		vote := &models.Vote{
			ElectionID:  election.ID,
			VoterID:     uint(100 + i),
			CandidateID: candidateId,
			VoteHash:    "hash",
			Status:      models.VoteStatusConfirmed,
			Timestamp:   time.Now(),
		}
		require.NoError(t, db.CreateVote(vote, nil))
	}

	tally, err := db.TallyByCandidate(election.ID, nil)
	require.NoError(t, err)
	require.Len(t, tally, 2)
	assert.Equal(t, uint64(1), tally[0].CandidateID)
	assert.Equal(t, int64(2), tally[0].Count)
	assert.Equal(t, uint64(2), tally[1].CandidateID)
	assert.Equal(t, int64(1), tally[1].Count)
}

func TestReceiptRoundTrip(t *testing.T) {
	db := testDatabase(t)

	receipt := &database.LedgerReceipt{
		TransactionHash: "0xabc",
		BlockNumber:     42,
		GasUsed:         21000,
		LedgerElection:  7,
		CandidateID:     1,
		VoterAddress:    "0xf00",
		SubmittedAt:     time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, db.PutReceipt(receipt))

	got, err := db.GetReceipt("0xabc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, receipt.TransactionHash, got.TransactionHash)
	assert.Equal(t, receipt.BlockNumber, got.BlockNumber)

	missing, err := db.GetReceipt("0xmissing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
