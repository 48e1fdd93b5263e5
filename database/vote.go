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

package database

import (
	"errors"
	"fmt"

	"github.com/blinklabs-io/tally/database/models"
	"gorm.io/gorm"
)

// ErrVoteExists is returned by CreateVote when a vote already exists for the
// (election, voter) pair. This is the uniqueness backstop that catches the
// race between concurrent cast attempts.
var ErrVoteExists = errors.New("vote already exists for voter and election")

// resolveDB returns the provided transaction handle, or the default database
// handle when txn is nil
func (d *Database) resolveDB(txn *gorm.DB) *gorm.DB {
	if txn != nil {
		return txn
	}
	return d.db
}

// CreateVote inserts a single vote record under the unique
// (election_id, voter_id) constraint. This insert is the true serialization
// point for double-vote prevention; a constraint violation is reported as
// ErrVoteExists.
func (d *Database) CreateVote(vote *models.Vote, txn *gorm.DB) error {
	db := d.resolveDB(txn)
	if result := db.Create(vote); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return ErrVoteExists
		}
		return fmt.Errorf("CreateVote: insert: %w", result.Error)
	}
	return nil
}

// VoteByElectionVoter returns the vote cast by a voter in an election, or
// nil if the voter has not voted.
func (d *Database) VoteByElectionVoter(
	electionId uint,
	voterId uint,
	txn *gorm.DB,
) (*models.Vote, error) {
	var ret models.Vote
	db := d.resolveDB(txn)
	result := db.Where("election_id = ? AND voter_id = ?", electionId, voterId).
		First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("VoteByElectionVoter: query: %w", result.Error)
	}
	return &ret, nil
}

// VoteByHash returns the vote with the given vote hash, or nil if not found
func (d *Database) VoteByHash(
	voteHash string,
	txn *gorm.DB,
) (*models.Vote, error) {
	var ret models.Vote
	db := d.resolveDB(txn)
	result := db.Where("vote_hash = ?", voteHash).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("VoteByHash: query: %w", result.Error)
	}
	return &ret, nil
}

// CountVotes returns the number of committed votes for an election
func (d *Database) CountVotes(electionId uint, txn *gorm.DB) (int64, error) {
	var ret int64
	db := d.resolveDB(txn)
	result := db.Model(&models.Vote{}).
		Where("election_id = ?", electionId).
		Count(&ret)
	if result.Error != nil {
		return 0, fmt.Errorf("CountVotes: query: %w", result.Error)
	}
	return ret, nil
}

// CountVotesByStatus returns the number of votes for an election with the
// given status
func (d *Database) CountVotesByStatus(
	electionId uint,
	status string,
	txn *gorm.DB,
) (int64, error) {
	var ret int64
	db := d.resolveDB(txn)
	result := db.Model(&models.Vote{}).
		Where("election_id = ? AND status = ?", electionId, status).
		Count(&ret)
	if result.Error != nil {
		return 0, fmt.Errorf("CountVotesByStatus: query: %w", result.Error)
	}
	return ret, nil
}

// VotesByElection returns votes for an election ordered by most recent
// first, with offset/limit pagination
func (d *Database) VotesByElection(
	electionId uint,
	offset int,
	limit int,
	txn *gorm.DB,
) ([]models.Vote, error) {
	var ret []models.Vote
	db := d.resolveDB(txn)
	result := db.Where("election_id = ?", electionId).
		Order("timestamp DESC").
		Offset(offset).
		Limit(limit).
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("VotesByElection: query: %w", result.Error)
	}
	return ret, nil
}

// VotesByVoter returns all votes cast by a voter, most recent first
func (d *Database) VotesByVoter(
	voterId uint,
	txn *gorm.DB,
) ([]models.Vote, error) {
	var ret []models.Vote
	db := d.resolveDB(txn)
	result := db.Where("voter_id = ?", voterId).
		Order("timestamp DESC").
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("VotesByVoter: query: %w", result.Error)
	}
	return ret, nil
}

// CandidateTally holds a per-candidate vote count from the vote table
type CandidateTally struct {
	CandidateID uint64
	Count       int64
}

// TallyByCandidate counts committed votes per candidate for an election,
// highest count first. This recount reads the vote table directly rather
// than the cached candidate counters.
func (d *Database) TallyByCandidate(
	electionId uint,
	txn *gorm.DB,
) ([]CandidateTally, error) {
	var ret []CandidateTally
	db := d.resolveDB(txn)
	result := db.Model(&models.Vote{}).
		Select("candidate_id, count(*) as count").
		Where("election_id = ?", electionId).
		Group("candidate_id").
		Order("count DESC").
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("TallyByCandidate: query: %w", result.Error)
	}
	return ret, nil
}

// HourlyTally holds a per-hour vote count bucket
type HourlyTally struct {
	Hour  string
	Count int64
}

// VotesOverTime buckets committed votes for an election by hour
func (d *Database) VotesOverTime(
	electionId uint,
	txn *gorm.DB,
) ([]HourlyTally, error) {
	var ret []HourlyTally
	db := d.resolveDB(txn)
	result := db.Model(&models.Vote{}).
		Select("strftime('%Y-%m-%d %H:00', timestamp) as hour, count(*) as count").
		Where("election_id = ?", electionId).
		Group("hour").
		Order("hour").
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("VotesOverTime: query: %w", result.Error)
	}
	return ret, nil
}

// DeleteVote removes a vote record and decrements the cached election and
// candidate counters. This is the administrative reset-vote correction and
// runs in a single transaction.
func (d *Database) DeleteVote(electionId uint, voterId uint) error {
	return d.db.Transaction(func(txn *gorm.DB) error {
		vote, err := d.VoteByElectionVoter(electionId, voterId, txn)
		if err != nil {
			return err
		}
		if vote == nil {
			return ErrNotFound
		}
		if result := txn.Delete(&models.Vote{}, vote.ID); result.Error != nil {
			return fmt.Errorf("DeleteVote: delete: %w", result.Error)
		}
		result := txn.Model(&models.Election{}).
			Where("id = ? AND total_votes > 0", electionId).
			UpdateColumn("total_votes", gorm.Expr("total_votes - ?", 1))
		if result.Error != nil {
			return fmt.Errorf("DeleteVote: election counter: %w", result.Error)
		}
		result = txn.Model(&models.Candidate{}).
			Where(
				"election_id = ? AND candidate_id = ? AND vote_count > 0",
				electionId,
				vote.CandidateID,
			).
			UpdateColumn("vote_count", gorm.Expr("vote_count - ?", 1))
		if result.Error != nil {
			return fmt.Errorf("DeleteVote: candidate counter: %w", result.Error)
		}
		return nil
	})
}
