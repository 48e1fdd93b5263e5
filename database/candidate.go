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

// CandidateByElectionAndID returns the candidate with the given contract
// candidate ID within an election, or nil if not found
func (d *Database) CandidateByElectionAndID(
	electionId uint,
	candidateId uint64,
	txn *gorm.DB,
) (*models.Candidate, error) {
	var ret models.Candidate
	db := d.resolveDB(txn)
	result := db.Where(
		"election_id = ? AND candidate_id = ?",
		electionId,
		candidateId,
	).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf(
			"CandidateByElectionAndID: query: %w", result.Error,
		)
	}
	return &ret, nil
}

// CreateCandidate inserts a new candidate under the unique
// (election_id, candidate_id) constraint
func (d *Database) CreateCandidate(
	candidate *models.Candidate,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	if result := db.Create(candidate); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf(
				"CreateCandidate: candidate %d already registered for election %d",
				candidate.CandidateID,
				candidate.ElectionID,
			)
		}
		return fmt.Errorf("CreateCandidate: insert: %w", result.Error)
	}
	return nil
}

// CandidatesByElection returns all candidates for an election
func (d *Database) CandidatesByElection(
	electionId uint,
	txn *gorm.DB,
) ([]models.Candidate, error) {
	var ret []models.Candidate
	db := d.resolveDB(txn)
	result := db.Where("election_id = ?", electionId).
		Order("candidate_id").
		Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("CandidatesByElection: query: %w", result.Error)
	}
	return ret, nil
}

// CountActiveCandidates returns the number of verified, active candidates
// for an election
func (d *Database) CountActiveCandidates(
	electionId uint,
	txn *gorm.DB,
) (int64, error) {
	var ret int64
	db := d.resolveDB(txn)
	result := db.Model(&models.Candidate{}).
		Where(
			"election_id = ? AND is_verified = ? AND is_active = ?",
			electionId,
			true,
			true,
		).
		Count(&ret)
	if result.Error != nil {
		return 0, fmt.Errorf("CountActiveCandidates: query: %w", result.Error)
	}
	return ret, nil
}

// IncCandidateVoteCount atomically increments the cached vote counter for a
// candidate
func (d *Database) IncCandidateVoteCount(
	electionId uint,
	candidateId uint64,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	result := db.Model(&models.Candidate{}).
		Where("election_id = ? AND candidate_id = ?", electionId, candidateId).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("IncCandidateVoteCount: update: %w", result.Error)
	}
	return nil
}
