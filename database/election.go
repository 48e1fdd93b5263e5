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
	"time"

	"github.com/blinklabs-io/tally/database/models"
	"gorm.io/gorm"
)

// ElectionByID returns a single election, or nil if not found
func (d *Database) ElectionByID(
	electionId uint,
	txn *gorm.DB,
) (*models.Election, error) {
	var ret models.Election
	db := d.resolveDB(txn)
	result := db.First(&ret, electionId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("ElectionByID: query: %w", result.Error)
	}
	return &ret, nil
}

// CreateElection inserts a new election record
func (d *Database) CreateElection(
	election *models.Election,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	if result := db.Create(election); result.Error != nil {
		return fmt.Errorf("CreateElection: insert: %w", result.Error)
	}
	return nil
}

// IncElectionTotalVotes atomically increments the cached total vote counter
// for an election. Uses a per-document atomic increment, not
// read-modify-write, to avoid lost updates under concurrency.
func (d *Database) IncElectionTotalVotes(
	electionId uint,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	result := db.Model(&models.Election{}).
		Where("id = ?", electionId).
		UpdateColumn("total_votes", gorm.Expr("total_votes + ?", 1))
	if result.Error != nil {
		return fmt.Errorf("IncElectionTotalVotes: update: %w", result.Error)
	}
	return nil
}

// SetElectionStatus updates the status of an election
func (d *Database) SetElectionStatus(
	electionId uint,
	status string,
	txn *gorm.DB,
) error {
	db := d.resolveDB(txn)
	result := db.Model(&models.Election{}).
		Where("id = ?", electionId).
		UpdateColumn("status", status)
	if result.Error != nil {
		return fmt.Errorf("SetElectionStatus: update: %w", result.Error)
	}
	return nil
}

// ElectionsPendingActivation returns elections whose candidate registration
// deadline has passed but which are still in scheduled status
func (d *Database) ElectionsPendingActivation(
	now time.Time,
	txn *gorm.DB,
) ([]models.Election, error) {
	var ret []models.Election
	db := d.resolveDB(txn)
	result := db.Where(
		"candidate_reg_deadline <= ? AND status = ?",
		now,
		models.ElectionStatusScheduled,
	).Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf(
			"ElectionsPendingActivation: query: %w", result.Error,
		)
	}
	return ret, nil
}

// ElectionsToStart returns upcoming elections whose voting window contains now
func (d *Database) ElectionsToStart(
	now time.Time,
	txn *gorm.DB,
) ([]models.Election, error) {
	var ret []models.Election
	db := d.resolveDB(txn)
	result := db.Where(
		"status = ? AND start_time <= ? AND end_time >= ?",
		models.ElectionStatusUpcoming,
		now,
		now,
	).Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("ElectionsToStart: query: %w", result.Error)
	}
	return ret, nil
}

// ElectionsToComplete returns ongoing elections whose voting window has ended
func (d *Database) ElectionsToComplete(
	now time.Time,
	txn *gorm.DB,
) ([]models.Election, error) {
	var ret []models.Election
	db := d.resolveDB(txn)
	result := db.Where(
		"status = ? AND end_time < ?",
		models.ElectionStatusOngoing,
		now,
	).Find(&ret)
	if result.Error != nil {
		return nil, fmt.Errorf("ElectionsToComplete: query: %w", result.Error)
	}
	return ret, nil
}

// VoterAllowed reports whether a voter may participate in an election. Public
// elections admit any voter; allow-listed elections require an AllowedVoter
// entry.
func (d *Database) VoterAllowed(
	election *models.Election,
	voterId uint,
	txn *gorm.DB,
) (bool, error) {
	if election.IsPublic {
		return true, nil
	}
	var count int64
	db := d.resolveDB(txn)
	result := db.Model(&models.AllowedVoter{}).
		Where("election_id = ? AND voter_id = ?", election.ID, voterId).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("VoterAllowed: query: %w", result.Error)
	}
	return count > 0, nil
}
