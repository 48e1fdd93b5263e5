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

// VoterByID returns a single voter, or nil if not found
func (d *Database) VoterByID(
	voterId uint,
	txn *gorm.DB,
) (*models.Voter, error) {
	var ret models.Voter
	db := d.resolveDB(txn)
	result := db.First(&ret, voterId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("VoterByID: query: %w", result.Error)
	}
	return &ret, nil
}

// VoterByWallet returns the voter linked to a wallet address, or nil if not
// found
func (d *Database) VoterByWallet(
	walletAddress string,
	txn *gorm.DB,
) (*models.Voter, error) {
	var ret models.Voter
	db := d.resolveDB(txn)
	result := db.Where("wallet_address = ?", walletAddress).First(&ret)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("VoterByWallet: query: %w", result.Error)
	}
	return &ret, nil
}

// CreateVoter inserts a new voter. Wallet addresses are unique across all
// voters.
func (d *Database) CreateVoter(voter *models.Voter, txn *gorm.DB) error {
	db := d.resolveDB(txn)
	if result := db.Create(voter); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf(
				"CreateVoter: email or wallet address already registered",
			)
		}
		return fmt.Errorf("CreateVoter: insert: %w", result.Error)
	}
	return nil
}

// MarkVoterVoted sets the legacy per-voter hasVoted flag. The flag is kept
// for API compatibility and is never consulted for double-vote prevention.
func (d *Database) MarkVoterVoted(voterId uint, txn *gorm.DB) error {
	db := d.resolveDB(txn)
	result := db.Model(&models.Voter{}).
		Where("id = ?", voterId).
		UpdateColumn("has_voted", true)
	if result.Error != nil {
		return fmt.Errorf("MarkVoterVoted: update: %w", result.Error)
	}
	return nil
}
