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

package models

import "time"

// Vote status values. Confirmed means the ledger acknowledged inclusion.
// LocalOnly means the vote was recorded in the datastore without a ledger
// transaction (ledger unreachable or voter not ledger-registered) and is
// never retried.
const (
	VoteStatusConfirmed = "confirmed"
	VoteStatusLocalOnly = "local"
	VoteStatusFailed    = "failed"
)

// Vote is the authoritative record of a cast ballot. The unique
// (election_id, voter_id) index is the serialization point for double-vote
// prevention; TransactionHash and BlockNumber are set if and only if the
// ledger write succeeded.
type Vote struct {
	ID              uint    `gorm:"primarykey"`
	ElectionID      uint    `gorm:"uniqueIndex:election_voter;index:vote_election_candidate"`
	VoterID         uint    `gorm:"uniqueIndex:election_voter"`
	CandidateID     uint64  `gorm:"index:vote_election_candidate"`
	VoteHash        string  `gorm:"index"`
	TransactionHash *string
	BlockNumber     *uint64
	Status          string `gorm:"index"`
	Timestamp       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (v *Vote) TableName() string {
	return "vote"
}

// LedgerConfirmed returns true when the vote carries a ledger transaction
func (v *Vote) LedgerConfirmed() bool {
	return v.Status == VoteStatusConfirmed && v.TransactionHash != nil
}
