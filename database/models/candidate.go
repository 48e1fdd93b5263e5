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

// Candidate status values
const (
	CandidateStatusActive       = "active"
	CandidateStatusWithdrawn    = "withdrawn"
	CandidateStatusDisqualified = "disqualified"
)

// Candidate belongs to exactly one election. CandidateID is the contract-level
// numeric identifier, unique within the election. VoteCount is a cached
// counter, corrected by recount when needed.
type Candidate struct {
	ID               uint   `gorm:"primarykey"`
	ElectionID       uint   `gorm:"uniqueIndex:election_candidate"`
	CandidateID      uint64 `gorm:"uniqueIndex:election_candidate"`
	Name             string
	Party            string
	Manifesto        string
	ImageURL         string
	Status           string `gorm:"index"`
	WithdrawalReason string
	VoteCount        int64
	VoterID          uint
	IsVerified       bool
	IsActive         bool
	VerifiedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (c *Candidate) TableName() string {
	return "candidate"
}
