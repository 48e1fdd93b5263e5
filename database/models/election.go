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

// Election status values. Transitions are monotonic along
// scheduled -> {upcoming|ongoing} -> completed, with suspended/cancelled
// reachable from any non-terminal status.
const (
	ElectionStatusScheduled = "scheduled"
	ElectionStatusUpcoming  = "upcoming"
	ElectionStatusOngoing   = "ongoing"
	ElectionStatusCompleted = "completed"
	ElectionStatusSuspended = "suspended"
	ElectionStatusCancelled = "cancelled"
)

// Election represents a single election. LedgerID is the numeric identifier
// assigned by the voting contract at registration time; zero means the
// election was never registered on the ledger and votes for it are recorded
// in local-only fallback mode. TotalVotes is a cached counter, not the
// authoritative count.
type Election struct {
	ID                    uint   `gorm:"primarykey"`
	Title                 string `gorm:"index"`
	Description           string
	LedgerID              uint64 `gorm:"index"`
	LedgerRef             string `gorm:"uniqueIndex"`
	CreatedBy             uint
	CandidateRegDeadline  time.Time
	StartTime             time.Time
	EndTime               time.Time
	Status                string `gorm:"index"`
	IsPublic              bool
	ResultsPublished      bool
	ResultsPublishTime    *time.Time
	IsArchived            bool
	SuspensionReason      string
	TotalVotes            int64
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (e *Election) TableName() string {
	return "election"
}

// Terminal returns true when no further status transitions are allowed
func (e *Election) Terminal() bool {
	switch e.Status {
	case ElectionStatusCompleted, ElectionStatusCancelled:
		return true
	default:
		return false
	}
}

// AllowedVoter restricts a non-public election to an explicit voter list
type AllowedVoter struct {
	ID         uint `gorm:"primarykey"`
	ElectionID uint `gorm:"uniqueIndex:allowed_voter_election"`
	VoterID    uint `gorm:"uniqueIndex:allowed_voter_election"`
}

func (a *AllowedVoter) TableName() string {
	return "allowed_voter"
}
