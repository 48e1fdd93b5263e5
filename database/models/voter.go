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

// Voter roles
const (
	VoterRoleVoter = "voter"
	VoterRoleAdmin = "admin"
)

// Voter represents a registered user. WalletAddress is the voter's ledger
// identity and is unique across all voters; a nil value means no wallet has
// been linked yet. HasVoted is a legacy per-voter flag kept for API
// compatibility only; the unique (election_id, voter_id) index on Vote is
// the authoritative double-vote guard.
type Voter struct {
	ID            uint    `gorm:"primarykey"`
	Name          string
	Email         string  `gorm:"uniqueIndex"`
	WalletAddress *string `gorm:"uniqueIndex"`
	Role          string
	IsVerified    bool
	VoterRef      string `gorm:"index"`
	HasVoted      bool
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (v *Voter) TableName() string {
	return "voter"
}

// Admin returns true for administrative users
func (v *Voter) Admin() bool {
	return v.Role == VoterRoleAdmin
}
