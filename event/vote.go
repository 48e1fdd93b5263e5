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

package event

import "time"

// VoteCastEventType is the event type for successfully committed votes
const VoteCastEventType = EventType("vote.cast")

// VoteCastEvent is emitted after a vote has been committed to the datastore.
// LedgerConfirmed indicates whether the vote was also included on the ledger
// or recorded in local-only fallback mode.
type VoteCastEvent struct {
	// ElectionID is the local election identifier
	ElectionID uint
	// CandidateID is the contract-level candidate identifier
	CandidateID uint64
	// VoteHash is the deterministic vote digest
	VoteHash string
	// TransactionHash is the ledger transaction hash, empty in fallback mode
	TransactionHash string
	// LedgerConfirmed is true when the ledger acknowledged inclusion
	LedgerConfirmed bool
	// Timestamp is when the vote was committed
	Timestamp time.Time
}

// DivergenceEventType is the event type for detected datastore/ledger mismatches
const DivergenceEventType = EventType("audit.divergence")

// DivergenceEvent is emitted when an integrity audit finds the datastore and
// the ledger disagreeing about an election. Divergence is reported, never
// auto-corrected.
type DivergenceEvent struct {
	// ElectionID is the local election identifier
	ElectionID uint
	// DatabaseVotes is the committed vote count in the datastore
	DatabaseVotes int64
	// LedgerVotes is the vote count reported by the ledger
	LedgerVotes int64
	// LocalOnlyVotes is the number of fallback votes never sent to the ledger
	LocalOnlyVotes int64
	// Timestamp is when the audit ran
	Timestamp time.Time
}
