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

package voting

import "time"

// CastVoteParams identifies the vote being cast
type CastVoteParams struct {
	ElectionID  uint
	VoterID     uint
	CandidateID uint64
}

// CastVoteResult holds the outcome of a successful cast. TransactionHash
// and BlockNumber are nil for votes recorded without ledger confirmation.
type CastVoteResult struct {
	VoteHash        string
	TransactionHash *string
	BlockNumber     *uint64
	Status          string
	LedgerConfirmed bool
	Timestamp       time.Time
}

// VoteVerification holds the lookup result for a receipt hash
type VoteVerification struct {
	ElectionID      uint
	CandidateID     uint64
	Status          string
	TransactionHash *string
	Timestamp       time.Time
	LedgerReceipt   *LedgerReceiptInfo
	LedgerAvailable bool
	LedgerConfirmed bool
}

// VoteStatusInfo reports whether and how a voter has voted
type VoteStatusInfo struct {
	HasVoted  bool
	Status    string
	VoteHash  string
	Timestamp time.Time
}

// VoteReceiptInfo is the full receipt for a cast vote
type VoteReceiptInfo struct {
	ElectionID      uint
	ElectionTitle   string
	CandidateID     uint64
	VoteHash        string
	Status          string
	TransactionHash *string
	BlockNumber     *uint64
	Timestamp       time.Time
}

// LedgerReceiptInfo is the archived raw ledger acknowledgement for a
// confirmed vote
type LedgerReceiptInfo struct {
	TransactionHash string
	BlockNumber     uint64
	GasUsed         uint64
	SubmittedAt     time.Time
}

// VoteRecord is a single vote in a history or election listing
type VoteRecord struct {
	ElectionID      uint
	CandidateID     uint64
	VoteHash        string
	Status          string
	TransactionHash *string
	Timestamp       time.Time
}

// ElectionVotesPage is a page of votes for an election
type ElectionVotesPage struct {
	Total   int64
	Page    int
	PerPage int
	Votes   []VoteRecord
}

// CandidateCount is a per-candidate vote count
type CandidateCount struct {
	CandidateID uint64
	VoteCount   int64
}

// HourlyCount is a per-hour vote count bucket
type HourlyCount struct {
	Hour  string
	Count int64
}

// AnalyticsInfo holds aggregate voting statistics for an election
type AnalyticsInfo struct {
	ElectionID     uint
	TotalVotes     int64
	ConfirmedVotes int64
	LocalOnlyVotes int64
	FailedVotes    int64
	ByCandidate    []CandidateCount
	ByHour         []HourlyCount
}
