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

package api

// ErrorResponse is the standard error payload
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

// HealthResponse is the health check payload
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// CastVoteRequest is the request body for casting a vote
type CastVoteRequest struct {
	ElectionID  uint   `json:"electionId"`
	CandidateID uint64 `json:"candidateId"`
}

// CastVoteResponse is the response body for a cast vote
type CastVoteResponse struct {
	VoteHash        string  `json:"voteHash"`
	TransactionHash *string `json:"transactionHash"`
	BlockNumber     *uint64 `json:"blockNumber"`
	Status          string  `json:"status"`
	LedgerConfirmed bool    `json:"ledgerConfirmed"`
	Timestamp       int64   `json:"timestamp"`
}

// VerifyVoteRequest is the request body for verifying a vote hash
type VerifyVoteRequest struct {
	VoteHash string `json:"voteHash"`
}

// LedgerReceiptResponse is the archived ledger acknowledgement payload
type LedgerReceiptResponse struct {
	TransactionHash string `json:"transactionHash"`
	BlockNumber     uint64 `json:"blockNumber"`
	GasUsed         uint64 `json:"gasUsed"`
	SubmittedAt     int64  `json:"submittedAt"`
}

// VerifyVoteResponse is the response body for a verified vote hash
type VerifyVoteResponse struct {
	Verified        bool                   `json:"verified"`
	ElectionID      uint                   `json:"electionId"`
	CandidateID     uint64                 `json:"candidateId"`
	Status          string                 `json:"status"`
	TransactionHash *string                `json:"transactionHash"`
	Timestamp       int64                  `json:"timestamp"`
	LedgerReceipt   *LedgerReceiptResponse `json:"ledgerReceipt,omitempty"`
	LedgerAvailable bool                   `json:"ledgerAvailable"`
	LedgerConfirmed bool                   `json:"ledgerConfirmed"`
}

// VoteStatusResponse is the response body for a vote status check
type VoteStatusResponse struct {
	HasVoted  bool   `json:"hasVoted"`
	Status    string `json:"status,omitempty"`
	VoteHash  string `json:"voteHash,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

// VoteReceiptResponse is the response body for a vote receipt
type VoteReceiptResponse struct {
	ElectionID      uint    `json:"electionId"`
	ElectionTitle   string  `json:"electionTitle"`
	CandidateID     uint64  `json:"candidateId"`
	VoteHash        string  `json:"voteHash"`
	Status          string  `json:"status"`
	TransactionHash *string `json:"transactionHash"`
	BlockNumber     *uint64 `json:"blockNumber"`
	Timestamp       int64   `json:"timestamp"`
}

// VoteRecordResponse is a single vote in a listing
type VoteRecordResponse struct {
	ElectionID      uint    `json:"electionId"`
	CandidateID     uint64  `json:"candidateId"`
	VoteHash        string  `json:"voteHash"`
	Status          string  `json:"status"`
	TransactionHash *string `json:"transactionHash"`
	Timestamp       int64   `json:"timestamp"`
}

// ElectionVotesResponse is a page of votes for an election
type ElectionVotesResponse struct {
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"perPage"`
	Votes   []VoteRecordResponse `json:"votes"`
}

// CandidateCountResponse is a per-candidate vote count
type CandidateCountResponse struct {
	CandidateID uint64 `json:"candidateId"`
	VoteCount   int64  `json:"voteCount"`
}

// HourlyCountResponse is a per-hour vote count bucket
type HourlyCountResponse struct {
	Hour  string `json:"hour"`
	Count int64  `json:"count"`
}

// AnalyticsResponse is the aggregate statistics payload
type AnalyticsResponse struct {
	ElectionID     uint                     `json:"electionId"`
	TotalVotes     int64                    `json:"totalVotes"`
	ConfirmedVotes int64                    `json:"confirmedVotes"`
	LocalOnlyVotes int64                    `json:"localOnlyVotes"`
	FailedVotes    int64                    `json:"failedVotes"`
	ByCandidate    []CandidateCountResponse `json:"byCandidate"`
	ByHour         []HourlyCountResponse    `json:"byHour"`
}
