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

package ledger

import "context"

// ElectionSubmission is the ledger acknowledgement for a registered election
type ElectionSubmission struct {
	LedgerElectionID uint64
	TransactionHash  string
}

// VoteSubmission is the ledger acknowledgement for an included vote
type VoteSubmission struct {
	TransactionHash string
	BlockNumber     uint64
	GasUsed         uint64
}

// CandidateResult is a per-candidate tally as reported by the contract
type CandidateResult struct {
	CandidateID uint64
	VoteCount   int64
}

// VoterInfo is the contract-side view of a voter's registration for an
// election
type VoterInfo struct {
	Registered       bool
	HasVoted         bool
	VotedFor         *uint64
	RegistrationTime int64
}

// WinnerInfo is the contract-reported winning candidate for an election
type WinnerInfo struct {
	CandidateID uint64
	Name        string
	Party       string
	VoteCount   int64
}

// Client is a typed wrapper over the voting contract. Mutating calls block
// until the ledger acknowledges inclusion, which may take seconds, and can
// fail for reasons unrelated to application logic; such transport failures
// are reported as ErrUnavailable. Contract-level rejections surface as the
// typed errors in this package and are authoritative.
type Client interface {
	// SubmitElection registers an election on the ledger
	SubmitElection(
		ctx context.Context,
		title string,
		description string,
		startUnix int64,
		endUnix int64,
	) (*ElectionSubmission, error)

	// SubmitCandidate registers a candidate for a ledger election
	SubmitCandidate(
		ctx context.Context,
		ledgerElectionId uint64,
		candidateId uint64,
		name string,
		party string,
	) (string, error)

	// RegisterVoter registers a voter's wallet for a ledger election
	RegisterVoter(
		ctx context.Context,
		ledgerElectionId uint64,
		voterAddress string,
	) (string, error)

	// SubmitVote casts a vote on the ledger
	SubmitVote(
		ctx context.Context,
		ledgerElectionId uint64,
		candidateId uint64,
		voterAddress string,
	) (*VoteSubmission, error)

	// IsEligible reports whether the wallet is registered for the election
	IsEligible(
		ctx context.Context,
		ledgerElectionId uint64,
		voterAddress string,
	) (bool, error)

	// HasVoted reports whether the wallet has voted in the election
	HasVoted(
		ctx context.Context,
		ledgerElectionId uint64,
		voterAddress string,
	) (bool, error)

	// GetChoice returns the candidate the wallet voted for, or nil if it has
	// not voted
	GetChoice(
		ctx context.Context,
		ledgerElectionId uint64,
		voterAddress string,
	) (*uint64, error)

	// GetResults returns the per-candidate tallies for the election
	GetResults(
		ctx context.Context,
		ledgerElectionId uint64,
	) ([]CandidateResult, error)

	// GetTotalVotes returns the total vote count for the election
	GetTotalVotes(
		ctx context.Context,
		ledgerElectionId uint64,
	) (int64, error)

	// GetVoter returns the contract-side registration info for a wallet
	GetVoter(
		ctx context.Context,
		ledgerElectionId uint64,
		voterAddress string,
	) (*VoterInfo, error)

	// GetWinner returns the winning candidate for the election
	GetWinner(
		ctx context.Context,
		ledgerElectionId uint64,
	) (*WinnerInfo, error)

	// Close releases the underlying RPC connection
	Close()
}
