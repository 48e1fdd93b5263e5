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

import (
	"context"

	"github.com/blinklabs-io/tally/audit"
	"github.com/blinklabs-io/tally/voting"
)

// VotingService is the interface that the voting API server uses to cast
// and query votes. This decouples the HTTP server from the concrete voting
// engine and enables testing with mock implementations.
type VotingService interface {
	// CastVote records a vote for a voter in an election
	CastVote(
		ctx context.Context,
		params voting.CastVoteParams,
	) (*voting.CastVoteResult, error)

	// VerifyVote looks up a vote by its receipt hash
	VerifyVote(
		ctx context.Context,
		voteHash string,
	) (*voting.VoteVerification, error)

	// VoteStatus reports whether a voter has voted in an election
	VoteStatus(
		ctx context.Context,
		electionId uint,
		voterId uint,
	) (*voting.VoteStatusInfo, error)

	// VoteReceipt returns the full receipt for a voter's vote in an
	// election
	VoteReceipt(
		ctx context.Context,
		electionId uint,
		voterId uint,
	) (*voting.VoteReceiptInfo, error)

	// VoterHistory returns all votes cast by a voter
	VoterHistory(
		ctx context.Context,
		voterId uint,
	) ([]voting.VoteRecord, error)

	// ElectionVotes returns a page of votes for an election
	ElectionVotes(
		ctx context.Context,
		electionId uint,
		page int,
		perPage int,
	) (*voting.ElectionVotesPage, error)

	// ElectionIntegrity audits an election's votes against the ledger
	ElectionIntegrity(
		ctx context.Context,
		electionId uint,
	) (*audit.Report, error)

	// VoteAnalytics returns aggregate voting statistics for an election
	VoteAnalytics(
		ctx context.Context,
		electionId uint,
	) (*voting.AnalyticsInfo, error)

	// ResetVote removes a voter's vote from an election as an
	// administrative correction
	ResetVote(
		ctx context.Context,
		electionId uint,
		voterId uint,
	) error

	// IsAdmin reports whether a voter holds the admin role
	IsAdmin(
		ctx context.Context,
		voterId uint,
	) (bool, error)
}
