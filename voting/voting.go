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

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/blinklabs-io/tally/audit"
	"github.com/blinklabs-io/tally/database"
	"github.com/blinklabs-io/tally/database/models"
	"github.com/blinklabs-io/tally/event"
	"github.com/blinklabs-io/tally/ledger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

const defaultLedgerCallTimeout = 30 * time.Second

// VotingConfig holds the dependencies for the voting engine
type VotingConfig struct {
	Logger            *slog.Logger
	Database          *database.Database
	LedgerClient      ledger.Client
	EventBus          *event.EventBus
	Auditor           *audit.Auditor
	PromRegistry      prometheus.Registerer
	LedgerCallTimeout time.Duration
}

// Voting is the vote casting engine. Every vote is written to the datastore;
// the ledger is attempted first and its acknowledgement recorded alongside.
// When the ledger is unreachable the vote is recorded local-only rather than
// rejected, so ledger outages never block voting.
type Voting struct {
	logger            *slog.Logger
	db                *database.Database
	ledger            ledger.Client
	eventBus          *event.EventBus
	auditor           *audit.Auditor
	ledgerCallTimeout time.Duration
	metrics           votingMetrics
}

type votingMetrics struct {
	votesCast       *prometheus.CounterVec
	ledgerFallbacks prometheus.Counter
	castDuration    prometheus.Histogram
}

// NewVoting creates a new voting engine
func NewVoting(cfg VotingConfig) *Voting {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	v := &Voting{
		logger:            logger.With("component", "voting"),
		db:                cfg.Database,
		ledger:            cfg.LedgerClient,
		eventBus:          cfg.EventBus,
		auditor:           cfg.Auditor,
		ledgerCallTimeout: cfg.LedgerCallTimeout,
	}
	if v.ledgerCallTimeout <= 0 {
		v.ledgerCallTimeout = defaultLedgerCallTimeout
	}
	v.initMetrics(cfg.PromRegistry)
	return v
}

func (v *Voting) initMetrics(promRegistry prometheus.Registerer) {
	if promRegistry == nil {
		promRegistry = prometheus.NewRegistry()
	}
	promautoFactory := promauto.With(promRegistry)
	v.metrics.votesCast = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tally_votes_cast_total",
			Help: "total votes cast by resulting status",
		},
		[]string{"status"},
	)
	v.metrics.ledgerFallbacks = promautoFactory.NewCounter(
		prometheus.CounterOpts{
			Name: "tally_ledger_fallbacks_total",
			Help: "total votes recorded local-only due to ledger unavailability",
		},
	)
	v.metrics.castDuration = promautoFactory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tally_vote_cast_duration_seconds",
			Help:    "vote cast duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
	)
}

// CastVote validates and records a vote. The ledger is attempted first when
// the voter has a linked wallet; contract-level rejections are authoritative
// and abort the cast, while transport failures degrade to a local-only
// record. The datastore insert under the unique (election, voter) constraint
// is the final double-vote gate regardless of the ledger outcome.
func (v *Voting) CastVote(
	ctx context.Context,
	params CastVoteParams,
) (*CastVoteResult, error) {
	startTime := time.Now()
	defer func() {
		v.metrics.castDuration.Observe(time.Since(startTime).Seconds())
	}()
	election, voter, err := v.validateCast(params)
	if err != nil {
		return nil, err
	}
	castTime := time.Now()
	// Hash against the contract election id when registered, else the
	// local election reference
	electionRef := strconv.FormatUint(election.LedgerID, 10)
	if election.LedgerID == 0 {
		electionRef = election.LedgerRef
	}
	vote := &models.Vote{
		ElectionID:  params.ElectionID,
		VoterID:     params.VoterID,
		CandidateID: params.CandidateID,
		VoteHash: ledger.VoteHash(
			electionRef,
			params.VoterID,
			params.CandidateID,
			castTime,
		),
		Status:    models.VoteStatusLocalOnly,
		Timestamp: castTime,
	}
	// Ledger attempt
	submission, status, err := v.submitToLedger(ctx, election, voter, params)
	if err != nil {
		return nil, err
	}
	vote.Status = status
	if submission != nil {
		vote.TransactionHash = &submission.TransactionHash
		vote.BlockNumber = &submission.BlockNumber
	}
	if err := v.persistVote(vote); err != nil {
		return nil, err
	}
	if submission != nil {
		// Archive the raw acknowledgement for later receipt verification.
		// Archival failure is logged, not surfaced; the vote itself is
		// already committed.
		if err := v.db.PutReceipt(&database.LedgerReceipt{
			TransactionHash: submission.TransactionHash,
			BlockNumber:     submission.BlockNumber,
			GasUsed:         submission.GasUsed,
			LedgerElection:  election.LedgerID,
			CandidateID:     params.CandidateID,
			VoterAddress:    *voter.WalletAddress,
			SubmittedAt:     castTime,
		}); err != nil {
			v.logger.Error(
				"failed to archive ledger receipt",
				"txHash", submission.TransactionHash,
				"error", err,
			)
		}
	}
	v.metrics.votesCast.WithLabelValues(vote.Status).Inc()
	v.logger.Info(
		"vote cast",
		"election", params.ElectionID,
		"voter", params.VoterID,
		"status", vote.Status,
		"voteHash", vote.VoteHash,
	)
	if v.eventBus != nil {
		var txHash string
		if vote.TransactionHash != nil {
			txHash = *vote.TransactionHash
		}
		v.eventBus.Publish(
			event.VoteCastEventType,
			event.NewEvent(
				event.VoteCastEventType,
				event.VoteCastEvent{
					ElectionID:      params.ElectionID,
					CandidateID:     params.CandidateID,
					VoteHash:        vote.VoteHash,
					TransactionHash: txHash,
					LedgerConfirmed: vote.LedgerConfirmed(),
					Timestamp:       castTime,
				},
			),
		)
	}
	return &CastVoteResult{
		VoteHash:        vote.VoteHash,
		TransactionHash: vote.TransactionHash,
		BlockNumber:     vote.BlockNumber,
		Status:          vote.Status,
		LedgerConfirmed: vote.LedgerConfirmed(),
		Timestamp:       castTime,
	}, nil
}

// validateCast checks election state, voter standing, candidate standing,
// and the fast-path duplicate check. The voting window is inclusive of the
// start instant and exclusive after the end instant.
func (v *Voting) validateCast(
	params CastVoteParams,
) (*models.Election, *models.Voter, error) {
	election, err := v.db.ElectionByID(params.ElectionID, nil)
	if err != nil {
		return nil, nil, err
	}
	if election == nil {
		return nil, nil, ErrElectionNotFound
	}
	now := time.Now()
	switch election.Status {
	case models.ElectionStatusOngoing, models.ElectionStatusUpcoming:
		// continue, the time-window checks below govern
	case models.ElectionStatusScheduled:
		return nil, nil, ErrElectionNotStarted
	case models.ElectionStatusCompleted:
		return nil, nil, ErrElectionEnded
	default:
		return nil, nil, ErrElectionInactive
	}
	if election.IsArchived {
		return nil, nil, ErrElectionInactive
	}
	if now.Before(election.StartTime) {
		return nil, nil, ErrElectionNotStarted
	}
	if now.After(election.EndTime) {
		return nil, nil, ErrElectionEnded
	}
	voter, err := v.db.VoterByID(params.VoterID, nil)
	if err != nil {
		return nil, nil, err
	}
	if voter == nil {
		return nil, nil, ErrVoterNotFound
	}
	if !voter.IsVerified {
		return nil, nil, ErrVoterNotVerified
	}
	if !voter.IsActive {
		return nil, nil, ErrVoterNotEligible
	}
	if voter.WalletAddress == nil {
		return nil, nil, ErrWalletNotLinked
	}
	allowed, err := v.db.VoterAllowed(election, params.VoterID, nil)
	if err != nil {
		return nil, nil, err
	}
	if !allowed {
		return nil, nil, ErrVoterNotEligible
	}
	candidate, err := v.db.CandidateByElectionAndID(
		params.ElectionID,
		params.CandidateID,
		nil,
	)
	if err != nil {
		return nil, nil, err
	}
	if candidate == nil {
		return nil, nil, ErrCandidateNotFound
	}
	if !candidate.IsVerified || !candidate.IsActive ||
		candidate.Status != models.CandidateStatusActive {
		return nil, nil, ErrCandidateInactive
	}
	// Fast-path duplicate check; the unique constraint on insert remains
	// the authoritative gate
	existing, err := v.db.VoteByElectionVoter(
		params.ElectionID,
		params.VoterID,
		nil,
	)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrAlreadyVoted
	}
	return election, voter, nil
}

// submitToLedger attempts the contract vote and reports the resulting vote
// status. A transport failure or a contract registration gap degrades to a
// local-only record; an unclassified contract revert is recorded as a failed
// attempt; typed contract rejections are authoritative and abort the cast.
func (v *Voting) submitToLedger(
	ctx context.Context,
	election *models.Election,
	voter *models.Voter,
	params CastVoteParams,
) (*ledger.VoteSubmission, string, error) {
	if election.LedgerID == 0 {
		// Election was never registered on the contract
		v.logger.Warn(
			"election has no ledger registration, recording local-only",
			"election", params.ElectionID,
		)
		v.metrics.ledgerFallbacks.Inc()
		return nil, models.VoteStatusLocalOnly, nil
	}
	ctx, cancel := context.WithTimeout(ctx, v.ledgerCallTimeout)
	defer cancel()
	eligible, err := v.ledger.IsEligible(
		ctx,
		election.LedgerID,
		*voter.WalletAddress,
	)
	if err != nil {
		if errors.Is(err, ledger.ErrUnavailable) {
			v.fallback(params, "eligibility check", err)
			return nil, models.VoteStatusLocalOnly, nil
		}
		return nil, "", fmt.Errorf("ledger eligibility: %w", err)
	}
	if !eligible {
		// The wallet was never registered on the contract. Local
		// eligibility already passed, so record the vote local-only rather
		// than turning a registration gap into a rejection.
		v.logger.Warn(
			"wallet not registered on ledger, recording local-only",
			"election", params.ElectionID,
			"voter", params.VoterID,
		)
		v.metrics.ledgerFallbacks.Inc()
		return nil, models.VoteStatusLocalOnly, nil
	}
	submission, err := v.ledger.SubmitVote(
		ctx,
		election.LedgerID,
		params.CandidateID,
		*voter.WalletAddress,
	)
	if err != nil {
		var rejected ledger.RejectedError
		switch {
		case errors.Is(err, ledger.ErrUnavailable):
			v.fallback(params, "vote submission", err)
			return nil, models.VoteStatusLocalOnly, nil
		case errors.Is(err, ledger.ErrAlreadyVoted):
			// The contract is authoritative for its own state
			return nil, "", ErrAlreadyVoted
		case errors.Is(err, ledger.ErrVoterIneligible):
			return nil, "", ErrVoterNotEligible
		case errors.Is(err, ledger.ErrInvalidCandidate):
			return nil, "", ErrCandidateNotFound
		case errors.As(err, &rejected):
			// Unclassified revert; keep the attempt on record for the
			// audit trail
			v.logger.Warn(
				"ledger rejected vote, recording failed attempt",
				"election", params.ElectionID,
				"voter", params.VoterID,
				"reason", rejected.Reason,
			)
			return nil, models.VoteStatusFailed, nil
		default:
			return nil, "", fmt.Errorf("ledger submission: %w", err)
		}
	}
	return submission, models.VoteStatusConfirmed, nil
}

// fallback logs a ledger transport failure before a local-only cast
func (v *Voting) fallback(
	params CastVoteParams,
	operation string,
	err error,
) {
	v.logger.Warn(
		"ledger unavailable, recording vote local-only",
		"operation", operation,
		"election", params.ElectionID,
		"voter", params.VoterID,
		"error", err,
	)
	v.metrics.ledgerFallbacks.Inc()
}

// persistVote commits the vote row and counter updates in one transaction.
// The unique constraint violation maps to ErrAlreadyVoted, closing the race
// between concurrent casts for the same voter.
func (v *Voting) persistVote(vote *models.Vote) error {
	err := v.db.Transaction(func(txn *gorm.DB) error {
		if err := v.db.CreateVote(vote, txn); err != nil {
			return err
		}
		if err := v.db.IncElectionTotalVotes(vote.ElectionID, txn); err != nil {
			return err
		}
		if err := v.db.IncCandidateVoteCount(
			vote.ElectionID,
			vote.CandidateID,
			txn,
		); err != nil {
			return err
		}
		return v.db.MarkVoterVoted(vote.VoterID, txn)
	})
	if err != nil {
		if errors.Is(err, database.ErrVoteExists) {
			return ErrAlreadyVoted
		}
		return err
	}
	return nil
}

// VerifyVote looks up a vote by its receipt hash and attaches the archived
// ledger acknowledgement when one exists
func (v *Voting) VerifyVote(
	ctx context.Context,
	voteHash string,
) (*VoteVerification, error) {
	vote, err := v.db.VoteByHash(voteHash, nil)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return nil, ErrVoteNotFound
	}
	ret := &VoteVerification{
		ElectionID:      vote.ElectionID,
		CandidateID:     vote.CandidateID,
		Status:          vote.Status,
		TransactionHash: vote.TransactionHash,
		Timestamp:       vote.Timestamp,
	}
	if vote.TransactionHash != nil {
		receipt, err := v.db.GetReceipt(*vote.TransactionHash)
		if err != nil {
			return nil, err
		}
		if receipt != nil {
			ret.LedgerReceipt = &LedgerReceiptInfo{
				TransactionHash: receipt.TransactionHash,
				BlockNumber:     receipt.BlockNumber,
				GasUsed:         receipt.GasUsed,
				SubmittedAt:     receipt.SubmittedAt,
			}
		}
	}
	// Ask the contract whether it holds a matching vote for this voter
	audited, err := v.auditor.AuditVoterChoice(
		ctx,
		vote.ElectionID,
		vote.VoterID,
	)
	if err != nil {
		return nil, err
	}
	ret.LedgerAvailable = audited.LedgerAvailable
	ret.LedgerConfirmed = audited.LedgerAvailable &&
		audited.LedgerChoice != nil && audited.Matches
	return ret, nil
}

// VoteStatus reports whether a voter has voted in an election. An absent
// vote is a normal answer, not an error.
func (v *Voting) VoteStatus(
	ctx context.Context,
	electionId uint,
	voterId uint,
) (*VoteStatusInfo, error) {
	vote, err := v.db.VoteByElectionVoter(electionId, voterId, nil)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return &VoteStatusInfo{}, nil
	}
	return &VoteStatusInfo{
		HasVoted:  true,
		Status:    vote.Status,
		VoteHash:  vote.VoteHash,
		Timestamp: vote.Timestamp,
	}, nil
}

// VoteReceipt returns the full receipt for a voter's vote in an election
func (v *Voting) VoteReceipt(
	ctx context.Context,
	electionId uint,
	voterId uint,
) (*VoteReceiptInfo, error) {
	vote, err := v.db.VoteByElectionVoter(electionId, voterId, nil)
	if err != nil {
		return nil, err
	}
	if vote == nil {
		return nil, ErrVoteNotFound
	}
	election, err := v.db.ElectionByID(electionId, nil)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, ErrElectionNotFound
	}
	return &VoteReceiptInfo{
		ElectionID:      electionId,
		ElectionTitle:   election.Title,
		CandidateID:     vote.CandidateID,
		VoteHash:        vote.VoteHash,
		Status:          vote.Status,
		TransactionHash: vote.TransactionHash,
		BlockNumber:     vote.BlockNumber,
		Timestamp:       vote.Timestamp,
	}, nil
}

// VoterHistory returns all votes cast by a voter, most recent first
func (v *Voting) VoterHistory(
	ctx context.Context,
	voterId uint,
) ([]VoteRecord, error) {
	votes, err := v.db.VotesByVoter(voterId, nil)
	if err != nil {
		return nil, err
	}
	ret := make([]VoteRecord, 0, len(votes))
	for _, vote := range votes {
		ret = append(ret, voteRecord(&vote))
	}
	return ret, nil
}

// ElectionVotes returns a page of votes for an election, most recent first
func (v *Voting) ElectionVotes(
	ctx context.Context,
	electionId uint,
	page int,
	perPage int,
) (*ElectionVotesPage, error) {
	election, err := v.db.ElectionByID(electionId, nil)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, ErrElectionNotFound
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}
	total, err := v.db.CountVotes(electionId, nil)
	if err != nil {
		return nil, err
	}
	votes, err := v.db.VotesByElection(
		electionId,
		(page-1)*perPage,
		perPage,
		nil,
	)
	if err != nil {
		return nil, err
	}
	ret := &ElectionVotesPage{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Votes:   make([]VoteRecord, 0, len(votes)),
	}
	for _, vote := range votes {
		ret.Votes = append(ret.Votes, voteRecord(&vote))
	}
	return ret, nil
}

func voteRecord(vote *models.Vote) VoteRecord {
	return VoteRecord{
		ElectionID:      vote.ElectionID,
		CandidateID:     vote.CandidateID,
		VoteHash:        vote.VoteHash,
		Status:          vote.Status,
		TransactionHash: vote.TransactionHash,
		Timestamp:       vote.Timestamp,
	}
}

// ElectionIntegrity audits an election's votes against the ledger
func (v *Voting) ElectionIntegrity(
	ctx context.Context,
	electionId uint,
) (*audit.Report, error) {
	report, err := v.auditor.AuditElection(ctx, electionId)
	if err != nil {
		if errors.Is(err, audit.ErrElectionNotFound) {
			return nil, ErrElectionNotFound
		}
		return nil, err
	}
	return report, nil
}

// VoteAnalytics returns aggregate voting statistics for an election
func (v *Voting) VoteAnalytics(
	ctx context.Context,
	electionId uint,
) (*AnalyticsInfo, error) {
	election, err := v.db.ElectionByID(electionId, nil)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, ErrElectionNotFound
	}
	ret := &AnalyticsInfo{
		ElectionID: electionId,
	}
	if ret.TotalVotes, err = v.db.CountVotes(electionId, nil); err != nil {
		return nil, err
	}
	ret.ConfirmedVotes, err = v.db.CountVotesByStatus(
		electionId,
		models.VoteStatusConfirmed,
		nil,
	)
	if err != nil {
		return nil, err
	}
	ret.LocalOnlyVotes, err = v.db.CountVotesByStatus(
		electionId,
		models.VoteStatusLocalOnly,
		nil,
	)
	if err != nil {
		return nil, err
	}
	ret.FailedVotes, err = v.db.CountVotesByStatus(
		electionId,
		models.VoteStatusFailed,
		nil,
	)
	if err != nil {
		return nil, err
	}
	tally, err := v.db.TallyByCandidate(electionId, nil)
	if err != nil {
		return nil, err
	}
	for _, entry := range tally {
		ret.ByCandidate = append(ret.ByCandidate, CandidateCount{
			CandidateID: entry.CandidateID,
			VoteCount:   entry.Count,
		})
	}
	hourly, err := v.db.VotesOverTime(electionId, nil)
	if err != nil {
		return nil, err
	}
	for _, entry := range hourly {
		ret.ByHour = append(ret.ByHour, HourlyCount{
			Hour:  entry.Hour,
			Count: entry.Count,
		})
	}
	return ret, nil
}

// ResetVote removes a voter's vote from an election and rolls back the
// cached counters. This is an administrative correction for divergence
// resolution; the ledger record, if any, is immutable and stays.
func (v *Voting) ResetVote(
	ctx context.Context,
	electionId uint,
	voterId uint,
) error {
	if err := v.db.DeleteVote(electionId, voterId); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrVoteNotFound
		}
		return err
	}
	v.logger.Info(
		"vote reset",
		"election", electionId,
		"voter", voterId,
	)
	return nil
}

// IsAdmin reports whether a voter holds the admin role
func (v *Voting) IsAdmin(
	ctx context.Context,
	voterId uint,
) (bool, error) {
	voter, err := v.db.VoterByID(voterId, nil)
	if err != nil {
		return false, err
	}
	if voter == nil {
		return false, ErrVoterNotFound
	}
	return voter.Admin(), nil
}
