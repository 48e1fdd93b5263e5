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

package audit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/blinklabs-io/tally/database"
	"github.com/blinklabs-io/tally/database/models"
	"github.com/blinklabs-io/tally/event"
	"github.com/blinklabs-io/tally/ledger"
)

// ErrElectionNotFound is returned when auditing an unknown election
var ErrElectionNotFound = errors.New("election not found")

// CandidateDivergence is a per-candidate tally mismatch between the
// datastore and the ledger
type CandidateDivergence struct {
	CandidateID   uint64 `json:"candidateId"`
	DatabaseVotes int64  `json:"databaseVotes"`
	LedgerVotes   int64  `json:"ledgerVotes"`
}

// Report is the outcome of an election integrity audit. Local-only votes are
// expected to be absent from the ledger and are excluded from the divergence
// calculation.
type Report struct {
	ElectionID      uint                  `json:"electionId"`
	DatabaseVotes   int64                 `json:"databaseVotes"`
	LedgerVotes     int64                 `json:"ledgerVotes"`
	LocalOnlyVotes  int64                 `json:"localOnlyVotes"`
	FailedVotes     int64                 `json:"failedVotes"`
	LedgerAvailable bool                  `json:"ledgerAvailable"`
	IsConsistent    bool                  `json:"isConsistent"`
	Divergences     []CandidateDivergence `json:"divergences,omitempty"`
	AuditedAt       time.Time             `json:"auditedAt"`
}

// VoterAuditResult compares a single voter's recorded choice against the
// ledger
type VoterAuditResult struct {
	ElectionID      uint      `json:"electionId"`
	VoterID         uint      `json:"voterId"`
	DatabaseChoice  *uint64   `json:"databaseChoice"`
	LedgerChoice    *uint64   `json:"ledgerChoice"`
	LedgerAvailable bool      `json:"ledgerAvailable"`
	Matches         bool      `json:"matches"`
	AuditedAt       time.Time `json:"auditedAt"`
}

// AuditorConfig holds the dependencies for an Auditor
type AuditorConfig struct {
	Logger       *slog.Logger
	Database     *database.Database
	LedgerClient ledger.Client
	EventBus     *event.EventBus
}

// Auditor compares the datastore's vote records against the ledger's and
// reports divergence. Audits are read-only; reconciliation is a human
// decision, never automatic.
type Auditor struct {
	logger   *slog.Logger
	db       *database.Database
	ledger   ledger.Client
	eventBus *event.EventBus
}

// NewAuditor creates a new Auditor
func NewAuditor(cfg AuditorConfig) *Auditor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Auditor{
		logger:   logger.With("component", "audit"),
		db:       cfg.Database,
		ledger:   cfg.LedgerClient,
		eventBus: cfg.EventBus,
	}
}

// AuditElection compares total and per-candidate tallies between the
// datastore and the ledger. Ledger-confirmed votes must match exactly;
// local-only votes are reported separately as expected divergence. A
// divergence event is published when the ledger-confirmed counts disagree.
func (a *Auditor) AuditElection(
	ctx context.Context,
	electionId uint,
) (*Report, error) {
	election, err := a.db.ElectionByID(electionId, nil)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, ErrElectionNotFound
	}
	report := &Report{
		ElectionID: electionId,
		AuditedAt:  time.Now(),
	}
	if report.DatabaseVotes, err = a.db.CountVotes(electionId, nil); err != nil {
		return nil, err
	}
	report.LocalOnlyVotes, err = a.db.CountVotesByStatus(
		electionId,
		models.VoteStatusLocalOnly,
		nil,
	)
	if err != nil {
		return nil, err
	}
	report.FailedVotes, err = a.db.CountVotesByStatus(
		electionId,
		models.VoteStatusFailed,
		nil,
	)
	if err != nil {
		return nil, err
	}
	ledgerTotal, err := a.ledger.GetTotalVotes(ctx, election.LedgerID)
	if err != nil {
		if errors.Is(err, ledger.ErrUnavailable) {
			// An unreachable ledger is not an integrity failure; report
			// the local counts and flag the gap
			a.logger.Warn(
				"ledger unavailable during audit",
				"election", electionId,
				"error", err,
			)
			return report, nil
		}
		return nil, fmt.Errorf("audit: ledger total: %w", err)
	}
	report.LedgerAvailable = true
	report.LedgerVotes = ledgerTotal
	// Ledger-confirmed local votes are the only ones the ledger should know
	// about
	confirmedLocal := report.DatabaseVotes - report.LocalOnlyVotes - report.FailedVotes
	report.IsConsistent = confirmedLocal == ledgerTotal
	// Per-candidate comparison
	localTally, err := a.db.TallyByCandidate(electionId, nil)
	if err != nil {
		return nil, err
	}
	ledgerTally, err := a.ledger.GetResults(ctx, election.LedgerID)
	if err != nil && !errors.Is(err, ledger.ErrUnavailable) {
		return nil, fmt.Errorf("audit: ledger results: %w", err)
	}
	if err == nil {
		report.Divergences = diffTallies(localTally, ledgerTally)
		if len(report.Divergences) > 0 {
			report.IsConsistent = false
		}
	}
	if !report.IsConsistent {
		a.logger.Warn(
			"vote divergence detected",
			"election", electionId,
			"databaseVotes", report.DatabaseVotes,
			"ledgerVotes", report.LedgerVotes,
			"localOnlyVotes", report.LocalOnlyVotes,
		)
		if a.eventBus != nil {
			a.eventBus.Publish(
				event.DivergenceEventType,
				event.NewEvent(
					event.DivergenceEventType,
					event.DivergenceEvent{
						ElectionID:     electionId,
						DatabaseVotes:  report.DatabaseVotes,
						LedgerVotes:    report.LedgerVotes,
						LocalOnlyVotes: report.LocalOnlyVotes,
						Timestamp:      report.AuditedAt,
					},
				),
			)
		}
	}
	return report, nil
}

// diffTallies returns the candidates whose ledger-confirmed counts differ
// between the two tallies. Local-only votes are excluded from the local side
// before calling this.
func diffTallies(
	localTally []database.CandidateTally,
	ledgerTally []ledger.CandidateResult,
) []CandidateDivergence {
	local := make(map[uint64]int64, len(localTally))
	for _, entry := range localTally {
		local[entry.CandidateID] = entry.Count
	}
	var ret []CandidateDivergence
	for _, entry := range ledgerTally {
		if local[entry.CandidateID] < entry.VoteCount {
			// The ledger can never hold more votes for a candidate than the
			// datastore, since every ledger write is recorded locally
			ret = append(ret, CandidateDivergence{
				CandidateID:   entry.CandidateID,
				DatabaseVotes: local[entry.CandidateID],
				LedgerVotes:   entry.VoteCount,
			})
		}
	}
	return ret
}

// AuditVoterChoice verifies that a single voter's recorded candidate matches
// the choice the ledger holds for their wallet
func (a *Auditor) AuditVoterChoice(
	ctx context.Context,
	electionId uint,
	voterId uint,
) (*VoterAuditResult, error) {
	election, err := a.db.ElectionByID(electionId, nil)
	if err != nil {
		return nil, err
	}
	if election == nil {
		return nil, ErrElectionNotFound
	}
	vote, err := a.db.VoteByElectionVoter(electionId, voterId, nil)
	if err != nil {
		return nil, err
	}
	result := &VoterAuditResult{
		ElectionID: electionId,
		VoterID:    voterId,
		AuditedAt:  time.Now(),
	}
	if vote != nil {
		choice := vote.CandidateID
		result.DatabaseChoice = &choice
	}
	voter, err := a.db.VoterByID(voterId, nil)
	if err != nil {
		return nil, err
	}
	if voter == nil || voter.WalletAddress == nil {
		// No wallet to compare against; a record that never reached the
		// ledger is consistent by definition
		result.Matches = vote == nil ||
			vote.Status != models.VoteStatusConfirmed
		return result, nil
	}
	ledgerChoice, err := a.ledger.GetChoice(
		ctx,
		election.LedgerID,
		*voter.WalletAddress,
	)
	if err != nil {
		if errors.Is(err, ledger.ErrUnavailable) {
			return result, nil
		}
		return nil, fmt.Errorf("audit: ledger choice: %w", err)
	}
	result.LedgerAvailable = true
	result.LedgerChoice = ledgerChoice
	switch {
	case vote == nil:
		result.Matches = ledgerChoice == nil
	case vote.Status == models.VoteStatusLocalOnly,
		vote.Status == models.VoteStatusFailed:
		// Neither status ever produced a ledger entry
		result.Matches = ledgerChoice == nil
	default:
		result.Matches = ledgerChoice != nil &&
			*ledgerChoice == vote.CandidateID
	}
	return result, nil
}
