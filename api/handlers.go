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
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/tally/voting"
)

// voterHeader carries the authenticated voter ID, set by the fronting auth
// layer
const voterHeader = "X-Voter-Id"

// writeJSON writes a JSON response with the given status code
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

// writeError writes a standard-format error response
func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

// writeServiceError maps a voting engine error onto an HTTP status code.
// Duplicate votes are conflicts, missing records are not-found, standing
// failures are forbidden, and window violations are bad requests.
func (a *Api) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voting.ErrAlreadyVoted):
		writeError(
			w,
			http.StatusConflict,
			"Conflict",
			err.Error(),
		)
	case errors.Is(err, voting.ErrElectionNotFound),
		errors.Is(err, voting.ErrCandidateNotFound),
		errors.Is(err, voting.ErrVoterNotFound),
		errors.Is(err, voting.ErrVoteNotFound):
		writeError(
			w,
			http.StatusNotFound,
			"Not Found",
			err.Error(),
		)
	case errors.Is(err, voting.ErrVoterNotVerified),
		errors.Is(err, voting.ErrVoterNotEligible),
		errors.Is(err, voting.ErrCandidateInactive):
		writeError(
			w,
			http.StatusForbidden,
			"Forbidden",
			err.Error(),
		)
	case errors.Is(err, voting.ErrElectionNotStarted),
		errors.Is(err, voting.ErrElectionEnded),
		errors.Is(err, voting.ErrElectionInactive),
		errors.Is(err, voting.ErrWalletNotLinked):
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			err.Error(),
		)
	default:
		a.logger.Error("internal error", "error", err)
		writeError(
			w,
			http.StatusInternalServerError,
			"Internal Server Error",
			"an internal error occurred",
		)
	}
}

// requestVoter extracts the authenticated voter ID from the request
func requestVoter(r *http.Request) (uint, bool) {
	raw := r.Header.Get(voterHeader)
	if raw == "" {
		return 0, false
	}
	voterId, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || voterId == 0 {
		return 0, false
	}
	return uint(voterId), true
}

// pathElection extracts the election ID path segment
func pathElection(r *http.Request) (uint, bool) {
	raw := r.PathValue("electionId")
	electionId, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || electionId == 0 {
		return 0, false
	}
	return uint(electionId), true
}

// requireAdmin checks that the requesting voter holds the admin role. It
// writes the error response itself and reports whether the caller may
// proceed.
func (a *Api) requireAdmin(
	w http.ResponseWriter,
	r *http.Request,
) (uint, bool) {
	voterId, ok := requestVoter(r)
	if !ok {
		writeError(
			w,
			http.StatusUnauthorized,
			"Unauthorized",
			"missing voter identity",
		)
		return 0, false
	}
	isAdmin, err := a.service.IsAdmin(r.Context(), voterId)
	if err != nil {
		a.writeServiceError(w, err)
		return 0, false
	}
	if !isAdmin {
		writeError(
			w,
			http.StatusForbidden,
			"Forbidden",
			"admin role required",
		)
		return 0, false
	}
	return voterId, true
}

// handleHealth handles GET /health
func (a *Api) handleHealth(
	w http.ResponseWriter,
	_ *http.Request,
) {
	writeJSON(w, http.StatusOK, HealthResponse{
		IsHealthy: true,
	})
}

// handleCastVote handles POST /api/votes and records a vote for the
// authenticated voter
func (a *Api) handleCastVote(
	w http.ResponseWriter,
	r *http.Request,
) {
	voterId, ok := requestVoter(r)
	if !ok {
		writeError(
			w,
			http.StatusUnauthorized,
			"Unauthorized",
			"missing voter identity",
		)
		return
	}
	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid request body",
		)
		return
	}
	if req.ElectionID == 0 || req.CandidateID == 0 {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"electionId and candidateId are required",
		)
		return
	}
	result, err := a.service.CastVote(r.Context(), voting.CastVoteParams{
		ElectionID:  req.ElectionID,
		VoterID:     voterId,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, CastVoteResponse{
		VoteHash:        result.VoteHash,
		TransactionHash: result.TransactionHash,
		BlockNumber:     result.BlockNumber,
		Status:          result.Status,
		LedgerConfirmed: result.LedgerConfirmed,
		Timestamp:       result.Timestamp.UnixMilli(),
	})
}

// handleVerifyVote handles POST /api/votes/verify and looks up a vote by
// its receipt hash
func (a *Api) handleVerifyVote(
	w http.ResponseWriter,
	r *http.Request,
) {
	var req VerifyVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		req.VoteHash == "" {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"voteHash is required",
		)
		return
	}
	result, err := a.service.VerifyVote(r.Context(), req.VoteHash)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	resp := VerifyVoteResponse{
		Verified:        true,
		ElectionID:      result.ElectionID,
		CandidateID:     result.CandidateID,
		Status:          result.Status,
		TransactionHash: result.TransactionHash,
		Timestamp:       result.Timestamp.UnixMilli(),
		LedgerAvailable: result.LedgerAvailable,
		LedgerConfirmed: result.LedgerConfirmed,
	}
	if result.LedgerReceipt != nil {
		resp.LedgerReceipt = &LedgerReceiptResponse{
			TransactionHash: result.LedgerReceipt.TransactionHash,
			BlockNumber:     result.LedgerReceipt.BlockNumber,
			GasUsed:         result.LedgerReceipt.GasUsed,
			SubmittedAt:     result.LedgerReceipt.SubmittedAt.UnixMilli(),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCheckVote handles GET /api/votes/check/{electionId} and reports
// whether the authenticated voter has voted
func (a *Api) handleCheckVote(
	w http.ResponseWriter,
	r *http.Request,
) {
	voterId, ok := requestVoter(r)
	if !ok {
		writeError(
			w,
			http.StatusUnauthorized,
			"Unauthorized",
			"missing voter identity",
		)
		return
	}
	electionId, ok := pathElection(r)
	if !ok {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid election id",
		)
		return
	}
	result, err := a.service.VoteStatus(r.Context(), electionId, voterId)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	resp := VoteStatusResponse{
		HasVoted: result.HasVoted,
		Status:   result.Status,
		VoteHash: result.VoteHash,
	}
	if result.HasVoted {
		resp.Timestamp = result.Timestamp.UnixMilli()
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleVoteReceipt handles GET /api/votes/receipt/{electionId} and returns
// the authenticated voter's receipt
func (a *Api) handleVoteReceipt(
	w http.ResponseWriter,
	r *http.Request,
) {
	voterId, ok := requestVoter(r)
	if !ok {
		writeError(
			w,
			http.StatusUnauthorized,
			"Unauthorized",
			"missing voter identity",
		)
		return
	}
	electionId, ok := pathElection(r)
	if !ok {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid election id",
		)
		return
	}
	result, err := a.service.VoteReceipt(r.Context(), electionId, voterId)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, VoteReceiptResponse{
		ElectionID:      result.ElectionID,
		ElectionTitle:   result.ElectionTitle,
		CandidateID:     result.CandidateID,
		VoteHash:        result.VoteHash,
		Status:          result.Status,
		TransactionHash: result.TransactionHash,
		BlockNumber:     result.BlockNumber,
		Timestamp:       result.Timestamp.UnixMilli(),
	})
}

// handleVoterHistory handles GET /api/votes/history and returns the
// authenticated voter's past votes
func (a *Api) handleVoterHistory(
	w http.ResponseWriter,
	r *http.Request,
) {
	voterId, ok := requestVoter(r)
	if !ok {
		writeError(
			w,
			http.StatusUnauthorized,
			"Unauthorized",
			"missing voter identity",
		)
		return
	}
	records, err := a.service.VoterHistory(r.Context(), voterId)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, voteRecordResponses(records))
}

// handleElectionVotes handles GET /api/votes/election/{electionId} and
// returns a page of votes. Admin only.
func (a *Api) handleElectionVotes(
	w http.ResponseWriter,
	r *http.Request,
) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	electionId, ok := pathElection(r)
	if !ok {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid election id",
		)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	result, err := a.service.ElectionVotes(
		r.Context(),
		electionId,
		page,
		perPage,
	)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ElectionVotesResponse{
		Total:   result.Total,
		Page:    result.Page,
		PerPage: result.PerPage,
		Votes:   voteRecordResponses(result.Votes),
	})
}

// handleElectionIntegrity handles GET /api/votes/integrity/{electionId} and
// audits an election against the ledger. Admin only.
func (a *Api) handleElectionIntegrity(
	w http.ResponseWriter,
	r *http.Request,
) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	electionId, ok := pathElection(r)
	if !ok {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid election id",
		)
		return
	}
	report, err := a.service.ElectionIntegrity(r.Context(), electionId)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleVoteAnalytics handles GET /api/votes/analytics/{electionId} and
// returns aggregate statistics. Admin only.
func (a *Api) handleVoteAnalytics(
	w http.ResponseWriter,
	r *http.Request,
) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	electionId, ok := pathElection(r)
	if !ok {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid election id",
		)
		return
	}
	result, err := a.service.VoteAnalytics(r.Context(), electionId)
	if err != nil {
		a.writeServiceError(w, err)
		return
	}
	resp := AnalyticsResponse{
		ElectionID:     result.ElectionID,
		TotalVotes:     result.TotalVotes,
		ConfirmedVotes: result.ConfirmedVotes,
		LocalOnlyVotes: result.LocalOnlyVotes,
		FailedVotes:    result.FailedVotes,
		ByCandidate:    []CandidateCountResponse{},
		ByHour:         []HourlyCountResponse{},
	}
	for _, entry := range result.ByCandidate {
		resp.ByCandidate = append(resp.ByCandidate, CandidateCountResponse{
			CandidateID: entry.CandidateID,
			VoteCount:   entry.VoteCount,
		})
	}
	for _, entry := range result.ByHour {
		resp.ByHour = append(resp.ByHour, HourlyCountResponse{
			Hour:  entry.Hour,
			Count: entry.Count,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleResetVote handles DELETE /api/votes/{electionId}/{voterId} and
// removes a vote as an administrative correction. Admin only.
func (a *Api) handleResetVote(
	w http.ResponseWriter,
	r *http.Request,
) {
	if _, ok := a.requireAdmin(w, r); !ok {
		return
	}
	electionId, ok := pathElection(r)
	if !ok {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid election id",
		)
		return
	}
	voterId, err := strconv.ParseUint(r.PathValue("voterId"), 10, 32)
	if err != nil || voterId == 0 {
		writeError(
			w,
			http.StatusBadRequest,
			"Bad Request",
			"invalid voter id",
		)
		return
	}
	if err := a.service.ResetVote(
		r.Context(),
		electionId,
		uint(voterId),
	); err != nil {
		a.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func voteRecordResponses(records []voting.VoteRecord) []VoteRecordResponse {
	ret := make([]VoteRecordResponse, 0, len(records))
	for _, record := range records {
		ret = append(ret, VoteRecordResponse{
			ElectionID:      record.ElectionID,
			CandidateID:     record.CandidateID,
			VoteHash:        record.VoteHash,
			Status:          record.Status,
			TransactionHash: record.TransactionHash,
			Timestamp:       record.Timestamp.UnixMilli(),
		})
	}
	return ret
}
