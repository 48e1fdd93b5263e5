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
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/blinklabs-io/tally/audit"
	"github.com/blinklabs-io/tally/voting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockService implements VotingService for testing
type mockService struct {
	castResult   *voting.CastVoteResult
	castErr      error
	verification *voting.VoteVerification
	verifyErr    error
	status       *voting.VoteStatusInfo
	statusErr    error
	receipt      *voting.VoteReceiptInfo
	receiptErr   error
	history      []voting.VoteRecord
	historyErr   error
	votesPage    *voting.ElectionVotesPage
	votesErr     error
	report       *audit.Report
	reportErr    error
	analytics    *voting.AnalyticsInfo
	analyticsErr error
	resetErr     error
	admins       map[uint]bool
}

func (m *mockService) CastVote(
	ctx context.Context,
	params voting.CastVoteParams,
) (*voting.CastVoteResult, error) {
	return m.castResult, m.castErr
}

func (m *mockService) VerifyVote(
	ctx context.Context,
	voteHash string,
) (*voting.VoteVerification, error) {
	return m.verification, m.verifyErr
}

func (m *mockService) VoteStatus(
	ctx context.Context,
	electionId uint,
	voterId uint,
) (*voting.VoteStatusInfo, error) {
	return m.status, m.statusErr
}

func (m *mockService) VoteReceipt(
	ctx context.Context,
	electionId uint,
	voterId uint,
) (*voting.VoteReceiptInfo, error) {
	return m.receipt, m.receiptErr
}

func (m *mockService) VoterHistory(
	ctx context.Context,
	voterId uint,
) ([]voting.VoteRecord, error) {
	return m.history, m.historyErr
}

func (m *mockService) ElectionVotes(
	ctx context.Context,
	electionId uint,
	page int,
	perPage int,
) (*voting.ElectionVotesPage, error) {
	return m.votesPage, m.votesErr
}

func (m *mockService) ElectionIntegrity(
	ctx context.Context,
	electionId uint,
) (*audit.Report, error) {
	return m.report, m.reportErr
}

func (m *mockService) VoteAnalytics(
	ctx context.Context,
	electionId uint,
) (*voting.AnalyticsInfo, error) {
	return m.analytics, m.analyticsErr
}

func (m *mockService) ResetVote(
	ctx context.Context,
	electionId uint,
	voterId uint,
) error {
	return m.resetErr
}

func (m *mockService) IsAdmin(
	ctx context.Context,
	voterId uint,
) (bool, error) {
	return m.admins[voterId], nil
}

func newTestApi(service VotingService) *Api {
	return New(
		ApiConfig{
			ListenAddress: ":0",
		},
		service,
		slog.Default(),
	)
}

func TestStartStop(t *testing.T) {
	a := newTestApi(&mockService{})

	err := a.Start(t.Context())
	require.NoError(t, err)

	a.mu.Lock()
	assert.NotNil(t, a.httpServer)
	a.mu.Unlock()

	stopCtx, stopCancel := context.WithTimeout(
		context.Background(),
		5*time.Second,
	)
	defer stopCancel()
	err = a.Stop(stopCtx)
	require.NoError(t, err)

	a.mu.Lock()
	assert.Nil(t, a.httpServer)
	a.mu.Unlock()
}

func TestStartAlreadyStarted(t *testing.T) {
	a := newTestApi(&mockService{})

	ctx := t.Context()
	err := a.Start(ctx)
	require.NoError(t, err)
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(
			context.Background(),
			5*time.Second,
		)
		defer stopCancel()
		_ = a.Stop(stopCtx)
	}()

	err = a.Start(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestHandleHealth(t *testing.T) {
	a := newTestApi(&mockService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	a.handleHealth(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.True(t, resp.IsHealthy)
}

func TestHandleCastVote(t *testing.T) {
	txHash := "0xdeadbeef"
	blockNumber := uint64(42)
	mock := &mockService{
		castResult: &voting.CastVoteResult{
			VoteHash:        "abc123",
			TransactionHash: &txHash,
			BlockNumber:     &blockNumber,
			Status:          "confirmed",
			LedgerConfirmed: true,
			Timestamp:       time.Now(),
		},
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/votes",
		strings.NewReader(`{"electionId":1,"candidateId":2}`),
	)
	req.Header.Set(voterHeader, "7")
	w := httptest.NewRecorder()
	a.handleCastVote(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp CastVoteResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, "abc123", resp.VoteHash)
	assert.True(t, resp.LedgerConfirmed)
	require.NotNil(t, resp.TransactionHash)
	assert.Equal(t, txHash, *resp.TransactionHash)
}

func TestHandleCastVoteMissingIdentity(t *testing.T) {
	a := newTestApi(&mockService{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/votes",
		strings.NewReader(`{"electionId":1,"candidateId":2}`),
	)
	w := httptest.NewRecorder()
	a.handleCastVote(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleCastVoteInvalidBody(t *testing.T) {
	a := newTestApi(&mockService{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/votes",
		strings.NewReader(`{"electionId":0}`),
	)
	req.Header.Set(voterHeader, "7")
	w := httptest.NewRecorder()
	a.handleCastVote(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCastVoteDuplicate(t *testing.T) {
	mock := &mockService{
		castErr: voting.ErrAlreadyVoted,
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/votes",
		strings.NewReader(`{"electionId":1,"candidateId":2}`),
	)
	req.Header.Set(voterHeader, "7")
	w := httptest.NewRecorder()
	a.handleCastVote(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp ErrorResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestHandleCastVoteErrorMapping(t *testing.T) {
	testDefs := []struct {
		serviceErr error
		wantStatus int
	}{
		{voting.ErrElectionNotFound, http.StatusNotFound},
		{voting.ErrCandidateNotFound, http.StatusNotFound},
		{voting.ErrVoterNotFound, http.StatusNotFound},
		{voting.ErrElectionNotStarted, http.StatusBadRequest},
		{voting.ErrElectionEnded, http.StatusBadRequest},
		{voting.ErrElectionInactive, http.StatusBadRequest},
		{voting.ErrWalletNotLinked, http.StatusBadRequest},
		{voting.ErrVoterNotVerified, http.StatusForbidden},
		{voting.ErrVoterNotEligible, http.StatusForbidden},
		{voting.ErrCandidateInactive, http.StatusForbidden},
	}
	for _, testDef := range testDefs {
		a := newTestApi(&mockService{castErr: testDef.serviceErr})
		req := httptest.NewRequest(
			http.MethodPost,
			"/api/votes",
			strings.NewReader(`{"electionId":1,"candidateId":2}`),
		)
		req.Header.Set(voterHeader, "7")
		w := httptest.NewRecorder()
		a.handleCastVote(w, req)
		assert.Equal(
			t,
			testDef.wantStatus,
			w.Code,
			"unexpected status for %v",
			testDef.serviceErr,
		)
	}
}

func TestHandleVerifyVote(t *testing.T) {
	mock := &mockService{
		verification: &voting.VoteVerification{
			ElectionID:  1,
			CandidateID: 2,
			Status:      "local",
			Timestamp:   time.Now(),
		},
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/votes/verify",
		strings.NewReader(`{"voteHash":"abc123"}`),
	)
	w := httptest.NewRecorder()
	a.handleVerifyVote(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp VerifyVoteResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.True(t, resp.Verified)
	assert.Equal(t, "local", resp.Status)
	assert.Nil(t, resp.LedgerReceipt)
}

func TestHandleVerifyVoteNotFound(t *testing.T) {
	mock := &mockService{
		verifyErr: voting.ErrVoteNotFound,
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/votes/verify",
		strings.NewReader(`{"voteHash":"missing"}`),
	)
	w := httptest.NewRecorder()
	a.handleVerifyVote(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleCheckVote(t *testing.T) {
	mock := &mockService{
		status: &voting.VoteStatusInfo{
			HasVoted:  true,
			Status:    "confirmed",
			VoteHash:  "abc123",
			Timestamp: time.Now(),
		},
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/votes/check/1",
		nil,
	)
	req.SetPathValue("electionId", "1")
	req.Header.Set(voterHeader, "7")
	w := httptest.NewRecorder()
	a.handleCheckVote(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp VoteStatusResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.True(t, resp.HasVoted)
	assert.Equal(t, "abc123", resp.VoteHash)
}

func TestHandleVoterHistory(t *testing.T) {
	mock := &mockService{
		history: []voting.VoteRecord{
			{
				ElectionID:  1,
				CandidateID: 2,
				VoteHash:    "abc123",
				Status:      "confirmed",
				Timestamp:   time.Now(),
			},
		},
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/votes/history",
		nil,
	)
	req.Header.Set(voterHeader, "7")
	w := httptest.NewRecorder()
	a.handleVoterHistory(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []VoteRecordResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	require.Len(t, resp, 1)
	assert.Equal(t, uint(1), resp[0].ElectionID)
}

func TestHandleElectionVotesRequiresAdmin(t *testing.T) {
	mock := &mockService{
		admins: map[uint]bool{},
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/votes/election/1",
		nil,
	)
	req.SetPathValue("electionId", "1")
	req.Header.Set(voterHeader, "7")
	w := httptest.NewRecorder()
	a.handleElectionVotes(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandleElectionVotes(t *testing.T) {
	mock := &mockService{
		admins: map[uint]bool{7: true},
		votesPage: &voting.ElectionVotesPage{
			Total:   1,
			Page:    1,
			PerPage: 20,
			Votes: []voting.VoteRecord{
				{
					ElectionID:  1,
					CandidateID: 2,
					VoteHash:    "abc123",
					Status:      "confirmed",
					Timestamp:   time.Now(),
				},
			},
		},
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/votes/election/1",
		nil,
	)
	req.SetPathValue("electionId", "1")
	req.Header.Set(voterHeader, "7")
	w := httptest.NewRecorder()
	a.handleElectionVotes(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ElectionVotesResponse
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Total)
	require.Len(t, resp.Votes, 1)
}

func TestHandleElectionIntegrity(t *testing.T) {
	mock := &mockService{
		admins: map[uint]bool{7: true},
		report: &audit.Report{
			ElectionID:      1,
			DatabaseVotes:   10,
			LedgerVotes:     9,
			LocalOnlyVotes:  1,
			LedgerAvailable: true,
			IsConsistent:    true,
		},
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodGet,
		"/api/votes/integrity/1",
		nil,
	)
	req.SetPathValue("electionId", "1")
	req.Header.Set(voterHeader, "7")
	w := httptest.NewRecorder()
	a.handleElectionIntegrity(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp audit.Report
	err := json.NewDecoder(w.Body).Decode(&resp)
	require.NoError(t, err)
	assert.True(t, resp.IsConsistent)
	assert.Equal(t, int64(10), resp.DatabaseVotes)
}

func TestHandleResetVote(t *testing.T) {
	mock := &mockService{
		admins: map[uint]bool{7: true},
	}
	a := newTestApi(mock)

	req := httptest.NewRequest(
		http.MethodDelete,
		"/api/votes/1/3",
		nil,
	)
	req.SetPathValue("electionId", "1")
	req.SetPathValue("voterId", "3")
	req.Header.Set(voterHeader, "7")
	w := httptest.NewRecorder()
	a.handleResetVote(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
