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

import (
	"errors"
	"fmt"
	"strings"
)

// Typed ledger errors. Call sites must distinguish these with errors.Is/As;
// revert-reason classification happens once, inside this package, so no
// error-message matching leaks past the client boundary.
var (
	// ErrUnavailable indicates a transport-level failure (node unreachable,
	// timeout, or repeated fee-margin exhaustion). Callers are expected to
	// fall back to datastore-only recording.
	ErrUnavailable = errors.New("ledger unavailable")

	// ErrAlreadyVoted is the ledger's authoritative rejection of a second
	// vote for the same voter and election
	ErrAlreadyVoted = errors.New("ledger: voter has already voted")

	// ErrVoterIneligible indicates the voter is not registered on the ledger
	// for the election
	ErrVoterIneligible = errors.New("ledger: voter not registered for election")

	// ErrInvalidCandidate indicates the candidate is unknown to the contract
	ErrInvalidCandidate = errors.New("ledger: unknown candidate")

	// ErrDuplicateRegistration indicates the voter is already registered on
	// the ledger for the election
	ErrDuplicateRegistration = errors.New("ledger: voter already registered")
)

// RejectedError wraps a contract revert that does not map to a more specific
// typed error
type RejectedError struct {
	Reason string
}

func (e RejectedError) Error() string {
	return fmt.Sprintf("ledger rejected call: %s", e.Reason)
}

// classifyRevert maps a contract revert reason onto the closed error set.
// The Voting contract communicates failure causes only through revert
// strings, so this is the single place they are interpreted.
func classifyRevert(reason string) error {
	lower := strings.ToLower(reason)
	switch {
	case strings.Contains(lower, "already voted"):
		return ErrAlreadyVoted
	case strings.Contains(lower, "already registered"):
		return ErrDuplicateRegistration
	case strings.Contains(lower, "not registered"),
		strings.Contains(lower, "not eligible"):
		return ErrVoterIneligible
	case strings.Contains(lower, "invalid candidate"),
		strings.Contains(lower, "candidate does not exist"):
		return ErrInvalidCandidate
	default:
		return RejectedError{Reason: reason}
	}
}

// isRevert reports whether an RPC error represents a contract revert rather
// than a transport failure
func isRevert(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	msg := err.Error()
	if strings.Contains(msg, "execution reverted") ||
		strings.Contains(msg, "revert") {
		reason := msg
		if _, after, ok := strings.Cut(msg, "execution reverted:"); ok {
			reason = strings.TrimSpace(after)
		}
		return reason, true
	}
	return "", false
}

// classifyCallError converts a raw RPC error into a typed ledger error.
// Reverts become authoritative rejections; everything else is a transport
// failure wrapped as ErrUnavailable.
func classifyCallError(err error) error {
	if err == nil {
		return nil
	}
	if reason, ok := isRevert(err); ok {
		return classifyRevert(reason)
	}
	return fmt.Errorf("%w: %s", ErrUnavailable, err.Error())
}
