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

import "errors"

// Vote casting rejections. These are mapped onto HTTP status codes by the
// api package; callers distinguish them with errors.Is.
var (
	ErrElectionNotFound   = errors.New("election not found")
	ErrElectionNotStarted = errors.New("election has not started")
	ErrElectionEnded      = errors.New("election has ended")
	ErrElectionInactive   = errors.New("election is not accepting votes")
	ErrCandidateNotFound  = errors.New("candidate not found")
	ErrCandidateInactive  = errors.New("candidate is not active")
	ErrVoterNotFound      = errors.New("voter not found")
	ErrVoterNotVerified   = errors.New("voter is not verified")
	ErrVoterNotEligible   = errors.New("voter is not eligible for this election")
	ErrWalletNotLinked    = errors.New("voter has no linked wallet address")
	ErrAlreadyVoted       = errors.New("voter has already voted in this election")
	ErrVoteNotFound       = errors.New("vote not found")
)
