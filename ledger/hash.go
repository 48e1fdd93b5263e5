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
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/sha3"
)

// VoteHash derives the receipt hash for a cast vote. The hash is the
// Keccak-256 digest of "electionRef-voterId-candidateId-timestampMillis",
// matching the preimage recorded at cast time so a receipt can be
// recomputed for verification. electionRef is the contract election
// identifier when the election is ledger-registered, or the local
// reference for elections that never reached the ledger.
func VoteHash(
	electionRef string,
	voterId uint,
	candidateId uint64,
	timestamp time.Time,
) string {
	preimage := fmt.Sprintf(
		"%s-%d-%d-%d",
		electionRef,
		voterId,
		candidateId,
		timestamp.UnixMilli(),
	)
	digest := sha3.NewLegacyKeccak256()
	digest.Write([]byte(preimage))
	return hex.EncodeToString(digest.Sum(nil))
}
