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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteHashDeterministic(t *testing.T) {
	ts := time.UnixMilli(1758000000000)
	h1 := VoteHash("7", 42, 3, ts)
	h2 := VoteHash("7", 42, 3, ts)
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
}

func TestVoteHashDistinguishesInputs(t *testing.T) {
	ts := time.UnixMilli(1758000000000)
	base := VoteHash("7", 42, 3, ts)
	assert.NotEqual(t, base, VoteHash("8", 42, 3, ts))
	assert.NotEqual(t, base, VoteHash("7", 43, 3, ts))
	assert.NotEqual(t, base, VoteHash("7", 42, 4, ts))
	assert.NotEqual(t, base, VoteHash("7", 42, 3, ts.Add(time.Millisecond)))
}

func TestVoteHashSubMillisecondCollision(t *testing.T) {
	// Millisecond precision means casts within the same millisecond share
	// a preimage
	ts := time.UnixMilli(1758000000000)
	assert.Equal(
		t,
		VoteHash("7", 42, 3, ts),
		VoteHash("7", 42, 3, ts.Add(100*time.Microsecond)),
	)
}
