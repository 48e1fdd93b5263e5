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

package event

import "time"

// ElectionStatusEventType is the event type for election lifecycle transitions
const ElectionStatusEventType = EventType("election.status")

// ElectionStatusEvent is emitted when the lifecycle scheduler moves an
// election to a new status.
type ElectionStatusEvent struct {
	// ElectionID is the local election identifier
	ElectionID uint
	// Title is the election title
	Title string
	// OldStatus is the status before the transition
	OldStatus string
	// NewStatus is the status after the transition
	NewStatus string
	// Timestamp is when the transition was applied
	Timestamp time.Time
}
