/*
Copyright 2025 NovaTrek Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

import (
	"encoding/json"
	"time"
)

const (
	WaitlistStatusPending  = "pending"
	WaitlistStatusApproved = "approved"
	WaitlistStatusInvited  = "invited"
	WaitlistStatusJoined   = "joined"
)

// waitlistTransitions is the closed transition table for the admission queue.
// Any transition not listed here is rejected rather than trusted from the caller.
var waitlistTransitions = map[string]string{
	WaitlistStatusPending:  WaitlistStatusApproved,
	WaitlistStatusApproved: WaitlistStatusInvited,
	WaitlistStatusInvited:  WaitlistStatusJoined,
}

// CanTransitionWaitlist reports whether an admission queue entry may move from
// one status to another.
func CanTransitionWaitlist(from, to string) bool {
	next, ok := waitlistTransitions[from]
	return ok && next == to
}

// WaitlistEntry represents a single admission queue entry. Entries are created on
// signup, mutated only through status transitions, and never deleted.
type WaitlistEntry struct {
	ID         int64                  `json:"-"`
	WaitlistID string                 `json:"id"`
	Email      string                 `json:"email"`
	Name       string                 `json:"name,omitempty"`
	Position   int64                  `json:"position"`
	Status     string                 `json:"status"`
	CreatedAt  time.Time              `json:"created_at"`
	ApprovedAt *time.Time             `json:"approved_at,omitempty"`
	InvitedAt  *time.Time             `json:"invited_at,omitempty"`
	MetaData   map[string]interface{} `json:"meta_data,omitempty"`
}

func (entry *WaitlistEntry) ToJSON() ([]byte, error) {
	return json.Marshal(entry)
}

// BulkInviteResult reports per-entry outcomes for a bulk invite. A failure on one
// entry never aborts the batch; callers always receive counts plus failed ids.
type BulkInviteResult struct {
	InvitedCount int      `json:"invited_count"`
	FailedCount  int      `json:"failed_count"`
	FailedIDs    []string `json:"failed_ids,omitempty"`
}
