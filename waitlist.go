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

package novatrek

import (
	"context"
	"fmt"
	"time"

	"github.com/FredvanRijswijk/novatrek-engine/internal/apierror"
	"github.com/FredvanRijswijk/novatrek-engine/internal/notification"
	"github.com/FredvanRijswijk/novatrek-engine/model"
	"github.com/sirupsen/logrus"
)

// postWaitlistActions dispatches the webhook for a waitlist transition in the
// background. Delivery is best effort and never blocks or fails the operation.
func (n *NovaTrek) postWaitlistActions(entry *model.WaitlistEntry) {
	go func() {
		err := SendWebhook(NewWebhook{
			Event:   getWaitlistEvent(entry.Status),
			Payload: entry,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}

// SignupWaitlist adds an email to the waitlist in pending status and assigns
// it the next queue position. Emails are matched case-insensitively; a repeat
// signup is rejected as a duplicate and keeps the original position.
func (n *NovaTrek) SignupWaitlist(ctx context.Context, email, name string, metadata map[string]interface{}) (*model.WaitlistEntry, error) {
	normalized := model.NormalizeEmail(email)
	if normalized == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Email is required", nil)
	}

	entry := &model.WaitlistEntry{
		WaitlistID: model.GenerateUUIDWithSuffix("wl"),
		Email:      normalized,
		Name:       name,
		Status:     model.WaitlistStatusPending,
		CreatedAt:  time.Now(),
		MetaData:   metadata,
	}

	created, err := n.datasource.CreateWaitlistEntry(ctx, entry)
	if err != nil {
		return nil, err
	}
	logrus.Infof("waitlist signup %s assigned position %d", created.WaitlistID, created.Position)
	return created, nil
}

// ApproveWaitlistEntry moves a pending entry to approved. Approving an entry
// that is already approved is a no-op returning the entry unchanged; the
// compare-and-set only fires once, so the approval timestamp is never
// re-stamped.
func (n *NovaTrek) ApproveWaitlistEntry(ctx context.Context, id string) (*model.WaitlistEntry, error) {
	moved, err := n.datasource.TransitionWaitlistEntry(ctx, id, model.WaitlistStatusPending, model.WaitlistStatusApproved)
	if err != nil {
		return nil, err
	}

	entry, err := n.datasource.GetWaitlistEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if moved {
		n.postWaitlistActions(entry)
		return entry, nil
	}
	if entry.Status == model.WaitlistStatusApproved {
		return entry, nil
	}
	return nil, apierror.NewAPIError(apierror.ErrInvalidTransition,
		fmt.Sprintf("Cannot approve waitlist entry in status '%s'", entry.Status), nil)
}

// InviteWaitlistEntry moves an approved entry to invited and dispatches the
// invite webhook.
func (n *NovaTrek) InviteWaitlistEntry(ctx context.Context, id string) (*model.WaitlistEntry, error) {
	moved, err := n.datasource.TransitionWaitlistEntry(ctx, id, model.WaitlistStatusApproved, model.WaitlistStatusInvited)
	if err != nil {
		return nil, err
	}

	entry, err := n.datasource.GetWaitlistEntry(ctx, id)
	if err != nil {
		return nil, err
	}

	if !moved {
		return nil, apierror.NewAPIError(apierror.ErrInvalidTransition,
			fmt.Sprintf("Cannot invite waitlist entry in status '%s'", entry.Status), nil)
	}
	n.postWaitlistActions(entry)
	return entry, nil
}

// BulkInviteWaitlistEntries invites up to count approved entries in ascending
// position order. Entries that fail to transition are counted and skipped;
// one bad entry never stops the batch.
func (n *NovaTrek) BulkInviteWaitlistEntries(ctx context.Context, count int) (*model.BulkInviteResult, error) {
	if count <= 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Invite count must be greater than zero", nil)
	}

	entries, err := n.datasource.GetWaitlistEntriesByStatus(ctx, model.WaitlistStatusApproved, count)
	if err != nil {
		return nil, err
	}

	result := &model.BulkInviteResult{}
	for _, entry := range entries {
		if _, err := n.InviteWaitlistEntry(ctx, entry.WaitlistID); err != nil {
			logrus.Warnf("bulk invite skipped entry %s: %v", entry.WaitlistID, err)
			result.FailedCount++
			result.FailedIDs = append(result.FailedIDs, entry.WaitlistID)
			continue
		}
		result.InvitedCount++
	}
	return result, nil
}

// MarkWaitlistJoined records that an invited email completed account creation.
// The hook is fired by the account system on every signup, invited or not, so
// a miss here is normal and never an error.
func (n *NovaTrek) MarkWaitlistJoined(ctx context.Context, email string) error {
	normalized := model.NormalizeEmail(email)
	if normalized == "" {
		return nil
	}

	moved, err := n.datasource.TransitionWaitlistEntryByEmail(ctx, normalized, model.WaitlistStatusInvited, model.WaitlistStatusJoined)
	if err != nil {
		return err
	}
	if !moved {
		logrus.Debugf("join hook for %s matched no invited waitlist entry", normalized)
		return nil
	}

	entry, err := n.datasource.GetWaitlistEntryByEmail(ctx, normalized)
	if err != nil {
		return nil
	}
	n.postWaitlistActions(entry)
	return nil
}

// GetWaitlistEntry returns a single waitlist entry by id.
func (n *NovaTrek) GetWaitlistEntry(ctx context.Context, id string) (*model.WaitlistEntry, error) {
	return n.datasource.GetWaitlistEntry(ctx, id)
}

// GetAllWaitlistEntries returns the full waitlist in position order.
func (n *NovaTrek) GetAllWaitlistEntries(ctx context.Context) ([]*model.WaitlistEntry, error) {
	return n.datasource.GetAllWaitlistEntries(ctx)
}
