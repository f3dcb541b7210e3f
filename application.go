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
)

// postApplicationActions dispatches the webhook for an application decision in
// the background.
func (n *NovaTrek) postApplicationActions(application *model.SellerApplication) {
	go func() {
		err := SendWebhook(NewWebhook{
			Event:   getApplicationEvent(application.Status),
			Payload: application,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}

// CreateSellerApplication records a new seller application in submitted
// status.
func (n *NovaTrek) CreateSellerApplication(ctx context.Context, applicantUserID, email, businessName string, specializations []string) (*model.SellerApplication, error) {
	normalized := model.NormalizeEmail(email)
	if normalized == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Email is required", nil)
	}
	if businessName == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Business name is required", nil)
	}

	application := &model.SellerApplication{
		ApplicationID:   model.GenerateUUIDWithSuffix("app"),
		ApplicantUserID: applicantUserID,
		Email:           normalized,
		BusinessName:    businessName,
		Specializations: specializations,
		Status:          model.ApplicationStatusSubmitted,
		CreatedAt:       time.Now(),
	}
	return n.datasource.CreateSellerApplication(ctx, application)
}

// DecideSellerApplication applies a review decision to an application.
// Approval creates the seller profile in the same database transaction as the
// status change. An application that already carries a final decision is
// rejected with a conflict; needs_info keeps the application decidable.
func (n *NovaTrek) DecideSellerApplication(ctx context.Context, id, decision, reason, reviewedBy string) (*model.SellerApplication, error) {
	application, err := n.datasource.GetSellerApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.IsTerminal() {
		return nil, apierror.NewAPIError(apierror.ErrConflict,
			fmt.Sprintf("Application '%s' already has a final decision: %s", id, application.Status), nil)
	}

	status, ok := model.StatusForDecision(decision)
	if !ok {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("Unknown decision '%s'", decision), nil)
	}
	if decision != model.DecisionApprove && reason == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("A '%s' decision requires a reason", decision), nil)
	}

	var moved bool
	if decision == model.DecisionApprove {
		profile := &model.SellerProfile{
			ProfileID: application.ApplicantUserID,
			Status:    model.ProfileStatusActive,
			CreatedAt: time.Now(),
		}
		profile.Slug, err = n.generateSellerSlug(ctx, application.BusinessName)
		if err != nil {
			return nil, err
		}
		moved, err = n.datasource.ApproveSellerApplication(ctx, id, reason, reviewedBy, profile)
	} else {
		moved, err = n.datasource.UpdateSellerApplicationStatus(ctx, id, status, reason, reviewedBy)
	}
	if err != nil {
		return nil, err
	}
	if !moved {
		// Raced with another reviewer between the read and the compare-and-set.
		return nil, apierror.NewAPIError(apierror.ErrConflict,
			fmt.Sprintf("Application '%s' already has a final decision", id), nil)
	}

	decided, err := n.datasource.GetSellerApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	n.postApplicationActions(decided)
	return decided, nil
}

// generateSellerSlug derives a unique profile slug from the business name,
// appending a numeric suffix on collision.
func (n *NovaTrek) generateSellerSlug(ctx context.Context, businessName string) (string, error) {
	base := model.Slugify(businessName)
	for i := 1; ; i++ {
		candidate := model.SlugWithSuffix(base, i)
		exists, err := n.datasource.SellerSlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
}

// GetSellerApplication returns a single application by id.
func (n *NovaTrek) GetSellerApplication(ctx context.Context, id string) (*model.SellerApplication, error) {
	return n.datasource.GetSellerApplication(ctx, id)
}

// CompleteSellerPayoutOnboarding records the processor sub-account a seller
// finished onboarding with. A profile without a payout account can not receive
// checkout proceeds.
func (n *NovaTrek) CompleteSellerPayoutOnboarding(ctx context.Context, profileID, payoutAccountID string) (*model.SellerProfile, error) {
	if payoutAccountID == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Payout account id is required", nil)
	}
	if err := n.datasource.UpdateSellerPayoutAccount(ctx, profileID, payoutAccountID); err != nil {
		return nil, err
	}
	return n.datasource.GetSellerProfile(ctx, profileID)
}
