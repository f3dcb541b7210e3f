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
	ApplicationStatusSubmitted = "submitted"
	ApplicationStatusApproved  = "approved"
	ApplicationStatusRejected  = "rejected"
	ApplicationStatusNeedsInfo = "additional_info_required"

	DecisionApprove   = "approve"
	DecisionReject    = "reject"
	DecisionNeedsInfo = "needs_info"
)

// SellerApplication is a marketplace seller's application under review.
// approved and rejected are terminal; additional_info_required is re-entrant,
// so an applicant can be asked for more information repeatedly before a decision.
type SellerApplication struct {
	ID              int64      `json:"-"`
	ApplicationID   string     `json:"id"`
	ApplicantUserID string     `json:"applicant_user_id"`
	Email           string     `json:"email"`
	BusinessName    string     `json:"business_name"`
	Specializations []string   `json:"specializations,omitempty"`
	Status          string     `json:"status"`
	ReviewNotes     string     `json:"review_notes,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// IsTerminal reports whether the application has received a final decision.
// Terminal applications do not accept further decide calls.
func (application *SellerApplication) IsTerminal() bool {
	return application.Status == ApplicationStatusApproved || application.Status == ApplicationStatusRejected
}

// StatusForDecision maps a review decision to the application status it produces.
func StatusForDecision(decision string) (string, bool) {
	switch decision {
	case DecisionApprove:
		return ApplicationStatusApproved, true
	case DecisionReject:
		return ApplicationStatusRejected, true
	case DecisionNeedsInfo:
		return ApplicationStatusNeedsInfo, true
	}
	return "", false
}

func (application *SellerApplication) ToJSON() ([]byte, error) {
	return json.Marshal(application)
}

const (
	ProfileStatusActive   = "active"
	ProfileStatusInactive = "inactive"
)

// SellerProfile is the storefront record provisioned when an application is
// approved. Its id is the applicant's user id. PayoutAccountID stays empty until
// payout onboarding with the payment processor completes.
type SellerProfile struct {
	ID              int64     `json:"-"`
	ProfileID       string    `json:"id"`
	Slug            string    `json:"slug"`
	PayoutAccountID string    `json:"payout_account_id,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

// Payable reports whether the seller can receive a split payment: the profile
// must be active and payout onboarding must have completed.
func (profile *SellerProfile) Payable() bool {
	return profile.Status == ProfileStatusActive && profile.PayoutAccountID != ""
}
