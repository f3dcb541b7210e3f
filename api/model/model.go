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
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/FredvanRijswijk/novatrek-engine/model"
)

// CreateWaitlistEntry is the public signup request.
type CreateWaitlistEntry struct {
	Email    string                 `json:"email"`
	Name     string                 `json:"name"`
	MetaData map[string]interface{} `json:"meta_data"`
}

func (w *CreateWaitlistEntry) ValidateCreateWaitlistEntry() error {
	return validation.ValidateStruct(w,
		validation.Field(&w.Email, validation.Required, is.Email),
	)
}

// JoinedHook is the account-creation callback payload.
type JoinedHook struct {
	Email string `json:"email"`
}

func (j *JoinedHook) ValidateJoinedHook() error {
	return validation.ValidateStruct(j,
		validation.Field(&j.Email, validation.Required, is.Email),
	)
}

// BulkInvite asks for the next batch of approved entries to be invited.
type BulkInvite struct {
	Count int `json:"count"`
}

func (b *BulkInvite) ValidateBulkInvite() error {
	return validation.ValidateStruct(b,
		validation.Field(&b.Count, validation.Required, validation.Min(1)),
	)
}

// CreateSellerApplication is the seller intake request.
type CreateSellerApplication struct {
	ApplicantUserID string   `json:"applicant_user_id"`
	Email           string   `json:"email"`
	BusinessName    string   `json:"business_name"`
	Specializations []string `json:"specializations"`
}

func (a *CreateSellerApplication) ValidateCreateSellerApplication() error {
	return validation.ValidateStruct(a,
		validation.Field(&a.ApplicantUserID, validation.Required),
		validation.Field(&a.Email, validation.Required, is.Email),
		validation.Field(&a.BusinessName, validation.Required),
	)
}

func reasonRequiredValidation(d *DecideApplication) validation.RuleFunc {
	return func(value interface{}) error {
		if d.Decision != model.DecisionApprove && d.Reason == "" {
			return errors.New("a reason is required for reject and needs_info decisions")
		}
		return nil
	}
}

// DecideApplication is a reviewer's decision on a seller application.
type DecideApplication struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

func (d *DecideApplication) ValidateDecideApplication() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.Decision, validation.Required,
			validation.In(model.DecisionApprove, model.DecisionReject, model.DecisionNeedsInfo)),
		validation.Field(&d.Reason, validation.By(reasonRequiredValidation(d))),
	)
}

// CreateCheckoutIntent is the buyer's purchase request. Amount is the price
// the client displayed, in minor units; zero means "charge the current
// price". A non-zero amount that disagrees with the ledger price is rejected.
type CreateCheckoutIntent struct {
	BuyerID   string `json:"buyer_id"`
	ProductID string `json:"product_id"`
	Amount    int64  `json:"amount"`
}

func (ci *CreateCheckoutIntent) ValidateCreateCheckoutIntent() error {
	return validation.ValidateStruct(ci,
		validation.Field(&ci.BuyerID, validation.Required),
		validation.Field(&ci.ProductID, validation.Required),
		validation.Field(&ci.Amount, validation.Min(0)),
	)
}

// CreateProduct lists a new product for a seller.
type CreateProduct struct {
	SellerID string `json:"seller_id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Currency string `json:"currency"`
}

func (p *CreateProduct) ValidateCreateProduct() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.SellerID, validation.Required),
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Price, validation.Required, validation.Min(1)),
		validation.Field(&p.Currency, validation.Required, validation.Length(3, 3)),
	)
}

// CompletePayoutOnboarding records the processor sub-account for a seller.
type CompletePayoutOnboarding struct {
	PayoutAccountID string `json:"payout_account_id"`
}

func (p *CompletePayoutOnboarding) ValidateCompletePayoutOnboarding() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.PayoutAccountID, validation.Required),
	)
}

// ReconcileAuthorization asks the reconciler to repair one authorization.
type ReconcileAuthorization struct {
	AuthorizationID string `json:"authorization_id"`
}

func (r *ReconcileAuthorization) ValidateReconcileAuthorization() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AuthorizationID, validation.Required),
	)
}
