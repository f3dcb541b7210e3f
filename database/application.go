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

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/FredvanRijswijk/novatrek-engine/internal/apierror"
	"github.com/FredvanRijswijk/novatrek-engine/model"
	"github.com/lib/pq"
)

func (d Datasource) CreateSellerApplication(ctx context.Context, application *model.SellerApplication) (*model.SellerApplication, error) {
	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO novatrek.seller_applications (application_id, applicant_user_id, email, business_name, specializations, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, application.ApplicationID, application.ApplicantUserID, application.Email, application.BusinessName, pq.Array(application.Specializations), application.Status, application.CreatedAt)
	if err != nil {
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create seller application", err)
	}
	return application, nil
}

func (d Datasource) GetSellerApplication(ctx context.Context, id string) (*model.SellerApplication, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT application_id, applicant_user_id, email, business_name, specializations, status, review_notes, reviewed_by, reviewed_at, created_at
		FROM novatrek.seller_applications
		WHERE application_id = $1
	`, id)

	application := &model.SellerApplication{}
	var notes, reviewedBy sql.NullString
	err := row.Scan(&application.ApplicationID, &application.ApplicantUserID, &application.Email, &application.BusinessName,
		pq.Array(&application.Specializations), &application.Status, &notes, &reviewedBy, &application.ReviewedAt, &application.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Application with ID '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve seller application", err)
	}
	application.ReviewNotes = notes.String
	application.ReviewedBy = reviewedBy.String
	return application, nil
}

// UpdateSellerApplicationStatus stamps a review decision as a compare-and-set
// guarded on the application still being reviewable. Terminal applications are
// left untouched; the caller sees zero rows moved and refetches.
func (d Datasource) UpdateSellerApplicationStatus(ctx context.Context, id, status, notes, reviewedBy string) (bool, error) {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE novatrek.seller_applications
		SET status = $2, review_notes = $3, reviewed_by = $4, reviewed_at = NOW()
		WHERE application_id = $1 AND status IN ($5, $6)
	`, id, status, notes, reviewedBy, model.ApplicationStatusSubmitted, model.ApplicationStatusNeedsInfo)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update application status", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	return rowsAffected > 0, nil
}

// ApproveSellerApplication performs the approval two-write as one database
// transaction: the status compare-and-set plus the profile insert. Either both
// land or neither does, so an approved application always has a profile.
func (d Datasource) ApproveSellerApplication(ctx context.Context, id, notes, reviewedBy string, profile *model.SellerProfile) (bool, error) {
	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
		UPDATE novatrek.seller_applications
		SET status = $2, review_notes = $3, reviewed_by = $4, reviewed_at = NOW()
		WHERE application_id = $1 AND status IN ($5, $6)
	`, id, model.ApplicationStatusApproved, notes, reviewedBy, model.ApplicationStatusSubmitted, model.ApplicationStatusNeedsInfo)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to approve application", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO novatrek.seller_profiles (profile_id, slug, payout_account_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, profile.ProfileID, profile.Slug, profile.PayoutAccountID, profile.Status, profile.CreatedAt)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to create seller profile", err)
	}

	if err := tx.Commit(); err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to commit approval", err)
	}
	return true, nil
}

func (d Datasource) GetSellerProfile(ctx context.Context, id string) (*model.SellerProfile, error) {
	row := d.Conn.QueryRowContext(ctx, `
		SELECT profile_id, slug, payout_account_id, status, created_at
		FROM novatrek.seller_profiles
		WHERE profile_id = $1
	`, id)

	profile := &model.SellerProfile{}
	var payoutAccountID sql.NullString
	err := row.Scan(&profile.ProfileID, &profile.Slug, &payoutAccountID, &profile.Status, &profile.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Seller profile '%s' not found", id), err)
		}
		return nil, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to retrieve seller profile", err)
	}
	profile.PayoutAccountID = payoutAccountID.String
	return profile, nil
}

func (d Datasource) SellerSlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM novatrek.seller_profiles WHERE slug = $1)
	`, slug).Scan(&exists)
	if err != nil {
		return false, apierror.NewAPIError(apierror.ErrInternalServer, "Failed to check slug", err)
	}
	return exists, nil
}

func (d Datasource) UpdateSellerPayoutAccount(ctx context.Context, id, payoutAccountID string) error {
	result, err := d.Conn.ExecContext(ctx, `
		UPDATE novatrek.seller_profiles
		SET payout_account_id = $2
		WHERE profile_id = $1
	`, id, payoutAccountID)
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to update payout account", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apierror.NewAPIError(apierror.ErrInternalServer, "Failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Seller profile '%s' not found", id), nil)
	}
	return nil
}
