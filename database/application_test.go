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
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/FredvanRijswijk/novatrek-engine/model"
)

func TestUpdateSellerApplicationStatus_GuardsOnReviewableStates(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE novatrek.seller_applications").
		WithArgs("app_1", model.ApplicationStatusRejected, "Missing insurance docs", "rev_1", model.ApplicationStatusSubmitted, model.ApplicationStatusNeedsInfo).
		WillReturnResult(sqlmock.NewResult(0, 1))

	moved, err := ds.UpdateSellerApplicationStatus(context.Background(), "app_1", model.ApplicationStatusRejected, "Missing insurance docs", "rev_1")
	assert.NoError(t, err)
	assert.True(t, moved)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateSellerApplicationStatus_TerminalApplicationUntouched(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE novatrek.seller_applications").
		WithArgs("app_1", model.ApplicationStatusRejected, "", "rev_1", model.ApplicationStatusSubmitted, model.ApplicationStatusNeedsInfo).
		WillReturnResult(sqlmock.NewResult(0, 0))

	moved, err := ds.UpdateSellerApplicationStatus(context.Background(), "app_1", model.ApplicationStatusRejected, "", "rev_1")
	assert.NoError(t, err)
	assert.False(t, moved)
}

func TestApproveSellerApplication_CommitsStatusAndProfileTogether(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	profile := &model.SellerProfile{
		ProfileID: "usr_1",
		Slug:      "atlas-adventures",
		Status:    model.ProfileStatusActive,
		CreatedAt: time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE novatrek.seller_applications").
		WithArgs("app_1", model.ApplicationStatusApproved, "", "rev_1", model.ApplicationStatusSubmitted, model.ApplicationStatusNeedsInfo).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO novatrek.seller_profiles").
		WithArgs("usr_1", "atlas-adventures", "", model.ProfileStatusActive, profile.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	moved, err := ds.ApproveSellerApplication(context.Background(), "app_1", "", "rev_1", profile)
	assert.NoError(t, err)
	assert.True(t, moved)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApproveSellerApplication_LoserRollsBackWithoutProfile(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE novatrek.seller_applications").
		WithArgs("app_1", model.ApplicationStatusApproved, "", "rev_1", model.ApplicationStatusSubmitted, model.ApplicationStatusNeedsInfo).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	moved, err := ds.ApproveSellerApplication(context.Background(), "app_1", "", "rev_1", &model.SellerProfile{})
	assert.NoError(t, err)
	assert.False(t, moved)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSellerProfile_NullPayoutAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectQuery("FROM novatrek.seller_profiles").
		WithArgs("usr_1").
		WillReturnRows(sqlmock.NewRows([]string{"profile_id", "slug", "payout_account_id", "status", "created_at"}).
			AddRow("usr_1", "atlas-adventures", nil, model.ProfileStatusActive, time.Now()))

	profile, err := ds.GetSellerProfile(context.Background(), "usr_1")
	assert.NoError(t, err)
	assert.Equal(t, "", profile.PayoutAccountID)
	assert.False(t, profile.Payable())
}

func TestUpdateSellerPayoutAccount_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	ds := Datasource{Conn: db}

	mock.ExpectExec("UPDATE novatrek.seller_profiles").
		WithArgs("usr_1", "acct_99").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = ds.UpdateSellerPayoutAccount(context.Background(), "usr_1", "acct_99")
	assert.NoError(t, err)
}
