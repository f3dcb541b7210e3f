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
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"

	"github.com/FredvanRijswijk/novatrek-engine/config"
	"github.com/FredvanRijswijk/novatrek-engine/database"
	"github.com/FredvanRijswijk/novatrek-engine/internal/processor"
	"github.com/FredvanRijswijk/novatrek-engine/model"
)

func newReconcilerTestEngine(t *testing.T, proc *mockProcessor) (*NovaTrek, sqlmock.Sqlmock, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	t.Cleanup(mr.Close)

	config.MockConfig(&config.Configuration{Redis: config.RedisConfig{Dns: mr.Addr()}})
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database Connection", err)
	}

	engine, err := NewNovaTrek(&database.Datasource{Conn: db}, proc)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}
	return engine, mock, mr
}

func TestReconcileAuthorizationRebuildsMissingRow(t *testing.T) {
	proc := &mockProcessor{getAuth: &processor.Authorization{
		AuthorizationID:      "auth_1",
		Amount:               10000,
		ApplicationFeeAmount: 1500,
		Currency:             "USD",
		Status:               "succeeded",
		Metadata: map[string]string{
			"transaction_id": "txn_known",
			"buyer_id":       "usr_7",
			"seller_id":      "sel_1",
			"product_id":     "prd_1",
		},
	}}
	engine, mock, _ := newReconcilerTestEngine(t, proc)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("auth_1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO novatrek.transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	txn, err := engine.ReconcileAuthorization(context.Background(), "auth_1")
	assert.NoError(t, err)
	assert.Equal(t, "txn_known", txn.TransactionID)
	assert.Equal(t, "auth_1", txn.AuthorizationID)
	assert.Equal(t, "usr_7", txn.BuyerID)
	assert.Equal(t, int64(10000), txn.Amount)
	assert.Equal(t, int64(1500), txn.PlatformFee)
	assert.Equal(t, int64(8500), txn.SellerEarnings)
	assert.Equal(t, model.TransactionStatusPending, txn.Status)
	assert.Equal(t, []string{"auth_1"}, proc.getCalls)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestReconcileAuthorizationExistingRowUntouched(t *testing.T) {
	proc := &mockProcessor{}
	engine, mock, _ := newReconcilerTestEngine(t, proc)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("auth_1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery("SELECT .* FROM novatrek.transactions").
		WithArgs("auth_1").
		WillReturnRows(sqlmock.NewRows([]string{"transaction_id", "authorization_id", "buyer_id", "seller_id", "product_id", "amount", "platform_fee", "seller_earnings", "currency", "status", "created_at", "meta_data"}).
			AddRow("txn_1", "auth_1", "usr_7", "sel_1", "prd_1", int64(10000), int64(1500), int64(8500), "USD", model.TransactionStatusPending, time.Now(), nil))

	txn, err := engine.ReconcileAuthorization(context.Background(), "auth_1")
	assert.NoError(t, err)
	assert.Equal(t, "txn_1", txn.TransactionID)
	// The processor is never consulted when the ledger already has the row.
	assert.Empty(t, proc.getCalls)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestReconcileAuthorizationSingleFlight(t *testing.T) {
	proc := &mockProcessor{}
	engine, mock, mr := newReconcilerTestEngine(t, proc)

	// Another worker holds the guard for this authorization.
	err := mr.Set("reconcile:auth_1", "other-holder")
	assert.NoError(t, err)

	_, err = engine.ReconcileAuthorization(context.Background(), "auth_1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already held")
	assert.Empty(t, proc.getCalls)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestReconcileAuthorizationGeneratesTransactionID(t *testing.T) {
	// The metadata backfill never reached the processor, so the rebuilt row
	// gets a fresh transaction id keyed off the authorization.
	proc := &mockProcessor{getAuth: &processor.Authorization{
		AuthorizationID:      "auth_2",
		Amount:               5000,
		ApplicationFeeAmount: 750,
		Currency:             "USD",
		Metadata: map[string]string{
			"buyer_id":   "usr_7",
			"seller_id":  "sel_1",
			"product_id": "prd_1",
		},
	}}
	engine, mock, _ := newReconcilerTestEngine(t, proc)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("auth_2").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO novatrek.transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	txn, err := engine.ReconcileAuthorization(context.Background(), "auth_2")
	assert.NoError(t, err)
	assert.Contains(t, txn.TransactionID, "txn_")
	assert.NoError(t, txn.Validate())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestProcessLedgerRetry(t *testing.T) {
	proc := &mockProcessor{getAuth: &processor.Authorization{
		AuthorizationID:      "auth_1",
		Amount:               10000,
		ApplicationFeeAmount: 1500,
		Currency:             "USD",
		Metadata:             map[string]string{"transaction_id": "txn_known"},
	}}
	engine, mock, _ := newReconcilerTestEngine(t, proc)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("auth_1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO novatrek.transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload, err := json.Marshal("auth_1")
	assert.NoError(t, err)
	task := asynq.NewTask("new:ledger-retry", payload)

	err = engine.ProcessLedgerRetry(context.Background(), task)
	assert.NoError(t, err)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
