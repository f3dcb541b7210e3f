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
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"

	"github.com/FredvanRijswijk/novatrek-engine/config"
	"github.com/FredvanRijswijk/novatrek-engine/database"
	"github.com/FredvanRijswijk/novatrek-engine/internal/apierror"
	"github.com/FredvanRijswijk/novatrek-engine/internal/processor"
	"github.com/FredvanRijswijk/novatrek-engine/model"
)

// mockProcessor is a test double for the payment processor. It records every
// request so tests can assert on what the orchestrator asked for.
type mockProcessor struct {
	createCalls   []*processor.AuthorizationRequest
	authorization *processor.Authorization
	createErr     error

	getCalls []string
	getAuth  *processor.Authorization
	getErr   error

	metadataCalls []map[string]string
	metadataErr   error
}

func (m *mockProcessor) CreateAuthorization(_ context.Context, req *processor.AuthorizationRequest) (*processor.Authorization, error) {
	m.createCalls = append(m.createCalls, req)
	if m.createErr != nil {
		return nil, m.createErr
	}
	return m.authorization, nil
}

func (m *mockProcessor) GetAuthorization(_ context.Context, authorizationID string) (*processor.Authorization, error) {
	m.getCalls = append(m.getCalls, authorizationID)
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.getAuth, nil
}

func (m *mockProcessor) UpdateMetadata(_ context.Context, _ string, metadata map[string]string) error {
	m.metadataCalls = append(m.metadataCalls, metadata)
	return m.metadataErr
}

var (
	productColumns = []string{"product_id", "seller_id", "name", "price", "currency", "status", "created_at"}
	profileColumns = []string{"profile_id", "slug", "payout_account_id", "status", "created_at"}
)

func expectSellableProduct(mock sqlmock.Sqlmock, price int64) {
	mock.ExpectQuery("SELECT .* FROM novatrek.products").
		WithArgs("prd_1").
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("prd_1", "sel_1", "Kyoto food walk", price, "USD", model.ProductStatusActive, time.Now()))
	mock.ExpectQuery("SELECT .* FROM novatrek.seller_profiles").
		WithArgs("sel_1").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("sel_1", "kyoto-walks", "acct_9", model.ProfileStatusActive, time.Now()))
}

func TestCreateCheckoutIntent(t *testing.T) {
	datasource, mock, err := newTestDataSource()
	if err != nil {
		t.Fatalf("Error creating test data source: %s", err)
	}

	proc := &mockProcessor{authorization: &processor.Authorization{
		AuthorizationID: "auth_1",
		ClientSecret:    "secret_abc",
		Status:          "requires_confirmation",
	}}
	engine, err := NewNovaTrek(datasource, proc)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}

	expectSellableProduct(mock, 10000)
	mock.ExpectExec("INSERT INTO novatrek.transactions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	intent, err := engine.CreateCheckoutIntent(context.Background(), "usr_7", "prd_1", 10000)
	assert.NoError(t, err)
	assert.Equal(t, "secret_abc", intent.ClientSecret)

	txn := intent.Transaction
	assert.Contains(t, txn.TransactionID, "txn_")
	assert.Equal(t, "auth_1", txn.AuthorizationID)
	assert.Equal(t, int64(10000), txn.Amount)
	assert.Equal(t, int64(1500), txn.PlatformFee)
	assert.Equal(t, int64(8500), txn.SellerEarnings)
	assert.Equal(t, model.TransactionStatusPending, txn.Status)
	assert.NoError(t, txn.Validate())

	// The authorization carries the fee split and the correlation ids the
	// reconciler needs.
	assert.Len(t, proc.createCalls, 1)
	authReq := proc.createCalls[0]
	assert.Equal(t, int64(10000), authReq.Amount)
	assert.Equal(t, int64(1500), authReq.ApplicationFeeAmount)
	assert.Equal(t, "acct_9", authReq.DestinationAccount)
	assert.Equal(t, "usr_7", authReq.Metadata["buyer_id"])
	assert.Equal(t, "sel_1", authReq.Metadata["seller_id"])
	assert.Equal(t, "prd_1", authReq.Metadata["product_id"])

	// The local transaction id is backfilled onto the processor record.
	assert.Len(t, proc.metadataCalls, 1)
	assert.Equal(t, txn.TransactionID, proc.metadataCalls[0]["transaction_id"])

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCreateCheckoutIntentAmountMismatch(t *testing.T) {
	datasource, mock, err := newTestDataSource()
	if err != nil {
		t.Fatalf("Error creating test data source: %s", err)
	}

	proc := &mockProcessor{}
	engine, err := NewNovaTrek(datasource, proc)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}

	// The client quoted a stale price. No authorization is attempted.
	expectSellableProduct(mock, 10000)

	_, err = engine.CreateCheckoutIntent(context.Background(), "usr_7", "prd_1", 9000)
	code, ok := apierror.Code(err)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrAmountMismatch, code)
	assert.Empty(t, proc.createCalls)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCreateCheckoutIntentProductInactive(t *testing.T) {
	datasource, mock, err := newTestDataSource()
	if err != nil {
		t.Fatalf("Error creating test data source: %s", err)
	}

	proc := &mockProcessor{}
	engine, err := NewNovaTrek(datasource, proc)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}

	mock.ExpectQuery("SELECT .* FROM novatrek.products").
		WithArgs("prd_1").
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("prd_1", "sel_1", "Kyoto food walk", int64(10000), "USD", model.ProductStatusInactive, time.Now()))

	_, err = engine.CreateCheckoutIntent(context.Background(), "usr_7", "prd_1", 0)
	code, ok := apierror.Code(err)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrProductUnavailable, code)
	assert.Empty(t, proc.createCalls)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCreateCheckoutIntentProductMissing(t *testing.T) {
	datasource, mock, err := newTestDataSource()
	if err != nil {
		t.Fatalf("Error creating test data source: %s", err)
	}

	proc := &mockProcessor{}
	engine, err := NewNovaTrek(datasource, proc)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}

	mock.ExpectQuery("SELECT .* FROM novatrek.products").
		WithArgs("prd_missing").
		WillReturnRows(sqlmock.NewRows(productColumns))

	_, err = engine.CreateCheckoutIntent(context.Background(), "usr_7", "prd_missing", 0)
	code, ok := apierror.Code(err)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrProductUnavailable, code)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCreateCheckoutIntentSellerNotPayable(t *testing.T) {
	datasource, mock, err := newTestDataSource()
	if err != nil {
		t.Fatalf("Error creating test data source: %s", err)
	}

	proc := &mockProcessor{}
	engine, err := NewNovaTrek(datasource, proc)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}

	// Payout onboarding never completed, so the seller can not be paid.
	mock.ExpectQuery("SELECT .* FROM novatrek.products").
		WithArgs("prd_1").
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("prd_1", "sel_1", "Kyoto food walk", int64(10000), "USD", model.ProductStatusActive, time.Now()))
	mock.ExpectQuery("SELECT .* FROM novatrek.seller_profiles").
		WithArgs("sel_1").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("sel_1", "kyoto-walks", "", model.ProfileStatusActive, time.Now()))

	_, err = engine.CreateCheckoutIntent(context.Background(), "usr_7", "prd_1", 0)
	code, ok := apierror.Code(err)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrSellerNotPayable, code)
	assert.Empty(t, proc.createCalls)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCreateCheckoutIntentAuthorizationDeclined(t *testing.T) {
	datasource, mock, err := newTestDataSource()
	if err != nil {
		t.Fatalf("Error creating test data source: %s", err)
	}

	proc := &mockProcessor{createErr: errors.New("processor declined authorization: card declined")}
	engine, err := NewNovaTrek(datasource, proc)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}

	expectSellableProduct(mock, 10000)

	_, err = engine.CreateCheckoutIntent(context.Background(), "usr_7", "prd_1", 0)
	code, ok := apierror.Code(err)
	assert.True(t, ok)
	assert.Equal(t, apierror.ErrPaymentAuthorization, code)
	// The buyer-facing message never leaks processor failure details.
	assert.NotContains(t, err.Error(), "card declined")

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestCreateCheckoutIntentLedgerWriteFailureStillSucceeds(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("an error '%s' occurred when starting miniredis", err)
	}
	defer mr.Close()

	config.MockConfig(&config.Configuration{Redis: config.RedisConfig{Dns: mr.Addr()}})
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database Connection", err)
	}
	datasource := &database.Datasource{Conn: db}

	proc := &mockProcessor{authorization: &processor.Authorization{
		AuthorizationID: "auth_9",
		ClientSecret:    "secret_xyz",
	}}
	engine, err := NewNovaTrek(datasource, proc)
	if err != nil {
		t.Fatalf("Error creating engine: %s", err)
	}

	expectSellableProduct(mock, 10000)
	mock.ExpectExec("INSERT INTO novatrek.transactions").
		WillReturnError(errors.New("connection reset"))

	// The processor already moved money, so the checkout succeeds and the
	// ledger row is repaired by a queued retry.
	intent, err := engine.CreateCheckoutIntent(context.Background(), "usr_7", "prd_1", 0)
	assert.NoError(t, err)
	assert.Equal(t, "secret_xyz", intent.ClientSecret)
	assert.Equal(t, "auth_9", intent.Transaction.AuthorizationID)
	assert.NotEmpty(t, mr.Keys())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}
