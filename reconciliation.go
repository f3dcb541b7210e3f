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
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/FredvanRijswijk/novatrek-engine/internal/lock"
	"github.com/FredvanRijswijk/novatrek-engine/internal/processor"
	"github.com/FredvanRijswijk/novatrek-engine/model"
)

// ReconcileAuthorization repairs the local ledger from the processor's record
// of an authorization. The processor is the source of truth: if it holds an
// authorization with no matching local row, the row is rebuilt from the
// authorization's amounts and metadata. An existing row is returned as is.
//
// A Redis guard keyed by authorization id keeps concurrent reconcile runs for
// the same authorization single flight.
func (n *NovaTrek) ReconcileAuthorization(ctx context.Context, authorizationID string) (*model.Transaction, error) {
	ctx, span := otel.Tracer("Ledger reconciler").Start(ctx, "Reconciling authorization")
	defer span.End()

	guard := lock.NewGuard(n.redis, "reconcile:"+authorizationID, model.GenerateUUIDWithSuffix("hold"))
	if err := guard.Acquire(ctx, time.Minute); err != nil {
		return nil, err
	}
	defer func() {
		if err := guard.Release(ctx); err != nil {
			logrus.Warnf("failed to release reconcile guard for %s: %v", authorizationID, err)
		}
	}()

	exists, err := n.datasource.TransactionExistsByAuthorizationID(ctx, authorizationID)
	if err != nil {
		return nil, err
	}
	if exists {
		return n.datasource.GetTransactionByAuthorizationID(ctx, authorizationID)
	}

	authorization, err := n.processor.GetAuthorization(ctx, authorizationID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	txn := rebuildTransaction(authorization)
	writeLedgerRow := func() error {
		_, err := n.datasource.RecordTransaction(ctx, txn)
		return err
	}
	err = backoff.Retry(writeLedgerRow, backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logrus.Infof("rebuilt ledger row %s for authorization %s", txn.TransactionID, authorizationID)
	return txn, nil
}

// rebuildTransaction reconstructs a ledger row from the processor's
// authorization record. Correlation ids come from the metadata written at
// checkout time; a missing transaction id gets a fresh one because the
// authorization id, not the local id, is the reconciliation key.
func rebuildTransaction(authorization *processor.Authorization) *model.Transaction {
	transactionID := authorization.Metadata["transaction_id"]
	if transactionID == "" {
		transactionID = model.GenerateUUIDWithSuffix("txn")
	}

	return &model.Transaction{
		TransactionID:   transactionID,
		AuthorizationID: authorization.AuthorizationID,
		BuyerID:         authorization.Metadata["buyer_id"],
		SellerID:        authorization.Metadata["seller_id"],
		ProductID:       authorization.Metadata["product_id"],
		Amount:          authorization.Amount,
		PlatformFee:     authorization.ApplicationFeeAmount,
		SellerEarnings:  authorization.Amount - authorization.ApplicationFeeAmount,
		Currency:        authorization.Currency,
		Status:          model.TransactionStatusPending,
		CreatedAt:       time.Now(),
	}
}

// ProcessLedgerRetry handles a queued ledger retry task. Returning an error
// hands the task back to asynq for redelivery, including when another worker
// holds the reconcile guard.
func (n *NovaTrek) ProcessLedgerRetry(ctx context.Context, task *asynq.Task) error {
	var authorizationID string
	if err := json.Unmarshal(task.Payload(), &authorizationID); err != nil {
		logrus.Errorf("Error unmarshaling ledger retry payload: %v", err)
		return err
	}

	_, err := n.ReconcileAuthorization(ctx, authorizationID)
	if err != nil {
		logrus.Warnf("ledger retry for authorization %s failed: %v", authorizationID, err)
		return err
	}
	return nil
}
