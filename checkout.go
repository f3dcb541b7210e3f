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

	"github.com/FredvanRijswijk/novatrek-engine/config"
	"github.com/FredvanRijswijk/novatrek-engine/internal/apierror"
	"github.com/FredvanRijswijk/novatrek-engine/internal/notification"
	"github.com/FredvanRijswijk/novatrek-engine/internal/processor"
	"github.com/FredvanRijswijk/novatrek-engine/model"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// CheckoutIntent is the result of a successful checkout orchestration: the
// pending ledger row plus the client secret the buyer's device needs to
// complete payment.
type CheckoutIntent struct {
	Transaction  *model.Transaction `json:"transaction"`
	ClientSecret string             `json:"client_secret"`
}

// CreateCheckoutIntent orchestrates a marketplace purchase: it verifies the
// product is sellable and the seller payable, splits the amount into platform
// fee and seller earnings, authorizes the split payment with the processor,
// and records the pending ledger row.
//
// The processor is authoritative for money. Once the authorization succeeds
// the checkout succeeds; a local ledger write failure is repaired later by the
// reconciler, never surfaced to the buyer.
func (n *NovaTrek) CreateCheckoutIntent(ctx context.Context, buyerID, productID string, clientAmount int64) (*CheckoutIntent, error) {
	ctx, span := otel.Tracer("Checkout transaction").Start(ctx, "Creating checkout intent")
	defer span.End()

	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}

	product, err := n.datasource.GetProduct(ctx, productID)
	if err != nil {
		if code, ok := apierror.Code(err); ok && code == apierror.ErrNotFound {
			return nil, apierror.NewAPIError(apierror.ErrProductUnavailable,
				fmt.Sprintf("Product '%s' is not available for purchase", productID), err)
		}
		return nil, err
	}
	if !product.Available() {
		return nil, apierror.NewAPIError(apierror.ErrProductUnavailable,
			fmt.Sprintf("Product '%s' is not available for purchase", productID), nil)
	}

	profile, err := n.datasource.GetSellerProfile(ctx, product.SellerID)
	if err != nil {
		if code, ok := apierror.Code(err); ok && code == apierror.ErrNotFound {
			return nil, apierror.NewAPIError(apierror.ErrSellerNotPayable,
				fmt.Sprintf("Seller for product '%s' cannot receive payments", productID), err)
		}
		return nil, err
	}
	if !profile.Payable() {
		return nil, apierror.NewAPIError(apierror.ErrSellerNotPayable,
			fmt.Sprintf("Seller '%s' cannot receive payments", product.SellerID), nil)
	}

	// The ledger price is the only price. A stale client quote is rejected,
	// never honored.
	if clientAmount != 0 && clientAmount != product.Price {
		return nil, apierror.NewAPIError(apierror.ErrAmountMismatch,
			fmt.Sprintf("Amount %d does not match the current price of product '%s'", clientAmount, productID), nil)
	}
	amount := product.Price

	platformFee, sellerEarnings := model.ComputeFeeSplit(amount, conf.Checkout.FeeRate)

	transactionID := model.GenerateUUIDWithSuffix("txn")
	authorization, err := n.processor.CreateAuthorization(ctx, &processor.AuthorizationRequest{
		Amount:               amount,
		Currency:             product.Currency,
		ApplicationFeeAmount: platformFee,
		DestinationAccount:   profile.PayoutAccountID,
		Metadata: map[string]string{
			"buyer_id":   buyerID,
			"seller_id":  product.SellerID,
			"product_id": product.ProductID,
		},
	})
	if err != nil {
		span.RecordError(err)
		notification.NotifyError(err)
		// Processor failure details stay out of the buyer-facing error.
		return nil, apierror.NewAPIError(apierror.ErrPaymentAuthorization, "Payment could not be authorized", err)
	}

	txn := &model.Transaction{
		TransactionID:   transactionID,
		AuthorizationID: authorization.AuthorizationID,
		BuyerID:         buyerID,
		SellerID:        product.SellerID,
		ProductID:       product.ProductID,
		Amount:          amount,
		PlatformFee:     platformFee,
		SellerEarnings:  sellerEarnings,
		Currency:        product.Currency,
		Status:          model.TransactionStatusPending,
		CreatedAt:       time.Now(),
	}

	if _, err := n.datasource.RecordTransaction(ctx, txn); err != nil {
		span.RecordError(err)
		logrus.Errorf("ledger write failed for authorization %s: %v", authorization.AuthorizationID, err)
		notification.NotifyError(err)
		if qErr := n.queue.queueLedgerRetry(authorization.AuthorizationID); qErr != nil {
			notification.NotifyError(qErr)
		}
	}

	n.postCheckoutActions(ctx, span, txn)

	return &CheckoutIntent{Transaction: txn, ClientSecret: authorization.ClientSecret}, nil
}

// postCheckoutActions runs the secondary writes after a checkout: backfilling
// the local transaction id onto the processor record and dispatching the
// webhook. Both are best effort; a failure is logged and never fails the
// checkout.
func (n *NovaTrek) postCheckoutActions(ctx context.Context, span trace.Span, txn *model.Transaction) {
	if err := n.processor.UpdateMetadata(ctx, txn.AuthorizationID, map[string]string{"transaction_id": txn.TransactionID}); err != nil {
		span.RecordError(err)
		logrus.Warnf("metadata backfill failed for authorization %s: %v", txn.AuthorizationID, err)
	}

	go func() {
		err := SendWebhook(NewWebhook{
			Event:   "transaction." + txn.Status,
			Payload: txn,
		})
		if err != nil {
			notification.NotifyError(err)
		}
	}()
}
