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
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusSucceeded = "succeeded"
	TransactionStatusFailed    = "failed"
)

// Transaction is the local ledger row for a marketplace purchase. The payment
// processor's authorization record is the durable source of truth for money
// movement; this row is a cache-with-repair over it, keyed by AuthorizationID.
// AuthorizationID is unique and immutable once set.
type Transaction struct {
	ID              int64                  `json:"-"`
	TransactionID   string                 `json:"id"`
	AuthorizationID string                 `json:"authorization_id"`
	BuyerID         string                 `json:"buyer_id"`
	SellerID        string                 `json:"seller_id"`
	ProductID       string                 `json:"product_id"`
	Amount          int64                  `json:"amount"`
	PlatformFee     int64                  `json:"platform_fee"`
	SellerEarnings  int64                  `json:"seller_earnings"`
	Currency        string                 `json:"currency"`
	Status          string                 `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
	MetaData        map[string]interface{} `json:"meta_data,omitempty"`
}

func (transaction *Transaction) ToJSON() ([]byte, error) {
	return json.Marshal(transaction)
}

// ComputeFeeSplit splits a charge amount (minor units) between the platform and
// the seller. The platform fee is amount * feeRate rounded half-up on the minor
// unit; the seller earns the remainder, so the two always sum to the amount.
func ComputeFeeSplit(amount int64, feeRate float64) (platformFee, sellerEarnings int64) {
	fee := decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(feeRate)).Round(0)
	platformFee = fee.IntPart()
	sellerEarnings = amount - platformFee
	return platformFee, sellerEarnings
}

// Validate checks transaction integrity before it is written to the ledger.
func (transaction *Transaction) Validate() error {
	if transaction.Amount <= 0 {
		return errors.New("transaction amount must be positive")
	}
	if transaction.PlatformFee+transaction.SellerEarnings != transaction.Amount {
		return errors.New("platform fee and seller earnings must sum to the transaction amount")
	}
	if transaction.AuthorizationID == "" {
		return errors.New("transaction requires an authorization id")
	}
	return nil
}
