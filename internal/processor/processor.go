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

// Package processor is the client for the external payment processor. The
// processor is authoritative for money movement: it custodies the charged
// amount and disburses the seller's share to the sub-account named in the
// authorization. The engine only ever creates and reads authorizations; it
// never writes sub-account state directly.
package processor

import (
	"context"
	"fmt"
	"net/http"

	"github.com/FredvanRijswijk/novatrek-engine/internal/request"
	"github.com/pkg/errors"
)

// AuthorizationRequest asks the processor to authorize a split payment.
// ApplicationFeeAmount is the platform's share; the remainder settles to the
// destination sub-account. Metadata carries the local correlation ids used by
// the ledger reconciler to rebuild a missing transaction row.
type AuthorizationRequest struct {
	Amount               int64             `json:"amount"`
	Currency             string            `json:"currency"`
	ApplicationFeeAmount int64             `json:"application_fee_amount"`
	DestinationAccount   string            `json:"destination_account"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

// Authorization is the processor's record of an authorized payment. The
// ClientSecret completes payment on the buyer's device and is never stored
// locally.
type Authorization struct {
	AuthorizationID      string            `json:"id"`
	ClientSecret         string            `json:"client_secret"`
	Amount               int64             `json:"amount"`
	Currency             string            `json:"currency"`
	ApplicationFeeAmount int64             `json:"application_fee_amount"`
	DestinationAccount   string            `json:"destination_account"`
	Status               string            `json:"status"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

// Processor is the collaborator surface the checkout orchestrator and ledger
// reconciler depend on.
type Processor interface {
	CreateAuthorization(ctx context.Context, req *AuthorizationRequest) (*Authorization, error)
	GetAuthorization(ctx context.Context, authorizationID string) (*Authorization, error)
	UpdateMetadata(ctx context.Context, authorizationID string, metadata map[string]string) error
}

// Client talks JSON over HTTP to the processor API.
type Client struct {
	apiUrl    string
	secretKey string
}

func NewClient(apiUrl, secretKey string) *Client {
	return &Client{apiUrl: apiUrl, secretKey: secretKey}
}

type apiResponse struct {
	Authorization
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Client) CreateAuthorization(ctx context.Context, authReq *AuthorizationRequest) (*Authorization, error) {
	payload, err := request.ToJsonReq(authReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/v1/authorizations", c.apiUrl), payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	var response apiResponse
	resp, err := request.Call(req, &response)
	if err != nil {
		return nil, errors.Wrap(err, "processor authorization request failed")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if response.Error != nil {
			return nil, errors.Errorf("processor declined authorization: %s", response.Error.Message)
		}
		return nil, errors.Errorf("processor returned status %d", resp.StatusCode)
	}

	return &response.Authorization, nil
}

func (c *Client) GetAuthorization(ctx context.Context, authorizationID string) (*Authorization, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s/v1/authorizations/%s", c.apiUrl, authorizationID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	var response apiResponse
	resp, err := request.Call(req, &response)
	if err != nil {
		return nil, errors.Wrap(err, "processor authorization lookup failed")
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.Errorf("authorization %s not found at processor", authorizationID)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("processor returned status %d", resp.StatusCode)
	}

	return &response.Authorization, nil
}

func (c *Client) UpdateMetadata(ctx context.Context, authorizationID string, metadata map[string]string) error {
	payload, err := request.ToJsonReq(map[string]interface{}{"metadata": metadata})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/v1/authorizations/%s", c.apiUrl, authorizationID), payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	var response apiResponse
	resp, err := request.Call(req, &response)
	if err != nil {
		return errors.Wrap(err, "processor metadata update failed")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("processor returned status %d", resp.StatusCode)
	}
	return nil
}
