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

	"github.com/FredvanRijswijk/novatrek-engine/internal/apierror"
	"github.com/FredvanRijswijk/novatrek-engine/model"
)

// CreateProduct lists a product for a payable seller. Prices are minor
// currency units and must be positive.
func (n *NovaTrek) CreateProduct(ctx context.Context, sellerID, name string, price int64, currency string) (*model.Product, error) {
	if price <= 0 {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Price must be greater than zero", nil)
	}
	if name == "" {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput, "Product name is required", nil)
	}

	profile, err := n.datasource.GetSellerProfile(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if profile.Status != model.ProfileStatusActive {
		return nil, apierror.NewAPIError(apierror.ErrInvalidInput,
			fmt.Sprintf("Seller '%s' is not active", sellerID), nil)
	}

	product := &model.Product{
		ProductID: model.GenerateUUIDWithSuffix("prd"),
		SellerID:  sellerID,
		Name:      name,
		Price:     price,
		Currency:  currency,
		Status:    model.ProductStatusActive,
		CreatedAt: time.Now(),
	}
	return n.datasource.CreateProduct(ctx, product)
}

// GetProduct returns a single product by id.
func (n *NovaTrek) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return n.datasource.GetProduct(ctx, id)
}
